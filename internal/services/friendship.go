package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pinpal-backend/internal/apperr"
	"pinpal-backend/internal/models"
	"pinpal-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const defaultRecommendLimit = 5

// FriendshipService handles the friendship request lifecycle
type FriendshipService struct {
	friendships FriendshipStore
	users       UserStore
	notifier    Notifier
}

// NewFriendshipService creates a new friendship service
func NewFriendshipService(friendships FriendshipStore, users UserStore, notifier Notifier) *FriendshipService {
	return &FriendshipService{
		friendships: friendships,
		users:       users,
		notifier:    notifier,
	}
}

// SendRequest creates a pending edge from source to target. Any
// existing edge between the pair, in either direction and of any
// status, makes this a conflict.
func (s *FriendshipService) SendRequest(ctx context.Context, sourceID, targetID string) error {
	if sourceID == targetID {
		return apperr.Invalid("cannot send a friend request to yourself")
	}

	target, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("target user not found")
		}
		return apperr.Internal(err)
	}

	existing, err := s.friendships.GetBetween(ctx, sourceID, targetID)
	if err != nil {
		return apperr.Internal(err)
	}
	if existing != nil {
		return apperr.Conflict("a request or friendship already exists between these users")
	}

	inserted, err := s.friendships.Insert(ctx, &models.Friendship{
		ID:        uuid.New().String(),
		SourceID:  sourceID,
		TargetID:  targetID,
		Status:    models.FriendStatusPending,
		CreatedAt: time.Now(),
	})
	if err != nil {
		return apperr.Internal(err)
	}
	if !inserted {
		// lost the race to a simultaneous request from the other side
		return apperr.Conflict("a request or friendship already exists between these users")
	}

	s.notifyRequest(ctx, sourceID, target)
	return nil
}

// notifyRequest pushes a best-effort notification to the request's
// recipient; failures are logged and swallowed
func (s *FriendshipService) notifyRequest(ctx context.Context, sourceID string, target *models.User) {
	if s.notifier == nil || target.DeviceToken == nil {
		return
	}
	source, err := s.users.GetByID(ctx, sourceID)
	if err != nil {
		log.Warn().Err(err).Str("user_id", sourceID).Msg("Skipping friend request notification")
		return
	}
	body := fmt.Sprintf("%s sent you a friend request", source.Username)
	if err := s.notifier.Push(ctx, *target.DeviceToken, "New friend request", body); err != nil {
		log.Warn().Err(err).Str("target_id", target.ID).Msg("Failed to push friend request notification")
	}
}

// AcceptRequest flips a pending request into a friendship. Only the
// recipient of the request may accept it.
func (s *FriendshipService) AcceptRequest(ctx context.Context, recipientID, requesterID string) error {
	accepted, err := s.friendships.Accept(ctx, requesterID, recipientID)
	if err != nil {
		return apperr.Internal(err)
	}
	if !accepted {
		return apperr.NotFound("no pending request from this user")
	}
	return nil
}

// Remove deletes the edge between two users whatever its direction or
// status; it serves as decline, cancel and unfriend
func (s *FriendshipService) Remove(ctx context.Context, a, b string) error {
	deleted, err := s.friendships.Delete(ctx, a, b)
	if err != nil {
		return apperr.Internal(err)
	}
	if !deleted {
		return apperr.NotFound("no request or friendship between these users")
	}
	return nil
}

// Status classifies the relationship between viewer and other as one of
// none, pending_outgoing, pending_incoming or friends
func (s *FriendshipService) Status(ctx context.Context, viewerID, otherID string) (string, error) {
	if viewerID == otherID {
		return models.RelationNone, nil
	}

	edge, err := s.friendships.GetBetween(ctx, viewerID, otherID)
	if err != nil {
		return "", apperr.Internal(err)
	}
	switch {
	case edge == nil:
		return models.RelationNone, nil
	case edge.Status == models.FriendStatusAccepted:
		return models.RelationFriends, nil
	case edge.SourceID == viewerID:
		return models.RelationPendingOutgoing, nil
	default:
		return models.RelationPendingIncoming, nil
	}
}

// ListFriends returns the profiles of every accepted friend
func (s *FriendshipService) ListFriends(ctx context.Context, userID string) ([]*models.Profile, error) {
	friends, err := s.friendships.ListFriends(ctx, userID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return friends, nil
}

// ListIncomingRequests returns the profiles behind pending requests
// addressed to the user
func (s *FriendshipService) ListIncomingRequests(ctx context.Context, userID string) ([]*models.Profile, error) {
	requests, err := s.friendships.ListIncoming(ctx, userID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return requests, nil
}

// Recommend ranks non-friend users by mutual accepted-friend count
func (s *FriendshipService) Recommend(ctx context.Context, userID string, limit int) ([]*models.Recommendation, error) {
	if limit <= 0 {
		limit = defaultRecommendLimit
	}
	recs, err := s.friendships.Recommend(ctx, userID, limit)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return recs, nil
}
