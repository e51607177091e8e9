package services

import (
	"context"
	"math/rand"
	"sync"

	"pinpal-backend/internal/apperr"
	"pinpal-backend/internal/models"
)

// FeedService aggregates pins across users: the friends feed, the
// discoverable (public) feed and tagged pins
type FeedService struct {
	pins       PinStore
	sampleSize int

	mu  sync.Mutex
	rng *rand.Rand
}

// NewFeedService creates a new feed service. sampleSize caps how many
// discoverable pins one request returns (0 disables sampling); rng is
// injected so tests can seed it.
func NewFeedService(pins PinStore, sampleSize int, rng *rand.Rand) *FeedService {
	return &FeedService{
		pins:       pins,
		sampleSize: sampleSize,
		rng:        rng,
	}
}

// FriendPins returns the non-private pins of every accepted friend of
// the viewer, each paired with the friend's public profile
func (s *FeedService) FriendPins(ctx context.Context, viewerID string) ([]*models.FriendPin, error) {
	feed, err := s.pins.ListFriendFeed(ctx, viewerID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return feed, nil
}

// PublicPins returns discoverable pins for the viewer: public pins not
// authored by the viewer or an accepted friend, sampled uniformly
// without replacement down to min(sampleSize, N)
func (s *FeedService) PublicPins(ctx context.Context, viewerID string) ([]*models.Pin, error) {
	pins, err := s.pins.ListDiscoverable(ctx, viewerID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return s.sample(pins), nil
}

// sample picks min(sampleSize, len(pins)) distinct pins uniformly via a
// partial Fisher-Yates shuffle
func (s *FeedService) sample(pins []*models.Pin) []*models.Pin {
	k := s.sampleSize
	if k <= 0 || len(pins) <= k {
		return pins
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := 0; i < k; i++ {
		j := i + s.rng.Intn(len(pins)-i)
		pins[i], pins[j] = pins[j], pins[i]
	}
	return pins[:k]
}

// TaggedPins returns pins the user is tagged in, newest first
func (s *FeedService) TaggedPins(ctx context.Context, userID string) ([]*models.Pin, error) {
	pins, err := s.pins.ListTagged(ctx, userID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return pins, nil
}
