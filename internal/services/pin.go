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

const pinPhotoType = "image/jpeg"

// PinService handles pin-related business logic
type PinService struct {
	pins     PinStore
	likes    LikeStore
	users    UserStore
	photos   PhotoStore
	notifier Notifier
}

// NewPinService creates a new pin service
func NewPinService(pins PinStore, likes LikeStore, users UserStore, photos PhotoStore, notifier Notifier) *PinService {
	return &PinService{
		pins:     pins,
		likes:    likes,
		users:    users,
		photos:   photos,
		notifier: notifier,
	}
}

// PinInput carries the writable attributes of a pin
type PinInput struct {
	Latitude     float64
	Longitude    float64
	Title        string
	Caption      string
	Visibility   int
	LocationTags []string
	UserTags     []string
}

// Create persists a new pin. A supplied photo is uploaded first and
// only its URL is stored; tagged users get a best-effort push.
func (s *PinService) Create(ctx context.Context, ownerID string, in *PinInput, photo []byte) (*models.Pin, error) {
	exists, err := s.pins.ExistsAt(ctx, ownerID, in.Latitude, in.Longitude)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if exists {
		return nil, apperr.Conflict("a pin at this location already exists")
	}

	now := time.Now()
	pin := &models.Pin{
		ID:           uuid.New().String(),
		UserID:       ownerID,
		Latitude:     in.Latitude,
		Longitude:    in.Longitude,
		Title:        in.Title,
		Caption:      in.Caption,
		Visibility:   in.Visibility,
		LocationTags: in.LocationTags,
		UserTags:     in.UserTags,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if pin.LocationTags == nil {
		pin.LocationTags = []string{}
	}
	if pin.UserTags == nil {
		pin.UserTags = []string{}
	}

	if len(photo) > 0 {
		url, err := s.photos.Upload(ctx, pinPhotoKey(ownerID, now), pinPhotoType, photo)
		if err != nil {
			return nil, apperr.External("failed to store pin photo", err)
		}
		pin.PhotoURL = &url
	}

	if err := s.pins.Create(ctx, pin); err != nil {
		return nil, apperr.Internal(err)
	}

	s.notifyTagged(ctx, ownerID, pin)
	return pin, nil
}

// pinPhotoKey namespaces pin photos by owner plus creation time so two
// pins from the same user never collide
func pinPhotoKey(ownerID string, t time.Time) string {
	return fmt.Sprintf("pins/%s/%d.jpg", ownerID, t.UnixNano())
}

// notifyTagged pushes to every tagged user with a registered device;
// notification failures never fail the pin operation
func (s *PinService) notifyTagged(ctx context.Context, ownerID string, pin *models.Pin) {
	if s.notifier == nil || len(pin.UserTags) == 0 {
		return
	}
	owner, err := s.users.GetByID(ctx, ownerID)
	if err != nil {
		log.Warn().Err(err).Str("user_id", ownerID).Msg("Skipping pin tag notifications")
		return
	}
	body := fmt.Sprintf("%s tagged you in \"%s\"", owner.Username, pin.Title)
	for _, taggedID := range pin.UserTags {
		tagged, err := s.users.GetByID(ctx, taggedID)
		if err != nil || tagged.DeviceToken == nil {
			continue
		}
		if err := s.notifier.Push(ctx, *tagged.DeviceToken, "You were tagged in a pin", body); err != nil {
			log.Warn().
				Err(err).
				Str("pin_id", pin.ID).
				Str("tagged_id", taggedID).
				Msg("Failed to push pin tag notification")
		}
	}
}

// Update overwrites a pin's attributes. A new photo replaces the stored
// one (old object deleted first); no photo leaves the reference as is.
func (s *PinService) Update(ctx context.Context, ownerID, pinID string, in *PinInput, photo []byte) (*models.Pin, error) {
	existing, err := s.pins.GetByOwner(ctx, ownerID, pinID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("pin not found")
		}
		return nil, apperr.Internal(err)
	}

	existing.Latitude = in.Latitude
	existing.Longitude = in.Longitude
	existing.Title = in.Title
	existing.Caption = in.Caption
	existing.Visibility = in.Visibility
	if in.LocationTags != nil {
		existing.LocationTags = in.LocationTags
	}
	if in.UserTags != nil {
		existing.UserTags = in.UserTags
	}

	if len(photo) > 0 {
		if existing.PhotoURL != nil {
			if err := s.photos.Delete(ctx, *existing.PhotoURL); err != nil {
				return nil, apperr.External("failed to delete previous pin photo", err)
			}
		}
		url, err := s.photos.Upload(ctx, pinPhotoKey(ownerID, time.Now()), pinPhotoType, photo)
		if err != nil {
			// the old object is already gone; report it, don't hide it
			return nil, apperr.External("failed to store pin photo", err)
		}
		existing.PhotoURL = &url
	}

	if err := s.pins.Update(ctx, existing); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("pin not found")
		}
		return nil, apperr.Internal(err)
	}
	return existing, nil
}

// Delete removes a pin and its stored photo. Success leaves no orphaned
// object behind.
func (s *PinService) Delete(ctx context.Context, ownerID, pinID string) error {
	pin, err := s.pins.GetByOwner(ctx, ownerID, pinID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("pin not found")
		}
		return apperr.Internal(err)
	}

	if pin.PhotoURL != nil {
		if err := s.photos.Delete(ctx, *pin.PhotoURL); err != nil {
			return apperr.External("failed to delete pin photo", err)
		}
	}

	deleted, err := s.pins.Delete(ctx, ownerID, pinID)
	if err != nil {
		return apperr.Internal(err)
	}
	if !deleted {
		return apperr.NotFound("pin not found")
	}
	return nil
}

// UpdateLocation updates only the coordinates of a pin
func (s *PinService) UpdateLocation(ctx context.Context, ownerID, pinID string, lat, lng float64) error {
	if err := s.pins.UpdateLocation(ctx, ownerID, pinID, lat, lng); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("pin not found")
		}
		return apperr.Internal(err)
	}
	return nil
}

// Get retrieves a single pin of the given owner
func (s *PinService) Get(ctx context.Context, ownerID, pinID string) (*models.Pin, error) {
	pin, err := s.pins.GetByOwner(ctx, ownerID, pinID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("pin not found")
		}
		return nil, apperr.Internal(err)
	}
	return pin, nil
}

// ListByOwner retrieves all pins of a user, newest first
func (s *PinService) ListByOwner(ctx context.Context, ownerID string) ([]*models.Pin, error) {
	pins, err := s.pins.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return pins, nil
}

// Like records a like; liking a pin twice is a no-op
func (s *PinService) Like(ctx context.Context, pinID, userID string) error {
	if err := s.requirePin(ctx, pinID); err != nil {
		return err
	}
	if err := s.likes.Add(ctx, pinID, userID); err != nil {
		return apperr.Internal(err)
	}
	return nil
}

// Unlike removes a like; removing an absent like is a no-op
func (s *PinService) Unlike(ctx context.Context, pinID, userID string) error {
	if err := s.requirePin(ctx, pinID); err != nil {
		return err
	}
	if err := s.likes.Remove(ctx, pinID, userID); err != nil {
		return apperr.Internal(err)
	}
	return nil
}

// ListLikes retrieves the profiles of everyone who liked a pin
func (s *PinService) ListLikes(ctx context.Context, pinID string) ([]*models.Profile, error) {
	if err := s.requirePin(ctx, pinID); err != nil {
		return nil, err
	}
	profiles, err := s.likes.ListByPin(ctx, pinID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return profiles, nil
}

func (s *PinService) requirePin(ctx context.Context, pinID string) error {
	if _, err := s.pins.Get(ctx, pinID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("pin not found")
		}
		return apperr.Internal(err)
	}
	return nil
}
