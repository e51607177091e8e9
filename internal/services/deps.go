package services

import (
	"context"

	"pinpal-backend/internal/models"
	"pinpal-backend/internal/repository"
)

// UserStore is the persistence surface the services need for users
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	PhoneExists(ctx context.Context, phoneNo string) (bool, error)
	UpdateProfile(ctx context.Context, userID string, upd *repository.ProfileUpdate) error
	UpdateProfilePicURL(ctx context.Context, userID string, url *string) error
	UpdateDeviceToken(ctx context.Context, userID string, token *string) error
	SetPhoneVerified(ctx context.Context, userID string) error
	Search(ctx context.Context, query string, limit int) ([]*models.Profile, error)
}

// FriendshipStore is the persistence surface for friendship edges
type FriendshipStore interface {
	Insert(ctx context.Context, edge *models.Friendship) (bool, error)
	GetBetween(ctx context.Context, a, b string) (*models.Friendship, error)
	Accept(ctx context.Context, source, target string) (bool, error)
	Delete(ctx context.Context, a, b string) (bool, error)
	ListFriends(ctx context.Context, userID string) ([]*models.Profile, error)
	ListIncoming(ctx context.Context, userID string) ([]*models.Profile, error)
	Recommend(ctx context.Context, userID string, limit int) ([]*models.Recommendation, error)
}

// PinStore is the persistence surface for pins
type PinStore interface {
	Create(ctx context.Context, pin *models.Pin) error
	ExistsAt(ctx context.Context, ownerID string, lat, lng float64) (bool, error)
	GetByOwner(ctx context.Context, ownerID, pinID string) (*models.Pin, error)
	Get(ctx context.Context, pinID string) (*models.Pin, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*models.Pin, error)
	Update(ctx context.Context, pin *models.Pin) error
	UpdateLocation(ctx context.Context, ownerID, pinID string, lat, lng float64) error
	Delete(ctx context.Context, ownerID, pinID string) (bool, error)
	ListFriendFeed(ctx context.Context, viewerID string) ([]*models.FriendPin, error)
	ListDiscoverable(ctx context.Context, viewerID string) ([]*models.Pin, error)
	ListTagged(ctx context.Context, userID string) ([]*models.Pin, error)
}

// LikeStore is the persistence surface for pin likes
type LikeStore interface {
	Add(ctx context.Context, pinID, userID string) error
	Remove(ctx context.Context, pinID, userID string) error
	ListByPin(ctx context.Context, pinID string) ([]*models.Profile, error)
}

// PhotoStore stores photo blobs in object storage. Upload returns the
// public URL of the stored object; Delete takes that URL back.
type PhotoStore interface {
	Upload(ctx context.Context, key, contentType string, data []byte) (string, error)
	Delete(ctx context.Context, photoURL string) error
}

// Notifier delivers a best-effort push notification to a device token
type Notifier interface {
	Push(ctx context.Context, deviceToken, title, body string) error
}

// SMSVerifier sends and checks one-time phone verification codes
type SMSVerifier interface {
	SendCode(ctx context.Context, phoneNo string) error
	CheckCode(ctx context.Context, phoneNo, code string) (bool, error)
}
