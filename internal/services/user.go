package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pinpal-backend/internal/apperr"
	"pinpal-backend/internal/models"
	"pinpal-backend/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	jwtExpDays     = 365
	searchLimit    = 20
	profilePicType = "image/jpeg"
)

// UserService handles user-related business logic
type UserService struct {
	users     UserStore
	photos    PhotoStore
	jwtSecret string
}

// NewUserService creates a new user service
func NewUserService(users UserStore, photos PhotoStore, jwtSecret string) *UserService {
	return &UserService{
		users:     users,
		photos:    photos,
		jwtSecret: jwtSecret,
	}
}

// RegisterInput carries the signup fields
type RegisterInput struct {
	Username string
	FullName string
	Password string
	Birthday string
	PhoneNo  string
}

// Register creates a new user. The password is stored only as a bcrypt
// hash, and nothing sensitive is echoed back.
func (s *UserService) Register(ctx context.Context, in *RegisterInput) (*models.Profile, error) {
	taken, err := s.users.UsernameExists(ctx, in.Username)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if taken {
		return nil, apperr.Conflict("username already exists")
	}

	taken, err = s.users.PhoneExists(ctx, in.PhoneNo)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if taken {
		return nil, apperr.Conflict("phone number already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("failed to hash password: %w", err))
	}

	now := time.Now()
	user := &models.User{
		ID:           uuid.New().String(),
		Username:     in.Username,
		FullName:     in.FullName,
		PasswordHash: string(hash),
		Birthday:     in.Birthday,
		PhoneNo:      in.PhoneNo,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperr.Internal(err)
	}

	return user.Profile(), nil
}

// LoginResult is the minimal identity returned on a successful login
type LoginResult struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	PhoneNo  string `json:"phone_no"`
	Token    string `json:"token"`
}

// Authenticate verifies credentials and issues a JWT
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*LoginResult, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, apperr.Internal(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperr.InvalidCredential("incorrect password")
	}

	token, err := s.GenerateJWT(user.ID)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	return &LoginResult{
		ID:       user.ID,
		Username: user.Username,
		PhoneNo:  user.PhoneNo,
		Token:    token,
	}, nil
}

// GenerateJWT generates a JWT token for a user
func (s *UserService) GenerateJWT(userID string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().AddDate(0, 0, jwtExpDays).Unix(),
		"iat":     time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ValidateJWT validates a JWT token and returns the user ID
func (s *UserService) ValidateJWT(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})

	if err != nil {
		return "", fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return "", fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("invalid token claims")
	}

	userID, ok := claims["user_id"].(string)
	if !ok {
		return "", fmt.Errorf("user_id not found in token")
	}

	return userID, nil
}

// GetProfile returns the public profile of a user
func (s *UserService) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, apperr.Internal(err)
	}
	return user.Profile(), nil
}

// UpdateProfileInput carries the optional profile fields; nil keeps the
// current value
type UpdateProfileInput struct {
	Username *string
	FullName *string
	Birthday *string
	PhoneNo  *string
	Password *string
}

// UpdateProfile applies a partial update. A new password is always
// re-hashed before storage.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, in *UpdateProfileInput) error {
	current, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("user not found")
		}
		return apperr.Internal(err)
	}

	// Uniqueness checks only apply when the value actually changes;
	// re-submitting the current username or phone number is a no-op.
	if in.Username != nil && *in.Username != current.Username {
		taken, err := s.users.UsernameExists(ctx, *in.Username)
		if err != nil {
			return apperr.Internal(err)
		}
		if taken {
			return apperr.Conflict("username already exists")
		}
	}
	if in.PhoneNo != nil && *in.PhoneNo != current.PhoneNo {
		taken, err := s.users.PhoneExists(ctx, *in.PhoneNo)
		if err != nil {
			return apperr.Internal(err)
		}
		if taken {
			return apperr.Conflict("phone number already registered")
		}
	}

	upd := &repository.ProfileUpdate{
		Username: in.Username,
		FullName: in.FullName,
		Birthday: in.Birthday,
		PhoneNo:  in.PhoneNo,
	}
	if in.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), bcrypt.DefaultCost)
		if err != nil {
			return apperr.Internal(fmt.Errorf("failed to hash password: %w", err))
		}
		hashed := string(hash)
		upd.PasswordHash = &hashed
	}

	if err := s.users.UpdateProfile(ctx, userID, upd); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("user not found")
		}
		return apperr.Internal(err)
	}
	return nil
}

// UpdateProfilePicture uploads a new profile picture, or deletes the
// stored one when no bytes are supplied
func (s *UserService) UpdateProfilePicture(ctx context.Context, userID string, photo []byte) (*string, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, apperr.Internal(err)
	}

	if len(photo) == 0 {
		if user.ProfilePicURL != nil {
			if err := s.photos.Delete(ctx, *user.ProfilePicURL); err != nil {
				return nil, apperr.External("failed to delete profile picture", err)
			}
		}
		if err := s.users.UpdateProfilePicURL(ctx, userID, nil); err != nil {
			return nil, apperr.Internal(err)
		}
		return nil, nil
	}

	// One key per user, so a re-upload overwrites in place
	key := fmt.Sprintf("profiles/%s.jpg", userID)
	url, err := s.photos.Upload(ctx, key, profilePicType, photo)
	if err != nil {
		return nil, apperr.External("failed to store profile picture", err)
	}
	if err := s.users.UpdateProfilePicURL(ctx, userID, &url); err != nil {
		return nil, apperr.Internal(err)
	}
	return &url, nil
}

// UsernameAvailable reports whether a username is free
func (s *UserService) UsernameAvailable(ctx context.Context, username string) (bool, error) {
	exists, err := s.users.UsernameExists(ctx, username)
	if err != nil {
		return false, apperr.Internal(err)
	}
	return !exists, nil
}

// PhoneAvailable reports whether a phone number is free
func (s *UserService) PhoneAvailable(ctx context.Context, phoneNo string) (bool, error) {
	exists, err := s.users.PhoneExists(ctx, phoneNo)
	if err != nil {
		return false, apperr.Internal(err)
	}
	return !exists, nil
}

// SaveDeviceToken registers the push token for a user's device
func (s *UserService) SaveDeviceToken(ctx context.Context, userID, token string) error {
	if err := s.users.UpdateDeviceToken(ctx, userID, &token); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("user not found")
		}
		return apperr.Internal(err)
	}
	return nil
}

// Search finds users by username or full name
func (s *UserService) Search(ctx context.Context, query string) ([]*models.Profile, error) {
	profiles, err := s.users.Search(ctx, query, searchLimit)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return profiles, nil
}
