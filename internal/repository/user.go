package repository

import (
	"context"
	"errors"
	"fmt"

	"pinpal-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `id, username, full_name, password_hash, birthday, phone_no,
	phone_verified, profile_pic_url, device_token, created_at, updated_at`

// UserRepository handles database operations for users
type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID, &user.Username, &user.FullName, &user.PasswordHash,
		&user.Birthday, &user.PhoneNo, &user.PhoneVerified,
		&user.ProfilePicURL, &user.DeviceToken, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return &user, nil
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, username, full_name, password_hash, birthday, phone_no,
			phone_verified, profile_pic_url, device_token, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.db.Exec(ctx, query,
		user.ID, user.Username, user.FullName, user.PasswordHash,
		user.Birthday, user.PhoneNo, user.PhoneVerified,
		user.ProfilePicURL, user.DeviceToken, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRow(ctx, query, id))
}

// GetByUsername retrieves a user by username
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return scanUser(r.db.QueryRow(ctx, query, username))
}

// UsernameExists checks if a username is already taken
func (r *UserRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)`
	var exists bool
	if err := r.db.QueryRow(ctx, query, username).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check username existence: %w", err)
	}
	return exists, nil
}

// PhoneExists checks if a phone number is already registered
func (r *UserRepository) PhoneExists(ctx context.Context, phoneNo string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE phone_no = $1)`
	var exists bool
	if err := r.db.QueryRow(ctx, query, phoneNo).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check phone existence: %w", err)
	}
	return exists, nil
}

// ProfileUpdate carries the mutable profile fields; nil means keep current
type ProfileUpdate struct {
	Username     *string
	FullName     *string
	Birthday     *string
	PhoneNo      *string
	PasswordHash *string
}

// UpdateProfile applies a partial profile update
func (r *UserRepository) UpdateProfile(ctx context.Context, userID string, upd *ProfileUpdate) error {
	query := `
		UPDATE users SET
			username      = COALESCE($2, username),
			full_name     = COALESCE($3, full_name),
			birthday      = COALESCE($4, birthday),
			phone_no      = COALESCE($5, phone_no),
			password_hash = COALESCE($6, password_hash),
			updated_at    = NOW()
		WHERE id = $1
	`
	result, err := r.db.Exec(ctx, query, userID,
		upd.Username, upd.FullName, upd.Birthday, upd.PhoneNo, upd.PasswordHash)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("user %w", ErrNotFound)
	}
	return nil
}

// UpdateProfilePicURL sets or clears the stored profile picture reference
func (r *UserRepository) UpdateProfilePicURL(ctx context.Context, userID string, url *string) error {
	query := `UPDATE users SET profile_pic_url = $1, updated_at = NOW() WHERE id = $2`
	result, err := r.db.Exec(ctx, query, url, userID)
	if err != nil {
		return fmt.Errorf("failed to update profile picture: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("user %w", ErrNotFound)
	}
	return nil
}

// UpdateDeviceToken updates the push token for a user
func (r *UserRepository) UpdateDeviceToken(ctx context.Context, userID string, token *string) error {
	query := `UPDATE users SET device_token = $1, updated_at = NOW() WHERE id = $2`
	result, err := r.db.Exec(ctx, query, token, userID)
	if err != nil {
		return fmt.Errorf("failed to update device token: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("user %w", ErrNotFound)
	}
	return nil
}

// SetPhoneVerified marks the user's phone number as verified
func (r *UserRepository) SetPhoneVerified(ctx context.Context, userID string) error {
	query := `UPDATE users SET phone_verified = TRUE, updated_at = NOW() WHERE id = $1`
	result, err := r.db.Exec(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("failed to set phone verified: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("user %w", ErrNotFound)
	}
	return nil
}

// Search finds users whose username or full name matches the query
func (r *UserRepository) Search(ctx context.Context, query string, limit int) ([]*models.Profile, error) {
	sql := `
		SELECT id, username, full_name, profile_pic_url
		FROM users
		WHERE username ILIKE '%' || $1 || '%' OR full_name ILIKE '%' || $1 || '%'
		ORDER BY username ASC
		LIMIT $2
	`
	rows, err := r.db.Query(ctx, sql, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}
	defer rows.Close()

	return scanProfiles(rows)
}

func scanProfiles(rows pgx.Rows) ([]*models.Profile, error) {
	var profiles []*models.Profile
	for rows.Next() {
		var p models.Profile
		if err := rows.Scan(&p.ID, &p.Username, &p.FullName, &p.ProfilePicURL); err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		profiles = append(profiles, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating profiles: %w", err)
	}
	return profiles, nil
}
