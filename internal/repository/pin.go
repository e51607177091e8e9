package repository

import (
	"context"
	"errors"
	"fmt"

	"pinpal-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const pinColumns = `id, user_id, latitude, longitude, title, caption, visibility,
	photo_url, location_tags, user_tags, created_at, updated_at`

// PinRepository handles database operations for pins
type PinRepository struct {
	db *pgxpool.Pool
}

// NewPinRepository creates a new pin repository
func NewPinRepository(db *pgxpool.Pool) *PinRepository {
	return &PinRepository{db: db}
}

func scanPinRow(row pgx.Row) (*models.Pin, error) {
	var pin models.Pin
	err := row.Scan(
		&pin.ID, &pin.UserID, &pin.Latitude, &pin.Longitude,
		&pin.Title, &pin.Caption, &pin.Visibility, &pin.PhotoURL,
		&pin.LocationTags, &pin.UserTags, &pin.CreatedAt, &pin.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("pin %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to scan pin: %w", err)
	}
	return &pin, nil
}

func scanPins(rows pgx.Rows) ([]*models.Pin, error) {
	var pins []*models.Pin
	for rows.Next() {
		var pin models.Pin
		err := rows.Scan(
			&pin.ID, &pin.UserID, &pin.Latitude, &pin.Longitude,
			&pin.Title, &pin.Caption, &pin.Visibility, &pin.PhotoURL,
			&pin.LocationTags, &pin.UserTags, &pin.CreatedAt, &pin.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pin: %w", err)
		}
		pins = append(pins, &pin)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating pins: %w", err)
	}
	return pins, nil
}

// Create creates a new pin
func (r *PinRepository) Create(ctx context.Context, pin *models.Pin) error {
	query := `
		INSERT INTO pins (id, user_id, latitude, longitude, title, caption, visibility,
			photo_url, location_tags, user_tags, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := r.db.Exec(ctx, query,
		pin.ID, pin.UserID, pin.Latitude, pin.Longitude,
		pin.Title, pin.Caption, pin.Visibility, pin.PhotoURL,
		pin.LocationTags, pin.UserTags, pin.CreatedAt, pin.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create pin: %w", err)
	}
	return nil
}

// GetByOwner retrieves a pin that belongs to the given owner
func (r *PinRepository) GetByOwner(ctx context.Context, ownerID, pinID string) (*models.Pin, error) {
	query := `SELECT ` + pinColumns + ` FROM pins WHERE id = $1 AND user_id = $2`
	return scanPinRow(r.db.QueryRow(ctx, query, pinID, ownerID))
}

// ExistsAt checks if the owner already has a pin at the exact coordinates
func (r *PinRepository) ExistsAt(ctx context.Context, ownerID string, lat, lng float64) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM pins WHERE user_id = $1 AND latitude = $2 AND longitude = $3)`
	var exists bool
	if err := r.db.QueryRow(ctx, query, ownerID, lat, lng).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check pin existence: %w", err)
	}
	return exists, nil
}

// Get retrieves a pin by ID
func (r *PinRepository) Get(ctx context.Context, pinID string) (*models.Pin, error) {
	query := `SELECT ` + pinColumns + ` FROM pins WHERE id = $1`
	return scanPinRow(r.db.QueryRow(ctx, query, pinID))
}

// ListByOwner retrieves all pins of a user, newest first
func (r *PinRepository) ListByOwner(ctx context.Context, ownerID string) ([]*models.Pin, error) {
	query := `SELECT ` + pinColumns + ` FROM pins WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pins: %w", err)
	}
	defer rows.Close()

	return scanPins(rows)
}

// Update overwrites the mutable attributes of a pin
func (r *PinRepository) Update(ctx context.Context, pin *models.Pin) error {
	query := `
		UPDATE pins SET
			latitude = $3, longitude = $4, title = $5, caption = $6,
			visibility = $7, photo_url = $8, location_tags = $9, user_tags = $10,
			updated_at = NOW()
		WHERE id = $1 AND user_id = $2
	`
	result, err := r.db.Exec(ctx, query,
		pin.ID, pin.UserID, pin.Latitude, pin.Longitude,
		pin.Title, pin.Caption, pin.Visibility, pin.PhotoURL,
		pin.LocationTags, pin.UserTags,
	)
	if err != nil {
		return fmt.Errorf("failed to update pin: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("pin %w", ErrNotFound)
	}
	return nil
}

// UpdateLocation updates only the coordinates of a pin
func (r *PinRepository) UpdateLocation(ctx context.Context, ownerID, pinID string, lat, lng float64) error {
	query := `
		UPDATE pins SET latitude = $3, longitude = $4, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
	`
	result, err := r.db.Exec(ctx, query, pinID, ownerID, lat, lng)
	if err != nil {
		return fmt.Errorf("failed to update pin location: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("pin %w", ErrNotFound)
	}
	return nil
}

// Delete removes a pin owned by the given user. Returns false when no
// such pin existed.
func (r *PinRepository) Delete(ctx context.Context, ownerID, pinID string) (bool, error) {
	query := `DELETE FROM pins WHERE id = $1 AND user_id = $2`
	result, err := r.db.Exec(ctx, query, pinID, ownerID)
	if err != nil {
		return false, fmt.Errorf("failed to delete pin: %w", err)
	}
	return result.RowsAffected() > 0, nil
}

// ListFriendFeed retrieves the non-private pins of every accepted
// friend of the viewer, paired with the author's profile, newest first
func (r *PinRepository) ListFriendFeed(ctx context.Context, viewerID string) ([]*models.FriendPin, error) {
	query := `
		SELECT p.id, p.user_id, p.latitude, p.longitude, p.title, p.caption,
			p.visibility, p.photo_url, p.location_tags, p.user_tags, p.created_at, p.updated_at,
			u.id, u.username, u.full_name, u.profile_pic_url
		FROM pins p
		JOIN users u ON u.id = p.user_id
		WHERE p.visibility >= $2
		  AND p.user_id IN (
			SELECT CASE WHEN source_id = $1 THEN target_id ELSE source_id END
			FROM friendships
			WHERE (source_id = $1 OR target_id = $1) AND status = $3
		  )
		ORDER BY p.created_at DESC
	`
	rows, err := r.db.Query(ctx, query, viewerID, models.VisibilityFriends, models.FriendStatusAccepted)
	if err != nil {
		return nil, fmt.Errorf("failed to list friend feed: %w", err)
	}
	defer rows.Close()

	var feed []*models.FriendPin
	for rows.Next() {
		var pin models.Pin
		var author models.Profile
		err := rows.Scan(
			&pin.ID, &pin.UserID, &pin.Latitude, &pin.Longitude,
			&pin.Title, &pin.Caption, &pin.Visibility, &pin.PhotoURL,
			&pin.LocationTags, &pin.UserTags, &pin.CreatedAt, &pin.UpdatedAt,
			&author.ID, &author.Username, &author.FullName, &author.ProfilePicURL,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan friend pin: %w", err)
		}
		feed = append(feed, &models.FriendPin{Pin: &pin, Author: &author})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating friend feed: %w", err)
	}
	return feed, nil
}

// ListDiscoverable retrieves public pins not authored by the viewer or
// by any currently accepted friend of the viewer, newest first. Only
// accepted edges count; pending requests do not hide content.
func (r *PinRepository) ListDiscoverable(ctx context.Context, viewerID string) ([]*models.Pin, error) {
	query := `
		SELECT ` + pinColumns + ` FROM pins
		WHERE visibility = $2
		  AND user_id <> $1
		  AND user_id NOT IN (
			SELECT CASE WHEN source_id = $1 THEN target_id ELSE source_id END
			FROM friendships
			WHERE (source_id = $1 OR target_id = $1) AND status = $3
		  )
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query, viewerID, models.VisibilityPublic, models.FriendStatusAccepted)
	if err != nil {
		return nil, fmt.Errorf("failed to list discoverable pins: %w", err)
	}
	defer rows.Close()

	return scanPins(rows)
}

// ListTagged retrieves pins whose user-tag set contains the given user,
// newest first
func (r *PinRepository) ListTagged(ctx context.Context, userID string) ([]*models.Pin, error) {
	query := `SELECT ` + pinColumns + ` FROM pins WHERE $1 = ANY(user_tags) ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tagged pins: %w", err)
	}
	defer rows.Close()

	return scanPins(rows)
}
