package repository

import (
	"context"
	"fmt"
	"time"

	"pinpal-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// LikeRepository handles database operations for pin likes
type LikeRepository struct {
	db *pgxpool.Pool
}

// NewLikeRepository creates a new like repository
func NewLikeRepository(db *pgxpool.Pool) *LikeRepository {
	return &LikeRepository{db: db}
}

// Add records that a user likes a pin. The composite primary key makes
// a repeated like a no-op rather than a duplicate row.
func (r *LikeRepository) Add(ctx context.Context, pinID, userID string) error {
	query := `
		INSERT INTO pin_likes (pin_id, user_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (pin_id, user_id) DO NOTHING
	`
	_, err := r.db.Exec(ctx, query, pinID, userID, time.Now())
	if err != nil {
		return fmt.Errorf("failed to add like: %w", err)
	}
	return nil
}

// Remove deletes a like; removing an absent like is a no-op
func (r *LikeRepository) Remove(ctx context.Context, pinID, userID string) error {
	query := `DELETE FROM pin_likes WHERE pin_id = $1 AND user_id = $2`
	_, err := r.db.Exec(ctx, query, pinID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove like: %w", err)
	}
	return nil
}

// ListByPin retrieves the public profiles of everyone who liked a pin
func (r *LikeRepository) ListByPin(ctx context.Context, pinID string) ([]*models.Profile, error) {
	query := `
		SELECT u.id, u.username, u.full_name, u.profile_pic_url
		FROM pin_likes l
		JOIN users u ON u.id = l.user_id
		WHERE l.pin_id = $1
		ORDER BY l.created_at DESC
	`
	rows, err := r.db.Query(ctx, query, pinID)
	if err != nil {
		return nil, fmt.Errorf("failed to list likes: %w", err)
	}
	defer rows.Close()

	return scanProfiles(rows)
}
