package repository

import (
	"context"
	"errors"
	"fmt"

	"pinpal-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// FriendshipRepository handles database operations for friendship edges
type FriendshipRepository struct {
	db *pgxpool.Pool
}

// NewFriendshipRepository creates a new friendship repository
func NewFriendshipRepository(db *pgxpool.Pool) *FriendshipRepository {
	return &FriendshipRepository{db: db}
}

// Insert creates a pending edge unless one already exists in either
// direction. Returns false when the pair already has an edge; the
// unique index on the normalized pair backs this up under races.
func (r *FriendshipRepository) Insert(ctx context.Context, edge *models.Friendship) (bool, error) {
	query := `
		INSERT INTO friendships (id, source_id, target_id, status, created_at)
		SELECT $1, $2, $3, $4, $5
		WHERE NOT EXISTS (
			SELECT 1 FROM friendships
			WHERE (source_id = $2 AND target_id = $3)
			   OR (source_id = $3 AND target_id = $2)
		)
		ON CONFLICT DO NOTHING
	`
	result, err := r.db.Exec(ctx, query,
		edge.ID, edge.SourceID, edge.TargetID, edge.Status, edge.CreatedAt)
	if err != nil {
		return false, fmt.Errorf("failed to create friendship: %w", err)
	}
	return result.RowsAffected() > 0, nil
}

// GetBetween retrieves the edge between two users regardless of
// direction. Returns (nil, nil) when no edge exists.
func (r *FriendshipRepository) GetBetween(ctx context.Context, a, b string) (*models.Friendship, error) {
	query := `
		SELECT id, source_id, target_id, status, created_at
		FROM friendships
		WHERE (source_id = $1 AND target_id = $2)
		   OR (source_id = $2 AND target_id = $1)
	`
	var edge models.Friendship
	err := r.db.QueryRow(ctx, query, a, b).Scan(
		&edge.ID, &edge.SourceID, &edge.TargetID, &edge.Status, &edge.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get friendship: %w", err)
	}
	return &edge, nil
}

// Accept flips a pending request sent from source to target into an
// accepted friendship. Returns false when no such pending edge exists.
func (r *FriendshipRepository) Accept(ctx context.Context, source, target string) (bool, error) {
	query := `
		UPDATE friendships SET status = $1
		WHERE source_id = $2 AND target_id = $3 AND status = $4
	`
	result, err := r.db.Exec(ctx, query,
		models.FriendStatusAccepted, source, target, models.FriendStatusPending)
	if err != nil {
		return false, fmt.Errorf("failed to accept friendship: %w", err)
	}
	return result.RowsAffected() > 0, nil
}

// Delete removes the edge between two users regardless of direction or
// status. Returns false when there was nothing to delete.
func (r *FriendshipRepository) Delete(ctx context.Context, a, b string) (bool, error) {
	query := `
		DELETE FROM friendships
		WHERE (source_id = $1 AND target_id = $2)
		   OR (source_id = $2 AND target_id = $1)
	`
	result, err := r.db.Exec(ctx, query, a, b)
	if err != nil {
		return false, fmt.Errorf("failed to delete friendship: %w", err)
	}
	return result.RowsAffected() > 0, nil
}

// ListFriends retrieves the public profiles of every accepted friend
func (r *FriendshipRepository) ListFriends(ctx context.Context, userID string) ([]*models.Profile, error) {
	query := `
		SELECT u.id, u.username, u.full_name, u.profile_pic_url
		FROM friendships f
		JOIN users u ON u.id = CASE WHEN f.source_id = $1 THEN f.target_id ELSE f.source_id END
		WHERE (f.source_id = $1 OR f.target_id = $1) AND f.status = $2
		ORDER BY u.username ASC
	`
	rows, err := r.db.Query(ctx, query, userID, models.FriendStatusAccepted)
	if err != nil {
		return nil, fmt.Errorf("failed to list friends: %w", err)
	}
	defer rows.Close()

	return scanProfiles(rows)
}

// ListIncoming retrieves the profiles of users with a pending request
// towards userID, newest request first
func (r *FriendshipRepository) ListIncoming(ctx context.Context, userID string) ([]*models.Profile, error) {
	query := `
		SELECT u.id, u.username, u.full_name, u.profile_pic_url
		FROM friendships f
		JOIN users u ON u.id = f.source_id
		WHERE f.target_id = $1 AND f.status = $2
		ORDER BY f.created_at DESC
	`
	rows, err := r.db.Query(ctx, query, userID, models.FriendStatusPending)
	if err != nil {
		return nil, fmt.Errorf("failed to list incoming requests: %w", err)
	}
	defer rows.Close()

	return scanProfiles(rows)
}

// Recommend ranks non-friend users by the number of mutual accepted
// friends, excluding the user and anyone with an existing edge to them.
// Ties break on username so the order is stable.
func (r *FriendshipRepository) Recommend(ctx context.Context, userID string, limit int) ([]*models.Recommendation, error) {
	query := `
		WITH my_friends AS (
			SELECT CASE WHEN source_id = $1 THEN target_id ELSE source_id END AS friend_id
			FROM friendships
			WHERE (source_id = $1 OR target_id = $1) AND status = $2
		),
		candidates AS (
			SELECT CASE WHEN f.source_id = mf.friend_id THEN f.target_id ELSE f.source_id END AS candidate_id
			FROM friendships f
			JOIN my_friends mf ON f.source_id = mf.friend_id OR f.target_id = mf.friend_id
			WHERE f.status = $2
		)
		SELECT u.id, u.username, u.full_name, u.profile_pic_url, COUNT(*) AS mutual_count
		FROM candidates c
		JOIN users u ON u.id = c.candidate_id
		WHERE c.candidate_id <> $1
		  AND NOT EXISTS (
			SELECT 1 FROM friendships e
			WHERE (e.source_id = $1 AND e.target_id = c.candidate_id)
			   OR (e.source_id = c.candidate_id AND e.target_id = $1)
		  )
		GROUP BY u.id, u.username, u.full_name, u.profile_pic_url
		ORDER BY mutual_count DESC, u.username ASC
		LIMIT $3
	`
	rows, err := r.db.Query(ctx, query, userID, models.FriendStatusAccepted, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to recommend friends: %w", err)
	}
	defer rows.Close()

	var recs []*models.Recommendation
	for rows.Next() {
		var p models.Profile
		var count int
		if err := rows.Scan(&p.ID, &p.Username, &p.FullName, &p.ProfilePicURL, &count); err != nil {
			return nil, fmt.Errorf("failed to scan recommendation: %w", err)
		}
		recs = append(recs, &models.Recommendation{Profile: &p, MutualCount: count})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating recommendations: %w", err)
	}
	return recs, nil
}
