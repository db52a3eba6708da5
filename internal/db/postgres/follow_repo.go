package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"Agora/internal/core/graph"
)

type postgresFollowRepo struct {
	db *sql.DB
}

// NewFollowRepository creates a new PostgreSQL follow repository
func NewFollowRepository(db *sql.DB) graph.Repository {
	return &postgresFollowRepo{db: db}
}

func (r *postgresFollowRepo) Follow(ctx context.Context, followerDID, followeeDID string) error {
	query := `
		INSERT INTO follows (follower_did, followee_did)
		VALUES ($1, $2)
		ON CONFLICT (follower_did, followee_did) DO NOTHING`

	if _, err := r.db.ExecContext(ctx, query, followerDID, followeeDID); err != nil {
		return fmt.Errorf("failed to insert follow: %w", err)
	}
	return nil
}

func (r *postgresFollowRepo) Unfollow(ctx context.Context, followerDID, followeeDID string) error {
	query := `DELETE FROM follows WHERE follower_did = $1 AND followee_did = $2`

	if _, err := r.db.ExecContext(ctx, query, followerDID, followeeDID); err != nil {
		return fmt.Errorf("failed to delete follow: %w", err)
	}
	return nil
}

func (r *postgresFollowRepo) ListFollowing(ctx context.Context, followerDID string) ([]string, error) {
	return r.listDIDs(ctx,
		`SELECT followee_did FROM follows WHERE follower_did = $1 ORDER BY followee_did`,
		followerDID)
}

func (r *postgresFollowRepo) ListFollowers(ctx context.Context, followeeDID string) ([]string, error) {
	return r.listDIDs(ctx,
		`SELECT follower_did FROM follows WHERE followee_did = $1 ORDER BY follower_did`,
		followeeDID)
}

func (r *postgresFollowRepo) IsFollowing(ctx context.Context, followerDID, followeeDID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM follows WHERE follower_did = $1 AND followee_did = $2)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, followerDID, followeeDID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check follow: %w", err)
	}
	return exists, nil
}

func (r *postgresFollowRepo) listDIDs(ctx context.Context, query, did string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, query, did)
	if err != nil {
		return nil, fmt.Errorf("failed to list follows: %w", err)
	}
	defer func() { _ = rows.Close() }()

	dids := []string{}
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("failed to scan follow: %w", err)
		}
		dids = append(dids, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating follows: %w", err)
	}
	return dids, nil
}
