package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"Agora/internal/core/feed"
	"Agora/internal/core/posts"
)

type postgresFeedRepo struct {
	db *sql.DB
}

// NewFeedRepository creates a new PostgreSQL feed repository
func NewFeedRepository(db *sql.DB) feed.Repository {
	return &postgresFeedRepo{db: db}
}

// GetFeed reads one page of the followees' posts. The page and the comments
// attached to it come from a single REPEATABLE READ snapshot.
func (r *postgresFeedRepo) GetFeed(ctx context.Context, did string, offset, limit int) ([]*posts.Post, error) {
	query := `SELECT ` + postColumns + `
		FROM posts p
		INNER JOIN follows f ON f.followee_did = p.author_did
		WHERE f.follower_did = $1
		ORDER BY p.created_at DESC, p.id DESC
		OFFSET $2
		LIMIT $3`

	var page []*posts.Post
	err := withTx(ctx, r.db, snapshotRead, func(tx *sql.Tx) error {
		var err error
		page, err = queryPosts(ctx, tx, query, did, offset, limit)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get feed: %w", err)
	}
	return page, nil
}
