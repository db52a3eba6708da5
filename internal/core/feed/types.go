package feed

import (
	"context"

	"Agora/internal/core/posts"
)

// Repository defines feed data access.
// GetFeed reads the follow edges and post lists of one consistent store state.
type Repository interface {
	GetFeed(ctx context.Context, did string, offset, limit int) ([]*posts.Post, error)
}

// Service defines feed business logic
type Service interface {
	// GetFeedFor returns posts authored by the DIDs that did follows, newest first,
	// sliced to [offset, offset+limit)
	GetFeedFor(ctx context.Context, req GetFeedRequest) ([]*posts.Post, error)

	// GetMyFeed is GetFeedFor with the caller's own DID
	GetMyFeed(ctx context.Context, callerDID string, offset, limit int) ([]*posts.Post, error)
}

// GetFeedRequest represents input for fetching a feed page
type GetFeedRequest struct {
	ActorDID string `json:"actor"`
	Offset   int    `json:"offset"`
	Limit    int    `json:"limit"`
}
