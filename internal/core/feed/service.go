package feed

import (
	"context"
	"fmt"

	"Agora/internal/core/posts"
)

type feedService struct {
	repo Repository
}

// NewFeedService creates a new feed service
func NewFeedService(repo Repository) Service {
	return &feedService{
		repo: repo,
	}
}

// GetFeedFor merges the followees' posts and returns one page of them.
// A zero limit or an offset past the end yields an empty page, never an error.
func (s *feedService) GetFeedFor(ctx context.Context, req GetFeedRequest) ([]*posts.Post, error) {
	if req.Offset < 0 {
		req.Offset = 0
	}
	if req.Limit <= 0 || req.ActorDID == "" {
		return []*posts.Post{}, nil
	}

	page, err := s.repo.GetFeed(ctx, req.ActorDID, req.Offset, req.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get feed: %w", err)
	}
	if page == nil {
		page = []*posts.Post{}
	}
	return page, nil
}

func (s *feedService) GetMyFeed(ctx context.Context, callerDID string, offset, limit int) ([]*posts.Post, error) {
	return s.GetFeedFor(ctx, GetFeedRequest{
		ActorDID: callerDID,
		Offset:   offset,
		Limit:    limit,
	})
}
