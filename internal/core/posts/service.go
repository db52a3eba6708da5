package posts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rivo/uniseg"
)

const (
	maxPostGraphemes    = 10000
	maxCommentGraphemes = 3000
)

type postService struct {
	repo     Repository
	profiles RegistrationChecker
	logger   *slog.Logger
}

// NewPostService creates a new post service
func NewPostService(repo Repository, profiles RegistrationChecker, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &postService{
		repo:     repo,
		profiles: profiles,
		logger:   logger,
	}
}

// CreatePost creates a post authored by the caller
// Flow: require profile -> validate content -> allocate ID and persist
func (s *postService) CreatePost(ctx context.Context, req CreatePostRequest) (*Post, error) {
	if err := s.profiles.RequireRegistered(ctx, req.AuthorDID); err != nil {
		return nil, err
	}

	if err := validateContent(req.Content, maxPostGraphemes); err != nil {
		return nil, err
	}

	post, err := s.repo.Create(ctx, req.AuthorDID, req.Content)
	if err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	s.logger.Info("post created",
		"id", post.ID,
		"author", post.AuthorDID)

	return post, nil
}

// EditPost replaces the content of a post the caller authored
// Errors are reported in order: not found, forbidden, empty content
func (s *postService) EditPost(ctx context.Context, req EditPostRequest) (*Post, error) {
	// 1. Existence and ownership first so an empty edit of someone else's post
	//    reports Forbidden rather than EmptyContent
	existing, err := s.repo.GetByID(ctx, req.ID)
	if err != nil {
		return nil, wrapRepoError("failed to get post", err)
	}
	if existing.AuthorDID != req.EditorDID {
		return nil, ErrForbidden
	}

	// 2. Content validation
	if err := validateContent(req.Content, maxPostGraphemes); err != nil {
		return nil, err
	}

	// 3. The repository re-checks existence and ownership atomically with the write
	post, err := s.repo.Update(ctx, req.ID, req.EditorDID, req.Content)
	if err != nil {
		return nil, wrapRepoError("failed to update post", err)
	}

	s.logger.Info("post edited",
		"id", post.ID,
		"author", post.AuthorDID)

	return post, nil
}

// DeletePost removes a post the caller authored, including its likes and comments
func (s *postService) DeletePost(ctx context.Context, callerDID string, id int64) error {
	if err := s.repo.Delete(ctx, id, callerDID); err != nil {
		return wrapRepoError("failed to delete post", err)
	}

	s.logger.Info("post deleted",
		"id", id,
		"author", callerDID)

	return nil
}

// LikePost adds the caller to the post's like set
func (s *postService) LikePost(ctx context.Context, callerDID string, id int64) (int, error) {
	if err := s.profiles.RequireRegistered(ctx, callerDID); err != nil {
		return 0, err
	}

	count, err := s.repo.AddLike(ctx, id, callerDID)
	if err != nil {
		return 0, wrapRepoError("failed to like post", err)
	}
	return count, nil
}

// UnlikePost removes the caller from the post's like set
func (s *postService) UnlikePost(ctx context.Context, callerDID string, id int64) (int, error) {
	if err := s.profiles.RequireRegistered(ctx, callerDID); err != nil {
		return 0, err
	}

	count, err := s.repo.RemoveLike(ctx, id, callerDID)
	if err != nil {
		return 0, wrapRepoError("failed to unlike post", err)
	}
	return count, nil
}

// CommentPost appends a comment and returns the updated post
func (s *postService) CommentPost(ctx context.Context, req CommentPostRequest) (*Post, error) {
	if err := s.profiles.RequireRegistered(ctx, req.AuthorDID); err != nil {
		return nil, err
	}

	if err := validateContent(req.Content, maxCommentGraphemes); err != nil {
		return nil, err
	}

	post, err := s.repo.AppendComment(ctx, req.ID, req.AuthorDID, req.Content)
	if err != nil {
		return nil, wrapRepoError("failed to comment on post", err)
	}

	s.logger.Debug("comment appended",
		"post", post.ID,
		"commenter", req.AuthorDID,
		"comment_count", len(post.Comments))

	return post, nil
}

func (s *postService) GetPost(ctx context.Context, id int64) (*Post, error) {
	post, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	return post, nil
}

func (s *postService) GetUserPosts(ctx context.Context, authorDID string) ([]*Post, error) {
	result, err := s.repo.ListByAuthor(ctx, authorDID)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	if result == nil {
		result = []*Post{}
	}
	return result, nil
}

// validateContent rejects whitespace-only text and text over maxGraphemes.
// Content is stored as given; trimming is only used for the emptiness check.
func validateContent(content string, maxGraphemes int) error {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return ErrEmptyContent
	}
	if uniseg.GraphemeClusterCount(content) > maxGraphemes {
		return fmt.Errorf("%w (max %d characters)", ErrContentTooLong, maxGraphemes)
	}
	return nil
}

// wrapRepoError passes domain sentinels through untouched and wraps everything else
func wrapRepoError(msg string, err error) error {
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrForbidden) {
		return err
	}
	return fmt.Errorf("%s: %w", msg, err)
}
