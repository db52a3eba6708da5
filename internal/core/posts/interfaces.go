package posts

import "context"

// Service defines the business logic interface for posts, likes, and comments
type Service interface {
	CreatePost(ctx context.Context, req CreatePostRequest) (*Post, error)
	EditPost(ctx context.Context, req EditPostRequest) (*Post, error)
	DeletePost(ctx context.Context, callerDID string, id int64) error

	// LikePost and UnlikePost are idempotent and return the resulting like count
	LikePost(ctx context.Context, callerDID string, id int64) (int, error)
	UnlikePost(ctx context.Context, callerDID string, id int64) (int, error)

	// CommentPost returns the full post so callers can render without a second query
	CommentPost(ctx context.Context, req CommentPostRequest) (*Post, error)

	// GetPost returns (nil, nil) for unknown or deleted IDs
	GetPost(ctx context.Context, id int64) (*Post, error)

	// GetUserPosts returns every post by authorDID, newest first
	GetUserPosts(ctx context.Context, authorDID string) ([]*Post, error)
}

// Repository defines the data access interface for posts.
// Every method is atomic: NotFound and ownership checks happen in the same
// critical section (or transaction) as the mutation they guard.
type Repository interface {
	// Create allocates the next ID and stamps CreatedAt
	Create(ctx context.Context, authorDID, content string) (*Post, error)

	// Update replaces content. Returns ErrNotFound or ErrForbidden (editorDID != author).
	Update(ctx context.Context, id int64, editorDID, content string) (*Post, error)

	// Delete removes the post with its likes and comments.
	// Returns ErrNotFound or ErrForbidden (requesterDID != author).
	Delete(ctx context.Context, id int64, requesterDID string) error

	AddLike(ctx context.Context, id int64, likerDID string) (int, error)
	RemoveLike(ctx context.Context, id int64, likerDID string) (int, error)

	// AppendComment stamps the comment and returns the updated post
	AppendComment(ctx context.Context, id int64, authorDID, content string) (*Post, error)

	// GetByID returns ErrNotFound for unknown IDs
	GetByID(ctx context.Context, id int64) (*Post, error)

	// ListByAuthor returns the author's posts in feed order (newest first)
	ListByAuthor(ctx context.Context, authorDID string) ([]*Post, error)
}

// RegistrationChecker reports whether a DID may act (has a profile).
// Implemented by profiles.Service.
type RegistrationChecker interface {
	RequireRegistered(ctx context.Context, did string) error
}
