package posts

import (
	"time"
)

// Post represents a post with its like set and comment thread
// Likes holds each liking DID exactly once, sorted for stable rendering
// Comments are append-only; slice order is display order
type Post struct {
	CreatedAt time.Time  `json:"createdAt" db:"created_at"`
	EditedAt  *time.Time `json:"editedAt,omitempty" db:"edited_at"`
	AuthorDID string     `json:"author" db:"author_did"`
	Content   string     `json:"content" db:"content"`
	Likes     []string   `json:"likes"`
	Comments  []Comment  `json:"comments"`
	ID        int64      `json:"id" db:"id"`
}

// Comment is an immutable reply appended to a post
type Comment struct {
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	AuthorDID string    `json:"author" db:"author_did"`
	Content   string    `json:"content" db:"content"`
}

// Less reports whether a sorts before b in feed order:
// newest first, ties broken by the higher ID
func Less(a, b *Post) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}

// CreatePostRequest represents input for creating a new post
type CreatePostRequest struct {
	AuthorDID string `json:"-"` // Extracted from auth, not from the body
	Content   string `json:"content"`
}

// EditPostRequest represents input for replacing a post's content
type EditPostRequest struct {
	EditorDID string `json:"-"`
	Content   string `json:"content"`
	ID        int64  `json:"id"`
}

// CommentPostRequest represents input for appending a comment
type CommentPostRequest struct {
	AuthorDID string `json:"-"`
	Content   string `json:"content"`
	ID        int64  `json:"id"`
}
