package posts

import (
	"errors"
)

// Sentinel errors for post operations
var (
	// ErrNotFound is returned when a post ID does not exist (or was deleted)
	ErrNotFound = errors.New("post not found")

	// ErrForbidden is returned when the caller is not the post author
	ErrForbidden = errors.New("only the author can modify this post")

	// ErrEmptyContent is returned when post or comment text is empty after trimming
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrContentTooLong is returned when text exceeds the grapheme limit
	ErrContentTooLong = errors.New("content too long")
)

// IsNotFound checks if error is a post not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsForbidden checks if error is an ownership failure
func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden)
}
