package profiles

import "errors"

var (
	// ErrNotRegistered is returned when an operation requires the actor to have a profile
	ErrNotRegistered = errors.New("profile not found, please register first")

	// ErrAlreadyRegistered is returned when a DID registers a second time
	ErrAlreadyRegistered = errors.New("profile already registered")

	// ErrProfileNotFound is returned by repositories when no profile exists for a DID
	ErrProfileNotFound = errors.New("profile not found")

	// ErrInvalidUsername is returned for empty or oversized usernames
	ErrInvalidUsername = errors.New("invalid username")
)

// IsNotRegistered checks if err (or anything it wraps) is ErrNotRegistered
func IsNotRegistered(err error) bool {
	return errors.Is(err, ErrNotRegistered)
}
