package profiles

import "context"

// Repository defines the data access interface for profiles
type Repository interface {
	// Create inserts a new profile and stamps CreatedAt.
	// Returns ErrAlreadyRegistered if the DID already has a profile.
	Create(ctx context.Context, profile *Profile) error

	// GetByDID returns ErrProfileNotFound when the DID has no profile.
	GetByDID(ctx context.Context, did string) (*Profile, error)
}

// Service defines the business logic interface for profiles
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*Profile, error)

	// GetProfile returns (nil, nil) when the DID has not registered.
	GetProfile(ctx context.Context, did string) (*Profile, error)

	// RequireRegistered returns ErrNotRegistered unless did has a profile.
	// Other services call this before mutating on behalf of did.
	RequireRegistered(ctx context.Context, did string) error
}
