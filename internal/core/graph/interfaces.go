package graph

import "context"

// Repository defines the data access interface for follow edges
type Repository interface {
	// Follow inserts the edge; an existing edge is a no-op success
	Follow(ctx context.Context, followerDID, followeeDID string) error

	// Unfollow removes the edge; a missing edge is a no-op success
	Unfollow(ctx context.Context, followerDID, followeeDID string) error

	// ListFollowing returns the DIDs followerDID follows, sorted, without duplicates
	ListFollowing(ctx context.Context, followerDID string) ([]string, error)

	// ListFollowers returns the DIDs following followeeDID, sorted, without duplicates
	ListFollowers(ctx context.Context, followeeDID string) ([]string, error)

	IsFollowing(ctx context.Context, followerDID, followeeDID string) (bool, error)
}

// Service defines the business logic interface for the follow graph
type Service interface {
	Follow(ctx context.Context, callerDID, subjectDID string) error
	Unfollow(ctx context.Context, callerDID, subjectDID string) error
	GetFollowing(ctx context.Context, did string) ([]string, error)
	GetFollowers(ctx context.Context, did string) ([]string, error)
	IsFollowing(ctx context.Context, followerDID, followeeDID string) (bool, error)
}

// RegistrationChecker is satisfied by profiles.Service
type RegistrationChecker interface {
	RequireRegistered(ctx context.Context, did string) error
}
