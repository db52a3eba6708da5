package memory

import (
	"context"

	"Agora/internal/core/profiles"
)

type profileRepo struct {
	store *Store
}

// NewProfileRepository creates a profile repository backed by the store
func NewProfileRepository(store *Store) profiles.Repository {
	return &profileRepo{store: store}
}

func (r *profileRepo) Create(ctx context.Context, profile *profiles.Profile) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.profiles[profile.DID]; exists {
		return profiles.ErrAlreadyRegistered
	}

	profile.CreatedAt = s.stamp()
	s.profiles[profile.DID] = *profile
	return nil
}

func (r *profileRepo) GetByDID(ctx context.Context, did string) (*profiles.Profile, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	profile, ok := s.profiles[did]
	if !ok {
		return nil, profiles.ErrProfileNotFound
	}
	return &profile, nil
}
