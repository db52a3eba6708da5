package profiles

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// cachingRepository wraps a Repository with a bounded LRU of found profiles.
// Profiles are immutable and never deleted, so cached entries never go stale.
// Misses are not cached: the DID may register at any moment.
type cachingRepository struct {
	base  Repository
	cache *lru.Cache[string, Profile]
}

// NewCachingRepository wraps base with an LRU cache holding up to size profiles
func NewCachingRepository(base Repository, size int) (Repository, error) {
	cache, err := lru.New[string, Profile](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create profile cache: %w", err)
	}
	return &cachingRepository{
		base:  base,
		cache: cache,
	}, nil
}

func (r *cachingRepository) Create(ctx context.Context, profile *Profile) error {
	if err := r.base.Create(ctx, profile); err != nil {
		return err
	}
	r.cache.Add(profile.DID, *profile)
	return nil
}

func (r *cachingRepository) GetByDID(ctx context.Context, did string) (*Profile, error) {
	if cached, ok := r.cache.Get(did); ok {
		return &cached, nil
	}

	profile, err := r.base.GetByDID(ctx, did)
	if err != nil {
		return nil, err
	}

	r.cache.Add(did, *profile)
	return profile, nil
}
