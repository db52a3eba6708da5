package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwk"
)

// JWKSFetcher fetches and caches the JWKS published at a fixed URL.
// The jwk.Cache refreshes the set in the background for as long as the
// context passed to NewJWKSFetcher lives.
type JWKSFetcher struct {
	cache *jwk.Cache
	url   string
}

// NewJWKSFetcher registers url with a refreshing cache and performs the first fetch
func NewJWKSFetcher(ctx context.Context, url string, refreshInterval time.Duration) (*JWKSFetcher, error) {
	cache := jwk.NewCache(ctx)
	if err := cache.Register(url, jwk.WithMinRefreshInterval(refreshInterval)); err != nil {
		return nil, fmt.Errorf("failed to register JWKS URL: %w", err)
	}

	if _, err := cache.Refresh(ctx, url); err != nil {
		return nil, fmt.Errorf("failed to fetch JWKS: %w", err)
	}

	return &JWKSFetcher{
		cache: cache,
		url:   url,
	}, nil
}

// FetchPublicKey returns the raw public key (RSA or ECDSA) for kid.
// An unknown kid forces one refresh so rotated keys are picked up.
func (f *JWKSFetcher) FetchPublicKey(ctx context.Context, kid string) (interface{}, error) {
	set, err := f.cache.Get(ctx, f.url)
	if err != nil {
		return nil, fmt.Errorf("failed to get JWKS: %w", err)
	}

	key, ok := set.LookupKeyID(kid)
	if !ok {
		set, err = f.cache.Refresh(ctx, f.url)
		if err != nil {
			return nil, fmt.Errorf("failed to refresh JWKS: %w", err)
		}
		key, ok = set.LookupKeyID(kid)
		if !ok {
			return nil, fmt.Errorf("key with kid %s not found", kid)
		}
	}

	var raw interface{}
	if err := key.Raw(&raw); err != nil {
		return nil, fmt.Errorf("failed to extract public key: %w", err)
	}
	return raw, nil
}
