package memory

import (
	"context"

	"Agora/internal/core/graph"
)

type followRepo struct {
	store *Store
}

// NewFollowRepository creates a follow graph repository backed by the store
func NewFollowRepository(store *Store) graph.Repository {
	return &followRepo{store: store}
}

func (r *followRepo) Follow(ctx context.Context, followerDID, followeeDID string) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	addEdge(s.following, followerDID, followeeDID)
	addEdge(s.followers, followeeDID, followerDID)
	return nil
}

func (r *followRepo) Unfollow(ctx context.Context, followerDID, followeeDID string) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	removeEdge(s.following, followerDID, followeeDID)
	removeEdge(s.followers, followeeDID, followerDID)
	return nil
}

func (r *followRepo) ListFollowing(ctx context.Context, followerDID string) ([]string, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	return sortedKeys(s.following[followerDID]), nil
}

func (r *followRepo) ListFollowers(ctx context.Context, followeeDID string) ([]string, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	return sortedKeys(s.followers[followeeDID]), nil
}

func (r *followRepo) IsFollowing(ctx context.Context, followerDID, followeeDID string) (bool, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.following[followerDID][followeeDID]
	return ok, nil
}

func addEdge(index map[string]map[string]struct{}, from, to string) {
	set, ok := index[from]
	if !ok {
		set = make(map[string]struct{})
		index[from] = set
	}
	set[to] = struct{}{}
}

func removeEdge(index map[string]map[string]struct{}, from, to string) {
	set, ok := index[from]
	if !ok {
		return
	}
	delete(set, to)
	if len(set) == 0 {
		delete(index, from)
	}
}
