// Package memory implements every repository over one process-wide store
// guarded by a single RWMutex. Each repository method runs as one critical
// section, so operations are linearizable: writers are exclusive and readers
// never observe a half-applied mutation.
package memory

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"Agora/internal/core/posts"
	"Agora/internal/core/profiles"
)

type postRecord struct {
	createdAt time.Time
	editedAt  *time.Time
	likes     map[string]struct{}
	author    string
	content   string
	comments  []posts.Comment
	id        int64
}

// Store holds all profiles, posts, and follow edges.
// Construct one per process with NewStore and hand it to the repository constructors.
type Store struct {
	lastStamp time.Time
	now       func() time.Time
	logger    *slog.Logger

	profiles    map[string]profiles.Profile
	posts       map[int64]*postRecord
	authorPosts map[string][]int64 // ascending ID, which is ascending CreatedAt
	following   map[string]map[string]struct{}
	followers   map[string]map[string]struct{}

	nextPostID int64
	mu         sync.RWMutex
}

// Option configures a Store
type Option func(*Store)

// WithClock overrides the wall clock used to stamp entities
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithLogger sets the store logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// NewStore creates an empty store
func NewStore(opts ...Option) *Store {
	s := &Store{
		now:    time.Now,
		logger: slog.Default(),
	}
	s.reset()
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) reset() {
	s.profiles = make(map[string]profiles.Profile)
	s.posts = make(map[int64]*postRecord)
	s.authorPosts = make(map[string][]int64)
	s.following = make(map[string]map[string]struct{})
	s.followers = make(map[string]map[string]struct{})
	s.nextPostID = 0
	s.lastStamp = time.Time{}
}

// stamp returns a strictly increasing UTC timestamp. Must hold s.mu for writing.
// A clock that stalls or steps backwards still yields ordered CreatedAt values,
// which keeps every per-author list sorted in feed order.
func (s *Store) stamp() time.Time {
	t := s.now().UTC()
	if !t.After(s.lastStamp) {
		t = s.lastStamp.Add(time.Nanosecond)
	}
	s.lastStamp = t
	return t
}

// Stats reports entity counts, used for startup logging
type Stats struct {
	Profiles   int
	Posts      int
	Follows    int
	NextPostID int64
}

// Stats returns a consistent count of the stored entities
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	follows := 0
	for _, set := range s.following {
		follows += len(set)
	}
	return Stats{
		Profiles:   len(s.profiles),
		Posts:      len(s.posts),
		Follows:    follows,
		NextPostID: s.nextPostID,
	}
}

// view copies a record into a caller-owned Post. Must hold s.mu.
func (r *postRecord) view() *posts.Post {
	likes := make([]string, 0, len(r.likes))
	for did := range r.likes {
		likes = append(likes, did)
	}
	sort.Strings(likes)

	comments := make([]posts.Comment, len(r.comments))
	copy(comments, r.comments)

	var editedAt *time.Time
	if r.editedAt != nil {
		t := *r.editedAt
		editedAt = &t
	}

	return &posts.Post{
		ID:        r.id,
		AuthorDID: r.author,
		Content:   r.content,
		CreatedAt: r.createdAt,
		EditedAt:  editedAt,
		Likes:     likes,
		Comments:  comments,
	}
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
