package memory

import (
	"container/heap"
	"context"
	"math"

	"Agora/internal/core/feed"
	"Agora/internal/core/posts"
)

type feedRepo struct {
	store *Store
}

// NewFeedRepository creates a feed repository backed by the store
func NewFeedRepository(store *Store) feed.Repository {
	return &feedRepo{store: store}
}

// GetFeed k-way merges the per-author post lists of everyone did follows.
// Each list is already in ascending (CreatedAt, ID) order, so the merge walks
// them from the tail and stops once offset+limit posts have been emitted.
func (r *feedRepo) GetFeed(ctx context.Context, did string, offset, limit int) ([]*posts.Post, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		return []*posts.Post{}, nil
	}

	h := make(cursorHeap, 0, len(s.following[did]))
	for followee := range s.following[did] {
		ids := s.authorPosts[followee]
		if len(ids) == 0 {
			continue
		}
		h = append(h, &cursor{
			ids:  ids,
			pos:  len(ids) - 1,
			head: s.posts[ids[len(ids)-1]],
		})
	}
	heap.Init(&h)

	end := offset + limit
	if end < offset {
		end = math.MaxInt
	}

	page := make([]*posts.Post, 0, min(limit, 64))
	for emitted := 0; h.Len() > 0 && emitted < end; emitted++ {
		c := h[0]
		if emitted >= offset {
			page = append(page, c.head.view())
		}

		c.pos--
		if c.pos < 0 {
			heap.Pop(&h)
			continue
		}
		c.head = s.posts[c.ids[c.pos]]
		heap.Fix(&h, 0)
	}

	return page, nil
}

// cursor walks one author's post IDs from newest to oldest
type cursor struct {
	head *postRecord
	ids  []int64
	pos  int
}

// cursorHeap orders cursors so the newest head post is on top
type cursorHeap []*cursor

func (h cursorHeap) Len() int { return len(h) }

func (h cursorHeap) Less(i, j int) bool {
	a, b := h[i].head, h[j].head
	if !a.createdAt.Equal(b.createdAt) {
		return a.createdAt.After(b.createdAt)
	}
	return a.id > b.id
}

func (h cursorHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *cursorHeap) Push(x any) { *h = append(*h, x.(*cursor)) }

func (h *cursorHeap) Pop() any {
	old := *h
	n := len(old)
	c := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return c
}
