package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"Agora/internal/core/posts"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(list []*posts.Post) []int64 {
	out := make([]int64, len(list))
	for i, p := range list {
		out[i] = p.ID
	}
	return out
}

func TestFeedRepo_MergesFolloweesOnly(t *testing.T) {
	store := newTestStore()
	postRepo := NewPostRepository(store)
	followRepo := NewFollowRepository(store)
	feedRepo := NewFeedRepository(store)
	ctx := context.Background()

	require.NoError(t, followRepo.Follow(ctx, "did:plc:alice", "did:plc:bob"))
	require.NoError(t, followRepo.Follow(ctx, "did:plc:alice", "did:plc:carol"))

	authors := []string{"did:plc:bob", "did:plc:alice", "did:plc:carol", "did:plc:dave", "did:plc:bob", "did:plc:carol"}
	for i, author := range authors {
		_, err := postRepo.Create(ctx, author, fmt.Sprintf("post %d", i))
		require.NoError(t, err)
	}

	page, err := feedRepo.GetFeed(ctx, "did:plc:alice", 0, 10)
	require.NoError(t, err)
	// alice's own post (2) and dave's post (4) are excluded
	assert.Equal(t, []int64{6, 5, 3, 1}, ids(page))
}

func TestFeedRepo_PaginationIsConsistent(t *testing.T) {
	store := newTestStore()
	postRepo := NewPostRepository(store)
	followRepo := NewFollowRepository(store)
	feedRepo := NewFeedRepository(store)
	ctx := context.Background()

	followees := []string{"did:plc:a", "did:plc:b", "did:plc:c"}
	for _, f := range followees {
		require.NoError(t, followRepo.Follow(ctx, "did:plc:reader", f))
	}
	for i := 0; i < 17; i++ {
		_, err := postRepo.Create(ctx, followees[i%3], fmt.Sprintf("p%d", i))
		require.NoError(t, err)
	}

	full, err := feedRepo.GetFeed(ctx, "did:plc:reader", 0, 100)
	require.NoError(t, err)
	require.Len(t, full, 17)
	for i := 1; i < len(full); i++ {
		assert.True(t, posts.Less(full[i-1], full[i]), "feed out of order at %d", i)
	}

	for n := 0; n <= 17; n += 4 {
		for m := 0; m <= 20; m += 3 {
			first, err := feedRepo.GetFeed(ctx, "did:plc:reader", 0, n)
			require.NoError(t, err)
			second, err := feedRepo.GetFeed(ctx, "did:plc:reader", n, m)
			require.NoError(t, err)
			combined, err := feedRepo.GetFeed(ctx, "did:plc:reader", 0, n+m)
			require.NoError(t, err)

			assert.Equal(t, ids(combined), append(ids(first), ids(second)...), "n=%d m=%d", n, m)
		}
	}
}

func TestFeedRepo_EdgeCases(t *testing.T) {
	store := newTestStore()
	postRepo := NewPostRepository(store)
	followRepo := NewFollowRepository(store)
	feedRepo := NewFeedRepository(store)
	ctx := context.Background()

	require.NoError(t, followRepo.Follow(ctx, "did:plc:alice", "did:plc:bob"))
	_, err := postRepo.Create(ctx, "did:plc:bob", "only post")
	require.NoError(t, err)

	page, err := feedRepo.GetFeed(ctx, "did:plc:alice", 0, 0)
	require.NoError(t, err)
	assert.Empty(t, page)

	page, err = feedRepo.GetFeed(ctx, "did:plc:alice", 5, 10)
	require.NoError(t, err)
	assert.Empty(t, page)

	page, err = feedRepo.GetFeed(ctx, "did:plc:nobody", 0, 10)
	require.NoError(t, err)
	assert.Empty(t, page)
}

func TestFeedRepo_TiesBrokenByID(t *testing.T) {
	// A clock that never moves still produces distinct stamps; simulate a
	// restored store where two authors share a timestamp instead.
	store := NewStore()
	same := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	store.posts[1] = &postRecord{id: 1, author: "did:plc:b", createdAt: same, likes: map[string]struct{}{}}
	store.posts[2] = &postRecord{id: 2, author: "did:plc:c", createdAt: same, likes: map[string]struct{}{}}
	store.authorPosts["did:plc:b"] = []int64{1}
	store.authorPosts["did:plc:c"] = []int64{2}
	store.nextPostID = 2
	addEdge(store.following, "did:plc:a", "did:plc:b")
	addEdge(store.following, "did:plc:a", "did:plc:c")

	page, err := NewFeedRepository(store).GetFeed(context.Background(), "did:plc:a", 0, 10)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 1}, ids(page))
}

func TestFeedRepo_DeletedPostsDisappear(t *testing.T) {
	store := newTestStore()
	postRepo := NewPostRepository(store)
	followRepo := NewFollowRepository(store)
	feedRepo := NewFeedRepository(store)
	ctx := context.Background()

	require.NoError(t, followRepo.Follow(ctx, "did:plc:alice", "did:plc:bob"))
	keep, err := postRepo.Create(ctx, "did:plc:bob", "keep")
	require.NoError(t, err)
	drop, err := postRepo.Create(ctx, "did:plc:bob", "drop")
	require.NoError(t, err)
	require.NoError(t, postRepo.Delete(ctx, drop.ID, "did:plc:bob"))

	page, err := feedRepo.GetFeed(ctx, "did:plc:alice", 0, 10)
	require.NoError(t, err)
	assert.Equal(t, []int64{keep.ID}, ids(page))
}
