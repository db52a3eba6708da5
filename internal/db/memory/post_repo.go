package memory

import (
	"context"
	"slices"

	"Agora/internal/core/posts"
)

type postRepo struct {
	store *Store
}

// NewPostRepository creates a post repository backed by the store
func NewPostRepository(store *Store) posts.Repository {
	return &postRepo{store: store}
}

func (r *postRepo) Create(ctx context.Context, authorDID, content string) (*posts.Post, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextPostID++
	record := &postRecord{
		id:        s.nextPostID,
		author:    authorDID,
		content:   content,
		createdAt: s.stamp(),
		likes:     make(map[string]struct{}),
	}
	s.posts[record.id] = record
	s.authorPosts[authorDID] = append(s.authorPosts[authorDID], record.id)

	return record.view(), nil
}

func (r *postRepo) Update(ctx context.Context, id int64, editorDID, content string) (*posts.Post, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.posts[id]
	if !ok {
		return nil, posts.ErrNotFound
	}
	if record.author != editorDID {
		return nil, posts.ErrForbidden
	}

	editedAt := s.stamp()
	record.content = content
	record.editedAt = &editedAt

	return record.view(), nil
}

func (r *postRepo) Delete(ctx context.Context, id int64, requesterDID string) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.posts[id]
	if !ok {
		return posts.ErrNotFound
	}
	if record.author != requesterDID {
		return posts.ErrForbidden
	}

	// Likes and comments live on the record, so they go with it
	delete(s.posts, id)
	ids := s.authorPosts[record.author]
	if i, found := slices.BinarySearch(ids, id); found {
		ids = slices.Delete(ids, i, i+1)
	}
	if len(ids) == 0 {
		delete(s.authorPosts, record.author)
	} else {
		s.authorPosts[record.author] = ids
	}
	return nil
}

func (r *postRepo) AddLike(ctx context.Context, id int64, likerDID string) (int, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.posts[id]
	if !ok {
		return 0, posts.ErrNotFound
	}
	record.likes[likerDID] = struct{}{}
	return len(record.likes), nil
}

func (r *postRepo) RemoveLike(ctx context.Context, id int64, likerDID string) (int, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.posts[id]
	if !ok {
		return 0, posts.ErrNotFound
	}
	delete(record.likes, likerDID)
	return len(record.likes), nil
}

func (r *postRepo) AppendComment(ctx context.Context, id int64, authorDID, content string) (*posts.Post, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.posts[id]
	if !ok {
		return nil, posts.ErrNotFound
	}
	record.comments = append(record.comments, posts.Comment{
		AuthorDID: authorDID,
		Content:   content,
		CreatedAt: s.stamp(),
	})
	return record.view(), nil
}

func (r *postRepo) GetByID(ctx context.Context, id int64) (*posts.Post, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.posts[id]
	if !ok {
		return nil, posts.ErrNotFound
	}
	return record.view(), nil
}

func (r *postRepo) ListByAuthor(ctx context.Context, authorDID string) ([]*posts.Post, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.authorPosts[authorDID]
	result := make([]*posts.Post, 0, len(ids))
	for i := len(ids) - 1; i >= 0; i-- {
		result = append(result, s.posts[ids[i]].view())
	}
	return result, nil
}
