package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"Agora/internal/core/posts"

	"github.com/lib/pq"
)

type postgresPostRepo struct {
	db *sql.DB
}

// NewPostRepository creates a new PostgreSQL post repository
func NewPostRepository(db *sql.DB) posts.Repository {
	return &postgresPostRepo{db: db}
}

// postColumns selects a post row with its like set aggregated in DID order
const postColumns = `
	p.id, p.author_did, p.content, p.created_at, p.edited_at,
	COALESCE((SELECT array_agg(l.liker_did ORDER BY l.liker_did) FROM post_likes l WHERE l.post_id = p.id), '{}')`

func (r *postgresPostRepo) Create(ctx context.Context, authorDID, content string) (*posts.Post, error) {
	query := `
		INSERT INTO posts (author_did, content)
		VALUES ($1, $2)
		RETURNING id, created_at`

	post := &posts.Post{
		AuthorDID: authorDID,
		Content:   content,
		Likes:     []string{},
		Comments:  []posts.Comment{},
	}
	if err := r.db.QueryRowContext(ctx, query, authorDID, content).Scan(&post.ID, &post.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to insert post: %w", err)
	}
	post.CreatedAt = post.CreatedAt.UTC()

	return post, nil
}

// Update locks the row, checks existence then ownership, and replaces the content
func (r *postgresPostRepo) Update(ctx context.Context, id int64, editorDID, content string) (*posts.Post, error) {
	var post *posts.Post
	err := withTx(ctx, r.db, nil, func(tx *sql.Tx) error {
		if err := lockOwnedPost(ctx, tx, id, editorDID); err != nil {
			return err
		}

		_, err := tx.ExecContext(ctx,
			`UPDATE posts SET content = $2, edited_at = clock_timestamp() WHERE id = $1`,
			id, content)
		if err != nil {
			return fmt.Errorf("failed to update post: %w", err)
		}

		post, err = getPost(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return post, nil
}

// Delete removes the post; likes and comments go with it via ON DELETE CASCADE
func (r *postgresPostRepo) Delete(ctx context.Context, id int64, requesterDID string) error {
	return withTx(ctx, r.db, nil, func(tx *sql.Tx) error {
		if err := lockOwnedPost(ctx, tx, id, requesterDID); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete post: %w", err)
		}
		return nil
	})
}

func (r *postgresPostRepo) AddLike(ctx context.Context, id int64, likerDID string) (int, error) {
	return r.mutateLikes(ctx, id,
		`INSERT INTO post_likes (post_id, liker_did) VALUES ($1, $2) ON CONFLICT (post_id, liker_did) DO NOTHING`,
		likerDID)
}

func (r *postgresPostRepo) RemoveLike(ctx context.Context, id int64, likerDID string) (int, error) {
	return r.mutateLikes(ctx, id,
		`DELETE FROM post_likes WHERE post_id = $1 AND liker_did = $2`,
		likerDID)
}

// mutateLikes applies one idempotent like statement under the post row lock
// and returns the resulting like count
func (r *postgresPostRepo) mutateLikes(ctx context.Context, id int64, stmt, likerDID string) (int, error) {
	var count int
	err := withTx(ctx, r.db, nil, func(tx *sql.Tx) error {
		if _, err := lockPost(ctx, tx, id); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, stmt, id, likerDID); err != nil {
			return fmt.Errorf("failed to update likes: %w", err)
		}

		err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM post_likes WHERE post_id = $1`, id).Scan(&count)
		if err != nil {
			return fmt.Errorf("failed to count likes: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *postgresPostRepo) AppendComment(ctx context.Context, id int64, authorDID, content string) (*posts.Post, error) {
	var post *posts.Post
	err := withTx(ctx, r.db, nil, func(tx *sql.Tx) error {
		if _, err := lockPost(ctx, tx, id); err != nil {
			return err
		}

		_, err := tx.ExecContext(ctx,
			`INSERT INTO post_comments (post_id, author_did, content) VALUES ($1, $2, $3)`,
			id, authorDID, content)
		if err != nil {
			return fmt.Errorf("failed to insert comment: %w", err)
		}

		post, err = getPost(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return post, nil
}

func (r *postgresPostRepo) GetByID(ctx context.Context, id int64) (*posts.Post, error) {
	var post *posts.Post
	err := withTx(ctx, r.db, snapshotRead, func(tx *sql.Tx) error {
		var err error
		post, err = getPost(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return post, nil
}

func (r *postgresPostRepo) ListByAuthor(ctx context.Context, authorDID string) ([]*posts.Post, error) {
	query := `SELECT ` + postColumns + `
		FROM posts p
		WHERE p.author_did = $1
		ORDER BY p.created_at DESC, p.id DESC`

	var result []*posts.Post
	err := withTx(ctx, r.db, snapshotRead, func(tx *sql.Tx) error {
		var err error
		result, err = queryPosts(ctx, tx, query, authorDID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list posts by author: %w", err)
	}
	return result, nil
}

// lockPost takes the row lock that serializes every mutation of one post
// and returns the post's author
func lockPost(ctx context.Context, tx *sql.Tx, id int64) (string, error) {
	var authorDID string
	err := tx.QueryRowContext(ctx, `SELECT author_did FROM posts WHERE id = $1 FOR UPDATE`, id).Scan(&authorDID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", posts.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to lock post: %w", err)
	}
	return authorDID, nil
}

// lockOwnedPost is lockPost plus the ownership check, in that order
func lockOwnedPost(ctx context.Context, tx *sql.Tx, id int64, callerDID string) error {
	authorDID, err := lockPost(ctx, tx, id)
	if err != nil {
		return err
	}
	if authorDID != callerDID {
		return posts.ErrForbidden
	}
	return nil
}

func getPost(ctx context.Context, q queryer, id int64) (*posts.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts p WHERE p.id = $1`

	result, err := queryPosts(ctx, q, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	if len(result) == 0 {
		return nil, posts.ErrNotFound
	}
	return result[0], nil
}

// queryPosts runs a query selecting postColumns and attaches each post's comments
func queryPosts(ctx context.Context, q queryer, query string, args ...any) ([]*posts.Post, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	result := []*posts.Post{}
	byID := make(map[int64]*posts.Post)
	ids := []int64{}
	for rows.Next() {
		post := &posts.Post{Comments: []posts.Comment{}}
		var editedAt sql.NullTime
		var likes pq.StringArray
		if err := rows.Scan(&post.ID, &post.AuthorDID, &post.Content, &post.CreatedAt, &editedAt, &likes); err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		post.CreatedAt = post.CreatedAt.UTC()
		if editedAt.Valid {
			t := editedAt.Time.UTC()
			post.EditedAt = &t
		}
		post.Likes = []string(likes)
		if post.Likes == nil {
			post.Likes = []string{}
		}

		result = append(result, post)
		byID[post.ID] = post
		ids = append(ids, post.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating posts: %w", err)
	}
	if len(ids) == 0 {
		return result, nil
	}

	if err := attachComments(ctx, q, byID, ids); err != nil {
		return nil, err
	}
	return result, nil
}

func attachComments(ctx context.Context, q queryer, byID map[int64]*posts.Post, ids []int64) error {
	query := `
		SELECT post_id, author_did, content, created_at
		FROM post_comments
		WHERE post_id = ANY($1)
		ORDER BY post_id, id`

	rows, err := q.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to query comments: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var postID int64
		var createdAt time.Time
		var c posts.Comment
		if err := rows.Scan(&postID, &c.AuthorDID, &c.Content, &createdAt); err != nil {
			return fmt.Errorf("failed to scan comment: %w", err)
		}
		c.CreatedAt = createdAt.UTC()
		if post, ok := byID[postID]; ok {
			post.Comments = append(post.Comments, c)
		}
	}
	return rows.Err()
}
