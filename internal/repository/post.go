package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"blogpulse/internal/model"
)

type postRepository struct {
	db *sqlx.DB
}

func NewPostRepository(db *sqlx.DB) PostRepository {
	return &postRepository{db: db}
}

const postColumns = `id, title, slug, excerpt, body, featured_image_url,
	view_count, like_count, comment_count, published_at, created_at, updated_at`

// Create inserts a new post.
func (r *postRepository) Create(ctx context.Context, req model.CreatePostRequest) (*model.Post, error) {
	query := `
		INSERT INTO posts (title, slug, excerpt, body, featured_image_url)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + postColumns
	var post model.Post
	err := r.db.GetContext(ctx, &post, query,
		req.Title, req.Slug, req.Excerpt, req.Body, req.FeaturedImageURL)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return nil, model.ErrSlugTaken
		}
		return nil, fmt.Errorf("insert post: %w", err)
	}
	return &post, nil
}

// GetByID retrieves a single post.
func (r *postRepository) GetByID(ctx context.Context, postID int64) (*model.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE id = $1 AND deleted_at IS NULL`
	var post model.Post
	err := r.db.GetContext(ctx, &post, query, postID)
	if err == sql.ErrNoRows {
		return nil, model.ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}
	return &post, nil
}

const postSummaryColumns = `id, title, slug, excerpt, featured_image_url,
	view_count, like_count, comment_count, published_at`

// GetSummariesByIDs retrieves summaries for multiple posts, re-ordered to
// match the input order. Used for hydrating the trending list from cache.
func (r *postRepository) GetSummariesByIDs(ctx context.Context, postIDs []int64) ([]model.PostSummary, error) {
	if len(postIDs) == 0 {
		return []model.PostSummary{}, nil
	}

	query := `SELECT ` + postSummaryColumns + `
		FROM posts WHERE id = ANY($1) AND deleted_at IS NULL`
	var posts []model.PostSummary
	err := r.db.SelectContext(ctx, &posts, query, pq.Array(postIDs))
	if err != nil {
		return nil, fmt.Errorf("get posts by ids: %w", err)
	}

	postsMap := make(map[int64]model.PostSummary, len(posts))
	for _, p := range posts {
		postsMap[p.ID] = p
	}
	ordered := make([]model.PostSummary, 0, len(postIDs))
	for _, id := range postIDs {
		if p, ok := postsMap[id]; ok {
			ordered = append(ordered, p)
		}
	}
	return ordered, nil
}

// ListLatest returns the newest posts for the homepage.
func (r *postRepository) ListLatest(ctx context.Context, limit int) ([]model.PostSummary, error) {
	query := `SELECT ` + postSummaryColumns + `
		FROM posts
		WHERE deleted_at IS NULL
		ORDER BY published_at DESC, id DESC
		LIMIT $1`
	var posts []model.PostSummary
	if err := r.db.SelectContext(ctx, &posts, query, limit); err != nil {
		return nil, fmt.Errorf("list latest posts: %w", err)
	}
	return posts, nil
}

// ListPopular ranks posts by engagement score: each like weighs twice a view.
// This is the database fallback for the trending cache.
func (r *postRepository) ListPopular(ctx context.Context, limit int) ([]model.PostSummary, error) {
	query := `SELECT ` + postSummaryColumns + `
		FROM posts
		WHERE deleted_at IS NULL
		ORDER BY view_count + like_count * 2 DESC, published_at DESC
		LIMIT $1`
	var posts []model.PostSummary
	if err := r.db.SelectContext(ctx, &posts, query, limit); err != nil {
		return nil, fmt.Errorf("list popular posts: %w", err)
	}
	return posts, nil
}

// Delete performs a soft delete on a post.
func (r *postRepository) Delete(ctx context.Context, postID int64) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE posts SET deleted_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`, postID)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrPostNotFound
	}
	return nil
}

// Exists checks if a post exists and is not deleted.
func (r *postRepository) Exists(ctx context.Context, postID int64) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM posts WHERE id = $1 AND deleted_at IS NULL)`, postID)
	if err != nil {
		return false, fmt.Errorf("check post exists: %w", err)
	}
	return exists, nil
}

// ViewCount reads the current view counter.
func (r *postRepository) ViewCount(ctx context.Context, postID int64) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		`SELECT view_count FROM posts WHERE id = $1 AND deleted_at IS NULL`, postID)
	if err == sql.ErrNoRows {
		return 0, model.ErrPostNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("get view count: %w", err)
	}
	return count, nil
}

// LikeCount reads the current like counter.
func (r *postRepository) LikeCount(ctx context.Context, postID int64) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		`SELECT like_count FROM posts WHERE id = $1 AND deleted_at IS NULL`, postID)
	if err == sql.ErrNoRows {
		return 0, model.ErrPostNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("get like count: %w", err)
	}
	return count, nil
}

// IncrementViewCount bumps the view counter and returns the new value.
// Must run in the same transaction as the ledger insert.
func (r *postRepository) IncrementViewCount(ctx context.Context, tx *sqlx.Tx, postID int64) (int, error) {
	var count int
	err := tx.GetContext(ctx, &count, `
		UPDATE posts SET view_count = view_count + 1, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING view_count
	`, postID)
	if err == sql.ErrNoRows {
		return 0, model.ErrPostNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("update view count: %w", err)
	}
	return count, nil
}

// IncrementLikeCount applies delta to the like counter and returns the new
// value. Must run in the same transaction as the ledger mutation.
func (r *postRepository) IncrementLikeCount(ctx context.Context, tx *sqlx.Tx, postID int64, delta int) (int, error) {
	var count int
	err := tx.GetContext(ctx, &count, `
		UPDATE posts SET like_count = like_count + $1, updated_at = NOW()
		WHERE id = $2 AND deleted_at IS NULL
		RETURNING like_count
	`, delta, postID)
	if err == sql.ErrNoRows {
		return 0, model.ErrPostNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("update like count: %w", err)
	}
	return count, nil
}

// IncrementCommentCount applies delta to the comment counter.
func (r *postRepository) IncrementCommentCount(ctx context.Context, tx *sqlx.Tx, postID int64, delta int) error {
	result, err := tx.ExecContext(ctx, `
		UPDATE posts SET comment_count = comment_count + $1, updated_at = NOW()
		WHERE id = $2 AND deleted_at IS NULL
	`, delta, postID)
	if err != nil {
		return fmt.Errorf("update comment count: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrPostNotFound
	}
	return nil
}
