package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"blogpulse/internal/model"
)

type commentRepository struct {
	db *sqlx.DB
}

func NewCommentRepository(db *sqlx.DB) CommentRepository {
	return &commentRepository{db: db}
}

const commentColumns = `id, post_id, parent_id, fingerprint_hash, author_name, body, status, created_at`

// Create inserts a new comment in pending status. Runs inside the caller's
// transaction so the comment counter update commits atomically with it.
func (r *commentRepository) Create(ctx context.Context, tx *sqlx.Tx, postID int64, parentID *int64, fingerprintHash, authorName, body string) (*model.Comment, error) {
	query := `
		INSERT INTO comments (post_id, parent_id, fingerprint_hash, author_name, body)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + commentColumns
	var comment model.Comment
	err := tx.GetContext(ctx, &comment, query, postID, parentID, fingerprintHash, authorName, body)
	if err != nil {
		return nil, fmt.Errorf("insert comment: %w", err)
	}
	return &comment, nil
}

// GetByID retrieves a single comment. Soft-deleted comments are invisible.
func (r *commentRepository) GetByID(ctx context.Context, commentID int64) (*model.Comment, error) {
	query := `SELECT ` + commentColumns + ` FROM comments WHERE id = $1 AND deleted_at IS NULL`
	var comment model.Comment
	err := r.db.GetContext(ctx, &comment, query, commentID)
	if err == sql.ErrNoRows {
		return nil, model.ErrCommentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get comment: %w", err)
	}
	return &comment, nil
}

// Moderate applies the one-way transition out of pending. The status guard in
// the WHERE clause makes concurrent moderation of the same comment serialize:
// only the first committed update wins, later attempts see zero rows.
func (r *commentRepository) Moderate(ctx context.Context, commentID int64, status string) (*model.Comment, error) {
	query := `
		UPDATE comments SET status = $2
		WHERE id = $1 AND status = 'pending' AND deleted_at IS NULL
		RETURNING ` + commentColumns
	var comment model.Comment
	err := r.db.GetContext(ctx, &comment, query, commentID, status)
	if err == sql.ErrNoRows {
		// Distinguish a decided comment from a missing one.
		var exists bool
		if err := r.db.GetContext(ctx, &exists,
			`SELECT EXISTS(SELECT 1 FROM comments WHERE id = $1 AND deleted_at IS NULL)`, commentID); err != nil {
			return nil, fmt.Errorf("check comment exists: %w", err)
		}
		if exists {
			return nil, model.ErrAlreadyModerated
		}
		return nil, model.ErrCommentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("moderate comment: %w", err)
	}
	return &comment, nil
}

// ListApproved returns all approved comments for a post in creation order.
// The service rebuilds the nested tree from this flat list on every call.
func (r *commentRepository) ListApproved(ctx context.Context, postID int64) ([]model.Comment, error) {
	query := `SELECT ` + commentColumns + `
		FROM comments
		WHERE post_id = $1 AND status = 'approved' AND deleted_at IS NULL
		ORDER BY created_at ASC, id ASC`
	var comments []model.Comment
	if err := r.db.SelectContext(ctx, &comments, query, postID); err != nil {
		return nil, fmt.Errorf("list approved comments: %w", err)
	}
	return comments, nil
}

// ListPending returns the moderation queue, oldest first, plus the total.
func (r *commentRepository) ListPending(ctx context.Context, limit int) ([]model.Comment, int, error) {
	query := `SELECT ` + commentColumns + `
		FROM comments
		WHERE status = 'pending' AND deleted_at IS NULL
		ORDER BY created_at ASC, id ASC
		LIMIT $1`
	var comments []model.Comment
	if err := r.db.SelectContext(ctx, &comments, query, limit); err != nil {
		return nil, 0, fmt.Errorf("list pending comments: %w", err)
	}

	var total int
	err := r.db.GetContext(ctx, &total,
		`SELECT COUNT(*) FROM comments WHERE status = 'pending' AND deleted_at IS NULL`)
	if err != nil {
		return nil, 0, fmt.Errorf("count pending comments: %w", err)
	}
	return comments, total, nil
}

// SoftDelete hides a comment. Returns the post ID for the counter decrement,
// which must commit in the same transaction.
func (r *commentRepository) SoftDelete(ctx context.Context, tx *sqlx.Tx, commentID int64) (int64, error) {
	var postID int64
	err := tx.GetContext(ctx, &postID, `
		UPDATE comments SET deleted_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING post_id
	`, commentID)
	if err == sql.ErrNoRows {
		return 0, model.ErrCommentNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("soft delete comment: %w", err)
	}
	return postID, nil
}
