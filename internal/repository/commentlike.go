package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"blogpulse/internal/model"
)

type commentLikeRepository struct {
	db *sqlx.DB
}

func NewCommentLikeRepository(db *sqlx.DB) CommentLikeRepository {
	return &commentLikeRepository{db: db}
}

// Insert records a comment like. Returns model.ErrCommentAlreadyLiked on the
// unique constraint, which is the idempotent no-op branch for the caller.
func (r *commentLikeRepository) Insert(ctx context.Context, commentID int64, fingerprintHash string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO comment_likes (comment_id, fingerprint_hash)
		VALUES ($1, $2)
	`, commentID, fingerprintHash)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return model.ErrCommentAlreadyLiked
		}
		return fmt.Errorf("insert comment like: %w", err)
	}
	return nil
}

// Delete removes a comment like. Returns model.ErrCommentNotLiked when there
// was nothing to delete.
func (r *commentLikeRepository) Delete(ctx context.Context, commentID int64, fingerprintHash string) error {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM comment_likes WHERE comment_id = $1 AND fingerprint_hash = $2
	`, commentID, fingerprintHash)
	if err != nil {
		return fmt.Errorf("delete comment like: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrCommentNotLiked
	}
	return nil
}

// Has reports whether the fingerprint holds a like on the comment.
func (r *commentLikeRepository) Has(ctx context.Context, commentID int64, fingerprintHash string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `
		SELECT EXISTS(
			SELECT 1 FROM comment_likes WHERE comment_id = $1 AND fingerprint_hash = $2
		)
	`, commentID, fingerprintHash)
	if err != nil {
		return false, fmt.Errorf("check comment like: %w", err)
	}
	return exists, nil
}

// Count derives the like total from the ledger.
func (r *commentLikeRepository) Count(ctx context.Context, commentID int64) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM comment_likes WHERE comment_id = $1`, commentID)
	if err != nil {
		return 0, fmt.Errorf("count comment likes: %w", err)
	}
	return count, nil
}

// CountsForPost returns like counts for every comment on a post in one query,
// for hydrating the comment tree.
func (r *commentLikeRepository) CountsForPost(ctx context.Context, postID int64) (map[int64]int, error) {
	query := `
		SELECT cl.comment_id, COUNT(*) AS like_count
		FROM comment_likes cl
		JOIN comments c ON c.id = cl.comment_id
		WHERE c.post_id = $1
		GROUP BY cl.comment_id
	`
	type row struct {
		CommentID int64 `db:"comment_id"`
		LikeCount int   `db:"like_count"`
	}
	var rows []row
	if err := r.db.SelectContext(ctx, &rows, query, postID); err != nil {
		return nil, fmt.Errorf("count comment likes for post: %w", err)
	}

	counts := make(map[int64]int, len(rows))
	for _, r := range rows {
		counts[r.CommentID] = r.LikeCount
	}
	return counts, nil
}
