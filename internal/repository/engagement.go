package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"blogpulse/internal/model"
)

type engagementRepository struct {
	db *sqlx.DB
}

func NewEngagementRepository(db *sqlx.DB) EngagementRepository {
	return &engagementRepository{db: db}
}

// windowBucket maps an instant to its window slot. The bucket width equals
// the dedup window, so the partial unique index on (post, fingerprint,
// bucket) can only collide for racing duplicates, never for a legitimately
// re-eligible view.
func windowBucket(now time.Time, window time.Duration) int64 {
	return now.Unix() / int64(window/time.Second)
}

// HasActiveView checks the rolling window: an unexpired view row shields the
// fingerprint regardless of bucket boundaries.
func (r *engagementRepository) HasActiveView(ctx context.Context, tx *sqlx.Tx, postID int64, fingerprintHash string, now time.Time) (bool, error) {
	var exists bool
	err := tx.GetContext(ctx, &exists, `
		SELECT EXISTS(
			SELECT 1 FROM engagement_records
			WHERE post_id = $1 AND fingerprint_hash = $2
			  AND kind = 'view' AND expires_at > $3
		)
	`, postID, fingerprintHash, now)
	if err != nil {
		return false, fmt.Errorf("check active view: %w", err)
	}
	return exists, nil
}

// InsertView records a new view ledger row. Racing inserts for the same slot
// collide on the unique index; the loser gets model.ErrDuplicateView and must
// not increment the counter.
func (r *engagementRepository) InsertView(ctx context.Context, tx *sqlx.Tx, postID int64, fingerprintHash string, now time.Time, window time.Duration) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO engagement_records (post_id, fingerprint_hash, kind, window_bucket, created_at, expires_at)
		VALUES ($1, $2, 'view', $3, $4, $5)
	`, postID, fingerprintHash, windowBucket(now, window), now, now.Add(window))
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return model.ErrDuplicateView
		}
		return fmt.Errorf("insert view record: %w", err)
	}
	return nil
}

// InsertLike records a permanent like. Returns model.ErrAlreadyLiked if this
// fingerprint already holds the like. The conflict is absorbed with
// ON CONFLICT DO NOTHING rather than a raised unique violation, because a
// statement error would abort the enclosing transaction and the toggle's
// delete branch still has to run on it.
func (r *engagementRepository) InsertLike(ctx context.Context, tx *sqlx.Tx, postID int64, fingerprintHash string) error {
	result, err := tx.ExecContext(ctx, `
		INSERT INTO engagement_records (post_id, fingerprint_hash, kind)
		VALUES ($1, $2, 'like')
		ON CONFLICT (post_id, fingerprint_hash) WHERE kind = 'like' DO NOTHING
	`, postID, fingerprintHash)
	if err != nil {
		return fmt.Errorf("insert like record: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrAlreadyLiked
	}
	return nil
}

// DeleteLike removes the like row. Returns model.ErrNotLiked if there was
// nothing to delete, so the caller never blindly decrements.
func (r *engagementRepository) DeleteLike(ctx context.Context, tx *sqlx.Tx, postID int64, fingerprintHash string) error {
	result, err := tx.ExecContext(ctx, `
		DELETE FROM engagement_records
		WHERE post_id = $1 AND fingerprint_hash = $2 AND kind = 'like'
	`, postID, fingerprintHash)
	if err != nil {
		return fmt.Errorf("delete like record: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrNotLiked
	}
	return nil
}

// HasLike is the read-only like status check.
func (r *engagementRepository) HasLike(ctx context.Context, postID int64, fingerprintHash string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `
		SELECT EXISTS(
			SELECT 1 FROM engagement_records
			WHERE post_id = $1 AND fingerprint_hash = $2 AND kind = 'like'
		)
	`, postID, fingerprintHash)
	if err != nil {
		return false, fmt.Errorf("check like: %w", err)
	}
	return exists, nil
}

// PurgeExpiredViews deletes view rows whose window closed before the cutoff.
func (r *engagementRepository) PurgeExpiredViews(ctx context.Context, expiredBefore time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM engagement_records
		WHERE kind = 'view' AND expires_at < $1
	`, expiredBefore)
	if err != nil {
		return 0, fmt.Errorf("purge expired views: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("get rows affected: %w", err)
	}
	return rows, nil
}
