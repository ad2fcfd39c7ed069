package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"blogpulse/internal/model"
)

type PostRepository interface {
	Create(ctx context.Context, req model.CreatePostRequest) (*model.Post, error)
	GetByID(ctx context.Context, postID int64) (*model.Post, error)
	GetSummariesByIDs(ctx context.Context, postIDs []int64) ([]model.PostSummary, error)
	ListLatest(ctx context.Context, limit int) ([]model.PostSummary, error)
	ListPopular(ctx context.Context, limit int) ([]model.PostSummary, error)
	Delete(ctx context.Context, postID int64) error
	Exists(ctx context.Context, postID int64) (bool, error)
	// ViewCount reads the current counter outside a transaction, for the
	// counted=false path of view registration.
	ViewCount(ctx context.Context, postID int64) (int, error)
	LikeCount(ctx context.Context, postID int64) (int, error)
	// Counter updates run inside the same transaction as the ledger mutation.
	IncrementViewCount(ctx context.Context, tx *sqlx.Tx, postID int64) (int, error)
	IncrementLikeCount(ctx context.Context, tx *sqlx.Tx, postID int64, delta int) (int, error)
	IncrementCommentCount(ctx context.Context, tx *sqlx.Tx, postID int64, delta int) error
}

type EngagementRepository interface {
	// HasActiveView reports whether an unexpired view record shields the
	// fingerprint on this post at instant now.
	HasActiveView(ctx context.Context, tx *sqlx.Tx, postID int64, fingerprintHash string, now time.Time) (bool, error)
	// InsertView inserts a view ledger row expiring at now+window. Returns
	// model.ErrDuplicateView when a racing insert already claimed the slot.
	InsertView(ctx context.Context, tx *sqlx.Tx, postID int64, fingerprintHash string, now time.Time, window time.Duration) error
	// InsertLike inserts a permanent like row. Returns model.ErrAlreadyLiked
	// when the row already exists, without erroring the statement, so the
	// transaction remains usable for the delete branch of a toggle.
	InsertLike(ctx context.Context, tx *sqlx.Tx, postID int64, fingerprintHash string) error
	// DeleteLike removes the like row. Returns model.ErrNotLiked when no row
	// was deleted.
	DeleteLike(ctx context.Context, tx *sqlx.Tx, postID int64, fingerprintHash string) error
	HasLike(ctx context.Context, postID int64, fingerprintHash string) (bool, error)
	// PurgeExpiredViews deletes view rows that expired before the cutoff.
	PurgeExpiredViews(ctx context.Context, expiredBefore time.Time) (int64, error)
}

type CommentRepository interface {
	Create(ctx context.Context, tx *sqlx.Tx, postID int64, parentID *int64, fingerprintHash, authorName, body string) (*model.Comment, error)
	GetByID(ctx context.Context, commentID int64) (*model.Comment, error)
	// Moderate applies the single allowed status transition. Returns
	// model.ErrAlreadyModerated if the comment was already decided and
	// model.ErrCommentNotFound if it does not exist or was soft-deleted.
	Moderate(ctx context.Context, commentID int64, status string) (*model.Comment, error)
	ListApproved(ctx context.Context, postID int64) ([]model.Comment, error)
	ListPending(ctx context.Context, limit int) ([]model.Comment, int, error)
	// SoftDelete hides a comment administratively. Returns the post ID for
	// the counter decrement.
	SoftDelete(ctx context.Context, tx *sqlx.Tx, commentID int64) (int64, error)
}

type CommentLikeRepository interface {
	Insert(ctx context.Context, commentID int64, fingerprintHash string) error
	Delete(ctx context.Context, commentID int64, fingerprintHash string) error
	Has(ctx context.Context, commentID int64, fingerprintHash string) (bool, error)
	// Count derives the like total from the ledger.
	Count(ctx context.Context, commentID int64) (int, error)
	CountsForPost(ctx context.Context, postID int64) (map[int64]int, error)
}
