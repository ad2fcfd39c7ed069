package model

import (
	"errors"
	"time"
)

// Engagement record kinds. A record is one uniqueness-checked event for a
// (post, fingerprint) pair.
const (
	EngagementKindView = "view"
	EngagementKindLike = "like"
)

// DefaultViewWindow is how long a view record shields the same fingerprint
// from recounting on the same post.
const DefaultViewWindow = 24 * time.Hour

// EngagementRecord is one row of the uniqueness ledger.
// View records carry an expiry and go stale after the dedup window; they are
// kept for history and purged later for storage hygiene only. Like records
// are permanent and their presence IS the liked state.
type EngagementRecord struct {
	ID              int64      `db:"id" json:"id"`
	PostID          int64      `db:"post_id" json:"post_id"`
	FingerprintHash string     `db:"fingerprint_hash" json:"-"`
	Kind            string     `db:"kind" json:"kind"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	ExpiresAt       *time.Time `db:"expires_at" json:"expires_at,omitempty"`
}

// IsWithinWindow reports whether a view recorded at createdAt still shields
// the fingerprint at instant now.
func IsWithinWindow(now, createdAt time.Time, ttl time.Duration) bool {
	return now.Before(createdAt.Add(ttl))
}

// RegisterViewRequest is the request body for counting a page view.
type RegisterViewRequest struct {
	Fingerprint string `json:"fingerprint"`
}

// RegisterViewResult reports whether the view was counted and the resulting
// total. Counted=false is a normal outcome, not an error.
type RegisterViewResult struct {
	Counted   bool `json:"counted"`
	ViewCount int  `json:"view_count"`
}

// ToggleLikeRequest is the request body for toggling a like.
type ToggleLikeRequest struct {
	Fingerprint string `json:"fingerprint"`
}

// ToggleLikeResult reports the like state after the toggle and the resulting
// total. Toggling is idempotent per state: concurrent toggles from the same
// fingerprint serialize to a single consistent outcome.
type ToggleLikeResult struct {
	Liked     bool `json:"liked"`
	LikeCount int  `json:"like_count"`
}

// LikeStatusResult is the read-only like status for a fingerprint.
type LikeStatusResult struct {
	Liked bool `json:"liked"`
}

// Engagement errors. Duplicate events are NOT errors at the service boundary;
// these sentinels exist so the repository can tell the service which branch of
// the idempotent outcome it hit.
var (
	ErrDuplicateView       = errors.New("view already counted within window")
	ErrAlreadyLiked        = errors.New("post already liked by this fingerprint")
	ErrNotLiked            = errors.New("post not liked by this fingerprint")
	ErrFingerprintRequired = errors.New("fingerprint is required")
	ErrFingerprintTooLong  = errors.New("fingerprint too long")
	ErrCommentAlreadyLiked = errors.New("comment already liked by this fingerprint")
	ErrCommentNotLiked     = errors.New("comment not liked by this fingerprint")
)

// Fingerprint constraints. The raw client fingerprint is an opaque,
// best-effort device signal; it is hashed before storage and never trusted
// as identity.
const MaxFingerprintLength = 512
