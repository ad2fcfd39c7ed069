package model

import (
	"errors"
	"time"
)

// Comment moderation statuses. Transitions are one-way and terminal:
// pending -> approved or pending -> rejected, nothing else.
const (
	CommentStatusPending  = "pending"
	CommentStatusApproved = "approved"
	CommentStatusRejected = "rejected"
)

// Moderation actions accepted by the admin API.
const (
	ModerationActionApprove = "approve"
	ModerationActionReject  = "reject"
)

// Comment represents a reader comment on a post. Comments are created pending
// and never mutated except for the single allowed status transition or an
// administrative soft delete.
type Comment struct {
	ID              int64      `db:"id" json:"id"`
	PostID          int64      `db:"post_id" json:"post_id"`
	ParentID        *int64     `db:"parent_id" json:"parent_id,omitempty"`
	FingerprintHash string     `db:"fingerprint_hash" json:"-"`
	AuthorName      string     `db:"author_name" json:"author_name"`
	Body            string     `db:"body" json:"body"`
	Status          string     `db:"status" json:"status"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	DeletedAt       *time.Time `db:"deleted_at" json:"-"`
}

// CommentNode is a comment with its nested replies, used by the tree endpoint.
// Children are grouped under their parent and ordered by created_at.
type CommentNode struct {
	ID         int64         `json:"id"`
	AuthorName string        `json:"author_name"`
	Body       string        `json:"body"`
	CreatedAt  time.Time     `json:"created_at"`
	LikeCount  int           `json:"like_count"`
	Replies    []CommentNode `json:"replies"`
}

// CommentTreeResponse is the nested tree of approved comments for a post,
// rebuilt on every call rather than cached across moderation changes.
type CommentTreeResponse struct {
	PostID   int64         `json:"post_id"`
	Comments []CommentNode `json:"comments"`
}

// SubmitCommentRequest is the request body for submitting a comment.
type SubmitCommentRequest struct {
	ParentID    *int64 `json:"parent_id,omitempty"`
	Fingerprint string `json:"fingerprint"`
	AuthorName  string `json:"author_name"`
	Body        string `json:"body"`
}

// ModerateCommentRequest is the admin request body for deciding a comment.
type ModerateCommentRequest struct {
	Action string `json:"action"` // "approve" or "reject"
}

// ToggleCommentLikeResult reports the comment like state after a toggle.
// The count is derived from the ledger rather than denormalized.
type ToggleCommentLikeResult struct {
	CommentID int64 `json:"comment_id"`
	Liked     bool  `json:"liked"`
	LikeCount int   `json:"like_count"`
}

// CommentLikeStatusResult is the read-only comment like status.
type CommentLikeStatusResult struct {
	CommentID int64 `json:"comment_id"`
	Liked     bool  `json:"liked"`
	LikeCount int   `json:"like_count"`
}

// PendingCommentsResponse is the admin moderation queue.
type PendingCommentsResponse struct {
	Comments []Comment `json:"comments"`
	Total    int       `json:"total"`
}

// Comment constraints
const (
	MaxCommentBodyLength = 4000
	MaxAuthorNameLength  = 255
)

// Comment errors
var (
	ErrCommentNotFound    = errors.New("comment not found")
	ErrInvalidParent      = errors.New("parent comment does not belong to this post")
	ErrAlreadyModerated   = errors.New("comment has already been moderated")
	ErrInvalidModeration  = errors.New("invalid moderation action")
	ErrAuthorNameRequired = errors.New("author name is required")
	ErrAuthorNameTooLong  = errors.New("author name too long")
	ErrBodyRequired       = errors.New("comment body is required")
	ErrBodyTooLong        = errors.New("comment body too long")
)
