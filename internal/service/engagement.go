package service

import (
	"context"

	"blogpulse/internal/model"
)

// EngagementService is the single entry point for engagement operations. It
// composes the view, like, and comment services so HTTP handlers depend on
// one surface.
type EngagementService struct {
	views    *ViewService
	likes    *LikeService
	comments *CommentService
}

func NewEngagementService(views *ViewService, likes *LikeService, comments *CommentService) *EngagementService {
	return &EngagementService{
		views:    views,
		likes:    likes,
		comments: comments,
	}
}

// RegisterView counts a page view at most once per fingerprint per window.
func (s *EngagementService) RegisterView(ctx context.Context, postID int64, rawFingerprint string) (*model.RegisterViewResult, error) {
	return s.views.RegisterView(ctx, postID, rawFingerprint)
}

// ToggleLike flips the like state for a fingerprint on a post.
func (s *EngagementService) ToggleLike(ctx context.Context, postID int64, rawFingerprint string) (*model.ToggleLikeResult, error) {
	return s.likes.ToggleLike(ctx, postID, rawFingerprint)
}

// GetLikeStatus reports whether a fingerprint currently likes a post.
func (s *EngagementService) GetLikeStatus(ctx context.Context, postID int64, rawFingerprint string) (*model.LikeStatusResult, error) {
	return s.likes.GetLikeStatus(ctx, postID, rawFingerprint)
}

// SubmitComment stores a new comment in the pending state.
func (s *EngagementService) SubmitComment(ctx context.Context, postID int64, req model.SubmitCommentRequest) (*model.Comment, error) {
	return s.comments.Submit(ctx, postID, req)
}

// GetCommentTree returns the approved comments for a post as a nested tree.
func (s *EngagementService) GetCommentTree(ctx context.Context, postID int64) (*model.CommentTreeResponse, error) {
	return s.comments.GetCommentTree(ctx, postID)
}

// ModerateComment applies an approve or reject decision to a pending comment.
func (s *EngagementService) ModerateComment(ctx context.Context, commentID int64, action string) (*model.Comment, error) {
	return s.comments.Moderate(ctx, commentID, action)
}

// ToggleCommentLike flips the like state for a fingerprint on a comment.
func (s *EngagementService) ToggleCommentLike(ctx context.Context, commentID int64, rawFingerprint string) (*model.ToggleCommentLikeResult, error) {
	return s.likes.ToggleCommentLike(ctx, commentID, rawFingerprint)
}

// GetCommentLikeStatus reports whether a fingerprint currently likes a comment.
func (s *EngagementService) GetCommentLikeStatus(ctx context.Context, commentID int64, rawFingerprint string) (*model.CommentLikeStatusResult, error) {
	return s.likes.GetCommentLikeStatus(ctx, commentID, rawFingerprint)
}
