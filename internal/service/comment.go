package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/jmoiron/sqlx"

	"blogpulse/internal/fingerprint"
	"blogpulse/internal/model"
	"blogpulse/internal/repository"
)

// CommentService validates, threads, and transitions comments through the
// moderation state machine. Comments enter pending and leave it exactly once.
type CommentService struct {
	commentRepo     repository.CommentRepository
	commentLikeRepo repository.CommentLikeRepository
	postRepo        repository.PostRepository
	db              *sqlx.DB
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	commentLikeRepo repository.CommentLikeRepository,
	postRepo repository.PostRepository,
	db *sqlx.DB,
) *CommentService {
	return &CommentService{
		commentRepo:     commentRepo,
		commentLikeRepo: commentLikeRepo,
		postRepo:        postRepo,
		db:              db,
	}
}

// Submit creates a pending comment. Uses transaction: insert comment +
// increment counter.
func (s *CommentService) Submit(ctx context.Context, postID int64, req model.SubmitCommentRequest) (*model.Comment, error) {
	authorName := strings.TrimSpace(req.AuthorName)
	body := strings.TrimSpace(req.Body)

	if authorName == "" {
		return nil, model.ErrAuthorNameRequired
	}
	if len(authorName) > model.MaxAuthorNameLength {
		return nil, model.ErrAuthorNameTooLong
	}
	if body == "" {
		return nil, model.ErrBodyRequired
	}
	if len(body) > model.MaxCommentBodyLength {
		return nil, model.ErrBodyTooLong
	}

	fpHash, err := fingerprint.Hash(req.Fingerprint)
	if err != nil {
		return nil, err
	}

	exists, err := s.postRepo.Exists(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("check post exists: %w", err)
	}
	if !exists {
		return nil, model.ErrPostNotFound
	}

	// A parent must resolve to a comment on the same post.
	if req.ParentID != nil {
		parent, err := s.commentRepo.GetByID(ctx, *req.ParentID)
		if err != nil {
			if errors.Is(err, model.ErrCommentNotFound) {
				return nil, model.ErrInvalidParent
			}
			return nil, err
		}
		if parent.PostID != postID {
			return nil, model.ErrInvalidParent
		}
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	comment, err := s.commentRepo.Create(ctx, tx, postID, req.ParentID, fpHash, authorName, body)
	if err != nil {
		return nil, err
	}

	if err := s.postRepo.IncrementCommentCount(ctx, tx, postID, 1); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	log.Printf("[CommentService] Comment %d submitted on post %d (pending)", comment.ID, postID)
	return comment, nil
}

// Moderate applies the single allowed transition: pending -> approved or
// pending -> rejected. Decisions are final; re-moderation fails with
// ErrAlreadyModerated.
func (s *CommentService) Moderate(ctx context.Context, commentID int64, action string) (*model.Comment, error) {
	var status string
	switch action {
	case model.ModerationActionApprove:
		status = model.CommentStatusApproved
	case model.ModerationActionReject:
		status = model.CommentStatusRejected
	default:
		return nil, model.ErrInvalidModeration
	}

	comment, err := s.commentRepo.Moderate(ctx, commentID, status)
	if err != nil {
		return nil, err
	}

	log.Printf("[CommentService] Comment %d moderated: %s", commentID, status)
	return comment, nil
}

// GetCommentTree returns the nested tree of approved comments for a post,
// rebuilt from the flat list on every call. Children are grouped under their
// parent and ordered by created_at within each level.
func (s *CommentService) GetCommentTree(ctx context.Context, postID int64) (*model.CommentTreeResponse, error) {
	exists, err := s.postRepo.Exists(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("check post exists: %w", err)
	}
	if !exists {
		return nil, model.ErrPostNotFound
	}

	comments, err := s.commentRepo.ListApproved(ctx, postID)
	if err != nil {
		return nil, err
	}

	likeCounts, err := s.commentLikeRepo.CountsForPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	return &model.CommentTreeResponse{
		PostID:   postID,
		Comments: buildCommentTree(comments, likeCounts),
	}, nil
}

// buildCommentTree assembles the nested structure from the creation-ordered
// flat list. Replies whose parent is not in the approved set (rejected, still
// pending, or deleted) are dropped rather than promoted to top level.
func buildCommentTree(comments []model.Comment, likeCounts map[int64]int) []model.CommentNode {
	present := make(map[int64]bool, len(comments))
	for _, c := range comments {
		present[c.ID] = true
	}

	// Group children under their parent. Input is ordered by created_at, so
	// appends preserve order within each level.
	byParent := make(map[int64][]model.Comment)
	var roots []model.Comment
	for _, c := range comments {
		if c.ParentID != nil {
			if present[*c.ParentID] {
				byParent[*c.ParentID] = append(byParent[*c.ParentID], c)
			}
			continue
		}
		roots = append(roots, c)
	}

	var assemble func(list []model.Comment) []model.CommentNode
	assemble = func(list []model.Comment) []model.CommentNode {
		nodes := make([]model.CommentNode, 0, len(list))
		for _, c := range list {
			nodes = append(nodes, model.CommentNode{
				ID:         c.ID,
				AuthorName: c.AuthorName,
				Body:       c.Body,
				CreatedAt:  c.CreatedAt,
				LikeCount:  likeCounts[c.ID],
				Replies:    assemble(byParent[c.ID]),
			})
		}
		return nodes
	}

	return assemble(roots)
}

// ListPending returns the moderation queue for the admin dashboard.
func (s *CommentService) ListPending(ctx context.Context, limit int) (*model.PendingCommentsResponse, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}

	comments, total, err := s.commentRepo.ListPending(ctx, limit)
	if err != nil {
		return nil, err
	}
	return &model.PendingCommentsResponse{Comments: comments, Total: total}, nil
}

// Delete soft-deletes a comment administratively. Uses transaction: hide
// comment + decrement counter.
func (s *CommentService) Delete(ctx context.Context, commentID int64) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	postID, err := s.commentRepo.SoftDelete(ctx, tx, commentID)
	if err != nil {
		return err
	}

	if err := s.postRepo.IncrementCommentCount(ctx, tx, postID, -1); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	log.Printf("[CommentService] Comment %d deleted from post %d", commentID, postID)
	return nil
}
