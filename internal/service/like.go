package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"

	"blogpulse/internal/fingerprint"
	"blogpulse/internal/model"
	"blogpulse/internal/queue"
	"blogpulse/internal/repository"
)

// LikeService maintains the permanent, idempotent per-(post, fingerprint)
// like state. Both toggle directions are conditional compare-and-set against
// the ledger, never blind counter arithmetic, so concurrent toggles from the
// same fingerprint serialize to one consistent final state.
type LikeService struct {
	engagementRepo  repository.EngagementRepository
	commentLikeRepo repository.CommentLikeRepository
	commentRepo     repository.CommentRepository
	postRepo        repository.PostRepository
	db              *sqlx.DB
	publisher       queue.Publisher
}

func NewLikeService(
	engagementRepo repository.EngagementRepository,
	commentLikeRepo repository.CommentLikeRepository,
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	db *sqlx.DB,
	publisher queue.Publisher,
) *LikeService {
	return &LikeService{
		engagementRepo:  engagementRepo,
		commentLikeRepo: commentLikeRepo,
		commentRepo:     commentRepo,
		postRepo:        postRepo,
		db:              db,
		publisher:       publisher,
	}
}

// ToggleLike flips the like state for this fingerprint. Insert-if-absent with
// increment, or delete-if-present with decrement, inside one transaction.
func (s *LikeService) ToggleLike(ctx context.Context, postID int64, rawFingerprint string) (*model.ToggleLikeResult, error) {
	fpHash, err := fingerprint.Hash(rawFingerprint)
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

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var liked bool
	var count int

	insertErr := s.engagementRepo.InsertLike(ctx, tx, postID, fpHash)
	switch {
	case insertErr == nil:
		// Transition to liked: increment only because the insert succeeded.
		liked = true
		count, err = s.postRepo.IncrementLikeCount(ctx, tx, postID, 1)
		if err != nil {
			return nil, err
		}

	case errors.Is(insertErr, model.ErrAlreadyLiked):
		// Transition to not-liked: decrement only if a row was actually
		// deleted. A concurrent unlike may have emptied the slot already;
		// then this toggle resolves to not-liked with no counter change.
		deleteErr := s.engagementRepo.DeleteLike(ctx, tx, postID, fpHash)
		if deleteErr != nil && !errors.Is(deleteErr, model.ErrNotLiked) {
			return nil, deleteErr
		}
		liked = false
		if deleteErr == nil {
			count, err = s.postRepo.IncrementLikeCount(ctx, tx, postID, -1)
			if err != nil {
				return nil, err
			}
		} else {
			count, err = s.postRepo.LikeCount(ctx, postID)
			if err != nil {
				return nil, err
			}
		}

	default:
		return nil, insertErr
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	log.Printf("[LikeService] Toggled like: post=%d liked=%v count=%d", postID, liked, count)

	// Publish trending event (after commit, best-effort).
	if s.publisher != nil {
		event := queue.NewLikeToggledEvent(postID, liked)
		if _, err := s.publisher.Publish(ctx, queue.StreamEngagement, event); err != nil {
			log.Printf("[LikeService] Failed to publish LikeToggled event: post=%d err=%v", postID, err)
		}
	}

	return &model.ToggleLikeResult{Liked: liked, LikeCount: count}, nil
}

// GetLikeStatus is the read-only status check. No side effects.
func (s *LikeService) GetLikeStatus(ctx context.Context, postID int64, rawFingerprint string) (*model.LikeStatusResult, error) {
	fpHash, err := fingerprint.Hash(rawFingerprint)
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

	liked, err := s.engagementRepo.HasLike(ctx, postID, fpHash)
	if err != nil {
		return nil, err
	}
	return &model.LikeStatusResult{Liked: liked}, nil
}

// ToggleCommentLike flips the like state on a comment. Comment like counts
// are derived from the ledger, so no counter update is needed and each
// branch is a single atomic statement.
func (s *LikeService) ToggleCommentLike(ctx context.Context, commentID int64, rawFingerprint string) (*model.ToggleCommentLikeResult, error) {
	fpHash, err := fingerprint.Hash(rawFingerprint)
	if err != nil {
		return nil, err
	}

	if _, err := s.commentRepo.GetByID(ctx, commentID); err != nil {
		return nil, err
	}

	var liked bool
	insertErr := s.commentLikeRepo.Insert(ctx, commentID, fpHash)
	switch {
	case insertErr == nil:
		liked = true
	case errors.Is(insertErr, model.ErrCommentAlreadyLiked):
		deleteErr := s.commentLikeRepo.Delete(ctx, commentID, fpHash)
		if deleteErr != nil && !errors.Is(deleteErr, model.ErrCommentNotLiked) {
			return nil, deleteErr
		}
		liked = false
	default:
		return nil, insertErr
	}

	count, err := s.commentLikeRepo.Count(ctx, commentID)
	if err != nil {
		return nil, err
	}

	return &model.ToggleCommentLikeResult{CommentID: commentID, Liked: liked, LikeCount: count}, nil
}

// GetCommentLikeStatus is the read-only comment like status.
func (s *LikeService) GetCommentLikeStatus(ctx context.Context, commentID int64, rawFingerprint string) (*model.CommentLikeStatusResult, error) {
	fpHash, err := fingerprint.Hash(rawFingerprint)
	if err != nil {
		return nil, err
	}

	if _, err := s.commentRepo.GetByID(ctx, commentID); err != nil {
		return nil, err
	}

	liked, err := s.commentLikeRepo.Has(ctx, commentID, fpHash)
	if err != nil {
		return nil, err
	}
	count, err := s.commentLikeRepo.Count(ctx, commentID)
	if err != nil {
		return nil, err
	}

	return &model.CommentLikeStatusResult{CommentID: commentID, Liked: liked, LikeCount: count}, nil
}
