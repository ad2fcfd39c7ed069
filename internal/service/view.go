package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/jmoiron/sqlx"

	"blogpulse/internal/fingerprint"
	"blogpulse/internal/model"
	"blogpulse/internal/queue"
	"blogpulse/internal/repository"
)

// ViewService decides whether a view event is new within the rolling dedup
// window and counts it. All correctness comes from the store: the active-view
// check plus the unique view-slot index, inside one transaction, guarantee a
// racing duplicate can never double-increment.
type ViewService struct {
	engagementRepo repository.EngagementRepository
	postRepo       repository.PostRepository
	db             *sqlx.DB
	publisher      queue.Publisher
	window         time.Duration

	// now is swappable for tests.
	now func() time.Time
}

func NewViewService(
	engagementRepo repository.EngagementRepository,
	postRepo repository.PostRepository,
	db *sqlx.DB,
	publisher queue.Publisher,
	window time.Duration,
) *ViewService {
	if window <= 0 {
		window = model.DefaultViewWindow
	}
	return &ViewService{
		engagementRepo: engagementRepo,
		postRepo:       postRepo,
		db:             db,
		publisher:      publisher,
		window:         window,
		now:            time.Now,
	}
}

// RegisterView counts a page view at most once per fingerprint per window.
// Counted=false is the normal duplicate outcome, not an error; storage
// failures propagate so an unreachable store is never mistaken for "not
// counted".
func (s *ViewService) RegisterView(ctx context.Context, postID int64, rawFingerprint string) (*model.RegisterViewResult, error) {
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

	now := s.now()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Rolling-window check: an unexpired record shields the fingerprint.
	active, err := s.engagementRepo.HasActiveView(ctx, tx, postID, fpHash, now)
	if err != nil {
		return nil, err
	}
	if active {
		return s.duplicateResult(ctx, postID)
	}

	// Insert the ledger row. A racing request for the same slot loses here
	// with a unique violation and must not increment.
	if err := s.engagementRepo.InsertView(ctx, tx, postID, fpHash, now, s.window); err != nil {
		if errors.Is(err, model.ErrDuplicateView) {
			return s.duplicateResult(ctx, postID)
		}
		return nil, err
	}

	// Counter update commits atomically with the ledger insert.
	count, err := s.postRepo.IncrementViewCount(ctx, tx, postID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	// Publish trending event (after commit, best-effort).
	if s.publisher != nil {
		event := queue.NewViewCountedEvent(postID)
		if _, err := s.publisher.Publish(ctx, queue.StreamEngagement, event); err != nil {
			log.Printf("[ViewService] Failed to publish ViewCounted event: post=%d err=%v", postID, err)
		}
	}

	return &model.RegisterViewResult{Counted: true, ViewCount: count}, nil
}

// duplicateResult resolves the idempotent no-op outcome: the view stands
// uncounted and the caller sees the unchanged total.
func (s *ViewService) duplicateResult(ctx context.Context, postID int64) (*model.RegisterViewResult, error) {
	count, err := s.postRepo.ViewCount(ctx, postID)
	if err != nil {
		return nil, err
	}
	return &model.RegisterViewResult{Counted: false, ViewCount: count}, nil
}

// PurgeExpired removes view ledger rows whose window closed before the
// retention cutoff. Hygiene only: dedup evaluates expiry at write time and
// never depends on this running.
func (s *ViewService) PurgeExpired(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := s.now().Add(-retention)
	purged, err := s.engagementRepo.PurgeExpiredViews(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if purged > 0 {
		log.Printf("[ViewService] Purged %d expired view records", purged)
	}
	return purged, nil
}
