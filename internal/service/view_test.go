package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	"blogpulse/internal/model"
	"blogpulse/internal/queue"
	"blogpulse/internal/repository"
)

func TestViewService_RegisterView_CountsFirstView(t *testing.T) {
	db, mock := newTestDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	engRepo := &mockEngagementRepository{}
	postRepo := &mockPostRepository{
		incrementViewCountFn: func(ctx context.Context, postID int64) (int, error) {
			return 1, nil
		},
	}
	pub := &mockPublisher{}
	svc := NewViewService(engRepo, postRepo, db, pub, 24*time.Hour)

	result, err := svc.RegisterView(context.Background(), 10, "device-abc")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if !result.Counted {
		t.Error("first view should be counted")
	}
	if result.ViewCount != 1 {
		t.Errorf("expected view count 1, got %d", result.ViewCount)
	}
	if engRepo.insertViewCalls != 1 {
		t.Errorf("expected 1 ledger insert, got %d", engRepo.insertViewCalls)
	}
	if len(pub.events) != 1 || pub.events[0].Type != queue.EventViewCounted {
		t.Errorf("expected a view_counted event, got %+v", pub.events)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("transaction expectations: %v", err)
	}
}

func TestViewService_RegisterView_DuplicateWithinWindow(t *testing.T) {
	db, mock := newTestDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	engRepo := &mockEngagementRepository{
		hasActiveViewFn: func(ctx context.Context, postID int64, fpHash string, now time.Time) (bool, error) {
			return true, nil
		},
	}
	postRepo := &mockPostRepository{
		viewCountFn: func(ctx context.Context, postID int64) (int, error) {
			return 7, nil
		},
	}
	pub := &mockPublisher{}
	svc := NewViewService(engRepo, postRepo, db, pub, 24*time.Hour)

	result, err := svc.RegisterView(context.Background(), 10, "device-abc")
	if err != nil {
		t.Fatalf("duplicate must not be an error, got: %v", err)
	}
	if result.Counted {
		t.Error("duplicate within window should not be counted")
	}
	if result.ViewCount != 7 {
		t.Errorf("expected unchanged count 7, got %d", result.ViewCount)
	}
	if engRepo.insertViewCalls != 0 {
		t.Errorf("duplicate must not insert a ledger row, got %d inserts", engRepo.insertViewCalls)
	}
	if postRepo.viewIncrements != 0 {
		t.Errorf("duplicate must not increment the counter, got %d", postRepo.viewIncrements)
	}
	if len(pub.events) != 0 {
		t.Errorf("duplicate must not publish events, got %+v", pub.events)
	}
}

// A racing request passes the window check but loses the unique-slot insert.
// The loser resolves to counted=false with no counter change.
func TestViewService_RegisterView_RacingDuplicate(t *testing.T) {
	db, mock := newTestDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	engRepo := &mockEngagementRepository{
		insertViewFn: func(ctx context.Context, postID int64, fpHash string, now time.Time, window time.Duration) error {
			return model.ErrDuplicateView
		},
	}
	postRepo := &mockPostRepository{
		viewCountFn: func(ctx context.Context, postID int64) (int, error) {
			return 3, nil
		},
	}
	svc := NewViewService(engRepo, postRepo, db, nil, 24*time.Hour)

	result, err := svc.RegisterView(context.Background(), 10, "device-abc")
	if err != nil {
		t.Fatalf("race loser must not see an error, got: %v", err)
	}
	if result.Counted {
		t.Error("race loser must not count")
	}
	if result.ViewCount != 3 {
		t.Errorf("expected count 3, got %d", result.ViewCount)
	}
	if postRepo.viewIncrements != 0 {
		t.Errorf("race loser must not increment, got %d", postRepo.viewIncrements)
	}
}

// Goroutine-contended registration: every racer runs its own window check,
// but the ledger admits exactly one insert and the counter moves exactly
// once, regardless of interleaving.
func TestViewService_RegisterView_ConcurrentSingleCount(t *testing.T) {
	const racers = 16

	db, mock := newTestDB(t)
	mock.MatchExpectationsInOrder(false)
	for i := 0; i < racers; i++ {
		mock.ExpectBegin()
	}
	mock.ExpectCommit()
	for i := 0; i < racers-1; i++ {
		mock.ExpectRollback()
	}

	ledger := &contendedLedger{}
	posts := &contendedPostRepo{}
	svc := NewViewService(ledger, posts, db, nil, 24*time.Hour)

	var wg sync.WaitGroup
	start := make(chan struct{})
	counted := make(chan bool, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start

			result, err := svc.RegisterView(context.Background(), 10, "device-abc")
			if err != nil {
				t.Errorf("racing registration failed: %v", err)
				counted <- false
				return
			}
			counted <- result.Counted
		}()
	}
	close(start)
	wg.Wait()
	close(counted)

	total := 0
	for c := range counted {
		if c {
			total++
		}
	}
	if total != 1 {
		t.Errorf("expected exactly one counted view, got %d", total)
	}
	if got := posts.snapshot(); got != 1 {
		t.Errorf("counter must move exactly once, got %d increments", got)
	}
}

// contendedLedger is a mutex-guarded in-memory ledger whose insert is the
// atomic tie-break, mirroring the unique view-slot index.
type contendedLedger struct {
	repository.EngagementRepository
	mu      sync.Mutex
	claimed bool
}

func (l *contendedLedger) HasActiveView(ctx context.Context, tx *sqlx.Tx, postID int64, fingerprintHash string, now time.Time) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.claimed, nil
}

func (l *contendedLedger) InsertView(ctx context.Context, tx *sqlx.Tx, postID int64, fingerprintHash string, now time.Time, window time.Duration) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.claimed {
		return model.ErrDuplicateView
	}
	l.claimed = true
	return nil
}

// contendedPostRepo tracks counter increments under a lock.
type contendedPostRepo struct {
	repository.PostRepository
	mu         sync.Mutex
	increments int
}

func (r *contendedPostRepo) Exists(ctx context.Context, postID int64) (bool, error) {
	return true, nil
}

func (r *contendedPostRepo) IncrementViewCount(ctx context.Context, tx *sqlx.Tx, postID int64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.increments++
	return r.increments, nil
}

func (r *contendedPostRepo) ViewCount(ctx context.Context, postID int64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.increments, nil
}

func (r *contendedPostRepo) snapshot() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.increments
}

// Sequential scenario: view at t0 counts, at t0+1h it is shielded, at t0+25h
// the window has elapsed and it counts again. Total ends at 2.
func TestViewService_RegisterView_RecountsAfterWindow(t *testing.T) {
	db, mock := newTestDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectRollback()
	mock.ExpectBegin()
	mock.ExpectCommit()

	// In-memory ledger evaluating the rolling window at write time.
	window := 24 * time.Hour
	var lastView *time.Time
	count := 0

	engRepo := &mockEngagementRepository{
		hasActiveViewFn: func(ctx context.Context, postID int64, fpHash string, now time.Time) (bool, error) {
			if lastView == nil {
				return false, nil
			}
			return model.IsWithinWindow(now, *lastView, window), nil
		},
		insertViewFn: func(ctx context.Context, postID int64, fpHash string, now time.Time, w time.Duration) error {
			v := now
			lastView = &v
			return nil
		},
	}
	postRepo := &mockPostRepository{
		incrementViewCountFn: func(ctx context.Context, postID int64) (int, error) {
			count++
			return count, nil
		},
		viewCountFn: func(ctx context.Context, postID int64) (int, error) {
			return count, nil
		},
	}
	svc := NewViewService(engRepo, postRepo, db, nil, window)

	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	now := t0
	svc.now = func() time.Time { return now }

	// t0: counts
	r1, err := svc.RegisterView(context.Background(), 10, "device-abc")
	if err != nil {
		t.Fatalf("t0: %v", err)
	}
	if !r1.Counted || r1.ViewCount != 1 {
		t.Fatalf("t0: expected counted=true count=1, got %+v", r1)
	}

	// t0+1h: shielded
	now = t0.Add(time.Hour)
	r2, err := svc.RegisterView(context.Background(), 10, "device-abc")
	if err != nil {
		t.Fatalf("t0+1h: %v", err)
	}
	if r2.Counted || r2.ViewCount != 1 {
		t.Fatalf("t0+1h: expected counted=false count=1, got %+v", r2)
	}

	// t0+25h: window elapsed, counts again
	now = t0.Add(25 * time.Hour)
	r3, err := svc.RegisterView(context.Background(), 10, "device-abc")
	if err != nil {
		t.Fatalf("t0+25h: %v", err)
	}
	if !r3.Counted || r3.ViewCount != 2 {
		t.Fatalf("t0+25h: expected counted=true count=2, got %+v", r3)
	}
}

func TestViewService_RegisterView_PostNotFound(t *testing.T) {
	db, _ := newTestDB(t)
	postRepo := &mockPostRepository{
		existsFn: func(ctx context.Context, postID int64) (bool, error) {
			return false, nil
		},
	}
	svc := NewViewService(&mockEngagementRepository{}, postRepo, db, nil, 24*time.Hour)

	_, err := svc.RegisterView(context.Background(), 99, "device-abc")
	if !errors.Is(err, model.ErrPostNotFound) {
		t.Errorf("expected ErrPostNotFound, got: %v", err)
	}
}

func TestViewService_RegisterView_FingerprintRequired(t *testing.T) {
	db, _ := newTestDB(t)
	svc := NewViewService(&mockEngagementRepository{}, &mockPostRepository{}, db, nil, 24*time.Hour)

	_, err := svc.RegisterView(context.Background(), 10, "  ")
	if !errors.Is(err, model.ErrFingerprintRequired) {
		t.Errorf("expected ErrFingerprintRequired, got: %v", err)
	}
}

// Storage failures must propagate, never masquerade as counted=false.
func TestViewService_RegisterView_StorageErrorPropagates(t *testing.T) {
	db, mock := newTestDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	storeErr := errors.New("connection reset")
	engRepo := &mockEngagementRepository{
		hasActiveViewFn: func(ctx context.Context, postID int64, fpHash string, now time.Time) (bool, error) {
			return false, storeErr
		},
	}
	svc := NewViewService(engRepo, &mockPostRepository{}, db, nil, 24*time.Hour)

	result, err := svc.RegisterView(context.Background(), 10, "device-abc")
	if !errors.Is(err, storeErr) {
		t.Errorf("expected storage error to propagate, got: %v", err)
	}
	if result != nil {
		t.Errorf("expected nil result on storage error, got %+v", result)
	}
}

func TestViewService_PurgeExpired(t *testing.T) {
	db, _ := newTestDB(t)

	var gotCutoff time.Time
	engRepo := &mockEngagementRepository{
		purgeFn: func(ctx context.Context, expiredBefore time.Time) (int64, error) {
			gotCutoff = expiredBefore
			return 42, nil
		},
	}
	svc := NewViewService(engRepo, &mockPostRepository{}, db, nil, 24*time.Hour)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	purged, err := svc.PurgeExpired(context.Background(), 30*24*time.Hour)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if purged != 42 {
		t.Errorf("expected 42 purged, got %d", purged)
	}
	if want := now.Add(-30 * 24 * time.Hour); !gotCutoff.Equal(want) {
		t.Errorf("expected cutoff %v, got %v", want, gotCutoff)
	}
}
