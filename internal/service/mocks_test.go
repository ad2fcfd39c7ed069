package service

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"

	"blogpulse/internal/model"
	"blogpulse/internal/queue"
)

// =============================================================================
// MOCK REPOSITORIES
// =============================================================================
//
// Services depend on repository INTERFACES, so unit tests swap in mocks with
// per-test behavior. The *sqlx.DB the services open transactions on is backed
// by sqlmock, which only has to expect Begin/Commit.

// newTestDB returns a sqlx.DB backed by sqlmock.
func newTestDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	db := sqlx.NewDb(mockDB, "sqlmock")
	t.Cleanup(func() { db.Close() })
	return db, mock
}

type mockPostRepository struct {
	createFn                func(ctx context.Context, req model.CreatePostRequest) (*model.Post, error)
	getByIDFn               func(ctx context.Context, postID int64) (*model.Post, error)
	getSummariesByIDsFn     func(ctx context.Context, postIDs []int64) ([]model.PostSummary, error)
	listLatestFn            func(ctx context.Context, limit int) ([]model.PostSummary, error)
	listPopularFn           func(ctx context.Context, limit int) ([]model.PostSummary, error)
	deleteFn                func(ctx context.Context, postID int64) error
	existsFn                func(ctx context.Context, postID int64) (bool, error)
	viewCountFn             func(ctx context.Context, postID int64) (int, error)
	likeCountFn             func(ctx context.Context, postID int64) (int, error)
	incrementViewCountFn    func(ctx context.Context, postID int64) (int, error)
	incrementLikeCountFn    func(ctx context.Context, postID int64, delta int) (int, error)
	incrementCommentCountFn func(ctx context.Context, postID int64, delta int) error

	// Track calls for assertions
	viewIncrements int
	likeDeltas     []int
	commentDeltas  []int
}

func (m *mockPostRepository) Create(ctx context.Context, req model.CreatePostRequest) (*model.Post, error) {
	if m.createFn != nil {
		return m.createFn(ctx, req)
	}
	return &model.Post{ID: 1, Title: req.Title, Slug: req.Slug}, nil
}

func (m *mockPostRepository) GetByID(ctx context.Context, postID int64) (*model.Post, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, postID)
	}
	return &model.Post{ID: postID}, nil
}

func (m *mockPostRepository) GetSummariesByIDs(ctx context.Context, postIDs []int64) ([]model.PostSummary, error) {
	if m.getSummariesByIDsFn != nil {
		return m.getSummariesByIDsFn(ctx, postIDs)
	}
	return nil, nil
}

func (m *mockPostRepository) ListLatest(ctx context.Context, limit int) ([]model.PostSummary, error) {
	if m.listLatestFn != nil {
		return m.listLatestFn(ctx, limit)
	}
	return nil, nil
}

func (m *mockPostRepository) ListPopular(ctx context.Context, limit int) ([]model.PostSummary, error) {
	if m.listPopularFn != nil {
		return m.listPopularFn(ctx, limit)
	}
	return nil, nil
}

func (m *mockPostRepository) Delete(ctx context.Context, postID int64) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, postID)
	}
	return nil
}

func (m *mockPostRepository) Exists(ctx context.Context, postID int64) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, postID)
	}
	return true, nil
}

func (m *mockPostRepository) ViewCount(ctx context.Context, postID int64) (int, error) {
	if m.viewCountFn != nil {
		return m.viewCountFn(ctx, postID)
	}
	return 0, nil
}

func (m *mockPostRepository) LikeCount(ctx context.Context, postID int64) (int, error) {
	if m.likeCountFn != nil {
		return m.likeCountFn(ctx, postID)
	}
	return 0, nil
}

func (m *mockPostRepository) IncrementViewCount(ctx context.Context, tx *sqlx.Tx, postID int64) (int, error) {
	m.viewIncrements++
	if m.incrementViewCountFn != nil {
		return m.incrementViewCountFn(ctx, postID)
	}
	return m.viewIncrements, nil
}

func (m *mockPostRepository) IncrementLikeCount(ctx context.Context, tx *sqlx.Tx, postID int64, delta int) (int, error) {
	m.likeDeltas = append(m.likeDeltas, delta)
	if m.incrementLikeCountFn != nil {
		return m.incrementLikeCountFn(ctx, postID, delta)
	}
	count := 0
	for _, d := range m.likeDeltas {
		count += d
	}
	return count, nil
}

func (m *mockPostRepository) IncrementCommentCount(ctx context.Context, tx *sqlx.Tx, postID int64, delta int) error {
	m.commentDeltas = append(m.commentDeltas, delta)
	if m.incrementCommentCountFn != nil {
		return m.incrementCommentCountFn(ctx, postID, delta)
	}
	return nil
}

type mockEngagementRepository struct {
	hasActiveViewFn func(ctx context.Context, postID int64, fingerprintHash string, now time.Time) (bool, error)
	insertViewFn    func(ctx context.Context, postID int64, fingerprintHash string, now time.Time, window time.Duration) error
	insertLikeFn    func(ctx context.Context, postID int64, fingerprintHash string) error
	deleteLikeFn    func(ctx context.Context, postID int64, fingerprintHash string) error
	hasLikeFn       func(ctx context.Context, postID int64, fingerprintHash string) (bool, error)
	purgeFn         func(ctx context.Context, expiredBefore time.Time) (int64, error)

	insertViewCalls int
}

func (m *mockEngagementRepository) HasActiveView(ctx context.Context, tx *sqlx.Tx, postID int64, fingerprintHash string, now time.Time) (bool, error) {
	if m.hasActiveViewFn != nil {
		return m.hasActiveViewFn(ctx, postID, fingerprintHash, now)
	}
	return false, nil
}

func (m *mockEngagementRepository) InsertView(ctx context.Context, tx *sqlx.Tx, postID int64, fingerprintHash string, now time.Time, window time.Duration) error {
	m.insertViewCalls++
	if m.insertViewFn != nil {
		return m.insertViewFn(ctx, postID, fingerprintHash, now, window)
	}
	return nil
}

func (m *mockEngagementRepository) InsertLike(ctx context.Context, tx *sqlx.Tx, postID int64, fingerprintHash string) error {
	if m.insertLikeFn != nil {
		return m.insertLikeFn(ctx, postID, fingerprintHash)
	}
	return nil
}

func (m *mockEngagementRepository) DeleteLike(ctx context.Context, tx *sqlx.Tx, postID int64, fingerprintHash string) error {
	if m.deleteLikeFn != nil {
		return m.deleteLikeFn(ctx, postID, fingerprintHash)
	}
	return nil
}

func (m *mockEngagementRepository) HasLike(ctx context.Context, postID int64, fingerprintHash string) (bool, error) {
	if m.hasLikeFn != nil {
		return m.hasLikeFn(ctx, postID, fingerprintHash)
	}
	return false, nil
}

func (m *mockEngagementRepository) PurgeExpiredViews(ctx context.Context, expiredBefore time.Time) (int64, error) {
	if m.purgeFn != nil {
		return m.purgeFn(ctx, expiredBefore)
	}
	return 0, nil
}

type mockCommentRepository struct {
	createFn       func(ctx context.Context, postID int64, parentID *int64, fingerprintHash, authorName, body string) (*model.Comment, error)
	getByIDFn      func(ctx context.Context, commentID int64) (*model.Comment, error)
	moderateFn     func(ctx context.Context, commentID int64, status string) (*model.Comment, error)
	listApprovedFn func(ctx context.Context, postID int64) ([]model.Comment, error)
	listPendingFn  func(ctx context.Context, limit int) ([]model.Comment, int, error)
	softDeleteFn   func(ctx context.Context, commentID int64) (int64, error)
}

func (m *mockCommentRepository) Create(ctx context.Context, tx *sqlx.Tx, postID int64, parentID *int64, fingerprintHash, authorName, body string) (*model.Comment, error) {
	if m.createFn != nil {
		return m.createFn(ctx, postID, parentID, fingerprintHash, authorName, body)
	}
	return &model.Comment{
		ID:         1,
		PostID:     postID,
		ParentID:   parentID,
		AuthorName: authorName,
		Body:       body,
		Status:     model.CommentStatusPending,
		CreatedAt:  time.Now(),
	}, nil
}

func (m *mockCommentRepository) GetByID(ctx context.Context, commentID int64) (*model.Comment, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, commentID)
	}
	return nil, model.ErrCommentNotFound
}

func (m *mockCommentRepository) Moderate(ctx context.Context, commentID int64, status string) (*model.Comment, error) {
	if m.moderateFn != nil {
		return m.moderateFn(ctx, commentID, status)
	}
	return &model.Comment{ID: commentID, Status: status}, nil
}

func (m *mockCommentRepository) ListApproved(ctx context.Context, postID int64) ([]model.Comment, error) {
	if m.listApprovedFn != nil {
		return m.listApprovedFn(ctx, postID)
	}
	return nil, nil
}

func (m *mockCommentRepository) ListPending(ctx context.Context, limit int) ([]model.Comment, int, error) {
	if m.listPendingFn != nil {
		return m.listPendingFn(ctx, limit)
	}
	return nil, 0, nil
}

func (m *mockCommentRepository) SoftDelete(ctx context.Context, tx *sqlx.Tx, commentID int64) (int64, error) {
	if m.softDeleteFn != nil {
		return m.softDeleteFn(ctx, commentID)
	}
	return 0, model.ErrCommentNotFound
}

type mockCommentLikeRepository struct {
	insertFn        func(ctx context.Context, commentID int64, fingerprintHash string) error
	deleteFn        func(ctx context.Context, commentID int64, fingerprintHash string) error
	hasFn           func(ctx context.Context, commentID int64, fingerprintHash string) (bool, error)
	countFn         func(ctx context.Context, commentID int64) (int, error)
	countsForPostFn func(ctx context.Context, postID int64) (map[int64]int, error)
}

func (m *mockCommentLikeRepository) Insert(ctx context.Context, commentID int64, fingerprintHash string) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, commentID, fingerprintHash)
	}
	return nil
}

func (m *mockCommentLikeRepository) Delete(ctx context.Context, commentID int64, fingerprintHash string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, commentID, fingerprintHash)
	}
	return nil
}

func (m *mockCommentLikeRepository) Has(ctx context.Context, commentID int64, fingerprintHash string) (bool, error) {
	if m.hasFn != nil {
		return m.hasFn(ctx, commentID, fingerprintHash)
	}
	return false, nil
}

func (m *mockCommentLikeRepository) Count(ctx context.Context, commentID int64) (int, error) {
	if m.countFn != nil {
		return m.countFn(ctx, commentID)
	}
	return 0, nil
}

func (m *mockCommentLikeRepository) CountsForPost(ctx context.Context, postID int64) (map[int64]int, error) {
	if m.countsForPostFn != nil {
		return m.countsForPostFn(ctx, postID)
	}
	return map[int64]int{}, nil
}

// mockPublisher records published events.
type mockPublisher struct {
	events []queue.EngagementEvent
}

func (m *mockPublisher) Publish(ctx context.Context, stream string, event queue.EngagementEvent) (string, error) {
	m.events = append(m.events, event)
	return "1-0", nil
}
