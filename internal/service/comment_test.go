package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"blogpulse/internal/model"
)

func TestCommentService_Submit_Success(t *testing.T) {
	db, mock := newTestDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	postRepo := &mockPostRepository{}
	commentRepo := &mockCommentRepository{}
	svc := NewCommentService(commentRepo, &mockCommentLikeRepository{}, postRepo, db)

	comment, err := svc.Submit(context.Background(), 10, model.SubmitCommentRequest{
		Fingerprint: "device-abc",
		AuthorName:  "  Alice  ",
		Body:        "Great post!",
	})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if comment.Status != model.CommentStatusPending {
		t.Errorf("new comments must be pending, got %s", comment.Status)
	}
	if comment.AuthorName != "Alice" {
		t.Errorf("author name should be trimmed, got %q", comment.AuthorName)
	}
	if len(postRepo.commentDeltas) != 1 || postRepo.commentDeltas[0] != 1 {
		t.Errorf("expected a single +1 comment delta, got %v", postRepo.commentDeltas)
	}
}

func TestCommentService_Submit_Validation(t *testing.T) {
	db, _ := newTestDB(t)
	svc := NewCommentService(&mockCommentRepository{}, &mockCommentLikeRepository{}, &mockPostRepository{}, db)

	tests := []struct {
		name    string
		req     model.SubmitCommentRequest
		wantErr error
	}{
		{
			name:    "missing author",
			req:     model.SubmitCommentRequest{Fingerprint: "fp", Body: "hi"},
			wantErr: model.ErrAuthorNameRequired,
		},
		{
			name:    "author too long",
			req:     model.SubmitCommentRequest{Fingerprint: "fp", AuthorName: strings.Repeat("a", 256), Body: "hi"},
			wantErr: model.ErrAuthorNameTooLong,
		},
		{
			name:    "missing body",
			req:     model.SubmitCommentRequest{Fingerprint: "fp", AuthorName: "Alice"},
			wantErr: model.ErrBodyRequired,
		},
		{
			name:    "body too long",
			req:     model.SubmitCommentRequest{Fingerprint: "fp", AuthorName: "Alice", Body: strings.Repeat("b", 4001)},
			wantErr: model.ErrBodyTooLong,
		},
		{
			name:    "missing fingerprint",
			req:     model.SubmitCommentRequest{AuthorName: "Alice", Body: "hi"},
			wantErr: model.ErrFingerprintRequired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Submit(context.Background(), 10, tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got: %v", tt.wantErr, err)
			}
		})
	}
}

func TestCommentService_Submit_ParentOnOtherPost(t *testing.T) {
	db, _ := newTestDB(t)
	commentRepo := &mockCommentRepository{
		getByIDFn: func(ctx context.Context, commentID int64) (*model.Comment, error) {
			return &model.Comment{ID: commentID, PostID: 99}, nil
		},
	}
	svc := NewCommentService(commentRepo, &mockCommentLikeRepository{}, &mockPostRepository{}, db)

	parentID := int64(5)
	_, err := svc.Submit(context.Background(), 10, model.SubmitCommentRequest{
		ParentID:    &parentID,
		Fingerprint: "fp",
		AuthorName:  "Alice",
		Body:        "hi",
	})
	if !errors.Is(err, model.ErrInvalidParent) {
		t.Errorf("expected ErrInvalidParent, got: %v", err)
	}
}

func TestCommentService_Submit_ParentMissing(t *testing.T) {
	db, _ := newTestDB(t)
	// Default mock GetByID returns ErrCommentNotFound.
	svc := NewCommentService(&mockCommentRepository{}, &mockCommentLikeRepository{}, &mockPostRepository{}, db)

	parentID := int64(5)
	_, err := svc.Submit(context.Background(), 10, model.SubmitCommentRequest{
		ParentID:    &parentID,
		Fingerprint: "fp",
		AuthorName:  "Alice",
		Body:        "hi",
	})
	if !errors.Is(err, model.ErrInvalidParent) {
		t.Errorf("expected ErrInvalidParent for missing parent, got: %v", err)
	}
}

func TestCommentService_Moderate(t *testing.T) {
	db, _ := newTestDB(t)

	var gotStatus string
	commentRepo := &mockCommentRepository{
		moderateFn: func(ctx context.Context, commentID int64, status string) (*model.Comment, error) {
			gotStatus = status
			return &model.Comment{ID: commentID, Status: status}, nil
		},
	}
	svc := NewCommentService(commentRepo, &mockCommentLikeRepository{}, &mockPostRepository{}, db)

	comment, err := svc.Moderate(context.Background(), 5, model.ModerationActionApprove)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if comment.Status != model.CommentStatusApproved || gotStatus != model.CommentStatusApproved {
		t.Errorf("expected approved, got %s", comment.Status)
	}

	_, err = svc.Moderate(context.Background(), 5, model.ModerationActionReject)
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if gotStatus != model.CommentStatusRejected {
		t.Errorf("expected rejected, got %s", gotStatus)
	}
}

func TestCommentService_Moderate_InvalidAction(t *testing.T) {
	db, _ := newTestDB(t)
	svc := NewCommentService(&mockCommentRepository{}, &mockCommentLikeRepository{}, &mockPostRepository{}, db)

	for _, action := range []string{"", "delete", "APPROVE", "approved"} {
		if _, err := svc.Moderate(context.Background(), 5, action); !errors.Is(err, model.ErrInvalidModeration) {
			t.Errorf("action %q: expected ErrInvalidModeration, got: %v", action, err)
		}
	}
}

func TestCommentService_Moderate_AlreadyModerated(t *testing.T) {
	db, _ := newTestDB(t)
	commentRepo := &mockCommentRepository{
		moderateFn: func(ctx context.Context, commentID int64, status string) (*model.Comment, error) {
			return nil, model.ErrAlreadyModerated
		},
	}
	svc := NewCommentService(commentRepo, &mockCommentLikeRepository{}, &mockPostRepository{}, db)

	_, err := svc.Moderate(context.Background(), 5, model.ModerationActionReject)
	if !errors.Is(err, model.ErrAlreadyModerated) {
		t.Errorf("expected ErrAlreadyModerated, got: %v", err)
	}
}

func TestCommentService_GetCommentTree_Nesting(t *testing.T) {
	db, _ := newTestDB(t)

	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	id := func(v int64) *int64 { return &v }

	// Flat creation-ordered list: root(1), reply(2->1), root(3),
	// grandchild(4->2), reply whose parent is not approved (5->99).
	commentRepo := &mockCommentRepository{
		listApprovedFn: func(ctx context.Context, postID int64) ([]model.Comment, error) {
			return []model.Comment{
				{ID: 1, PostID: postID, AuthorName: "a", Body: "root one", CreatedAt: t0},
				{ID: 2, PostID: postID, ParentID: id(1), AuthorName: "b", Body: "reply", CreatedAt: t0.Add(time.Minute)},
				{ID: 3, PostID: postID, AuthorName: "c", Body: "root two", CreatedAt: t0.Add(2 * time.Minute)},
				{ID: 4, PostID: postID, ParentID: id(2), AuthorName: "d", Body: "grandchild", CreatedAt: t0.Add(3 * time.Minute)},
				{ID: 5, PostID: postID, ParentID: id(99), AuthorName: "e", Body: "orphan", CreatedAt: t0.Add(4 * time.Minute)},
			}, nil
		},
	}
	clRepo := &mockCommentLikeRepository{
		countsForPostFn: func(ctx context.Context, postID int64) (map[int64]int, error) {
			return map[int64]int{1: 3, 4: 1}, nil
		},
	}
	svc := NewCommentService(commentRepo, clRepo, &mockPostRepository{}, db)

	tree, err := svc.GetCommentTree(context.Background(), 10)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if len(tree.Comments) != 2 {
		t.Fatalf("expected 2 roots, got %d", len(tree.Comments))
	}
	if tree.Comments[0].ID != 1 || tree.Comments[1].ID != 3 {
		t.Errorf("roots out of order: %d, %d", tree.Comments[0].ID, tree.Comments[1].ID)
	}
	if tree.Comments[0].LikeCount != 3 {
		t.Errorf("expected like count 3 on root one, got %d", tree.Comments[0].LikeCount)
	}

	replies := tree.Comments[0].Replies
	if len(replies) != 1 || replies[0].ID != 2 {
		t.Fatalf("expected reply 2 under root 1, got %+v", replies)
	}
	grand := replies[0].Replies
	if len(grand) != 1 || grand[0].ID != 4 {
		t.Fatalf("expected grandchild 4 under reply 2, got %+v", grand)
	}
	if grand[0].LikeCount != 1 {
		t.Errorf("expected like count 1 on grandchild, got %d", grand[0].LikeCount)
	}

	// The reply to an unapproved parent is dropped, not promoted.
	for _, root := range tree.Comments {
		if root.ID == 5 {
			t.Error("orphaned reply must not be promoted to top level")
		}
	}
}

func TestCommentService_GetCommentTree_Empty(t *testing.T) {
	db, _ := newTestDB(t)
	svc := NewCommentService(&mockCommentRepository{}, &mockCommentLikeRepository{}, &mockPostRepository{}, db)

	tree, err := svc.GetCommentTree(context.Background(), 10)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if tree.Comments == nil {
		t.Error("expected empty slice, not nil")
	}
	if len(tree.Comments) != 0 {
		t.Errorf("expected no comments, got %d", len(tree.Comments))
	}
}

func TestCommentService_ListPending_Limits(t *testing.T) {
	db, _ := newTestDB(t)

	var gotLimit int
	commentRepo := &mockCommentRepository{
		listPendingFn: func(ctx context.Context, limit int) ([]model.Comment, int, error) {
			gotLimit = limit
			return nil, 0, nil
		},
	}
	svc := NewCommentService(commentRepo, &mockCommentLikeRepository{}, &mockPostRepository{}, db)

	if _, err := svc.ListPending(context.Background(), 0); err != nil {
		t.Fatalf("default limit: %v", err)
	}
	if gotLimit != 50 {
		t.Errorf("expected default limit 50, got %d", gotLimit)
	}

	if _, err := svc.ListPending(context.Background(), 1000); err != nil {
		t.Fatalf("capped limit: %v", err)
	}
	if gotLimit != 200 {
		t.Errorf("expected capped limit 200, got %d", gotLimit)
	}
}

func TestCommentService_Delete(t *testing.T) {
	db, mock := newTestDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	postRepo := &mockPostRepository{}
	commentRepo := &mockCommentRepository{
		softDeleteFn: func(ctx context.Context, commentID int64) (int64, error) {
			return 10, nil
		},
	}
	svc := NewCommentService(commentRepo, &mockCommentLikeRepository{}, postRepo, db)

	if err := svc.Delete(context.Background(), 5); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if len(postRepo.commentDeltas) != 1 || postRepo.commentDeltas[0] != -1 {
		t.Errorf("expected a single -1 comment delta, got %v", postRepo.commentDeltas)
	}
}
