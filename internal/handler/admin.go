package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"blogpulse/internal/httputil"
	"blogpulse/internal/model"
	"blogpulse/internal/service"
)

// AdminHandler serves the moderation queue and post management endpoints.
// All routes behind it require admin authentication.
type AdminHandler struct {
	commentService *service.CommentService
	postService    *service.PostService
}

func NewAdminHandler(commentService *service.CommentService, postService *service.PostService) *AdminHandler {
	return &AdminHandler{
		commentService: commentService,
		postService:    postService,
	}
}

// PendingComments handles GET /admin/comments/pending?limit=N
func (h *AdminHandler) PendingComments(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 0 {
			httputil.WriteBadRequest(w, "Invalid limit")
			return
		}
		limit = parsed
	}

	resp, err := h.commentService.ListPending(r.Context(), limit)
	if err != nil {
		log.Printf("[ERROR] Pending comments handler: err=%v", err)
		httputil.WriteInternalError(w, "Failed to load pending comments")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, resp)
}

// ModerateComment handles POST /admin/comments/:commentId/moderate
// Applies the one-way approve or reject decision. A repeated decision is a
// conflict, not a silent success.
func (h *AdminHandler) ModerateComment(w http.ResponseWriter, r *http.Request) {
	commentID, err := strconv.ParseInt(chi.URLParam(r, "commentId"), 10, 64)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid comment ID")
		return
	}

	var req model.ModerateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	comment, err := h.commentService.Moderate(r.Context(), commentID, req.Action)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrCommentNotFound):
			httputil.WriteNotFound(w, "Comment not found")
		case errors.Is(err, model.ErrAlreadyModerated):
			httputil.WriteConflict(w, "Comment has already been moderated")
		case errors.Is(err, model.ErrInvalidModeration):
			httputil.WriteBadRequest(w, "Invalid moderation action")
		default:
			log.Printf("[ERROR] Moderate comment handler: comment=%d action=%s err=%v", commentID, req.Action, err)
			httputil.WriteInternalError(w, "Failed to moderate comment")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, comment)
}

// DeleteComment handles DELETE /admin/comments/:commentId
func (h *AdminHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	commentID, err := strconv.ParseInt(chi.URLParam(r, "commentId"), 10, 64)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid comment ID")
		return
	}

	if err := h.commentService.Delete(r.Context(), commentID); err != nil {
		switch {
		case errors.Is(err, model.ErrCommentNotFound):
			httputil.WriteNotFound(w, "Comment not found")
		default:
			log.Printf("[ERROR] Delete comment handler: comment=%d err=%v", commentID, err)
			httputil.WriteInternalError(w, "Failed to delete comment")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Comment deleted successfully",
	})
}

// CreatePost handles POST /admin/posts
func (h *AdminHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var req model.CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	post, err := h.postService.Create(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrTitleRequired):
			httputil.WriteBadRequest(w, "Post title is required")
		case errors.Is(err, model.ErrSlugRequired):
			httputil.WriteBadRequest(w, "Post slug is required")
		case errors.Is(err, model.ErrSlugTaken):
			httputil.WriteConflict(w, "Post slug already in use")
		default:
			log.Printf("[ERROR] Create post handler: err=%v", err)
			httputil.WriteInternalError(w, "Failed to create post")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, post)
}

// DeletePost handles DELETE /admin/posts/:id
func (h *AdminHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	postID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid post ID")
		return
	}

	if err := h.postService.Delete(r.Context(), postID); err != nil {
		switch {
		case errors.Is(err, model.ErrPostNotFound):
			httputil.WriteNotFound(w, "Post not found")
		default:
			log.Printf("[ERROR] Delete post handler: post=%d err=%v", postID, err)
			httputil.WriteInternalError(w, "Failed to delete post")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Post deleted successfully",
	})
}
