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

type CommentHandler struct {
	engagementService *service.EngagementService
}

func NewCommentHandler(engagementService *service.EngagementService) *CommentHandler {
	return &CommentHandler{
		engagementService: engagementService,
	}
}

// Submit handles POST /posts/:id/comments
// New comments land in the pending state and stay invisible until approved.
func (h *CommentHandler) Submit(w http.ResponseWriter, r *http.Request) {
	postID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid post ID")
		return
	}

	var req model.SubmitCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	comment, err := h.engagementService.SubmitComment(r.Context(), postID, req)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrPostNotFound):
			httputil.WriteNotFound(w, "Post not found")
		case errors.Is(err, model.ErrInvalidParent):
			httputil.WriteBadRequest(w, "Parent comment does not belong to this post")
		case errors.Is(err, model.ErrAuthorNameRequired):
			httputil.WriteBadRequest(w, "Author name is required")
		case errors.Is(err, model.ErrAuthorNameTooLong):
			httputil.WriteBadRequest(w, "Author name too long")
		case errors.Is(err, model.ErrBodyRequired):
			httputil.WriteBadRequest(w, "Comment body is required")
		case errors.Is(err, model.ErrBodyTooLong):
			httputil.WriteBadRequest(w, "Comment body too long")
		case errors.Is(err, model.ErrFingerprintRequired):
			httputil.WriteBadRequest(w, "Fingerprint is required")
		case errors.Is(err, model.ErrFingerprintTooLong):
			httputil.WriteBadRequest(w, "Fingerprint too long")
		default:
			log.Printf("[ERROR] Submit comment handler: post=%d err=%v", postID, err)
			httputil.WriteInternalError(w, "Failed to submit comment")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, comment)
}

// Tree handles GET /posts/:id/comments/tree
// Returns approved comments as a nested tree, rebuilt on every call.
func (h *CommentHandler) Tree(w http.ResponseWriter, r *http.Request) {
	postID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid post ID")
		return
	}

	tree, err := h.engagementService.GetCommentTree(r.Context(), postID)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrPostNotFound):
			httputil.WriteNotFound(w, "Post not found")
		default:
			log.Printf("[ERROR] Comment tree handler: post=%d err=%v", postID, err)
			httputil.WriteInternalError(w, "Failed to load comments")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, tree)
}
