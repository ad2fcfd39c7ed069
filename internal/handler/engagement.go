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

type EngagementHandler struct {
	engagementService *service.EngagementService
}

func NewEngagementHandler(engagementService *service.EngagementService) *EngagementHandler {
	return &EngagementHandler{
		engagementService: engagementService,
	}
}

// RegisterView handles POST /posts/:id/views
// Counts a page view at most once per fingerprint per dedup window. A
// duplicate is a normal 200 with counted=false, never an error.
func (h *EngagementHandler) RegisterView(w http.ResponseWriter, r *http.Request) {
	postID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid post ID")
		return
	}

	var req model.RegisterViewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	result, err := h.engagementService.RegisterView(r.Context(), postID, req.Fingerprint)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrPostNotFound):
			httputil.WriteNotFound(w, "Post not found")
		case errors.Is(err, model.ErrFingerprintRequired):
			httputil.WriteBadRequest(w, "Fingerprint is required")
		case errors.Is(err, model.ErrFingerprintTooLong):
			httputil.WriteBadRequest(w, "Fingerprint too long")
		default:
			log.Printf("[ERROR] Register view handler: post=%d err=%v", postID, err)
			httputil.WriteInternalError(w, "Failed to register view")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}

// ToggleLike handles POST /posts/:id/likes
// Flips the like state for the fingerprint and returns the new state.
func (h *EngagementHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	postID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid post ID")
		return
	}

	var req model.ToggleLikeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	result, err := h.engagementService.ToggleLike(r.Context(), postID, req.Fingerprint)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrPostNotFound):
			httputil.WriteNotFound(w, "Post not found")
		case errors.Is(err, model.ErrFingerprintRequired):
			httputil.WriteBadRequest(w, "Fingerprint is required")
		case errors.Is(err, model.ErrFingerprintTooLong):
			httputil.WriteBadRequest(w, "Fingerprint too long")
		default:
			log.Printf("[ERROR] Toggle like handler: post=%d err=%v", postID, err)
			httputil.WriteInternalError(w, "Failed to toggle like")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}

// GetLikeStatus handles GET /posts/:id/likes/status?fingerprint=...
func (h *EngagementHandler) GetLikeStatus(w http.ResponseWriter, r *http.Request) {
	postID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid post ID")
		return
	}

	result, err := h.engagementService.GetLikeStatus(r.Context(), postID, r.URL.Query().Get("fingerprint"))
	if err != nil {
		switch {
		case errors.Is(err, model.ErrPostNotFound):
			httputil.WriteNotFound(w, "Post not found")
		case errors.Is(err, model.ErrFingerprintRequired):
			httputil.WriteBadRequest(w, "Fingerprint is required")
		case errors.Is(err, model.ErrFingerprintTooLong):
			httputil.WriteBadRequest(w, "Fingerprint too long")
		default:
			log.Printf("[ERROR] Like status handler: post=%d err=%v", postID, err)
			httputil.WriteInternalError(w, "Failed to read like status")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}

// ToggleCommentLike handles POST /comments/:commentId/likes
func (h *EngagementHandler) ToggleCommentLike(w http.ResponseWriter, r *http.Request) {
	commentID, err := strconv.ParseInt(chi.URLParam(r, "commentId"), 10, 64)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid comment ID")
		return
	}

	var req model.ToggleLikeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	result, err := h.engagementService.ToggleCommentLike(r.Context(), commentID, req.Fingerprint)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrCommentNotFound):
			httputil.WriteNotFound(w, "Comment not found")
		case errors.Is(err, model.ErrFingerprintRequired):
			httputil.WriteBadRequest(w, "Fingerprint is required")
		case errors.Is(err, model.ErrFingerprintTooLong):
			httputil.WriteBadRequest(w, "Fingerprint too long")
		default:
			log.Printf("[ERROR] Toggle comment like handler: comment=%d err=%v", commentID, err)
			httputil.WriteInternalError(w, "Failed to toggle comment like")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}

// GetCommentLikeStatus handles GET /comments/:commentId/likes/status?fingerprint=...
func (h *EngagementHandler) GetCommentLikeStatus(w http.ResponseWriter, r *http.Request) {
	commentID, err := strconv.ParseInt(chi.URLParam(r, "commentId"), 10, 64)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid comment ID")
		return
	}

	result, err := h.engagementService.GetCommentLikeStatus(r.Context(), commentID, r.URL.Query().Get("fingerprint"))
	if err != nil {
		switch {
		case errors.Is(err, model.ErrCommentNotFound):
			httputil.WriteNotFound(w, "Comment not found")
		case errors.Is(err, model.ErrFingerprintRequired):
			httputil.WriteBadRequest(w, "Fingerprint is required")
		case errors.Is(err, model.ErrFingerprintTooLong):
			httputil.WriteBadRequest(w, "Fingerprint too long")
		default:
			log.Printf("[ERROR] Comment like status handler: comment=%d err=%v", commentID, err)
			httputil.WriteInternalError(w, "Failed to read comment like status")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}
