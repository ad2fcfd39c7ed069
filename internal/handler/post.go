package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"blogpulse/internal/httputil"
	"blogpulse/internal/model"
	"blogpulse/internal/service"
)

type PostHandler struct {
	postService *service.PostService
}

func NewPostHandler(postService *service.PostService) *PostHandler {
	return &PostHandler{
		postService: postService,
	}
}

// List handles GET /posts?section=latest|popular&limit=N
func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	section := r.URL.Query().Get("section")

	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 0 {
			httputil.WriteBadRequest(w, "Invalid limit")
			return
		}
		limit = parsed
	}

	resp, err := h.postService.List(r.Context(), section, limit)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrInvalidSection):
			httputil.WriteBadRequest(w, "Invalid post section")
		default:
			log.Printf("[ERROR] List posts handler: section=%s err=%v", section, err)
			httputil.WriteInternalError(w, "Failed to list posts")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, resp)
}

// Get handles GET /posts/:id
func (h *PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	postID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid post ID")
		return
	}

	post, err := h.postService.GetByID(r.Context(), postID)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrPostNotFound):
			httputil.WriteNotFound(w, "Post not found")
		default:
			log.Printf("[ERROR] Get post handler: post=%d err=%v", postID, err)
			httputil.WriteInternalError(w, "Failed to load post")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, post)
}

// Stats handles GET /posts/:id/stats
func (h *PostHandler) Stats(w http.ResponseWriter, r *http.Request) {
	postID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid post ID")
		return
	}

	stats, err := h.postService.Stats(r.Context(), postID)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrPostNotFound):
			httputil.WriteNotFound(w, "Post not found")
		default:
			log.Printf("[ERROR] Post stats handler: post=%d err=%v", postID, err)
			httputil.WriteInternalError(w, "Failed to load post stats")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, stats)
}
