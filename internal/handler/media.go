package handler

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"blogpulse/internal/httputil"
	"blogpulse/internal/model"
	"blogpulse/internal/service"
)

// MediaHandler serves the admin featured-image upload endpoint.
type MediaHandler struct {
	mediaService *service.MediaService
}

func NewMediaHandler(mediaService *service.MediaService) *MediaHandler {
	return &MediaHandler{
		mediaService: mediaService,
	}
}

// UploadFeaturedImage handles POST /admin/media/featured
// Accepts a multipart form with an "image" field, normalizes the image, and
// returns its public URL for use as a post's featured image.
func (h *MediaHandler) UploadFeaturedImage(w http.ResponseWriter, r *http.Request) {
	maxFormSize := int64(model.MaxFeaturedImageSizeBytes) + 1024*1024 // allow form overhead
	r.Body = http.MaxBytesReader(w, r.Body, maxFormSize)
	if err := r.ParseMultipartForm(maxFormSize); err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			httputil.WriteBadRequest(w, "Content-Type must be multipart/form-data")
			return
		}
		if strings.Contains(err.Error(), "request body too large") {
			httputil.WriteBadRequest(w, "Image exceeds 5MB limit")
			return
		}
		httputil.WriteBadRequest(w, "Invalid form data")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		httputil.WriteBadRequest(w, "Image file is required")
		return
	}
	defer file.Close()

	upload, err := h.mediaService.UploadFeaturedImage(r.Context(), file, header)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrFileTooLarge):
			httputil.WriteBadRequest(w, "Image exceeds 5MB limit")
		case errors.Is(err, model.ErrInvalidImageType):
			httputil.WriteBadRequest(w, "Unsupported image type. Allowed: jpeg, png, webp")
		default:
			log.Printf("[ERROR] Upload featured image handler: err=%v", err)
			httputil.WriteInternalError(w, "Failed to upload image")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, upload)
}
