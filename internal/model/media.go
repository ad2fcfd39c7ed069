package model

import "errors"

// UploadResult contains the public URL and storage key for uploaded media.
type UploadResult struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

// Featured image constraints. Images are normalized to a fixed-width JPEG
// before upload so the public site serves a predictable asset.
const (
	MaxFeaturedImageSizeBytes = 5 * 1024 * 1024
	FeaturedImageWidth        = 1200
	FeaturedImageHeight       = 630
	FeaturedImageFolder       = "featured"
	FeaturedImageExt          = ".jpg"
	ContentTypeJPEG           = "image/jpeg"
	FeaturedImageCacheControl = "public, max-age=31536000, immutable"
)

// IsAllowedImageType reports whether the content type may be uploaded.
func IsAllowedImageType(contentType string) bool {
	switch contentType {
	case "image/jpeg", "image/png", "image/webp":
		return true
	}
	return false
}

// Media errors
var (
	ErrFileTooLarge     = errors.New("file exceeds maximum allowed size")
	ErrInvalidImageType = errors.New("unsupported image type")
)
