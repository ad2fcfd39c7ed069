package model

import (
	"errors"
	"time"
)

// Post represents a published blog post with its denormalized engagement counters.
// view_count is monotonic; like_count may decrease when a reader un-likes.
type Post struct {
	ID               int64      `db:"id" json:"id"`
	Title            string     `db:"title" json:"title"`
	Slug             string     `db:"slug" json:"slug"`
	Excerpt          *string    `db:"excerpt" json:"excerpt,omitempty"`
	Body             *string    `db:"body" json:"body,omitempty"`
	FeaturedImageURL *string    `db:"featured_image_url" json:"featured_image_url,omitempty"`
	ViewCount        int        `db:"view_count" json:"view_count"`
	LikeCount        int        `db:"like_count" json:"like_count"`
	CommentCount     int        `db:"comment_count" json:"comment_count"`
	PublishedAt      time.Time  `db:"published_at" json:"published_at"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updated_at"`
	DeletedAt        *time.Time `db:"deleted_at" json:"-"`
}

// PostSummary is a lightweight representation for list endpoints.
type PostSummary struct {
	ID               int64     `db:"id" json:"id"`
	Title            string    `db:"title" json:"title"`
	Slug             string    `db:"slug" json:"slug"`
	Excerpt          *string   `db:"excerpt" json:"excerpt,omitempty"`
	FeaturedImageURL *string   `db:"featured_image_url" json:"featured_image_url,omitempty"`
	ViewCount        int       `db:"view_count" json:"view_count"`
	LikeCount        int       `db:"like_count" json:"like_count"`
	CommentCount     int       `db:"comment_count" json:"comment_count"`
	PublishedAt      time.Time `db:"published_at" json:"published_at"`
}

// CreatePostRequest is the admin request body for creating a post.
type CreatePostRequest struct {
	Title            string  `json:"title"`
	Slug             string  `json:"slug"`
	Excerpt          *string `json:"excerpt"`
	Body             *string `json:"body"`
	FeaturedImageURL *string `json:"featured_image_url"`
}

// PostListResponse is the post list response for the public index.
type PostListResponse struct {
	Posts   []PostSummary `json:"posts"`
	Section string        `json:"section,omitempty"`
}

// PostStats carries the engagement counters for a post plus its advisory
// trending score when the ranking holds one.
type PostStats struct {
	PostID        int64    `json:"post_id"`
	ViewCount     int      `json:"view_count"`
	LikeCount     int      `json:"like_count"`
	CommentCount  int      `json:"comment_count"`
	TrendingScore *float64 `json:"trending_score,omitempty"`
}

// Valid sections for the public post index.
const (
	SectionLatest  = "latest"
	SectionPopular = "popular"
)

// Post constraints
const (
	MaxPostTitleLength = 255
	MaxPostSlugLength  = 255
)

// Post errors
var (
	ErrPostNotFound   = errors.New("post not found")
	ErrTitleRequired  = errors.New("post title is required")
	ErrSlugRequired   = errors.New("post slug is required")
	ErrSlugTaken      = errors.New("post slug already in use")
	ErrInvalidSection = errors.New("invalid post section")
)
