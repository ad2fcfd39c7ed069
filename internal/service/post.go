package service

import (
	"context"
	"log"
	"strings"

	"blogpulse/internal/cache"
	"blogpulse/internal/model"
	"blogpulse/internal/queue"
	"blogpulse/internal/repository"
)

const defaultPostListLimit = 20
const maxPostListLimit = 100

// PostService handles the post surface around the engagement core: the public
// index (latest and popular sections), single-post reads, and the admin
// create/delete operations.
type PostService struct {
	postRepo  repository.PostRepository
	trending  cache.TrendingCache
	publisher queue.Publisher
}

func NewPostService(postRepo repository.PostRepository, trending cache.TrendingCache, publisher queue.Publisher) *PostService {
	return &PostService{
		postRepo:  postRepo,
		trending:  trending,
		publisher: publisher,
	}
}

// List returns a section of the public post index. The popular section is
// served from the trending cache when it has entries and falls back to the
// database ordering when it does not.
func (s *PostService) List(ctx context.Context, section string, limit int) (*model.PostListResponse, error) {
	if limit <= 0 {
		limit = defaultPostListLimit
	}
	if limit > maxPostListLimit {
		limit = maxPostListLimit
	}

	switch section {
	case "", model.SectionLatest:
		posts, err := s.postRepo.ListLatest(ctx, limit)
		if err != nil {
			return nil, err
		}
		return &model.PostListResponse{Posts: posts, Section: model.SectionLatest}, nil

	case model.SectionPopular:
		posts, err := s.listPopular(ctx, limit)
		if err != nil {
			return nil, err
		}
		return &model.PostListResponse{Posts: posts, Section: model.SectionPopular}, nil

	default:
		return nil, model.ErrInvalidSection
	}
}

// listPopular tries the trending ranking first. The cache is advisory: any
// cache failure or an empty ranking degrades to the database score ordering.
func (s *PostService) listPopular(ctx context.Context, limit int) ([]model.PostSummary, error) {
	if s.trending != nil {
		postIDs, err := s.trending.TopPosts(ctx, limit)
		if err != nil {
			log.Printf("[PostService] Trending cache unavailable, falling back to DB: %v", err)
		} else if len(postIDs) > 0 {
			posts, err := s.postRepo.GetSummariesByIDs(ctx, postIDs)
			if err != nil {
				return nil, err
			}
			if len(posts) > 0 {
				return posts, nil
			}
			// Ranking held only deleted posts; fall through to the DB.
		}
	}
	return s.postRepo.ListPopular(ctx, limit)
}

// GetByID returns a single post with its current counters.
func (s *PostService) GetByID(ctx context.Context, postID int64) (*model.Post, error) {
	return s.postRepo.GetByID(ctx, postID)
}

// Create validates and stores a new post.
func (s *PostService) Create(ctx context.Context, req model.CreatePostRequest) (*model.Post, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Slug = strings.TrimSpace(req.Slug)

	if req.Title == "" || len(req.Title) > model.MaxPostTitleLength {
		return nil, model.ErrTitleRequired
	}
	if req.Slug == "" || len(req.Slug) > model.MaxPostSlugLength {
		return nil, model.ErrSlugRequired
	}

	post, err := s.postRepo.Create(ctx, req)
	if err != nil {
		return nil, err
	}

	log.Printf("[PostService] Created post id=%d slug=%s", post.ID, post.Slug)
	return post, nil
}

// Delete soft-deletes a post and evicts it from the trending ranking via the
// engagement stream.
func (s *PostService) Delete(ctx context.Context, postID int64) error {
	if err := s.postRepo.Delete(ctx, postID); err != nil {
		return err
	}

	if s.publisher != nil {
		event := queue.NewPostDeletedEvent(postID)
		if _, err := s.publisher.Publish(ctx, queue.StreamEngagement, event); err != nil {
			log.Printf("[PostService] Failed to publish PostDeleted event: post=%d err=%v", postID, err)
		}
	}

	log.Printf("[PostService] Deleted post id=%d", postID)
	return nil
}

// Stats returns the current engagement counters alongside the advisory
// trending score for a post.
func (s *PostService) Stats(ctx context.Context, postID int64) (*model.PostStats, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	stats := &model.PostStats{
		PostID:       post.ID,
		ViewCount:    post.ViewCount,
		LikeCount:    post.LikeCount,
		CommentCount: post.CommentCount,
	}

	if s.trending != nil {
		score, found, err := s.trending.Score(ctx, postID)
		if err != nil {
			log.Printf("[PostService] Failed to read trending score: post=%d err=%v", postID, err)
		} else if found {
			stats.TrendingScore = &score
		}
	}
	return stats, nil
}
