package worker

import (
	"context"
	"fmt"
	"log"
	"time"

	"blogpulse/internal/cache"
	"blogpulse/internal/queue"
)

// Handler applies engagement events to the trending cache. The cache is
// advisory; a failed update here never affects the counters in the store.
type Handler struct {
	trending cache.TrendingCache
}

// NewHandler creates a new event handler.
func NewHandler(trending cache.TrendingCache) *Handler {
	return &Handler{trending: trending}
}

// HandleEvent routes an event to the appropriate handler based on type.
func (h *Handler) HandleEvent(ctx context.Context, event queue.EngagementEvent) error {
	startTime := time.Now()
	var err error

	switch event.Type {
	case queue.EventViewCounted:
		err = h.handleViewCounted(ctx, event)
	case queue.EventLikeToggled:
		err = h.handleLikeToggled(ctx, event)
	case queue.EventPostDeleted:
		err = h.handlePostDeleted(ctx, event)
	default:
		log.Printf("[Worker] Unknown event type: %s", event.Type)
		return fmt.Errorf("unknown event type: %s", event.Type)
	}

	if err != nil {
		log.Printf("[Worker] HandleEvent FAILED: type=%s duration=%v err=%v",
			event.Type, time.Since(startTime), err)
		return err
	}

	log.Printf("[Worker] HandleEvent OK: type=%s duration=%v", event.Type, time.Since(startTime))
	return nil
}

// handleViewCounted bumps the post's trending score by the view weight.
func (h *Handler) handleViewCounted(ctx context.Context, event queue.EngagementEvent) error {
	return h.trending.IncrementScore(ctx, event.PostID, cache.ViewScoreWeight)
}

// handleLikeToggled bumps the score on like and takes the weight back on unlike.
func (h *Handler) handleLikeToggled(ctx context.Context, event queue.EngagementEvent) error {
	delta := float64(cache.LikeScoreWeight)
	if !event.Liked {
		delta = -delta
	}
	return h.trending.IncrementScore(ctx, event.PostID, delta)
}

// handlePostDeleted drops the post from the trending ranking.
func (h *Handler) handlePostDeleted(ctx context.Context, event queue.EngagementEvent) error {
	return h.trending.RemovePost(ctx, event.PostID)
}
