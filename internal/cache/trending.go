package cache

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// TrendingKey is the sorted set ranking posts by engagement score.
	TrendingKey = "trending:posts"

	// TrendingCap is the maximum number of posts kept in the ranking.
	TrendingCap = 200

	// TrendingTTL bounds staleness: if the worker stops, the ranking ages
	// out and reads fall back to the database ordering.
	TrendingTTL = 7 * 24 * time.Hour
)

// Score weights. A like weighs twice a view; an unlike takes its weight back.
const (
	ViewScoreWeight = 1
	LikeScoreWeight = 2
)

// TrendingCache ranks posts by engagement score. The cache is advisory:
// reads fall back to the database when it is empty and correctness always
// comes from the store.
type TrendingCache interface {
	// IncrementScore adds delta to a post's engagement score.
	// Pipeline: ZINCRBY + ZREMRANGEBYRANK (maintain cap) + EXPIRE (refresh TTL).
	IncrementScore(ctx context.Context, postID int64, delta float64) error

	// RemovePost drops a post from the ranking (e.g. after deletion).
	RemovePost(ctx context.Context, postID int64) error

	// TopPosts returns up to limit post IDs ordered by descending score.
	TopPosts(ctx context.Context, limit int) ([]int64, error)

	// Score returns a post's current score. found=false if absent.
	Score(ctx context.Context, postID int64) (score float64, found bool, err error)
}

// RedisTrendingCache implements TrendingCache using a Redis sorted set.
type RedisTrendingCache struct {
	client *redis.Client
}

// NewTrendingCache creates a TrendingCache backed by Redis.
func NewTrendingCache(client *redis.Client) TrendingCache {
	return &RedisTrendingCache{client: client}
}

// IncrementScore adds delta to a post's score using a pipeline.
func (c *RedisTrendingCache) IncrementScore(ctx context.Context, postID int64, delta float64) error {
	member := strconv.FormatInt(postID, 10)

	pipe := c.client.Pipeline()
	pipe.ZIncrBy(ctx, TrendingKey, delta, member)
	// Trim to cap: keep the highest TrendingCap scores, drop the rest.
	pipe.ZRemRangeByRank(ctx, TrendingKey, 0, int64(-TrendingCap-1))
	pipe.Expire(ctx, TrendingKey, TrendingTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("[TrendingCache] IncrementScore FAILED: post=%d delta=%v err=%v", postID, delta, err)
		return fmt.Errorf("increment trending score: %w", err)
	}
	return nil
}

// RemovePost drops a post from the ranking.
func (c *RedisTrendingCache) RemovePost(ctx context.Context, postID int64) error {
	member := strconv.FormatInt(postID, 10)
	if err := c.client.ZRem(ctx, TrendingKey, member).Err(); err != nil {
		log.Printf("[TrendingCache] RemovePost FAILED: post=%d err=%v", postID, err)
		return fmt.Errorf("remove post from trending: %w", err)
	}
	return nil
}

// TopPosts returns post IDs ordered by descending score.
func (c *RedisTrendingCache) TopPosts(ctx context.Context, limit int) ([]int64, error) {
	if limit <= 0 {
		return nil, nil
	}

	members, err := c.client.ZRevRange(ctx, TrendingKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("read trending posts: %w", err)
	}

	postIDs := make([]int64, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			log.Printf("[TrendingCache] Skipping malformed member %q", m)
			continue
		}
		postIDs = append(postIDs, id)
	}
	return postIDs, nil
}

// Score returns a post's current score.
func (c *RedisTrendingCache) Score(ctx context.Context, postID int64) (float64, bool, error) {
	member := strconv.FormatInt(postID, 10)
	score, err := c.client.ZScore(ctx, TrendingKey, member).Result()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("read trending score: %w", err)
	}
	return score, true, nil
}
