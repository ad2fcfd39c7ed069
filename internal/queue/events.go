package queue

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event types for the engagement stream
const (
	EventViewCounted = "view_counted"
	EventLikeToggled = "like_toggled"
	EventPostDeleted = "post_deleted"
)

// Stream names
const (
	StreamEngagement = "stream:engagement"
)

// Consumer group name for engagement workers
const (
	ConsumerGroupEngagement = "engagement_workers"
)

// EngagementEvent represents an event published to the engagement stream.
// Events are advisory: the worker uses them to maintain the trending cache,
// never to make dedup decisions.
type EngagementEvent struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"` // Unix timestamp when event occurred

	PostID int64 `json:"post_id"`

	// Like events
	Liked bool `json:"liked,omitempty"`
}

// NewViewCountedEvent creates an event for a successfully counted view.
func NewViewCountedEvent(postID int64) EngagementEvent {
	return EngagementEvent{
		Type:      EventViewCounted,
		Timestamp: time.Now().Unix(),
		PostID:    postID,
	}
}

// NewLikeToggledEvent creates an event for a like toggle that changed state.
func NewLikeToggledEvent(postID int64, liked bool) EngagementEvent {
	return EngagementEvent{
		Type:      EventLikeToggled,
		Timestamp: time.Now().Unix(),
		PostID:    postID,
		Liked:     liked,
	}
}

// NewPostDeletedEvent creates an event for an admin post deletion.
// Worker will drop the post from the trending cache.
func NewPostDeletedEvent(postID int64) EngagementEvent {
	return EngagementEvent{
		Type:      EventPostDeleted,
		Timestamp: time.Now().Unix(),
		PostID:    postID,
	}
}

// ToMap converts the event to a map for Redis XADD.
// Redis Streams store field-value pairs, so the event is serialized to JSON
// in a "data" field.
func (e EngagementEvent) ToMap() (map[string]interface{}, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return map[string]interface{}{
		"type": e.Type,
		"data": string(data),
	}, nil
}

// ParseEngagementEvent parses an EngagementEvent from stream message values.
func ParseEngagementEvent(values map[string]interface{}) (EngagementEvent, error) {
	data, ok := values["data"].(string)
	if !ok {
		return EngagementEvent{}, fmt.Errorf("missing or invalid 'data' field")
	}

	var event EngagementEvent
	if err := json.Unmarshal([]byte(data), &event); err != nil {
		return EngagementEvent{}, fmt.Errorf("unmarshal event: %w", err)
	}
	return event, nil
}
