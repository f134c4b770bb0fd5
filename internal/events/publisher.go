// Package events publishes domain notifications on Redis pub/sub so other
// processes (UI gateways, notifiers) can react to background work finishing.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	ResearchCompleted   = "EVENT_RESEARCH_COMPLETED"
	NewsCompleted       = "EVENT_NEWS_COMPLETED"
	AnalysisCompleted   = "EVENT_ANALYSIS_COMPLETED"
	JobStatusChanged    = "EVENT_JOB_STATUS_CHANGED"
	ContactsImported    = "EVENT_CONTACTS_IMPORTED"
	EmailStatusDetected = "EVENT_EMAIL_STATUS_DETECTED"
)

type Event struct {
	Type    string         `json:"type"`
	At      time.Time      `json:"at"`
	Payload map[string]any `json:"payload"`
}

type Publisher interface {
	Publish(ctx context.Context, eventType string, payload map[string]any) error
}

type RedisPublisher struct {
	rdb *redis.Client
}

func NewRedisPublisher(rdb *redis.Client) *RedisPublisher {
	return &RedisPublisher{rdb: rdb}
}

// Publish sends the event on a channel named after its type.
func (p *RedisPublisher) Publish(ctx context.Context, eventType string, payload map[string]any) error {
	b, err := json.Marshal(Event{Type: eventType, At: time.Now().UTC(), Payload: payload})
	if err != nil {
		return fmt.Errorf("encode %s: %w", eventType, err)
	}
	if err := p.rdb.Publish(ctx, eventType, b).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", eventType, err)
	}
	return nil
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, string, map[string]any) error { return nil }
