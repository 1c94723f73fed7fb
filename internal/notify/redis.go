// internal/notify/redis.go
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/tablemate-app/tablemate/internal/models"
)

// Rdb is the global Redis client. Connect it once at application startup.
var Rdb *redis.Client

// DefaultQueueName is the Redis list the external notifier daemon consumes
// group-ready events from.
var DefaultQueueName = "tablemate_group_ready"

// GroupReadyRecord is the payload handed to the push/email notifier. Group
// creation never depends on this delivery.
type GroupReadyRecord struct {
	GroupID   uuid.UUID   `json:"group_id"`
	Name      string      `json:"name"`
	Day       string      `json:"day,omitempty"`
	GroupType string      `json:"group_type"`
	MatchWeek string      `json:"match_week"`
	MemberIDs []uuid.UUID `json:"member_ids"`
	Timestamp int64       `json:"timestamp"`
}

// ConnectRedis initializes the global Redis client.
func ConnectRedis(addr string, db int) error {
	Rdb = redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := Rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return nil
}

// Publisher implements the engine's notification sink on the Redis queue.
type Publisher struct {
	Client *redis.Client
}

// GroupReady serializes the record to JSON and pushes it onto the queue.
// This is fire-and-forget from the engine's point of view; failures are the
// caller's to log, never to roll back on.
func (p *Publisher) GroupReady(ctx context.Context, g models.Group, members []uuid.UUID) error {
	rec := GroupReadyRecord{
		GroupID:   g.ID,
		Name:      g.Name,
		Day:       g.Day,
		GroupType: g.GroupType,
		MatchWeek: g.MatchWeek.Format("2006-01-02"),
		MemberIDs: members,
		Timestamp: time.Now().UnixMilli(),
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal GroupReadyRecord: %w", err)
	}

	queueName := getEnv("NOTIFY_QUEUE_NAME", DefaultQueueName)
	if err := p.Client.RPush(ctx, queueName, data).Err(); err != nil {
		return fmt.Errorf("failed to RPush to Redis list '%s': %w", queueName, err)
	}
	return nil
}

// getEnv is a helper to read an environment variable or return a default value.
func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}
