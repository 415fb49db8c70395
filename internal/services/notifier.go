package services

import (
	"context"
	"encoding/json"
	"log"

	"github.com/go-redis/redis/v8"
	"github.com/saccohub/backend/internal/models"
)

const eventQueue = "transaction_events"

// Notifier publishes fire-and-forget transaction events onto a Redis list
// for downstream notification workers. Delivery failures are logged and
// never affect transaction correctness; a nil client degrades to log-only.
type Notifier struct {
	redis *redis.Client
}

func NewNotifier(redisClient *redis.Client) *Notifier {
	return &Notifier{redis: redisClient}
}

// TransactionProcessed emits the completed transaction.
func (n *Notifier) TransactionProcessed(ctx context.Context, txn *models.Transaction) {
	n.publish(ctx, map[string]any{
		"event":       "transaction.processed",
		"transaction": txn,
	})
}

// TransactionFailed emits the raw request plus the failure.
func (n *Notifier) TransactionFailed(ctx context.Context, dto *models.TransactionDTO, cause error) {
	n.publish(ctx, map[string]any{
		"event":      "transaction.failed",
		"request":    dto,
		"error":      cause.Error(),
		"error_code": ErrorCode(cause),
	})
}

func (n *Notifier) publish(ctx context.Context, payload map[string]any) {
	if n.redis == nil {
		log.Printf("[NOTIFY] %v: no event queue configured", payload["event"])
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("[NOTIFY] Failed to marshal %v event: %v", payload["event"], err)
		return
	}
	if err := n.redis.RPush(ctx, eventQueue, data).Err(); err != nil {
		log.Printf("[NOTIFY] Failed to queue %v event: %v", payload["event"], err)
	}
}
