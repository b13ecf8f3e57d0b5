package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"todo-api/internal/cache"
	"todo-api/internal/config"
	"todo-api/internal/models"
	"todo-api/pkg/logger"

	"github.com/segmentio/kafka-go"
)

const groupID = "todo-cache-invalidators"

// Run consumes todo change events and drops the cached list for each one, so writes made
// by other replicas or tools are not served stale. Returns when ctx is cancelled.
func Run(ctx context.Context, cfg *config.Config, c *cache.Cache) {
	if len(cfg.KafkaBrokers) == 0 {
		logger.Info(ctx, "Worker disabled (no Kafka brokers)")
		return
	}
	if c == nil {
		logger.Info(ctx, "Worker disabled (no cache to invalidate)")
		return
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.KafkaBrokers,
		Topic:    cfg.KafkaTopic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	defer reader.Close()

	logger.Info(ctx, "Kafka consumer started", "topic", cfg.KafkaTopic)
	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Error(ctx, "Worker fetch failed", "error", err)
			continue
		}
		if err := handleMessage(ctx, msg.Value, c); err != nil {
			// Commit anyway to avoid poison pill blocking the partition
			logger.Error(ctx, "Worker handle failed", "error", err, "payload", string(msg.Value))
		}
		if err := reader.CommitMessages(ctx, msg); err != nil {
			logger.Error(ctx, "Worker commit failed", "error", err)
		}
	}
}

func handleMessage(ctx context.Context, payload []byte, c *cache.Cache) error {
	var ev models.TodoEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		return err
	}
	switch ev.Action {
	case models.ActionCreated, models.ActionUpdated, models.ActionDeleted:
	default:
		return fmt.Errorf("unknown action %q", ev.Action)
	}
	c.InvalidateTodos(ctx)
	logger.Debug(ctx, "Todo event applied", "action", ev.Action, "id", ev.ID)
	return nil
}
