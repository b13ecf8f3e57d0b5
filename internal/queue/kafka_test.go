package queue

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"todo-api/internal/config"
	"todo-api/internal/models"
)

func TestEncodeEvent(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	msg, err := EncodeEvent(models.TodoEvent{
		Action:     models.ActionCreated,
		ID:         17,
		Todo:       &models.Todo{ID: 17, Title: "Pay rent", Urgency: models.UrgencyVeryImportant},
		OccurredAt: at,
	})
	if err != nil {
		t.Fatalf("EncodeEvent: %v", err)
	}
	if string(msg.Key) != "17" {
		t.Fatalf("Key=%q, want 17", msg.Key)
	}

	var got models.TodoEvent
	if err := json.Unmarshal(msg.Value, &got); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if got.Action != models.ActionCreated || got.ID != 17 || got.Todo == nil || got.Todo.Title != "Pay rent" {
		t.Fatalf("unexpected event: %+v", got)
	}
	if !got.OccurredAt.Equal(at) {
		t.Fatalf("OccurredAt=%v, want %v", got.OccurredAt, at)
	}
}

func TestEncodeDeleteOmitsTodo(t *testing.T) {
	msg, err := EncodeEvent(models.TodoEvent{Action: models.ActionDeleted, ID: 3})
	if err != nil {
		t.Fatalf("EncodeEvent: %v", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(msg.Value, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := raw["todo"]; ok {
		t.Fatalf("delete event should omit todo: %s", msg.Value)
	}
}

func TestDisabledProducer(t *testing.T) {
	ctx := context.Background()
	p := NewProducer(ctx, &config.Config{})
	if p != nil {
		t.Fatalf("NewProducer without brokers=%v, want nil", p)
	}
	if err := p.PublishTodoEvent(ctx, models.TodoEvent{Action: models.ActionCreated, ID: 1}); err != nil {
		t.Fatalf("nil producer publish=%v, want nil", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("nil producer Close=%v, want nil", err)
	}
	EnsureTopic(ctx, &config.Config{})
}
