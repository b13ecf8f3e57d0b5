package models

import "time"

// Urgency labels understood by the recommendation prompt. Stored as free text.
const (
	UrgencyVeryImportant = "very important"
	UrgencyImportant     = "important"
	UrgencyCanDoLater    = "can do later"

	DefaultUrgency = UrgencyCanDoLater
)

// Todo represents a todo item.
type Todo struct {
	ID          int64   `json:"id" db:"id"`
	Title       string  `json:"title" db:"title"`
	Description *string `json:"description" db:"description"`
	Completed   bool    `json:"completed" db:"completed"`
	Urgency     string  `json:"urgency" db:"urgency"`
}

// TodoInput is the create/replace payload. Optional fields are pointers so that
// an absent or null value can fall back to its default. An empty string is a value.
type TodoInput struct {
	Title       string  `json:"title" binding:"required"`
	Description *string `json:"description"`
	Urgency     *string `json:"urgency"`
	Completed   *bool   `json:"completed"`
}

// Normalize applies defaults and returns the fields as a Todo without an ID.
func (in TodoInput) Normalize() Todo {
	t := Todo{
		Title:       in.Title,
		Description: in.Description,
		Urgency:     DefaultUrgency,
	}
	if in.Urgency != nil {
		t.Urgency = *in.Urgency
	}
	if in.Completed != nil {
		t.Completed = *in.Completed
	}
	return t
}

// Event actions published after a committed change.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// TodoEvent is the message payload for Kafka (created/updated/deleted).
type TodoEvent struct {
	Action     string    `json:"action"`
	ID         int64     `json:"id"`
	Todo       *Todo     `json:"todo,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
