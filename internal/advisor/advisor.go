// Package advisor turns the todo list into a prompt and asks a text-generation model
// which task to do next.
package advisor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"todo-api/internal/models"
	"todo-api/pkg/logger"
)

// ErrNoTodos is returned when there is nothing to recommend. No model call is made.
var ErrNoTodos = errors.New("no todos found")

// Generator sends one prompt to a model and returns its raw text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// TokenCounter estimates the size of a prompt for logging. IsPrecise reports whether
// the count comes from a real tokenizer rather than a heuristic.
type TokenCounter interface {
	CountText(text string) int
	IsPrecise() bool
}

const promptTemplate = `
You are a productivity assistant.

Here is the todo list, each with an urgency of 'very important', 'important', or 'can do later':

%s

Pick exactly ONE task that the user should do next.
Return a short one-line answer in this format:

Do: <title> - <short reason>
`

// Advisor recommends the next task. It keeps no state between calls.
type Advisor struct {
	gen    Generator
	tokens TokenCounter
}

// New returns an Advisor. tokens may be nil.
func New(gen Generator, tokens TokenCounter) *Advisor {
	return &Advisor{gen: gen, tokens: tokens}
}

// FormatItems renders one line per todo, in list order.
func FormatItems(todos []models.Todo) string {
	lines := make([]string, 0, len(todos))
	for _, t := range todos {
		desc := "None"
		if t.Description != nil {
			desc = *t.Description
		}
		lines = append(lines, fmt.Sprintf("- title: %s, description: %s, urgency: %s", t.Title, desc, t.Urgency))
	}
	return strings.Join(lines, "\n")
}

// BuildPrompt embeds the rendered list in the fixed instruction template.
func BuildPrompt(todos []models.Todo) string {
	return fmt.Sprintf(promptTemplate, FormatItems(todos))
}

// NextTask asks the model for a recommendation and returns its text with surrounding
// whitespace removed. The text is not checked against the requested format.
func (a *Advisor) NextTask(ctx context.Context, todos []models.Todo) (string, error) {
	if len(todos) == 0 {
		return "", ErrNoTodos
	}
	prompt := BuildPrompt(todos)
	if a.tokens != nil {
		logger.Info(ctx, "Requesting next-task recommendation", "todos", len(todos), "prompt_tokens", a.tokens.CountText(prompt), "precise", a.tokens.IsPrecise())
	}
	logger.StepLogWithContext(ctx, "debug", "next-task prompt", prompt)

	text, err := a.gen.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}
