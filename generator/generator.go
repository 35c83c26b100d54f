// Package generator turns a free-text goal into a handful of proposed tasks
// using a hosted or local language model.
package generator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Rajangupta9/taskflow/config"
	"github.com/Rajangupta9/taskflow/models"
)

// ErrGeneration wraps every provider, transport and decoding failure.
var ErrGeneration = errors.New("task generation failed")

type Proposal struct {
	Title    string          `json:"title"`
	Category models.Category `json:"category"`
	Status   models.Status   `json:"status"`
}

type Generator interface {
	Generate(ctx context.Context, goal string, date time.Time) ([]Proposal, error)
}

// New builds the provider named in cfg. Provider "none" yields a generator
// that always fails.
func New(ctx context.Context, cfg config.GeneratorConfig) (Generator, error) {
	switch cfg.Provider {
	case "gemini":
		return NewGemini(ctx, cfg)
	case "ollama":
		return NewOllama(cfg), nil
	case "none", "":
		return Disabled{}, nil
	}
	return nil, fmt.Errorf("unknown generator provider %q", cfg.Provider)
}

type Disabled struct{}

func (Disabled) Generate(context.Context, string, time.Time) ([]Proposal, error) {
	return nil, fmt.Errorf("%w: no provider configured", ErrGeneration)
}

// Materialize gives each proposal a fresh id and the target date.
func Materialize(proposals []Proposal, date time.Time) []models.Task {
	tasks := make([]models.Task, 0, len(proposals))
	for _, p := range proposals {
		status := p.Status
		if status == "" {
			status = models.StatusTodo
		}
		tasks = append(tasks, models.Task{
			ID:       models.NewTaskID(),
			Title:    p.Title,
			Date:     models.FormatDate(date),
			Status:   status,
			Category: p.Category,
		})
	}
	return tasks
}
