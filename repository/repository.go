// Package repository persists users and their tasks. Every task operation is
// scoped by the owning user id; a task that belongs to someone else behaves
// exactly like one that does not exist.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Rajangupta9/taskflow/config"
	"github.com/Rajangupta9/taskflow/models"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("already exists")
)

type TaskRepository interface {
	ListTasks(ctx context.Context, userID string) ([]models.Task, error)
	GetTask(ctx context.Context, userID, id string) (*models.Task, error)
	// CreateTasks inserts the whole batch or nothing.
	CreateTasks(ctx context.Context, userID string, tasks []models.Task) error
	UpdateTask(ctx context.Context, userID, id string, patch models.TaskPatch) (*models.Task, error)
	DeleteTask(ctx context.Context, userID, id string) error
}

type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

type Repository interface {
	TaskRepository
	UserRepository
	Close(ctx context.Context) error
}

// Open builds the repository selected by cfg.Driver.
func Open(ctx context.Context, cfg config.StorageConfig) (Repository, error) {
	switch cfg.Driver {
	case "memory":
		return NewMemory(), nil
	case "sqlite", "postgres":
		return OpenSQL(ctx, cfg.Driver, cfg.DSN)
	case "mongo":
		return OpenMongo(ctx, cfg.DSN, cfg.Database)
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
}

// duplicateIDs reports the first id that repeats inside a batch.
func duplicateIDs(tasks []models.Task) (string, bool) {
	seen := make(map[string]struct{}, len(tasks))
	for _, t := range tasks {
		if _, ok := seen[t.ID]; ok {
			return t.ID, true
		}
		seen[t.ID] = struct{}{}
	}
	return "", false
}
