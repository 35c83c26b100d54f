// Package store keeps the logged-in user's tasks in memory and mirrors every
// change to the server. Changes are applied locally first; if the server
// rejects one, the local copy is thrown away and reloaded.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Rajangupta9/taskflow/client"
	"github.com/Rajangupta9/taskflow/models"
)

var (
	ErrTaskNotFound   = errors.New("task not found")
	ErrSessionInvalid = errors.New("session invalid, please log in again")
)

// Remote is the subset of the REST client the store needs.
type Remote interface {
	ListTasks(ctx context.Context) ([]models.Task, error)
	CreateTasks(ctx context.Context, ts []models.Task) ([]models.Task, error)
	UpdateTask(ctx context.Context, id string, patch models.TaskPatch) (*models.Task, error)
	DeleteTask(ctx context.Context, id string) error
}

type Store struct {
	mu     sync.Mutex
	tasks  []models.Task
	remote Remote

	// OnSessionInvalid runs when the server rejects the credential.
	OnSessionInvalid func()
}

func New(remote Remote) *Store {
	return &Store{remote: remote}
}

// sessionError turns a rejected credential into ErrSessionInvalid and drops
// the local collection.
func (s *Store) sessionError(err error) error {
	if errors.Is(err, client.ErrUnauthorized) {
		s.mu.Lock()
		s.tasks = nil
		s.mu.Unlock()
		if s.OnSessionInvalid != nil {
			s.OnSessionInvalid()
		}
		return fmt.Errorf("%w: %w", ErrSessionInvalid, err)
	}
	return err
}

// Refresh replaces the local collection with the server's.
func (s *Store) Refresh(ctx context.Context) error {
	tasks, err := s.remote.ListTasks(ctx)
	if err != nil {
		return s.sessionError(err)
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	s.mu.Lock()
	s.tasks = tasks
	s.mu.Unlock()
	return nil
}

// Tasks returns a copy of the current collection.
func (s *Store) Tasks() []models.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

func (s *Store) Get(id string) (models.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.index(id); i >= 0 {
		return s.tasks[i], true
	}
	return models.Task{}, false
}

func (s *Store) index(id string) int {
	for i, t := range s.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// mutate applies local under the lock, then calls remote. A remote failure
// discards local state by reloading from the server; the remote error is
// returned either way.
func (s *Store) mutate(ctx context.Context, local func() error, remote func(context.Context) error) error {
	s.mu.Lock()
	err := local()
	s.mu.Unlock()
	if err != nil {
		return err
	}

	if err := remote(ctx); err != nil {
		err = s.sessionError(err)
		if errors.Is(err, ErrSessionInvalid) {
			return err
		}
		if rerr := s.Refresh(ctx); rerr != nil {
			return errors.Join(err, fmt.Errorf("reload after failed change: %w", rerr))
		}
		return err
	}
	return nil
}

func (s *Store) Add(ctx context.Context, t models.Task) error {
	return s.AddBatch(ctx, []models.Task{t})
}

// AddBatch appends every task locally and sends them in one request.
func (s *Store) AddBatch(ctx context.Context, ts []models.Task) error {
	if len(ts) == 0 {
		return nil
	}
	batch := make([]models.Task, len(ts))
	for i, t := range ts {
		if t.ID == "" {
			t.ID = models.NewTaskID()
		}
		if t.Status == "" {
			t.Status = models.StatusTodo
		}
		batch[i] = t
	}
	return s.mutate(ctx,
		func() error {
			s.tasks = append(s.tasks, batch...)
			return nil
		},
		func(ctx context.Context) error {
			created, err := s.remote.CreateTasks(ctx, batch)
			if err == nil {
				s.replace(created...)
			}
			return err
		})
}

// replace swaps local entries for the server's copies, matched by id.
func (s *Store) replace(ts ...models.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range ts {
		if i := s.index(t.ID); i >= 0 {
			s.tasks[i] = t
		}
	}
}

func (s *Store) Update(ctx context.Context, id string, patch models.TaskPatch) error {
	return s.mutate(ctx,
		func() error {
			i := s.index(id)
			if i < 0 {
				return fmt.Errorf("%w: %s", ErrTaskNotFound, id)
			}
			patch.Apply(&s.tasks[i])
			return nil
		},
		func(ctx context.Context) error {
			updated, err := s.remote.UpdateTask(ctx, id, patch)
			if err == nil && updated != nil {
				s.replace(*updated)
			}
			return err
		})
}

func (s *Store) UpdateStatus(ctx context.Context, id string, status models.Status) error {
	return s.Update(ctx, id, models.TaskPatch{Status: &status})
}

// Toggle flips a task between done and todo.
func (s *Store) Toggle(ctx context.Context, id string) (models.Status, error) {
	t, ok := s.Get(id)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	next := models.ToggleStatus(t.Status)
	return next, s.UpdateStatus(ctx, id, next)
}

func (s *Store) Delete(ctx context.Context, id string) error {
	return s.mutate(ctx,
		func() error {
			i := s.index(id)
			if i < 0 {
				return fmt.Errorf("%w: %s", ErrTaskNotFound, id)
			}
			s.tasks = append(s.tasks[:i:i], s.tasks[i+1:]...)
			return nil
		},
		func(ctx context.Context) error {
			return s.remote.DeleteTask(ctx, id)
		})
}
