package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Rajangupta9/taskflow/models"
)

// Memory keeps everything in process. Used by tests and by the "memory"
// storage driver.
type Memory struct {
	mu     sync.RWMutex
	tasks  map[string][]models.Task // userID -> tasks in insertion order
	users  map[string]*models.User  // userID -> user
	byName map[string]string        // username -> userID
	now    func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		tasks:  make(map[string][]models.Task),
		users:  make(map[string]*models.User),
		byName: make(map[string]string),
		now:    time.Now,
	}
}

func (m *Memory) Close(context.Context) error { return nil }

func (m *Memory) ListTasks(_ context.Context, userID string) ([]models.Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Task, len(m.tasks[userID]))
	copy(out, m.tasks[userID])
	return out, nil
}

func (m *Memory) find(userID, id string) int {
	for i, t := range m.tasks[userID] {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (m *Memory) GetTask(_ context.Context, userID, id string) (*models.Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	i := m.find(userID, id)
	if i < 0 {
		return nil, fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	t := m.tasks[userID][i]
	return &t, nil
}

func (m *Memory) CreateTasks(_ context.Context, userID string, tasks []models.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id, dup := duplicateIDs(tasks); dup {
		return fmt.Errorf("task %s: %w", id, ErrConflict)
	}
	for _, t := range tasks {
		if m.find(userID, t.ID) >= 0 {
			return fmt.Errorf("task %s: %w", t.ID, ErrConflict)
		}
	}

	now := m.now()
	for _, t := range tasks {
		t.UserID = userID
		t.CreatedAt = now
		t.UpdatedAt = now
		m.tasks[userID] = append(m.tasks[userID], t)
	}
	return nil
}

func (m *Memory) UpdateTask(_ context.Context, userID, id string, patch models.TaskPatch) (*models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.find(userID, id)
	if i < 0 {
		return nil, fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	t := &m.tasks[userID][i]
	patch.Apply(t)
	t.UpdatedAt = m.now()
	out := *t
	return &out, nil
}

func (m *Memory) DeleteTask(_ context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.find(userID, id)
	if i < 0 {
		return fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	tasks := m.tasks[userID]
	m.tasks[userID] = append(tasks[:i], tasks[i+1:]...)
	return nil
}

func (m *Memory) CreateUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.byName[user.Username]; exists {
		return fmt.Errorf("user %s: %w", user.Username, ErrConflict)
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = m.now()
	}
	u := *user
	m.users[u.ID] = &u
	m.byName[u.Username] = u.ID
	return nil
}

func (m *Memory) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	m.mu.RLock()
	id, ok := m.byName[username]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("user %s: %w", username, ErrNotFound)
	}
	return m.GetUserByID(ctx, id)
}

func (m *Memory) GetUserByID(_ context.Context, id string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	out := *u
	return &out, nil
}
