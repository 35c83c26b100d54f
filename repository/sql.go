package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/Rajangupta9/taskflow/models"
)

// SQL stores users and tasks in SQLite or PostgreSQL. Queries are written
// with ? placeholders and rebound for postgres.
type SQL struct {
	db      *sql.DB
	dialect string
	now     func() time.Time
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS tasks (
		user_id TEXT NOT NULL,
		id TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		task_date TEXT NOT NULL,
		start_time TEXT NOT NULL DEFAULT '',
		end_time TEXT NOT NULL DEFAULT '',
		actual_start_time TEXT NOT NULL DEFAULT '',
		actual_end_time TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'todo',
		category TEXT NOT NULL DEFAULT '',
		pending_items TEXT NOT NULL DEFAULT '',
		completed_items TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		seq INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (user_id, id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_user_date ON tasks (user_id, task_date)`,
}

const taskColumns = `id, title, description, task_date, start_time, end_time, actual_start_time,
	actual_end_time, status, category, pending_items, completed_items, created_at, updated_at`

// patch field name -> column
var taskColumnFor = map[string]string{
	"date": "task_date",
}

// NewSQL wraps an open handle. The schema is not touched.
func NewSQL(db *sql.DB, dialect string) *SQL {
	return &SQL{db: db, dialect: dialect, now: time.Now}
}

// OpenSQL opens the database for driver ("sqlite" or "postgres") and
// migrates the schema.
func OpenSQL(ctx context.Context, driver, dsn string) (*SQL, error) {
	if driver == "sqlite" && dsn != ":memory:" && !strings.HasPrefix(dsn, "file:") {
		if err := os.MkdirAll(filepath.Dir(dsn), 0755); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	if driver == "sqlite" {
		// one writer; also keeps :memory: databases on a single connection
		db.SetMaxOpenConns(1)
	}

	s := NewSQL(db, driver)
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQL) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

func (s *SQL) Close(context.Context) error {
	return s.db.Close()
}

func (s *SQL) rebind(query string) string {
	if s.dialect != "postgres" {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(row scanner, userID string) (*models.Task, error) {
	var t models.Task
	var status, category, created, updated string
	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.Date, &t.StartTime, &t.EndTime,
		&t.ActualStartTime, &t.ActualEndTime, &status, &category, &t.PendingItems,
		&t.CompletedItems, &created, &updated)
	if err != nil {
		return nil, err
	}
	t.UserID = userID
	t.Status = models.Status(status)
	t.Category = models.Category(category)
	t.CreatedAt = parseTime(created)
	t.UpdatedAt = parseTime(updated)
	return &t, nil
}

func (s *SQL) ListTasks(ctx context.Context, userID string) ([]models.Task, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`SELECT `+taskColumns+`
		FROM tasks WHERE user_id = ? ORDER BY seq, created_at`), userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		t, err := scanTask(rows, userID)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

func (s *SQL) GetTask(ctx context.Context, userID, id string) (*models.Task, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(`SELECT `+taskColumns+`
		FROM tasks WHERE user_id = ? AND id = ?`), userID, id)
	t, err := scanTask(row, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	return t, err
}

func (s *SQL) CreateTasks(ctx context.Context, userID string, tasks []models.Task) (err error) {
	if id, dup := duplicateIDs(tasks); dup {
		return fmt.Errorf("task %s: %w", id, ErrConflict)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	var seq int64
	if err = tx.QueryRowContext(ctx, s.rebind(`SELECT COALESCE(MAX(seq), 0) FROM tasks WHERE user_id = ?`), userID).Scan(&seq); err != nil {
		return err
	}

	insert := s.rebind(`INSERT INTO tasks (user_id, id, title, description, task_date, start_time,
		end_time, actual_start_time, actual_end_time, status, category, pending_items,
		completed_items, created_at, updated_at, seq)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	now := formatTime(s.now())
	for _, t := range tasks {
		seq++
		_, err = tx.ExecContext(ctx, insert, userID, t.ID, t.Title, t.Description, t.Date,
			t.StartTime, t.EndTime, t.ActualStartTime, t.ActualEndTime, string(t.Status),
			string(t.Category), t.PendingItems, t.CompletedItems, now, now, seq)
		if err != nil {
			if isUniqueViolation(err) {
				err = fmt.Errorf("task %s: %w", t.ID, ErrConflict)
			}
			return err
		}
	}
	return tx.Commit()
}

func (s *SQL) UpdateTask(ctx context.Context, userID, id string, patch models.TaskPatch) (*models.Task, error) {
	changes := patch.Changes()
	sets := make([]string, 0, len(changes)+1)
	args := make([]any, 0, len(changes)+3)
	for _, c := range changes {
		col := c.Field
		if mapped, ok := taskColumnFor[col]; ok {
			col = mapped
		}
		sets = append(sets, col+" = ?")
		args = append(args, c.Value)
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, formatTime(s.now()), userID, id)

	res, err := s.db.ExecContext(ctx, s.rebind(`UPDATE tasks SET `+strings.Join(sets, ", ")+
		` WHERE user_id = ? AND id = ?`), args...)
	if err != nil {
		return nil, err
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, err
	} else if n == 0 {
		return nil, fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	return s.GetTask(ctx, userID, id)
}

func (s *SQL) DeleteTask(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM tasks WHERE user_id = ? AND id = ?`), userID, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *SQL) CreateUser(ctx context.Context, user *models.User) error {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = s.now()
	}
	_, err := s.db.ExecContext(ctx, s.rebind(`INSERT INTO users (id, username, password_hash, created_at)
		VALUES (?, ?, ?, ?)`), user.ID, user.Username, user.PasswordHash, formatTime(user.CreatedAt))
	if err != nil && isUniqueViolation(err) {
		return fmt.Errorf("user %s: %w", user.Username, ErrConflict)
	}
	return err
}

func (s *SQL) getUser(ctx context.Context, where, arg string) (*models.User, error) {
	var u models.User
	var created string
	err := s.db.QueryRowContext(ctx, s.rebind(`SELECT id, username, password_hash, created_at
		FROM users WHERE `+where+` = ?`), arg).Scan(&u.ID, &u.Username, &u.PasswordHash, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", arg, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	u.CreatedAt = parseTime(created)
	return &u, nil
}

func (s *SQL) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getUser(ctx, "username", username)
}

func (s *SQL) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return s.getUser(ctx, "id", id)
}
