package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rajangupta9/taskflow/config"
	"github.com/Rajangupta9/taskflow/generator"
	"github.com/Rajangupta9/taskflow/handlers"
	"github.com/Rajangupta9/taskflow/models"
	"github.com/Rajangupta9/taskflow/repository"
	"github.com/Rajangupta9/taskflow/sessions"
	"github.com/Rajangupta9/taskflow/store"
	"github.com/Rajangupta9/taskflow/utils"
)

var fixedNow = time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC)

type stubGenerator struct {
	mu        sync.Mutex
	proposals []generator.Proposal
	err       error
}

func (g *stubGenerator) set(proposals []generator.Proposal, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.proposals, g.err = proposals, err
}

func (g *stubGenerator) Generate(context.Context, string, time.Time) ([]generator.Proposal, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.proposals, g.err
}

type harness struct {
	t           *testing.T
	cfgPath     string
	sessionPath string
	repo        *repository.Memory
	gen         *stubGenerator
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	repo := repository.NewMemory()
	gen := &stubGenerator{}
	h := &handlers.Handler{
		Repo:      repo,
		JWT:       utils.NewJWT("cli-secret", time.Hour),
		Revoked:   sessions.NewMemoryRevoker(),
		Generator: gen,
		Now:       func() time.Time { return fixedNow },
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := httptest.NewServer(h.Routes(config.ServerConfig{AuthRPS: 100, AuthBurst: 100}, logger))
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	sessionPath := filepath.Join(dir, "session.json")
	cfgPath := filepath.Join(dir, "taskflow.yaml")
	cfg := fmt.Sprintf(`storage:
  driver: memory
log:
  level: error
client:
  base_url: %s/api
  timeout: 5s
  session_path: %s
`, srv.URL, sessionPath)
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o600))

	return &harness{t: t, cfgPath: cfgPath, sessionPath: sessionPath, repo: repo, gen: gen}
}

func (h *harness) run(stdin string, args ...string) (string, error) {
	h.t.Helper()
	cmd := newRootCmd(&app{now: func() time.Time { return fixedNow }}, "test")
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--config", h.cfgPath}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func (h *harness) mustRun(args ...string) string {
	h.t.Helper()
	out, err := h.run("", args...)
	require.NoError(h.t, err, "taskflow %s", strings.Join(args, " "))
	return out
}

func (h *harness) taskByTitle(username, title string) models.Task {
	h.t.Helper()
	u, err := h.repo.GetUserByUsername(context.Background(), username)
	require.NoError(h.t, err)
	tasks, err := h.repo.ListTasks(context.Background(), u.ID)
	require.NoError(h.t, err)
	for _, t := range tasks {
		if t.Title == title {
			return t
		}
	}
	h.t.Fatalf("no task titled %q", title)
	return models.Task{}
}

func TestCLIWorkflow(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun("register", "alice", "-p", "secret")
	assert.Contains(t, out, "Account alice created")

	_, err := h.run("", "tasks", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not logged in")

	_, err = h.run("", "login", "alice", "-p", "wrong")
	require.EqualError(t, err, "invalid username or password")

	out = h.mustRun("login", "alice", "-p", "secret")
	assert.Equal(t, "Logged in as alice.\n", out)
	sess, err := store.LoadSession(h.sessionPath)
	require.NoError(t, err)
	assert.Equal(t, "alice", sess.Username)

	out = h.mustRun("tasks", "add", "Write", "report", "--date", "2024-03-15", "--category", "Work", "--start", "09:00", "--end", "10:00")
	assert.Contains(t, out, `"Write report" on 2024-03-15`)
	h.mustRun("tasks", "add", "Gym", "--date", "2024-03-14", "--category", "Health", "--status", "done")

	_, err = h.run("", "tasks", "add", "Bad", "--date", "15/03/2024")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --date")

	out = h.mustRun("tasks", "list")
	assert.Contains(t, out, "Write report")
	assert.Contains(t, out, "09:00-10:00")
	assert.Less(t, strings.Index(out, "Gym"), strings.Index(out, "Write report"), "sorted by date")

	out = h.mustRun("tasks", "list", "--date", "2024-03-14")
	assert.Contains(t, out, "Gym")
	assert.NotContains(t, out, "Write report")

	report := h.taskByTitle("alice", "Write report")
	out = h.mustRun("tasks", "toggle", report.ID[:8])
	assert.Equal(t, report.ID+" is now done\n", out)
	assert.Equal(t, models.StatusDone, h.taskByTitle("alice", "Write report").Status)

	out = h.mustRun("tasks", "update", report.ID, "--completed", "draft sent")
	assert.Contains(t, out, "Updated "+report.ID)
	assert.Equal(t, "draft sent", h.taskByTitle("alice", "Write report").CompletedItems)

	_, err = h.run("", "tasks", "update", report.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nothing to update")

	out = h.mustRun("stats", "--date", "2024-03-15")
	assert.Contains(t, out, "Win rate       100%")
	assert.Contains(t, out, "Active streak  2 day(s)")
	assert.Contains(t, out, "Completed      2 of 2")
	assert.Contains(t, out, "Health")

	out = h.mustRun("calendar", "--month", "2024-03")
	assert.Contains(t, out, "March 2024")
	assert.Contains(t, out, "[15*]")
	assert.Contains(t, out, " 14*")

	out = h.mustRun("board")
	assert.Contains(t, out, "TODO (0)")
	assert.Contains(t, out, "DONE (2)")

	out = h.mustRun("matrix")
	assert.Contains(t, out, "2024-03-14")
	assert.Contains(t, out, "draft sent")

	out = h.mustRun("export", "--format", "csv")
	assert.True(t, strings.HasPrefix(out, "ID,Title,Date,Start Time,End Time,Category,Status,Pending Notes\n"))

	exported := filepath.Join(t.TempDir(), "tasks.yaml")
	h.mustRun("export", "--format", "yaml", "--output", exported)
	raw, err := os.ReadFile(exported)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "title: Gym")

	h.gen.set([]generator.Proposal{
		{Title: "Install the toolchain", Category: models.CategoryLearning},
		{Title: "Finish the tour", Category: models.CategoryLearning, Status: models.StatusInProgress},
	}, nil)
	out = h.mustRun("plan", "Learn", "Go", "--date", "2024-03-20")
	assert.Contains(t, out, "Added 2 tasks:")
	assert.Equal(t, "2024-03-20", h.taskByTitle("alice", "Finish the tour").Date)

	out = h.mustRun("plan", "Learn", "Go", "--dry-run")
	assert.Contains(t, out, "Install the toolchain")
	out = h.mustRun("tasks", "list", "--date", "2024-03-20")
	assert.Equal(t, 2, strings.Count(out, "Learning"))

	h.gen.set(nil, generator.ErrGeneration)
	_, err = h.run("", "plan", "Learn", "Go")
	require.EqualError(t, err, generateFailed)

	gym := h.taskByTitle("alice", "Gym")
	out = h.mustRun("tasks", "status", gym.ID, "partially-complete")
	assert.Equal(t, gym.ID+" is now partially-complete\n", out)
	assert.Equal(t, models.StatusPartial, h.taskByTitle("alice", "Gym").Status)

	_, err = h.run("", "tasks", "status", gym.ID, "finished")
	assert.EqualError(t, err, `unknown status "finished"`)

	_, err = h.run("", "tasks", "delete", "")
	assert.EqualError(t, err, "task id must not be empty")
	h.taskByTitle("alice", "Gym")

	out = h.mustRun("tasks", "delete", gym.ID)
	assert.Equal(t, "Deleted "+gym.ID+"\n", out)

	out = h.mustRun("logout")
	assert.Equal(t, "Logged out.\n", out)
	_, err = os.Stat(h.sessionPath)
	assert.True(t, os.IsNotExist(err))
}

func TestCLIPasswordFromStdin(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("hunter22\n", "register", "bob")
	require.NoError(t, err)
	out, err := h.run("hunter22\n", "login", "bob")
	require.NoError(t, err)
	assert.Equal(t, "Logged in as bob.\n", out)
}

func TestCLIRejectedSessionIsCleared(t *testing.T) {
	h := newHarness(t)

	h.mustRun("register", "carol", "-p", "secret")
	h.mustRun("login", "carol", "-p", "secret")
	sess, err := store.LoadSession(h.sessionPath)
	require.NoError(t, err)
	sess.Token = "not-a-token"
	require.NoError(t, store.SaveSession(h.sessionPath, sess))

	_, err = h.run("", "board")
	require.ErrorIs(t, err, store.ErrSessionInvalid)
	_, err = os.Stat(h.sessionPath)
	assert.True(t, os.IsNotExist(err))
}

func TestParseDateFlag(t *testing.T) {
	ref := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	for in, want := range map[string]time.Time{
		"":           ref,
		"today":      ref,
		" tomorrow ": ref.AddDate(0, 0, 1),
		"2024-12-31": time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
	} {
		got, err := parseDateFlag(in, ref)
		require.NoError(t, err, in)
		assert.True(t, want.Equal(got), "%q: got %s", in, got)
	}
	_, err := parseDateFlag("next week", ref)
	assert.Error(t, err)
}

func TestParseMonth(t *testing.T) {
	y, m, err := parseMonth("", fixedNow)
	require.NoError(t, err)
	assert.Equal(t, 2024, y)
	assert.Equal(t, time.March, m)

	y, m, err = parseMonth("2023-11", fixedNow)
	require.NoError(t, err)
	assert.Equal(t, 2023, y)
	assert.Equal(t, time.November, m)

	_, _, err = parseMonth("11/2023", fixedNow)
	assert.EqualError(t, err, `month "11/2023" must be YYYY-MM`)
}

type listOnly []models.Task

func (l listOnly) ListTasks(context.Context) ([]models.Task, error) { return l, nil }
func (listOnly) CreateTasks(context.Context, []models.Task) ([]models.Task, error) {
	return nil, nil
}
func (listOnly) UpdateTask(context.Context, string, models.TaskPatch) (*models.Task, error) {
	return nil, nil
}
func (listOnly) DeleteTask(context.Context, string) error { return nil }

func TestResolveID(t *testing.T) {
	s := store.New(listOnly{{ID: "abc123"}, {ID: "abd456"}, {ID: "xyz"}})
	require.NoError(t, s.Refresh(context.Background()))

	id, err := resolveID(s, "xyz")
	require.NoError(t, err)
	assert.Equal(t, "xyz", id)

	id, err = resolveID(s, "abc")
	require.NoError(t, err)
	assert.Equal(t, "abc123", id)

	_, err = resolveID(s, "ab")
	assert.EqualError(t, err, `id prefix "ab" is ambiguous`)

	for _, ref := range []string{"", "  "} {
		_, err = resolveID(s, ref)
		assert.EqualError(t, err, "task id must not be empty")
	}

	_, err = resolveID(s, "nope")
	assert.ErrorIs(t, err, store.ErrTaskNotFound)
}
