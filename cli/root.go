// Package cli is the taskflow command tree: the API server and a terminal
// client that talks to it.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Rajangupta9/taskflow/client"
	"github.com/Rajangupta9/taskflow/config"
	"github.com/Rajangupta9/taskflow/store"
)

type app struct {
	cfgFile string
	cfg     *config.Config
	now     func() time.Time
}

// Execute runs the command line and returns the process exit code.
func Execute(version string) int {
	if err := NewRootCmd(version).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}

func NewRootCmd(version string) *cobra.Command {
	return newRootCmd(&app{now: time.Now}, version)
}

func newRootCmd(a *app, version string) *cobra.Command {
	root := &cobra.Command{
		Use:           "taskflow",
		Short:         "TaskFlow - personal task tracker",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.cfgFile)
			if err != nil {
				return err
			}
			a.cfg = cfg
			slog.SetDefault(newLogger(cmd.ErrOrStderr(), cfg.Log, false))
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&a.cfgFile, "config", "c", "", "config file (default ./taskflow.yaml or ~/.config/taskflow/taskflow.yaml)")

	root.AddCommand(
		a.serveCmd(),
		a.registerCmd(),
		a.loginCmd(),
		a.logoutCmd(),
		a.tasksCmd(),
		a.statsCmd(),
		a.calendarCmd(),
		a.boardCmd(),
		a.matrixCmd(),
		a.exportCmd(),
		a.planCmd(),
	)
	return root
}

func (a *app) today() time.Time {
	n := a.now()
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC)
}

// session returns the saved credential and a client bound to it.
func (a *app) session() (*store.Session, *client.Client, error) {
	sess, err := store.LoadSession(a.cfg.Client.SessionPath)
	if errors.Is(err, store.ErrNoSession) {
		return nil, nil, errors.New("not logged in, run `taskflow login` first")
	}
	if err != nil {
		return nil, nil, err
	}
	base := sess.BaseURL
	if base == "" {
		base = a.cfg.Client.BaseURL
	}
	return sess, client.New(base, sess.Token, a.cfg.Client.Timeout), nil
}

// openStore loads the caller's tasks. A rejected credential removes the
// session file.
func (a *app) openStore(ctx context.Context) (*store.Store, error) {
	_, c, err := a.session()
	if err != nil {
		return nil, err
	}
	s := store.New(c)
	s.OnSessionInvalid = func() {
		if err := store.ClearSession(a.cfg.Client.SessionPath); err != nil {
			slog.Warn("failed to remove session file", "error", err)
		}
	}
	if err := s.Refresh(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func parseMonth(s string, fallback time.Time) (int, time.Month, error) {
	if s == "" {
		return fallback.Year(), fallback.Month(), nil
	}
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return 0, 0, fmt.Errorf("month %q must be YYYY-MM", s)
	}
	return t.Year(), t.Month(), nil
}

func parseDateFlag(s string, fallback time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	switch s {
	case "", "today":
		return fallback, nil
	case "tomorrow":
		return fallback.AddDate(0, 0, 1), nil
	}
	return time.ParseInLocation("2006-01-02", s, time.UTC)
}
