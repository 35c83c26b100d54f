package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Rajangupta9/taskflow/models"
	"github.com/Rajangupta9/taskflow/store"
	"github.com/Rajangupta9/taskflow/views"
)

// resolveID accepts a full id or any unique prefix of one.
func resolveID(s *store.Store, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", errors.New("task id must not be empty")
	}
	if _, ok := s.Get(ref); ok {
		return ref, nil
	}
	var match string
	for _, t := range s.Tasks() {
		if strings.HasPrefix(t.ID, ref) {
			if match != "" {
				return "", fmt.Errorf("id prefix %q is ambiguous", ref)
			}
			match = t.ID
		}
	}
	if match == "" {
		return "", fmt.Errorf("%w: %s", store.ErrTaskNotFound, ref)
	}
	return match, nil
}

func (a *app) tasksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tasks",
		Aliases: []string{"task", "t"},
		Short:   "List and edit tasks",
	}
	cmd.AddCommand(
		a.tasksListCmd(),
		a.tasksAddCmd(),
		a.tasksToggleCmd(),
		a.tasksStatusCmd(),
		a.tasksUpdateCmd(),
		a.tasksDeleteCmd(),
	)
	return cmd
}

func (a *app) tasksListCmd() *cobra.Command {
	var date, status string
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Show tasks sorted by date",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			var filtered []models.Task
			for _, t := range views.List(s.Tasks()) {
				if date != "" && models.CalendarDate(t.Date) != date {
					continue
				}
				if status != "" && string(t.Status) != status {
					continue
				}
				filtered = append(filtered, t)
			}
			return renderList(cmd.OutOrStdout(), filtered)
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "only tasks on YYYY-MM-DD")
	cmd.Flags().StringVar(&status, "status", "", "only tasks with this status")
	return cmd
}

type taskFlags struct {
	date, start, end, category, status, description string
}

func (a *app) tasksAddCmd() *cobra.Command {
	var f taskFlags
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := parseDateFlag(f.date, a.today())
			if err != nil {
				return fmt.Errorf("invalid --date: %w", err)
			}
			t := models.Task{
				ID:          models.NewTaskID(),
				Title:       strings.Join(args, " "),
				Description: f.description,
				Date:        models.FormatDate(date),
				StartTime:   f.start,
				EndTime:     f.end,
				Status:      models.Status(f.status),
				Category:    models.Category(f.category),
			}
			if err := t.Validate(); err != nil {
				return err
			}

			s, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			if err := s.Add(cmd.Context(), t); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s %q on %s\n", t.ID, t.Title, t.Date)
			return nil
		},
	}
	cmd.Flags().StringVarP(&f.date, "date", "d", "today", "YYYY-MM-DD, today or tomorrow")
	cmd.Flags().StringVar(&f.start, "start", "", "planned start HH:mm")
	cmd.Flags().StringVar(&f.end, "end", "", "planned end HH:mm")
	cmd.Flags().StringVarP(&f.category, "category", "C", string(models.CategoryWork), "Work, Personal, Health, Learning or Finance")
	cmd.Flags().StringVarP(&f.status, "status", "s", string(models.StatusTodo), "initial status")
	cmd.Flags().StringVar(&f.description, "description", "", "longer description")
	return cmd
}

func (a *app) tasksToggleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id>",
		Short: "Mark a task done, or back to todo if it already is",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			id, err := resolveID(s, args[0])
			if err != nil {
				return err
			}
			next, err := s.Toggle(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", id, next)
			return nil
		},
	}
}

func (a *app) tasksStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <id> <status>",
		Short: "Move a task to todo, in-progress, partially-complete or done",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			status := models.Status(args[1])
			if !status.Valid() {
				return fmt.Errorf("unknown status %q", args[1])
			}
			s, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			id, err := resolveID(s, args[0])
			if err != nil {
				return err
			}
			if err := s.UpdateStatus(cmd.Context(), id, status); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", id, status)
			return nil
		},
	}
}

func (a *app) tasksUpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change selected fields of a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch, err := patchFromFlags(cmd)
			if err != nil {
				return err
			}
			s, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			id, err := resolveID(s, args[0])
			if err != nil {
				return err
			}
			current, _ := s.Get(id)
			if err := patch.Validate(current); err != nil {
				return err
			}
			if err := s.Update(cmd.Context(), id, patch); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", id)
			return nil
		},
	}
	fs := cmd.Flags()
	fs.String("title", "", "title")
	fs.String("description", "", "description")
	fs.String("date", "", "date YYYY-MM-DD")
	fs.String("start", "", "planned start HH:mm")
	fs.String("end", "", "planned end HH:mm")
	fs.String("actual-start", "", "actual start HH:mm")
	fs.String("actual-end", "", "actual end HH:mm")
	fs.String("status", "", "status")
	fs.String("category", "", "category")
	fs.String("pending", "", "what remains pending")
	fs.String("completed", "", "what was completed")
	return cmd
}

// patchFromFlags sets only the fields whose flags were given.
func patchFromFlags(cmd *cobra.Command) (models.TaskPatch, error) {
	var p models.TaskPatch
	fs := cmd.Flags()
	str := func(name string) *string {
		if !fs.Changed(name) {
			return nil
		}
		v, _ := fs.GetString(name)
		return &v
	}
	p.Title = str("title")
	p.Description = str("description")
	p.Date = str("date")
	p.StartTime = str("start")
	p.EndTime = str("end")
	p.ActualStartTime = str("actual-start")
	p.ActualEndTime = str("actual-end")
	p.PendingItems = str("pending")
	p.CompletedItems = str("completed")
	if v := str("status"); v != nil {
		st := models.Status(*v)
		p.Status = &st
	}
	if v := str("category"); v != nil {
		c := models.Category(*v)
		p.Category = &c
	}
	if p.Empty() {
		return p, fmt.Errorf("nothing to update, pass at least one field flag")
	}
	return p, nil
}

func (a *app) tasksDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			id, err := resolveID(s, args[0])
			if err != nil {
				return err
			}
			if err := s.Delete(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", id)
			return nil
		},
	}
}
