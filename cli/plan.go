package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Rajangupta9/taskflow/generator"
	"github.com/Rajangupta9/taskflow/store"
)

const generateFailed = "Failed to generate tasks. Please check your API key."

func (a *app) planCmd() *cobra.Command {
	var file, date string
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "plan [goal]",
		Short: "Break a goal into tasks with the AI planner",
		Long: `Ask the configured model for 3 to 5 tasks toward a goal and add them.

Examples:
  taskflow plan "Run a half marathon in June"
  taskflow plan --file goals.pdf --date 2024-04-01
  taskflow plan "Learn Go" --dry-run`,
		RunE: func(cmd *cobra.Command, args []string) error {
			goal := strings.TrimSpace(strings.Join(args, " "))
			if file != "" {
				text, err := generator.GoalFromPDF(file)
				if err != nil {
					return err
				}
				goal = strings.TrimSpace(goal + " " + text)
			}
			if goal == "" {
				return errors.New("give a goal as arguments or with --file")
			}
			start, err := parseDateFlag(date, a.today())
			if err != nil {
				return fmt.Errorf("invalid --date: %w", err)
			}

			_, c, err := a.session()
			if err != nil {
				return err
			}
			proposed, err := c.Generate(cmd.Context(), goal, start)
			if err != nil {
				slog.Debug("generate failed", "error", err)
				return errors.New(generateFailed)
			}
			out := cmd.OutOrStdout()
			if len(proposed) == 0 {
				fmt.Fprintln(out, "The planner returned no tasks.")
				return nil
			}
			if dryRun {
				return renderList(out, proposed)
			}

			s, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			if err := s.AddBatch(cmd.Context(), proposed); err != nil {
				if errors.Is(err, store.ErrSessionInvalid) {
					return err
				}
				return fmt.Errorf("save generated tasks: %w", err)
			}
			fmt.Fprintf(out, "Added %d tasks:\n", len(proposed))
			return renderList(out, proposed)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "read the goal from a PDF")
	cmd.Flags().StringVarP(&date, "date", "d", "today", "first day for the tasks")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "show the proposals without saving")
	return cmd
}
