package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Rajangupta9/taskflow/analytics"
	"github.com/Rajangupta9/taskflow/views"
)

func (a *app) statsCmd() *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Win rate, streak and weekly progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := parseDateFlag(date, a.today())
			if err != nil {
				return fmt.Errorf("invalid --date: %w", err)
			}
			s, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			return renderSummary(cmd.OutOrStdout(), analytics.Summarize(s.Tasks(), ref))
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "reference day YYYY-MM-DD (default today)")
	return cmd
}

func (a *app) calendarCmd() *cobra.Command {
	var month string
	cmd := &cobra.Command{
		Use:     "calendar",
		Aliases: []string{"cal"},
		Short:   "Month view shaded by completion",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			year, m, err := parseMonth(month, a.today())
			if err != nil {
				return err
			}
			s, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			return renderMonth(cmd.OutOrStdout(), views.Month(s.Tasks(), year, m), a.today())
		},
	}
	cmd.Flags().StringVar(&month, "month", "", "YYYY-MM (default current month)")
	return cmd
}

func (a *app) boardCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "board",
		Aliases: []string{"kanban"},
		Short:   "Tasks in status columns",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			return renderBoard(cmd.OutOrStdout(), views.Board(s.Tasks()))
		},
	}
}

func (a *app) matrixCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "matrix",
		Short: "Planned against actual, grouped by day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			return renderMatrix(cmd.OutOrStdout(), views.Matrix(s.Tasks()))
		},
	}
}

func (a *app) exportCmd() *cobra.Command {
	var format, output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write all tasks as CSV or YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			write := views.WriteCSV
			switch format {
			case "csv":
			case "yaml", "yml":
				write = views.WriteYAML
			default:
				return fmt.Errorf("unknown format %q, use csv or yaml", format)
			}

			s, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			if err := write(w, s.Tasks()); err != nil {
				return err
			}
			if output != "" && output != "-" {
				fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d tasks to %s\n", len(s.Tasks()), output)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "csv", "csv or yaml")
	cmd.Flags().StringVarP(&output, "output", "o", "", "file to write (default stdout)")
	return cmd
}
