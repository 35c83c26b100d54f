package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/Rajangupta9/taskflow/analytics"
	"github.com/Rajangupta9/taskflow/models"
	"github.com/Rajangupta9/taskflow/views"
)

var statusMark = map[models.Status]string{
	models.StatusTodo:       "[ ]",
	models.StatusInProgress: "[>]",
	models.StatusPartial:    "[~]",
	models.StatusDone:       "[x]",
}

var dayMark = map[models.DayColor]string{
	models.DayEmpty:      " ",
	models.DayAllDone:    "*",
	models.DayPartial:    "~",
	models.DayInProgress: "+",
	models.DayNone:       ".",
}

func mark(s models.Status) string {
	if m, ok := statusMark[s]; ok {
		return m
	}
	return "[?]"
}

func timeRange(t models.Task) string {
	switch {
	case t.StartTime != "" && t.EndTime != "":
		return t.StartTime + "-" + t.EndTime
	case t.StartTime != "":
		return t.StartTime
	}
	return ""
}

func renderList(w io.Writer, tasks []models.Task) error {
	if len(tasks) == 0 {
		_, err := fmt.Fprintln(w, "No tasks.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tTIME\tSTATUS\tCATEGORY\tTITLE")
	for _, t := range tasks {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s %s\t%s\t%s\n",
			t.ID, t.Date, timeRange(t), mark(t.Status), t.Status, t.Category, t.Title)
	}
	return tw.Flush()
}

func renderSummary(w io.Writer, s analytics.Summary) error {
	fmt.Fprintf(w, "As of %s\n\n", s.Date)
	fmt.Fprintf(w, "  Win rate       %d%%\n", s.WinRate)
	fmt.Fprintf(w, "  Active streak  %d day(s)\n", s.Streak)
	fmt.Fprintf(w, "  Completed      %d of %d\n\n", s.Completed, s.Total)

	fmt.Fprintln(w, "Last 7 days")
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, d := range s.Weekly {
		bar := strings.Repeat("#", d.Completed) + strings.Repeat("-", d.Total-d.Completed)
		fmt.Fprintf(tw, "  %s\t%s\t%d/%d\t%s\n", d.Day, d.Date, d.Completed, d.Total, bar)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(s.Categories) > 0 {
		fmt.Fprintln(w, "\nBy category")
		tw = tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		for _, c := range s.Categories {
			name := c.Category
			if name == "" {
				name = "(none)"
			}
			fmt.Fprintf(tw, "  %s\t%d\n", name, c.Count)
		}
		return tw.Flush()
	}
	return nil
}

func renderMonth(w io.Writer, cal views.CalendarMonth, today time.Time) error {
	fmt.Fprintf(w, "%s %d\n", cal.Month, cal.Year)
	fmt.Fprintln(w, " Sun  Mon  Tue  Wed  Thu  Fri  Sat")

	cells := make([]string, 0, cal.Leading+len(cal.Days))
	for i := 0; i < cal.Leading; i++ {
		cells = append(cells, "     ")
	}
	todayStr := models.FormatDate(today)
	for _, d := range cal.Days {
		left, right := " ", " "
		if d.Date == todayStr {
			left, right = "[", "]"
		}
		cells = append(cells, fmt.Sprintf("%s%2d%s%s", left, d.Day, dayMark[d.Color], right))
	}
	for i := 0; i < len(cells); i += 7 {
		end := min(i+7, len(cells))
		fmt.Fprintln(w, strings.TrimRight(strings.Join(cells[i:end], ""), " "))
	}
	_, err := fmt.Fprintln(w, "\n * all done   ~ partial   + half or more done   . under half done")
	return err
}

func renderBoard(w io.Writer, cols []views.Column) error {
	for i, c := range cols {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s (%d)\n", strings.ToUpper(string(c.Status)), len(c.Tasks))
		for _, t := range c.Tasks {
			fmt.Fprintf(w, "  %s  %s  [%s] %s\n", t.ID, t.Date, t.Category, t.Title)
			if t.PendingItems != "" {
				fmt.Fprintf(w, "      pending: %s\n", t.PendingItems)
			}
		}
	}
	return nil
}

func renderMatrix(w io.Writer, groups []views.DateGroup) error {
	if len(groups) == 0 {
		_, err := fmt.Fprintln(w, "No tasks scheduled.")
		return err
	}
	for i, g := range groups {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, g.Date)
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "  TASK\tPLANNED\tACTUAL\tSTATUS\tNOTES")
		for _, t := range g.Tasks {
			actual := ""
			if t.ActualStartTime != "" || t.ActualEndTime != "" {
				actual = t.ActualStartTime + "-" + t.ActualEndTime
			}
			notes := t.CompletedItems
			if t.Status == models.StatusPartial && t.PendingItems != "" {
				notes = "pending: " + t.PendingItems
			}
			fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t%s\n", t.Title, timeRange(t), actual, t.Status, notes)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	return nil
}
