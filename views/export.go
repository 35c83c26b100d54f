package views

import (
	"encoding/csv"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/Rajangupta9/taskflow/models"
)

var csvHeader = []string{"ID", "Title", "Date", "Start Time", "End Time", "Category", "Status", "Pending Notes"}

// WriteCSV exports tasks in list order.
func WriteCSV(w io.Writer, tasks []models.Task) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, t := range List(tasks) {
		err := cw.Write([]string{
			t.ID,
			t.Title,
			t.Date,
			t.StartTime,
			t.EndTime,
			string(t.Category),
			string(t.Status),
			t.PendingItems,
		})
		if err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

type yamlTask struct {
	ID              string `yaml:"id"`
	Title           string `yaml:"title"`
	Description     string `yaml:"description,omitempty"`
	Date            string `yaml:"date"`
	StartTime       string `yaml:"start_time,omitempty"`
	EndTime         string `yaml:"end_time,omitempty"`
	ActualStartTime string `yaml:"actual_start_time,omitempty"`
	ActualEndTime   string `yaml:"actual_end_time,omitempty"`
	Status          string `yaml:"status"`
	Category        string `yaml:"category,omitempty"`
	PendingItems    string `yaml:"pending_items,omitempty"`
	CompletedItems  string `yaml:"completed_items,omitempty"`
}

func WriteYAML(w io.Writer, tasks []models.Task) error {
	out := make([]yamlTask, 0, len(tasks))
	for _, t := range List(tasks) {
		out = append(out, yamlTask{
			ID:              t.ID,
			Title:           t.Title,
			Description:     t.Description,
			Date:            t.Date,
			StartTime:       t.StartTime,
			EndTime:         t.EndTime,
			ActualStartTime: t.ActualStartTime,
			ActualEndTime:   t.ActualEndTime,
			Status:          string(t.Status),
			Category:        string(t.Category),
			PendingItems:    t.PendingItems,
			CompletedItems:  t.CompletedItems,
		})
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(map[string][]yamlTask{"tasks": out}); err != nil {
		return err
	}
	return enc.Close()
}
