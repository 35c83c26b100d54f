// Package analytics derives the dashboard numbers from a flat task list.
// Everything here is recomputed from scratch on each call and never mutates
// its input, so the functions are safe to call concurrently.
package analytics

import (
	"math"
	"time"

	"github.com/Rajangupta9/taskflow/models"
)

// streakWindow is how many days back ActiveStreak looks.
const streakWindow = 30

type DayStat struct {
	Day       string `json:"day"`
	Date      string `json:"date"`
	Total     int    `json:"total"`
	Completed int    `json:"completed"`
}

type CategoryCount struct {
	Category string `json:"name"`
	Count    int    `json:"value"`
}

// Distribution keeps categories in order of first appearance.
type Distribution []CategoryCount

func (d Distribution) Map() map[string]int {
	m := make(map[string]int, len(d))
	for _, c := range d {
		m[c.Category] = c.Count
	}
	return m
}

type Summary struct {
	Date       string       `json:"date"`
	WinRate    int          `json:"winRate"`
	Streak     int          `json:"streak"`
	Completed  int          `json:"completed"`
	Total      int          `json:"total"`
	Weekly     []DayStat    `json:"weekly"`
	Categories Distribution `json:"categories"`
}

func countDone(tasks []models.Task) int {
	n := 0
	for _, t := range tasks {
		if t.Status == models.StatusDone {
			n++
		}
	}
	return n
}

// WinRate is the rounded percentage of done tasks, 0 for an empty list.
func WinRate(tasks []models.Task) int {
	if len(tasks) == 0 {
		return 0
	}
	return int(math.Round(float64(100*countDone(tasks)) / float64(len(tasks))))
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func completedDays(tasks []models.Task) map[string]struct{} {
	days := make(map[string]struct{})
	for _, t := range tasks {
		if t.Status == models.StatusDone {
			days[models.CalendarDate(t.Date)] = struct{}{}
		}
	}
	return days
}

// ActiveStreak counts consecutive days with at least one done task, walking
// back from ref. A ref day without completions does not end the streak.
func ActiveStreak(tasks []models.Task, ref time.Time) int {
	return scanStreak(completedDays(tasks), midnight(ref), true)
}

// scanStreak walks back at most streakWindow days from start. When
// forgiveFirstDay is set the first day may miss without stopping the scan.
func scanStreak(done map[string]struct{}, start time.Time, forgiveFirstDay bool) int {
	streak := 0
	day := start
	for i := 0; i < streakWindow; i++ {
		if _, ok := done[models.FormatDate(day)]; ok {
			streak++
		} else if !(forgiveFirstDay && i == 0) {
			break
		}
		day = day.AddDate(0, 0, -1)
	}
	return streak
}

// CategoryDistribution counts tasks per category value as stored.
func CategoryDistribution(tasks []models.Task) Distribution {
	out := Distribution{}
	index := make(map[string]int)
	for _, t := range tasks {
		c := string(t.Category)
		i, ok := index[c]
		if !ok {
			i = len(out)
			index[c] = i
			out = append(out, CategoryCount{Category: c})
		}
		out[i].Count++
	}
	return out
}

// WeeklySeries returns seven days, oldest first, ending at ref.
func WeeklySeries(tasks []models.Task, ref time.Time) []DayStat {
	type tally struct{ total, done int }
	byDay := make(map[string]*tally)
	for _, t := range tasks {
		key := models.CalendarDate(t.Date)
		c := byDay[key]
		if c == nil {
			c = &tally{}
			byDay[key] = c
		}
		c.total++
		if t.Status == models.StatusDone {
			c.done++
		}
	}

	end := midnight(ref)
	series := make([]DayStat, 0, 7)
	for i := 6; i >= 0; i-- {
		day := end.AddDate(0, 0, -i)
		stat := DayStat{
			Day:  day.Weekday().String()[:3],
			Date: models.FormatDate(day),
		}
		if c := byDay[stat.Date]; c != nil {
			stat.Total = c.total
			stat.Completed = c.done
		}
		series = append(series, stat)
	}
	return series
}

func Summarize(tasks []models.Task, ref time.Time) Summary {
	return Summary{
		Date:       models.FormatDate(midnight(ref)),
		WinRate:    WinRate(tasks),
		Streak:     ActiveStreak(tasks, ref),
		Completed:  countDone(tasks),
		Total:      len(tasks),
		Weekly:     WeeklySeries(tasks, ref),
		Categories: CategoryDistribution(tasks),
	}
}
