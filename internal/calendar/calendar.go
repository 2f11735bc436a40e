// Package calendar projects date-bound tasks onto a month grid. The grid
// is derived data: it holds task IDs only and is rebuilt from the store on
// demand, never cached.
package calendar

import (
	"sort"
	"time"

	"chors/internal/store"
)

// Grid maps the days of one month to the ordered tasks placed on them.
type Grid struct {
	Year  int
	Month time.Month
	Days  map[int][]store.ID
}

// PlacementDate returns the date a task occupies on the calendar: the
// scheduled date when set, otherwise the due date. Tasks with neither are
// not placed.
func PlacementDate(t store.Task) *time.Time {
	if t.Scheduled != nil {
		return t.Scheduled
	}
	return t.Due
}

// Project builds the grid for one month. Tasks sharing a date are ordered
// by priority, then by ID, which is store insertion order.
func Project(s *store.Store, year int, month time.Month) Grid {
	grid := Grid{Year: year, Month: month, Days: make(map[int][]store.ID)}
	byDay := make(map[int][]store.Task)
	for _, t := range s.All() {
		date := PlacementDate(t)
		if date == nil {
			continue
		}
		if date.Year() != year || date.Month() != month {
			continue
		}
		byDay[date.Day()] = append(byDay[date.Day()], t)
	}
	for day, tasks := range byDay {
		sort.SliceStable(tasks, func(i, j int) bool {
			if tasks[i].Priority.Rank() != tasks[j].Priority.Rank() {
				return tasks[i].Priority.Rank() > tasks[j].Priority.Rank()
			}
			return tasks[i].ID < tasks[j].ID
		})
		ids := make([]store.ID, len(tasks))
		for i, t := range tasks {
			ids[i] = t.ID
		}
		grid.Days[day] = ids
	}
	return grid
}

// Tasks returns the ordered IDs on a day, or nil.
func (g Grid) Tasks(day int) []store.ID {
	return g.Days[day]
}

// DaysInMonth returns the number of days in the grid's month.
func (g Grid) DaysInMonth() int {
	return time.Date(g.Year, g.Month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
