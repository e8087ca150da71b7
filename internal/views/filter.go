// Package views derives the sidebar tab views from a task list. Every
// function here is pure: classification depends only on the tasks, the
// selected tab and the supplied clock reading.
package views

import (
	"sort"
	"time"

	"github.com/benvon/task-planner/internal/models"
)

// Tab identifies one of the sidebar views
type Tab string

const (
	TabInbox     Tab = "INBOX"
	TabToday     Tab = "TODAY"
	TabUpcoming  Tab = "UPCOMING"
	TabImportant Tab = "IMPORTANT"
	TabOverdue   Tab = "OVERDUE"
)

// SameCalendarDay reports whether two times fall on the same calendar date
// in the local timezone. Calendar equality, not a 24-hour window: a due
// date just before midnight is still "today" all day.
func SameCalendarDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// IsToday reports whether the due date falls on now's calendar date
func IsToday(due *time.Time, now time.Time) bool {
	return due != nil && SameCalendarDay(*due, now)
}

// IsUpcoming reports whether the due date is in the future but not today
func IsUpcoming(due *time.Time, now time.Time) bool {
	return due != nil && due.After(now) && !SameCalendarDay(*due, now)
}

// IsOverdue reports whether the due date is in the past but not today
func IsOverdue(due *time.Time, now time.Time) bool {
	return due != nil && due.Before(now) && !SameCalendarDay(*due, now)
}

// Filter returns the subset of tasks visible on the given tab. INBOX
// preserves store order. OVERDUE is sorted by priority rank, most urgent
// first, with the incoming order preserved among equal priorities.
func Filter(tasks []models.Task, tab Tab, now time.Time) []models.Task {
	switch tab {
	case TabToday:
		return filterTasks(tasks, func(t models.Task) bool {
			return IsToday(t.DueDate, now)
		})
	case TabUpcoming:
		return filterTasks(tasks, func(t models.Task) bool {
			return IsUpcoming(t.DueDate, now)
		})
	case TabImportant:
		return filterTasks(tasks, func(t models.Task) bool {
			return t.Priority == models.PriorityHigh
		})
	case TabOverdue:
		overdue := filterTasks(tasks, func(t models.Task) bool {
			return IsOverdue(t.DueDate, now)
		})
		sort.SliceStable(overdue, func(i, j int) bool {
			return overdue[i].Priority.Rank() > overdue[j].Priority.Rank()
		})
		return overdue
	default:
		out := make([]models.Task, len(tasks))
		copy(out, tasks)
		return out
	}
}

func filterTasks(tasks []models.Task, keep func(models.Task) bool) []models.Task {
	out := []models.Task{}
	for _, t := range tasks {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}
