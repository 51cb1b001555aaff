// Package rank orders open tasks with the Ignite rule: urgent first, then
// overdue, then oldest first.
package rank

import (
	"slices"
	"strings"
	"time"

	"github.com/daviddao/taskdawn/internal/types"
)

const urgentMarker = "urgent"

// Rank returns tasks in priority order without modifying the input.
// today supplies the local calendar date used for the overdue test.
// Tasks equal on every key keep their input order.
func Rank(tasks []types.Task, today time.Time) []types.RankedTask {
	sorted := slices.Clone(tasks)
	slices.SortStableFunc(sorted, func(a, b types.Task) int {
		return Compare(a, b, today)
	})

	out := make([]types.RankedTask, len(sorted))
	for i, t := range sorted {
		out[i] = types.RankedTask{Task: t, Position: i + 1}
	}
	return out
}

// Compare orders two tasks by urgency, overdue status, then creation time.
func Compare(a, b types.Task, today time.Time) int {
	if c := boolFirst(IsUrgent(a), IsUrgent(b)); c != 0 {
		return c
	}
	if c := boolFirst(IsOverdue(a, today), IsOverdue(b, today)); c != 0 {
		return c
	}
	return compareCreated(a.Created, b.Created)
}

// Top returns at most n leading tasks.
func Top(ranked []types.RankedTask, n int) []types.RankedTask {
	if len(ranked) <= n {
		return ranked
	}
	return ranked[:n]
}

// IsUrgent reports whether the title carries the urgent marker in any case.
func IsUrgent(t types.Task) bool {
	return strings.Contains(strings.ToLower(t.Title), urgentMarker)
}

// IsOverdue reports whether the task's due date falls before today's
// calendar date. Due dates are date-only values published at UTC midnight,
// so the UTC date is compared with the local date of today.
func IsOverdue(t types.Task, today time.Time) bool {
	if t.Due == nil {
		return false
	}
	dy, dm, dd := t.Due.UTC().Date()
	ty, tm, td := today.Date()
	due := time.Date(dy, dm, dd, 0, 0, 0, 0, time.UTC)
	now := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	return due.Before(now)
}

func boolFirst(a, b bool) int {
	switch {
	case a && !b:
		return -1
	case !a && b:
		return 1
	}
	return 0
}

// compareCreated sorts missing timestamps after every known one.
func compareCreated(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	return a.Compare(*b)
}
