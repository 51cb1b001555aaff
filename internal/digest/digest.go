// Package digest renders the plain-text daily email.
package digest

import (
	"fmt"
	"strings"
	"time"

	"github.com/daviddao/taskdawn/internal/types"
)

// Brand strings.
const (
	BrandName    = "Task Dawn"
	BrandTagline = "Ignite your day with prioritized tasks in your inbox."
)

// TopN is the number of ranked tasks a digest shows.
const TopN = 3

const (
	heavyRule = "═══════════════════════════════════════"
	lightRule = "───────────────────────────────────────"
	emptyLine = "No tasks today! Enjoy your morning."
)

// Build splits the leading ranked tasks into the top pick and stretch goals.
func Build(top []types.RankedTask, total int) types.Digest {
	d := types.Digest{Total: total}
	if len(top) > TopN {
		top = top[:TopN]
	}
	if len(top) == 0 {
		return d
	}
	first := top[0]
	d.Top = &first
	if len(top) > 1 {
		d.Stretch = append([]types.RankedTask(nil), top[1:]...)
	}
	return d
}

// Body formats the email body for the leading ranked tasks and the total
// number of open tasks.
func Body(top []types.RankedTask, total int) string {
	return Render(Build(top, total))
}

// Render formats a digest.
func Render(d types.Digest) string {
	if d.Top == nil {
		return strings.Join([]string{
			BrandName,
			heavyRule,
			"",
			emptyLine,
			"",
			lightRule,
			BrandTagline,
		}, "\n")
	}

	lines := []string{
		BrandName,
		heavyRule,
		"",
		"TOP PRIORITY",
		fmt.Sprintf(">>> %s <<<", TaskLine(d.Top.Task, 0)),
		"",
	}

	if len(d.Stretch) > 0 {
		lines = append(lines, lightRule, "STRETCH GOALS")
		for i, t := range d.Stretch {
			lines = append(lines, "  "+TaskLine(t.Task, i+2))
		}
		lines = append(lines, "")
	}

	lines = append(lines,
		lightRule,
		QueueLine(d.Total),
		"",
		BrandTagline,
	)
	return strings.Join(lines, "\n")
}

// TaskLine renders a task title with an optional "N. " prefix (index > 0)
// and a due-date suffix when the task has one.
func TaskLine(t types.Task, index int) string {
	prefix := ""
	if index > 0 {
		prefix = fmt.Sprintf("%d. ", index)
	}
	if due := DueLabel(t.Due); due != "" {
		return fmt.Sprintf("%s%s (%s)", prefix, t.Title, due)
	}
	return prefix + t.Title
}

// DueLabel formats a due date as "Due: Jan 02", or "" when absent.
func DueLabel(due *time.Time) string {
	if due == nil {
		return ""
	}
	return "Due: " + due.UTC().Format("Jan 02")
}

// QueueLine reports the number of open tasks.
func QueueLine(total int) string {
	noun := "tasks"
	if total == 1 {
		noun = "task"
	}
	return fmt.Sprintf("%d %s in queue", total, noun)
}

// Subject returns the dated subject line, e.g. "Task Dawn - Mon, Jan 02".
func Subject(now time.Time) string {
	return fmt.Sprintf("%s - %s", BrandName, now.Format("Mon, Jan 02"))
}
