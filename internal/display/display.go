// Package display provides terminal formatting for taskdawn output.
package display

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var (
	// Styles
	Muted    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6b7280"))
	Dim      = lipgloss.NewStyle().Foreground(lipgloss.Color("#9ca3af"))
	Bold     = lipgloss.NewStyle().Bold(true)
	Success  = lipgloss.NewStyle().Foreground(lipgloss.Color("#16a34a"))
	ErrStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#dc2626"))
	Accent   = lipgloss.NewStyle().Foreground(lipgloss.Color("#d97706"))
)

const ruleWidth = 50

// Printer writes progress narration. A quiet printer discards everything
// except errors.
type Printer struct {
	Out   io.Writer
	Err   io.Writer
	Quiet bool
}

// NewPrinter returns a Printer writing to stdout and stderr.
func NewPrinter(quiet bool) *Printer {
	return &Printer{Out: os.Stdout, Err: os.Stderr, Quiet: quiet}
}

func (p *Printer) out() io.Writer {
	if p == nil || p.Quiet || p.Out == nil {
		return io.Discard
	}
	return p.Out
}

func (p *Printer) err() io.Writer {
	if p == nil || p.Err == nil {
		return io.Discard
	}
	return p.Err
}

// Printf writes a formatted line.
func (p *Printer) Printf(format string, args ...any) {
	fmt.Fprintf(p.out(), format+"\n", args...)
}

// Step prints an indented progress line.
func (p *Printer) Step(format string, args ...any) {
	fmt.Fprintf(p.out(), "  "+format+"\n", args...)
}

// Header prints a section header.
func (p *Printer) Header(title string) {
	fmt.Fprintln(p.out(), Bold.Render(title))
}

// SubHeader prints a dim subsection label.
func (p *Printer) SubHeader(title string) {
	fmt.Fprintln(p.out(), Muted.Render(title))
}

// Rule prints a light horizontal rule.
func (p *Printer) Rule() {
	fmt.Fprintln(p.out(), Muted.Render(strings.Repeat("─", ruleWidth)))
}

// HeavyRule prints a heavy horizontal rule.
func (p *Printer) HeavyRule() {
	fmt.Fprintln(p.out(), strings.Repeat("═", ruleWidth))
}

// Blank prints an empty line.
func (p *Printer) Blank() {
	fmt.Fprintln(p.out())
}

// SuccessMsg prints a green checkmark + message.
func (p *Printer) SuccessMsg(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(p.out(), Success.Render("✓")+" "+msg)
}

// ErrorMsg prints a red X + message to stderr. Quiet does not apply.
func (p *Printer) ErrorMsg(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(p.err(), ErrStyle.Render("✗")+" "+msg)
}

// TaskPreview prints a numbered list of task titles.
func (p *Printer) TaskPreview(titles []string) {
	for i, title := range titles {
		fmt.Fprintf(p.out(), "    %s %s\n", Accent.Render(fmt.Sprintf("%d.", i+1)), Truncate(title, 72))
	}
}

// AccountLabel returns a short label for an account.
// Derives the label from the domain (e.g., "user@example.com" -> "example").
func AccountLabel(account string) string {
	if idx := strings.Index(account, "@"); idx > 0 {
		domain := account[idx+1:]
		if dotIdx := strings.Index(domain, "."); dotIdx > 0 {
			return domain[:dotIdx]
		}
		return domain
	}
	return account
}

// MaskSecret shows the first and last two characters of a secret.
func MaskSecret(s string) string {
	if s == "" {
		return Dim.Render("(unset)")
	}
	if len(s) <= 6 {
		return strings.Repeat("*", len(s))
	}
	return s[:2] + strings.Repeat("*", len(s)-4) + s[len(s)-2:]
}

// TimeAgo formats a time relative to now.
func TimeAgo(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	default:
		return t.Format("Jan 2")
	}
}

// Truncate shortens a string to maxLen runes, adding ellipsis if needed.
func Truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
