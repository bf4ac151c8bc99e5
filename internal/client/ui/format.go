// Package ui renders CLI output.
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/fatih/color"

	"github.com/Chris-Obeng/talkflo-app1/internal/client/capture"
	"github.com/Chris-Obeng/talkflo-app1/internal/client/models"
)

const timeLayout = "2006-01-02 15:04"

var (
	faint  = color.New(color.Faint).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
)

func NoteListItem(n models.Note) string {
	var sb strings.Builder
	title := n.Title
	if title == "" {
		title = "(untitled)"
	}
	fmt.Fprintf(&sb, "  %s  %s", faint(shortID(n.ID)), bold(title))
	if n.Status != "" && n.Status != "completed" {
		fmt.Fprintf(&sb, " %s", yellow("["+n.Status+"]"))
	}
	if n.Published {
		fmt.Fprintf(&sb, " %s", green("[published]"))
	}
	sb.WriteString("\n")
	if len(n.Tags) > 0 {
		fmt.Fprintf(&sb, "            %s %s\n", faint("Tags:"), cyan(strings.Join(n.Tags, ", ")))
	}
	fmt.Fprintf(&sb, "            %s %s\n", faint("Updated:"), faint(n.UpdatedAt.Local().Format(timeLayout)))
	return sb.String()
}

func NoteHeader(n models.Note) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\n", bold(n.Title))
	fmt.Fprintf(&sb, "%s %s\n", faint("ID:"), faint(n.ID))
	fmt.Fprintf(&sb, "%s %s\n", faint("Created:"), faint(n.CreatedAt.Local().Format(timeLayout)))
	fmt.Fprintf(&sb, "%s %s\n", faint("Updated:"), faint(n.UpdatedAt.Local().Format(timeLayout)))
	if n.Duration != nil {
		fmt.Fprintf(&sb, "%s %s\n", faint("Length:"), faint(Duration(*n.Duration)))
	}
	if len(n.Tags) > 0 {
		fmt.Fprintf(&sb, "%s %s\n", faint("Tags:"), cyan(strings.Join(n.Tags, ", ")))
	}
	sb.WriteString(Separator())
	return sb.String()
}

// Markdown renders content for the terminal. The raw text is returned when
// rendering is not possible.
func Markdown(content string) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return content
	}
	out, err := r.Render(content)
	if err != nil {
		return content
	}
	return out
}

func FolderItem(f models.Folder) string {
	return fmt.Sprintf("  %s  %s\n", faint(shortID(f.ID)), bold(f.Name))
}

func RecordingItem(r models.Recording) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "  %s  %s  %s  %s\n",
		faint(shortID(r.ID)), RecordingStatus(r.Status),
		Duration(r.Duration), faint(r.CreatedAt.Local().Format(timeLayout)))
	if r.ErrorMessage != nil {
		fmt.Fprintf(&sb, "            %s\n", red(*r.ErrorMessage))
	}
	if r.NoteID != nil {
		fmt.Fprintf(&sb, "            %s %s\n", faint("Note:"), *r.NoteID)
	}
	return sb.String()
}

func RecordingStatus(s models.RecordingStatus) string {
	switch s {
	case models.RecordingCompleted:
		return green(string(s))
	case models.RecordingFailed:
		return red(string(s))
	}
	return yellow(string(s))
}

func Subscription(v models.SubscriptionView) string {
	if v.Subscription == nil {
		return "No subscription.\n"
	}
	state := red("inactive")
	if v.Active {
		state = green("active")
	}
	return fmt.Sprintf("%s %s (%s)\n%s %s\n",
		faint("Plan:"), state, v.Subscription.Status,
		faint("Ends:"), v.Subscription.EndsOn.Local().Format(timeLayout))
}

func PaymentItem(p models.Payment) string {
	return fmt.Sprintf("  %s  %s  %s  %s\n",
		faint(p.CreatedAt.Local().Format(timeLayout)), p.PaymentID,
		Amount(p.Amount), p.Status)
}

// Amount formats minor currency units.
func Amount(minor int64) string {
	return fmt.Sprintf("%d.%02d", minor/100, abs(minor%100))
}

// Duration formats seconds as m:ss.
func Duration(seconds float64) string {
	d := time.Duration(seconds * float64(time.Second)).Round(time.Second)
	return fmt.Sprintf("%d:%02d", int(d.Minutes()), int(d.Seconds())%60)
}

// Meter draws the level bands as one line of block characters.
func Meter(lv capture.Levels) string {
	blocks := []rune(" ▁▂▃▄▅▆▇█")
	var sb strings.Builder
	for _, b := range lv.Bands {
		i := int(b * float64(len(blocks)-1))
		sb.WriteRune(blocks[max(0, min(i, len(blocks)-1))])
	}
	return sb.String()
}

func Separator() string {
	return faint(strings.Repeat("─", 50)) + "\n"
}

func Success(msg string) string {
	return color.New(color.FgGreen).Sprint("✓ ") + msg
}

func Error(msg string) string {
	return color.New(color.FgRed).Sprint("✗ ") + msg
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
