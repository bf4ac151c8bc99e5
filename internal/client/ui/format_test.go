package ui

import (
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"

	"github.com/Chris-Obeng/talkflo-app1/internal/client/capture"
	"github.com/Chris-Obeng/talkflo-app1/internal/client/models"
)

func init() {
	color.NoColor = true
}

func TestNoteListItem(t *testing.T) {
	n := models.Note{
		ID:        "0f8fad5b-d9cb-469f-a165-70867728950e",
		Title:     "Weekly sync",
		Tags:      []string{"work", "q3"},
		Status:    "generating",
		Published: true,
		UpdatedAt: time.Now(),
	}
	out := NoteListItem(n)
	assert.Contains(t, out, "0f8fad5b  Weekly sync [generating] [published]")
	assert.Contains(t, out, "Tags: work, q3")
	assert.Contains(t, out, "Updated:")
}

func TestNoteListItem_Untitled(t *testing.T) {
	out := NoteListItem(models.Note{ID: "abc", Status: "completed"})
	assert.Contains(t, out, "abc  (untitled)\n")
}

func TestNoteHeader(t *testing.T) {
	d := 75.4
	out := NoteHeader(models.Note{ID: "n1", Title: "Plan", Duration: &d})
	assert.True(t, strings.HasPrefix(out, "Plan\nID: n1\n"))
	assert.Contains(t, out, "Length: 1:15")
}

func TestMarkdown_RendersText(t *testing.T) {
	out := Markdown("# Title\n\nSome *text*.")
	assert.Contains(t, out, "Title")
	assert.Contains(t, out, "text")
}

func TestRecordingItem(t *testing.T) {
	msg := "OpenAI Transcription Error: 401 bad key"
	out := RecordingItem(models.Recording{ID: "r1", Status: models.RecordingFailed, Duration: 5, ErrorMessage: &msg})
	assert.Contains(t, out, "r1  failed  0:05")
	assert.Contains(t, out, msg)
}

func TestSubscription(t *testing.T) {
	assert.Equal(t, "No subscription.\n", Subscription(models.SubscriptionView{}))

	out := Subscription(models.SubscriptionView{
		Active:       true,
		Subscription: &models.Subscription{Status: "active", EndsOn: time.Now()},
	})
	assert.Contains(t, out, "Plan: active (active)")
}

func TestAmountAndDuration(t *testing.T) {
	assert.Equal(t, "9.99", Amount(999))
	assert.Equal(t, "0.05", Amount(5))
	assert.Equal(t, "0:00", Duration(0))
	assert.Equal(t, "2:01", Duration(120.6))
}

func TestMeter(t *testing.T) {
	var lv capture.Levels
	lv.Bands[0] = 1
	lv.Bands[1] = 0.5
	out := []rune(Meter(lv))
	assert.Len(t, out, capture.BandCount)
	assert.Equal(t, '█', out[0])
	assert.Equal(t, '▄', out[1])
	assert.Equal(t, ' ', out[2])
}

func TestSuccessAndError(t *testing.T) {
	assert.Equal(t, "✓ saved", Success("saved"))
	assert.Equal(t, "✗ failed", Error("failed"))
}
