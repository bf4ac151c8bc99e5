// Package worker turns uploaded recordings into notes in the background.
package worker

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Chris-Obeng/talkflo-app1/internal/common"
	"github.com/Chris-Obeng/talkflo-app1/internal/dbx"
	"github.com/Chris-Obeng/talkflo-app1/internal/logging"
	"github.com/Chris-Obeng/talkflo-app1/internal/netx"
	"github.com/Chris-Obeng/talkflo-app1/internal/server/llm"
	"github.com/Chris-Obeng/talkflo-app1/internal/server/models"
	"github.com/Chris-Obeng/talkflo-app1/internal/server/prompts"
	"github.com/Chris-Obeng/talkflo-app1/internal/server/repositories/repomanager"
	"github.com/Chris-Obeng/talkflo-app1/internal/server/storage"
)

const (
	DefaultTitle   = "Untitled Note"
	maxTitleRunes  = 60
	maxAudioBytes  = 100 << 20
	fetchURLTTL    = 15 * time.Minute
	defaultAudioFn = "audio.wav"

	InterruptedMessage = "processing interrupted by a server restart"
)

// Publisher receives every persisted recording state.
type Publisher interface {
	Publish(state models.RecordingState)
}

// Pipeline runs one recording from processing to completed or failed.
type Pipeline struct {
	db         dbx.DBTX
	repos      repomanager.RepositoryManager
	blobs      storage.BlobStore
	llm        llm.Client
	events     Publisher
	httpClient *http.Client
	log        logging.Logger
}

func NewPipeline(db dbx.DBTX, repos repomanager.RepositoryManager, blobs storage.BlobStore,
	client llm.Client, events Publisher, log logging.Logger) *Pipeline {
	return &Pipeline{
		db:         db,
		repos:      repos,
		blobs:      blobs,
		llm:        client,
		events:     events,
		httpClient: &http.Client{Timeout: 5 * time.Minute},
		log:        log,
	}
}

// Process advances recordingID. Recordings that already left processing are
// skipped. A step failure is stored verbatim as the recording's error message
// and also returned; nothing done by earlier steps is rolled back.
func (p *Pipeline) Process(ctx context.Context, recordingID string) error {
	recs := p.repos.Recordings(p.db)

	rec, err := recs.GetByID(ctx, recordingID)
	if err != nil {
		return fmt.Errorf("load recording %s: %w", recordingID, err)
	}
	if rec.Status != models.RecordingStatusProcessing {
		p.log.Debug(ctx, "recording already settled", "status", rec.Status)
		return nil
	}

	start := time.Now()

	noteID, runErr := p.run(ctx, rec)

	// The final transition must land even when ctx was cancelled mid-run.
	settleCtx := context.WithoutCancel(ctx)
	if runErr != nil {
		msg := runErr.Error()
		if err := recs.Fail(settleCtx, rec.ID, msg); err != nil {
			p.log.Error(ctx, "failed to mark recording failed", "error", err)
			return errors.Join(runErr, err)
		}
		rec.Status = models.RecordingStatusFailed
		rec.ErrorMessage = &msg
		p.events.Publish(rec.State())
		p.log.Warn(ctx, "recording failed", "error", msg, "elapsed", time.Since(start))
		return runErr
	}

	if err := recs.Complete(settleCtx, rec.ID, &noteID); err != nil {
		return fmt.Errorf("complete recording: %w", err)
	}
	rec.Status = models.RecordingStatusCompleted
	rec.NoteID = &noteID
	p.events.Publish(rec.State())
	p.log.Info(ctx, "recording completed", "note_id", noteID, "elapsed", time.Since(start))
	return nil
}

// Abandon fails a recording whose job never started.
func (p *Pipeline) Abandon(ctx context.Context, recordingID, message string) error {
	recs := p.repos.Recordings(p.db)

	rec, err := recs.GetByID(ctx, recordingID)
	if err != nil {
		return fmt.Errorf("load recording %s: %w", recordingID, err)
	}
	if err := recs.Fail(ctx, recordingID, message); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil
		}
		return fmt.Errorf("fail recording %s: %w", recordingID, err)
	}
	rec.Status = models.RecordingStatusFailed
	rec.ErrorMessage = &message
	p.events.Publish(rec.State())
	p.log.Warn(ctx, "recording abandoned", "error", message)
	return nil
}

// FailInterrupted fails recordings left in processing by a previous run of
// the server. Nothing resumes them, so without this they would never settle.
func (p *Pipeline) FailInterrupted(ctx context.Context) error {
	ids, err := p.repos.Recordings(p.db).FailProcessing(ctx, InterruptedMessage)
	if err != nil {
		return fmt.Errorf("fail interrupted recordings: %w", err)
	}
	if len(ids) > 0 {
		p.log.Warn(ctx, "interrupted recordings marked failed", "count", len(ids), "recording_ids", ids)
	}
	return nil
}

func (p *Pipeline) run(ctx context.Context, rec *models.Recording) (string, error) {
	recs := p.repos.Recordings(p.db)
	notes := p.repos.Notes(p.db)

	url, err := p.blobs.PresignGet(ctx, rec.AudioHandle, fetchURLTTL)
	if err != nil {
		return "", err
	}
	audio, err := netx.Fetch(ctx, p.httpClient, url, maxAudioBytes)
	if err != nil {
		return "", fmt.Errorf("fetch audio: %w", err)
	}

	transcript, err := p.llm.Transcribe(ctx, audio, audioFilename(rec.AudioHandle))
	if err != nil {
		return "", err
	}
	if err := recs.SetTranscript(ctx, rec.ID, transcript); err != nil {
		return "", err
	}
	rec.Transcript = &transcript
	p.events.Publish(rec.State())

	processed, err := p.llm.Complete(ctx, prompts.EnhanceSystemPrompt, transcript, prompts.Temperature)
	if err != nil {
		return "", err
	}
	if err := recs.SetProcessedText(ctx, rec.ID, processed); err != nil {
		return "", err
	}
	rec.ProcessedText = &processed
	p.events.Publish(rec.State())

	var noteID string
	if rec.NoteIDToAppend != nil {
		noteID = *rec.NoteIDToAppend
		if err := notes.Append(ctx, rec.UserID, noteID, processed, transcript); err != nil {
			return "", fmt.Errorf("append to note %s: %w", noteID, err)
		}
	} else {
		title, err := p.title(ctx, processed)
		if err != nil {
			return "", err
		}
		handle := rec.AudioHandle
		duration := rec.Duration
		note, err := notes.Create(ctx, &models.Note{
			UserID:      rec.UserID,
			Title:       title,
			Content:     processed,
			Transcript:  &transcript,
			AudioHandle: &handle,
			Duration:    &duration,
			FolderID:    rec.FolderID,
			Tags:        models.Tags{},
			Status:      models.NoteStatusCompleted,
		})
		if err != nil {
			return "", fmt.Errorf("create note: %w", err)
		}
		noteID = note.ID
	}

	if err := p.blobs.Delete(ctx, rec.AudioHandle); err != nil {
		return "", err
	}
	if err := recs.MarkAudioDeleted(ctx, rec.ID); err != nil {
		return "", err
	}
	if err := notes.ClearAudio(ctx, rec.UserID, noteID); err != nil && !errors.Is(err, common.ErrorNotFound) {
		return "", err
	}
	return noteID, nil
}

func (p *Pipeline) title(ctx context.Context, text string) (string, error) {
	title, err := p.llm.Complete(ctx, prompts.TitleSystemPrompt, text, prompts.Temperature)
	if err != nil {
		if llm.IsEmptyCompletion(err) {
			return DefaultTitle, nil
		}
		return "", err
	}
	return cleanTitle(title), nil
}

func cleanTitle(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, `"'`)
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultTitle
	}
	if utf8.RuneCountInString(s) > maxTitleRunes {
		s = string([]rune(s)[:maxTitleRunes])
	}
	return s
}

func audioFilename(handle string) string {
	if ext := path.Ext(handle); ext != "" && len(ext) <= 6 {
		return "audio" + ext
	}
	return defaultAudioFn
}
