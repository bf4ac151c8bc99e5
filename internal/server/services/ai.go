package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/Chris-Obeng/talkflo-app1/internal/common"
	"github.com/Chris-Obeng/talkflo-app1/internal/logging"
	"github.com/Chris-Obeng/talkflo-app1/internal/server/llm"
	"github.com/Chris-Obeng/talkflo-app1/internal/server/models"
	"github.com/Chris-Obeng/talkflo-app1/internal/server/prompts"
	"github.com/Chris-Obeng/talkflo-app1/internal/server/repositories/repomanager"
)

// AIService re-derives note content from the stored transcript.
type AIService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	llm         llm.Client
	prompts     *prompts.Set
	log         logging.Logger
}

func NewAIService(db *sql.DB, m repomanager.RepositoryManager, client llm.Client, set *prompts.Set, log logging.Logger) *AIService {
	return &AIService{db: db, repomanager: m, llm: client, prompts: set, log: log}
}

// Styles lists the named regenerate templates.
func (s *AIService) Styles() []string {
	return s.prompts.Names()
}

// Regenerate replaces the note's content with the transcript reworked into
// style.
func (s *AIService) Regenerate(ctx context.Context, userID, noteID, style string) (*models.Note, error) {
	style = strings.TrimSpace(style)
	if style == "" {
		return nil, fmt.Errorf("%w: style must not be blank", common.ErrInvalidArgument)
	}
	return s.generate(ctx, userID, noteID, func(transcript string, st models.UserSettings) (string, string) {
		return s.prompts.Regenerate(style, transcript, st)
	})
}

// Rewrite replaces the note's content with the transcript rewritten according
// to free-text instructions.
func (s *AIService) Rewrite(ctx context.Context, userID, noteID, instructions string) (*models.Note, error) {
	instructions = strings.TrimSpace(instructions)
	if instructions == "" {
		return nil, fmt.Errorf("%w: instructions must not be blank", common.ErrInvalidArgument)
	}
	return s.generate(ctx, userID, noteID, func(transcript string, st models.UserSettings) (string, string) {
		return prompts.Rewrite(instructions, transcript, st)
	})
}

// generate flips the note to generating for the duration of one completion.
// The note is back to completed afterwards whether or not the call worked.
func (s *AIService) generate(ctx context.Context, userID, noteID string,
	build func(transcript string, st models.UserSettings) (system, user string)) (*models.Note, error) {
	if err := checkID(noteID); err != nil {
		return nil, err
	}
	notesRepo := s.repomanager.Notes(s.db)

	note, err := notesRepo.Get(ctx, userID, noteID)
	if err != nil {
		return nil, err
	}
	if note.Transcript == nil || strings.TrimSpace(*note.Transcript) == "" {
		return nil, common.ErrNoTranscript
	}

	settings, err := s.repomanager.Settings(s.db).Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error loading settings: %w", err)
	}

	if err := notesRepo.SetStatus(ctx, userID, noteID, models.NoteStatusGenerating); err != nil {
		return nil, err
	}

	system, user := build(*note.Transcript, settings)
	content, err := s.llm.Complete(ctx, system, user, prompts.Temperature)
	if err != nil {
		s.log.Warn(ctx, "note generation failed", "note_id", noteID, "error", err)
		if serr := notesRepo.SetStatus(context.WithoutCancel(ctx), userID, noteID, models.NoteStatusCompleted); serr != nil {
			s.log.Error(ctx, "reset note status", "note_id", noteID, "error", serr)
		}
		return nil, err
	}

	// ReplaceContent also moves the note back to completed.
	if err := notesRepo.ReplaceContent(context.WithoutCancel(ctx), userID, noteID, content); err != nil {
		if serr := notesRepo.SetStatus(context.WithoutCancel(ctx), userID, noteID, models.NoteStatusCompleted); serr != nil {
			s.log.Error(ctx, "reset note status", "note_id", noteID, "error", serr)
		}
		return nil, fmt.Errorf("error saving note content: %w", err)
	}
	note.Content = content
	note.Status = models.NoteStatusCompleted
	s.log.Info(ctx, "note regenerated", "note_id", noteID)
	return note, nil
}
