package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"path"
	"strings"
	"time"

	"github.com/Chris-Obeng/talkflo-app1/internal/common"
	"github.com/Chris-Obeng/talkflo-app1/internal/logging"
	"github.com/Chris-Obeng/talkflo-app1/internal/server/config"
	"github.com/Chris-Obeng/talkflo-app1/internal/server/models"
	"github.com/Chris-Obeng/talkflo-app1/internal/server/repositories/repomanager"
	"github.com/Chris-Obeng/talkflo-app1/internal/server/storage"
)

const recentRecordingsLimit = 5

var allowedAudioExt = map[string]bool{
	"": true, "wav": true, "webm": true, "mp3": true, "m4a": true, "mp4": true, "ogg": true, "flac": true,
}

// RecordingEvents is the live state feed of recordings.
type RecordingEvents interface {
	Publish(state models.RecordingState)
	Subscribe(recordingID string) (<-chan models.RecordingState, func())
}

// JobDispatcher hands a recording to the background worker.
type JobDispatcher interface {
	Dispatch(ctx context.Context, recordingID string) error
}

// UploadTarget is where the client PUTs a recording before registering it.
type UploadTarget struct {
	UploadURL   string `json:"uploadUrl"`
	AudioHandle string `json:"audioHandle"`
}

// RecordingInput registers an uploaded blob. NoteIDToAppend, when set,
// appends the result to that note instead of creating a new one.
type RecordingInput struct {
	AudioHandle    string  `json:"audioHandle"`
	Duration       float64 `json:"duration"`
	FolderID       *string `json:"folderId,omitempty"`
	NoteIDToAppend *string `json:"noteIdToAppend,omitempty"`
}

type RecordingService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	blobs       storage.BlobStore
	events      RecordingEvents
	jobs        JobDispatcher
	uploadTTL   time.Duration
	log         logging.Logger
}

func NewRecordingService(db *sql.DB, m repomanager.RepositoryManager, blobs storage.BlobStore,
	events RecordingEvents, jobs JobDispatcher, cfg *config.Config, log logging.Logger) *RecordingService {
	return &RecordingService{
		db:          db,
		repomanager: m,
		blobs:       blobs,
		events:      events,
		jobs:        jobs,
		uploadTTL:   cfg.UploadURLTTL,
		log:         log,
	}
}

// RequestUploadTarget presigns a PUT for a fresh object key under the
// caller's prefix.
func (s *RecordingService) RequestUploadTarget(ctx context.Context, userID, ext string) (*UploadTarget, error) {
	ext = strings.TrimPrefix(strings.ToLower(ext), ".")
	if !allowedAudioExt[ext] {
		return nil, fmt.Errorf("%w: unsupported audio format %q", common.ErrInvalidArgument, ext)
	}
	key := storage.RecordingKey(userID, ext)
	url, err := s.blobs.PresignPut(ctx, key, s.uploadTTL)
	if err != nil {
		return nil, fmt.Errorf("error presigning upload: %w", err)
	}
	return &UploadTarget{UploadURL: url, AudioHandle: key}, nil
}

// CreateRecording registers an uploaded blob, publishes its processing state
// and queues it for the worker. The job outlives ctx.
func (s *RecordingService) CreateRecording(ctx context.Context, userID string, in RecordingInput) (*models.Recording, error) {
	if !ownsHandle(userID, in.AudioHandle) {
		return nil, fmt.Errorf("%w: audio handle", common.ErrInvalidArgument)
	}
	if in.Duration < 0 || math.IsNaN(in.Duration) || math.IsInf(in.Duration, 0) {
		return nil, fmt.Errorf("%w: duration", common.ErrInvalidArgument)
	}
	if in.FolderID != nil {
		if err := checkID(*in.FolderID); err != nil {
			return nil, fmt.Errorf("folder %w", err)
		}
		if _, err := s.repomanager.Folders(s.db).Get(ctx, userID, *in.FolderID); err != nil {
			return nil, wrapOwned("folder", err)
		}
	}
	if in.NoteIDToAppend != nil {
		if err := checkID(*in.NoteIDToAppend); err != nil {
			return nil, fmt.Errorf("note %w", err)
		}
		if _, err := s.repomanager.Notes(s.db).Get(ctx, userID, *in.NoteIDToAppend); err != nil {
			return nil, wrapOwned("note", err)
		}
	}

	rec, err := s.repomanager.Recordings(s.db).Create(ctx, &models.Recording{
		UserID:         userID,
		AudioHandle:    in.AudioHandle,
		Duration:       in.Duration,
		FolderID:       in.FolderID,
		NoteIDToAppend: in.NoteIDToAppend,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating recording: %w", err)
	}
	s.events.Publish(rec.State())

	if err := s.jobs.Dispatch(ctx, rec.ID); err != nil {
		s.log.Error(ctx, "dispatch recording", "recording_id", rec.ID, "error", err)
		msg := fmt.Sprintf("error queueing recording: %v", err)
		if ferr := s.repomanager.Recordings(s.db).Fail(ctx, rec.ID, msg); ferr == nil {
			rec.Status = models.RecordingStatusFailed
			rec.ErrorMessage = &msg
			s.events.Publish(rec.State())
		}
		return nil, fmt.Errorf("error queueing recording: %w", err)
	}
	s.log.Info(ctx, "recording queued", "recording_id", rec.ID, "append", in.NoteIDToAppend != nil)
	return rec, nil
}

func (s *RecordingService) GetStatus(ctx context.Context, userID, id string) (*models.Recording, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	return s.repomanager.Recordings(s.db).Get(ctx, userID, id)
}

// ListRecent returns the caller's latest recordings, newest first.
func (s *RecordingService) ListRecent(ctx context.Context, userID string) ([]*models.Recording, error) {
	return s.repomanager.Recordings(s.db).ListRecent(ctx, userID, recentRecordingsLimit)
}

// Discard deletes the retained audio of a failed recording. Calling it again
// after the audio is gone is a no-op.
func (s *RecordingService) Discard(ctx context.Context, userID, id string) error {
	rec, err := s.GetStatus(ctx, userID, id)
	if err != nil {
		return err
	}
	if rec.Status != models.RecordingStatusFailed {
		return fmt.Errorf("%w: only failed recordings can be discarded", common.ErrInvalidArgument)
	}
	if rec.AudioDeleted {
		return nil
	}
	if err := s.blobs.Delete(ctx, rec.AudioHandle); err != nil {
		return fmt.Errorf("error deleting audio: %w", err)
	}
	if err := s.repomanager.Recordings(s.db).MarkAudioDeleted(ctx, rec.ID); err != nil {
		return fmt.Errorf("error marking audio deleted: %w", err)
	}
	s.log.Info(ctx, "failed recording discarded", "recording_id", rec.ID)
	return nil
}

// Watch returns the current state and, unless it is already terminal, a
// channel of later states. The channel closes after a terminal state; stop
// must be called when the caller loses interest.
func (s *RecordingService) Watch(ctx context.Context, userID, id string) (models.RecordingState, <-chan models.RecordingState, func(), error) {
	if err := checkID(id); err != nil {
		return models.RecordingState{}, nil, nil, err
	}
	// subscribe before reading so no transition falls in between
	ch, stop := s.events.Subscribe(id)
	rec, err := s.repomanager.Recordings(s.db).Get(ctx, userID, id)
	if err != nil {
		stop()
		return models.RecordingState{}, nil, nil, err
	}
	if rec.Status.Terminal() {
		stop()
		return rec.State(), nil, func() {}, nil
	}
	return rec.State(), ch, stop, nil
}

func ownsHandle(userID, handle string) bool {
	prefix := "users/" + userID + "/recordings/"
	if !strings.HasPrefix(handle, prefix) {
		return false
	}
	rest := strings.TrimPrefix(handle, prefix)
	return rest != "" && path.Clean(handle) == handle && !strings.Contains(rest, "/")
}

func wrapOwned(what string, err error) error {
	if errors.Is(err, common.ErrorNotFound) {
		return fmt.Errorf("%s %w", what, err)
	}
	return err
}
