// Package recordings persists the lifecycle of audio-to-note conversions.
package recordings

import (
	"context"

	"github.com/Chris-Obeng/talkflo-app1/internal/server/models"
)

// Repository is owner-scoped for reads issued on behalf of a user. The
// id-only methods are reserved for the background worker, which acts on
// recordings it was handed by the service layer.
type Repository interface {
	Create(ctx context.Context, rec *models.Recording) (*models.Recording, error)
	Get(ctx context.Context, userID, id string) (*models.Recording, error)
	GetByID(ctx context.Context, id string) (*models.Recording, error)
	ListRecent(ctx context.Context, userID string, limit int) ([]*models.Recording, error)

	SetTranscript(ctx context.Context, id, transcript string) error
	SetProcessedText(ctx context.Context, id, text string) error
	// Complete and Fail only move a recording out of processing; a recording
	// already in a terminal state yields common.ErrorNotFound.
	Complete(ctx context.Context, id string, noteID *string) error
	Fail(ctx context.Context, id, message string) error
	// FailProcessing fails every recording still in processing and returns
	// their ids. Run at startup, before any job is dispatched.
	FailProcessing(ctx context.Context, message string) ([]string, error)
	MarkAudioDeleted(ctx context.Context, id string) error
}
