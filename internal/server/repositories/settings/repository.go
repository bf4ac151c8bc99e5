// Package settings stores per-user transcription and writing preferences.
package settings

import (
	"context"

	"github.com/Chris-Obeng/talkflo-app1/internal/server/models"
)

type Repository interface {
	// Get returns zero-valued settings when the user never saved any.
	Get(ctx context.Context, userID string) (models.UserSettings, error)
	Upsert(ctx context.Context, userID string, s models.UserSettings) error
}
