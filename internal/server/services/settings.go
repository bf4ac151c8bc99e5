package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/Chris-Obeng/talkflo-app1/internal/common"
	"github.com/Chris-Obeng/talkflo-app1/internal/server/models"
	"github.com/Chris-Obeng/talkflo-app1/internal/server/repositories/repomanager"
)

type SettingsService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewSettingsService(db *sql.DB, m repomanager.RepositoryManager) *SettingsService {
	return &SettingsService{db: db, repomanager: m}
}

func (s *SettingsService) Get(ctx context.Context, userID string) (models.UserSettings, error) {
	return s.repomanager.Settings(s.db).Get(ctx, userID)
}

// Update merges patch over the stored settings and returns the result. An
// empty string clears a text field.
func (s *SettingsService) Update(ctx context.Context, userID string, patch models.UserSettings) (models.UserSettings, error) {
	if patch.WritingLength != nil && *patch.WritingLength != "" && !patch.WritingLength.Valid() {
		return models.UserSettings{}, fmt.Errorf("%w: writing length must be short, medium or long", common.ErrInvalidArgument)
	}

	repo := s.repomanager.Settings(s.db)
	cur, err := repo.Get(ctx, userID)
	if err != nil {
		return models.UserSettings{}, fmt.Errorf("error loading settings: %w", err)
	}
	merged := cur.Merge(patch)
	merged.InputLanguage = blankToNil(merged.InputLanguage)
	merged.OutputLanguage = blankToNil(merged.OutputLanguage)
	merged.WritingStyle = blankToNil(merged.WritingStyle)
	if merged.WritingLength != nil && *merged.WritingLength == "" {
		merged.WritingLength = nil
	}

	if err := repo.Upsert(ctx, userID, merged); err != nil {
		return models.UserSettings{}, fmt.Errorf("error saving settings: %w", err)
	}
	return merged, nil
}

func blankToNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
