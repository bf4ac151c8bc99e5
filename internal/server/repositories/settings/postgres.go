package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Chris-Obeng/talkflo-app1/internal/dbx"
	"github.com/Chris-Obeng/talkflo-app1/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Get(ctx context.Context, userID string) (models.UserSettings, error) {
	query := `
		SELECT input_language, output_language, writing_style, writing_length
		FROM user_settings WHERE user_id = $1
	`
	var s models.UserSettings
	err := r.db.QueryRowContext(ctx, query, userID).
		Scan(&s.InputLanguage, &s.OutputLanguage, &s.WritingStyle, &s.WritingLength)
	if errors.Is(err, sql.ErrNoRows) {
		return models.UserSettings{}, nil
	}
	if err != nil {
		return models.UserSettings{}, fmt.Errorf("db error: %w", err)
	}
	return s, nil
}

func (r *PostgresRepository) Upsert(ctx context.Context, userID string, s models.UserSettings) error {
	query := `
		INSERT INTO user_settings (user_id, input_language, output_language, writing_style, writing_length)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE SET
			input_language = EXCLUDED.input_language,
			output_language = EXCLUDED.output_language,
			writing_style = EXCLUDED.writing_style,
			writing_length = EXCLUDED.writing_length
	`
	if _, err := r.db.ExecContext(ctx, query,
		userID, s.InputLanguage, s.OutputLanguage, s.WritingStyle, s.WritingLength); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
