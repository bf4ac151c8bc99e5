package recordings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Chris-Obeng/talkflo-app1/internal/common"
	"github.com/Chris-Obeng/talkflo-app1/internal/dbx"
	"github.com/Chris-Obeng/talkflo-app1/internal/server/models"
	"github.com/google/uuid"
)

const recordingColumns = `id, user_id, audio_handle, duration, folder_id, note_id_to_append, status,
	transcript, processed_text, error_message, note_id, audio_deleted, created_at, updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecording(row rowScanner) (*models.Recording, error) {
	r := &models.Recording{}
	err := row.Scan(&r.ID, &r.UserID, &r.AudioHandle, &r.Duration, &r.FolderID, &r.NoteIDToAppend, &r.Status,
		&r.Transcript, &r.ProcessedText, &r.ErrorMessage, &r.NoteID, &r.AudioDeleted, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (r *PostgresRepository) Create(ctx context.Context, rec *models.Recording) (*models.Recording, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	rec.Status = models.RecordingStatusProcessing

	query := `
		INSERT INTO recordings (id, user_id, audio_handle, duration, folder_id, note_id_to_append, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		rec.ID, rec.UserID, rec.AudioHandle, rec.Duration, rec.FolderID, rec.NoteIDToAppend, rec.Status,
	).Scan(&rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return rec, nil
}

func (r *PostgresRepository) Get(ctx context.Context, userID, id string) (*models.Recording, error) {
	query := `SELECT ` + recordingColumns + ` FROM recordings WHERE id = $1 AND user_id = $2`
	rec, err := scanRecording(r.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		return nil, notFoundOr(err)
	}
	return rec, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Recording, error) {
	query := `SELECT ` + recordingColumns + ` FROM recordings WHERE id = $1`
	rec, err := scanRecording(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFoundOr(err)
	}
	return rec, nil
}

// ListRecent returns the newest recordings of userID, at most limit of them.
func (r *PostgresRepository) ListRecent(ctx context.Context, userID string, limit int) ([]*models.Recording, error) {
	query := `SELECT ` + recordingColumns + ` FROM recordings WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`
	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to select recordings: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Recording, 0, limit)
	for rows.Next() {
		rec, err := scanRecording(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) SetTranscript(ctx context.Context, id, transcript string) error {
	return r.execOne(ctx,
		`UPDATE recordings SET transcript = $2, updated_at = now() WHERE id = $1`, id, transcript)
}

func (r *PostgresRepository) SetProcessedText(ctx context.Context, id, text string) error {
	return r.execOne(ctx,
		`UPDATE recordings SET processed_text = $2, updated_at = now() WHERE id = $1`, id, text)
}

func (r *PostgresRepository) Complete(ctx context.Context, id string, noteID *string) error {
	return r.execOne(ctx, `
		UPDATE recordings SET status = 'completed', note_id = $2, error_message = NULL, updated_at = now()
		WHERE id = $1 AND status = 'processing'
	`, id, noteID)
}

func (r *PostgresRepository) Fail(ctx context.Context, id, message string) error {
	return r.execOne(ctx, `
		UPDATE recordings SET status = 'failed', error_message = $2, updated_at = now()
		WHERE id = $1 AND status = 'processing'
	`, id, message)
}

func (r *PostgresRepository) FailProcessing(ctx context.Context, message string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		UPDATE recordings SET status = 'failed', error_message = $1, updated_at = now()
		WHERE status = 'processing'
		RETURNING id
	`, message)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *PostgresRepository) MarkAudioDeleted(ctx context.Context, id string) error {
	return r.execOne(ctx,
		`UPDATE recordings SET audio_deleted = true, updated_at = now() WHERE id = $1`, id)
}

func (r *PostgresRepository) execOne(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return common.ErrorNotFound
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}

func notFoundOr(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return common.ErrorNotFound
	}
	return fmt.Errorf("db error: %w", err)
}
