package notes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Chris-Obeng/talkflo-app1/internal/common"
	"github.com/Chris-Obeng/talkflo-app1/internal/dbx"
	"github.com/Chris-Obeng/talkflo-app1/internal/server/models"
	"github.com/google/uuid"
)

const noteColumns = `id, user_id, title, content, transcript, audio_handle, duration, folder_id,
	tags, status, published, publish_token, created_at, updated_at`

// PostgresRepository implements note storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNote(row rowScanner) (*models.Note, error) {
	n := &models.Note{}
	err := row.Scan(&n.ID, &n.UserID, &n.Title, &n.Content, &n.Transcript, &n.AudioHandle, &n.Duration,
		&n.FolderID, &n.Tags, &n.Status, &n.Published, &n.PublishToken, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return n, nil
}

func notFoundOr(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return common.ErrorNotFound
	}
	return fmt.Errorf("db error: %w", err)
}

// Create inserts note, assigning an id if it has none.
func (r *PostgresRepository) Create(ctx context.Context, note *models.Note) (*models.Note, error) {
	if note.ID == "" {
		note.ID = uuid.NewString()
	}
	if note.Status == "" {
		note.Status = models.NoteStatusCompleted
	}
	if note.Tags == nil {
		note.Tags = models.Tags{}
	}

	query := `
		INSERT INTO notes (id, user_id, title, content, transcript, audio_handle, duration, folder_id, tags, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		note.ID, note.UserID, note.Title, note.Content, note.Transcript, note.AudioHandle, note.Duration,
		note.FolderID, note.Tags, note.Status,
	).Scan(&note.CreatedAt, &note.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return note, nil
}

func (r *PostgresRepository) Get(ctx context.Context, userID, id string) (*models.Note, error) {
	query := `SELECT ` + noteColumns + ` FROM notes WHERE id = $1 AND user_id = $2`
	n, err := scanNote(r.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		return nil, notFoundOr(err)
	}
	return n, nil
}

// List returns the owner's notes, newest first. With a search term the
// results are ordered by text rank instead.
func (r *PostgresRepository) List(ctx context.Context, userID string, f ListFilter) ([]*models.Note, error) {
	where := []string{"user_id = $1"}
	args := []any{userID}
	order := "created_at DESC"

	if f.FolderID != nil {
		args = append(args, *f.FolderID)
		where = append(where, fmt.Sprintf("folder_id = $%d", len(args)))
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		args = append(args, s)
		n := len(args)
		where = append(where, fmt.Sprintf("to_tsvector('simple', content) @@ plainto_tsquery('simple', $%d)", n))
		order = fmt.Sprintf("ts_rank(to_tsvector('simple', content), plainto_tsquery('simple', $%d)) DESC, created_at DESC", n)
	}

	query := `SELECT ` + noteColumns + ` FROM notes WHERE ` + strings.Join(where, " AND ") + ` ORDER BY ` + order
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select notes: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Note, 0)
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Update applies the non-nil fields of patch and returns the updated note.
func (r *PostgresRepository) Update(ctx context.Context, userID, id string, patch models.NotePatch) (*models.Note, error) {
	args := []any{id, userID}
	var sets []string
	set := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if patch.Title != nil {
		set("title", *patch.Title)
	}
	if patch.Content != nil {
		set("content", *patch.Content)
	}
	switch {
	case patch.ClearFolder:
		sets = append(sets, "folder_id = NULL")
	case patch.FolderID != nil:
		set("folder_id", *patch.FolderID)
	}
	if patch.Tags != nil {
		set("tags", patch.Tags.Normalize())
	}
	sets = append(sets, "updated_at = now()")

	query := `UPDATE notes SET ` + strings.Join(sets, ", ") +
		` WHERE id = $1 AND user_id = $2 RETURNING ` + noteColumns
	n, err := scanNote(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, notFoundOr(err)
	}
	return n, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, userID, id string) error {
	return r.execOne(ctx, `DELETE FROM notes WHERE id = $1 AND user_id = $2`, id, userID)
}

func (r *PostgresRepository) SetStatus(ctx context.Context, userID, id string, status models.NoteStatus) error {
	return r.execOne(ctx,
		`UPDATE notes SET status = $3, updated_at = now() WHERE id = $1 AND user_id = $2`,
		id, userID, status)
}

// ReplaceContent stores regenerated content and returns the note to completed.
func (r *PostgresRepository) ReplaceContent(ctx context.Context, userID, id, content string) error {
	return r.execOne(ctx,
		`UPDATE notes SET content = $3, status = 'completed', updated_at = now() WHERE id = $1 AND user_id = $2`,
		id, userID, content)
}

// Append joins content and transcript onto the note, separated by a blank line.
func (r *PostgresRepository) Append(ctx context.Context, userID, id, content, transcript string) error {
	return r.execOne(ctx, `
		UPDATE notes SET
			content = content || E'\n\n' || $3,
			transcript = COALESCE(transcript, '') || E'\n\n' || $4,
			updated_at = now()
		WHERE id = $1 AND user_id = $2`,
		id, userID, content, transcript)
}

func (r *PostgresRepository) ClearAudio(ctx context.Context, userID, id string) error {
	return r.execOne(ctx,
		`UPDATE notes SET audio_handle = NULL, duration = NULL, updated_at = now() WHERE id = $1 AND user_id = $2`,
		id, userID)
}

// UnfileFolder detaches every note of userID from folderID.
func (r *PostgresRepository) UnfileFolder(ctx context.Context, userID, folderID string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE notes SET folder_id = NULL, updated_at = now() WHERE folder_id = $1 AND user_id = $2`,
		folderID, userID)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return res.RowsAffected()
}

// SetPublished toggles the published flag. The stored token is kept when one
// exists; otherwise candidateToken is stored, but only when publishing.
// Returns the token now on the note ("" if none).
func (r *PostgresRepository) SetPublished(ctx context.Context, userID, id string, published bool, candidateToken string) (string, error) {
	query := `
		UPDATE notes SET
			published = $3,
			publish_token = COALESCE(publish_token, CASE WHEN $3 THEN $4 END),
			updated_at = now()
		WHERE id = $1 AND user_id = $2
		RETURNING publish_token
	`
	var token sql.NullString
	if err := r.db.QueryRowContext(ctx, query, id, userID, published, candidateToken).Scan(&token); err != nil {
		return "", notFoundOr(err)
	}
	return token.String, nil
}

// GetPublished resolves a share token. Unpublished notes are not found.
func (r *PostgresRepository) GetPublished(ctx context.Context, token string) (*models.PublishedNote, error) {
	query := `SELECT title, content, created_at FROM notes WHERE publish_token = $1 AND published`
	p := &models.PublishedNote{}
	if err := r.db.QueryRowContext(ctx, query, token).Scan(&p.Title, &p.Content, &p.CreatedAt); err != nil {
		return nil, notFoundOr(err)
	}
	return p, nil
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
