package folders

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

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, folder *models.Folder) (*models.Folder, error) {
	if folder.ID == "" {
		folder.ID = uuid.NewString()
	}
	query := `
		INSERT INTO folders (id, user_id, name)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`
	if err := r.db.QueryRowContext(ctx, query, folder.ID, folder.UserID, folder.Name).Scan(&folder.CreatedAt); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return folder, nil
}

func (r *PostgresRepository) Get(ctx context.Context, userID, id string) (*models.Folder, error) {
	query := `SELECT id, user_id, name, created_at FROM folders WHERE id = $1 AND user_id = $2`
	f := &models.Folder{}
	if err := r.db.QueryRowContext(ctx, query, id, userID).Scan(&f.ID, &f.UserID, &f.Name, &f.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return f, nil
}

func (r *PostgresRepository) List(ctx context.Context, userID string) ([]*models.Folder, error) {
	query := `SELECT id, user_id, name, created_at FROM folders WHERE user_id = $1 ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select folders: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Folder, 0)
	for rows.Next() {
		var f models.Folder
		if err := rows.Scan(&f.ID, &f.UserID, &f.Name, &f.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, &f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) Rename(ctx context.Context, userID, id, name string) (*models.Folder, error) {
	query := `
		UPDATE folders SET name = $3
		WHERE id = $1 AND user_id = $2
		RETURNING id, user_id, name, created_at
	`
	f := &models.Folder{}
	if err := r.db.QueryRowContext(ctx, query, id, userID, name).Scan(&f.ID, &f.UserID, &f.Name, &f.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return f, nil
}

// Delete removes the folder row only; notes are detached by the caller and
// by the ON DELETE SET NULL foreign key.
func (r *PostgresRepository) Delete(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM folders WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
