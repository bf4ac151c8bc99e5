// Package folders stores user-defined note folders.
package folders

import (
	"context"

	"github.com/Chris-Obeng/talkflo-app1/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, folder *models.Folder) (*models.Folder, error)
	Get(ctx context.Context, userID, id string) (*models.Folder, error)
	List(ctx context.Context, userID string) ([]*models.Folder, error)
	Rename(ctx context.Context, userID, id, name string) (*models.Folder, error)
	Delete(ctx context.Context, userID, id string) error
}
