// Package notes provides the PostgreSQL-backed note store. Every method that
// addresses an existing note is scoped by owner; rows owned by someone else
// are reported as common.ErrorNotFound.
package notes

import (
	"context"

	"github.com/Chris-Obeng/talkflo-app1/internal/server/models"
)

// ListFilter narrows List. A nil FolderID lists all folders; Search uses the
// content full-text index.
type ListFilter struct {
	FolderID *string
	Search   string
}

type Repository interface {
	Create(ctx context.Context, note *models.Note) (*models.Note, error)
	Get(ctx context.Context, userID, id string) (*models.Note, error)
	List(ctx context.Context, userID string, f ListFilter) ([]*models.Note, error)
	Update(ctx context.Context, userID, id string, patch models.NotePatch) (*models.Note, error)
	Delete(ctx context.Context, userID, id string) error
	SetStatus(ctx context.Context, userID, id string, status models.NoteStatus) error
	ReplaceContent(ctx context.Context, userID, id, content string) error
	Append(ctx context.Context, userID, id, content, transcript string) error
	ClearAudio(ctx context.Context, userID, id string) error
	UnfileFolder(ctx context.Context, userID, folderID string) (int64, error)
	SetPublished(ctx context.Context, userID, id string, published bool, candidateToken string) (string, error)
	GetPublished(ctx context.Context, token string) (*models.PublishedNote, error)
}
