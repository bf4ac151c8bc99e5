package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/Chris-Obeng/talkflo-app1/internal/common"
	"github.com/Chris-Obeng/talkflo-app1/internal/dbx"
	"github.com/Chris-Obeng/talkflo-app1/internal/logging"
	"github.com/Chris-Obeng/talkflo-app1/internal/server/models"
	"github.com/Chris-Obeng/talkflo-app1/internal/server/repositories/repomanager"
)

const maxFolderNameRunes = 100

type FolderService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	log         logging.Logger
}

func NewFolderService(db *sql.DB, m repomanager.RepositoryManager, log logging.Logger) *FolderService {
	return &FolderService{db: db, repomanager: m, log: log}
}

func (s *FolderService) List(ctx context.Context, userID string) ([]*models.Folder, error) {
	return s.repomanager.Folders(s.db).List(ctx, userID)
}

func (s *FolderService) Create(ctx context.Context, userID, name string) (*models.Folder, error) {
	name, err := folderName(name)
	if err != nil {
		return nil, err
	}
	f, err := s.repomanager.Folders(s.db).Create(ctx, &models.Folder{UserID: userID, Name: name})
	if err != nil {
		return nil, fmt.Errorf("error creating folder: %w", err)
	}
	return f, nil
}

func (s *FolderService) Rename(ctx context.Context, userID, id, name string) (*models.Folder, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	name, err := folderName(name)
	if err != nil {
		return nil, err
	}
	return s.repomanager.Folders(s.db).Rename(ctx, userID, id, name)
}

// Delete removes the folder. Its notes are kept and become unfiled.
func (s *FolderService) Delete(ctx context.Context, userID, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		n, err := s.repomanager.Notes(tx).UnfileFolder(ctx, userID, id)
		if err != nil {
			return fmt.Errorf("error unfiling notes: %w", err)
		}
		if err := s.repomanager.Folders(tx).Delete(ctx, userID, id); err != nil {
			return err
		}
		s.log.Info(ctx, "folder deleted", "folder_id", id, "unfiled_notes", n)
		return nil
	})
}

func folderName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: folder name must not be blank", common.ErrInvalidArgument)
	}
	if utf8.RuneCountInString(name) > maxFolderNameRunes {
		return "", fmt.Errorf("%w: folder name is longer than %d characters", common.ErrInvalidArgument, maxFolderNameRunes)
	}
	return name, nil
}
