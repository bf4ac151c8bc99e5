package services

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Chris-Obeng/talkflo-app1/internal/common"
	"github.com/Chris-Obeng/talkflo-app1/internal/dbx"
	"github.com/Chris-Obeng/talkflo-app1/internal/logging"
	"github.com/Chris-Obeng/talkflo-app1/internal/server/models"
	"github.com/Chris-Obeng/talkflo-app1/internal/server/repositories/notes"
	"github.com/Chris-Obeng/talkflo-app1/internal/server/repositories/repomanager"
	"github.com/Chris-Obeng/talkflo-app1/internal/shared"
	"github.com/google/uuid"
	"github.com/jung-kurt/gofpdf"
)

const (
	publishTokenLen = 10
	untitledNote    = "Untitled Note"
)

// makePublishToken is swapped in tests.
var makePublishToken = func() (string, error) {
	return shared.MakeRandToken(shared.TokenAlphabet, publishTokenLen)
}

// NoteInput is the payload of a manual note creation.
type NoteInput struct {
	Title      string      `json:"title"`
	Content    string      `json:"content"`
	FolderID   *string     `json:"folderId,omitempty"`
	Transcript *string     `json:"transcript,omitempty"`
	Tags       models.Tags `json:"tags,omitempty"`
}

type NoteService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	log         logging.Logger
}

func NewNoteService(db *sql.DB, m repomanager.RepositoryManager, log logging.Logger) *NoteService {
	return &NoteService{db: db, repomanager: m, log: log}
}

// List returns the owner's notes, newest first. A non-empty search switches
// to full-text matching over content and ignores folderID.
func (s *NoteService) List(ctx context.Context, userID string, folderID *string, search string) ([]*models.Note, error) {
	f := notes.ListFilter{Search: strings.TrimSpace(search)}
	if f.Search == "" && folderID != nil {
		if err := checkID(*folderID); err != nil {
			return []*models.Note{}, nil
		}
		f.FolderID = folderID
	}
	list, err := s.repomanager.Notes(s.db).List(ctx, userID, f)
	if err != nil {
		return nil, fmt.Errorf("error listing notes: %w", err)
	}
	return list, nil
}

func (s *NoteService) Get(ctx context.Context, userID, id string) (*models.Note, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	return s.repomanager.Notes(s.db).Get(ctx, userID, id)
}

// Create stores a note typed in by the user. Such notes are born completed.
func (s *NoteService) Create(ctx context.Context, userID string, in NoteInput) (*models.Note, error) {
	if in.FolderID != nil {
		if err := s.checkFolder(ctx, s.db, userID, *in.FolderID); err != nil {
			return nil, err
		}
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = untitledNote
	}
	n, err := s.repomanager.Notes(s.db).Create(ctx, &models.Note{
		UserID:     userID,
		Title:      title,
		Content:    in.Content,
		Transcript: in.Transcript,
		FolderID:   in.FolderID,
		Tags:       in.Tags.Normalize(),
		Status:     models.NoteStatusCompleted,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating note: %w", err)
	}
	return n, nil
}

// Update applies a partial patch. Moving a note into a folder requires the
// folder to belong to the same owner.
func (s *NoteService) Update(ctx context.Context, userID, id string, patch models.NotePatch) (*models.Note, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	if patch.FolderID != nil && patch.ClearFolder {
		return nil, fmt.Errorf("%w: folderId and clearFolder are exclusive", common.ErrInvalidArgument)
	}
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return nil, fmt.Errorf("%w: title must not be blank", common.ErrInvalidArgument)
	}
	if patch.Tags != nil {
		t := patch.Tags.Normalize()
		patch.Tags = &t
	}

	var out *models.Note
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if patch.FolderID != nil {
			if err := s.checkFolder(ctx, tx, userID, *patch.FolderID); err != nil {
				return err
			}
		}
		var err error
		out, err = s.repomanager.Notes(tx).Update(ctx, userID, id, patch)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *NoteService) Delete(ctx context.Context, userID, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	return s.repomanager.Notes(s.db).Delete(ctx, userID, id)
}

// DeleteBatch removes every listed note the caller owns and silently skips
// the rest. It returns how many notes were removed.
func (s *NoteService) DeleteBatch(ctx context.Context, userID string, ids []string) (int, error) {
	deleted := 0
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Notes(tx)
		for _, id := range ids {
			if checkID(id) != nil {
				continue
			}
			err := repo.Delete(ctx, userID, id)
			if errors.Is(err, common.ErrorNotFound) {
				continue
			}
			if err != nil {
				return fmt.Errorf("error deleting note %s: %w", id, err)
			}
			deleted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	s.log.Debug(ctx, "batch delete", "requested", len(ids), "deleted", deleted)
	return deleted, nil
}

// SetPublished toggles public visibility and returns the share token. The
// token is minted on first publish and survives later unpublishing.
func (s *NoteService) SetPublished(ctx context.Context, userID, id string, published bool) (string, error) {
	if err := checkID(id); err != nil {
		return "", err
	}
	candidate := ""
	if published {
		var err error
		if candidate, err = makePublishToken(); err != nil {
			return "", common.ErrorInternal
		}
	}
	token, err := s.repomanager.Notes(s.db).SetPublished(ctx, userID, id, published, candidate)
	if err != nil {
		return "", err
	}
	s.log.Info(ctx, "note visibility changed", "note_id", id, "published", published)
	return token, nil
}

// GetPublished serves the public projection of a shared note. Unpublished
// and unknown tokens are both reported as not found.
func (s *NoteService) GetPublished(ctx context.Context, token string) (*models.PublishedNote, error) {
	if token == "" {
		return nil, common.ErrorNotFound
	}
	return s.repomanager.Notes(s.db).GetPublished(ctx, token)
}

// ExportPDF renders the note's title and content on A4 pages.
func (s *NoteService) ExportPDF(ctx context.Context, userID, id string) ([]byte, error) {
	n, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(n.Title, true)
	pdf.SetAuthor("Talkflo", false)
	pdf.SetCreationDate(n.CreatedAt)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.MultiCell(0, 9, tr(n.Title), "", "L", false)
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(120, 120, 120)
	pdf.Cell(0, 5, n.CreatedAt.Format("January 2, 2006 15:04"))
	pdf.Ln(8)

	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "", 11)
	for _, para := range strings.Split(n.Content, "\n\n") {
		pdf.MultiCell(0, 6, tr(strings.TrimSpace(para)), "", "L", false)
		pdf.Ln(3)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *NoteService) checkFolder(ctx context.Context, db dbx.DBTX, userID, folderID string) error {
	if err := checkID(folderID); err != nil {
		return fmt.Errorf("folder %w", err)
	}
	if _, err := s.repomanager.Folders(db).Get(ctx, userID, folderID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return fmt.Errorf("folder %w", err)
		}
		return err
	}
	return nil
}

// checkID rejects ids that cannot name any row, so they surface as not found
// instead of a driver error.
func checkID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return common.ErrorNotFound
	}
	return nil
}
