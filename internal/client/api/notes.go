package api

import (
	"context"
	"io"
	"net/http"
	"net/url"

	"github.com/Chris-Obeng/talkflo-app1/internal/client/models"
)

// ListNotes filters by folder and search text; empty values are ignored.
func (c *Client) ListNotes(ctx context.Context, folderID, search string) ([]models.Note, error) {
	q := url.Values{}
	if folderID != "" {
		q.Set("folderId", folderID)
	}
	if search != "" {
		q.Set("search", search)
	}
	p := "/api/notes"
	if len(q) > 0 {
		p += "?" + q.Encode()
	}
	var list []models.Note
	if err := c.do(ctx, http.MethodGet, p, nil, &list, true); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *Client) GetNote(ctx context.Context, id string) (*models.Note, error) {
	return c.note(ctx, http.MethodGet, notePath(id), nil)
}

func (c *Client) CreateNote(ctx context.Context, in models.NoteInput) (*models.Note, error) {
	return c.note(ctx, http.MethodPost, "/api/notes", in)
}

func (c *Client) UpdateNote(ctx context.Context, id string, patch models.NotePatch) (*models.Note, error) {
	return c.note(ctx, http.MethodPatch, notePath(id), patch)
}

func (c *Client) DeleteNote(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, notePath(id), nil, nil, true)
}

// DeleteNotes removes several notes at once and reports how many went.
func (c *Client) DeleteNotes(ctx context.Context, ids []string) (int, error) {
	var out struct {
		Deleted int `json:"deleted"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/notes/batch-delete", map[string][]string{"ids": ids}, &out, true); err != nil {
		return 0, err
	}
	return out.Deleted, nil
}

func (c *Client) SetPublished(ctx context.Context, id string, published bool) (*models.Published, error) {
	var out models.Published
	if err := c.do(ctx, http.MethodPut, notePath(id)+"/publish", map[string]bool{"published": published}, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Regenerate(ctx context.Context, id, style string) (*models.Note, error) {
	return c.note(ctx, http.MethodPost, notePath(id)+"/regenerate", map[string]string{"style": style})
}

func (c *Client) Rewrite(ctx context.Context, id, instructions string) (*models.Note, error) {
	return c.note(ctx, http.MethodPost, notePath(id)+"/rewrite", map[string]string{"instructions": instructions})
}

func (c *Client) Styles(ctx context.Context) ([]string, error) {
	var out struct {
		Styles []string `json:"styles"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/styles", nil, &out, true); err != nil {
		return nil, err
	}
	return out.Styles, nil
}

// ExportPDF returns the rendered document.
func (c *Client) ExportPDF(ctx context.Context, id string) ([]byte, error) {
	resp, err := c.send(ctx, http.MethodGet, notePath(id)+"/export.pdf", nil, true)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

func (c *Client) note(ctx context.Context, method, p string, in any) (*models.Note, error) {
	var n models.Note
	if err := c.do(ctx, method, p, in, &n, true); err != nil {
		return nil, err
	}
	return &n, nil
}

func notePath(id string) string {
	return "/api/notes/" + url.PathEscape(id)
}
