package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/Chris-Obeng/talkflo-app1/internal/client/models"
)

func (c *Client) ListFolders(ctx context.Context) ([]models.Folder, error) {
	var list []models.Folder
	if err := c.do(ctx, http.MethodGet, "/api/folders", nil, &list, true); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *Client) CreateFolder(ctx context.Context, name string) (*models.Folder, error) {
	var f models.Folder
	if err := c.do(ctx, http.MethodPost, "/api/folders", map[string]string{"name": name}, &f, true); err != nil {
		return nil, err
	}
	return &f, nil
}

func (c *Client) RenameFolder(ctx context.Context, id, name string) (*models.Folder, error) {
	var f models.Folder
	if err := c.do(ctx, http.MethodPatch, "/api/folders/"+url.PathEscape(id), map[string]string{"name": name}, &f, true); err != nil {
		return nil, err
	}
	return &f, nil
}

// DeleteFolder removes the folder; its notes become unfiled.
func (c *Client) DeleteFolder(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/folders/"+url.PathEscape(id), nil, nil, true)
}
