package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/Chris-Obeng/talkflo-app1/internal/client/models"
)

// RequestUploadTarget asks for a presigned PUT for a blob with extension ext.
func (c *Client) RequestUploadTarget(ctx context.Context, ext string) (*models.UploadTarget, error) {
	var t models.UploadTarget
	if err := c.do(ctx, http.MethodPost, "/api/uploads", map[string]string{"ext": ext}, &t, true); err != nil {
		return nil, err
	}
	return &t, nil
}

// CreateRecording registers an uploaded blob. The server answers before
// processing starts, so the result is always in the processing state.
func (c *Client) CreateRecording(ctx context.Context, in models.RecordingInput) (*models.Recording, error) {
	var r models.Recording
	if err := c.do(ctx, http.MethodPost, "/api/recordings", in, &r, true); err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *Client) GetRecording(ctx context.Context, id string) (*models.Recording, error) {
	var r models.Recording
	if err := c.do(ctx, http.MethodGet, recordingPath(id), nil, &r, true); err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *Client) ListRecordings(ctx context.Context) ([]models.Recording, error) {
	var list []models.Recording
	if err := c.do(ctx, http.MethodGet, "/api/recordings", nil, &list, true); err != nil {
		return nil, err
	}
	return list, nil
}

// DiscardRecording deletes the retained audio of a failed recording.
func (c *Client) DiscardRecording(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, recordingPath(id)+"/discard", nil, nil, true)
}

func recordingPath(id string) string {
	return "/api/recordings/" + url.PathEscape(id)
}
