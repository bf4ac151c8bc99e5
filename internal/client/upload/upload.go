// Package upload moves a finished recording from the CLI straight into
// object storage through a presigned URL.
package upload

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Chris-Obeng/talkflo-app1/internal/client/models"
	"github.com/Chris-Obeng/talkflo-app1/internal/netx"
)

const (
	wavExt         = "wav"
	wavContentType = "audio/wav"
)

// TargetRequester is the part of the API client that presigns uploads.
type TargetRequester interface {
	RequestUploadTarget(ctx context.Context, ext string) (*models.UploadTarget, error)
}

type Uploader struct {
	api  TargetRequester
	http *http.Client
}

func New(api TargetRequester, httpClient *http.Client) *Uploader {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Uploader{api: api, http: httpClient}
}

// RequestUploadTarget asks the server for a fresh WAV upload slot.
func (u *Uploader) RequestUploadTarget(ctx context.Context) (*models.UploadTarget, error) {
	t, err := u.api.RequestUploadTarget(ctx, wavExt)
	if err != nil {
		return nil, fmt.Errorf("request upload target: %w", err)
	}
	return t, nil
}

// Upload PUTs blob to the target and returns its audio handle. A rejected
// upload is a *common.UploadError; it is not retried.
func (u *Uploader) Upload(ctx context.Context, blob []byte, target *models.UploadTarget) (string, error) {
	if err := netx.UploadToPresignedURL(ctx, u.http, target.UploadURL, wavContentType, blob); err != nil {
		return "", fmt.Errorf("upload audio: %w", err)
	}
	return target.AudioHandle, nil
}
