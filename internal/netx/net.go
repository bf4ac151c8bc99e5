// Package netx holds the raw HTTP transfers against presigned object-store
// URLs: the client's direct audio upload and the worker's audio fetch.
package netx

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/Chris-Obeng/talkflo-app1/internal/common"
)

// maxErrBody bounds how much of an error response body is kept.
const maxErrBody = 4 << 10

// UploadToPresignedURL PUTs body to a presigned URL. Any non-2xx response is
// returned as *common.UploadError carrying the HTTP status.
func UploadToPresignedURL(ctx context.Context, client *http.Client, url, contentType string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrBody))
		return &common.UploadError{Status: resp.StatusCode, Body: string(b)}
	}
	return nil
}

// Fetch GETs url and returns the full body, limited to maxBytes.
func Fetch(ctx context.Context, client *http.Client, url string, maxBytes int64) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch failed: %s", resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("fetch failed: body exceeds %d bytes", maxBytes)
	}
	return data, nil
}
