package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/tmaxmax/go-sse"

	"github.com/Chris-Obeng/talkflo-app1/internal/client/models"
)

const statusEvent = "status"

// StreamRecording follows the server-sent state stream of a recording and
// calls fn with every state until fn returns false or the server ends the
// stream. A clean end of stream returns nil; the caller decides whether the
// last state was terminal.
func (c *Client) StreamRecording(ctx context.Context, id string, fn func(*models.Recording) bool) error {
	resp, err := c.sendWith(ctx, c.stream, http.MethodGet, recordingPath(id)+"/events", nil, true)
	if err != nil {
		return err
	}
	defer drain(resp)

	for ev, err := range sse.Read(resp.Body, nil) {
		if err != nil {
			return fmt.Errorf("read recording events: %w", err)
		}
		if ev.Type != statusEvent {
			continue
		}
		var r models.Recording
		if err := json.Unmarshal([]byte(ev.Data), &r); err != nil {
			return fmt.Errorf("decode recording event: %w", err)
		}
		if !fn(&r) {
			return nil
		}
	}
	return nil
}
