package httpapi

import (
	"io"
	"net/http"
	"time"

	"github.com/Chris-Obeng/talkflo-app1/internal/server/services"
	"github.com/gin-gonic/gin"
)

// keepAliveInterval spaces SSE comments so idle proxies keep the stream.
var keepAliveInterval = 15 * time.Second

type uploadRequest struct {
	Ext string `json:"ext"`
}

func (a *API) handleRequestUpload(c *gin.Context) {
	var payload uploadRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &payload) {
		return
	}
	target, err := a.Recordings.RequestUploadTarget(c.Request.Context(), currentUser(c), payload.Ext)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, target)
}

func (a *API) handleCreateRecording(c *gin.Context) {
	var payload services.RecordingInput
	if !bindJSON(c, &payload) {
		return
	}
	rec, err := a.Recordings.CreateRecording(c.Request.Context(), currentUser(c), payload)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, rec)
}

func (a *API) handleListRecordings(c *gin.Context) {
	list, err := a.Recordings.ListRecent(c.Request.Context(), currentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (a *API) handleGetRecording(c *gin.Context) {
	rec, err := a.Recordings.GetStatus(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (a *API) handleDiscardRecording(c *gin.Context) {
	if err := a.Recordings.Discard(c.Request.Context(), currentUser(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// handleRecordingEvents streams recording states as server-sent events. The
// first event is the current state; the stream ends after a terminal one.
func (a *API) handleRecordingEvents(c *gin.Context) {
	ctx := c.Request.Context()
	current, ch, stop, err := a.Recordings.Watch(ctx, currentUser(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	defer stop()

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.SSEvent("status", current)
	c.Writer.Flush()
	if ch == nil {
		return
	}

	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
			_, _ = io.WriteString(w, ": keep-alive\n\n")
			return true
		case state, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent("status", state)
			return !state.Status.Terminal()
		}
	})
}
