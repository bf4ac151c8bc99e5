package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/Chris-Obeng/talkflo-app1/internal/common"
)

// APIError is a non-2xx answer from the server. It unwraps to the common
// sentinel matching the status, so callers can use errors.Is.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d", e.Status)
	}
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusNotFound:
		return common.ErrorNotFound
	case http.StatusUnauthorized:
		return common.ErrorNotAuthenticated
	case http.StatusBadRequest, http.StatusRequestEntityTooLarge:
		return common.ErrInvalidArgument
	case http.StatusConflict:
		if strings.Contains(e.Message, common.ErrNoTranscript.Error()) {
			return common.ErrNoTranscript
		}
		return common.ErrAlreadyExists
	case http.StatusBadGateway:
		if strings.Contains(e.Message, "Transcription") {
			return common.ErrTranscription
		}
		return common.ErrEnhancement
	}
	return common.ErrorInternal
}

func readError(resp *http.Response) error {
	var body struct {
		Error string `json:"error"`
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if json.Unmarshal(data, &body) != nil {
		body.Error = strings.TrimSpace(string(data))
	}
	return &APIError{Status: resp.StatusCode, Message: body.Error}
}
