// Package common defines shared constants and sentinel errors used across
// client and server layers of Talkflo. Callers should use errors.Is to
// match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound    = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal         = errors.New("internal error")
	ErrorUnauthorized     = errors.New("unauthorized")
	ErrorNotAuthenticated = errors.New("not authenticated")
	ErrInvalidArgument    = errors.New("invalid argument")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")

	// Recording pipeline errors.
	ErrPermissionDenied = errors.New("microphone permission denied")
	ErrUploadFailed     = errors.New("upload failed")
	ErrTranscription    = errors.New("transcription error")
	ErrEnhancement      = errors.New("enhancement error")

	// Note actions.
	ErrNoTranscript = errors.New("note has no transcript")

	// Payments.
	ErrWebhookValidation = errors.New("webhook validation failed")
)

// UploadError reports a rejected direct upload. It unwraps to ErrUploadFailed.
type UploadError struct {
	Status int
	Body   string
}

func (e *UploadError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("upload failed: %d", e.Status)
	}
	return fmt.Sprintf("upload failed: %d; body: %s", e.Status, e.Body)
}

func (e *UploadError) Unwrap() error { return ErrUploadFailed }

// ProviderError wraps a failure returned by the speech-to-text or
// text-generation provider. Kind is ErrTranscription or ErrEnhancement.
type ProviderError struct {
	Kind    error
	Status  int
	Message string
}

func (e *ProviderError) Error() string {
	prefix := "OpenAI Error"
	if errors.Is(e.Kind, ErrTranscription) {
		prefix = "OpenAI Transcription Error"
	}
	if e.Status == 0 {
		return fmt.Sprintf("%s: %s", prefix, e.Message)
	}
	return fmt.Sprintf("%s: %d %s", prefix, e.Status, e.Message)
}

func (e *ProviderError) Unwrap() error { return e.Kind }
