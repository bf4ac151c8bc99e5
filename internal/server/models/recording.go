package models

import "time"

// RecordingStatus tracks one audio-to-note conversion. Uploading exists on
// the client only; the server stores processing, completed and failed.
type RecordingStatus string

const (
	RecordingStatusUploading  RecordingStatus = "uploading"
	RecordingStatusProcessing RecordingStatus = "processing"
	RecordingStatusCompleted  RecordingStatus = "completed"
	RecordingStatusFailed     RecordingStatus = "failed"
)

// Terminal reports whether no further transition can happen.
func (s RecordingStatus) Terminal() bool {
	return s == RecordingStatusCompleted || s == RecordingStatusFailed
}

type Recording struct {
	ID             string          `json:"id"`
	UserID         string          `json:"-"`
	AudioHandle    string          `json:"audioHandle"`
	Duration       float64         `json:"duration"`
	FolderID       *string         `json:"folderId,omitempty"`
	NoteIDToAppend *string         `json:"noteIdToAppend,omitempty"`
	Status         RecordingStatus `json:"status"`
	Transcript     *string         `json:"transcript,omitempty"`
	ProcessedText  *string         `json:"processedText,omitempty"`
	ErrorMessage   *string         `json:"errorMessage,omitempty"`
	NoteID         *string         `json:"noteId,omitempty"`
	AudioDeleted   bool            `json:"audioDeleted"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// RecordingState is the observable slice of a recording pushed to watchers.
type RecordingState struct {
	ID            string          `json:"id"`
	Status        RecordingStatus `json:"status"`
	Transcript    *string         `json:"transcript,omitempty"`
	ProcessedText *string         `json:"processedText,omitempty"`
	ErrorMessage  *string         `json:"errorMessage,omitempty"`
	NoteID        *string         `json:"noteId,omitempty"`
}

// State projects r onto its observable fields.
func (r *Recording) State() RecordingState {
	return RecordingState{
		ID:            r.ID,
		Status:        r.Status,
		Transcript:    r.Transcript,
		ProcessedText: r.ProcessedText,
		ErrorMessage:  r.ErrorMessage,
		NoteID:        r.NoteID,
	}
}
