package models

import "time"

// NoteStatus is the lifecycle state of a note as shown to the user.
type NoteStatus string

const (
	NoteStatusRecording    NoteStatus = "recording"
	NoteStatusTranscribing NoteStatus = "transcribing"
	NoteStatusProcessing   NoteStatus = "processing"
	NoteStatusCompleted    NoteStatus = "completed"
	NoteStatusGenerating   NoteStatus = "generating"
)

// Valid reports whether s is one of the known note states.
func (s NoteStatus) Valid() bool {
	switch s {
	case NoteStatusRecording, NoteStatusTranscribing, NoteStatusProcessing,
		NoteStatusCompleted, NoteStatusGenerating:
		return true
	}
	return false
}

type Note struct {
	ID           string     `json:"id"`
	UserID       string     `json:"-"`
	Title        string     `json:"title"`
	Content      string     `json:"content"`
	Transcript   *string    `json:"transcript,omitempty"`
	AudioHandle  *string    `json:"audioHandle,omitempty"`
	Duration     *float64   `json:"duration,omitempty"`
	FolderID     *string    `json:"folderId,omitempty"`
	Tags         Tags       `json:"tags"`
	Status       NoteStatus `json:"status"`
	Published    bool       `json:"published"`
	PublishToken *string    `json:"publishToken,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// NotePatch carries a partial update; nil fields are left untouched.
// ClearFolder moves the note out of its folder.
type NotePatch struct {
	Title       *string `json:"title,omitempty"`
	Content     *string `json:"content,omitempty"`
	FolderID    *string `json:"folderId,omitempty"`
	ClearFolder bool    `json:"clearFolder,omitempty"`
	Tags        *Tags   `json:"tags,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p NotePatch) Empty() bool {
	return p.Title == nil && p.Content == nil && p.FolderID == nil && !p.ClearFolder && p.Tags == nil
}

// PublishedNote is the public projection served for a share token.
type PublishedNote struct {
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}
