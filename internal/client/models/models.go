// Package models holds the JSON shapes the CLI exchanges with the Talkflo
// API.
package models

import "time"

type RecordingStatus string

const (
	RecordingProcessing RecordingStatus = "processing"
	RecordingCompleted  RecordingStatus = "completed"
	RecordingFailed     RecordingStatus = "failed"
)

// Terminal reports whether the recording will not change any more.
func (s RecordingStatus) Terminal() bool {
	return s == RecordingCompleted || s == RecordingFailed
}

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type Note struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	Transcript   *string   `json:"transcript,omitempty"`
	Duration     *float64  `json:"duration,omitempty"`
	FolderID     *string   `json:"folderId,omitempty"`
	Tags         []string  `json:"tags"`
	Status       string    `json:"status"`
	Published    bool      `json:"published"`
	PublishToken *string   `json:"publishToken,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// NoteInput creates a note by hand.
type NoteInput struct {
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	FolderID *string  `json:"folderId,omitempty"`
	Tags     []string `json:"tags,omitempty"`
}

// NotePatch is a partial update; nil fields are left as they are.
type NotePatch struct {
	Title       *string   `json:"title,omitempty"`
	Content     *string   `json:"content,omitempty"`
	FolderID    *string   `json:"folderId,omitempty"`
	ClearFolder bool      `json:"clearFolder,omitempty"`
	Tags        *[]string `json:"tags,omitempty"`
}

type Published struct {
	Published    bool   `json:"published"`
	PublishToken string `json:"publishToken"`
	URL          string `json:"url,omitempty"`
}

type Folder struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

type UploadTarget struct {
	UploadURL   string `json:"uploadUrl"`
	AudioHandle string `json:"audioHandle"`
}

// RecordingInput registers an uploaded blob for processing.
type RecordingInput struct {
	AudioHandle    string  `json:"audioHandle"`
	Duration       float64 `json:"duration"`
	FolderID       *string `json:"folderId,omitempty"`
	NoteIDToAppend *string `json:"noteIdToAppend,omitempty"`
}

type Recording struct {
	ID             string          `json:"id"`
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
}

// State is the part of a recording a watcher reacts to.
type State struct {
	Status       RecordingStatus
	ErrorMessage string
	NoteID       string
	HasText      bool
}

func (r *Recording) State() State {
	s := State{Status: r.Status, HasText: r.ProcessedText != nil}
	if r.ErrorMessage != nil {
		s.ErrorMessage = *r.ErrorMessage
	}
	if r.NoteID != nil {
		s.NoteID = *r.NoteID
	}
	return s
}

type Settings struct {
	InputLanguage  *string `json:"inputLanguage,omitempty"`
	OutputLanguage *string `json:"outputLanguage,omitempty"`
	WritingStyle   *string `json:"writingStyle,omitempty"`
	WritingLength  *string `json:"writingLength,omitempty"`
}

type Subscription struct {
	SubscriptionID string    `json:"subscriptionId"`
	Status         string    `json:"status"`
	EndsOn         time.Time `json:"endsOn"`
}

type SubscriptionView struct {
	Subscription *Subscription `json:"subscription"`
	Active       bool          `json:"active"`
}

type CheckoutLink struct {
	PaymentLink    string `json:"paymentLink"`
	SubscriptionID string `json:"subscriptionId"`
}

type Payment struct {
	PaymentID string    `json:"paymentId"`
	Amount    int64     `json:"amount"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}
