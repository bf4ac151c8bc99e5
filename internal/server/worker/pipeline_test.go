package worker

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Chris-Obeng/talkflo-app1/internal/common"
	"github.com/Chris-Obeng/talkflo-app1/internal/logging"
	"github.com/Chris-Obeng/talkflo-app1/internal/server/models"
	"github.com/Chris-Obeng/talkflo-app1/internal/server/prompts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	p      *Pipeline
	recs   *fakeRecordings
	notes  *fakeNotes
	blobs  *fakeBlobs
	llm    *fakeLLM
	events *recordedEvents
}

func newHarness(t *testing.T, rec *models.Recording, audioStatus int) *harness {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(audioStatus)
		_, _ = w.Write([]byte("AUDIO"))
	}))
	t.Cleanup(srv.Close)

	h := &harness{
		recs:   &fakeRecordings{byID: map[string]*models.Recording{rec.ID: rec}},
		notes:  &fakeNotes{},
		blobs:  &fakeBlobs{url: srv.URL + "/signed"},
		llm:    &fakeLLM{transcript: "um so buy milk"},
		events: &recordedEvents{},
	}
	h.p = NewPipeline(nil, &fakeRepoManager{recs: h.recs, notes: h.notes}, h.blobs, h.llm, h.events, logging.Nop())
	return h
}

func processingRecording() *models.Recording {
	return &models.Recording{
		ID:          "r1",
		UserID:      "u1",
		AudioHandle: "users/u1/recordings/abc.wav",
		Duration:    42.5,
		Status:      models.RecordingStatusProcessing,
	}
}

func TestProcess_CreatesNote(t *testing.T) {
	folder := "f1"
	rec := processingRecording()
	rec.FolderID = &folder
	h := newHarness(t, rec, http.StatusOK)
	h.llm.answers = []string{"Buy milk.", "Groceries"}

	require.NoError(t, h.p.Process(context.Background(), "r1"))

	assert.Equal(t, []byte("AUDIO"), h.llm.gotAudio)
	assert.Equal(t, "audio.wav", h.llm.gotFilename)

	require.Len(t, h.llm.calls, 2)
	assert.Equal(t, prompts.EnhanceSystemPrompt, h.llm.calls[0].system)
	assert.Equal(t, "um so buy milk", h.llm.calls[0].user)
	assert.Equal(t, prompts.TitleSystemPrompt, h.llm.calls[1].system)
	assert.Equal(t, "Buy milk.", h.llm.calls[1].user)

	require.Len(t, h.notes.created, 1)
	n := h.notes.created[0]
	assert.Equal(t, "u1", n.UserID)
	assert.Equal(t, "Groceries", n.Title)
	assert.Equal(t, "Buy milk.", n.Content)
	assert.Equal(t, "um so buy milk", *n.Transcript)
	assert.Equal(t, "users/u1/recordings/abc.wav", *n.AudioHandle)
	assert.Equal(t, 42.5, *n.Duration)
	assert.Equal(t, &folder, n.FolderID)
	assert.Equal(t, models.NoteStatusCompleted, n.Status)

	assert.Equal(t, []string{"users/u1/recordings/abc.wav"}, h.blobs.deleted)
	assert.Equal(t, []string{"note-new"}, h.notes.cleared)

	got := h.recs.byID["r1"]
	assert.Equal(t, models.RecordingStatusCompleted, got.Status)
	assert.Equal(t, "note-new", *got.NoteID)
	assert.Equal(t, "Buy milk.", *got.ProcessedText)
	assert.True(t, got.AudioDeleted)

	require.Len(t, h.events.states, 3)
	assert.Equal(t, "um so buy milk", *h.events.states[0].Transcript)
	assert.Nil(t, h.events.states[0].ProcessedText)
	assert.Equal(t, models.RecordingStatusCompleted, h.events.states[2].Status)
}

func TestProcess_AppendsToExistingNote(t *testing.T) {
	target := "n-target"
	rec := processingRecording()
	rec.NoteIDToAppend = &target
	h := newHarness(t, rec, http.StatusOK)
	h.llm.answers = []string{"Also eggs."}

	require.NoError(t, h.p.Process(context.Background(), "r1"))

	assert.Empty(t, h.notes.created)
	require.Len(t, h.notes.appended, 1)
	assert.Equal(t, appendCall{"u1", "n-target", "Also eggs.", "um so buy milk"}, h.notes.appended[0])
	assert.Len(t, h.llm.calls, 1, "no title generated when appending")
	assert.Equal(t, []string{"n-target"}, h.notes.cleared)
	assert.Equal(t, "n-target", *h.recs.byID["r1"].NoteID)
}

func TestProcess_TranscriptionFailureRetainsAudio(t *testing.T) {
	h := newHarness(t, processingRecording(), http.StatusOK)
	h.llm.transcribeErr = &common.ProviderError{Kind: common.ErrTranscription, Status: 500, Message: "boom"}

	err := h.p.Process(context.Background(), "r1")
	assert.ErrorIs(t, err, common.ErrTranscription)

	got := h.recs.byID["r1"]
	assert.Equal(t, models.RecordingStatusFailed, got.Status)
	assert.Equal(t, "OpenAI Transcription Error: 500 boom", *got.ErrorMessage)
	assert.Nil(t, got.Transcript)
	assert.Empty(t, h.blobs.deleted)
	assert.False(t, got.AudioDeleted)
	assert.Empty(t, h.notes.created)

	last := h.events.states[len(h.events.states)-1]
	assert.Equal(t, models.RecordingStatusFailed, last.Status)
}

func TestProcess_EmptyEnhancementFails(t *testing.T) {
	h := newHarness(t, processingRecording(), http.StatusOK)
	h.llm.errs = []error{&common.ProviderError{Kind: common.ErrEnhancement, Message: "empty completion"}}

	err := h.p.Process(context.Background(), "r1")
	assert.ErrorIs(t, err, common.ErrEnhancement)

	got := h.recs.byID["r1"]
	assert.Equal(t, models.RecordingStatusFailed, got.Status)
	assert.Equal(t, "OpenAI Error: empty completion", *got.ErrorMessage)
	require.NotNil(t, got.Transcript, "transcript kept from the earlier step")
	assert.Empty(t, h.notes.created)
}

func TestProcess_EmptyTitleFallsBack(t *testing.T) {
	h := newHarness(t, processingRecording(), http.StatusOK)
	h.llm.answers = []string{"Buy milk."}
	h.llm.errs = []error{nil, &common.ProviderError{Kind: common.ErrEnhancement, Message: "empty completion"}}

	require.NoError(t, h.p.Process(context.Background(), "r1"))
	require.Len(t, h.notes.created, 1)
	assert.Equal(t, DefaultTitle, h.notes.created[0].Title)
}

func TestProcess_TitleCallErrorFails(t *testing.T) {
	h := newHarness(t, processingRecording(), http.StatusOK)
	h.llm.answers = []string{"Buy milk."}
	h.llm.errs = []error{nil, &common.ProviderError{Kind: common.ErrEnhancement, Status: 503, Message: "unavailable"}}

	require.Error(t, h.p.Process(context.Background(), "r1"))
	assert.Equal(t, "OpenAI Error: 503 unavailable", *h.recs.byID["r1"].ErrorMessage)
}

func TestProcess_FetchFailure(t *testing.T) {
	h := newHarness(t, processingRecording(), http.StatusForbidden)

	require.Error(t, h.p.Process(context.Background(), "r1"))
	got := h.recs.byID["r1"]
	assert.Equal(t, models.RecordingStatusFailed, got.Status)
	assert.Equal(t, "fetch audio: fetch failed: 403 Forbidden", *got.ErrorMessage)
}

func TestProcess_AppendTargetGone(t *testing.T) {
	target := "gone"
	rec := processingRecording()
	rec.NoteIDToAppend = &target
	h := newHarness(t, rec, http.StatusOK)
	h.llm.answers = []string{"text"}
	h.notes.appendErr = common.ErrorNotFound

	err := h.p.Process(context.Background(), "r1")
	assert.ErrorIs(t, err, common.ErrorNotFound)
	assert.Equal(t, "append to note gone: not found", *h.recs.byID["r1"].ErrorMessage)
	assert.Empty(t, h.blobs.deleted)
}

func TestProcess_BlobDeleteFailureFailsRecording(t *testing.T) {
	h := newHarness(t, processingRecording(), http.StatusOK)
	h.llm.answers = []string{"text", "Title"}
	h.blobs.deleteErr = errors.New("delete users/u1/recordings/abc.wav: denied")

	require.Error(t, h.p.Process(context.Background(), "r1"))
	assert.Len(t, h.notes.created, 1, "no rollback of the created note")
	assert.Equal(t, models.RecordingStatusFailed, h.recs.byID["r1"].Status)
}

func TestProcess_SkipsSettledRecording(t *testing.T) {
	rec := processingRecording()
	rec.Status = models.RecordingStatusCompleted
	h := newHarness(t, rec, http.StatusOK)

	require.NoError(t, h.p.Process(context.Background(), "r1"))
	assert.Nil(t, h.llm.gotAudio)
	assert.Empty(t, h.events.states)
}

func TestProcess_UnknownRecording(t *testing.T) {
	h := newHarness(t, processingRecording(), http.StatusOK)

	err := h.p.Process(context.Background(), "nope")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestProcess_CancelledMidRunStillFails(t *testing.T) {
	h := newHarness(t, processingRecording(), http.StatusOK)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h.llm.onTranscribe = cancel
	h.llm.transcribeErr = context.Canceled

	err := h.p.Process(ctx, "r1")
	assert.ErrorIs(t, err, context.Canceled)

	rec := h.recs.byID["r1"]
	assert.Equal(t, models.RecordingStatusFailed, rec.Status)
	require.NotNil(t, rec.ErrorMessage)
	assert.Equal(t, context.Canceled.Error(), *rec.ErrorMessage)
	require.NotEmpty(t, h.events.states)
	assert.Equal(t, models.RecordingStatusFailed, h.events.states[len(h.events.states)-1].Status)
}

func TestProcess_CancelledAfterRunStillCompletes(t *testing.T) {
	h := newHarness(t, processingRecording(), http.StatusOK)
	h.llm.answers = []string{"Buy milk.", "Groceries"}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h.llm.onTranscribe = cancel

	require.NoError(t, h.p.Process(ctx, "r1"))
	assert.Equal(t, models.RecordingStatusCompleted, h.recs.byID["r1"].Status)
}

func TestAbandon_FailsQueuedRecording(t *testing.T) {
	h := newHarness(t, processingRecording(), http.StatusOK)

	require.NoError(t, h.p.Abandon(context.Background(), "r1", "processing cancelled before start: context canceled"))

	rec := h.recs.byID["r1"]
	assert.Equal(t, models.RecordingStatusFailed, rec.Status)
	assert.Equal(t, "processing cancelled before start: context canceled", *rec.ErrorMessage)
	require.Len(t, h.events.states, 1)
	assert.Equal(t, models.RecordingStatusFailed, h.events.states[0].Status)
	assert.Nil(t, h.llm.gotAudio)

	// a second call finds the recording settled and leaves it alone
	require.NoError(t, h.p.Abandon(context.Background(), "r1", "other"))
	assert.Equal(t, "processing cancelled before start: context canceled", *rec.ErrorMessage)
	assert.Len(t, h.events.states, 1)
}

func TestFailInterrupted_SweepsProcessingOnly(t *testing.T) {
	h := newHarness(t, processingRecording(), http.StatusOK)
	done := "n1"
	h.recs.byID["r2"] = &models.Recording{ID: "r2", UserID: "u1", Status: models.RecordingStatusCompleted, NoteID: &done}

	require.NoError(t, h.p.FailInterrupted(context.Background()))

	assert.Equal(t, models.RecordingStatusFailed, h.recs.byID["r1"].Status)
	assert.Equal(t, InterruptedMessage, *h.recs.byID["r1"].ErrorMessage)
	assert.Equal(t, models.RecordingStatusCompleted, h.recs.byID["r2"].Status)
	assert.Nil(t, h.recs.byID["r2"].ErrorMessage)
}

func TestCleanTitle(t *testing.T) {
	assert.Equal(t, "Groceries", cleanTitle(`  "Groceries" `))
	assert.Equal(t, DefaultTitle, cleanTitle(` "" `))

	long := strings.Repeat("é", 80)
	got := cleanTitle(long)
	assert.Equal(t, 60, len([]rune(got)))
}

func TestAudioFilename(t *testing.T) {
	assert.Equal(t, "audio.webm", audioFilename("users/u/recordings/x.webm"))
	assert.Equal(t, "audio.wav", audioFilename("users/u/recordings/x"))
}
