package worker

import (
	"context"
	"sync"
	"time"

	"github.com/Chris-Obeng/talkflo-app1/internal/common"
	"github.com/Chris-Obeng/talkflo-app1/internal/dbx"
	"github.com/Chris-Obeng/talkflo-app1/internal/server/models"
	"github.com/Chris-Obeng/talkflo-app1/internal/server/repositories/notes"
	"github.com/Chris-Obeng/talkflo-app1/internal/server/repositories/recordings"
	"github.com/Chris-Obeng/talkflo-app1/internal/server/repositories/repomanager"
)

type fakeRepoManager struct {
	repomanager.RepositoryManager
	recs  *fakeRecordings
	notes *fakeNotes
}

func (m *fakeRepoManager) Recordings(dbx.DBTX) recordings.Repository { return m.recs }
func (m *fakeRepoManager) Notes(dbx.DBTX) notes.Repository           { return m.notes }

type fakeRecordings struct {
	recordings.Repository
	mu   sync.Mutex
	byID map[string]*models.Recording
}

func (f *fakeRecordings) GetByID(_ context.Context, id string) (*models.Recording, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeRecordings) SetTranscript(_ context.Context, id, t string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[id].Transcript = &t
	return nil
}

func (f *fakeRecordings) SetProcessedText(_ context.Context, id, t string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[id].ProcessedText = &t
	return nil
}

// Complete and Fail reject a cancelled ctx the way a database driver does.
func (f *fakeRecordings) Complete(ctx context.Context, id string, noteID *string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	r := f.byID[id]
	if r.Status != models.RecordingStatusProcessing {
		return common.ErrorNotFound
	}
	r.Status = models.RecordingStatusCompleted
	r.NoteID = noteID
	return nil
}

func (f *fakeRecordings) Fail(ctx context.Context, id, msg string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	r := f.byID[id]
	if r.Status != models.RecordingStatusProcessing {
		return common.ErrorNotFound
	}
	r.Status = models.RecordingStatusFailed
	r.ErrorMessage = &msg
	return nil
}

func (f *fakeRecordings) FailProcessing(_ context.Context, msg string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []string
	for id, r := range f.byID {
		if r.Status == models.RecordingStatusProcessing {
			r.Status = models.RecordingStatusFailed
			r.ErrorMessage = &msg
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (f *fakeRecordings) MarkAudioDeleted(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[id].AudioDeleted = true
	return nil
}

type appendCall struct{ userID, id, content, transcript string }

type fakeNotes struct {
	notes.Repository
	created   []*models.Note
	appended  []appendCall
	cleared   []string
	appendErr error
}

func (f *fakeNotes) Create(_ context.Context, n *models.Note) (*models.Note, error) {
	n.ID = "note-new"
	n.CreatedAt = time.Now()
	f.created = append(f.created, n)
	return n, nil
}

func (f *fakeNotes) Append(_ context.Context, userID, id, content, transcript string) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.appended = append(f.appended, appendCall{userID, id, content, transcript})
	return nil
}

func (f *fakeNotes) ClearAudio(_ context.Context, userID, id string) error {
	f.cleared = append(f.cleared, id)
	return nil
}

type fakeBlobs struct {
	url       string
	deleted   []string
	deleteErr error
}

func (f *fakeBlobs) PresignPut(context.Context, string, time.Duration) (string, error) { return "", nil }
func (f *fakeBlobs) PresignGet(context.Context, string, time.Duration) (string, error) {
	return f.url, nil
}
func (f *fakeBlobs) Delete(_ context.Context, key string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, key)
	return nil
}

type completeCall struct{ system, user string }

type fakeLLM struct {
	transcript    string
	transcribeErr error
	gotAudio      []byte
	gotFilename   string
	onTranscribe  func()

	// answers are consumed in order; errs line up with answers.
	answers []string
	errs    []error
	calls   []completeCall
}

func (f *fakeLLM) Transcribe(_ context.Context, audio []byte, filename string) (string, error) {
	f.gotAudio = audio
	f.gotFilename = filename
	if f.onTranscribe != nil {
		f.onTranscribe()
	}
	return f.transcript, f.transcribeErr
}

func (f *fakeLLM) Complete(_ context.Context, system, user string, _ float32) (string, error) {
	i := len(f.calls)
	f.calls = append(f.calls, completeCall{system, user})
	var err error
	if i < len(f.errs) {
		err = f.errs[i]
	}
	if err != nil {
		return "", err
	}
	if i < len(f.answers) {
		return f.answers[i], nil
	}
	return "", nil
}

type recordedEvents struct {
	mu     sync.Mutex
	states []models.RecordingState
}

func (r *recordedEvents) Publish(s models.RecordingState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, s)
}
