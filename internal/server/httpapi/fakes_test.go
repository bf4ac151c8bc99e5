package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/Chris-Obeng/talkflo-app1/internal/common"
	"github.com/Chris-Obeng/talkflo-app1/internal/server/models"
	"github.com/Chris-Obeng/talkflo-app1/internal/server/payments"
	"github.com/Chris-Obeng/talkflo-app1/internal/server/services"
)

const (
	testToken = "good-token"
	testUser  = "11111111-1111-1111-1111-111111111111"
)

type fakeUsers struct {
	Users
	registerErr error
}

func (f *fakeUsers) Authenticate(token string) (string, error) {
	if token != testToken {
		return "", common.ErrorNotAuthenticated
	}
	return testUser, nil
}

func (f *fakeUsers) Register(_ context.Context, email, _ string) (*models.User, error) {
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return &models.User{ID: testUser, Email: email}, nil
}

func (f *fakeUsers) Login(_ context.Context, email, password string) (*services.TokenPair, error) {
	if password != "pw" {
		return nil, common.ErrorUnauthorized
	}
	return &services.TokenPair{AccessToken: "a", RefreshToken: "r"}, nil
}

type fakeNotes struct {
	Notes
	notes     map[string]*models.Note
	gotFolder *string
	gotSearch string
	gotPatch  models.NotePatch
	batchIDs  []string
	published map[string]*models.PublishedNote
}

func (f *fakeNotes) List(_ context.Context, _ string, folderID *string, search string) ([]*models.Note, error) {
	f.gotFolder, f.gotSearch = folderID, search
	out := []*models.Note{}
	for _, n := range f.notes {
		out = append(out, n)
	}
	return out, nil
}

func (f *fakeNotes) Get(_ context.Context, userID, id string) (*models.Note, error) {
	n, ok := f.notes[id]
	if !ok || n.UserID != userID {
		return nil, common.ErrorNotFound
	}
	return n, nil
}

func (f *fakeNotes) Update(ctx context.Context, userID, id string, p models.NotePatch) (*models.Note, error) {
	f.gotPatch = p
	n, err := f.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if p.Title != nil {
		n.Title = *p.Title
	}
	return n, nil
}

func (f *fakeNotes) DeleteBatch(_ context.Context, _ string, ids []string) (int, error) {
	f.batchIDs = ids
	return len(ids), nil
}

func (f *fakeNotes) SetPublished(ctx context.Context, userID, id string, published bool) (string, error) {
	if _, err := f.Get(ctx, userID, id); err != nil {
		return "", err
	}
	return "abc123defg", nil
}

func (f *fakeNotes) GetPublished(_ context.Context, token string) (*models.PublishedNote, error) {
	p, ok := f.published[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return p, nil
}

func (f *fakeNotes) ExportPDF(ctx context.Context, userID, id string) ([]byte, error) {
	if _, err := f.Get(ctx, userID, id); err != nil {
		return nil, err
	}
	return []byte("%PDF-1.3 fake"), nil
}

type fakeAI struct {
	AI
	err error
}

func (f *fakeAI) Regenerate(_ context.Context, _, id, _ string) (*models.Note, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.Note{ID: id, Content: "new", Status: models.NoteStatusCompleted}, nil
}

type fakeRecordings struct {
	Recordings
	gotInput services.RecordingInput
	current  models.RecordingState
	updates  []models.RecordingState
	stopped  bool
}

func (f *fakeRecordings) RequestUploadTarget(_ context.Context, userID, ext string) (*services.UploadTarget, error) {
	key := "users/" + userID + "/recordings/x." + ext
	return &services.UploadTarget{UploadURL: "https://s3.example/" + key, AudioHandle: key}, nil
}

func (f *fakeRecordings) CreateRecording(_ context.Context, userID string, in services.RecordingInput) (*models.Recording, error) {
	f.gotInput = in
	return &models.Recording{ID: "rec-1", UserID: userID, AudioHandle: in.AudioHandle, Status: models.RecordingStatusProcessing}, nil
}

func (f *fakeRecordings) Watch(context.Context, string, string) (models.RecordingState, <-chan models.RecordingState, func(), error) {
	if f.current.Status.Terminal() {
		return f.current, nil, func() {}, nil
	}
	ch := make(chan models.RecordingState, len(f.updates))
	for _, u := range f.updates {
		ch <- u
	}
	return f.current, ch, func() { f.stopped = true }, nil
}

type fakeSubscriptions struct {
	Subscriptions
	applied []*payments.Event
	err     error
}

func (f *fakeSubscriptions) ApplyEvent(_ context.Context, e *payments.Event) error {
	f.applied = append(f.applied, e)
	return f.err
}

func (f *fakeSubscriptions) Get(context.Context, string) (*services.SubscriptionView, error) {
	return &services.SubscriptionView{
		Subscription: &models.Subscription{SubscriptionID: "sub_1", Status: models.SubscriptionActive, EndsOn: time.Now().Add(time.Hour)},
		Active:       true,
	}, nil
}

type fakeVerifier struct{ err error }

func (f *fakeVerifier) Verify(http.Header, []byte) error { return f.err }

type fakePinger struct{ err error }

func (f *fakePinger) PingContext(context.Context) error { return f.err }
