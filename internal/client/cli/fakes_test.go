package cli

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fatih/color"

	"github.com/Chris-Obeng/talkflo-app1/internal/client/capture"
	"github.com/Chris-Obeng/talkflo-app1/internal/client/config"
	"github.com/Chris-Obeng/talkflo-app1/internal/client/models"
	"github.com/Chris-Obeng/talkflo-app1/internal/client/poller"
)

func init() {
	color.NoColor = true
}

// fakeBackend overrides what a test needs; anything else panics through
// the nil embedded interface.
type fakeBackend struct {
	Backend

	mu sync.Mutex

	email, password string
	loginErr        error
	loggedOut       bool

	notes       []models.Note
	note        *models.Note
	noteErr     error
	listFolder  string
	listSearch  string
	created     models.NoteInput
	patch       models.NotePatch
	patchedID   string
	deleted     []string
	published   *models.Published
	aiNote      *models.Note
	aiErr       error
	aiStyle     string
	instruction string

	folder     *models.Folder
	folderName string

	settingsIn models.Settings

	recording  *models.Recording
	recInput   models.RecordingInput
	recSteps   []*models.Recording
	recCalls   int
	recGetErr  error
	discarded  string
	sub        *models.SubscriptionView
	payments   []models.Payment
	checkoutID string
}

func (f *fakeBackend) Register(_ context.Context, email, password string) error {
	f.email, f.password = email, password
	return f.loginErr
}

func (f *fakeBackend) Login(_ context.Context, email, password string) error {
	f.email, f.password = email, password
	return f.loginErr
}

func (f *fakeBackend) Logout(context.Context) error {
	f.loggedOut = true
	return nil
}

func (f *fakeBackend) ListNotes(_ context.Context, folderID, search string) ([]models.Note, error) {
	f.listFolder, f.listSearch = folderID, search
	return f.notes, nil
}

func (f *fakeBackend) GetNote(_ context.Context, id string) (*models.Note, error) {
	return f.note, f.noteErr
}

func (f *fakeBackend) CreateNote(_ context.Context, in models.NoteInput) (*models.Note, error) {
	f.created = in
	return &models.Note{ID: "n-new", Title: in.Title}, nil
}

func (f *fakeBackend) UpdateNote(_ context.Context, id string, patch models.NotePatch) (*models.Note, error) {
	f.patchedID, f.patch = id, patch
	return &models.Note{ID: id}, nil
}

func (f *fakeBackend) DeleteNote(_ context.Context, id string) error {
	f.deleted = []string{id}
	return nil
}

func (f *fakeBackend) DeleteNotes(_ context.Context, ids []string) (int, error) {
	f.deleted = ids
	return len(ids) - 1, nil
}

func (f *fakeBackend) SetPublished(_ context.Context, id string, published bool) (*models.Published, error) {
	if f.published != nil {
		return f.published, nil
	}
	return &models.Published{Published: published}, nil
}

func (f *fakeBackend) Regenerate(_ context.Context, id, style string) (*models.Note, error) {
	f.aiStyle = style
	return f.aiNote, f.aiErr
}

func (f *fakeBackend) Rewrite(_ context.Context, id, instructions string) (*models.Note, error) {
	f.instruction = instructions
	return f.aiNote, f.aiErr
}

func (f *fakeBackend) Styles(context.Context) ([]string, error) {
	return []string{"bullet", "summary"}, nil
}

func (f *fakeBackend) ExportPDF(context.Context, string) ([]byte, error) {
	return []byte("%PDF-1.3"), nil
}

func (f *fakeBackend) CreateFolder(_ context.Context, name string) (*models.Folder, error) {
	f.folderName = name
	return &models.Folder{ID: "f1", Name: name}, nil
}

func (f *fakeBackend) RenameFolder(_ context.Context, id, name string) (*models.Folder, error) {
	f.folderName = name
	return &models.Folder{ID: id, Name: name}, nil
}

func (f *fakeBackend) ListFolders(context.Context) ([]models.Folder, error) {
	if f.folder == nil {
		return nil, nil
	}
	return []models.Folder{*f.folder}, nil
}

func (f *fakeBackend) DeleteFolder(_ context.Context, id string) error {
	f.deleted = []string{id}
	return nil
}

func (f *fakeBackend) CreateRecording(_ context.Context, in models.RecordingInput) (*models.Recording, error) {
	f.recInput = in
	return f.recording, nil
}

func (f *fakeBackend) GetRecording(context.Context, string) (*models.Recording, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.recGetErr != nil {
		return nil, f.recGetErr
	}
	i := min(f.recCalls, len(f.recSteps)-1)
	f.recCalls++
	return f.recSteps[i], nil
}

func (f *fakeBackend) ListRecordings(context.Context) ([]models.Recording, error) {
	var out []models.Recording
	for _, r := range f.recSteps {
		out = append(out, *r)
	}
	return out, nil
}

func (f *fakeBackend) DiscardRecording(_ context.Context, id string) error {
	f.discarded = id
	return nil
}

func (f *fakeBackend) GetSettings(context.Context) (*models.Settings, error) {
	return &f.settingsIn, nil
}

func (f *fakeBackend) UpdateSettings(_ context.Context, in models.Settings) (*models.Settings, error) {
	f.settingsIn = in
	return &in, nil
}

func (f *fakeBackend) GetSubscription(context.Context) (*models.SubscriptionView, error) {
	return f.sub, nil
}

func (f *fakeBackend) ListPayments(context.Context) ([]models.Payment, error) {
	return f.payments, nil
}

func (f *fakeBackend) Checkout(_ context.Context, plan string) (*models.CheckoutLink, error) {
	f.checkoutID = plan
	return &models.CheckoutLink{PaymentLink: "https://pay.example/s/123"}, nil
}

type fakeUploader struct {
	blob   []byte
	err    error
	target *models.UploadTarget
}

func (u *fakeUploader) RequestUploadTarget(context.Context) (*models.UploadTarget, error) {
	u.target = &models.UploadTarget{UploadURL: "http://s3/put", AudioHandle: "users/u1/recordings/a.wav"}
	return u.target, nil
}

func (u *fakeUploader) Upload(_ context.Context, blob []byte, target *models.UploadTarget) (string, error) {
	u.blob = blob
	if u.err != nil {
		return "", u.err
	}
	return target.AudioHandle, nil
}

type fakeNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *fakeNotifier) Notify(msg string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, msg)
	return nil
}

type toneStream struct{}

func (toneStream) Start() error { return nil }
func (toneStream) Stop() error  { return nil }
func (toneStream) Close() error { return nil }
func (toneStream) Read(dst []float32) error {
	time.Sleep(time.Millisecond)
	for i := range dst {
		dst[i] = 0.2
	}
	return nil
}

type fakeDevice struct{ err error }

func (d fakeDevice) Open(int, int, int) (capture.Stream, error) {
	if d.err != nil {
		return nil, d.err
	}
	return toneStream{}, nil
}

// slowKeys hands out one key per delay, then EOF.
type slowKeys struct {
	keys  string
	delay time.Duration
}

func (s *slowKeys) Read(p []byte) (int, error) {
	if s.keys == "" {
		return 0, io.EOF
	}
	time.Sleep(s.delay)
	p[0] = s.keys[0]
	s.keys = s.keys[1:]
	return 1, nil
}

func newTestApp(b *fakeBackend, input string) (*App, *fakeUploader, *fakeNotifier) {
	up := &fakeUploader{}
	n := &fakeNotifier{}
	cfg := &config.Config{
		SampleRate:          8000,
		Channels:            1,
		PollInitialInterval: time.Millisecond,
		PollMaxInterval:     2 * time.Millisecond,
	}
	return &App{
		config:     cfg,
		backend:    b,
		uploader:   up,
		poller:     poller.New(b, cfg.PollInitialInterval, cfg.PollMaxInterval),
		notifier:   n,
		reader:     bufio.NewReader(strings.NewReader(input)),
		in:         strings.NewReader(""),
		openDevice: func() (capture.Device, func(), error) { return fakeDevice{}, func() {}, nil },
	}, up, n
}

func run(t *testing.T, a *App, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand(a)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}
