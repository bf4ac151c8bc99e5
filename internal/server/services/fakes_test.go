package services

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Chris-Obeng/talkflo-app1/internal/common"
	"github.com/Chris-Obeng/talkflo-app1/internal/dbx"
	"github.com/Chris-Obeng/talkflo-app1/internal/logging"
	"github.com/Chris-Obeng/talkflo-app1/internal/server/models"
	"github.com/Chris-Obeng/talkflo-app1/internal/server/payments"
	"github.com/Chris-Obeng/talkflo-app1/internal/server/repositories/folders"
	"github.com/Chris-Obeng/talkflo-app1/internal/server/repositories/notes"
	"github.com/Chris-Obeng/talkflo-app1/internal/server/repositories/recordings"
	"github.com/Chris-Obeng/talkflo-app1/internal/server/repositories/refreshtokens"
	"github.com/Chris-Obeng/talkflo-app1/internal/server/repositories/repomanager"
	"github.com/Chris-Obeng/talkflo-app1/internal/server/repositories/settings"
	"github.com/Chris-Obeng/talkflo-app1/internal/server/repositories/subscriptions"
	"github.com/Chris-Obeng/talkflo-app1/internal/server/repositories/users"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
)

const (
	alice = "11111111-1111-1111-1111-111111111111"
	bob   = "22222222-2222-2222-2222-222222222222"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

// memRepos is an in-memory RepositoryManager shared by the service tests.
// Every repository ignores the DBTX it is bound to.
type memRepos struct {
	repomanager.RepositoryManager

	users    *memUsers
	tokens   *memTokens
	notes    *memNotes
	folders  *memFolders
	recs     *memRecordings
	settings *memSettings
	subs     *memSubscriptions
}

func newMemRepos() *memRepos {
	return &memRepos{
		users:    &memUsers{byID: map[string]*models.User{}},
		tokens:   &memTokens{byToken: map[string]*models.RefreshToken{}},
		notes:    &memNotes{byID: map[string]*models.Note{}},
		folders:  &memFolders{byID: map[string]*models.Folder{}},
		recs:     &memRecordings{byID: map[string]*models.Recording{}},
		settings: &memSettings{byUser: map[string]models.UserSettings{}},
		subs:     &memSubscriptions{byUser: map[string]*models.Subscription{}},
	}
}

func (m *memRepos) Users(dbx.DBTX) users.Repository                 { return m.users }
func (m *memRepos) RefreshTokens(dbx.DBTX) refreshtokens.Repository { return m.tokens }
func (m *memRepos) Notes(dbx.DBTX) notes.Repository                 { return m.notes }
func (m *memRepos) Folders(dbx.DBTX) folders.Repository             { return m.folders }
func (m *memRepos) Recordings(dbx.DBTX) recordings.Repository       { return m.recs }
func (m *memRepos) Settings(dbx.DBTX) settings.Repository           { return m.settings }
func (m *memRepos) Subscriptions(dbx.DBTX) subscriptions.Repository { return m.subs }

// --- users ---

type memUsers struct {
	mu   sync.Mutex
	byID map[string]*models.User
}

func (r *memUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, other := range r.byID {
		if other.Email == u.Email {
			return nil, common.ErrAlreadyExists
		}
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.CreatedAt = time.Now()
	cp := *u
	r.byID[u.ID] = &cp
	return u, nil
}

func (r *memUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *memUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memUsers) Exists(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.byID[id]
	return ok, nil
}

// --- refresh tokens ---

type memTokens struct {
	mu      sync.Mutex
	byToken map[string]*models.RefreshToken
	pruned  int
}

func (r *memTokens) Issue(_ context.Context, userID, token string, expires time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byToken[token] = &models.RefreshToken{UserID: userID, Expires: expires}
	return nil
}

func (r *memTokens) Consume(_ context.Context, token string) (*models.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.byToken[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	delete(r.byToken, token)
	cp := *t
	return &cp, nil
}

func (r *memTokens) DeleteExpired(_ context.Context, userID string, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for k, t := range r.byToken {
		if t.UserID == userID && t.Expires.Before(now) {
			delete(r.byToken, k)
			n++
		}
	}
	r.pruned += int(n)
	return n, nil
}

func (r *memTokens) Revoke(_ context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byToken, token)
	return nil
}

// --- notes ---

type memNotes struct {
	mu   sync.Mutex
	byID map[string]*models.Note

	statuses  []models.NoteStatus // every SetStatus, in order
	replaceFn func() error
}

func (r *memNotes) put(n *models.Note) *models.Note {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.Status == "" {
		n.Status = models.NoteStatusCompleted
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	cp := *n
	r.byID[n.ID] = &cp
	return n
}

func (r *memNotes) owned(userID, id string) (*models.Note, error) {
	n, ok := r.byID[id]
	if !ok || n.UserID != userID {
		return nil, common.ErrorNotFound
	}
	return n, nil
}

func (r *memNotes) Create(_ context.Context, n *models.Note) (*models.Note, error) {
	return r.put(n), nil
}

func (r *memNotes) Get(_ context.Context, userID, id string) (*models.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, err := r.owned(userID, id)
	if err != nil {
		return nil, err
	}
	cp := *n
	return &cp, nil
}

func (r *memNotes) List(_ context.Context, userID string, f notes.ListFilter) ([]*models.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*models.Note{}
	for _, n := range r.byID {
		if n.UserID != userID {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(n.Content), strings.ToLower(f.Search)) {
			continue
		}
		if f.Search == "" && f.FolderID != nil && (n.FolderID == nil || *n.FolderID != *f.FolderID) {
			continue
		}
		cp := *n
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memNotes) Update(_ context.Context, userID, id string, p models.NotePatch) (*models.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, err := r.owned(userID, id)
	if err != nil {
		return nil, err
	}
	if p.Title != nil {
		n.Title = *p.Title
	}
	if p.Content != nil {
		n.Content = *p.Content
	}
	if p.FolderID != nil {
		n.FolderID = p.FolderID
	}
	if p.ClearFolder {
		n.FolderID = nil
	}
	if p.Tags != nil {
		n.Tags = *p.Tags
	}
	cp := *n
	return &cp, nil
}

func (r *memNotes) Delete(_ context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, err := r.owned(userID, id); err != nil {
		return err
	}
	delete(r.byID, id)
	return nil
}

func (r *memNotes) SetStatus(_ context.Context, userID, id string, s models.NoteStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, err := r.owned(userID, id)
	if err != nil {
		return err
	}
	n.Status = s
	r.statuses = append(r.statuses, s)
	return nil
}

func (r *memNotes) ReplaceContent(_ context.Context, userID, id, content string) error {
	if r.replaceFn != nil {
		if err := r.replaceFn(); err != nil {
			return err
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	n, err := r.owned(userID, id)
	if err != nil {
		return err
	}
	n.Content = content
	n.Status = models.NoteStatusCompleted
	r.statuses = append(r.statuses, models.NoteStatusCompleted)
	return nil
}

func (r *memNotes) UnfileFolder(_ context.Context, userID, folderID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, note := range r.byID {
		if note.UserID == userID && note.FolderID != nil && *note.FolderID == folderID {
			note.FolderID = nil
			n++
		}
	}
	return n, nil
}

func (r *memNotes) SetPublished(_ context.Context, userID, id string, published bool, candidate string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, err := r.owned(userID, id)
	if err != nil {
		return "", err
	}
	if published && n.PublishToken == nil && candidate != "" {
		n.PublishToken = &candidate
	}
	n.Published = published
	if n.PublishToken == nil {
		return "", nil
	}
	return *n.PublishToken, nil
}

func (r *memNotes) GetPublished(_ context.Context, token string) (*models.PublishedNote, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.byID {
		if n.Published && n.PublishToken != nil && *n.PublishToken == token {
			return &models.PublishedNote{Title: n.Title, Content: n.Content, CreatedAt: n.CreatedAt}, nil
		}
	}
	return nil, common.ErrorNotFound
}

// --- folders ---

type memFolders struct {
	mu   sync.Mutex
	byID map[string]*models.Folder
}

func (r *memFolders) Create(_ context.Context, f *models.Folder) (*models.Folder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	f.CreatedAt = time.Now()
	cp := *f
	r.byID[f.ID] = &cp
	return f, nil
}

func (r *memFolders) Get(_ context.Context, userID, id string) (*models.Folder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.byID[id]
	if !ok || f.UserID != userID {
		return nil, common.ErrorNotFound
	}
	cp := *f
	return &cp, nil
}

func (r *memFolders) List(_ context.Context, userID string) ([]*models.Folder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*models.Folder{}
	for _, f := range r.byID {
		if f.UserID == userID {
			cp := *f
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memFolders) Rename(_ context.Context, userID, id, name string) (*models.Folder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.byID[id]
	if !ok || f.UserID != userID {
		return nil, common.ErrorNotFound
	}
	f.Name = name
	cp := *f
	return &cp, nil
}

func (r *memFolders) Delete(_ context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.byID[id]
	if !ok || f.UserID != userID {
		return common.ErrorNotFound
	}
	delete(r.byID, id)
	return nil
}

// --- recordings ---

type memRecordings struct {
	mu   sync.Mutex
	byID map[string]*models.Recording
}

func (r *memRecordings) Create(_ context.Context, rec *models.Recording) (*models.Recording, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	rec.Status = models.RecordingStatusProcessing
	rec.CreatedAt = time.Now()
	cp := *rec
	r.byID[rec.ID] = &cp
	return rec, nil
}

func (r *memRecordings) Get(_ context.Context, userID, id string) (*models.Recording, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.byID[id]
	if !ok || rec.UserID != userID {
		return nil, common.ErrorNotFound
	}
	cp := *rec
	return &cp, nil
}

func (r *memRecordings) ListRecent(_ context.Context, userID string, limit int) ([]*models.Recording, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*models.Recording{}
	for _, rec := range r.byID {
		if rec.UserID == userID {
			cp := *rec
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memRecordings) Fail(_ context.Context, id, msg string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.byID[id]
	if !ok || rec.Status != models.RecordingStatusProcessing {
		return common.ErrorNotFound
	}
	rec.Status = models.RecordingStatusFailed
	rec.ErrorMessage = &msg
	return nil
}

func (r *memRecordings) FailProcessing(context.Context, string) ([]string, error) { return nil, nil }

func (r *memRecordings) MarkAudioDeleted(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[id].AudioDeleted = true
	return nil
}

// --- settings ---

type memSettings struct {
	mu     sync.Mutex
	byUser map[string]models.UserSettings
}

func (r *memSettings) Get(_ context.Context, userID string) (models.UserSettings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byUser[userID], nil
}

func (r *memSettings) Upsert(_ context.Context, userID string, s models.UserSettings) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byUser[userID] = s
	return nil
}

// --- subscriptions ---

type memSubscriptions struct {
	mu       sync.Mutex
	byUser   map[string]*models.Subscription
	payments []*models.Payment
	known    map[string]bool // users that exist; nil means everyone
}

func (r *memSubscriptions) exists(userID string) bool {
	return r.known == nil || r.known[userID]
}

func (r *memSubscriptions) Upsert(_ context.Context, s *models.Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.exists(s.UserID) {
		return common.ErrorNotFound
	}
	cp := *s
	r.byUser[s.UserID] = &cp
	return nil
}

func (r *memSubscriptions) Get(_ context.Context, userID string) (*models.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byUser[userID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *memSubscriptions) RecordPayment(_ context.Context, p *models.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.exists(p.UserID) {
		return nil
	}
	for _, have := range r.payments {
		if have.PaymentID == p.PaymentID && have.Status == p.Status {
			return nil
		}
	}
	r.payments = append(r.payments, p)
	return nil
}

func (r *memSubscriptions) ListPayments(_ context.Context, userID string) ([]*models.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*models.Payment{}
	for _, p := range r.payments {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

// --- collaborators ---

type fakeBlobs struct {
	mu        sync.Mutex
	deleted   []string
	putKeys   []string
	deleteErr error
}

func (f *fakeBlobs) PresignPut(_ context.Context, key string, _ time.Duration) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.putKeys = append(f.putKeys, key)
	return "https://blobs.example/" + key + "?sig=1", nil
}

func (f *fakeBlobs) PresignGet(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://blobs.example/" + key, nil
}

func (f *fakeBlobs) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, key)
	return nil
}

type fakeEvents struct {
	mu        sync.Mutex
	published []models.RecordingState
	ch        chan models.RecordingState
	stopped   int
}

func (f *fakeEvents) Publish(s models.RecordingState) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, s)
}

func (f *fakeEvents) Subscribe(string) (<-chan models.RecordingState, func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ch == nil {
		f.ch = make(chan models.RecordingState, 4)
	}
	return f.ch, func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.stopped++
	}
}

type fakeJobs struct {
	mu         sync.Mutex
	dispatched []string
	err        error
	ctxErr     error
}

func (f *fakeJobs) Dispatch(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ctxErr = ctx.Err()
	if f.err != nil {
		return f.err
	}
	f.dispatched = append(f.dispatched, id)
	return nil
}

type fakeLLM struct {
	answer string
	err    error
	calls  int
	system string
	user   string
	temp   float32
	during func()
}

func (f *fakeLLM) Transcribe(context.Context, []byte, string) (string, error) { return "", nil }

func (f *fakeLLM) Complete(_ context.Context, system, user string, temperature float32) (string, error) {
	f.calls++
	f.system, f.user, f.temp = system, user, temperature
	if f.during != nil {
		f.during()
	}
	return f.answer, f.err
}

type fakeCheckout struct {
	got *payments.CheckoutRequest
	out *payments.Checkout
	err error
}

func (f *fakeCheckout) CreateSubscription(_ context.Context, in payments.CheckoutRequest) (*payments.Checkout, error) {
	f.got = &in
	return f.out, f.err
}

func nopLog() logging.Logger { return logging.Nop() }

func strptr(s string) *string { return &s }
