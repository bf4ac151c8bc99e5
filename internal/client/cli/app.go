// Package cli is the talkflo command-line client.
//
// Every command talks to the Talkflo server over its JSON API. The record
// command drives the microphone through a capture session, uploads the
// result straight to object storage and follows the recording until the
// server has turned it into a note.
package cli

import (
	"bufio"
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Chris-Obeng/talkflo-app1/internal/client/api"
	"github.com/Chris-Obeng/talkflo-app1/internal/client/capture"
	"github.com/Chris-Obeng/talkflo-app1/internal/client/capture/portaudio"
	"github.com/Chris-Obeng/talkflo-app1/internal/client/config"
	"github.com/Chris-Obeng/talkflo-app1/internal/client/models"
	"github.com/Chris-Obeng/talkflo-app1/internal/client/notify"
	"github.com/Chris-Obeng/talkflo-app1/internal/client/poller"
	"github.com/Chris-Obeng/talkflo-app1/internal/client/upload"
)

// Backend is the server API as the commands use it.
type Backend interface {
	Register(ctx context.Context, email, password string) error
	Login(ctx context.Context, email, password string) error
	Logout(ctx context.Context) error

	ListNotes(ctx context.Context, folderID, search string) ([]models.Note, error)
	GetNote(ctx context.Context, id string) (*models.Note, error)
	CreateNote(ctx context.Context, in models.NoteInput) (*models.Note, error)
	UpdateNote(ctx context.Context, id string, patch models.NotePatch) (*models.Note, error)
	DeleteNote(ctx context.Context, id string) error
	DeleteNotes(ctx context.Context, ids []string) (int, error)
	SetPublished(ctx context.Context, id string, published bool) (*models.Published, error)
	Regenerate(ctx context.Context, id, style string) (*models.Note, error)
	Rewrite(ctx context.Context, id, instructions string) (*models.Note, error)
	Styles(ctx context.Context) ([]string, error)
	ExportPDF(ctx context.Context, id string) ([]byte, error)

	ListFolders(ctx context.Context) ([]models.Folder, error)
	CreateFolder(ctx context.Context, name string) (*models.Folder, error)
	RenameFolder(ctx context.Context, id, name string) (*models.Folder, error)
	DeleteFolder(ctx context.Context, id string) error

	RequestUploadTarget(ctx context.Context, ext string) (*models.UploadTarget, error)
	CreateRecording(ctx context.Context, in models.RecordingInput) (*models.Recording, error)
	GetRecording(ctx context.Context, id string) (*models.Recording, error)
	ListRecordings(ctx context.Context) ([]models.Recording, error)
	DiscardRecording(ctx context.Context, id string) error

	GetSettings(ctx context.Context) (*models.Settings, error)
	UpdateSettings(ctx context.Context, in models.Settings) (*models.Settings, error)
	GetSubscription(ctx context.Context) (*models.SubscriptionView, error)
	ListPayments(ctx context.Context) ([]models.Payment, error)
	Checkout(ctx context.Context, plan string) (*models.CheckoutLink, error)
}

// Uploader moves a finished recording into object storage.
type Uploader interface {
	RequestUploadTarget(ctx context.Context) (*models.UploadTarget, error)
	Upload(ctx context.Context, blob []byte, target *models.UploadTarget) (string, error)
}

type App struct {
	config   *config.Config
	backend  Backend
	uploader Uploader
	poller   *poller.Poller
	notifier notify.Notifier
	reader   *bufio.Reader
	in       io.Reader

	// openDevice returns the microphone and a func that releases the
	// audio subsystem.
	openDevice func() (capture.Device, func(), error)
}

// The real client follows the event stream instead of polling.
var _ poller.Streamer = (*api.Client)(nil)

func NewApp(c *config.Config) (*App, error) {
	tokens, err := api.NewFileTokenStore(c.TokenFile)
	if err != nil {
		return nil, err
	}
	client := api.New(c.ServerURL, tokens, nil)

	return &App{
		config:     c,
		backend:    client,
		uploader:   upload.New(client, client.HTTPClient()),
		poller:     poller.New(client, c.PollInitialInterval, c.PollMaxInterval),
		notifier:   notify.New(c.Notifications),
		reader:     bufio.NewReader(os.Stdin),
		in:         os.Stdin,
		openDevice: openPortAudio,
	}, nil
}

func openPortAudio() (capture.Device, func(), error) {
	d, err := portaudio.Init()
	if err != nil {
		return nil, nil, err
	}
	return d, func() { _ = d.Terminate() }, nil
}

// NewRootCommand builds the talkflo command tree.
func NewRootCommand(a *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "talkflo",
		Short:         "Voice notes from the terminal",
		Long:          "Record a voice note, let the server transcribe and tidy it, and manage the resulting notes and folders.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	// read by config.LoadConfig before cobra runs
	root.PersistentFlags().StringP("config", "c", "", "path to a JSON config file")

	root.AddCommand(
		a.registerCmd(),
		a.loginCmd(),
		a.logoutCmd(),
		a.recordCmd(),
		a.notesCmd(),
		a.foldersCmd(),
		a.settingsCmd(),
		a.subscriptionCmd(),
		a.recordingsCmd(),
	)
	return root
}
