// Package httpapi exposes the Talkflo services over a JSON HTTP API built on
// gin, plus the payments webhook and the public share page.
package httpapi

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/Chris-Obeng/talkflo-app1/internal/logging"
	"github.com/Chris-Obeng/talkflo-app1/internal/server/config"
	"github.com/Chris-Obeng/talkflo-app1/internal/server/models"
	"github.com/Chris-Obeng/talkflo-app1/internal/server/payments"
	"github.com/Chris-Obeng/talkflo-app1/internal/server/services"
	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 10 * time.Second

type Users interface {
	Register(ctx context.Context, email, password string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*services.TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	Authenticate(accessToken string) (string, error)
}

type Notes interface {
	List(ctx context.Context, userID string, folderID *string, search string) ([]*models.Note, error)
	Get(ctx context.Context, userID, id string) (*models.Note, error)
	Create(ctx context.Context, userID string, in services.NoteInput) (*models.Note, error)
	Update(ctx context.Context, userID, id string, patch models.NotePatch) (*models.Note, error)
	Delete(ctx context.Context, userID, id string) error
	DeleteBatch(ctx context.Context, userID string, ids []string) (int, error)
	SetPublished(ctx context.Context, userID, id string, published bool) (string, error)
	GetPublished(ctx context.Context, token string) (*models.PublishedNote, error)
	ExportPDF(ctx context.Context, userID, id string) ([]byte, error)
}

type Folders interface {
	List(ctx context.Context, userID string) ([]*models.Folder, error)
	Create(ctx context.Context, userID, name string) (*models.Folder, error)
	Rename(ctx context.Context, userID, id, name string) (*models.Folder, error)
	Delete(ctx context.Context, userID, id string) error
}

type Recordings interface {
	RequestUploadTarget(ctx context.Context, userID, ext string) (*services.UploadTarget, error)
	CreateRecording(ctx context.Context, userID string, in services.RecordingInput) (*models.Recording, error)
	GetStatus(ctx context.Context, userID, id string) (*models.Recording, error)
	ListRecent(ctx context.Context, userID string) ([]*models.Recording, error)
	Discard(ctx context.Context, userID, id string) error
	Watch(ctx context.Context, userID, id string) (models.RecordingState, <-chan models.RecordingState, func(), error)
}

type AI interface {
	Styles() []string
	Regenerate(ctx context.Context, userID, noteID, style string) (*models.Note, error)
	Rewrite(ctx context.Context, userID, noteID, instructions string) (*models.Note, error)
}

type Settings interface {
	Get(ctx context.Context, userID string) (models.UserSettings, error)
	Update(ctx context.Context, userID string, patch models.UserSettings) (models.UserSettings, error)
}

type Subscriptions interface {
	Get(ctx context.Context, userID string) (*services.SubscriptionView, error)
	Payments(ctx context.Context, userID string) ([]*models.Payment, error)
	CreateCheckout(ctx context.Context, userID, planID string) (*services.CheckoutLink, error)
	ApplyEvent(ctx context.Context, e *payments.Event) error
}

type WebhookVerifier interface {
	Verify(h http.Header, body []byte) error
}

// Pinger reports database reachability for /healthz.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Deps wires the API to its services.
type Deps struct {
	Users         Users
	Notes         Notes
	Folders       Folders
	Recordings    Recordings
	AI            AI
	Settings      Settings
	Subscriptions Subscriptions
	Webhooks      WebhookVerifier
	DB            Pinger
}

type API struct {
	Deps
	log           logging.Logger
	publicBaseURL string
}

type Server struct {
	address string
	engine  *gin.Engine
	logger  logging.Logger
}

func NewServer(cfg *config.Config, deps Deps, log logging.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	log = log.With("module", "http_server")

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(RequestLogger(log))
	engine.Use(MaxBodySize(cfg.MaxBodyBytes))
	engine.Use(CORS(cfg.CORSOrigins))

	api := &API{Deps: deps, log: log, publicBaseURL: cfg.PublicBaseURL}
	registerRoutes(engine, api)

	return &Server{address: cfg.HTTPAddr, engine: engine, logger: log}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.serve(ctx, listen)
}

func (s *Server) serve(ctx context.Context, listen net.Listener) error {
	srv := &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn(ctx, "http shutdown", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())
	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func registerRoutes(r *gin.Engine, api *API) {
	r.GET("/healthz", api.handleHealth)
	r.POST("/webhooks/payments", api.handlePaymentsWebhook)
	r.GET("/p/:token", api.handlePublicPage)

	apiGroup := r.Group("/api")
	{
		apiGroup.POST("/auth/register", api.handleRegister)
		apiGroup.POST("/auth/login", api.handleLogin)
		apiGroup.POST("/auth/refresh", api.handleRefresh)
		apiGroup.POST("/auth/logout", api.handleLogout)

		apiGroup.GET("/public/notes/:token", api.handlePublicNote)
	}

	authed := apiGroup.Group("", BearerAuth(api.Users))
	{
		authed.GET("/folders", api.handleListFolders)
		authed.POST("/folders", api.handleCreateFolder)
		authed.PATCH("/folders/:id", api.handleRenameFolder)
		authed.DELETE("/folders/:id", api.handleDeleteFolder)

		authed.GET("/notes", api.handleListNotes)
		authed.POST("/notes", api.handleCreateNote)
		authed.POST("/notes/batch-delete", api.handleBatchDeleteNotes)
		authed.GET("/notes/:id", api.handleGetNote)
		authed.PATCH("/notes/:id", api.handleUpdateNote)
		authed.DELETE("/notes/:id", api.handleDeleteNote)
		authed.PUT("/notes/:id/publish", api.handlePublishNote)
		authed.POST("/notes/:id/regenerate", api.handleRegenerateNote)
		authed.POST("/notes/:id/rewrite", api.handleRewriteNote)
		authed.GET("/notes/:id/export.pdf", api.handleExportNote)
		authed.GET("/styles", api.handleListStyles)

		authed.POST("/uploads", api.handleRequestUpload)
		authed.POST("/recordings", api.handleCreateRecording)
		authed.GET("/recordings", api.handleListRecordings)
		authed.GET("/recordings/:id", api.handleGetRecording)
		authed.GET("/recordings/:id/events", api.handleRecordingEvents)
		authed.POST("/recordings/:id/discard", api.handleDiscardRecording)

		authed.GET("/settings", api.handleGetSettings)
		authed.PUT("/settings", api.handleUpdateSettings)

		authed.GET("/subscription", api.handleGetSubscription)
		authed.GET("/subscription/payments", api.handleListPayments)
		authed.POST("/subscription/checkout", api.handleCheckout)
	}
}

func (a *API) handleHealth(c *gin.Context) {
	if a.DB != nil {
		if err := a.DB.PingContext(c.Request.Context()); err != nil {
			a.log.Warn(c.Request.Context(), "health check failed", "error", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// readBody drains the request body, honouring the MaxBodySize limit.
func readBody(c *gin.Context) ([]byte, error) {
	return io.ReadAll(c.Request.Body)
}
