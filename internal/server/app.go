// Package server wires configuration, storage, services and the HTTP API
// together and runs them until a shutdown signal arrives.
package server

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/graphpass/internal/logging"
	"github.com/dmitrijs2005/graphpass/internal/server/blobs"
	"github.com/dmitrijs2005/graphpass/internal/server/config"
	"github.com/dmitrijs2005/graphpass/internal/server/httpapi"
	"github.com/dmitrijs2005/graphpass/internal/server/images"
	"github.com/dmitrijs2005/graphpass/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/graphpass/internal/server/services"
	"github.com/gin-gonic/gin"
)

// logOutput is where the JSON log goes; tests replace it.
var logOutput io.Writer = os.Stdout

type App struct {
	config *config.Config
	logger logging.Logger
	repos  *repomanager.Manager
	http   *httpapi.Server
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	level, err := c.SlogLevel()
	if err != nil {
		return nil, err
	}
	logger := logging.NewJSON(logOutput, level)

	if c.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	repos, err := repomanager.Open(ctx, c, logger)
	if err != nil {
		return nil, fmt.Errorf("storage init error: %w", err)
	}

	store, err := newBlobStore(ctx, c)
	if err != nil {
		_ = repos.Close()
		return nil, fmt.Errorf("image storage init error: %w", err)
	}

	limits := images.Limits{MaxCount: c.MaxImages, MaxSize: c.MaxImageSize}
	signup := services.NewSignupService(repos.Accounts(), images.NewValidator(limits), store, logger)
	auth := services.NewAuthService(repos.Accounts(), store, logger)

	srv := httpapi.NewServer(httpapi.Options{
		Address:         c.EndpointAddrHTTP,
		ShutdownTimeout: c.ShutdownTimeout,
		MaxUploadBytes:  int64(c.MaxImages)*c.MaxImageSize + 1<<20,
	}, logger, signup, auth)

	return &App{config: c, logger: logger, repos: repos, http: srv}, nil
}

func newBlobStore(ctx context.Context, c *config.Config) (blobs.Store, error) {
	switch c.ImageStorage {
	case config.ImageStorageS3:
		return blobs.NewS3Store(ctx, blobs.S3Config{
			RootUser:     c.S3RootUser,
			RootPassword: c.S3RootPassword,
			Bucket:       c.S3Bucket,
			Region:       c.S3Region,
			BaseEndpoint: c.S3BaseEndpoint,
		})
	case config.ImageStorageInline, "":
		return blobs.InlineStore{}, nil
	default:
		return nil, fmt.Errorf("unknown image storage %q", c.ImageStorage)
	}
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves HTTP until ctx is cancelled or a signal arrives, then closes
// the storage.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "storage", app.repos.Backend(), "images", app.config.ImageStorage)

	app.initSignalHandler(cancelFunc)

	err := app.http.Run(ctx)
	if err != nil {
		app.logger.Error(ctx, "HTTP server failed", "error", err)
	}

	if cerr := app.repos.Close(); cerr != nil {
		app.logger.Error(ctx, "closing storage", "error", cerr)
	}

	app.logger.Info(ctx, "App stopped")
	return err
}
