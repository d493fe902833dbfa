// Package server initializes and runs the DocSnap server: it opens the
// database and object store, starts the realtime hub, and serves the HTTP
// API with graceful shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/docsnap/docsnap/internal/logging"
	"github.com/docsnap/docsnap/internal/server/blob"
	"github.com/docsnap/docsnap/internal/server/config"
	"github.com/docsnap/docsnap/internal/server/db"
	"github.com/docsnap/docsnap/internal/server/httpapi"
	"github.com/docsnap/docsnap/internal/server/photos"
	"github.com/docsnap/docsnap/internal/server/realtime"
	photorepo "github.com/docsnap/docsnap/internal/server/repositories/photos"
)

type App struct {
	config       *config.Config
	logger       logging.Logger
	hub          *realtime.Hub
	photoService *photos.Service
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {

	s := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(s)

	conn, err := db.Open(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	store, err := blob.NewS3Store(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("object store init error: %w", err)
	}

	hub := realtime.NewHub(logger)
	repo := photorepo.NewPostgresRepository(conn)
	ps := photos.NewService(repo, store, hub, logger)

	return &App{config: cfg, logger: logger, hub: hub, photoService: ps}, nil
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

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {

	handler := httpapi.NewHandler(app.photoService, app.hub, app.logger)
	srv := &http.Server{
		Addr:    app.config.EndpointAddrHTTP,
		Handler: httpapi.NewRouter(handler),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	app.logger.Info(ctx, "http server listening", "addr", app.config.EndpointAddrHTTP)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.hub.Run(ctx)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

}
