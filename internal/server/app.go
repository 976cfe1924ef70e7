// Package server wires the status server together: configuration, storage,
// access control, rendering and the HTTP gateway, and runs it until a
// termination signal arrives.
package server

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/nowstatus/internal/logging"
	"github.com/dmitrijs2005/nowstatus/internal/server/access"
	"github.com/dmitrijs2005/nowstatus/internal/server/config"
	"github.com/dmitrijs2005/nowstatus/internal/server/credentials"
	"github.com/dmitrijs2005/nowstatus/internal/server/httpapi"
	"github.com/dmitrijs2005/nowstatus/internal/server/render"
	"github.com/dmitrijs2005/nowstatus/internal/server/repositories/statuses"
	"github.com/dmitrijs2005/nowstatus/internal/server/services"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// logOutput is where the JSON log lines go.
var logOutput io.Writer = os.Stdout

type App struct {
	config *config.Config
	logger logging.Logger
	server *httpapi.Server
	store  io.Closer
}

// NewApp builds every component from c. Missing secrets and unusable
// storage are reported here, before anything listens.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSON(logOutput, c.LogLevel)
	logger.Info(ctx, "Configuration loaded", "config", c)

	creds, err := credentials.New(c.AdminSecret, c.FamilySecret, c.FriendSecret)
	if err != nil {
		return nil, err
	}

	repo, closer, err := statuses.Open(ctx, c, logger)
	if err != nil {
		return nil, fmt.Errorf("storage init error: %w", err)
	}

	if logging.ParseLevel(c.LogLevel) > slog.LevelDebug {
		gin.SetMode(gin.ReleaseMode)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	svc := services.NewStatusService(access.NewController(creds), repo, render.NewRenderer(c.Owner), logger)
	srv := httpapi.NewServer(c.ListenAddr, c.ShutdownTimeout, svc, httpapi.NewMetrics(reg), logger)

	return &App{config: c, logger: logger, server: srv, store: closer}, nil
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

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) error {
	if err := app.server.Run(ctx); err != nil {
		app.logger.Error(ctx, "HTTP server failed", "error", err)
		cancelFunc()
		return err
	}
	return nil
}

// Run serves until ctx is cancelled or a termination signal arrives, then
// releases the storage backend.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var (
		wg     sync.WaitGroup
		runErr error
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		runErr = app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.store.Close(); err != nil {
		app.logger.Error(ctx, "Closing storage failed", "error", err)
	}
	app.logger.Info(ctx, "App stopped")

	return runErr
}
