package server

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"CryptoView/internal/scheduler"
	"CryptoView/internal/service/stream"
	"CryptoView/internal/usecase"
	"CryptoView/pkg/config"
	xhttp "CryptoView/pkg/http"
	applogger "CryptoView/pkg/logger"
)

// Components are the long-lived parts the App starts and stops.
type Components struct {
	Roster    *usecase.MarketRoster
	Hub       *stream.Hub
	Sessions  *usecase.SearchSessions
	Scheduler *scheduler.Scheduler
	// closed in order after everything else has stopped
	Closers []io.Closer
}

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	logger     *applogger.Logger
	httpServer *xhttp.Server
	Components
	unsubscribe func()
}

// New creates a new App instance with all dependencies.
func New(cfg *config.Config, logger *applogger.Logger, srv *xhttp.Server, c Components) *App {
	if logger == nil {
		logger = applogger.NewNop()
	}
	return &App{cfg: cfg, logger: logger, httpServer: srv, Components: c}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := a.Start(ctx); err != nil {
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.logger.Info("shutdown signal received")
	return a.Shutdown(ctx)
}

// Start loads the roster, hooks it to the websocket hub and starts the
// scheduler and the HTTP server.
func (a *App) Start(ctx context.Context) error {
	a.unsubscribe = a.Roster.OnChange(a.Hub.PublishRoster)

	if err := a.Roster.LoadInitial(ctx); err != nil {
		// an empty roster still serves search and add
		a.logger.Warn("initial roster load failed", applogger.Error(err))
	}
	snap := a.Roster.Snapshot()
	a.Hub.PublishRoster(snap)
	a.logger.Info("initial roster published", applogger.Strings("ids", snap.IDs))

	if err := a.Scheduler.Register(a.cfg.Scheduler.Refresh, a.cfg.Scheduler.Sweep); err != nil {
		return fmt.Errorf("scheduler: %w", err)
	}
	a.Scheduler.Start()

	if err := a.httpServer.Start(); err != nil {
		a.logger.Error("http server start error", applogger.Error(err))
		return err
	}
	return nil
}

// Shutdown stops accepting work first, then releases infrastructure clients.
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("shutting down...")

	a.Scheduler.Stop()
	if a.unsubscribe != nil {
		a.unsubscribe()
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, a.httpServer.ShutdownTimeout())
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.logger.Error("http shutdown error", applogger.Error(err))
	}

	if err := a.Hub.Close(); err != nil {
		a.logger.Warn("websocket hub close error", applogger.Error(err))
	}
	a.Sessions.CloseAll()

	for _, c := range a.Closers {
		if c == nil {
			continue
		}
		if err := c.Close(); err != nil {
			a.logger.Warn("close error", applogger.String("resource", fmt.Sprintf("%T", c)), applogger.Error(err))
		}
	}

	a.logger.Info("shutdown complete")
	return a.logger.Close()
}
