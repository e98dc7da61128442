package stubapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fhuaranca/dniadmin/internal/logging"
)

// App runs the stub service as a standalone process.
type App struct {
	config *Config
	logger logging.Logger
}

func NewApp(c *Config) (*App, error) {
	if c.AdminUser == "" || c.AdminPassword == "" {
		return nil, errors.New("admin credentials are required")
	}
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	return &App{config: c, logger: logger}, nil
}

func (a *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run opens the store, serves the API, and shuts down cleanly on SIGINT,
// SIGTERM or SIGQUIT.
func (a *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	a.initSignalHandler(cancelFunc)

	store, err := Open(ctx, a.config.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	srv, err := NewServer(store, a.config.AdminUser, a.config.AdminPassword, a.logger)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:    a.config.Addr,
		Handler: srv.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info(ctx, "stub service listening", "addr", a.config.Addr, "db", a.config.DBPath)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
