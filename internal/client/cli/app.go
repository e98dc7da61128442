package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/fhuaranca/dniadmin/internal/client/api"
	"github.com/fhuaranca/dniadmin/internal/client/config"
	"github.com/fhuaranca/dniadmin/internal/client/controller"
	"github.com/fhuaranca/dniadmin/internal/client/editor"
	"github.com/fhuaranca/dniadmin/internal/client/notify"
	"github.com/fhuaranca/dniadmin/internal/client/query"
	"github.com/fhuaranca/dniadmin/internal/client/session"
	"github.com/fhuaranca/dniadmin/internal/logging"
)

// App wires the session store, HTTP gateway, list coordinator and editor
// into an interactive terminal client.
type App struct {
	config   *config.Config
	sessions *session.Store
	auth     *controller.Controller
	coord    *query.Coordinator
	editor   *editor.Editor
	sink     *notify.Sink
	reader   *bufio.Reader
	log      logging.Logger
}

func NewApp(c *config.Config) (*App, error) {
	if c.ServerURL == "" {
		return nil, errors.New("server URL is required")
	}

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))
	term := NewTerminal(os.Stdout)
	sink := notify.NewSink(notify.DefaultTTL, term)
	sessions := session.NewStore()

	apiClient := api.NewHTTPClient(c.ServerURL, sessions, c.RequestTimeout)

	auth := controller.New(sessions, apiClient, term, sink, logger)
	coord := query.New(apiClient, sessions, term, sink, logger, c.SearchDebounce)
	ed := editor.New(apiClient, coord, term, sink, logger, editor.BackupDir{Dir: c.BackupDir})

	// A 401 on any authenticated call forces a logout; the controller
	// resets the UI and tells the user to sign in again.
	apiClient.SetUnauthorizedHandler(auth.HandleUnauthorized)

	return &App{
		config:   c,
		sessions: sessions,
		auth:     auth,
		coord:    coord,
		editor:   ed,
		sink:     sink,
		reader:   bufio.NewReader(os.Stdin),
		log:      logger,
	}, nil
}

func (a *App) isLoggedIn() bool {
	return a.auth.Authenticated()
}

func (a *App) getStatus() string {
	if u := a.sessions.Username(); u != "" {
		return fmt.Sprintf("(%s)", u)
	}
	return ""
}

// Run prompts for credentials once and then hands control to the REPL.
// It blocks until the user exits or stdin is closed.
func (a *App) Run(ctx context.Context) {
	defer a.sink.Close()

	fmt.Println("DNI Admin CLI (type 'help' for commands)")
	_ = a.Login(ctx)

	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.getStatus, scanner)
}
