// Package controller owns the login/logout state machine. It is the only
// component that commits or destroys sessions deliberately; the gateway's
// 401 side effect routes back here so a forced logout is rendered exactly
// like a voluntary one.
package controller

import (
	"context"

	"github.com/fhuaranca/dniadmin/internal/client/api"
	"github.com/fhuaranca/dniadmin/internal/client/notify"
	"github.com/fhuaranca/dniadmin/internal/client/render"
	"github.com/fhuaranca/dniadmin/internal/client/session"
	"github.com/fhuaranca/dniadmin/internal/logging"
)

// Controller drives the two-state session machine: Unauthenticated
// (initial) and Authenticated.
type Controller struct {
	sessions *session.Store
	client   api.Client
	target   render.Target
	sink     *notify.Sink
	log      logging.Logger
}

// New wires a controller. Call HandleUnauthorized from the gateway's
// unauthorized hook to complete the loop.
func New(sessions *session.Store, client api.Client, target render.Target, sink *notify.Sink, log logging.Logger) *Controller {
	return &Controller{sessions: sessions, client: client, target: target, sink: sink, log: log}
}

// Login validates credentials against the service. Wrong credentials are
// an expected outcome: the state stays Unauthenticated and ok=false is
// returned without an error. Only on success are the credentials committed
// to the store, which flips the UI into the authenticated state.
func (c *Controller) Login(ctx context.Context, username, password string) (bool, error) {
	ok, err := c.client.Login(ctx, username, password)
	if err != nil {
		c.log.Error(ctx, "login request failed", "err", err)
		c.sink.Notify("connection error, try again", notify.SeverityError)
		return false, err
	}
	if !ok {
		c.sink.Notify("invalid credentials", notify.SeverityError)
		return false, nil
	}

	c.sessions.Set(username, password)
	c.target.RenderSession(render.SessionState{Authenticated: true, Username: username})
	c.sink.Notify("logged in", notify.SeveritySuccess)
	c.log.Info(ctx, "session established", "user", username)
	return true, nil
}

// Logout clears the session unconditionally.
func (c *Controller) Logout(ctx context.Context) {
	c.sessions.Clear()
	c.target.RenderSession(render.SessionState{})
	c.log.Info(ctx, "session cleared")
}

// Authenticated reports the current state.
func (c *Controller) Authenticated() bool {
	return c.sessions.Valid()
}

// HandleUnauthorized reacts to a 401 observed on any in-flight request.
// The gateway has already invalidated the credential store by the time
// this runs; what remains is moving the UI to the unauthenticated state
// and telling the operator why.
func (c *Controller) HandleUnauthorized() {
	c.target.RenderSession(render.SessionState{})
	c.sink.Notify("session expired, please log in again", notify.SeverityWarning)
}
