package controller

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fhuaranca/dniadmin/internal/client/api"
	"github.com/fhuaranca/dniadmin/internal/client/models"
	"github.com/fhuaranca/dniadmin/internal/client/notify"
	"github.com/fhuaranca/dniadmin/internal/client/render"
	"github.com/fhuaranca/dniadmin/internal/client/session"
	"github.com/fhuaranca/dniadmin/internal/logging"
)

// fakeClient only needs Login here; the rest satisfies api.Client.
type fakeClient struct {
	loginOK  bool
	loginErr error

	lastUser string
	lastPass string
}

func (f *fakeClient) Login(ctx context.Context, username, password string) (bool, error) {
	f.lastUser = username
	f.lastPass = password
	return f.loginOK, f.loginErr
}

func (f *fakeClient) Lookup(ctx context.Context, dni string) (*models.Persona, error) {
	return nil, api.ErrNotFound
}
func (f *fakeClient) GetConfig(ctx context.Context) (*models.ConfigStatus, error) { return nil, nil }
func (f *fakeClient) UpdateConfig(ctx context.Context, token string) error        { return nil }
func (f *fakeClient) ListTokens(ctx context.Context) ([]models.APIToken, error)   { return nil, nil }
func (f *fakeClient) CreateToken(ctx context.Context, n, d string) (*models.APIToken, error) {
	return nil, nil
}
func (f *fakeClient) DeleteToken(ctx context.Context, id int64) error { return nil }
func (f *fakeClient) ToggleToken(ctx context.Context, id int64) (*models.APIToken, error) {
	return nil, nil
}
func (f *fakeClient) ListPersonas(ctx context.Context, q models.ListQuery) (*models.ListResult, error) {
	return &models.ListResult{}, nil
}
func (f *fakeClient) CreatePersona(ctx context.Context, p models.Persona) (*models.Persona, error) {
	return nil, nil
}
func (f *fakeClient) UpdatePersona(ctx context.Context, id int64, p models.Persona) (*models.Persona, error) {
	return nil, nil
}
func (f *fakeClient) DeletePersona(ctx context.Context, id int64) error          { return nil }
func (f *fakeClient) DownloadBackup(ctx context.Context) ([]byte, string, error) { return nil, "", nil }

type sessionRecorder struct {
	render.Nop
	mu     sync.Mutex
	states []render.SessionState
}

func (r *sessionRecorder) RenderSession(s render.SessionState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, s)
}

func (r *sessionRecorder) last() (render.SessionState, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.states) == 0 {
		return render.SessionState{}, false
	}
	return r.states[len(r.states)-1], true
}

func setup(t *testing.T, fake *fakeClient) (*Controller, *session.Store, *sessionRecorder, *notify.Sink) {
	t.Helper()
	sessions := session.NewStore()
	target := &sessionRecorder{}
	sink := notify.NewSink(time.Minute, nil)
	t.Cleanup(sink.Close)
	log := logging.NewSlogLogger(slog.New(slog.DiscardHandler))
	return New(sessions, fake, target, sink, log), sessions, target, sink
}

func TestLogin_WrongCredentialsStaysUnauthenticated(t *testing.T) {
	fake := &fakeClient{loginOK: false}
	c, sessions, target, _ := setup(t, fake)

	ok, err := c.Login(context.Background(), "admin", "wrong")
	require.NoError(t, err)
	require.False(t, ok)

	require.False(t, c.Authenticated())
	require.False(t, sessions.Valid())
	_, rendered := target.last()
	require.False(t, rendered)
}

func TestLogin_SuccessCommitsSession(t *testing.T) {
	fake := &fakeClient{loginOK: true}
	c, sessions, target, _ := setup(t, fake)

	ok, err := c.Login(context.Background(), "admin", "right")
	require.NoError(t, err)
	require.True(t, ok)

	require.True(t, c.Authenticated())
	require.Equal(t, "admin", sessions.Username())
	require.Equal(t, "admin", fake.lastUser)
	require.Equal(t, "right", fake.lastPass)

	state, rendered := target.last()
	require.True(t, rendered)
	require.True(t, state.Authenticated)
	require.Equal(t, "admin", state.Username)
}

func TestLogin_TransportErrorReported(t *testing.T) {
	fake := &fakeClient{loginErr: api.ErrUnavailable}
	c, sessions, _, _ := setup(t, fake)

	ok, err := c.Login(context.Background(), "admin", "right")
	require.ErrorIs(t, err, api.ErrUnavailable)
	require.False(t, ok)
	require.False(t, sessions.Valid())
}

func TestLogout_Unconditional(t *testing.T) {
	fake := &fakeClient{loginOK: true}
	c, sessions, target, _ := setup(t, fake)

	_, err := c.Login(context.Background(), "admin", "right")
	require.NoError(t, err)

	c.Logout(context.Background())
	require.False(t, sessions.Valid())

	state, _ := target.last()
	require.False(t, state.Authenticated)

	// logging out twice is fine
	c.Logout(context.Background())
	require.False(t, c.Authenticated())
}

func TestHandleUnauthorized_RendersLogoutAndWarns(t *testing.T) {
	fake := &fakeClient{loginOK: true}
	c, _, target, sink := setup(t, fake)

	_, err := c.Login(context.Background(), "admin", "right")
	require.NoError(t, err)

	c.HandleUnauthorized()

	state, _ := target.last()
	require.False(t, state.Authenticated)

	var warned bool
	for _, n := range sink.Active() {
		if n.Severity == notify.SeverityWarning {
			warned = true
		}
	}
	require.True(t, warned)
}
