package editor

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
	"github.com/fhuaranca/dniadmin/internal/client/query"
	"github.com/fhuaranca/dniadmin/internal/client/render"
	"github.com/fhuaranca/dniadmin/internal/client/session"
	"github.com/fhuaranca/dniadmin/internal/logging"
)

// ---- fakes ----

type fakeClient struct {
	mu sync.Mutex

	listCalls   int
	lastQuery   models.ListQuery
	tokens        []models.APIToken
	tokenCalls    int
	listTokensErr error
	createErr   error
	lastCreated models.Persona
	updateErr   error
	deleteErr   error
	toggleErr   error

	lookupRes *models.Persona
	lookupErr error

	backupData []byte
	backupName string
	backupErr  error

	// createGate, when set, blocks CreatePersona until closed
	createGate chan struct{}
}

func (f *fakeClient) Login(ctx context.Context, u, p string) (bool, error) { return true, nil }

func (f *fakeClient) Lookup(ctx context.Context, dni string) (*models.Persona, error) {
	return f.lookupRes, f.lookupErr
}

func (f *fakeClient) GetConfig(ctx context.Context) (*models.ConfigStatus, error) {
	return &models.ConfigStatus{APISPeruTokenConfigured: true}, nil
}

func (f *fakeClient) UpdateConfig(ctx context.Context, token string) error { return nil }

func (f *fakeClient) ListTokens(ctx context.Context) ([]models.APIToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokenCalls++
	if f.listTokensErr != nil {
		return nil, f.listTokensErr
	}
	out := make([]models.APIToken, len(f.tokens))
	copy(out, f.tokens)
	return out, nil
}

func (f *fakeClient) CreateToken(ctx context.Context, nombre, descripcion string) (*models.APIToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := models.APIToken{ID: int64(len(f.tokens) + 1), Nombre: nombre, Descripcion: descripcion, Activo: true}
	f.tokens = append(f.tokens, t)
	return &t, nil
}

func (f *fakeClient) DeleteToken(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	kept := f.tokens[:0]
	for _, t := range f.tokens {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	f.tokens = kept
	return nil
}

func (f *fakeClient) ToggleToken(ctx context.Context, id int64) (*models.APIToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.toggleErr != nil {
		return nil, f.toggleErr
	}
	for i := range f.tokens {
		if f.tokens[i].ID == id {
			f.tokens[i].Activo = !f.tokens[i].Activo
			t := f.tokens[i]
			return &t, nil
		}
	}
	return nil, api.ErrNotFound
}

func (f *fakeClient) ListPersonas(ctx context.Context, q models.ListQuery) (*models.ListResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	f.lastQuery = q
	return &models.ListResult{Page: q.Page, PerPage: q.PageSize, TotalPages: 1}, nil
}

func (f *fakeClient) CreatePersona(ctx context.Context, p models.Persona) (*models.Persona, error) {
	if f.createGate != nil {
		<-f.createGate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.lastCreated = p
	created := p
	created.ID = 1
	return &created, nil
}

func (f *fakeClient) UpdatePersona(ctx context.Context, id int64, p models.Persona) (*models.Persona, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	updated := p
	updated.ID = id
	return &updated, nil
}

func (f *fakeClient) DeletePersona(ctx context.Context, id int64) error { return f.deleteErr }

func (f *fakeClient) DownloadBackup(ctx context.Context) ([]byte, string, error) {
	return f.backupData, f.backupName, f.backupErr
}

func (f *fakeClient) listCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls
}

type fakeSaver struct {
	mu    sync.Mutex
	calls int
	name  string
	data  []byte
	err   error
}

func (s *fakeSaver) Save(filename string, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.name = filename
	s.data = data
	if s.err != nil {
		return "", s.err
	}
	return "/backups/" + filename, nil
}

type recordingTarget struct {
	render.Nop
	mu         sync.Mutex
	tokenLists [][]models.APIToken
	lookups    []*models.Persona
	lookupErrs []error
}

func (r *recordingTarget) RenderTokenList(tokens []models.APIToken) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokenLists = append(r.tokenLists, tokens)
}

func (r *recordingTarget) RenderLookupResult(p *models.Persona, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lookups = append(r.lookups, p)
	r.lookupErrs = append(r.lookupErrs, err)
}

func setup(t *testing.T, fake *fakeClient) (*Editor, *recordingTarget, *fakeSaver) {
	t.Helper()
	target := &recordingTarget{}
	sessions := session.NewStore()
	sessions.Set("admin", "pw")
	sink := notify.NewSink(time.Minute, nil)
	t.Cleanup(sink.Close)
	log := logging.NewSlogLogger(slog.New(slog.DiscardHandler))
	coord := query.New(fake, sessions, target, sink, log, 10*time.Millisecond)
	saver := &fakeSaver{}
	return New(fake, coord, target, sink, log, saver), target, saver
}

// ---- TESTS ----

func TestValidateNroDoc(t *testing.T) {
	tests := []struct {
		name   string
		nrodoc string
		valid  bool
	}{
		{"valid", "12345678", true},
		{"too short", "1234567", false},
		{"too long", "123456789", false},
		{"letters", "1234567a", false},
		{"empty", "", false},
		{"repeated digits", "11111111", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateNroDoc(tt.nrodoc)
			if tt.valid {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, ErrInvalidDocumentNumber)
			}
		})
	}
}

func TestCreate_InvalidDocNumberFailsFast(t *testing.T) {
	fake := &fakeClient{}
	e, _, _ := setup(t, fake)

	err := e.Create(context.Background(), models.Persona{NroDoc: "123"})
	require.ErrorIs(t, err, ErrInvalidDocumentNumber)

	// nothing was dispatched and no refresh happened
	time.Sleep(30 * time.Millisecond)
	require.Zero(t, fake.listCallCount())
}

func TestCreate_SuccessRefreshesList(t *testing.T) {
	fake := &fakeClient{}
	e, _, _ := setup(t, fake)

	err := e.Create(context.Background(), models.Persona{NroDoc: "12345678", Nombres: "MARIA"})
	require.NoError(t, err)
	require.Equal(t, "MARIA", fake.lastCreated.Nombres)

	require.Eventually(t, func() bool {
		return fake.listCallCount() == 1
	}, time.Second, 5*time.Millisecond)
}

func TestCreate_ServerRejectionSurfaced(t *testing.T) {
	fake := &fakeClient{createErr: &api.ClientError{Code: 400, Message: "duplicate document number"}}
	e, _, _ := setup(t, fake)

	err := e.Create(context.Background(), models.Persona{NroDoc: "12345678"})
	var ce *api.ClientError
	require.ErrorAs(t, err, &ce)

	time.Sleep(30 * time.Millisecond)
	require.Zero(t, fake.listCallCount())
}

func TestMutations_NotPipelined(t *testing.T) {
	fake := &fakeClient{createGate: make(chan struct{})}
	e, _, _ := setup(t, fake)

	done := make(chan error, 1)
	go func() {
		done <- e.Create(context.Background(), models.Persona{NroDoc: "12345678"})
	}()

	// the first mutation is parked inside the gateway call
	require.Eventually(t, func() bool {
		return e.Delete(context.Background(), 1) == ErrBusy
	}, time.Second, 5*time.Millisecond)

	close(fake.createGate)
	require.NoError(t, <-done)
}

func TestCreateToken_RefreshFailureStillReturnsToken(t *testing.T) {
	fake := &fakeClient{listTokensErr: api.ErrUnavailable}
	e, _, _ := setup(t, fake)

	tok, err := e.CreateToken(context.Background(), "ci", "pipeline")
	require.ErrorIs(t, err, api.ErrUnavailable)
	require.NotNil(t, tok)
	require.Equal(t, "ci", tok.Nombre)
}

func TestToggleToken_RefreshReflectsNewState(t *testing.T) {
	fake := &fakeClient{tokens: []models.APIToken{{ID: 7, Nombre: "ci", Activo: true}}}
	e, target, _ := setup(t, fake)

	require.NoError(t, e.ToggleToken(context.Background(), 7))

	target.mu.Lock()
	defer target.mu.Unlock()
	require.NotEmpty(t, target.tokenLists)
	last := target.tokenLists[len(target.tokenLists)-1]
	require.Len(t, last, 1)
	require.False(t, last[0].Activo)
}

func TestLookup_NotFoundRendered(t *testing.T) {
	fake := &fakeClient{lookupErr: api.ErrNotFound}
	e, target, _ := setup(t, fake)

	_, err := e.Lookup(context.Background(), "87654321")
	require.ErrorIs(t, err, api.ErrNotFound)

	target.mu.Lock()
	defer target.mu.Unlock()
	require.Len(t, target.lookups, 1)
	require.Nil(t, target.lookups[0])
	require.ErrorIs(t, target.lookupErrs[0], api.ErrNotFound)
}

func TestBackup_RateLimitedSkipsSave(t *testing.T) {
	fake := &fakeClient{backupErr: api.ErrRateLimited}
	e, _, saver := setup(t, fake)

	_, err := e.Backup(context.Background())
	require.ErrorIs(t, err, api.ErrRateLimited)
	require.Zero(t, saver.calls)
}

func TestBackup_SavesWithServerFilename(t *testing.T) {
	fake := &fakeClient{backupData: []byte("sqlite bytes"), backupName: "backup_personas_20260901.db"}
	e, _, saver := setup(t, fake)

	path, err := e.Backup(context.Background())
	require.NoError(t, err)
	require.Equal(t, "/backups/backup_personas_20260901.db", path)
	require.Equal(t, 1, saver.calls)
	require.Equal(t, []byte("sqlite bytes"), saver.data)
}
