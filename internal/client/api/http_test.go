package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fhuaranca/dniadmin/internal/client/models"
	"github.com/fhuaranca/dniadmin/internal/client/session"
)

func newClient(t *testing.T, handler http.Handler) (*HTTPClient, *session.Store) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	sessions := session.NewStore()
	return NewHTTPClient(srv.URL, sessions, 5*time.Second), sessions
}

func writeEnvelope(w http.ResponseWriter, code int, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	body := map[string]any{"success": code < 300, "code": code, "message": message}
	if data != nil {
		body["data"] = data
	}
	_ = json.NewEncoder(w).Encode(body)
}

func TestDo_AttachesBasicAuthWhenSessionHeld(t *testing.T) {
	var gotAuth string
	client, sessions := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		writeEnvelope(w, 200, "ok", models.ConfigStatus{APISPeruTokenConfigured: true})
	}))

	sessions.Set("admin", "pw")
	want, _ := sessions.AuthHeader()

	cs, err := client.GetConfig(context.Background())
	require.NoError(t, err)
	require.True(t, cs.APISPeruTokenConfigured)
	require.Equal(t, want, gotAuth)
}

func TestDo_NoAuthHeaderWithoutSession(t *testing.T) {
	var gotAuth string
	client, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		writeEnvelope(w, 200, "ok", nil)
	}))

	_, err := client.GetConfig(context.Background())
	require.NoError(t, err)
	require.Empty(t, gotAuth)
}

func TestDo_401ClearsSessionBeforeReturning(t *testing.T) {
	client, sessions := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, 401, "bad credentials", nil)
	}))
	sessions.Set("admin", "expired")

	var hookCalls int
	client.SetUnauthorizedHandler(func() {
		hookCalls++
		// by the time the hook runs the store must already be empty
		require.False(t, sessions.Valid())
	})

	_, err := client.ListTokens(context.Background())
	require.ErrorIs(t, err, ErrUnauthorized)
	require.False(t, sessions.Valid())
	require.Equal(t, 1, hookCalls)

	// a second 401 without a session must not re-fire the hook
	_, err = client.ListTokens(context.Background())
	require.ErrorIs(t, err, ErrUnauthorized)
	require.Equal(t, 1, hookCalls)
}

func TestLogin_WrongCredentialsIsNotAnError(t *testing.T) {
	client, sessions := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, 401, "bad credentials", nil)
	}))

	var hookCalls int
	client.SetUnauthorizedHandler(func() { hookCalls++ })

	ok, err := client.Login(context.Background(), "admin", "wrong")
	require.NoError(t, err)
	require.False(t, ok)
	require.False(t, sessions.Valid())
	// login precedes having a session; no forced logout fires
	require.Zero(t, hookCalls)
}

func TestLogin_Success(t *testing.T) {
	client, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/login", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "admin", body["username"])
		writeEnvelope(w, 200, "ok", nil)
	}))

	ok, err := client.Login(context.Background(), "admin", "right")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestDo_429LeavesSessionIntact(t *testing.T) {
	client, sessions := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, 429, "too many requests", nil)
	}))
	sessions.Set("admin", "pw")

	_, _, err := client.DownloadBackup(context.Background())
	require.ErrorIs(t, err, ErrRateLimited)
	require.True(t, sessions.Valid())
}

func TestDo_404MapsToNotFound(t *testing.T) {
	client, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, 404, "Persona no encontrada", nil)
	}))

	_, err := client.Lookup(context.Background(), "87654321")
	require.ErrorIs(t, err, ErrNotFound)
	require.Contains(t, err.Error(), "Persona no encontrada")
}

func TestDo_400CarriesServerMessage(t *testing.T) {
	client, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, 400, "Ya existe una persona con ese DNI", nil)
	}))

	_, err := client.CreatePersona(context.Background(), models.Persona{NroDoc: "12345678"})
	var ce *ClientError
	require.ErrorAs(t, err, &ce)
	require.Equal(t, 400, ce.Code)
	require.Equal(t, "Ya existe una persona con ese DNI", ce.Message)
}

func TestDo_NetworkFailureMapsToUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	sessions := session.NewStore()
	client := NewHTTPClient(srv.URL, sessions, time.Second)
	srv.Close() // connection refused from here on

	_, err := client.GetConfig(context.Background())
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestListPersonas_SendsQueryAndUnwrapsEnvelope(t *testing.T) {
	client, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/personas", r.URL.Path)
		require.Equal(t, "garcia", r.URL.Query().Get("q"))
		require.Equal(t, "2", r.URL.Query().Get("page"))
		require.Equal(t, "20", r.URL.Query().Get("per_page"))

		writeEnvelope(w, 200, "ok", models.ListResult{
			Items:      []models.Persona{{ID: 9, NroDoc: "12345678", Nombres: "JUAN"}},
			Total:      21,
			Page:       2,
			PerPage:    20,
			TotalPages: 2,
		})
	}))

	res, err := client.ListPersonas(context.Background(), models.ListQuery{SearchTerm: "garcia", Page: 2, PageSize: 20})
	require.NoError(t, err)
	require.Equal(t, 21, res.Total)
	require.Equal(t, 2, res.Page)
	require.Len(t, res.Items, 1)
	require.Equal(t, "JUAN", res.Items[0].Nombres)
}

func TestListTokens_UnwrapsNestedList(t *testing.T) {
	client, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, 200, "ok", map[string]any{
			"tokens": []models.APIToken{{ID: 1, Nombre: "ci", Activo: true}},
			"total":  1,
		})
	}))

	tokens, err := client.ListTokens(context.Background())
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	require.Equal(t, "ci", tokens[0].Nombre)
}

func TestDownloadBackup_FilenameFromContentDisposition(t *testing.T) {
	client, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Disposition", `attachment; filename="backup_personas_20260901_1200.db"`)
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write([]byte("db-bytes"))
	}))

	data, name, err := client.DownloadBackup(context.Background())
	require.NoError(t, err)
	require.Equal(t, []byte("db-bytes"), data)
	require.Equal(t, "backup_personas_20260901_1200.db", name)
}

func TestDownloadBackup_FallbackFilename(t *testing.T) {
	client, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("db-bytes"))
	}))

	_, name, err := client.DownloadBackup(context.Background())
	require.NoError(t, err)
	require.Equal(t, DefaultBackupFilename, name)
}

func TestBackupFilename(t *testing.T) {
	tests := []struct {
		disposition string
		want        string
	}{
		{`attachment; filename="x.db"`, "x.db"},
		{`attachment`, DefaultBackupFilename},
		{"", DefaultBackupFilename},
		{"garbage;;;", DefaultBackupFilename},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, backupFilename(tt.disposition))
	}
}
