package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/fhuaranca/dniadmin/internal/client/models"
	"github.com/fhuaranca/dniadmin/internal/client/session"
)

// DefaultBackupFilename is used when the backup response carries no usable
// Content-Disposition header.
const DefaultBackupFilename = "backup_personas.db"

// HTTPClient implements Client over net/http against the service's REST
// API. It reads the Authorization header from the session store on every
// request and clears the store as a side effect of any authenticated 401,
// so callers never manage credentials themselves.
type HTTPClient struct {
	baseURL  string
	http     *http.Client
	sessions *session.Store

	// onUnauthorized, when set, runs after the session store has been
	// cleared by a 401. Fired once per 401 response.
	onUnauthorized func()
}

// NewHTTPClient builds a client for the service at baseURL (e.g.
// "http://127.0.0.1:8000"). The timeout applies per attempt; there is
// never more than one attempt.
func NewHTTPClient(baseURL string, sessions *session.Store, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL:  baseURL,
		http:     &http.Client{Timeout: timeout},
		sessions: sessions,
	}
}

// SetUnauthorizedHandler registers the forced-logout hook. The session
// controller uses it to abandon the authenticated UI state when any
// component's request comes back 401.
func (c *HTTPClient) SetUnauthorizedHandler(fn func()) {
	c.onUnauthorized = fn
}

// envelope is the service's standard response wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// do issues a single request and maps the outcome to the package's error
// contract. When out is non-nil the envelope's data payload is decoded
// into it.
func (c *HTTPClient) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth, ok := c.sessions.AuthHeader(); ok {
		req.Header.Set("Authorization", auth)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if err := c.checkStatus(resp); err != nil {
		return err
	}

	if out == nil {
		return nil
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}
	if len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("%w: decode payload: %v", ErrUnavailable, err)
	}
	return nil
}

// checkStatus translates a non-2xx response into the error contract. A 401
// on an authenticated request destroys the session before returning, so
// every caller observes a consistent logged-out state.
func (c *HTTPClient) checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		if c.sessions.Valid() {
			c.sessions.Clear()
			if c.onUnauthorized != nil {
				c.onUnauthorized()
			}
		}
		return ErrUnauthorized
	case resp.StatusCode == http.StatusTooManyRequests:
		return ErrRateLimited
	case resp.StatusCode == http.StatusNotFound:
		if msg := decodeMessage(resp.Body); msg != "" {
			return fmt.Errorf("%s: %w", msg, ErrNotFound)
		}
		return ErrNotFound
	case resp.StatusCode >= 500:
		return ErrUnavailable
	default:
		msg := decodeMessage(resp.Body)
		if msg == "" {
			msg = resp.Status
		}
		return &ClientError{Code: resp.StatusCode, Message: msg}
	}
}

// decodeMessage pulls the human-readable message out of an error
// envelope. Best effort only.
func decodeMessage(r io.Reader) string {
	var env envelope
	if err := json.NewDecoder(r).Decode(&env); err != nil {
		return ""
	}
	return env.Message
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login posts credentials to /api/login. The endpoint itself is
// unauthenticated, so a 401 here means "wrong credentials", an expected
// outcome reported as (false, nil).
func (c *HTTPClient) Login(ctx context.Context, username, password string) (bool, error) {
	err := c.do(ctx, http.MethodPost, "/api/login", loginRequest{Username: username, Password: password}, nil)
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (c *HTTPClient) Lookup(ctx context.Context, dni string) (*models.Persona, error) {
	var p models.Persona
	if err := c.do(ctx, http.MethodGet, "/api/buscar/"+url.PathEscape(dni), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *HTTPClient) GetConfig(ctx context.Context) (*models.ConfigStatus, error) {
	var cs models.ConfigStatus
	if err := c.do(ctx, http.MethodGet, "/api/config", nil, &cs); err != nil {
		return nil, err
	}
	return &cs, nil
}

type configUpdateRequest struct {
	APISPeruToken string `json:"apisperu_token"`
}

func (c *HTTPClient) UpdateConfig(ctx context.Context, apisperuToken string) error {
	return c.do(ctx, http.MethodPut, "/api/config", configUpdateRequest{APISPeruToken: apisperuToken}, nil)
}

type tokenListData struct {
	Tokens []models.APIToken `json:"tokens"`
	Total  int               `json:"total"`
}

func (c *HTTPClient) ListTokens(ctx context.Context) ([]models.APIToken, error) {
	var data tokenListData
	if err := c.do(ctx, http.MethodGet, "/api/tokens", nil, &data); err != nil {
		return nil, err
	}
	return data.Tokens, nil
}

type tokenCreateRequest struct {
	Nombre      string `json:"nombre"`
	Descripcion string `json:"descripcion,omitempty"`
}

func (c *HTTPClient) CreateToken(ctx context.Context, nombre, descripcion string) (*models.APIToken, error) {
	var t models.APIToken
	err := c.do(ctx, http.MethodPost, "/api/tokens", tokenCreateRequest{Nombre: nombre, Descripcion: descripcion}, &t)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *HTTPClient) DeleteToken(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/api/tokens/"+strconv.FormatInt(id, 10), nil, nil)
}

func (c *HTTPClient) ToggleToken(ctx context.Context, id int64) (*models.APIToken, error) {
	var t models.APIToken
	err := c.do(ctx, http.MethodPatch, "/api/tokens/"+strconv.FormatInt(id, 10)+"/toggle", nil, &t)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *HTTPClient) ListPersonas(ctx context.Context, q models.ListQuery) (*models.ListResult, error) {
	params := url.Values{}
	if q.SearchTerm != "" {
		params.Set("q", q.SearchTerm)
	}
	params.Set("page", strconv.Itoa(q.Page))
	params.Set("per_page", strconv.Itoa(q.PageSize))

	var result models.ListResult
	if err := c.do(ctx, http.MethodGet, "/api/personas?"+params.Encode(), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) CreatePersona(ctx context.Context, p models.Persona) (*models.Persona, error) {
	var created models.Persona
	if err := c.do(ctx, http.MethodPost, "/api/personas", p, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *HTTPClient) UpdatePersona(ctx context.Context, id int64, p models.Persona) (*models.Persona, error) {
	var updated models.Persona
	if err := c.do(ctx, http.MethodPut, "/api/personas/"+strconv.FormatInt(id, 10), p, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (c *HTTPClient) DeletePersona(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/api/personas/"+strconv.FormatInt(id, 10), nil, nil)
}

// DownloadBackup fetches the single-file database backup. Unlike the JSON
// endpoints the body is returned verbatim; the filename comes from the
// Content-Disposition header when the server provides one.
func (c *HTTPClient) DownloadBackup(ctx context.Context) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/backup", nil)
	if err != nil {
		return nil, "", fmt.Errorf("build request: %w", err)
	}
	if auth, ok := c.sessions.AuthHeader(); ok {
		req.Header.Set("Authorization", auth)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if err := c.checkStatus(resp); err != nil {
		return nil, "", err
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("%w: read backup: %v", ErrUnavailable, err)
	}
	return data, backupFilename(resp.Header.Get("Content-Disposition")), nil
}

// backupFilename extracts the attachment filename from a
// Content-Disposition header, falling back to DefaultBackupFilename.
func backupFilename(disposition string) string {
	if disposition == "" {
		return DefaultBackupFilename
	}
	_, params, err := mime.ParseMediaType(disposition)
	if err != nil {
		return DefaultBackupFilename
	}
	if name := params["filename"]; name != "" {
		return name
	}
	return DefaultBackupFilename
}
