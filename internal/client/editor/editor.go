// Package editor issues create/update/delete operations for personas and
// API tokens, plus integration-token config and backup download. Every
// successful mutation triggers a wholesale refresh of the owning list:
// server-computed fields (verification codes, token last-used timestamps)
// cannot be predicted client-side, so nothing is ever merged optimistically.
package editor

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/fhuaranca/dniadmin/internal/client/api"
	"github.com/fhuaranca/dniadmin/internal/client/models"
	"github.com/fhuaranca/dniadmin/internal/client/notify"
	"github.com/fhuaranca/dniadmin/internal/client/query"
	"github.com/fhuaranca/dniadmin/internal/client/render"
	"github.com/fhuaranca/dniadmin/internal/logging"
)

var (
	// ErrBusy rejects a mutation while another one is still in flight.
	// Mutations are never pipelined; the UI keeps its trigger disabled
	// until the single outstanding one resolves.
	ErrBusy = errors.New("another operation is in progress")

	// ErrInvalidDocumentNumber is the client-side fast-fail for malformed
	// document numbers. The server remains authoritative and may still
	// reject for other reasons.
	ErrInvalidDocumentNumber = errors.New("document number must be 8 digits")
)

// Editor coordinates record and token mutations against the gateway.
type Editor struct {
	client api.Client
	coord  *query.Coordinator
	target render.Target
	sink   *notify.Sink
	log    logging.Logger
	saver  FileSaver

	mu   sync.Mutex
	busy bool
}

// New wires an editor. saver receives backup downloads; pass a BackupDir
// for the default on-disk behavior.
func New(client api.Client, coord *query.Coordinator, target render.Target, sink *notify.Sink, log logging.Logger, saver FileSaver) *Editor {
	return &Editor{client: client, coord: coord, target: target, sink: sink, log: log, saver: saver}
}

// ValidateNroDoc enforces the service's document-number rules: exactly 8
// digits and not a single repeated digit.
func ValidateNroDoc(nrodoc string) error {
	if len(nrodoc) != 8 {
		return ErrInvalidDocumentNumber
	}
	repeated := true
	for i := 0; i < len(nrodoc); i++ {
		if nrodoc[i] < '0' || nrodoc[i] > '9' {
			return ErrInvalidDocumentNumber
		}
		if nrodoc[i] != nrodoc[0] {
			repeated = false
		}
	}
	if repeated {
		return ErrInvalidDocumentNumber
	}
	return nil
}

// begin claims the single mutation slot.
func (e *Editor) begin() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.busy {
		return ErrBusy
	}
	e.busy = true
	return nil
}

func (e *Editor) end() {
	e.mu.Lock()
	e.busy = false
	e.mu.Unlock()
}

// surface converts a gateway error into a user-visible notification and
// passes it through. Unauthorized is the one silent case here: the session
// controller already announced the forced logout, and the operation's only
// remaining duty is to abandon its state update.
func (e *Editor) surface(ctx context.Context, err error, action string) error {
	switch {
	case errors.Is(err, api.ErrUnauthorized):
	case errors.Is(err, api.ErrRateLimited):
		e.sink.Notify("rate limit exceeded, try again later", notify.SeverityWarning)
	case errors.Is(err, api.ErrNotFound):
		e.sink.Notify(action+": not found", notify.SeverityError)
	default:
		var ce *api.ClientError
		if errors.As(err, &ce) {
			e.sink.Notify(ce.Message, notify.SeverityError)
		} else {
			e.log.Error(ctx, action+" failed", "err", err)
			e.sink.Notify("connection error", notify.SeverityError)
		}
	}
	return err
}

// Create adds a persona by explicit user entry and refreshes the list.
func (e *Editor) Create(ctx context.Context, p models.Persona) error {
	if err := ValidateNroDoc(p.NroDoc); err != nil {
		e.sink.Notify("document number must be 8 digits", notify.SeverityWarning)
		return err
	}
	if err := e.begin(); err != nil {
		return err
	}
	defer e.end()

	if _, err := e.client.CreatePersona(ctx, p); err != nil {
		return e.surface(ctx, err, "create record")
	}
	e.sink.Notify("record created", notify.SeveritySuccess)
	e.coord.Refresh(ctx)
	return nil
}

// Update modifies an existing persona. The document number stays subject
// to the same validation; it is the record's natural key and must remain
// well-formed even though the server treats it as immutable.
func (e *Editor) Update(ctx context.Context, id int64, p models.Persona) error {
	if err := ValidateNroDoc(p.NroDoc); err != nil {
		e.sink.Notify("document number must be 8 digits", notify.SeverityWarning)
		return err
	}
	if err := e.begin(); err != nil {
		return err
	}
	defer e.end()

	if _, err := e.client.UpdatePersona(ctx, id, p); err != nil {
		return e.surface(ctx, err, "update record")
	}
	e.sink.Notify("record updated", notify.SeveritySuccess)
	e.coord.Refresh(ctx)
	return nil
}

// Delete removes a persona and refreshes the list.
func (e *Editor) Delete(ctx context.Context, id int64) error {
	if err := e.begin(); err != nil {
		return err
	}
	defer e.end()

	if err := e.client.DeletePersona(ctx, id); err != nil {
		return e.surface(ctx, err, "delete record")
	}
	e.sink.Notify("record deleted", notify.SeveritySuccess)
	e.coord.Refresh(ctx)
	return nil
}

// Lookup queries a document number against the service (local store first,
// external API as fallback) and pushes the outcome to the render target.
func (e *Editor) Lookup(ctx context.Context, dni string) (*models.Persona, error) {
	dni = strings.TrimSpace(dni)
	if err := ValidateNroDoc(dni); err != nil {
		e.sink.Notify("document number must be 8 digits", notify.SeverityWarning)
		return nil, err
	}

	p, err := e.client.Lookup(ctx, dni)
	if err != nil {
		e.target.RenderLookupResult(nil, err)
		return nil, e.surface(ctx, err, "lookup")
	}
	e.target.RenderLookupResult(p, nil)
	return p, nil
}

// RefreshTokens re-reads the token list from the server and renders it.
// This is the only way token state reaches the UI; responses to individual
// token mutations are never patched into a cached list.
func (e *Editor) RefreshTokens(ctx context.Context) error {
	tokens, err := e.client.ListTokens(ctx)
	if err != nil {
		return e.surface(ctx, err, "list tokens")
	}
	e.target.RenderTokenList(tokens)
	return nil
}

// CreateToken issues a new API token and refreshes the token list. The
// token is returned even when the refresh fails: the server never shows
// its value again, so the caller must get a chance to display it.
func (e *Editor) CreateToken(ctx context.Context, nombre, descripcion string) (*models.APIToken, error) {
	if strings.TrimSpace(nombre) == "" {
		e.sink.Notify("token name is required", notify.SeverityWarning)
		return nil, errors.New("token name is required")
	}
	if err := e.begin(); err != nil {
		return nil, err
	}
	defer e.end()

	t, err := e.client.CreateToken(ctx, nombre, descripcion)
	if err != nil {
		return nil, e.surface(ctx, err, "create token")
	}
	e.sink.Notify("token created", notify.SeveritySuccess)
	return t, e.RefreshTokens(ctx)
}

// DeleteToken removes a token and refreshes the token list.
func (e *Editor) DeleteToken(ctx context.Context, id int64) error {
	if err := e.begin(); err != nil {
		return err
	}
	defer e.end()

	if err := e.client.DeleteToken(ctx, id); err != nil {
		return e.surface(ctx, err, "delete token")
	}
	e.sink.Notify("token deleted", notify.SeveritySuccess)
	return e.RefreshTokens(ctx)
}

// ToggleToken flips a token's active flag and refreshes the token list.
func (e *Editor) ToggleToken(ctx context.Context, id int64) error {
	if err := e.begin(); err != nil {
		return err
	}
	defer e.end()

	if _, err := e.client.ToggleToken(ctx, id); err != nil {
		return e.surface(ctx, err, "toggle token")
	}
	return e.RefreshTokens(ctx)
}

// LoadConfig reads the integration-token status and renders it.
func (e *Editor) LoadConfig(ctx context.Context) error {
	cs, err := e.client.GetConfig(ctx)
	if err != nil {
		return e.surface(ctx, err, "load config")
	}
	e.target.RenderConfig(*cs)
	return nil
}

// SaveConfig stores a new apisperu.com integration token, then re-reads
// the status so the UI reflects the server's view.
func (e *Editor) SaveConfig(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		e.sink.Notify("integration token is required", notify.SeverityWarning)
		return errors.New("integration token is required")
	}
	if err := e.begin(); err != nil {
		return err
	}
	defer e.end()

	if err := e.client.UpdateConfig(ctx, token); err != nil {
		return e.surface(ctx, err, "save config")
	}
	e.sink.Notify("configuration updated", notify.SeveritySuccess)
	return e.LoadConfig(ctx)
}

// Backup downloads the service's single-file backup and hands it to the
// saver. A rate-limited response produces a notification and no save
// attempt.
func (e *Editor) Backup(ctx context.Context) (string, error) {
	data, filename, err := e.client.DownloadBackup(ctx)
	if err != nil {
		return "", e.surface(ctx, err, "backup")
	}

	path, err := e.saver.Save(filename, data)
	if err != nil {
		e.log.Error(ctx, "backup save failed", "err", err)
		e.sink.Notify("could not save backup file", notify.SeverityError)
		return "", err
	}
	e.sink.Notify("backup saved to "+path, notify.SeveritySuccess)
	return path, nil
}
