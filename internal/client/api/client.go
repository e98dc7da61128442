// Package api is the single choke-point for every call to the DNI lookup
// service. It attaches authentication, interprets status codes uniformly
// (401 invalidates the session before the caller sees the error), unwraps
// the service's response envelope, and never retries.
package api

import (
	"context"

	"github.com/fhuaranca/dniadmin/internal/client/models"
)

// Client defines one method per remote operation. Higher layers depend on
// this interface so tests can substitute fakes.
//
// Error contract: expected conditions come back as the package's sentinel
// errors (ErrUnauthorized, ErrRateLimited, ErrNotFound, ErrUnavailable) or
// *ClientError; none of them is ever a panic or a retried call.
type Client interface {
	// Login validates admin credentials without an existing session.
	// Wrong credentials are an expected outcome: (false, nil).
	Login(ctx context.Context, username, password string) (bool, error)

	// Lookup fetches a persona by 8-digit document number, consulting the
	// service's local store first and the external API as fallback.
	Lookup(ctx context.Context, dni string) (*models.Persona, error)

	GetConfig(ctx context.Context) (*models.ConfigStatus, error)
	UpdateConfig(ctx context.Context, apisperuToken string) error

	ListTokens(ctx context.Context) ([]models.APIToken, error)
	CreateToken(ctx context.Context, nombre, descripcion string) (*models.APIToken, error)
	DeleteToken(ctx context.Context, id int64) error
	ToggleToken(ctx context.Context, id int64) (*models.APIToken, error)

	ListPersonas(ctx context.Context, q models.ListQuery) (*models.ListResult, error)
	CreatePersona(ctx context.Context, p models.Persona) (*models.Persona, error)
	UpdatePersona(ctx context.Context, id int64, p models.Persona) (*models.Persona, error)
	DeletePersona(ctx context.Context, id int64) error

	// DownloadBackup returns the raw backup file and the filename derived
	// from the Content-Disposition header (with a default fallback).
	DownloadBackup(ctx context.Context) ([]byte, string, error)
}
