package models

import "time"

// APIToken is a server-issued credential for programmatic access to the
// lookup API. The client holds a read-through projection only: the server
// owns fields like UltimoUso, so token lists are always re-fetched after a
// mutation, never patched in place.
type APIToken struct {
	ID            int64      `json:"id"`
	Token         string     `json:"token"`
	Nombre        string     `json:"nombre"`
	Descripcion   string     `json:"descripcion,omitempty"`
	Activo        bool       `json:"activo"`
	FechaCreacion time.Time  `json:"fecha_creacion"`
	UltimoUso     *time.Time `json:"ultimo_uso,omitempty"`
}

// ConfigStatus reports whether the apisperu.com integration token is set.
// The token value itself is never read back from the server.
type ConfigStatus struct {
	APISPeruTokenConfigured bool `json:"apisperu_token_configured"`
}
