// Package render defines the interface through which the client core
// pushes state to the presentation layer. The core only ever writes
// through this interface; it never reads presentation state back.
package render

import "github.com/fhuaranca/dniadmin/internal/client/models"

// SessionState is what the presentation layer needs to draw the
// authenticated/unauthenticated chrome.
type SessionState struct {
	Authenticated bool
	Username      string
}

// Target is implemented by the presentation layer (a terminal renderer in
// this repository). Implementations must tolerate being called from
// multiple goroutines; calls carry complete snapshots, never deltas.
type Target interface {
	RenderSession(s SessionState)
	RenderListResult(r models.ListResult)
	RenderTokenList(tokens []models.APIToken)
	RenderLookupResult(p *models.Persona, err error)
	RenderConfig(c models.ConfigStatus)
}

// Nop discards every render call. Useful as a default and in tests that
// only assert on state.
type Nop struct{}

func (Nop) RenderSession(s SessionState)                    {}
func (Nop) RenderListResult(r models.ListResult)            {}
func (Nop) RenderTokenList(tokens []models.APIToken)        {}
func (Nop) RenderLookupResult(p *models.Persona, err error) {}
func (Nop) RenderConfig(c models.ConfigStatus)              {}
