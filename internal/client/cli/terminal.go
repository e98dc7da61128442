package cli

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"

	"github.com/fhuaranca/dniadmin/internal/client/models"
	"github.com/fhuaranca/dniadmin/internal/client/notify"
	"github.com/fhuaranca/dniadmin/internal/client/render"
)

// Terminal renders application state and notifications to a writer.
// It implements both render.Target and notify.Listener. A mutex keeps
// output lines intact: notifications expire on their own timer goroutines
// and would otherwise interleave with list output.
type Terminal struct {
	mu  sync.Mutex
	out io.Writer
}

func NewTerminal(out io.Writer) *Terminal {
	return &Terminal{out: out}
}

func (t *Terminal) RenderSession(s render.SessionState) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if s.Authenticated {
		color.New(color.FgGreen).Fprintf(t.out, "Logged in as %s\n", s.Username)
	} else {
		color.New(color.FgHiBlack).Fprintln(t.out, "Not logged in")
	}
}

func (t *Terminal) RenderListResult(r models.ListResult) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(r.Items) == 0 {
		fmt.Fprintln(t.out, "No records found")
		return
	}

	cyan := color.New(color.FgCyan)
	cyan.Fprintf(t.out, "%-6s %-10s %-40s %-6s %s\n", "ID", "DNI", "NAME", "CHECK", "CACHED")
	for _, p := range r.Items {
		cached := ""
		if p.DesdeCache {
			cached = "yes"
		}
		fmt.Fprintf(t.out, "%-6d %-10s %-40s %-6s %s\n",
			p.ID, p.NroDoc, p.FullName(), p.CodigoVerificacion, cached)
	}
	color.New(color.FgHiBlack).Fprintf(t.out, "page %d of %d (%d records, %d per page)\n",
		r.Page, r.TotalPages, r.Total, r.PerPage)
}

func (t *Terminal) RenderTokenList(tokens []models.APIToken) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(tokens) == 0 {
		fmt.Fprintln(t.out, "No API tokens")
		return
	}

	cyan := color.New(color.FgCyan)
	cyan.Fprintf(t.out, "%-6s %-20s %-8s %-20s %s\n", "ID", "NAME", "ACTIVE", "CREATED", "LAST USE")
	for _, tok := range tokens {
		active := "no"
		if tok.Activo {
			active = "yes"
		}
		lastUse := "never"
		if tok.UltimoUso != nil {
			lastUse = tok.UltimoUso.Format("2006-01-02 15:04")
		}
		fmt.Fprintf(t.out, "%-6d %-20s %-8s %-20s %s\n",
			tok.ID, tok.Nombre, active, tok.FechaCreacion.Format("2006-01-02 15:04"), lastUse)
	}
}

func (t *Terminal) RenderLookupResult(p *models.Persona, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err != nil {
		color.New(color.FgRed).Fprintf(t.out, "Lookup failed: %v\n", err)
		return
	}

	green := color.New(color.FgGreen)
	green.Fprintf(t.out, "DNI %s: %s\n", p.NroDoc, p.FullName())
	if p.CodigoVerificacion != "" {
		fmt.Fprintf(t.out, "Verification code: %s\n", p.CodigoVerificacion)
	}
	if p.DesdeCache {
		color.New(color.FgHiBlack).Fprintln(t.out, "(served from local cache)")
	}
}

func (t *Terminal) RenderConfig(c models.ConfigStatus) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if c.APISPeruTokenConfigured {
		color.New(color.FgGreen).Fprintln(t.out, "apisperu.com token: configured")
	} else {
		color.New(color.FgYellow).Fprintln(t.out, "apisperu.com token: not configured")
	}
}

// Posted prints a notification as soon as a component raises it.
func (t *Terminal) Posted(n notify.Notification) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch n.Severity {
	case notify.SeveritySuccess:
		color.New(color.FgGreen).Fprintf(t.out, "✔ %s\n", n.Message)
	case notify.SeverityWarning:
		color.New(color.FgYellow).Fprintf(t.out, "! %s\n", n.Message)
	case notify.SeverityError:
		color.New(color.FgRed).Fprintf(t.out, "✘ %s\n", n.Message)
	default:
		fmt.Fprintf(t.out, "· %s\n", n.Message)
	}
}

// Expired is a no-op: printed lines cannot be withdrawn from a terminal.
func (t *Terminal) Expired(n notify.Notification) {}
