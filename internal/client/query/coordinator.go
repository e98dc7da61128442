// Package query owns the paginated persona-list state: current page, page
// size, search term and totals. It debounces free-text input, supersedes
// stale in-flight requests by issue order, and only ever commits a
// response that belongs to the most recently issued query while the
// session is still valid.
package query

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/fhuaranca/dniadmin/internal/client/api"
	"github.com/fhuaranca/dniadmin/internal/client/models"
	"github.com/fhuaranca/dniadmin/internal/client/notify"
	"github.com/fhuaranca/dniadmin/internal/client/render"
	"github.com/fhuaranca/dniadmin/internal/client/session"
	"github.com/fhuaranca/dniadmin/internal/logging"
)

const (
	// MinSearchLength is the shortest non-empty term worth querying; the
	// service ignores shorter terms anyway, so the client never sends
	// them. An empty term means "show all" and is always allowed.
	MinSearchLength = 3

	// DefaultDebounce is the quiescence window for free-text input.
	DefaultDebounce = time.Second

	// DefaultPageSize mirrors the service default.
	DefaultPageSize = 10
)

// Coordinator serializes all list-state mutations behind one mutex. Page
// and page-size changes issue immediately; search-term changes wait for
// the debounce window and a newer edit cancels the pending one.
type Coordinator struct {
	client   api.Client
	sessions *session.Store
	target   render.Target
	sink     *notify.Sink
	log      logging.Logger
	debounce time.Duration

	mu         sync.Mutex
	q          models.ListQuery
	result     models.ListResult
	loading    bool
	lastIssued uint64
	pending    *time.Timer // single debounce slot
}

// New builds a coordinator. debounce <= 0 selects DefaultDebounce.
func New(client api.Client, sessions *session.Store, target render.Target, sink *notify.Sink, log logging.Logger, debounce time.Duration) *Coordinator {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Coordinator{
		client:   client,
		sessions: sessions,
		target:   target,
		sink:     sink,
		log:      log,
		debounce: debounce,
		q:        models.ListQuery{Page: 1, PageSize: DefaultPageSize},
	}
}

// SetSearchTerm records a new free-text term. The page resets to 1 because
// the previous page numbering is meaningless under a different query.
// Terms of 1–2 characters are held without issuing a request; any pending
// debounce timer is cancelled either way, so a stale longer term can never
// fire after the operator shortened it.
func (c *Coordinator) SetSearchTerm(ctx context.Context, term string) {
	term = strings.TrimSpace(term)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.cancelPendingLocked()
	c.q.SearchTerm = term
	c.q.Page = 1

	if term != "" && len([]rune(term)) < MinSearchLength {
		return
	}

	c.pending = time.AfterFunc(c.debounce, func() {
		c.mu.Lock()
		c.pending = nil
		c.issueLocked(ctx)
		c.mu.Unlock()
	})
}

// SetPage navigates to page n immediately, superseding any pending search.
func (c *Coordinator) SetPage(ctx context.Context, n int) {
	if n < 1 {
		n = 1
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelPendingLocked()
	c.q.Page = n
	c.issueOrWarnLocked(ctx)
}

// SetPageSize changes the page size immediately. The search term is left
// untouched; the server clamps the page if it falls out of range and the
// response's page is adopted as-is.
func (c *Coordinator) SetPageSize(ctx context.Context, n int) {
	if n < 1 {
		n = DefaultPageSize
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelPendingLocked()
	c.q.PageSize = n
	c.issueOrWarnLocked(ctx)
}

// Refresh re-issues the current query immediately. Used after mutations.
func (c *Coordinator) Refresh(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelPendingLocked()
	c.issueOrWarnLocked(ctx)
}

// Result returns the last committed list state.
func (c *Coordinator) Result() models.ListResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.result
}

// Query returns the current query parameters.
func (c *Coordinator) Query() models.ListQuery {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.q
}

// Loading reports whether the latest issued request is still in flight.
func (c *Coordinator) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

func (c *Coordinator) cancelPendingLocked() {
	if c.pending != nil {
		c.pending.Stop()
		c.pending = nil
	}
}

// issueLocked tags a request with the next sequence number and dispatches
// it. The sequence number is the supersession mechanism: whichever request
// was issued last wins, regardless of arrival order. A held 1–2 character
// term blocks issuing and is reported via the false return.
func (c *Coordinator) issueLocked(ctx context.Context) bool {
	if term := c.q.SearchTerm; term != "" && len([]rune(term)) < MinSearchLength {
		return false
	}
	c.lastIssued++
	c.loading = true
	go c.fetch(ctx, c.lastIssued, c.q)
	return true
}

// issueOrWarnLocked covers the immediate paths (page, page size, refresh):
// a command that cannot issue because of a held short term warns the
// operator instead of being a silent no-op.
func (c *Coordinator) issueOrWarnLocked(ctx context.Context) {
	if !c.issueLocked(ctx) {
		c.sink.Notify("search term needs at least 3 characters", notify.SeverityWarning)
	}
}

func (c *Coordinator) fetch(ctx context.Context, seq uint64, q models.ListQuery) {
	res, err := c.client.ListPersonas(ctx, q)

	c.mu.Lock()
	defer c.mu.Unlock()

	if seq != c.lastIssued {
		// a later request supersedes this response
		return
	}
	c.loading = false

	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			// forced logout is surfaced by the session controller;
			// this operation just abandons its state update
			return
		}
		c.log.Error(ctx, "list request failed", "err", err)
		c.sink.Notify("could not load records", notify.SeverityError)
		return
	}

	if !c.sessions.Valid() {
		// session died while this request was in flight
		return
	}

	// totals and page are authoritative from the server; adopting the
	// response's page is what keeps page within [1, total_pages].
	// The render stays under the commit lock: the supersession check and
	// the render must be atomic, or a superseded response could paint
	// over a later commit's output.
	c.q.Page = res.Page
	c.result = *res
	c.target.RenderListResult(*res)
}
