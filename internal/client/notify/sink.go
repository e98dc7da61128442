// Package notify implements the fire-and-forget user-feedback channel.
// Every notification is transient: it is posted, stays visible for a fixed
// duration, and is then retired on its own timer. Lifetimes are
// independent; retiring one notification never affects another.
package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Severity classifies a notification for presentation purposes.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// DefaultTTL matches the service frontend's toast duration.
const DefaultTTL = 4 * time.Second

// Notification is one transient message.
type Notification struct {
	ID       string
	Message  string
	Severity Severity
	PostedAt time.Time
}

// Listener observes the display queue. Posted is called synchronously from
// Notify; Expired fires from the notification's own timer goroutine.
type Listener interface {
	Posted(n Notification)
	Expired(n Notification)
}

// Sink is the notification channel handed to every component.
type Sink struct {
	mu       sync.Mutex
	ttl      time.Duration
	active   map[string]Notification
	timers   map[string]*time.Timer
	listener Listener
}

// NewSink creates a sink with the given visibility duration; ttl <= 0
// selects DefaultTTL.
func NewSink(ttl time.Duration, listener Listener) *Sink {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Sink{
		ttl:      ttl,
		active:   make(map[string]Notification),
		timers:   make(map[string]*time.Timer),
		listener: listener,
	}
}

// Notify posts a transient message and schedules its retirement.
func (s *Sink) Notify(message string, severity Severity) Notification {
	n := Notification{
		ID:       uuid.NewString(),
		Message:  message,
		Severity: severity,
		PostedAt: time.Now(),
	}

	s.mu.Lock()
	s.active[n.ID] = n
	s.timers[n.ID] = time.AfterFunc(s.ttl, func() { s.retire(n.ID) })
	s.mu.Unlock()

	if s.listener != nil {
		s.listener.Posted(n)
	}
	return n
}

func (s *Sink) retire(id string) {
	s.mu.Lock()
	n, ok := s.active[id]
	if ok {
		delete(s.active, id)
		delete(s.timers, id)
	}
	s.mu.Unlock()

	if ok && s.listener != nil {
		s.listener.Expired(n)
	}
}

// Active returns the currently visible notifications.
func (s *Sink) Active() []Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Notification, 0, len(s.active))
	for _, n := range s.active {
		out = append(out, n)
	}
	return out
}

// Close cancels all pending retirement timers. Notifications already
// visible stay in Active; Close only stops future expiry callbacks.
func (s *Sink) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
}
