package identity

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type SessionEventType string

const (
	SignedIn  SessionEventType = "signed_in"
	SignedOut SessionEventType = "signed_out"
)

type SessionEvent struct {
	Type       SessionEventType
	ChampionID uuid.UUID
	At         time.Time
}

// SessionIdleTimeout ends a session that has not been touched for this long.
const SessionIdleTimeout = 12 * time.Hour

// SessionHub delivers session lifecycle events to subscribers. Callbacks
// run synchronously on the publishing goroutine. Sessions idle for longer
// than the idle timeout are ended with a signed_out event, so the hub only
// tracks champions seen recently.
type SessionHub struct {
	mu        sync.Mutex
	nextID    int
	subs      map[int]func(SessionEvent)
	active    map[uuid.UUID]time.Time
	idle      time.Duration
	lastSweep time.Time
	now       func() time.Time
}

func NewSessionHub() *SessionHub {
	return newSessionHub(SessionIdleTimeout, time.Now)
}

func newSessionHub(idle time.Duration, now func() time.Time) *SessionHub {
	return &SessionHub{
		subs:      make(map[int]func(SessionEvent)),
		active:    make(map[uuid.UUID]time.Time),
		idle:      idle,
		lastSweep: now(),
		now:       now,
	}
}

// OnSessionChange registers fn and returns a function that removes it.
func (h *SessionHub) OnSessionChange(fn func(SessionEvent)) func() {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.nextID
	h.nextID++
	h.subs[id] = fn
	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.subs, id)
	}
}

// Touch marks the champion signed in, publishing an event the first time,
// and ends sessions that went idle.
func (h *SessionHub) Touch(championID uuid.UUID) {
	h.mu.Lock()
	now := h.now()
	expired := h.sweepLocked(now)
	_, seen := h.active[championID]
	h.active[championID] = now
	h.mu.Unlock()

	for _, id := range expired {
		h.Publish(SessionEvent{Type: SignedOut, ChampionID: id, At: now})
	}
	if !seen {
		h.Publish(SessionEvent{Type: SignedIn, ChampionID: championID, At: now})
	}
}

// sweepLocked removes idle sessions at most once per idle interval.
func (h *SessionHub) sweepLocked(now time.Time) []uuid.UUID {
	if now.Sub(h.lastSweep) < h.idle {
		return nil
	}
	h.lastSweep = now
	var expired []uuid.UUID
	for id, seen := range h.active {
		if now.Sub(seen) >= h.idle {
			delete(h.active, id)
			expired = append(expired, id)
		}
	}
	return expired
}

// SignOut ends the champion's session and publishes a signed_out event.
func (h *SessionHub) SignOut(championID uuid.UUID) {
	h.mu.Lock()
	delete(h.active, championID)
	h.mu.Unlock()
	h.Publish(SessionEvent{Type: SignedOut, ChampionID: championID, At: h.now()})
}

func (h *SessionHub) Publish(ev SessionEvent) {
	h.mu.Lock()
	subs := make([]func(SessionEvent), 0, len(h.subs))
	for _, fn := range h.subs {
		subs = append(subs, fn)
	}
	h.mu.Unlock()

	for _, fn := range subs {
		fn(ev)
	}
}
