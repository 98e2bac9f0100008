// internal/store/memory.go
//
// In-memory round sessions.
// This is the owner of every live round the server drives on behalf of
// remote clients.
//
// Characteristics:
//   - Sessions are stored by value; Get hands out copies.
//   - Update runs the mutation on a copy under the write lock and commits it
//     only if the callback succeeds, so moves on one round never interleave
//     and a rejected move leaves nothing behind.
//   - Every Save/Update stamps UpdatedAt; idle sessions are removed through
//     DeleteIf by the server's sweeper.
//   - State is lost when the process restarts.

package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/robalobadob/wordle/apps/round-server/internal/game"
)

// ErrNotFound is returned for unknown session IDs.
var ErrNotFound = errors.New("session not found")

// Modes a session can be played in.
const (
	ModeNormal = "normal"
	ModeDaily  = "daily"
)

// Owner identifies who plays a session: a signed-in user or an anonymous cookie.
type Owner struct {
	UserID string `json:"userId,omitempty"`
	AnonID string `json:"-"`
}

// Key returns a stable identifier for the owner.
func (o Owner) Key() string {
	if o.UserID != "" {
		return "u:" + o.UserID
	}
	return "a:" + o.AnonID
}

// Session is one round plus the bookkeeping the server needs around it.
type Session struct {
	ID       string
	Mode     string
	Owner    Owner
	RecordID string // history row for the current round
	Round    game.Round

	// daily only
	Date      string
	WordIndex int

	// UpdatedAt is the time of the last Save or successful Update.
	UpdatedAt time.Time
}

// Store defines the persistence interface for round sessions.
type Store interface {
	// Save inserts or replaces a session.
	Save(ctx context.Context, s *Session) error

	// Get returns a copy of the session, or ErrNotFound.
	Get(ctx context.Context, id string) (*Session, error)

	// Update applies fn to a copy of the session and stores the result if fn
	// returns nil. Calls for the same store are serialized.
	Update(ctx context.Context, id string, fn func(*Session) error) (*Session, error)

	// Delete removes a session. Unknown IDs are not an error.
	Delete(ctx context.Context, id string) error

	// Range calls fn with a copy of every session until fn returns false.
	// fn must not call back into the store.
	Range(ctx context.Context, fn func(Session) bool)

	// DeleteIf removes every session for which match returns true and
	// returns copies of the removed sessions.
	DeleteIf(ctx context.Context, match func(*Session) bool) []Session

	// Len reports the number of stored sessions.
	Len() int
}

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu       sync.RWMutex        // guards sessions
	sessions map[string]*Session // keyed by Session.ID
	now      func() time.Time
}

// Option configures the memory store.
type Option func(*memory)

// WithClock replaces time.Now for UpdatedAt stamps.
func WithClock(now func() time.Time) Option { return func(m *memory) { m.now = now } }

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore(opts ...Option) Store {
	m := &memory{sessions: make(map[string]*Session), now: time.Now}
	for _, o := range opts {
		o(m)
	}
	return m
}

func (m *memory) Save(ctx context.Context, s *Session) error {
	cp := *s
	cp.UpdatedAt = m.now()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = &cp
	return nil
}

func (m *memory) Get(ctx context.Context, id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.sessions[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, ErrNotFound
}

func (m *memory) Update(ctx context.Context, id string, fn func(*Session) error) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cp := *s
	if err := fn(&cp); err != nil {
		return nil, err
	}
	cp.UpdatedAt = m.now()
	m.sessions[id] = &cp
	out := cp
	return &out, nil
}

func (m *memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func (m *memory) Range(ctx context.Context, fn func(Session) bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.sessions {
		if !fn(*s) {
			return
		}
	}
}

func (m *memory) DeleteIf(ctx context.Context, match func(*Session) bool) []Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Session
	for id, s := range m.sessions {
		if match(s) {
			out = append(out, *s)
			delete(m.sessions, id)
		}
	}
	return out
}

func (m *memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
