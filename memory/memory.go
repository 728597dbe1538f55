package memory

import (
	"strings"
	"sync"
	"time"

	"github.com/docuquery/docuquery/core"
)

// DefaultBound is the number of recent turns exposed per session.
const DefaultBound = 10

// Store keeps bounded per-session conversation history in memory.
//
// Each session retains at most twice the bound so trimming is amortized;
// reads never see more than the bound's worth of turns. Sessions are fully
// isolated from each other.
type Store struct {
	mu       sync.Mutex
	sessions map[string][]core.ConversationTurn
	bound    int
}

// StoreOption is a functional option for configuring a Store.
type StoreOption func(*Store)

// WithBound sets the number of recent turns exposed per session.
func WithBound(bound int) StoreOption {
	return func(s *Store) {
		if bound > 0 {
			s.bound = bound
		}
	}
}

// NewStore creates an empty conversation store.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		sessions: make(map[string][]core.ConversationTurn),
		bound:    DefaultBound,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add appends a turn to the session's history. The timestamp is set if the
// caller left it zero. Histories exceeding twice the bound are trimmed from
// the front, dropping the oldest turns.
func (s *Store) Add(sessionID string, turn core.ConversationTurn) {
	if turn.Timestamp.IsZero() {
		turn.Timestamp = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	turns := append(s.sessions[sessionID], turn)
	if max := 2 * s.bound; len(turns) > max {
		trimmed := make([]core.ConversationTurn, max)
		copy(trimmed, turns[len(turns)-max:])
		turns = trimmed
	}
	s.sessions[sessionID] = turns
}

// Recent returns up to n of the session's most recent turns in
// chronological order. The returned slice is a copy.
func (s *Store) Recent(sessionID string, n int) []core.ConversationTurn {
	if n < 1 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	turns := s.sessions[sessionID]
	if len(turns) > n {
		turns = turns[len(turns)-n:]
	}

	out := make([]core.ConversationTurn, len(turns))
	copy(out, turns)
	return out
}

// History returns the session's retained turns, bounded, oldest first.
func (s *Store) History(sessionID string) []core.ConversationTurn {
	return s.Recent(sessionID, s.bound)
}

// Has reports whether the session has any recorded history. Distinguishes
// a session that was never seen from one whose history is merely empty.
func (s *Store) Has(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sessions[sessionID]
	return ok
}

// Clear removes the session's history entirely.
func (s *Store) Clear(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}

// Len reports the number of retained turns for a session. This can exceed
// the bound up to twice its value; History still caps reads at the bound.
func (s *Store) Len(sessionID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions[sessionID])
}

// FormatForPrompt renders the bounded history as prompt lines of the form
// "User: ..." / "Assistant: ...", oldest first. An empty history renders as
// an empty string.
func (s *Store) FormatForPrompt(sessionID string) string {
	turns := s.History(sessionID)
	if len(turns) == 0 {
		return ""
	}

	var b strings.Builder
	for i, turn := range turns {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(capitalizeRole(turn.Role))
		b.WriteString(": ")
		b.WriteString(turn.Content)
	}
	return b.String()
}

func capitalizeRole(role core.Role) string {
	name := role.String()
	if name == "" {
		return "Unknown"
	}
	return strings.ToUpper(name[:1]) + name[1:]
}
