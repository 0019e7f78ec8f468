// Package client models the browser-side timeline of one conversation:
// an optimistically shown user turn is tracked under a local
// correlation id until the server confirms its real identifiers.
package client

import (
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/maricastroc/minerva-ai/internal/config"
	"github.com/maricastroc/minerva-ai/internal/domain"
)

var (
	ErrExchangeInFlight   = errors.New("an exchange is already in flight")
	ErrUnknownCorrelation = errors.New("unknown correlation id")
)

const errorReply = "Error connecting to the chatbot. Please try again."

type EntryState int

const (
	StateOptimistic EntryState = iota
	StateConfirmed
	StateFailed
)

// Entry is one rendered message. ID starts as the local correlation id
// and is rewritten to the server-assigned id on confirmation.
type Entry struct {
	ID      string
	Role    domain.Role
	Content string
	State   EntryState
	// Synthetic marks an error turn appended locally, never stored
	// server-side.
	Synthetic bool
}

// Timeline is the per-conversation reconciliation state machine. Only
// one exchange may be in flight; a pending flag rejects new
// submissions until the current one resolves.
type Timeline struct {
	mu      sync.Mutex
	entries []Entry
	pending string // correlation id of the in-flight exchange, "" if none
	newID   func() string
}

func NewTimeline() *Timeline {
	return &Timeline{newID: uuid.NewString}
}

// Begin shows the user's turn immediately under a local correlation id
// and marks the exchange in flight.
func (t *Timeline) Begin(content string) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.pending != "" {
		return "", ErrExchangeInFlight
	}

	id := t.newID()
	t.entries = append(t.entries, Entry{
		ID:      id,
		Role:    domain.RoleUser,
		Content: content,
		State:   StateOptimistic,
	})
	t.pending = id
	return id, nil
}

// Confirm rewrites the optimistic entry to its server id and appends
// the assistant turn in one atomic update: no flicker, no duplicate.
func (t *Timeline) Confirm(correlationID, serverUserID, serverAssistantID, reply string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	idx, err := t.findPending(correlationID)
	if err != nil {
		return err
	}

	t.entries[idx].ID = serverUserID
	t.entries[idx].State = StateConfirmed
	t.entries = append(t.entries, Entry{
		ID:      serverAssistantID,
		Role:    domain.RoleAssistant,
		Content: reply,
		State:   StateConfirmed,
	})
	t.pending = ""
	return nil
}

// Fail keeps the optimistic entry as-is (user input is never lost),
// marks it failed and appends one synthetic assistant error turn. A
// later retry begins a fresh optimistic entry.
func (t *Timeline) Fail(correlationID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	idx, err := t.findPending(correlationID)
	if err != nil {
		return err
	}

	t.entries[idx].State = StateFailed
	t.entries = append(t.entries, Entry{
		ID:        t.newID(),
		Role:      domain.RoleAssistant,
		Content:   errorReply,
		State:     StateFailed,
		Synthetic: true,
	})
	t.pending = ""
	return nil
}

// InFlight reports whether a submission is still unresolved.
func (t *Timeline) InFlight() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pending != ""
}

// Entries returns a snapshot of the rendered timeline.
func (t *Timeline) Entries() []Entry {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// History returns the most recent turns in the shape the submit
// endpoint expects. Synthetic error turns are excluded.
func (t *Timeline) History(limit int) []domain.Turn {
	t.mu.Lock()
	defer t.mu.Unlock()

	var turns []domain.Turn
	for _, e := range t.entries {
		if e.Synthetic || e.State == StateFailed {
			continue
		}
		turns = append(turns, domain.Turn{Role: e.Role, Content: e.Content})
	}
	if limit > 0 && len(turns) > limit {
		turns = turns[len(turns)-limit:]
	}
	return turns
}

// SendHistory is History capped at the window a submit request carries.
func (t *Timeline) SendHistory() []domain.Turn {
	return t.History(config.ClientSendTurns)
}

func (t *Timeline) findPending(correlationID string) (int, error) {
	if t.pending != correlationID {
		return -1, ErrUnknownCorrelation
	}
	for i := range t.entries {
		if t.entries[i].ID == correlationID && t.entries[i].State == StateOptimistic {
			return i, nil
		}
	}
	return -1, ErrUnknownCorrelation
}
