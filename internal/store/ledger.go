package store

import (
	"github.com/pixil98/go-mud-client/internal/reply"
)

// HistoryEntry is one ledger row: the reply envelope plus its optional
// pre-rendered body. Entries are removed by identity, so callers hold the
// pointer they were handed.
type HistoryEntry struct {
	Rendered *reply.Rendered
	Reply    *reply.Envelope
}

// Responses returns the visible-log sequence, oldest first.
func (s *Store) Responses() []*HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*HistoryEntry(nil), s.responses...)
}

// Interactables returns the pending interactive entries, oldest first.
func (s *Store) Interactables() []*HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*HistoryEntry(nil), s.interactables...)
}

// Received counts visible-log appends, a cheap change indicator for
// front-ends.
func (s *Store) Received() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.received
}

// RemoveHistoryEntry deletes the entry from whichever sequence holds it,
// e.g. when a user dismisses an interactive prompt. Unknown entries are
// ignored.
func (s *Store) RemoveHistoryEntry(entry *HistoryEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := indexOf(s.responses, entry); i >= 0 {
		s.responses = append(s.responses[:i], s.responses[i+1:]...)
		return
	}
	if i := indexOf(s.interactables, entry); i >= 0 {
		s.interactables = append(s.interactables[:i], s.interactables[i+1:]...)
	}
}

func indexOf(entries []*HistoryEntry, entry *HistoryEntry) int {
	for i, e := range entries {
		if e == entry {
			return i
		}
	}
	return -1
}
