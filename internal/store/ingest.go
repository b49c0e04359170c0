package store

import (
	"log/slog"

	"github.com/pixil98/go-mud-client/internal/messaging"
	"github.com/pixil98/go-mud-client/internal/reply"
)

// Ingest runs one reply envelope through the reconciliation contract. The
// branch order is load-bearing: an envelope matches exactly one branch,
// evaluated in this priority.
//
//  1. information: silent cache update, the ledger never sees it
//  2. screen cleared: truncate the visible log
//  3. interactive: append to the interactable sequence
//  4. default: drop any pending waiting placeholder, then append
//
// Both the request/response path and the realtime channel converge here.
func (s *Store) Ingest(entry *HistoryEntry) {
	env := entry.Reply

	if env.Information {
		s.UpsertMany(env.Entities)
		return
	}

	s.mu.Lock()
	var event messaging.ReplyEvent
	switch {
	case env.Tag == reply.TagScreenCleared:
		s.responses = nil
		event = messaging.ReplyEvent{Tag: env.SimpleTag(), Cleared: true}

	case env.Interactive:
		s.interactables = append(s.interactables, entry)
		event = messaging.ReplyEvent{Tag: env.SimpleTag(), Interactive: true}

	default:
		s.responses = dropWaiting(s.responses)
		s.responses = append(s.responses, entry)
		s.received++
		event = messaging.ReplyEvent{Tag: env.SimpleTag()}
	}
	s.mu.Unlock()

	s.publish(messaging.SubjectReplies, messaging.Encode(event))
}

// HandleNearby ingests one pushed reply from the realtime channel. Garbled
// pushes are logged and dropped; the stream keeps flowing.
func (s *Store) HandleNearby(wire reply.Wire) {
	rendered, env, err := wire.Decode()
	if err != nil {
		slog.Warn("skipping malformed push", "error", err)
		return
	}
	s.Ingest(&HistoryEntry{Rendered: rendered, Reply: env})
}

func dropWaiting(entries []*HistoryEntry) []*HistoryEntry {
	kept := entries[:0]
	for _, e := range entries {
		if e.Reply == nil || e.Reply.Tag != reply.TagWaiting {
			kept = append(kept, e)
		}
	}
	return kept
}
