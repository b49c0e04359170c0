package store

import (
	"context"
	"log/slog"

	"github.com/pixil98/go-mud-client/internal/reply"
)

// Submit sends one line of player input through the language evaluator. A
// waiting placeholder is appended synchronously for optimistic feedback; the
// terminal reply's ingestion replaces it. A rejected mutation ingests a
// synthetic failure so the placeholder never sticks.
func (s *Store) Submit(ctx context.Context, command string) {
	s.Ingest(&HistoryEntry{Reply: reply.Waiting()})

	s.mu.Lock()
	evaluator := s.session.Key
	s.mu.Unlock()

	evaluation, err := s.api.Language(ctx, command, evaluator)
	if err != nil {
		slog.Warn("language evaluation failed", "error", err)
		s.Ingest(&HistoryEntry{Reply: reply.Failed("Something went wrong talking to the server.")})
		return
	}

	rendered, env, err := evaluation.Reply.Decode()
	if err != nil {
		slog.Warn("garbled language reply", "error", err)
		s.Ingest(&HistoryEntry{Reply: reply.Failed("The server's reply made no sense.")})
		return
	}

	s.Ingest(&HistoryEntry{Rendered: rendered, Reply: env})

	if len(evaluation.Entities) > 0 {
		s.UpsertMany(evaluation.Entities)
	}
}
