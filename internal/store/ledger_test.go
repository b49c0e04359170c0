package store

import (
	"testing"

	"github.com/pixil98/go-testutil"
)

func TestRemoveHistoryEntry(t *testing.T) {
	s := New(&fakeAPI{})

	s.Ingest(&HistoryEntry{Reply: mustEnvelope(t, `{"py/object":"Success","message":"one"}`)})
	s.Ingest(&HistoryEntry{Reply: mustEnvelope(t, `{"py/object":"plugins.editing.EditingEntityBehavior","interactive":true}`)})
	s.Ingest(&HistoryEntry{Reply: mustEnvelope(t, `{"py/object":"plugins.editing.EditingEntityHelp","interactive":true}`)})

	pending := s.Interactables()
	testutil.AssertEqual(t, "pending", len(pending), 2)

	s.RemoveHistoryEntry(pending[0])

	remaining := s.Interactables()
	testutil.AssertEqual(t, "remaining", len(remaining), 1)
	testutil.AssertEqual(t, "survivor", remaining[0].Reply.SimpleTag(), "EditingEntityHelp")
	testutil.AssertEqual(t, "responses untouched", len(s.Responses()), 1)

	responses := s.Responses()
	s.RemoveHistoryEntry(responses[0])
	testutil.AssertEqual(t, "responses", len(s.Responses()), 0)

	// Removing an unknown entry is a no-op.
	s.RemoveHistoryEntry(&HistoryEntry{})
	testutil.AssertEqual(t, "still one interactable", len(s.Interactables()), 1)
}

func TestReceived(t *testing.T) {
	s := New(&fakeAPI{})
	testutil.AssertEqual(t, "initial", s.Received(), 0)

	s.Ingest(&HistoryEntry{Reply: mustEnvelope(t, `{"py/object":"Success"}`)})
	s.Ingest(&HistoryEntry{Reply: mustEnvelope(t, `{"py/object":"plugins.editing.EditingEntityBehavior","interactive":true}`)})

	// Only visible-log appends count.
	testutil.AssertEqual(t, "after ingest", s.Received(), 1)
}
