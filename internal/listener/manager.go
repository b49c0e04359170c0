package listener

import (
	"context"
	"io"
	"log/slog"

	"github.com/pixil98/go-mud-client/internal/render"
	"github.com/pixil98/go-mud-client/internal/store"
)

// Subscriber is the slice of the event bus a session consumes.
type Subscriber interface {
	Subscribe(subject string, handler func(data []byte)) (func(), error)
}

// ConnectionManager hands accepted connections to client sessions sharing
// the one store.
type ConnectionManager struct {
	store    *store.Store
	registry *render.Registry
	bus      Subscriber
}

func NewConnectionManager(s *store.Store, registry *render.Registry, bus Subscriber) *ConnectionManager {
	return &ConnectionManager{
		store:    s,
		registry: registry,
		bus:      bus,
	}
}

func (m *ConnectionManager) AcceptConnection(ctx context.Context, conn io.ReadWriter) {
	session := &Session{
		store:    m.store,
		registry: m.registry,
		bus:      m.bus,
	}
	if err := session.Run(ctx, newCRLFReadWriter(conn)); err != nil {
		slog.WarnContext(ctx, "client session", "error", err)
	}
}
