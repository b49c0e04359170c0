package messaging

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
)

// Subjects the client publishes internal events on. The UI and any attached
// telnet sessions subscribe to these instead of polling the store.
const (
	SubjectReplies  = "replies"
	SubjectEntities = "entities"
	SubjectPresence = "presence"
)

// Bus is the client's internal event fan-out: an embedded NATS server plus
// one in-process connection. Store writes go in, front-ends get told.
type Bus struct {
	ns   *server.Server
	conn *nats.Conn

	startupTimeout time.Duration
	host           string
	port           int
}

// NewBus starts the embedded server and connects to it, so the bus is
// usable as soon as it's constructed. Other workers subscribe during their
// own startup and must not have to wait for a start ordering.
func NewBus(opts ...BusOpt) (*Bus, error) {
	b := &Bus{
		startupTimeout: 10 * time.Second,
		host:           "127.0.0.1",
	}

	for _, opt := range opts {
		opt(b)
	}

	ns, err := server.NewServer(&server.Options{
		Host:   b.host,
		Port:   b.port,
		NoSigs: true, // Let the application handle signals
	})
	if err != nil {
		return nil, err
	}
	b.ns = ns

	b.ns.Start()
	if !b.ns.ReadyForConnections(b.startupTimeout) {
		return nil, fmt.Errorf("bus not ready for connections")
	}

	conn, err := nats.Connect(b.ns.ClientURL())
	if err != nil {
		b.ns.Shutdown()
		return nil, fmt.Errorf("creating bus client connection: %w", err)
	}
	b.conn = conn

	return b, nil
}

func (b *Bus) Start(ctx context.Context) error {
	slog.InfoContext(ctx, "event bus listening", "addr", b.ns.Addr())

	<-ctx.Done()
	b.conn.Close()
	b.ns.Shutdown()
	b.ns.WaitForShutdown()

	return nil
}

// Subscribe creates a subscription on the given subject.
// The handler is called for each message received.
// Returns an unsubscribe function to remove the subscription.
func (b *Bus) Subscribe(subject string, handler func(data []byte)) (func(), error) {
	if b.conn == nil {
		return nil, fmt.Errorf("bus not started")
	}
	sub, err := b.conn.Subscribe(subject, func(msg *nats.Msg) {
		handler(msg.Data)
	})
	if err != nil {
		return nil, err
	}
	return func() { sub.Unsubscribe() }, nil
}

// Publish sends a message to the given subject.
func (b *Bus) Publish(subject string, data []byte) error {
	if b.conn == nil {
		return fmt.Errorf("bus not started")
	}
	return b.conn.Publish(subject, data)
}
