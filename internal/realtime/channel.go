package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/pixil98/go-mud-client/internal/reply"
)

const (
	DefaultMinBackoff = 250 * time.Millisecond
	DefaultMaxBackoff = 30 * time.Second

	writeWait = 10 * time.Second
)

// Sink receives everything the channel produces. The store implements it.
type Sink interface {
	HandleNearby(wire reply.Wire)
	HandleConnected()
	HandleDisconnected()
}

// Channel maintains the one long-lived nearby subscription over a
// graphql-transport-ws WebSocket. It reconnects on transport failure with
// capped exponential backoff, and its lifecycle follows the session:
// Connect on login, Disconnect on logout.
type Channel struct {
	url    string
	sink   Sink
	dialer *websocket.Dialer

	minBackoff time.Duration
	maxBackoff time.Duration

	mu      sync.Mutex
	token   string
	enabled bool
	cancel  context.CancelFunc
	wake    chan struct{}
}

type ChannelOpt func(*Channel)

// WithBackoff overrides the reconnect backoff bounds.
func WithBackoff(floor, ceiling time.Duration) ChannelOpt {
	return func(c *Channel) {
		c.minBackoff = floor
		c.maxBackoff = ceiling
	}
}

func NewChannel(url string, sink Sink, opts ...ChannelOpt) *Channel {
	c := &Channel{
		url:        url,
		sink:       sink,
		dialer:     websocket.DefaultDialer,
		minBackoff: DefaultMinBackoff,
		maxBackoff: DefaultMaxBackoff,
		wake:       make(chan struct{}, 1),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Connect arms the channel with the session's token. Any existing transport
// is torn down so the next dial carries the new token.
func (c *Channel) Connect(token string) {
	c.mu.Lock()
	c.token = token
	c.enabled = true
	if c.cancel != nil {
		c.cancel()
	}
	c.mu.Unlock()

	select {
	case c.wake <- struct{}{}:
	default:
	}
}

// Disconnect tears the transport down and stops reconnection attempts. No
// sink callbacks fire after it returns.
func (c *Channel) Disconnect() {
	c.mu.Lock()
	c.enabled = false
	c.token = ""
	if c.cancel != nil {
		c.cancel()
	}
	c.mu.Unlock()
}

// Start runs the channel until ctx is done. It idles until armed by
// Connect.
func (c *Channel) Start(ctx context.Context) error {
	backoff := c.minBackoff

	for {
		if ctx.Err() != nil {
			return nil
		}

		token, ok := c.armed()
		if !ok {
			select {
			case <-ctx.Done():
				return nil
			case <-c.wake:
			}
			continue
		}

		sessionCtx, cancel := context.WithCancel(ctx)
		c.setCancel(cancel)

		err := c.run(sessionCtx, token)
		cancel()
		c.setCancel(nil)

		if err != nil {
			slog.DebugContext(ctx, "realtime channel dropped", "error", err)
		}

		// Back off only while still armed; a deliberate disconnect idles
		// immediately.
		if _, ok := c.armed(); !ok {
			backoff = c.minBackoff
			continue
		}

		select {
		case <-ctx.Done():
			return nil
		case <-c.wake:
			backoff = c.minBackoff
		case <-time.After(backoff):
			backoff *= 2
			if backoff > c.maxBackoff {
				backoff = c.maxBackoff
			}
		}
	}
}

func (c *Channel) armed() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token, c.enabled && c.token != ""
}

func (c *Channel) setCancel(cancel context.CancelFunc) {
	c.mu.Lock()
	c.cancel = cancel
	c.mu.Unlock()
}

// emit invokes a sink callback unless the channel has been torn down.
func (c *Channel) emit(fn func()) {
	c.mu.Lock()
	enabled := c.enabled
	c.mu.Unlock()
	if enabled {
		fn()
	}
}

// run dials, performs the graphql-transport-ws handshake, subscribes, and
// pumps pushed batches into the sink until the transport drops.
func (c *Channel) run(ctx context.Context, token string) error {
	conn, _, err := c.dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return fmt.Errorf("dialing %s: %w", c.url, err)
	}
	defer conn.Close()

	// Unblock reads when the session is cancelled.
	go func() {
		<-ctx.Done()
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(writeWait))
		_ = conn.Close()
	}()

	if err := c.handshake(conn, token); err != nil {
		return err
	}

	c.emit(c.sink.HandleConnected)
	defer c.emit(c.sink.HandleDisconnected)

	return c.pump(conn)
}

func (c *Channel) handshake(conn *websocket.Conn, token string) error {
	if err := writeMessage(conn, wsMessage{
		Type:    msgConnectionInit,
		Payload: mustMarshal(initPayload{Token: token}),
	}); err != nil {
		return fmt.Errorf("sending connection_init: %w", err)
	}

	var ack wsMessage
	if err := conn.ReadJSON(&ack); err != nil {
		return fmt.Errorf("reading connection_ack: %w", err)
	}
	if ack.Type != msgConnectionAck {
		return fmt.Errorf("expected connection_ack, got %q", ack.Type)
	}

	if err := writeMessage(conn, wsMessage{
		Id:      uuid.New().String(),
		Type:    msgSubscribe,
		Payload: mustMarshal(subscribePayload{Query: nearbyDocument}),
	}); err != nil {
		return fmt.Errorf("sending subscribe: %w", err)
	}

	return nil
}

func (c *Channel) pump(conn *websocket.Conn) error {
	for {
		var msg wsMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return fmt.Errorf("reading message: %w", err)
		}

		switch msg.Type {
		case msgNext:
			c.forward(msg.Payload)

		case msgPing:
			if err := writeMessage(conn, wsMessage{Type: msgPong}); err != nil {
				return fmt.Errorf("sending pong: %w", err)
			}

		case msgError:
			return fmt.Errorf("subscription error: %s", string(msg.Payload))

		case msgComplete:
			return fmt.Errorf("subscription completed by server")
		}
	}
}

// forward hands each envelope of a pushed batch to the sink, preserving
// batch-internal order. A garbled batch is dropped whole; a garbled item is
// the sink's problem to skip.
func (c *Channel) forward(payload json.RawMessage) {
	var body struct {
		Data struct {
			Nearby []reply.Wire `json:"nearby"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		slog.Warn("skipping malformed nearby batch", "error", err)
		return
	}

	for _, wire := range body.Data.Nearby {
		w := wire
		c.emit(func() { c.sink.HandleNearby(w) })
	}
}

func writeMessage(conn *websocket.Conn, msg wsMessage) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(msg)
}

func mustMarshal(v any) json.RawMessage {
	data, _ := json.Marshal(v)
	return data
}
