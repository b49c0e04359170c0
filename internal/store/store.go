package store

import (
	"context"
	"sync"

	"github.com/pixil98/go-mud-client/internal/api"
	"github.com/pixil98/go-mud-client/internal/entity"
	"github.com/pixil98/go-mud-client/internal/reply"
	"github.com/pixil98/go-mud-client/internal/storage"
)

// API is the server surface the store consumes. *api.Client satisfies it;
// tests substitute fakes.
type API interface {
	Login(ctx context.Context, username, password string) (*api.Auth, error)
	RedeemInvite(ctx context.Context, username, password, token, secret string) (*api.Auth, error)
	Language(ctx context.Context, text, evaluator string) (*api.Evaluation, error)
	UpdateEntity(ctx context.Context, key, serialized string) ([]reply.KeyedEntity, error)
	EntitiesByKey(ctx context.Context, key string) ([]reply.KeyedEntity, error)
	Areas(ctx context.Context) ([]reply.KeyedEntity, error)
	People(ctx context.Context) ([]reply.KeyedEntity, error)
}

// Publisher provides the ability to publish messages to subjects.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// Channel is the realtime push channel lifecycle the session drives.
type Channel interface {
	Connect(token string)
	Disconnect()
}

// Store reconciles everything the client knows: the session, the entity
// cache, and the reply history. All mutation goes through its methods; there
// are no ambient singletons.
type Store struct {
	api       API
	bundles   *storage.BundleStore[*Session]
	channel   Channel
	publisher Publisher

	// disableRefresh freezes the world: entity lookups never go to the
	// network and resolve from whatever the cache holds.
	disableRefresh bool

	mu            sync.Mutex
	session       Session
	connected     bool
	received      int
	entities      map[entity.Key]*entity.Entity
	areaKeys      map[entity.Key]struct{}
	peopleKeys    map[entity.Key]struct{}
	responses     []*HistoryEntry
	interactables []*HistoryEntry
}

type Opt func(*Store)

// WithSessionStore persists the auth bundle through the given store.
func WithSessionStore(b *storage.BundleStore[*Session]) Opt {
	return func(s *Store) {
		s.bundles = b
	}
}

// WithChannel ties the realtime channel's lifecycle to the session.
func WithChannel(c Channel) Opt {
	return func(s *Store) {
		s.channel = c
	}
}

// WithPublisher fans store events out on the internal bus.
func WithPublisher(p Publisher) Opt {
	return func(s *Store) {
		s.publisher = p
	}
}

// WithoutRefresh enables frozen-world mode: no entity fetches, ever.
func WithoutRefresh() Opt {
	return func(s *Store) {
		s.disableRefresh = true
	}
}

func New(a API, opts ...Opt) *Store {
	s := &Store{
		api:        a,
		entities:   map[entity.Key]*entity.Entity{},
		areaKeys:   map[entity.Key]struct{}{},
		peopleKeys: map[entity.Key]struct{}{},
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// AttachChannel wires the realtime channel after construction. The channel
// needs the store as its event sink, so the two are built in sequence and
// joined here.
func (s *Store) AttachChannel(c Channel) {
	s.channel = c
}

// Connected reports whether the realtime channel is currently established.
func (s *Store) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

func (s *Store) publish(subject string, data []byte) {
	if s.publisher == nil {
		return
	}
	// Best effort: a full or stopped bus never blocks reconciliation.
	_ = s.publisher.Publish(subject, data)
}
