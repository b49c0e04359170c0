package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"

	"github.com/pixil98/go-mud-client/internal/entity"
	"github.com/pixil98/go-mud-client/internal/messaging"
	"github.com/pixil98/go-mud-client/internal/reply"
)

// UpsertOne parses one serialized entity and replaces whatever the cache
// held for its key. Last write wins; entries are never diffed or merged.
func (s *Store) UpsertOne(key entity.Key, serialized string) {
	s.mu.Lock()
	ok := s.upsertLocked(key, serialized)
	s.mu.Unlock()

	if ok {
		s.publish(messaging.SubjectEntities, messaging.Encode(messaging.EntityEvent{Key: key}))
	}
}

// UpsertMany applies a batch of serialized entities in arrival order. A
// payload that fails to parse is logged and skipped; the rest of the batch
// still applies.
func (s *Store) UpsertMany(rows []reply.KeyedEntity) {
	applied := make([]entity.Key, 0, len(rows))

	s.mu.Lock()
	for _, row := range rows {
		if s.upsertLocked(row.Key, row.Serialized) {
			applied = append(applied, row.Key)
		}
	}
	s.mu.Unlock()

	for _, key := range applied {
		s.publish(messaging.SubjectEntities, messaging.Encode(messaging.EntityEvent{Key: key}))
	}
}

func (s *Store) upsertLocked(key entity.Key, serialized string) bool {
	e, err := entity.Parse([]byte(serialized))
	if err != nil {
		slog.Warn("skipping malformed entity", "key", key, "error", err)
		return false
	}
	if key == "" {
		key = e.Key
	}
	s.entities[key] = e
	return true
}

// Entity returns the last known state for a key.
func (s *Store) Entity(key entity.Key) (*entity.Entity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entities[key]
	return e, ok
}

// EnsureLoaded resolves immediately when the key is cached or the world is
// frozen; otherwise it fetches by key and upserts the result.
func (s *Store) EnsureLoaded(ctx context.Context, key entity.Key) error {
	s.mu.Lock()
	_, cached := s.entities[key]
	s.mu.Unlock()

	if cached || s.disableRefresh {
		return nil
	}

	return s.fetch(ctx, key)
}

// RefreshEntity is EnsureLoaded under the name the actions expose.
func (s *Store) RefreshEntity(ctx context.Context, key entity.Key) error {
	return s.EnsureLoaded(ctx, key)
}

// NeedEntity always re-fetches, supporting force-refresh. Frozen-world mode
// still short-circuits it.
func (s *Store) NeedEntity(ctx context.Context, key entity.Key) error {
	if s.disableRefresh {
		return nil
	}
	return s.fetch(ctx, key)
}

func (s *Store) fetch(ctx context.Context, key entity.Key) error {
	rows, err := s.api.EntitiesByKey(ctx, key)
	if err != nil {
		return fmt.Errorf("fetching entity %q: %w", key, err)
	}
	s.UpsertMany(rows)
	return nil
}

// UpdateEntity pushes an edited entity to the server and folds the affected
// entities back into the cache.
func (s *Store) UpdateEntity(ctx context.Context, e *entity.Entity) error {
	serialized, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshalling entity %q: %w", e.Key, err)
	}

	affected, err := s.api.UpdateEntity(ctx, e.Key, string(serialized))
	if err != nil {
		return fmt.Errorf("updating entity %q: %w", e.Key, err)
	}

	s.UpsertMany(affected)
	return nil
}

// LoadAreas pulls every area into the cache and remembers which keys are
// areas for the world view.
func (s *Store) LoadAreas(ctx context.Context) error {
	if s.disableRefresh {
		return nil
	}

	rows, err := s.api.Areas(ctx)
	if err != nil {
		return fmt.Errorf("fetching areas: %w", err)
	}
	s.UpsertMany(rows)

	s.mu.Lock()
	for _, row := range rows {
		s.areaKeys[row.Key] = struct{}{}
	}
	s.mu.Unlock()

	return nil
}

// LoadPeople pulls every living entity into the cache.
func (s *Store) LoadPeople(ctx context.Context) error {
	if s.disableRefresh {
		return nil
	}

	rows, err := s.api.People(ctx)
	if err != nil {
		return fmt.Errorf("fetching people: %w", err)
	}
	s.UpsertMany(rows)

	s.mu.Lock()
	for _, row := range rows {
		s.peopleKeys[row.Key] = struct{}{}
	}
	s.mu.Unlock()

	return nil
}

// Areas returns the cached areas sorted by name.
func (s *Store) Areas() []*entity.Entity {
	return s.collect(func(s *Store) map[entity.Key]struct{} { return s.areaKeys })
}

// People returns the cached people sorted by name.
func (s *Store) People() []*entity.Entity {
	return s.collect(func(s *Store) map[entity.Key]struct{} { return s.peopleKeys })
}

func (s *Store) collect(pick func(*Store) map[entity.Key]struct{}) []*entity.Entity {
	s.mu.Lock()
	var out []*entity.Entity
	for key := range pick(s) {
		if e, ok := s.entities[key]; ok {
			out = append(out, e)
		}
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}
