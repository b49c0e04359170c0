package store

import (
	"context"
	"testing"

	"github.com/pixil98/go-mud-client/internal/reply"
	"github.com/pixil98/go-testutil"
)

func TestUpsertLastWriteWins(t *testing.T) {
	s := New(&fakeAPI{})

	s.UpsertOne("e-1", entityJSON("e-1", "rusty lantern"))
	s.UpsertOne("e-1", entityJSON("e-1", "polished lantern"))

	e, ok := s.Entity("e-1")
	if !ok {
		t.Fatal("expected a cached entity")
	}
	testutil.AssertEqual(t, "name", e.Name(), "polished lantern")
}

func TestUpsertManySkipsMalformed(t *testing.T) {
	p := &fakePublisher{}
	s := New(&fakeAPI{}, WithPublisher(p))

	s.UpsertMany([]reply.KeyedEntity{
		keyed("e-1", "lantern"),
		{Key: "e-2", Serialized: "{{{"},
		keyed("e-3", "rope"),
	})

	if _, ok := s.Entity("e-1"); !ok {
		t.Error("expected e-1 to be cached")
	}
	if _, ok := s.Entity("e-2"); ok {
		t.Error("expected e-2 to be skipped")
	}
	if _, ok := s.Entity("e-3"); !ok {
		t.Error("expected e-3 to be cached despite the malformed row")
	}

	testutil.AssertEqual(t, "entity events", len(p.subjects), 2)
}

func TestEnsureLoaded(t *testing.T) {
	tests := map[string]struct {
		precache   bool
		frozen     bool
		expFetches int
	}{
		"cached entity resolves locally": {precache: true, expFetches: 0},
		"uncached entity fetches":        {expFetches: 1},
		"frozen world never fetches":     {frozen: true, expFetches: 0},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			f := &fakeAPI{byKey: map[string][]reply.KeyedEntity{
				"e-1": {keyed("e-1", "lantern")},
			}}

			opts := []Opt{}
			if tt.frozen {
				opts = append(opts, WithoutRefresh())
			}
			s := New(f, opts...)

			if tt.precache {
				s.UpsertOne("e-1", entityJSON("e-1", "lantern"))
			}

			if err := s.EnsureLoaded(context.Background(), "e-1"); err != nil {
				t.Fatalf("unexpected error: %s", err)
			}

			testutil.AssertEqual(t, "fetches", f.fetches, tt.expFetches)

			if tt.expFetches > 0 {
				if _, ok := s.Entity("e-1"); !ok {
					t.Error("expected the fetched entity to be cached")
				}
			}
		})
	}
}

func TestNeedEntityAlwaysFetches(t *testing.T) {
	f := &fakeAPI{byKey: map[string][]reply.KeyedEntity{
		"e-1": {keyed("e-1", "lantern")},
	}}
	s := New(f)

	s.UpsertOne("e-1", entityJSON("e-1", "stale lantern"))

	if err := s.NeedEntity(context.Background(), "e-1"); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	testutil.AssertEqual(t, "fetches", f.fetches, 1)

	e, _ := s.Entity("e-1")
	testutil.AssertEqual(t, "refreshed name", e.Name(), "lantern")
}

func TestUpdateEntity(t *testing.T) {
	f := &fakeAPI{byKey: map[string][]reply.KeyedEntity{
		"e-1": {keyed("e-1", "renamed lantern")},
	}}
	s := New(f)

	s.UpsertOne("e-1", entityJSON("e-1", "lantern"))
	e, _ := s.Entity("e-1")

	if err := s.UpdateEntity(context.Background(), e); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	updated, _ := s.Entity("e-1")
	testutil.AssertEqual(t, "affected entity folded back", updated.Name(), "renamed lantern")
}

func TestWorldViews(t *testing.T) {
	f := &fakeAPI{
		areas: []reply.KeyedEntity{
			keyed("a-2", "windy ridge"),
			keyed("a-1", "dusty hall"),
		},
		people: []reply.KeyedEntity{
			keyed("p-1", "ana"),
		},
	}
	s := New(f)

	if err := s.LoadAreas(context.Background()); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if err := s.LoadPeople(context.Background()); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	areas := s.Areas()
	testutil.AssertEqual(t, "area count", len(areas), 2)
	testutil.AssertEqual(t, "first area", areas[0].Name(), "dusty hall")
	testutil.AssertEqual(t, "second area", areas[1].Name(), "windy ridge")

	people := s.People()
	testutil.AssertEqual(t, "people count", len(people), 1)
	testutil.AssertEqual(t, "person", people[0].Name(), "ana")
}

func TestWorldViewsFrozen(t *testing.T) {
	f := &fakeAPI{areas: []reply.KeyedEntity{keyed("a-1", "dusty hall")}}
	s := New(f, WithoutRefresh())

	if err := s.LoadAreas(context.Background()); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	testutil.AssertEqual(t, "area count", len(s.Areas()), 0)
}
