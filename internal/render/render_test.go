package render

import (
	"strings"
	"testing"

	"github.com/pixil98/go-mud-client/internal/entity"
	"github.com/pixil98/go-mud-client/internal/reply"
	"github.com/pixil98/go-mud-client/internal/store"
	"github.com/pixil98/go-testutil"
)

// fakeLookup satisfies Lookup with a fixed entity map.
type fakeLookup struct {
	entities map[entity.Key]*entity.Entity
}

func (f *fakeLookup) Entity(key entity.Key) (*entity.Entity, bool) {
	e, ok := f.entities[key]
	return e, ok
}

func newLookup(t *testing.T, serialized ...string) *fakeLookup {
	t.Helper()
	f := &fakeLookup{entities: map[entity.Key]*entity.Entity{}}
	for _, s := range serialized {
		e, err := entity.Parse([]byte(s))
		if err != nil {
			t.Fatalf("parsing entity: %s", err)
		}
		f.entities[e.Key] = e
	}
	return f
}

func entry(t *testing.T, model string) *store.HistoryEntry {
	t.Helper()
	env, err := reply.Decode([]byte(model))
	if err != nil {
		t.Fatalf("decoding envelope: %s", err)
	}
	return &store.HistoryEntry{Reply: env}
}

func TestRenderMessages(t *testing.T) {
	r := New(&fakeLookup{})

	tests := map[string]struct {
		model string
		exp   string
	}{
		"success capitalizes": {
			model: `{"py/object":"Success","message":"you take the lantern"}`,
			exp:   "You take the lantern",
		},
		"failure capitalizes": {
			model: `{"py/object":"Failure","message":"you can't go that way"}`,
			exp:   "You can't go that way",
		},
		"waiting": {
			model: `{"py/object":"Waiting"}`,
			exp:   "...",
		},
		"screen cleared": {
			model: `{"py/object":"plugins.editing.ScreenCleared"}`,
			exp:   "Screen Cleared",
		},
		"unknown tag shows tag": {
			model: `{"py/object":"mystery.Thing"}`,
			exp:   "(Thing)",
		},
		"unknown tag with message shows message": {
			model: `{"py/object":"mystery.Thing","message":"odd"}`,
			exp:   "odd",
		},
		"editing with entity": {
			model: `{"py/object":"plugins.editing.EditingEntityBehavior","interactive":true,"entity":{"key":"e-1","name":"lantern"}}`,
			exp:   "Editing lantern (e-1). Dismiss to continue.",
		},
		"editing without entity": {
			model: `{"py/object":"plugins.editing.EditingEntityHelp","interactive":true}`,
			exp:   "Editing. (dismiss to continue)",
		},
		"dynamic message": {
			model: `{"py/object":"DynamicMessage","source":{"key":"b-1","name":"parrot"},"message":{"message":"pieces of eight"}}`,
			exp:   "pieces of eight (from parrot)",
		},
		"entities observation": {
			model: `{"py/object":"EntitiesObservation","entities":[{"key":"e-1","name":"rope"},{"key":"e-2","name":"lantern"}]}`,
			exp:   "You see rope, lantern.",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			testutil.AssertEqual(t, "rendered", r.Render(entry(t, tt.model)), tt.exp)
		})
	}
}

func TestRenderUniversal(t *testing.T) {
	r := New(&fakeLookup{})

	got := r.Render(entry(t, `{"py/object":"Universal","f":"edit here: %(url)s","kwargs":{"url":"http://x/edit?token=abc"}}`))
	testutil.AssertEqual(t, "rendered", got, "edit here: http://x/edit <http://x/edit?token=abc>")
}

func TestRenderAreaObservation(t *testing.T) {
	lookup := newLookup(t,
		`{"key":"a-1","klass":{"py/type":"scopes.AreaClass"},"props":{"map":{"name":{"value":"Town Square"},"desc":{"value":"A busy square."}}}}`)
	r := New(lookup)

	model := `{"py/object":"AreaObservation",` +
		`"where":{"key":"a-1","name":"Town Square"},` +
		`"people":[{"alive":{"key":"p-1","name":"Ana"}}],` +
		`"items":[{"item":{"key":"i-1","name":"lantern"}}],` +
		`"routes":[{"area":{"key":"a-2","name":"North Road"},"direction":{"compass":"north"}}]}`

	exp := strings.Join([]string{
		"Town Square",
		"A busy square.",
		"",
		"Also here: Ana.",
		"",
		"You see lantern.",
		"",
		"Obvious ways: north to North Road.",
	}, "\n")

	testutil.AssertEqual(t, "rendered", r.Render(entry(t, model)), exp)
}

func TestRenderAreaObservationUncachedArea(t *testing.T) {
	r := New(&fakeLookup{})

	got := r.Render(entry(t, `{"py/object":"AreaObservation","where":{"key":"a-1","name":"Void"}}`))
	testutil.AssertEqual(t, "rendered", got, "Void")
}

func TestRenderDetailedObservation(t *testing.T) {
	lookup := newLookup(t,
		`{"key":"i-1","klass":{"py/type":"scopes.ItemClass"},"props":{"map":{"name":{"value":"lantern"},"desc":{"value":"Brass, dented."}}},"chimeras":{"carryable":{"quantity":3}}}`)
	r := New(lookup)

	got := r.Render(entry(t, `{"py/object":"DetailedObservation","item":{"item":{"key":"i-1","name":"lantern"}}}`))

	exp := strings.Join([]string{
		"Lantern",
		"Brass, dented.",
		"There are 3 of them.",
	}, "\n")
	testutil.AssertEqual(t, "rendered", got, exp)
}

func TestRenderDetailedObservationUncached(t *testing.T) {
	r := New(&fakeLookup{})

	got := r.Render(entry(t, `{"py/object":"DetailedObservation","person":{"alive":{"key":"p-9","name":"stranger"}}}`))
	testutil.AssertEqual(t, "rendered", got, "Stranger")
}

func TestRenderPersonalObservation(t *testing.T) {
	lookup := newLookup(t,
		`{"key":"p-1","klass":{"py/type":"scopes.AliveClass"},"props":{"map":{"name":{"value":"Ana"},"desc":{"value":"Windswept."}}},"chimeras":{"containing":{"holding":[{"key":"i-1","name":"lantern"}]}}}`)
	r := New(lookup)

	got := r.Render(entry(t, `{"py/object":"PersonalObservation","who":{"alive":{"key":"p-1","name":"Ana"}}}`))

	exp := strings.Join([]string{
		"You are Ana.",
		"Windswept.",
		"",
		"You are holding:",
		"  lantern",
	}, "\n")
	testutil.AssertEqual(t, "rendered", got, exp)
}

func TestRenderFallsBackToMessage(t *testing.T) {
	r := New(&fakeLookup{})

	// Rendered-block kinds degrade to the message field when no block came.
	got := r.Render(entry(t, `{"py/object":"PlayerSpoke","message":"hello there"}`))
	testutil.AssertEqual(t, "rendered", got, "hello there")
}
