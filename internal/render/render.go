package render

import (
	"fmt"
	"strings"

	"github.com/pixil98/go-mud-client/internal/display"
	"github.com/pixil98/go-mud-client/internal/entity"
	"github.com/pixil98/go-mud-client/internal/reply"
	"github.com/pixil98/go-mud-client/internal/store"
)

// Lookup resolves entity keys against the cache. The store satisfies it.
type Lookup interface {
	Entity(key entity.Key) (*entity.Entity, bool)
}

// Renderer turns one history entry into terminal text.
type Renderer func(*store.HistoryEntry) string

// Registry is the reply dispatcher: a pure lookup from discriminator tag to
// presentation handler, consulted at render time only.
type Registry struct {
	table  *reply.Table[Renderer]
	lookup Lookup
}

func New(lookup Lookup) *Registry {
	r := &Registry{lookup: lookup}
	r.table = reply.NewTable[Renderer](r.renderDefault)

	r.table.Register("AreaObservation", r.renderAreaObservation)
	r.table.Register("DetailedObservation", r.renderDetailedObservation)
	r.table.Register("PersonalObservation", r.renderPersonalObservation)
	r.table.Register("EntitiesObservation", r.renderEntitiesObservation)
	r.table.Register("Success", r.renderMessage)
	r.table.Register("Failure", r.renderMessage)
	r.table.Register("LivingEnteredArea", r.renderRenderedEntry)
	r.table.Register("LivingLeftArea", r.renderRenderedEntry)
	r.table.Register("PlayerSpoke", r.renderRenderedEntry)
	r.table.Register("ItemsHeld", r.renderRenderedEntry)
	r.table.Register("ItemsDropped", r.renderRenderedEntry)
	r.table.Register("ItemsObliterated", r.renderRenderedEntry)
	r.table.Register("EntityCreated", r.renderRenderedEntry)
	r.table.Register("EditingEntityBehavior", r.renderEditing)
	r.table.Register("EditingEntityHelp", r.renderEditing)
	r.table.Register("ScreenCleared", r.renderScreenCleared)
	r.table.Register("DynamicMessage", r.renderDynamicMessage)
	r.table.Register("Universal", r.renderUniversal)
	r.table.Register("Help", r.renderHelp)
	r.table.Register("Waiting", r.renderWaiting)

	return r
}

// Render dispatches the entry to its handler by discriminator tag. Unknown
// tags use the default handler, never an error.
func (r *Registry) Render(entry *store.HistoryEntry) string {
	return r.table.Resolve(entry.Reply)(entry)
}

// Observation payload shapes, mirroring the server's serialized replies.
type observedPerson struct {
	Alive entity.Ref `json:"alive"`
}

type observedItem struct {
	Item entity.Ref `json:"item"`
}

type direction struct {
	Compass string `json:"compass"`
}

type areaRoute struct {
	Area      entity.Ref `json:"area"`
	Direction *direction `json:"direction"`
}

var areaTemplate = mustTemplate("area", `{{ .Where.Name }}
{{- if .Desc }}
{{ .Desc }}
{{- end }}
{{- if .People }}

Also here: {{ range $i, $p := .People }}{{ if $i }}, {{ end }}{{ $p.Alive.Name }}{{ end }}.
{{- end }}
{{- if .Items }}

You see {{ range $i, $it := .Items }}{{ if $i }}, {{ end }}{{ $it.Item.Name }}{{ end }}.
{{- end }}
{{- if .Routes }}

Obvious ways: {{ range $i, $r := .Routes }}{{ if $i }}, {{ end }}{{ if $r.Direction }}{{ $r.Direction.Compass }} to {{ end }}{{ $r.Area.Name }}{{ end }}.
{{- end }}`)

func (r *Registry) renderAreaObservation(entry *store.HistoryEntry) string {
	var obs struct {
		Where  entity.Ref       `json:"where"`
		People []observedPerson `json:"people"`
		Items  []observedItem   `json:"items"`
		Routes []areaRoute      `json:"routes"`
	}
	if err := entry.Reply.Payload(&obs); err != nil {
		return r.renderDefault(entry)
	}

	desc := ""
	if e, ok := r.lookup.Entity(obs.Where.Key); ok {
		desc = e.Description()
	}

	return display.Wrap(execute(areaTemplate, struct {
		Where  entity.Ref
		Desc   string
		People []observedPerson
		Items  []observedItem
		Routes []areaRoute
	}{obs.Where, desc, obs.People, obs.Items, obs.Routes}))
}

func (r *Registry) renderDetailedObservation(entry *store.HistoryEntry) string {
	var obs struct {
		Person *observedPerson `json:"person"`
		Item   *observedItem   `json:"item"`
	}
	if err := entry.Reply.Payload(&obs); err != nil {
		return r.renderDefault(entry)
	}

	var ref *entity.Ref
	if obs.Person != nil && obs.Person.Alive.Key != "" {
		ref = &obs.Person.Alive
	} else if obs.Item != nil && obs.Item.Item.Key != "" {
		ref = &obs.Item.Item
	}
	if ref == nil {
		return r.renderDefault(entry)
	}

	return display.Wrap(r.describe(*ref))
}

func (r *Registry) renderPersonalObservation(entry *store.HistoryEntry) string {
	var obs struct {
		Who observedPerson `json:"who"`
	}
	if err := entry.Reply.Payload(&obs); err != nil {
		return r.renderDefault(entry)
	}

	lines := []string{fmt.Sprintf("You are %s.", obs.Who.Alive.Name)}
	if e, ok := r.lookup.Entity(obs.Who.Alive.Key); ok {
		if desc := e.Description(); desc != "" {
			lines = append(lines, desc)
		}
		if c := e.Chimeras.Containing; c != nil && len(c.Holding) > 0 {
			lines = append(lines, "", "You are holding:")
			for _, h := range c.Holding {
				lines = append(lines, fmt.Sprintf("  %s", h.Name))
			}
		}
	}

	return display.Wrap(strings.Join(lines, "\n"))
}

func (r *Registry) renderEntitiesObservation(entry *store.HistoryEntry) string {
	var obs struct {
		Entities []entity.Ref `json:"entities"`
	}
	if err := entry.Reply.Payload(&obs); err != nil || len(obs.Entities) == 0 {
		return r.renderDefault(entry)
	}

	names := make([]string, len(obs.Entities))
	for i, ref := range obs.Entities {
		names[i] = ref.Name
	}
	return display.Wrap(fmt.Sprintf("You see %s.", strings.Join(names, ", ")))
}

func (r *Registry) renderMessage(entry *store.HistoryEntry) string {
	if msg := entry.Reply.String("message"); msg != "" {
		return display.Wrap(display.Capitalize(msg))
	}
	return r.renderDefault(entry)
}

// renderRenderedEntry handles the reply kinds whose whole presentation is
// the pre-rendered markdown block.
func (r *Registry) renderRenderedEntry(entry *store.HistoryEntry) string {
	if entry.Rendered != nil {
		return Markdown(entry.Rendered.Body())
	}
	if msg := entry.Reply.String("message"); msg != "" {
		return display.Wrap(msg)
	}
	return r.renderDefault(entry)
}

func (r *Registry) renderEditing(entry *store.HistoryEntry) string {
	ref := entry.Reply.Ref("entity")
	if ref == nil {
		return "Editing. (dismiss to continue)"
	}
	return fmt.Sprintf("Editing %s (%s). Dismiss to continue.", ref.Name, ref.Key)
}

func (r *Registry) renderScreenCleared(*store.HistoryEntry) string {
	return "Screen Cleared"
}

func (r *Registry) renderDynamicMessage(entry *store.HistoryEntry) string {
	var payload struct {
		Source  entity.Ref `json:"source"`
		Message struct {
			Message string `json:"message"`
		} `json:"message"`
	}
	if err := entry.Reply.Payload(&payload); err != nil {
		return r.renderDefault(entry)
	}
	return display.Wrap(fmt.Sprintf("%s (from %s)", payload.Message.Message, payload.Source.Name))
}

func (r *Registry) renderUniversal(entry *store.HistoryEntry) string {
	segments := reply.ExpandUniversalEnvelope(entry.Reply)
	if segments == nil {
		return r.renderDefault(entry)
	}

	var b strings.Builder
	for _, seg := range segments {
		if seg.Link {
			fmt.Fprintf(&b, "%s <%s>", seg.Label(), seg.Value)
		} else {
			b.WriteString(seg.Value)
		}
	}
	return display.Wrap(b.String())
}

func (r *Registry) renderHelp(entry *store.HistoryEntry) string {
	if body := entry.Reply.String("body"); body != "" {
		return Markdown(body)
	}
	return r.renderRenderedEntry(entry)
}

func (r *Registry) renderWaiting(*store.HistoryEntry) string {
	return "..."
}

// renderDefault is the fallback for unrecognized tags: show whatever is
// salvageable rather than erroring.
func (r *Registry) renderDefault(entry *store.HistoryEntry) string {
	if entry.Rendered != nil {
		return Markdown(entry.Rendered.Body())
	}
	if msg := entry.Reply.String("message"); msg != "" {
		return display.Wrap(msg)
	}
	if tag := entry.Reply.SimpleTag(); tag != "" {
		return fmt.Sprintf("(%s)", tag)
	}
	return "(unintelligible reply)"
}

// describe renders an entity's detail view from the cache, falling back to
// the reference name when uncached.
func (r *Registry) describe(ref entity.Ref) string {
	e, ok := r.lookup.Entity(ref.Key)
	if !ok {
		return display.Capitalize(ref.Name)
	}

	lines := []string{display.Capitalize(e.Name())}
	if desc := e.Description(); desc != "" {
		lines = append(lines, desc)
	}
	if c := e.Chimeras.Carryable; c != nil && c.Quantity > 1 {
		lines = append(lines, fmt.Sprintf("There are %d of them.", int(c.Quantity)))
	}
	if c := e.Chimeras.Containing; c != nil && len(c.Holding) > 0 {
		lines = append(lines, "", "Holding:")
		for _, h := range c.Holding {
			lines = append(lines, fmt.Sprintf("  %s", h.Name))
		}
	}
	if enc := e.Chimeras.Encyclopedia; enc != nil && enc.Body != "" {
		lines = append(lines, "", enc.Body)
	}

	return strings.Join(lines, "\n")
}
