package reply

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pixil98/go-mud-client/internal/entity"
)

// Well-known discriminator tags the ingestion path keys on.
const (
	TagWaiting       = "Waiting"
	TagScreenCleared = "plugins.editing.ScreenCleared"
	TagFailure       = "Failure"
)

// KeyedEntity is one serialized entity update attached to a reply.
type KeyedEntity struct {
	Key        entity.Key `json:"key"`
	Serialized string     `json:"serialized"`
}

// Envelope is one server-originated event or acknowledgment. The shape is a
// tagged union: the "py/object" discriminator selects the kind, and the two
// boolean flags select how ingestion treats it. Kind-specific payload fields
// are kept raw and pulled out by accessors at render time.
type Envelope struct {
	Tag         string
	Interactive bool
	Information bool
	Entities    []KeyedEntity

	raw    []byte
	fields map[string]json.RawMessage
}

// Decode unmarshals one reply envelope.
func Decode(data []byte) (*Envelope, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("unmarshalling reply: %w", err)
	}

	e := &Envelope{raw: data, fields: fields}
	if raw, ok := fields["py/object"]; ok {
		if err := json.Unmarshal(raw, &e.Tag); err != nil {
			return nil, fmt.Errorf("unmarshalling reply tag: %w", err)
		}
	}
	if raw, ok := fields["interactive"]; ok {
		if err := json.Unmarshal(raw, &e.Interactive); err != nil {
			return nil, fmt.Errorf("unmarshalling interactive flag: %w", err)
		}
	}
	if raw, ok := fields["information"]; ok {
		if err := json.Unmarshal(raw, &e.Information); err != nil {
			return nil, fmt.Errorf("unmarshalling information flag: %w", err)
		}
	}
	if raw, ok := fields["entities"]; ok {
		if err := json.Unmarshal(raw, &e.Entities); err != nil {
			return nil, fmt.Errorf("unmarshalling reply entities: %w", err)
		}
	}

	return e, nil
}

// SimpleTag returns the last dot-separated segment of the discriminator,
// e.g. "plugins.editing.ScreenCleared" becomes "ScreenCleared".
func (e *Envelope) SimpleTag() string {
	parts := strings.Split(e.Tag, ".")
	return parts[len(parts)-1]
}

// Field returns the raw payload field by name, or nil when absent.
func (e *Envelope) Field(name string) json.RawMessage {
	return e.fields[name]
}

// String returns a string-valued payload field, or "" when absent or not a
// string.
func (e *Envelope) String(name string) string {
	var s string
	if raw, ok := e.fields[name]; ok {
		if err := json.Unmarshal(raw, &s); err != nil {
			return ""
		}
	}
	return s
}

// Ref returns an entity reference payload field, or nil when absent or
// malformed.
func (e *Envelope) Ref(name string) *entity.Ref {
	raw, ok := e.fields[name]
	if !ok {
		return nil
	}
	var ref entity.Ref
	if err := json.Unmarshal(raw, &ref); err != nil {
		return nil
	}
	return &ref
}

// Payload unmarshals the whole envelope into a kind-specific shape. Used by
// renderers that know which union member they hold.
func (e *Envelope) Payload(out any) error {
	if e.raw == nil {
		return fmt.Errorf("synthetic reply has no payload")
	}
	if err := json.Unmarshal(e.raw, out); err != nil {
		return fmt.Errorf("unmarshalling payload: %w", err)
	}
	return nil
}

// Waiting builds the transient placeholder appended while a submitted
// command is in flight.
func Waiting() *Envelope {
	return &Envelope{Tag: TagWaiting, fields: map[string]json.RawMessage{}}
}

// Failed builds a synthetic terminal failure, used when a command mutation
// is rejected so the waiting placeholder still gets cleared.
func Failed(message string) *Envelope {
	msg, _ := json.Marshal(message)
	return &Envelope{
		Tag:    TagFailure,
		fields: map[string]json.RawMessage{"message": msg},
	}
}

// Rendered is an optional pre-rendered text block that takes precedence over
// structural rendering when present.
type Rendered struct {
	Lines []string `json:"lines"`
}

// Body joins the rendered lines into one markdown-ish block.
func (r *Rendered) Body() string {
	return strings.Join(r.Lines, "\n\n")
}

// DecodeRendered accepts the structured {lines: [...]} form, a bare JSON
// string, or plain text.
func DecodeRendered(data []byte) (*Rendered, error) {
	var r Rendered
	if err := json.Unmarshal(data, &r); err == nil && r.Lines != nil {
		return &r, nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return &Rendered{Lines: []string{s}}, nil
	}
	return &Rendered{Lines: []string{string(data)}}, nil
}

// Wire is the two-stage encoding replies travel in: the model, and usually
// the rendered block, arrive as JSON strings requiring a second parse.
type Wire struct {
	Rendered json.RawMessage `json:"rendered"`
	Model    string          `json:"model"`
}

// Decode parses both stages. A missing rendered block yields a nil Rendered.
func (w Wire) Decode() (*Rendered, *Envelope, error) {
	env, err := Decode([]byte(w.Model))
	if err != nil {
		return nil, nil, err
	}

	rendered, err := decodeWireRendered(w.Rendered)
	if err != nil {
		return nil, nil, err
	}

	return rendered, env, nil
}

func decodeWireRendered(raw json.RawMessage) (*Rendered, error) {
	if len(raw) == 0 || string(raw) == "null" || string(raw) == `""` {
		return nil, nil
	}
	// The usual double encoding: a JSON string holding the rendered JSON.
	var inner string
	if err := json.Unmarshal(raw, &inner); err == nil {
		if inner == "" || inner == "null" {
			return nil, nil
		}
		return DecodeRendered([]byte(inner))
	}
	return DecodeRendered(raw)
}
