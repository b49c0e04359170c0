package entity

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Key identifies an entity. Keys are opaque, server-assigned, and stable for
// the lifetime of the entity.
type Key = string

// Klass is the server's type descriptor for an entity or reference. The
// interesting field is "py/type", e.g. "scopes.AreaClass".
type Klass map[string]string

// Kind strips the descriptor down to a simple kind name: "scopes.AreaClass"
// becomes "Area".
func (k Klass) Kind() string {
	t := k["py/type"]
	t = strings.TrimPrefix(t, "scopes.")
	return strings.TrimSuffix(t, "Class")
}

// Ref is a by-value reference to another entity, embedded inside
// observations and capability payloads.
type Ref struct {
	Key   Key    `json:"key"`
	Klass Klass  `json:"klass"`
	Name  string `json:"name"`
}

// Property is a single named value in an entity's property map.
type Property struct {
	Value json.RawMessage `json:"value"`
}

// Props holds the entity's property map. Every entity carries at least name
// and description.
type Props struct {
	Map map[string]Property `json:"map"`
}

// String returns the named property as a string, or "" when absent or not
// string-valued.
func (p Props) String(name string) string {
	prop, ok := p.Map[name]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(prop.Value, &s); err != nil {
		return ""
	}
	return s
}

type Behavior struct {
	Lua    *string  `json:"lua"`
	Python *string  `json:"python"`
	Logs   []string `json:"logs"`
}

type Behaviors struct {
	Map map[string]Behavior `json:"map"`
}

type Containing struct {
	Holding []Ref `json:"holding"`
}

type Occupyable struct {
	Occupied []Ref `json:"occupied"`
}

type Visible struct {
	HardToSee bool `json:"hard_to_see"`
	Hidden    bool `json:"hidden"`
}

type Visibility struct {
	Visible Visible `json:"visible"`
}

type CarryableKind struct {
	Identity json.RawMessage `json:"identity"`
}

type Carryable struct {
	Quantity float64       `json:"quantity"`
	Kind     CarryableKind `json:"kind"`
}

type Exit struct {
	Area Ref `json:"area"`
}

type Encyclopedia struct {
	Body string `json:"body"`
}

// BehaviorSet wraps the nested behavior map the server serializes under the
// behaviors chimera.
type BehaviorSet struct {
	Behaviors Behaviors `json:"behaviors"`
}

// Chimeras are the optional capability extensions an entity may expose. An
// entity is polymorphic over whichever subset is populated; presentation
// code checks presence and never type-casts.
type Chimeras struct {
	Behaviors    *BehaviorSet  `json:"behaviors"`
	Containing   *Containing   `json:"containing"`
	Encyclopedia *Encyclopedia `json:"encyclopedia"`
	Occupyable   *Occupyable   `json:"occupyable"`
	Visibility   *Visibility   `json:"visibility"`
	Carryable    *Carryable    `json:"carryable"`
	Exit         *Exit         `json:"exit"`
}

// Entity is any addressable game object. Areas, people and items share this
// one shape, distinguished only by klass and by which chimeras are present.
type Entity struct {
	Key      Key      `json:"key"`
	URL      string   `json:"url"`
	Klass    Klass    `json:"klass"`
	Creator  Ref      `json:"creator"`
	Props    Props    `json:"props"`
	Chimeras Chimeras `json:"chimeras"`
}

func (e *Entity) Name() string {
	return e.Props.String("name")
}

func (e *Entity) Description() string {
	return e.Props.String("desc")
}

func (e *Entity) Kind() string {
	return e.Klass.Kind()
}

// HardToSee reports whether the entity's visibility chimera marks it as hard
// to see.
func (e *Entity) HardToSee() bool {
	return e.Chimeras.Visibility != nil && e.Chimeras.Visibility.Visible.HardToSee
}

// Ref returns a by-value reference to the entity.
func (e *Entity) Ref() Ref {
	return Ref{Key: e.Key, Klass: e.Klass, Name: e.Name()}
}

// Parse decodes one serialized entity as delivered by the server.
func Parse(serialized []byte) (*Entity, error) {
	var e Entity
	if err := json.Unmarshal(serialized, &e); err != nil {
		return nil, fmt.Errorf("unmarshalling entity: %w", err)
	}
	if e.Key == "" {
		return nil, fmt.Errorf("entity missing key")
	}
	return &e, nil
}
