package reply

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var placeholderRe = regexp.MustCompile(`%\(([^()]*)\)s`)

// Segment is one piece of an expanded universal message: either plain text
// or a link.
type Segment struct {
	Link  bool
	Value string
}

// Label is the display text for the segment. Link labels truncate at the
// query string.
func (s Segment) Label() string {
	if !s.Link {
		return s.Value
	}
	if i := strings.Index(s.Value, "?"); i >= 0 {
		return s.Value[:i]
	}
	return s.Value
}

// ExpandUniversal splits a printf-style template on %(name)s placeholders
// and substitutes keyword values in template order. Substituted values that
// begin with "http" become link segments; everything else renders as plain
// text. Empty literal runs are dropped.
func ExpandUniversal(f string, kwargs map[string]any) []Segment {
	var segments []Segment

	emitLiteral := func(text string) {
		if text != "" {
			segments = append(segments, Segment{Value: text})
		}
	}

	last := 0
	for _, m := range placeholderRe.FindAllStringSubmatchIndex(f, -1) {
		emitLiteral(f[last:m[0]])

		name := f[m[2]:m[3]]
		value := stringify(kwargs[name])
		segments = append(segments, Segment{
			Link:  strings.HasPrefix(value, "http"),
			Value: value,
		})

		last = m[1]
	}
	emitLiteral(f[last:])

	return segments
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}

// ExpandUniversalEnvelope expands a Universal reply's f/kwargs payload.
func ExpandUniversalEnvelope(e *Envelope) []Segment {
	f := e.String("f")
	if f == "" {
		return nil
	}
	var kwargs map[string]any
	if raw := e.Field("kwargs"); raw != nil {
		if err := json.Unmarshal(raw, &kwargs); err != nil {
			return nil
		}
	}
	return ExpandUniversal(f, kwargs)
}
