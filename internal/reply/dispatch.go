package reply

// Table maps simple discriminator tags to presentation handlers. Unknown
// tags resolve to the fallback handler, never an error; the server is free
// to grow new reply kinds ahead of the client.
type Table[H any] struct {
	handlers map[string]H
	fallback H
}

// NewTable builds a dispatch table with the given fallback handler.
func NewTable[H any](fallback H) *Table[H] {
	return &Table[H]{
		handlers: map[string]H{},
		fallback: fallback,
	}
}

// Register binds a handler to a simple tag, replacing any previous binding.
func (t *Table[H]) Register(tag string, handler H) {
	t.handlers[tag] = handler
}

// Resolve returns the handler for the envelope's simple tag, falling back
// when the tag is unknown.
func (t *Table[H]) Resolve(e *Envelope) H {
	if h, ok := t.handlers[e.SimpleTag()]; ok {
		return h
	}
	return t.fallback
}

// Known reports whether the envelope's simple tag has a registered handler.
func (t *Table[H]) Known(e *Envelope) bool {
	_, ok := t.handlers[e.SimpleTag()]
	return ok
}
