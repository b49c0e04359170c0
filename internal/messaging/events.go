package messaging

import "encoding/json"

// ReplyEvent announces a change to the history ledger.
type ReplyEvent struct {
	Tag         string `json:"tag"`
	Interactive bool   `json:"interactive"`
	Cleared     bool   `json:"cleared,omitempty"`
}

// EntityEvent announces a cache upsert for one entity key.
type EntityEvent struct {
	Key string `json:"key"`
}

// PresenceEvent announces realtime channel connectivity transitions.
type PresenceEvent struct {
	Connected bool `json:"connected"`
}

// Encode marshals an event payload, swallowing the error: events are
// advisory and every payload here marshals cleanly.
func Encode(v any) []byte {
	data, _ := json.Marshal(v)
	return data
}
