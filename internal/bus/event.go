package bus

import "time"

// Event is a domain event published on the in-process bus.
//
// Kinds are dot-namespaced: "rt.*" for decoded server pushes,
// "state.*" for store change notifications consumed by the UI layer,
// "session.*" for connection lifecycle.
type Event struct {
	Kind    string
	At      time.Time
	Payload any
}
