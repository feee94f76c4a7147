package events

// Event is a structured state change emitted by the pool core. Attributes
// carry the values an indexer or RPC subscriber would surface.
type Event interface {
	EventType() string
	Attributes() map[string]string
}

// Emitter broadcasts events to downstream subscribers.
type Emitter interface {
	Emit(Event)
}

// NoopEmitter satisfies Emitter while discarding everything. Engines treat a
// nil emitter the same way, so this exists mainly for explicit wiring.
type NoopEmitter struct{}

// Emit implements the Emitter interface.
func (NoopEmitter) Emit(Event) {}
