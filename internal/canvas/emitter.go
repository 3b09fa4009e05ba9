package canvas

import "context"

// ─────────────────────────────────────────────────────────────
// EventEmitter — decouples the coordinator from the UI runtime
// ─────────────────────────────────────────────────────────────

// EventEmitter is an interface for emitting events to the presentation
// layer. The coordinator emits element lifecycle and save-failure events
// through it instead of calling into any UI runtime directly, which
// keeps it independently testable with a mock emitter.
type EventEmitter interface {
	Emit(ctx context.Context, event string, data any)
}

// MockEmitter is a test-friendly EventEmitter that records all calls.
type MockEmitter struct {
	Events []EmittedEvent
}

// EmittedEvent holds a single recorded emission for test assertions.
type EmittedEvent struct {
	Event string
	Data  any
}

func (m *MockEmitter) Emit(_ context.Context, event string, data any) {
	m.Events = append(m.Events, EmittedEvent{Event: event, Data: data})
}
