// internal/eventhub/hub.go
package eventhub

import (
	"autoscribe/internal/recorder"
	"autoscribe/internal/replay"
)

// Broadcaster delivers an event to whatever UI surface is attached. The
// WebSocket control server implements it; a headless engine runs with
// none attached.
type Broadcaster interface {
	BroadcastEvent(eventType string, payload interface{})
}

// EventHub is the single dispatch point for engine events toward the UI.
type EventHub struct {
	broadcaster Broadcaster
}

// New creates an EventHub with no broadcaster attached.
func New() *EventHub {
	return &EventHub{}
}

// SetBroadcaster attaches the transport-side broadcaster.
func (h *EventHub) SetBroadcaster(b Broadcaster) {
	h.broadcaster = b
}

func (h *EventHub) emit(eventName string, payload interface{}) {
	if h.broadcaster != nil {
		h.broadcaster.BroadcastEvent(eventName, payload)
	}
}

// Emit sends an arbitrary event.
func (h *EventHub) Emit(eventName string, payload interface{}) {
	h.emit(eventName, payload)
}

// EmitRecorderChanged reports a recorder lifecycle transition.
func (h *EventHub) EmitRecorderChanged(status recorder.Status) {
	h.emit("recorder:changed", status)
}

// ReplayProgressEvent is one step of a running replay.
type ReplayProgressEvent struct {
	CurrentIndex int    `json:"current_index"`
	Total        int    `json:"total"`
	Description  string `json:"description"`
}

func (h *EventHub) EmitReplayProgress(event ReplayProgressEvent) {
	h.emit("replay:progress", event)
}

// ReplayPointerEvent carries target coordinates for the pointer overlay.
type ReplayPointerEvent struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (h *EventHub) EmitReplayPointer(event ReplayPointerEvent) {
	h.emit("replay:pointer", event)
}

// EmitReplayFinished reports a replay's terminal outcome.
func (h *EventHub) EmitReplayFinished(outcome replay.Outcome) {
	h.emit("replay:finished", outcome)
}

// CatalogChangedEvent signals that the script catalog changed, either
// through an engine operation or an out-of-band file edit.
type CatalogChangedEvent struct {
	Path string `json:"path,omitempty"`
}

func (h *EventHub) EmitCatalogChanged(event CatalogChangedEvent) {
	h.emit("catalog:changed", event)
}

// ProgressSinkAdapter bridges the replay session's ProgressSink onto the
// hub.
type ProgressSinkAdapter struct {
	Hub *EventHub
}

func (a *ProgressSinkAdapter) OnProgress(currentIndex, total int, description string) {
	a.Hub.EmitReplayProgress(ReplayProgressEvent{
		CurrentIndex: currentIndex,
		Total:        total,
		Description:  description,
	})
}

func (a *ProgressSinkAdapter) OnPointerHint(x, y int) {
	a.Hub.EmitReplayPointer(ReplayPointerEvent{X: x, Y: y})
}
