// internal/replay/sink.go
package replay

import (
	"time"

	"github.com/rs/zerolog"
)

// ProgressSink receives replay progress notifications. Implementations are
// advisory observers: calls are best-effort and must be treated as
// fire-and-forget by the replay loop.
type ProgressSink interface {
	OnProgress(currentIndex, total int, description string)
	OnPointerHint(x, y int)
}

type sinkEvent struct {
	pointer     bool
	index, x    int
	total, y    int
	description string
}

// sinkDispatcher decouples the replay loop from the sink. Events go through
// a bounded buffer drained by one goroutine; when the buffer is full the
// event is dropped, so a slow or stuck sink can never stall replay.
type sinkDispatcher struct {
	sink   ProgressSink
	events chan sinkEvent
	done   chan struct{}
	logger zerolog.Logger
}

func newSinkDispatcher(sink ProgressSink, logger zerolog.Logger) *sinkDispatcher {
	d := &sinkDispatcher{
		sink:   sink,
		events: make(chan sinkEvent, 64),
		done:   make(chan struct{}),
		logger: logger,
	}
	go d.drain()
	return d
}

func (d *sinkDispatcher) drain() {
	defer close(d.done)
	for ev := range d.events {
		if d.sink == nil {
			continue
		}
		if ev.pointer {
			d.sink.OnPointerHint(ev.x, ev.y)
		} else {
			d.sink.OnProgress(ev.index, ev.total, ev.description)
		}
	}
}

func (d *sinkDispatcher) progress(index, total int, description string) {
	d.offer(sinkEvent{index: index, total: total, description: description})
}

func (d *sinkDispatcher) pointerHint(x, y int) {
	d.offer(sinkEvent{pointer: true, x: x, y: y})
}

func (d *sinkDispatcher) offer(ev sinkEvent) {
	select {
	case d.events <- ev:
	default:
		d.logger.Debug().Msg("progress sink buffer full, dropping event")
	}
}

// sinkFlushTimeout bounds how long close waits for the drain goroutine.
// A sink stuck inside a notification must not hold up session teardown.
const sinkFlushTimeout = 500 * time.Millisecond

// close flushes queued events, waiting at most sinkFlushTimeout for the
// drain goroutine. A sink still blocked after that is abandoned with its
// goroutine; remaining events are dropped.
func (d *sinkDispatcher) close() {
	close(d.events)
	timer := time.NewTimer(sinkFlushTimeout)
	defer timer.Stop()
	select {
	case <-d.done:
	case <-timer.C:
		d.logger.Warn().Msg("progress sink did not drain in time, abandoning it")
	}
}
