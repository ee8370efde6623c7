// internal/recorder/session.go
package recorder

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"autoscribe/internal/action"
	"autoscribe/internal/errdefs"
)

// State is the recording session lifecycle state.
type State string

const (
	StateIdle      State = "idle"
	StateRecording State = "recording"
	StatePaused    State = "paused"
	StateStopped   State = "stopped"
)

// Status is a point-in-time snapshot of the recorder.
type Status struct {
	SessionID   string    `json:"session_id,omitempty"`
	Name        string    `json:"name,omitempty"`
	State       State     `json:"state"`
	ActionCount int       `json:"action_count"`
	StartedAt   time.Time `json:"started_at,omitempty"`
}

// Session is one live capture context. OS input callbacks append to its
// log asynchronously; every read hands out a snapshot, never the live
// slice.
type Session struct {
	id        string
	name      string
	startedAt time.Time

	mu      sync.Mutex
	state   State
	actions []action.Action
}

func newSession(name string) *Session {
	return &Session{
		id:        uuid.New().String(),
		name:      name,
		startedAt: time.Now(),
		state:     StateRecording,
	}
}

// Append adds a captured action to the log. Events arriving while the
// session is paused or stopped are discarded: pause guarantees nothing
// captured in that window ever appears in the log.
func (s *Session) Append(a action.Action) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateRecording {
		return
	}
	if a.CapturedAt == 0 {
		a.CapturedAt = time.Since(s.startedAt).Milliseconds()
	}
	s.actions = append(s.actions, a)
}

func (s *Session) pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateRecording {
		return errdefs.New(errdefs.CodeInvalidState, "cannot pause while %s", s.state)
	}
	s.state = StatePaused
	return nil
}

func (s *Session) resume() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StatePaused {
		return errdefs.New(errdefs.CodeInvalidState, "cannot resume while %s", s.state)
	}
	s.state = StateRecording
	return nil
}

// finish transitions to Stopped and returns the final log. Capture is over
// regardless of what the caller does with the result.
func (s *Session) finish() ([]action.Action, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateRecording && s.state != StatePaused {
		return nil, errdefs.New(errdefs.CodeInvalidState, "cannot stop while %s", s.state)
	}
	s.state = StateStopped
	return s.snapshotLocked(), nil
}

// deleteAction removes the action at index. Timing of the remaining
// actions is preserved as captured, not renormalized.
func (s *Session) deleteAction(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateStopped {
		return errdefs.New(errdefs.CodeInvalidState, "session already stopped")
	}
	if index < 0 || index >= len(s.actions) {
		return errdefs.New(errdefs.CodeIndexOutOfRange, "action index %d out of range [0, %d)", index, len(s.actions))
	}
	s.actions = append(s.actions[:index], s.actions[index+1:]...)
	return nil
}

// snapshot returns a copy of the action log.
func (s *Session) snapshot() []action.Action {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() []action.Action {
	out := make([]action.Action, len(s.actions))
	copy(out, s.actions)
	return out
}

func (s *Session) status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{
		SessionID:   s.id,
		Name:        s.name,
		State:       s.state,
		ActionCount: len(s.actions),
		StartedAt:   s.startedAt,
	}
}
