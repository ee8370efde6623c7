// internal/recorder/manager.go
package recorder

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"autoscribe/internal/action"
	"autoscribe/internal/errdefs"
	"autoscribe/internal/input"
	"autoscribe/internal/log"
	"autoscribe/internal/permission"
)

// ScriptWriter persists a finished recording and returns the artifact path.
type ScriptWriter interface {
	WriteScript(s *action.Script) (string, error)
}

// StopResult is returned by Stop.
type StopResult struct {
	OutputPath  string `json:"output_path"`
	ActionCount int    `json:"action_count"`
}

// Manager owns the at-most-one-active-session invariant. All lifecycle
// operations go through it; the session itself is never handed out.
type Manager struct {
	gate   *permission.Gate
	source input.CaptureSource
	writer ScriptWriter
	logger zerolog.Logger

	mu     sync.Mutex
	active *Session
}

// NewManager creates a recording manager.
func NewManager(gate *permission.Gate, source input.CaptureSource, writer ScriptWriter) *Manager {
	return &Manager{
		gate:   gate,
		source: source,
		writer: writer,
		logger: log.WithComponent("recorder"),
	}
}

// Start begins a new recording session. The permission gate is re-checked
// on every start; denial leaves the recorder idle. A still-active previous
// session is force-stopped first, best-effort: being able to start a fresh
// recording outranks a clean stop of a stale one.
func (m *Manager) Start(ctx context.Context, name string) (Status, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.gate.CheckAccess(); err != nil {
		return Status{State: StateIdle}, err
	}

	if m.active != nil {
		m.logger.Warn().Str("session_id", m.active.id).Msg("force-stopping previous session")
		if _, err := m.stopLocked(); err != nil {
			m.logger.Error().Err(err).Msg("force-stop failed, starting new session anyway")
		}
	}

	if name == "" {
		name = "recording-" + time.Now().Format("20060102-150405")
	}

	session := newSession(name)
	if err := m.source.Start(ctx, session.Append); err != nil {
		return Status{State: StateIdle}, errdefs.Wrap(errdefs.CodeInternal, err, "start capture source")
	}
	m.active = session

	m.logger.Info().Str("session_id", session.id).Str("name", name).Msg("recording started")
	return session.status(), nil
}

// Pause suspends capture. Events delivered while paused are discarded.
func (m *Manager) Pause() (Status, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, err := m.activeLocked("pause")
	if err != nil {
		return Status{State: StateIdle}, err
	}
	if err := session.pause(); err != nil {
		return session.status(), err
	}
	m.logger.Info().Str("session_id", session.id).Msg("recording paused")
	return session.status(), nil
}

// Resume continues capture after a pause.
func (m *Manager) Resume() (Status, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, err := m.activeLocked("resume")
	if err != nil {
		return Status{State: StateIdle}, err
	}
	if err := session.resume(); err != nil {
		return session.status(), err
	}
	m.logger.Info().Str("session_id", session.id).Msg("recording resumed")
	return session.status(), nil
}

// Stop ends the active session and serializes its log. The session always
// reaches Stopped; a serialization failure is returned to the caller but
// does not resurrect the capture.
func (m *Manager) Stop() (StopResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stopLocked()
}

func (m *Manager) stopLocked() (StopResult, error) {
	session := m.active
	if session == nil {
		return StopResult{}, errdefs.New(errdefs.CodeInvalidState, "no recording to stop")
	}

	if err := m.source.Stop(); err != nil {
		m.logger.Warn().Err(err).Msg("capture source stop failed")
	}

	actions, err := session.finish()
	if err != nil {
		return StopResult{}, err
	}
	m.active = nil

	script := &action.Script{
		Version:   action.ScriptVersion,
		ID:        session.id,
		Name:      session.name,
		CreatedAt: session.startedAt,
		Actions:   actions,
	}

	result := StopResult{ActionCount: len(actions)}
	path, err := m.writer.WriteScript(script)
	if err != nil {
		m.logger.Error().Err(err).Str("session_id", session.id).Msg("script serialization failed")
		return result, errdefs.Wrap(errdefs.CodeSerializationFailed, err, "write script %q", session.name)
	}
	result.OutputPath = path

	m.logger.Info().Str("session_id", session.id).Str("path", path).
		Int("actions", result.ActionCount).Msg("recording stopped")
	return result, nil
}

// DeleteAction removes one captured action from the live log.
func (m *Manager) DeleteAction(index int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active == nil {
		// Idle recorder has an empty log; any index misses it.
		return errdefs.New(errdefs.CodeIndexOutOfRange, "action index %d out of range [0, 0)", index)
	}
	return m.active.deleteAction(index)
}

// Actions returns a snapshot of the live log, empty when idle.
func (m *Manager) Actions() []action.Action {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active == nil {
		return []action.Action{}
	}
	return m.active.snapshot()
}

// Status reports the recorder state, StateIdle when no session is active.
func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active == nil {
		return Status{State: StateIdle}
	}
	return m.active.status()
}

func (m *Manager) activeLocked(op string) (*Session, error) {
	if m.active == nil {
		return nil, errdefs.New(errdefs.CodeInvalidState, "cannot %s while idle", op)
	}
	return m.active, nil
}
