// internal/recorder/manager_test.go
package recorder

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autoscribe/internal/action"
	"autoscribe/internal/errdefs"
	"autoscribe/internal/permission"
)

type fakeProber struct {
	err error
}

func (p *fakeProber) Probe() error { return p.err }

// fakeSource hands the emit callback back to the test so it can play the
// role of the OS input hook.
type fakeSource struct {
	emit   func(action.Action)
	starts int
	stops  int
}

func (s *fakeSource) Start(ctx context.Context, emit func(action.Action)) error {
	s.starts++
	s.emit = emit
	return nil
}

func (s *fakeSource) Stop() error {
	s.stops++
	return nil
}

type memWriter struct {
	scripts []*action.Script
	err     error
}

func (w *memWriter) WriteScript(s *action.Script) (string, error) {
	if w.err != nil {
		return "", w.err
	}
	w.scripts = append(w.scripts, s)
	return "/recordings/" + s.Name + ".json", nil
}

func newTestManager(t *testing.T) (*Manager, *fakeSource, *memWriter) {
	t.Helper()
	source := &fakeSource{}
	writer := &memWriter{}
	m := NewManager(permission.NewGate(&fakeProber{}), source, writer)
	return m, source, writer
}

func click(x, y int) action.Action {
	return action.Action{Kind: action.KindPointerClick, X: x, Y: y}
}

func TestStartDeniedLeavesIdle(t *testing.T) {
	source := &fakeSource{}
	gate := permission.NewGate(&fakeProber{err: errors.New("accessibility not granted")})
	m := NewManager(gate, source, &memWriter{})

	_, err := m.Start(context.Background(), "blocked")
	require.Error(t, err)
	assert.True(t, errdefs.IsCode(err, errdefs.CodePermissionDenied))

	assert.Equal(t, StateIdle, m.Status().State)
	assert.Empty(t, m.Actions())
	assert.Equal(t, 0, source.starts, "capture must not start without permission")
}

func TestPausedEventsNeverAppear(t *testing.T) {
	m, source, writer := newTestManager(t)

	_, err := m.Start(context.Background(), "pauses")
	require.NoError(t, err)

	source.emit(click(1, 1))

	_, err = m.Pause()
	require.NoError(t, err)
	assert.Equal(t, StatePaused, m.Status().State)

	// The OS hook keeps delivering; nothing from this window may land.
	source.emit(click(2, 2))
	source.emit(click(3, 3))

	_, err = m.Resume()
	require.NoError(t, err)
	source.emit(click(4, 4))

	result, err := m.Stop()
	require.NoError(t, err)
	assert.Equal(t, 2, result.ActionCount)

	require.Len(t, writer.scripts, 1)
	actions := writer.scripts[0].Actions
	require.Len(t, actions, 2)
	assert.Equal(t, 1, actions[0].X)
	assert.Equal(t, 4, actions[1].X)
}

func TestDeleteActionShiftsSubsequent(t *testing.T) {
	m, source, _ := newTestManager(t)
	_, err := m.Start(context.Background(), "edit")
	require.NoError(t, err)

	source.emit(click(0, 0))
	source.emit(click(1, 1))
	source.emit(click(2, 2))

	require.NoError(t, m.DeleteAction(1))

	actions := m.Actions()
	require.Len(t, actions, 2)
	assert.Equal(t, 0, actions[0].X, "elements before the index are unchanged")
	assert.Equal(t, 2, actions[1].X, "elements after the index shift down")

	err = m.DeleteAction(2)
	require.Error(t, err)
	assert.True(t, errdefs.IsCode(err, errdefs.CodeIndexOutOfRange))
}

func TestDeleteActionWhileIdle(t *testing.T) {
	m, _, _ := newTestManager(t)
	err := m.DeleteAction(0)
	require.Error(t, err)
	assert.True(t, errdefs.IsCode(err, errdefs.CodeIndexOutOfRange))
}

func TestStopTwice(t *testing.T) {
	m, source, writer := newTestManager(t)
	_, err := m.Start(context.Background(), "once")
	require.NoError(t, err)
	source.emit(click(1, 1))

	first, err := m.Stop()
	require.NoError(t, err)
	assert.Equal(t, 1, first.ActionCount)
	assert.NotEmpty(t, first.OutputPath)

	_, err = m.Stop()
	require.Error(t, err)
	assert.True(t, errdefs.IsCode(err, errdefs.CodeInvalidState))
	assert.Len(t, writer.scripts, 1, "second stop must not re-serialize")
}

func TestLifecycleStateErrors(t *testing.T) {
	m, _, _ := newTestManager(t)

	_, err := m.Pause()
	assert.True(t, errdefs.IsCode(err, errdefs.CodeInvalidState))
	_, err = m.Resume()
	assert.True(t, errdefs.IsCode(err, errdefs.CodeInvalidState))
	_, err = m.Stop()
	assert.True(t, errdefs.IsCode(err, errdefs.CodeInvalidState))

	_, err = m.Start(context.Background(), "s")
	require.NoError(t, err)

	// Resume only follows Paused.
	_, err = m.Resume()
	assert.True(t, errdefs.IsCode(err, errdefs.CodeInvalidState))
}

func TestStopSerializationFailureStillStops(t *testing.T) {
	m, source, writer := newTestManager(t)
	writer.err = errors.New("disk full")

	_, err := m.Start(context.Background(), "doomed")
	require.NoError(t, err)
	source.emit(click(1, 1))

	result, err := m.Stop()
	require.Error(t, err)
	assert.True(t, errdefs.IsCode(err, errdefs.CodeSerializationFailed))
	assert.Equal(t, 1, result.ActionCount, "the count is reported even when the write fails")

	// Capture is over regardless: the recorder is idle and a second stop
	// is a state error, not a retry.
	assert.Equal(t, StateIdle, m.Status().State)
	_, err = m.Stop()
	assert.True(t, errdefs.IsCode(err, errdefs.CodeInvalidState))
}

func TestStartForceStopsPreviousSession(t *testing.T) {
	m, source, writer := newTestManager(t)

	_, err := m.Start(context.Background(), "first")
	require.NoError(t, err)
	source.emit(click(1, 1))

	status, err := m.Start(context.Background(), "second")
	require.NoError(t, err)
	assert.Equal(t, StateRecording, status.State)
	assert.Equal(t, 0, status.ActionCount, "the new session starts with an empty log")

	require.Len(t, writer.scripts, 1, "the stale session was serialized on force-stop")
	assert.Equal(t, "first", writer.scripts[0].Name)
	assert.Equal(t, 2, source.starts)
}

func TestActionsReturnsSnapshot(t *testing.T) {
	m, source, _ := newTestManager(t)
	_, err := m.Start(context.Background(), "snap")
	require.NoError(t, err)
	source.emit(click(1, 1))

	snapshot := m.Actions()
	snapshot[0].X = 99

	assert.Equal(t, 1, m.Actions()[0].X, "mutating the snapshot must not touch the log")
}

func TestAppendStampsCaptureTime(t *testing.T) {
	m, source, writer := newTestManager(t)
	_, err := m.Start(context.Background(), "stamps")
	require.NoError(t, err)

	source.emit(click(1, 1))
	source.emit(action.Action{Kind: action.KindKeyPress, KeyCode: "Tab", CapturedAt: 1234})

	_, err = m.Stop()
	require.NoError(t, err)

	actions := writer.scripts[0].Actions
	assert.GreaterOrEqual(t, actions[0].CapturedAt, int64(0), "unstamped events get a session-relative stamp")
	assert.Equal(t, int64(1234), actions[1].CapturedAt, "source-provided stamps are kept")
}
