// internal/replay/session.go
package replay

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"autoscribe/internal/action"
	"autoscribe/internal/cascade"
	"autoscribe/internal/errdefs"
	"autoscribe/internal/input"
	"autoscribe/internal/log"
)

// Status is the terminal outcome of a replay session.
type Status string

const (
	// StatusCompleted - every action from the start index was attempted.
	StatusCompleted Status = "completed"
	// StatusCancelled - the caller stopped the replay early.
	StatusCancelled Status = "cancelled"
	// StatusAborted - strict mode stopped at the first per-action failure.
	StatusAborted Status = "aborted"
)

// Failure records one action that could not be replayed.
type Failure struct {
	Index   int          `json:"index"`
	Code    errdefs.Code `json:"code"`
	Message string       `json:"message"`
}

// Outcome summarizes a finished replay.
type Outcome struct {
	Status   Status    `json:"status"`
	Executed int       `json:"executed"`
	Failures []Failure `json:"failures,omitempty"`
}

// Options configures one replay invocation.
type Options struct {
	// StartIndex is the first action to execute.
	StartIndex int
	// Strict aborts on the first per-action failure instead of continuing.
	Strict bool
	// ActionDelay is the pause between consecutive actions. This is a
	// configuration concern; captured timestamps are not replayed.
	ActionDelay time.Duration
	// Strategy pins a single cascade strategy for text entry.
	Strategy string
}

// Deps are the injection collaborators a session drives.
type Deps struct {
	Keyboard input.Keyboard
	Pointer  input.Pointer
	Resolver input.Resolver
	Cascade  *cascade.Cascade
}

// Session executes a loaded action sequence one action at a time. The
// cursor only moves forward; a session is single-use.
type Session struct {
	actions []action.Action
	deps    Deps
	opts    Options
	sink    ProgressSink
	logger  zerolog.Logger

	cancelled atomic.Bool
	mu        sync.Mutex
	cancelRun context.CancelFunc
}

// NewSession creates a replay session over the given actions. sink may be
// nil; the session runs identically without an observer.
func NewSession(actions []action.Action, deps Deps, opts Options, sink ProgressSink) *Session {
	return &Session{
		actions: actions,
		deps:    deps,
		opts:    opts,
		sink:    sink,
		logger:  log.WithComponent("replay"),
	}
}

// Cancel requests the session to stop. Takes effect at the next suspension
// point: between actions, between keystrokes, or in any delivery delay.
func (s *Session) Cancel() {
	s.cancelled.Store(true)
	s.mu.Lock()
	if s.cancelRun != nil {
		s.cancelRun()
	}
	s.mu.Unlock()
}

// Run executes the sequence and returns the terminal outcome. Per-action
// failures are collected, not raised; only strict mode turns them into an
// early stop.
func (s *Session) Run(ctx context.Context) Outcome {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	s.mu.Lock()
	s.cancelRun = cancel
	s.mu.Unlock()

	dispatcher := newSinkDispatcher(s.sink, s.logger)
	defer dispatcher.close()

	outcome := Outcome{Status: StatusCompleted}
	total := len(s.actions)

	for cursor := s.opts.StartIndex; cursor < total; cursor++ {
		if s.cancelled.Load() || runCtx.Err() != nil {
			outcome.Status = StatusCancelled
			return outcome
		}

		act := s.actions[cursor]
		err := s.execute(runCtx, act)
		if err != nil && runCtx.Err() != nil {
			// Cancelled mid-action; the action did not complete.
			outcome.Status = StatusCancelled
			return outcome
		}
		outcome.Executed++

		if err != nil {
			failure := Failure{
				Index:   cursor,
				Code:    errdefs.CodeOf(err),
				Message: errdefs.MessageOf(err),
			}
			outcome.Failures = append(outcome.Failures, failure)
			s.logger.Warn().Int("index", cursor).Str("kind", string(act.Kind)).
				Str("code", string(failure.Code)).Msg("action failed")

			if s.opts.Strict {
				outcome.Status = StatusAborted
				return outcome
			}
		}

		dispatcher.progress(cursor, total, act.Describe())
		if act.Kind == action.KindPointerMove || act.Kind == action.KindPointerClick {
			dispatcher.pointerHint(act.X, act.Y)
		}

		if cursor < total-1 {
			// Give the target application time to react; cancellation is
			// picked up at the top of the next iteration.
			_ = sleepCtx(runCtx, s.opts.ActionDelay)
		}
	}

	return outcome
}

// execute dispatches one action by kind. Pointer and key events are
// injected directly; text entry goes through the cascade.
func (s *Session) execute(ctx context.Context, act action.Action) error {
	switch act.Kind {
	case action.KindPointerMove:
		return s.deps.Pointer.Move(ctx, act.X, act.Y)

	case action.KindPointerClick:
		return s.deps.Pointer.Click(ctx, act.X, act.Y, act.Button)

	case action.KindKeyPress:
		return s.deps.Keyboard.PressKey(ctx, act.KeyCode)

	case action.KindWait:
		return sleepCtx(ctx, time.Duration(act.WaitMS)*time.Millisecond)

	case action.KindTextEntry:
		target, err := s.deps.Resolver.Resolve(ctx, act.Target)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errdefs.CodeOf(err) == errdefs.CodeTargetUnresolved {
				return err
			}
			return errdefs.Wrap(errdefs.CodeTargetUnresolved, err, "locator %q", act.Target)
		}
		_, err = s.deps.Cascade.Deliver(ctx, cascade.Request{
			Target:    target,
			Text:      act.Text,
			Sensitive: act.Sensitive,
			Strategy:  s.opts.Strategy,
		})
		return err

	default:
		return fmt.Errorf("unknown action kind %q", act.Kind)
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
