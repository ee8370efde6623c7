// internal/replay/replayer.go
package replay

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"autoscribe/internal/action"
	"autoscribe/internal/errdefs"
	"autoscribe/internal/log"
)

// Replayer enforces the one-active-replay-per-process invariant and keeps
// the cancellation handle for the running session.
type Replayer struct {
	deps   Deps
	logger zerolog.Logger

	mu     sync.Mutex
	active *Session
}

// Run is a reserved replay slot: the session is registered as active from
// Acquire on, so a concurrent Acquire fails before the caller has even
// started executing. Exactly one Execute per Run.
type Run struct {
	session *Session
	script  *action.Script
	opts    Options
}

// NewReplayer creates a replayer over the given injection collaborators.
func NewReplayer(deps Deps) *Replayer {
	return &Replayer{deps: deps, logger: log.WithComponent("replayer")}
}

// Acquire reserves the active-replay slot for the given script. Acquiring
// while a replay is active (running or merely acquired) is an InvalidState
// error: replays compete for the same input focus and never run
// concurrently. The slot stays held until Execute returns.
func (r *Replayer) Acquire(script *action.Script, opts Options, sink ProgressSink) (*Run, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.active != nil {
		return nil, errdefs.New(errdefs.CodeInvalidState, "a replay is already in progress")
	}
	session := NewSession(script.Actions, r.deps, opts, sink)
	r.active = session
	return &Run{session: session, script: script, opts: opts}, nil
}

// Execute runs an acquired replay to completion and releases the slot.
func (r *Replayer) Execute(ctx context.Context, run *Run) Outcome {
	r.logger.Info().Str("script", run.script.Name).Int("actions", len(run.script.Actions)).
		Int("start", run.opts.StartIndex).Bool("strict", run.opts.Strict).Msg("replay starting")

	outcome := run.session.Run(ctx)

	r.mu.Lock()
	r.active = nil
	r.mu.Unlock()

	r.logger.Info().Str("script", run.script.Name).Str("status", string(outcome.Status)).
		Int("executed", outcome.Executed).Int("failures", len(outcome.Failures)).
		Msg("replay finished")
	return outcome
}

// Replay acquires and executes in one synchronous call.
func (r *Replayer) Replay(ctx context.Context, script *action.Script, opts Options, sink ProgressSink) (Outcome, error) {
	run, err := r.Acquire(script, opts, sink)
	if err != nil {
		return Outcome{}, err
	}
	return r.Execute(ctx, run), nil
}

// Cancel stops the active replay, if any, and reports whether one was
// running.
func (r *Replayer) Cancel() bool {
	r.mu.Lock()
	session := r.active
	r.mu.Unlock()

	if session == nil {
		return false
	}
	session.Cancel()
	return true
}

// Busy reports whether a replay is currently running.
func (r *Replayer) Busy() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active != nil
}
