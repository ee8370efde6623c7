// bindings.go
package main

import (
	"time"

	"autoscribe/internal/action"
	"autoscribe/internal/cascade"
	"autoscribe/internal/errdefs"
	"autoscribe/internal/eventhub"
	"autoscribe/internal/recorder"
	"autoscribe/internal/replay"
	"autoscribe/internal/store"
)

// ===== Permission Bindings =====

// PermissionStatus reports whether OS input access is available.
type PermissionStatus struct {
	Granted bool   `json:"granted"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// CheckPermission probes OS-level input access without side effects.
func (a *App) CheckPermission() *PermissionStatus {
	if err := a.gate.CheckAccess(); err != nil {
		return &PermissionStatus{
			Granted: false,
			Code:    string(errdefs.CodeOf(err)),
			Message: errdefs.MessageOf(err),
		}
	}
	return &PermissionStatus{Granted: true}
}

// ===== Recorder Bindings =====

// StartRecording opens a capture session. A session already in progress
// is stopped and replaced.
func (a *App) StartRecording(name string) (*recorder.Status, error) {
	status, err := a.recorderMgr.Start(a.ctx, name)
	if err != nil {
		return nil, err
	}
	a.eventHub.EmitRecorderChanged(status)
	return &status, nil
}

// PauseRecording suspends capture without closing the session.
func (a *App) PauseRecording() (*recorder.Status, error) {
	status, err := a.recorderMgr.Pause()
	if err != nil {
		return nil, err
	}
	a.eventHub.EmitRecorderChanged(status)
	return &status, nil
}

// ResumeRecording continues a paused session.
func (a *App) ResumeRecording() (*recorder.Status, error) {
	status, err := a.recorderMgr.Resume()
	if err != nil {
		return nil, err
	}
	a.eventHub.EmitRecorderChanged(status)
	return &status, nil
}

// StopRecording closes the session and persists the captured script.
func (a *App) StopRecording() (*recorder.StopResult, error) {
	result, err := a.recorderMgr.Stop()
	if err != nil {
		return nil, err
	}
	a.eventHub.EmitRecorderChanged(a.recorderMgr.Status())
	return &result, nil
}

// DeleteRecordedAction removes one action from the in-progress log.
func (a *App) DeleteRecordedAction(index int) error {
	if err := a.recorderMgr.DeleteAction(index); err != nil {
		return err
	}
	a.eventHub.EmitRecorderChanged(a.recorderMgr.Status())
	return nil
}

// GetRecorderStatus returns the current session state.
func (a *App) GetRecorderStatus() *recorder.Status {
	status := a.recorderMgr.Status()
	return &status
}

// GetRecordedActions returns a copy of the in-progress action log.
func (a *App) GetRecordedActions() []action.Action {
	return a.recorderMgr.Actions()
}

// ===== Catalog Bindings =====

// ListScripts returns catalog entries, newest first.
func (a *App) ListScripts() ([]*store.ScriptInfo, error) {
	if a.store == nil {
		return []*store.ScriptInfo{}, nil
	}
	return a.store.List()
}

// GetScript loads a full script by catalog ID.
func (a *App) GetScript(id string) (*action.Script, error) {
	if a.store == nil {
		return nil, errdefs.New(errdefs.CodeFileNotFound, "script store unavailable")
	}
	return a.store.LoadByID(id)
}

// DeleteScript removes a script and its artifact file.
func (a *App) DeleteScript(id string) error {
	if a.store == nil {
		return errdefs.New(errdefs.CodeFileNotFound, "script store unavailable")
	}
	if err := a.store.Delete(id); err != nil {
		return err
	}
	a.eventHub.EmitCatalogChanged(eventhub.CatalogChangedEvent{})
	return nil
}

// RenameScript updates a script's display name.
func (a *App) RenameScript(id, name string) error {
	if a.store == nil {
		return errdefs.New(errdefs.CodeFileNotFound, "script store unavailable")
	}
	if err := a.store.Rename(id, name); err != nil {
		return err
	}
	a.eventHub.EmitCatalogChanged(eventhub.CatalogChangedEvent{})
	return nil
}

// ArchiveScript compresses a script's artifact in place.
func (a *App) ArchiveScript(id string) error {
	if a.store == nil {
		return errdefs.New(errdefs.CodeFileNotFound, "script store unavailable")
	}
	if err := a.store.Archive(id); err != nil {
		return err
	}
	a.eventHub.EmitCatalogChanged(eventhub.CatalogChangedEvent{})
	return nil
}

// RestoreScript decompresses an archived artifact.
func (a *App) RestoreScript(id string) error {
	if a.store == nil {
		return errdefs.New(errdefs.CodeFileNotFound, "script store unavailable")
	}
	if err := a.store.Restore(id); err != nil {
		return err
	}
	a.eventHub.EmitCatalogChanged(eventhub.CatalogChangedEvent{})
	return nil
}

// ===== Replay Bindings =====

// ReplayRequest selects a script and replay policy.
type ReplayRequest struct {
	ScriptID   string `json:"script_id"`
	StartIndex int    `json:"start_index"`
	Strict     bool   `json:"strict"`
	Strategy   string `json:"strategy,omitempty"`
}

// ReplayStarted acknowledges an accepted replay.
type ReplayStarted struct {
	ScriptID    string `json:"script_id"`
	ActionCount int    `json:"action_count"`
	StartIndex  int    `json:"start_index"`
}

// ReplayScript starts a replay in the background. Progress and the
// terminal outcome arrive as replay:* events.
func (a *App) ReplayScript(req ReplayRequest) (*ReplayStarted, error) {
	if a.gate != nil {
		if err := a.gate.CheckAccess(); err != nil {
			return nil, err
		}
	}

	script, err := a.GetScript(req.ScriptID)
	if err != nil {
		return nil, err
	}
	if req.StartIndex < 0 || req.StartIndex >= len(script.Actions) {
		return nil, errdefs.New(errdefs.CodeIndexOutOfRange,
			"start index %d out of range for %d actions", req.StartIndex, len(script.Actions))
	}

	opts := replay.Options{
		StartIndex:  req.StartIndex,
		Strict:      req.Strict || a.config.Settings.Replay.Strict,
		ActionDelay: time.Duration(a.config.Settings.Timing.ActionDelayMS) * time.Millisecond,
		Strategy:    req.Strategy,
	}

	// Reserve the replay slot before acknowledging, so a concurrent request
	// is rejected here instead of racing inside the goroutine.
	sink := &eventhub.ProgressSinkAdapter{Hub: a.eventHub}
	run, err := a.replayer.Acquire(script, opts, sink)
	if err != nil {
		return nil, err
	}

	go func() {
		outcome := a.replayer.Execute(a.ctx, run)
		a.eventHub.EmitReplayFinished(outcome)
	}()

	return &ReplayStarted{
		ScriptID:    script.ID,
		ActionCount: len(script.Actions),
		StartIndex:  req.StartIndex,
	}, nil
}

// CancelReplay requests cancellation of the active replay. Returns false
// when no replay is running.
func (a *App) CancelReplay() bool {
	return a.replayer.Cancel()
}

// IsReplaying reports whether a replay is in progress.
func (a *App) IsReplaying() bool {
	return a.replayer.Busy()
}

// ===== Delivery Bindings =====

// DeliverText runs the delivery cascade against a target directly,
// outside any script. Useful for probing which strategy a target accepts.
func (a *App) DeliverText(locator, text string, sensitive bool) (*cascade.Result, error) {
	if err := a.gate.CheckAccess(); err != nil {
		return nil, err
	}
	target, err := a.driver.Resolve(a.ctx, locator)
	if err != nil {
		return nil, err
	}
	result, err := a.deliverCascade.Deliver(a.ctx, cascade.Request{
		Target:    target,
		Text:      text,
		Sensitive: sensitive,
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// ===== Misc Bindings =====

// EngineInfo describes the running engine.
type EngineInfo struct {
	EngineDir     string `json:"engine_dir"`
	RecordingsDir string `json:"recordings_dir"`
	ScriptVersion int    `json:"script_version"`
}

// GetEngineInfo returns engine paths and the artifact format version.
func (a *App) GetEngineInfo() *EngineInfo {
	return &EngineInfo{
		EngineDir:     a.config.EngineDir,
		RecordingsDir: a.config.RecordingsDir,
		ScriptVersion: action.ScriptVersion,
	}
}
