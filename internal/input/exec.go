// internal/input/exec.go
package input

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"autoscribe/internal/config"
	"autoscribe/internal/errdefs"
	"autoscribe/internal/log"
)

// ExecDriver drives OS-level input through per-platform helper commands
// (virtual-HID typer, xdotool, osascript, ...). Each operation runs the
// argv configured in settings.yaml with payload placeholders substituted.
// It implements Keyboard, Pointer, Clipboard and Resolver.
type ExecDriver struct {
	settings config.InjectorSettings
	logger   zerolog.Logger
}

// NewExecDriver creates a driver from the injector settings.
func NewExecDriver(settings config.InjectorSettings) *ExecDriver {
	return &ExecDriver{
		settings: settings,
		logger:   log.WithComponent("injector"),
	}
}

// run substitutes placeholders into the argv and executes the helper.
// Sensitive payload values are never logged.
func (d *ExecDriver) run(ctx context.Context, op string, argv []string, vars map[string]string) (string, error) {
	if len(argv) == 0 {
		return "", fmt.Errorf("no helper command configured for %s", op)
	}

	args := make([]string, len(argv))
	for i, a := range argv {
		for key, value := range vars {
			a = strings.ReplaceAll(a, "{"+key+"}", value)
		}
		args[i] = a
	}

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		d.logger.Debug().Str("op", op).Str("helper", args[0]).
			Str("stderr", strings.TrimSpace(stderr.String())).Msg("helper failed")
		return "", fmt.Errorf("%s helper %s: %w", op, args[0], err)
	}
	return strings.TrimSpace(stdout.String()), nil
}

func (d *ExecDriver) TypeRune(ctx context.Context, r rune) error {
	_, err := d.run(ctx, "type-text", d.settings.TypeText, map[string]string{"text": string(r)})
	return err
}

func (d *ExecDriver) PressKey(ctx context.Context, key string) error {
	_, err := d.run(ctx, "key-press", d.settings.KeyPress, map[string]string{"key": key})
	return err
}

func (d *ExecDriver) Move(ctx context.Context, x, y int) error {
	_, err := d.run(ctx, "pointer-move", d.settings.PointerMove, map[string]string{
		"x": strconv.Itoa(x), "y": strconv.Itoa(y),
	})
	return err
}

func (d *ExecDriver) Click(ctx context.Context, x, y int, button string) error {
	if button == "" {
		button = "left"
	}
	_, err := d.run(ctx, "pointer-click", d.settings.PointerClick, map[string]string{
		"x": strconv.Itoa(x), "y": strconv.Itoa(y), "button": button,
	})
	return err
}

func (d *ExecDriver) Write(ctx context.Context, text string) error {
	_, err := d.run(ctx, "clipboard-set", d.settings.ClipboardSet, map[string]string{"text": text})
	return err
}

func (d *ExecDriver) Read(ctx context.Context) (string, error) {
	return d.run(ctx, "clipboard-get", d.settings.ClipboardGet, nil)
}

// Resolve returns a Target bound to the locator. Resolution is verified by
// attempting focus once, so a stale locator fails here rather than midway
// through a delivery strategy.
func (d *ExecDriver) Resolve(ctx context.Context, locator string) (Target, error) {
	t := &execTarget{driver: d, locator: locator}
	if err := t.Focus(ctx); err != nil {
		return nil, errdefs.Wrap(errdefs.CodeTargetUnresolved, err, "locator %q", locator)
	}
	return t, nil
}

type execTarget struct {
	driver  *ExecDriver
	locator string
}

func (t *execTarget) vars(extra map[string]string) map[string]string {
	vars := map[string]string{"target": t.locator}
	for k, v := range extra {
		vars[k] = v
	}
	return vars
}

func (t *execTarget) Focus(ctx context.Context) error {
	_, err := t.driver.run(ctx, "target-focus", t.driver.settings.TargetFocus, t.vars(nil))
	return err
}

func (t *execTarget) Clear(ctx context.Context) error {
	_, err := t.driver.run(ctx, "target-clear", t.driver.settings.TargetClear, t.vars(nil))
	return err
}

func (t *execTarget) SetValue(ctx context.Context, text string) error {
	_, err := t.driver.run(ctx, "target-set", t.driver.settings.TargetSet, t.vars(map[string]string{"text": text}))
	return err
}

func (t *execTarget) Value(ctx context.Context) (string, error) {
	return t.driver.run(ctx, "target-get", t.driver.settings.TargetGet, t.vars(nil))
}
