// internal/cascade/strategies.go
package cascade

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/rs/zerolog"

	"autoscribe/internal/input"
)

const (
	nameKeystroke = "keystroke"
	nameFieldSet  = "field-set"
	nameClipboard = "clipboard"
)

// progressBlock is the character interval at which the keystroke strategy
// logs delivery progress, matching the virtual-HID helper's cadence.
const progressBlock = 10

// keystrokeStrategy types the text character by character with synthetic
// key events. Slowest but closest to real user input, so it runs first.
type keystrokeStrategy struct {
	keyboard  input.Keyboard
	charDelay time.Duration
	logger    zerolog.Logger
}

func (s *keystrokeStrategy) Name() string { return nameKeystroke }

func (s *keystrokeStrategy) Deliver(ctx context.Context, _ input.Target, req Request) (int, error) {
	runes := []rune(req.Text)
	delivered := 0

	for i, r := range runes {
		if err := ctx.Err(); err != nil {
			return delivered, err
		}
		if err := s.keyboard.TypeRune(ctx, r); err != nil {
			// One dropped character is left to verification; the remaining
			// characters still go out.
			s.logger.Debug().Int("position", i).Err(err).Msg("keystroke failed")
		} else {
			delivered++
		}

		if (i+1)%progressBlock == 0 {
			s.logger.Debug().Int("typed", i+1).Int("total", len(runes)).Msg("typing progress")
		}
		if i < len(runes)-1 {
			if err := sleepCtx(ctx, s.charDelay); err != nil {
				return delivered, err
			}
		}
	}
	return delivered, nil
}

// fieldSetStrategy assigns the whole value to the target in one call,
// bypassing the key event path entirely.
type fieldSetStrategy struct{}

func (s *fieldSetStrategy) Name() string { return nameFieldSet }

func (s *fieldSetStrategy) Deliver(ctx context.Context, target input.Target, req Request) (int, error) {
	if err := target.SetValue(ctx, req.Text); err != nil {
		return 0, err
	}
	return len([]rune(req.Text)), nil
}

// clipboardStrategy writes the text to the system clipboard and sends the
// paste chord. The clipboard is shared process-wide scratch space: for
// sensitive payloads it is overwritten immediately after the paste, and a
// failed overwrite is logged but never fails the attempt.
type clipboardStrategy struct {
	keyboard  input.Keyboard
	clipboard input.Clipboard
	logger    zerolog.Logger
}

func (s *clipboardStrategy) Name() string { return nameClipboard }

func (s *clipboardStrategy) Deliver(ctx context.Context, _ input.Target, req Request) (int, error) {
	if err := s.clipboard.Write(ctx, req.Text); err != nil {
		return 0, fmt.Errorf("write clipboard: %w", err)
	}
	if req.Sensitive {
		defer s.scrub()
	}

	if err := s.keyboard.PressKey(ctx, pasteChord()); err != nil {
		return 0, fmt.Errorf("paste keystroke: %w", err)
	}
	return len([]rune(req.Text)), nil
}

// scrub overwrites the clipboard after a sensitive paste. Runs on its own
// short deadline: the payload must not linger just because the caller's
// context is already cancelled.
func (s *clipboardStrategy) scrub() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.clipboard.Write(ctx, ""); err != nil {
		s.logger.Warn().Err(err).Msg("failed to scrub clipboard after sensitive paste")
	}
}

func pasteChord() string {
	if runtime.GOOS == "darwin" {
		return "cmd+v"
	}
	return "ctrl+v"
}
