// internal/cascade/cascade.go
package cascade

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"autoscribe/internal/errdefs"
	"autoscribe/internal/input"
	"autoscribe/internal/log"
)

// Timing controls the pacing of a delivery attempt.
type Timing struct {
	// PreFocusDelay runs after focusing the target, before delivery starts,
	// so the target application settles on the focused field.
	PreFocusDelay time.Duration
	// CharDelay separates consecutive keystrokes.
	CharDelay time.Duration
	// SettleDelay runs after delivery, before verification reads back.
	SettleDelay time.Duration
}

// Request describes one text delivery.
type Request struct {
	Target    input.Target
	Text      string
	Sensitive bool
	// Strategy pins a single named strategy; empty runs the full cascade.
	Strategy string
}

// Attempt records one strategy's outcome. Diagnostics only; never stored
// in the action log.
type Attempt struct {
	Strategy  string `json:"strategy"`
	Delivered int    `json:"delivered"`
	Requested int    `json:"requested"`
	Verified  bool   `json:"verified"`
	Error     string `json:"error,omitempty"`
}

// Result is the aggregate outcome of a delivery.
type Result struct {
	Delivered           bool      `json:"delivered"`
	CharactersDelivered int       `json:"characters_delivered"`
	CharactersRequested int       `json:"characters_requested"`
	StrategyUsed        string    `json:"strategy_used,omitempty"`
	Attempts            []Attempt `json:"attempts"`
}

// Strategy delivers text into a target and reports how many characters it
// believes it delivered. Verification is the cascade's job, not the
// strategy's: a strategy that returns without error has still failed if
// the read-back does not match.
type Strategy interface {
	Name() string
	Deliver(ctx context.Context, target input.Target, req Request) (int, error)
}

// Cascade tries an ordered list of delivery strategies until one verifies.
type Cascade struct {
	strategies []Strategy
	timing     Timing
	logger     zerolog.Logger
}

// New builds a cascade with the named strategy order. Known names are
// "keystroke", "field-set" and "clipboard".
func New(keyboard input.Keyboard, clipboard input.Clipboard, timing Timing, order []string) (*Cascade, error) {
	logger := log.WithComponent("cascade")
	available := map[string]Strategy{
		nameKeystroke: &keystrokeStrategy{keyboard: keyboard, charDelay: timing.CharDelay, logger: logger},
		nameFieldSet:  &fieldSetStrategy{},
		nameClipboard: &clipboardStrategy{keyboard: keyboard, clipboard: clipboard, logger: logger},
	}

	var strategies []Strategy
	for _, name := range order {
		s, ok := available[name]
		if !ok {
			return nil, fmt.Errorf("unknown delivery strategy %q", name)
		}
		strategies = append(strategies, s)
	}
	if len(strategies) == 0 {
		return nil, fmt.Errorf("empty strategy order")
	}

	return &Cascade{strategies: strategies, timing: timing, logger: logger}, nil
}

// NewWithStrategies builds a cascade from explicit strategies, bypassing
// the registry. Used by tests and by callers with custom delivery methods.
func NewWithStrategies(timing Timing, strategies ...Strategy) *Cascade {
	return &Cascade{strategies: strategies, timing: timing, logger: log.WithComponent("cascade")}
}

// Deliver runs the cascade for one text-entry request. It returns the
// first verified success immediately without trying further strategies.
// Strategy failures never propagate; when every strategy is exhausted the
// returned error carries DeliveryExhausted and the Result holds the
// per-attempt detail. A context cancellation aborts mid-cascade and is
// returned as-is.
func (c *Cascade) Deliver(ctx context.Context, req Request) (Result, error) {
	requested := utf8.RuneCountInString(req.Text)
	result := Result{CharactersRequested: requested}

	candidates := c.strategies
	if req.Strategy != "" {
		pinned := c.find(req.Strategy)
		if pinned == nil {
			return result, fmt.Errorf("unknown delivery strategy %q", req.Strategy)
		}
		candidates = []Strategy{pinned}
	}

	for _, strategy := range candidates {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		attempt, err := c.attempt(ctx, strategy, req, requested)
		if err != nil {
			// Only context cancellation escapes the loop.
			return result, err
		}
		result.Attempts = append(result.Attempts, attempt)

		if attempt.Verified {
			result.Delivered = true
			result.CharactersDelivered = attempt.Delivered
			result.StrategyUsed = strategy.Name()
			c.logger.Info().Str("strategy", strategy.Name()).Int("chars", attempt.Delivered).
				Msg("delivery verified")
			return result, nil
		}
		c.logger.Warn().Str("strategy", strategy.Name()).Str("error", attempt.Error).
			Int("delivered", attempt.Delivered).Int("requested", requested).
			Msg("strategy failed, falling back")
	}

	return result, errdefs.New(errdefs.CodeDeliveryExhausted,
		"all %d delivery strategies failed for %d characters", len(result.Attempts), requested)
}

// attempt runs one strategy with focus, clear, delivery and verification.
func (c *Cascade) attempt(ctx context.Context, strategy Strategy, req Request, requested int) (Attempt, error) {
	attempt := Attempt{Strategy: strategy.Name(), Requested: requested}

	fail := func(err error) (Attempt, error) {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return attempt, ctxErr
		}
		attempt.Error = err.Error()
		return attempt, nil
	}

	if err := req.Target.Focus(ctx); err != nil {
		return fail(fmt.Errorf("focus target: %w", err))
	}
	if err := sleepCtx(ctx, c.timing.PreFocusDelay); err != nil {
		return attempt, err
	}
	if err := req.Target.Clear(ctx); err != nil {
		return fail(fmt.Errorf("clear target: %w", err))
	}

	delivered, err := strategy.Deliver(ctx, req.Target, req)
	attempt.Delivered = delivered
	if err != nil {
		return fail(fmt.Errorf("deliver: %w", err))
	}

	if err := sleepCtx(ctx, c.timing.SettleDelay); err != nil {
		return attempt, err
	}

	value, err := req.Target.Value(ctx)
	if err != nil {
		return fail(fmt.Errorf("read back target: %w", err))
	}
	got := utf8.RuneCountInString(value)
	if got != requested {
		return fail(fmt.Errorf("verification mismatch: target holds %d characters, wanted %d", got, requested))
	}

	attempt.Delivered = requested
	attempt.Verified = true
	return attempt, nil
}

func (c *Cascade) find(name string) Strategy {
	for _, s := range c.strategies {
		if s.Name() == name {
			return s
		}
	}
	return nil
}

// sleepCtx waits for d or until the context is cancelled.
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
