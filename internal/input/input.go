// internal/input/input.go
package input

import (
	"context"

	"autoscribe/internal/action"
)

// Keyboard injects synthetic key events.
type Keyboard interface {
	// TypeRune delivers one literal character.
	TypeRune(ctx context.Context, r rune) error
	// PressKey delivers a named key or chord, e.g. "Return" or "ctrl+v".
	PressKey(ctx context.Context, key string) error
}

// Pointer injects synthetic pointer events.
type Pointer interface {
	Move(ctx context.Context, x, y int) error
	Click(ctx context.Context, x, y int, button string) error
}

// Clipboard is the system clipboard. The paste strategy treats it as
// transient scratch space: write, use, overwrite.
type Clipboard interface {
	Write(ctx context.Context, text string) error
	Read(ctx context.Context) (string, error)
}

// Target is a re-acquired UI element a text-entry action delivers into.
type Target interface {
	Focus(ctx context.Context) error
	Clear(ctx context.Context) error
	SetValue(ctx context.Context, text string) error
	Value(ctx context.Context) (string, error)
}

// Resolver turns an opaque locator captured at record time into a live
// Target at replay time.
type Resolver interface {
	Resolve(ctx context.Context, locator string) (Target, error)
}

// CaptureSource delivers OS input events while recording. Start begins
// asynchronous delivery; emit is invoked from the source's own goroutine
// for every observed action.
type CaptureSource interface {
	Start(ctx context.Context, emit func(action.Action)) error
	Stop() error
}
