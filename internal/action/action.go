// internal/action/action.go
package action

import (
	"fmt"
)

// Kind identifies what a captured action does on replay.
type Kind string

const (
	KindPointerMove  Kind = "pointer-move"
	KindPointerClick Kind = "pointer-click"
	KindKeyPress     Kind = "key-press"
	KindTextEntry    Kind = "text-entry"
	KindWait         Kind = "wait"
)

// Action is one captured user-interaction event. Once appended to a session
// log it is immutable; the only permitted mutation is whole-record removal.
//
// Payload fields are kind-specific: X/Y/Button for pointer events, KeyCode
// for key-press, Text for text-entry, WaitMS for wait. Target is an opaque
// locator for re-acquiring the same UI element at replay time and may be
// empty for raw input events.
type Action struct {
	Kind       Kind   `json:"kind"`
	Target     string `json:"target,omitempty"`
	X          int    `json:"x,omitempty"`
	Y          int    `json:"y,omitempty"`
	Button     string `json:"button,omitempty"`
	KeyCode    string `json:"key_code,omitempty"`
	Text       string `json:"text,omitempty"`
	Sensitive  bool   `json:"sensitive,omitempty"`
	WaitMS     int    `json:"wait_ms,omitempty"`
	CapturedAt int64  `json:"captured_at_ms"` // milliseconds since session start
}

// Validate checks that the action carries the payload its kind requires.
func (a Action) Validate() error {
	switch a.Kind {
	case KindPointerMove, KindPointerClick:
		return nil
	case KindKeyPress:
		if a.KeyCode == "" {
			return fmt.Errorf("key-press action missing key code")
		}
		return nil
	case KindTextEntry:
		if a.Text == "" {
			return fmt.Errorf("text-entry action missing text")
		}
		return nil
	case KindWait:
		if a.WaitMS <= 0 {
			return fmt.Errorf("wait action requires a positive duration, got %d", a.WaitMS)
		}
		return nil
	default:
		return fmt.Errorf("unknown action kind %q", a.Kind)
	}
}

// Describe returns a short human-readable summary used for progress
// reporting. Sensitive text is never included.
func (a Action) Describe() string {
	switch a.Kind {
	case KindPointerMove:
		return fmt.Sprintf("move pointer to (%d, %d)", a.X, a.Y)
	case KindPointerClick:
		button := a.Button
		if button == "" {
			button = "left"
		}
		return fmt.Sprintf("%s click at (%d, %d)", button, a.X, a.Y)
	case KindKeyPress:
		return fmt.Sprintf("press key %s", a.KeyCode)
	case KindTextEntry:
		if a.Sensitive {
			return "enter text (sensitive)"
		}
		return fmt.Sprintf("enter %d characters", len([]rune(a.Text)))
	case KindWait:
		return fmt.Sprintf("wait %dms", a.WaitMS)
	default:
		return string(a.Kind)
	}
}
