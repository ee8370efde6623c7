// internal/action/script.go
package action

import (
	"encoding/json"
	"fmt"
	"time"
)

// ScriptVersion is the artifact format version written by this engine.
// Decode rejects artifacts from a newer format.
const ScriptVersion = 1

// Script is the serialized form of one recording session: a versioned,
// ordered action sequence. The artifact is plain indented JSON so it can be
// inspected and hand-edited.
type Script struct {
	Version   int       `json:"version"`
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	Actions   []Action  `json:"actions"`
}

// Encode renders the script as an inspectable JSON document.
func Encode(s *Script) ([]byte, error) {
	if s.Version == 0 {
		s.Version = ScriptVersion
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal script: %w", err)
	}
	return append(data, '\n'), nil
}

// Decode parses and validates a script artifact.
func Decode(data []byte) (*Script, error) {
	var s Script
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	if s.Version > ScriptVersion {
		return nil, fmt.Errorf("script version %d is newer than supported version %d", s.Version, ScriptVersion)
	}
	for i, a := range s.Actions {
		if err := a.Validate(); err != nil {
			return nil, fmt.Errorf("action %d: %w", i, err)
		}
	}
	return &s, nil
}
