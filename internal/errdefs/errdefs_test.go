// internal/errdefs/errdefs_test.go
package errdefs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{"nil", nil, ""},
		{"coded", New(CodeInvalidState, "pause while idle"), CodeInvalidState},
		{"wrapped cause", Wrap(CodeFileNotFound, errors.New("stat failed"), "load script"), CodeFileNotFound},
		{"coded inside fmt chain", fmt.Errorf("outer: %w", New(CodePermissionDenied, "no access")), CodePermissionDenied},
		{"uncoded", errors.New("boom"), CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CodeOf(tt.err))
		})
	}
}

func TestIsCode(t *testing.T) {
	err := Wrap(CodeSerializationFailed, errors.New("disk full"), "write artifact")
	assert.True(t, IsCode(err, CodeSerializationFailed))
	assert.False(t, IsCode(err, CodeFileNotFound))
}

func TestMessageOf(t *testing.T) {
	assert.Equal(t, "", MessageOf(nil))
	assert.Equal(t, "pause while idle", MessageOf(New(CodeInvalidState, "pause while idle")))
	assert.Equal(t, "load script: no such file", MessageOf(Wrap(CodeFileNotFound, errors.New("no such file"), "load script")))
	assert.Equal(t, "boom", MessageOf(errors.New("boom")))
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := Wrap(CodeInternal, cause, "wrapped")
	assert.True(t, errors.Is(err, cause))
}
