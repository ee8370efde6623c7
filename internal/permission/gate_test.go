// internal/permission/gate_test.go
package permission

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autoscribe/internal/errdefs"
)

type fakeProber struct {
	err   error
	calls int
}

func (p *fakeProber) Probe() error {
	p.calls++
	return p.err
}

func TestGateCachesGrantedResult(t *testing.T) {
	prober := &fakeProber{}
	gate := NewGate(prober)

	require.NoError(t, gate.CheckAccess())
	require.NoError(t, gate.CheckAccess())
	require.NoError(t, gate.CheckAccess())

	assert.Equal(t, 1, prober.calls, "granted result must be cached")
}

func TestGateReprobesAfterDenial(t *testing.T) {
	prober := &fakeProber{err: errors.New("not a member of input group")}
	gate := NewGate(prober)

	err := gate.CheckAccess()
	require.Error(t, err)
	assert.True(t, errdefs.IsCode(err, errdefs.CodePermissionDenied))

	// Permission granted mid-process: the next check must probe again and
	// succeed rather than replay the cached denial.
	prober.err = nil
	require.NoError(t, gate.CheckAccess())
	assert.Equal(t, 2, prober.calls)

	// And from here on the grant is cached.
	require.NoError(t, gate.CheckAccess())
	assert.Equal(t, 2, prober.calls)
}
