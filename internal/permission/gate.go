// internal/permission/gate.go
package permission

import (
	"sync"

	"github.com/rs/zerolog"

	"autoscribe/internal/errdefs"
	"autoscribe/internal/log"
)

// Prober checks whether the host OS currently grants input observation and
// injection rights. A nil return means granted.
type Prober interface {
	Probe() error
}

// Gate answers CheckAccess before recording or replay is allowed to touch
// OS input. A granted result is cached for the process lifetime; a denied
// result is re-probed on every call, because the user can grant the
// permission while the process is running.
type Gate struct {
	logger zerolog.Logger

	mu      sync.Mutex
	prober  Prober
	granted bool
}

// NewGate creates a gate backed by the given prober. A nil prober uses the
// platform default.
func NewGate(prober Prober) *Gate {
	if prober == nil {
		prober = defaultProber()
	}
	return &Gate{prober: prober, logger: log.WithComponent("permission")}
}

// CheckAccess returns nil when input access is granted, or a
// PermissionDenied error describing what the user has to grant.
func (g *Gate) CheckAccess() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.granted {
		return nil
	}

	if err := g.prober.Probe(); err != nil {
		g.logger.Warn().Err(err).Msg("input access denied")
		return errdefs.Wrap(errdefs.CodePermissionDenied, err, "input observation/injection not granted")
	}

	g.granted = true
	return nil
}
