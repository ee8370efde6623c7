// internal/permission/probe_linux.go
package permission

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// deviceProber checks access to the kernel input device nodes: /dev/uinput
// for injection and /dev/input for observation. Both are group-restricted
// on stock distributions, so a plain user process typically needs udev
// rules or membership in the input group.
type deviceProber struct {
	uinputPath string
	inputDir   string
}

func defaultProber() Prober {
	return &deviceProber{
		uinputPath: "/dev/uinput",
		inputDir:   "/dev/input",
	}
}

func (p *deviceProber) Probe() error {
	if err := unix.Access(p.uinputPath, unix.W_OK); err != nil {
		return fmt.Errorf("no write access to %s: %w", p.uinputPath, err)
	}
	if err := unix.Access(p.inputDir, unix.R_OK|unix.X_OK); err != nil {
		return fmt.Errorf("no read access to %s: %w", p.inputDir, err)
	}
	return nil
}
