// internal/input/capture.go
package input

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"

	"github.com/rs/zerolog"

	"autoscribe/internal/action"
	"autoscribe/internal/log"
)

// ExecCapture observes user input by running a helper process that prints
// one JSON-encoded action per stdout line. The helper owns the OS hook;
// this side only pumps its output.
type ExecCapture struct {
	argv   []string
	logger zerolog.Logger

	mu       sync.Mutex
	cmd      *exec.Cmd
	stdout   io.ReadCloser
	pumpDone chan struct{}
	running  bool
}

// NewExecCapture creates a capture source for the configured helper argv.
func NewExecCapture(argv []string) *ExecCapture {
	return &ExecCapture{
		argv:   argv,
		logger: log.WithComponent("capture"),
	}
}

// Start launches the helper and pumps captured actions to emit until the
// helper exits or Stop is called. Lines that fail to parse are dropped
// with a log entry; one bad line must not end the recording.
func (c *ExecCapture) Start(ctx context.Context, emit func(action.Action)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return fmt.Errorf("capture already running")
	}
	if len(c.argv) == 0 {
		return fmt.Errorf("no capture helper configured")
	}

	cmd := exec.CommandContext(ctx, c.argv[0], c.argv[1:]...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("capture stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start capture helper: %w", err)
	}

	c.cmd = cmd
	c.stdout = stdout
	c.pumpDone = make(chan struct{})
	c.running = true

	go c.pump(stdout, emit, c.pumpDone)
	return nil
}

func (c *ExecCapture) pump(stdout io.Reader, emit func(action.Action), done chan struct{}) {
	defer close(done)
	scanner := bufio.NewScanner(stdout)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	for scanner.Scan() {
		line := scanner.Bytes()
		var a action.Action
		if err := json.Unmarshal(line, &a); err != nil {
			c.logger.Warn().Err(err).Msg("dropping unparseable capture line")
			continue
		}
		if err := a.Validate(); err != nil {
			c.logger.Warn().Err(err).Msg("dropping invalid captured action")
			continue
		}
		emit(a)
	}

	c.mu.Lock()
	c.running = false
	c.mu.Unlock()
	c.logger.Debug().Msg("capture stream ended")
}

// Stop terminates the helper and reaps it. Wait only runs after the pump
// goroutine has finished reading the stdout pipe, as os/exec requires.
// Safe to call when not running.
func (c *ExecCapture) Stop() error {
	c.mu.Lock()
	cmd := c.cmd
	stdout := c.stdout
	done := c.pumpDone
	c.running = false
	c.cmd = nil
	c.mu.Unlock()

	if cmd == nil {
		return nil
	}
	if cmd.Process != nil {
		if err := cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
			return fmt.Errorf("kill capture helper: %w", err)
		}
	}
	// Closing the read end unblocks the pump even when a grandchild of the
	// helper still holds the pipe's write end open.
	stdout.Close()
	<-done
	cmd.Wait()
	return nil
}
