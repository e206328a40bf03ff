// Package localexec implements ports.Executor by running commands through
// the local shell, grounded on internal/executive/simple_session.go's
// exec.CommandContext usage (teacher's own os/exec invocation style).
package localexec

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"time"

	"github.com/mneme-ai/organism/internal/logging"
)

const subsystem = "localexec"

// Executor runs shell commands on the local machine with a bounded timeout.
type Executor struct {
	Shell   string // default "bash"
	Timeout time.Duration
}

// New constructs an Executor with the given per-command timeout. A zero
// timeout means no deadline beyond ctx's own.
func New(timeout time.Duration) *Executor {
	return &Executor{Shell: "bash", Timeout: timeout}
}

// Execute runs command through "$Shell -c command" and returns its combined
// stdout+stderr in full; the output is not truncated.
func (e *Executor) Execute(ctx context.Context, command string) (string, error) {
	runCtx := ctx
	if e.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	shell := e.Shell
	if shell == "" {
		shell = "bash"
	}

	cmd := exec.CommandContext(runCtx, shell, "-c", command)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	if err := cmd.Run(); err != nil {
		logging.Warn(subsystem, "command failed: %v", err)
		return out.String(), fmt.Errorf("execute %q: %w", logging.Truncate(command, 80), err)
	}
	return out.String(), nil
}
