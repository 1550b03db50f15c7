package tools

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/sirupsen/logrus"
)

var runnerLog = logrus.WithField("source", "tools/runner")

// Runner runs a host command to completion and returns its standard
// output. Every OS facility jadm talks to (jail, jls, rctl, ifconfig, zfs)
// goes through a Runner so it can be replaced in tests.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// CommandError is returned when a host command exits non-zero or could not
// be started at all.
type CommandError struct {
	Name     string
	Args     []string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("%s %s: %v", e.Name, strings.Join(e.Args, " "), e.Err)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// ExecRunner runs commands on the host with os/exec.
type ExecRunner struct{}

// NewExecRunner returns a Runner backed by real processes.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

// Run blocks until the command exits. Standard error is captured and
// attached to the returned *CommandError.
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	runnerLog.WithField("args", strings.Join(args, " ")).Tracef("running %s", name)

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		cmdErr := &CommandError{
			Name:     name,
			Args:     args,
			ExitCode: -1,
			Stderr:   strings.TrimSpace(stderr.String()),
			Err:      err,
		}
		if exitErr, ok := err.(*exec.ExitError); ok {
			cmdErr.ExitCode = exitErr.ExitCode()
		}
		return stdout.Bytes(), cmdErr
	}
	return stdout.Bytes(), nil
}
