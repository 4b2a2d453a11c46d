package workload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// ExitError reports a command that ran but exited non-zero
type ExitError struct {
	Command string
	Code    int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s exited with status %d", e.Command, e.Code)
}

// Command is an external program to be timed
type Command struct {
	Name  string
	Args  []string
	Shell string // when set, run as: <Shell> -c "<Name Args...>"
	Dir   string

	Stdout io.Writer
	Stderr io.Writer
}

// Parse builds a Command from CLI arguments (the part after "--")
func Parse(argv []string, shell string) (*Command, error) {
	if len(argv) == 0 {
		return nil, errors.New("no command given")
	}
	return &Command{
		Name:  argv[0],
		Args:  argv[1:],
		Shell: shell,
	}, nil
}

// String returns the command line as typed
func (c *Command) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// Work returns a unit of work that runs the command to completion each time
// it is called.
func (c *Command) Work(ctx context.Context) func() error {
	return func() error {
		return c.run(ctx)
	}
}

func (c *Command) run(ctx context.Context) error {
	var cmd *exec.Cmd
	if c.Shell != "" {
		cmd = exec.CommandContext(ctx, c.Shell, "-c", c.String())
	} else {
		cmd = exec.CommandContext(ctx, c.Name, c.Args...)
	}
	cmd.Dir = c.Dir

	cmd.Stdout = c.Stdout
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	cmd.Stderr = c.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() >= 0 {
			return &ExitError{Command: c.String(), Code: exitErr.ExitCode()}
		}
		return fmt.Errorf("failed to run %s: %w", c.String(), err)
	}
	return nil
}

// ExitCode maps an error from Work to a process exit status
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return 1
}
