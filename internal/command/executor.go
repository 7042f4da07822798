package command

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"

	"git.home.luguber.info/inful/xcarchiver/internal/logfields"
)

// ExecOptions controls how a command is run and reported.
type ExecOptions struct {
	// PrintAll streams the tool output while it runs. Output is always captured.
	PrintAll bool
	// PrintCommand logs the joined command line before running it.
	PrintCommand bool
	// OnError is called with the captured output when the process exits
	// non-zero; its return value becomes the Execute error.
	OnError func(output string, err error) error
	// Dir is the working directory, empty for the current one.
	Dir string
}

// Executor runs generated commands. Implementations must block until the
// process has exited.
type Executor interface {
	Execute(ctx context.Context, cmd Command, opts ExecOptions) (string, error)
}

// ShellExecutor runs commands through `bash -c` so that quoted flag tokens
// and pipe suffixes are interpreted by the shell.
type ShellExecutor struct {
	Shell  string
	Stdout io.Writer
	Env    []string
}

// NewShellExecutor returns an executor streaming to stdout.
func NewShellExecutor() *ShellExecutor {
	return &ShellExecutor{Shell: "bash", Stdout: os.Stdout}
}

func (s *ShellExecutor) Execute(ctx context.Context, cmd Command, opts ExecOptions) (string, error) {
	line := cmd.String()
	if line == "" {
		return "", fmt.Errorf("empty command")
	}
	if opts.PrintCommand {
		slog.Info("Running command", logfields.Command(line))
	}

	shell := s.Shell
	if shell == "" {
		shell = "bash"
	}
	c := exec.CommandContext(ctx, shell, "-c", line)
	c.Dir = opts.Dir
	c.Env = append(os.Environ(), s.Env...)

	var captured bytes.Buffer
	var out io.Writer = &captured
	if opts.PrintAll && s.Stdout != nil {
		out = io.MultiWriter(&captured, s.Stdout)
	}
	c.Stdout = out
	c.Stderr = out

	err := c.Run()
	output := captured.String()
	if err != nil {
		slog.Debug("Command failed", logfields.Command(line), logfields.Error(err))
		if opts.OnError != nil {
			return output, opts.OnError(output, err)
		}
		return output, fmt.Errorf("%s: %w", line, err)
	}
	return output, nil
}
