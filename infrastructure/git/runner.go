// Package git runs the git binary against a configured repository root
// and maps failures to typed errors.
package git

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

// DefaultTimeout bounds each git subprocess invocation.
const DefaultTimeout = 30 * time.Second

// Runner executes git subcommands in a repository root. Each invocation
// spawns its own subprocess with a bounded timeout; on expiry the process
// is killed and a TimeoutError is returned with no partial output.
type Runner struct {
	root    string
	timeout time.Duration
	logger  *slog.Logger
}

// NewRunner creates a Runner for the given repository root.
func NewRunner(root string, timeout time.Duration, logger *slog.Logger) *Runner {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{root: root, timeout: timeout, logger: logger}
}

// Root returns the repository root the runner operates on.
func (r *Runner) Root() string { return r.root }

// Run executes `git args...` and returns captured stdout. Non-zero exits
// are classified into NotARepositoryError or ProcessError; deadline expiry
// yields a TimeoutError.
func (r *Runner) Run(ctx context.Context, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = r.root

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	r.logger.Debug("git command finished",
		slog.String("args", strings.Join(args, " ")),
		slog.Duration("elapsed", time.Since(start)),
		slog.Bool("ok", err == nil),
	)

	if err == nil {
		return stdout.String(), nil
	}

	if ctx.Err() == context.DeadlineExceeded {
		return "", &TimeoutError{Args: args, Timeout: r.timeout}
	}

	errText := stderr.String()
	if isNotARepository(errText) {
		return "", &NotARepositoryError{Path: r.root}
	}

	exitCode := -1
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		exitCode = exitErr.ExitCode()
	}
	return "", &ProcessError{Args: args, ExitCode: exitCode, Stderr: errText}
}

func isNotARepository(stderr string) bool {
	return strings.Contains(strings.ToLower(stderr), "not a git repository")
}

// isUnknownRevision reports whether stderr describes a missing or
// unresolvable ref.
func isUnknownRevision(stderr string) bool {
	s := strings.ToLower(stderr)
	for _, marker := range []string{
		"unknown revision",
		"bad revision",
		"ambiguous argument",
		"needed a single revision",
	} {
		if strings.Contains(s, marker) {
			return true
		}
	}
	return false
}
