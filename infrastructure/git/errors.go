package git

import (
	"fmt"
	"strings"
	"time"
)

// NotARepositoryError indicates the configured path has no git metadata.
type NotARepositoryError struct {
	Path string
}

func (e *NotARepositoryError) Error() string {
	return "not a git repository: " + e.Path
}

// RefNotFoundError indicates a supplied branch or ref does not exist.
type RefNotFoundError struct {
	Ref string
}

func (e *RefNotFoundError) Error() string {
	return "ref not found: " + e.Ref
}

// TimeoutError indicates the git subprocess exceeded its time budget and
// was killed. No partial output is retained.
type TimeoutError struct {
	Args    []string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("git %s timed out after %s", strings.Join(e.Args, " "), e.Timeout)
}

// ProcessError indicates the git subprocess exited non-zero for a reason
// other than a missing repository or ref.
type ProcessError struct {
	Args     []string
	ExitCode int
	Stderr   string
}

func (e *ProcessError) Error() string {
	msg := strings.TrimSpace(e.Stderr)
	if msg == "" {
		msg = fmt.Sprintf("exit status %d", e.ExitCode)
	}
	return fmt.Sprintf("git %s failed: %s", strings.Join(e.Args, " "), msg)
}
