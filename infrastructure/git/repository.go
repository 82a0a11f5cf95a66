package git

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Repository exposes the read-only porcelain operations the comparison
// tools need. All output is requested colorless for clean downstream
// parsing; branch comparisons use merge-base (three-dot) semantics.
type Repository struct {
	runner *Runner
}

// NewRepository creates a Repository rooted at the given path.
func NewRepository(root string, timeout time.Duration, logger *slog.Logger) *Repository {
	return &Repository{runner: NewRunner(root, timeout, logger)}
}

// Root returns the repository root path.
func (r *Repository) Root() string { return r.runner.Root() }

// IsRepository reports whether the root contains git metadata.
func (r *Repository) IsRepository() bool {
	_, err := os.Stat(filepath.Join(r.runner.Root(), ".git"))
	return err == nil
}

// Fetch refreshes remote-tracking data for all remotes.
func (r *Repository) Fetch(ctx context.Context) error {
	_, err := r.runner.Run(ctx, "fetch", "--all", "--quiet")
	return err
}

// Diff returns the three-dot diff of target against the merge base of
// base and target.
func (r *Repository) Diff(ctx context.Context, base, target string) (string, error) {
	if err := r.verifyRefs(ctx, base, target); err != nil {
		return "", err
	}
	return r.runner.Run(ctx, "diff", base+"..."+target, "--no-color")
}

// DiffStat returns the three-dot diff summary (files changed, insertion
// and deletion counts) as rendered by git.
func (r *Repository) DiffStat(ctx context.Context, base, target string) (string, error) {
	if err := r.verifyRefs(ctx, base, target); err != nil {
		return "", err
	}
	return r.runner.Run(ctx, "diff", base+"..."+target, "--stat", "--no-color")
}

// Numstat returns machine-readable per-file insertion and deletion counts
// for the three-dot diff.
func (r *Repository) Numstat(ctx context.Context, base, target string) (string, error) {
	if err := r.verifyRefs(ctx, base, target); err != nil {
		return "", err
	}
	return r.runner.Run(ctx, "diff", base+"..."+target, "--numstat")
}

// LocalBranches returns the raw local branch listing.
func (r *Repository) LocalBranches(ctx context.Context) (string, error) {
	return r.runner.Run(ctx, "branch", "--no-color")
}

// RemoteBranches returns the raw remote-tracking branch listing.
func (r *Repository) RemoteBranches(ctx context.Context) (string, error) {
	return r.runner.Run(ctx, "branch", "-r", "--no-color")
}

// Commits returns one-line summaries of commits reachable from target but
// not from base, excluding merges.
func (r *Repository) Commits(ctx context.Context, base, target string) (string, error) {
	if err := r.verifyRefs(ctx, base, target); err != nil {
		return "", err
	}
	return r.runner.Run(ctx, "log", base+".."+target, "--oneline", "--no-merges")
}

// CurrentBranch returns the checked-out branch name, or the short commit
// hash in detached HEAD state.
func (r *Repository) CurrentBranch(ctx context.Context) (string, error) {
	out, err := r.runner.Run(ctx, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", err
	}
	return trimTrailingNewline(out), nil
}

// verifyRefs resolves each ref so that a missing branch surfaces as a
// RefNotFoundError naming it, rather than an opaque diff failure.
func (r *Repository) verifyRefs(ctx context.Context, refs ...string) error {
	for _, ref := range refs {
		_, err := r.runner.Run(ctx, "rev-parse", "--verify", ref)
		if err == nil {
			continue
		}
		var perr *ProcessError
		if errors.As(err, &perr) && isUnknownRevision(perr.Stderr) {
			return &RefNotFoundError{Ref: ref}
		}
		return err
	}
	return nil
}

func trimTrailingNewline(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
		s = s[:len(s)-1]
	}
	return s
}
