// Package service implements the public git comparison operations.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/diffscope/diffscope/domain/diff"
)

// Default branch arguments.
const (
	DefaultBaseBranch   = "main"
	DefaultTargetBranch = "HEAD"
)

// Comparer is the git surface the review operations consume: raw text out,
// typed errors on failure.
type Comparer interface {
	Fetch(ctx context.Context) error
	Diff(ctx context.Context, base, target string) (string, error)
	DiffStat(ctx context.Context, base, target string) (string, error)
	Numstat(ctx context.Context, base, target string) (string, error)
	LocalBranches(ctx context.Context) (string, error)
	RemoteBranches(ctx context.Context) (string, error)
	CurrentBranch(ctx context.Context) (string, error)
	Commits(ctx context.Context, base, target string) (string, error)
}

// Review provides the branch comparison operations exposed as tools.
// Each call is an independent unit of work; no state is retained between
// invocations.
type Review struct {
	repo           Comparer
	chunks         diff.ChunkParams
	fetchOnCompare bool
	logger         *slog.Logger
}

// NewReview creates a Review service.
func NewReview(repo Comparer, chunks diff.ChunkParams, fetchOnCompare bool, logger *slog.Logger) *Review {
	if logger == nil {
		logger = slog.Default()
	}
	return &Review{
		repo:           repo,
		chunks:         chunks,
		fetchOnCompare: fetchOnCompare,
		logger:         logger,
	}
}

// BranchDiff returns the chunked, formatted three-dot diff between base
// and target.
func (s *Review) BranchDiff(ctx context.Context, base, target string) (string, error) {
	base, target, err := s.normalizeRange(base, target)
	if err != nil {
		return "", fmt.Errorf("get branch diff: %w", err)
	}
	// Reject a bad chunk size before any subprocess is spawned.
	if s.chunks.Size <= 0 {
		return "", fmt.Errorf("get branch diff: %w: %d", diff.ErrInvalidChunkSize, s.chunks.Size)
	}

	warning := s.refresh(ctx)

	raw, err := s.repo.Diff(ctx, base, target)
	if err != nil {
		return "", fmt.Errorf("get branch diff: %w", err)
	}

	if strings.TrimSpace(raw) == "" {
		return withWarning(fmt.Sprintf("No differences found between %s and %s", base, target), warning), nil
	}

	chunks, err := diff.Chunks(raw, s.chunks)
	if err != nil {
		return "", fmt.Errorf("get branch diff: %w", err)
	}

	// Preamble text before the first marker forms a pathless section and
	// is not a changed file.
	fileCount := 0
	for _, sec := range diff.Sections(raw) {
		if sec.Path() != "" {
			fileCount++
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Git Diff: %s...%s\n", base, target)
	fmt.Fprintf(&b, "Found %d file(s) with changes:\n\n", fileCount)

	for _, c := range chunks {
		name := c.Path()
		if name == "" {
			name = "(preamble)"
		}
		if c.Total() > 1 {
			fmt.Fprintf(&b, "File: %s (Part %d/%d)\n", name, c.Part(), c.Total())
		} else {
			fmt.Fprintf(&b, "File: %s\n", name)
		}
		fmt.Fprintf(&b, "Lines changed: %d\n", c.Changed())
		b.WriteString("```diff\n")
		b.WriteString(c.Content())
		if !strings.HasSuffix(c.Content(), "\n") {
			b.WriteByte('\n')
		}
		b.WriteString("```\n\n")
	}

	return withWarning(strings.TrimRight(b.String(), "\n"), warning), nil
}

// DiffStats returns the unchunked diff summary between base and target,
// with per-file insertion and deletion counts.
func (s *Review) DiffStats(ctx context.Context, base, target string) (string, error) {
	base, target, err := s.normalizeRange(base, target)
	if err != nil {
		return "", fmt.Errorf("get diff stats: %w", err)
	}

	warning := s.refresh(ctx)

	stat, err := s.repo.DiffStat(ctx, base, target)
	if err != nil {
		return "", fmt.Errorf("get diff stats: %w", err)
	}

	if strings.TrimSpace(stat) == "" {
		return withWarning(fmt.Sprintf("No differences found between %s and %s", base, target), warning), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Diff Statistics: %s...%s\n\n", base, target)
	b.WriteString("```\n")
	b.WriteString(strings.TrimSpace(stat))
	b.WriteString("\n```")

	// Numstat gives exact per-file counts; the --stat block above is
	// git's human-oriented rendering.
	numstat, err := s.repo.Numstat(ctx, base, target)
	if err == nil {
		if stats := diff.ParseNumstat(numstat); len(stats) > 0 {
			b.WriteString("\n\nPer-file changes:\n")
			for _, f := range stats {
				if f.Binary() {
					fmt.Fprintf(&b, "  %s: binary\n", f.Path())
				} else {
					fmt.Fprintf(&b, "  %s: +%d -%d\n", f.Path(), f.Insertions(), f.Deletions())
				}
			}
		}
	} else {
		s.logger.Warn("numstat failed", slog.Any("error", err))
	}

	return withWarning(strings.TrimRight(b.String(), "\n"), warning), nil
}

// BranchList returns formatted local and remote branch listings with the
// current branch marked.
func (s *Review) BranchList(ctx context.Context) (string, error) {
	warning := s.refresh(ctx)

	var localOut, remoteOut, current string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		localOut, err = s.repo.LocalBranches(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		remoteOut, err = s.repo.RemoteBranches(gctx)
		return err
	})
	g.Go(func() error {
		// rev-parse is the authoritative current-branch source; on failure
		// fall back to the "*" marker in the listing.
		name, err := s.repo.CurrentBranch(gctx)
		if err != nil {
			s.logger.Warn("current branch lookup failed", slog.Any("error", err))
			return nil
		}
		current = name
		return nil
	})
	if err := g.Wait(); err != nil {
		return "", fmt.Errorf("get branch list: %w", err)
	}

	var b strings.Builder
	b.WriteString("Available Branches:\n")

	if locals := diff.ParseLocalBranches(localOut); len(locals) > 0 {
		b.WriteString("\nLocal:\n")
		for _, br := range locals {
			if br.Name() == current || (current == "" && br.Current()) {
				fmt.Fprintf(&b, "  - %s (current)\n", br.Name())
			} else {
				fmt.Fprintf(&b, "  - %s\n", br.Name())
			}
		}
	}

	if remotes := diff.ParseRemoteBranches(remoteOut); len(remotes) > 0 {
		b.WriteString("\nRemote:\n")
		for _, name := range remotes {
			fmt.Fprintf(&b, "  - %s\n", name)
		}
	}

	return withWarning(strings.TrimRight(b.String(), "\n"), warning), nil
}

// CommitRange returns one-line summaries of commits in target that are
// not in base. Zero commits is a successful, empty-range result.
func (s *Review) CommitRange(ctx context.Context, base, target string) (string, error) {
	base, target, err := s.normalizeRange(base, target)
	if err != nil {
		return "", fmt.Errorf("get commit range: %w", err)
	}

	warning := s.refresh(ctx)

	out, err := s.repo.Commits(ctx, base, target)
	if err != nil {
		return "", fmt.Errorf("get commit range: %w", err)
	}

	commits := diff.ParseCommits(out)
	if len(commits) == 0 {
		return withWarning(fmt.Sprintf("No new commits found between %s and %s", base, target), warning), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Commits in %s not in %s:\n", target, base)
	fmt.Fprintf(&b, "Found %d commit(s):\n\n", len(commits))
	for _, c := range commits {
		fmt.Fprintf(&b, "  - %s\n", c)
	}

	return withWarning(strings.TrimRight(b.String(), "\n"), warning), nil
}

// normalizeRange applies the default branch arguments. A blank base is an
// argument error; a blank target falls back to HEAD.
func (s *Review) normalizeRange(base, target string) (string, string, error) {
	base = strings.TrimSpace(base)
	if base == "" {
		return "", "", ErrBaseBranchRequired
	}
	target = strings.TrimSpace(target)
	if target == "" {
		target = DefaultTargetBranch
	}
	return base, target, nil
}

// refresh performs the best-effort remote refresh before a comparison.
// Failure is non-fatal: it is logged and returned as a warning line to
// append to the operation's output.
func (s *Review) refresh(ctx context.Context) string {
	if !s.fetchOnCompare {
		return ""
	}
	if err := s.repo.Fetch(ctx); err != nil {
		s.logger.Warn("fetch failed, results may be stale", slog.Any("error", err))
		return "Warning: fetch failed, remote-tracking data may be stale"
	}
	return ""
}

// withWarning appends a non-fatal warning line to output.
func withWarning(out, warning string) string {
	if warning == "" {
		return out
	}
	return out + "\n\n" + warning
}
