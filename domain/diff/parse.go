package diff

import (
	"strconv"
	"strings"
)

// FileStat holds per-file change counts parsed from numstat output.
type FileStat struct {
	path       string
	insertions int
	deletions  int
	binary     bool
}

// Path returns the file path.
func (f FileStat) Path() string { return f.path }

// Insertions returns the number of added lines.
func (f FileStat) Insertions() int { return f.insertions }

// Deletions returns the number of removed lines.
func (f FileStat) Deletions() int { return f.deletions }

// Binary reports whether the file is binary (no line counts available).
func (f FileStat) Binary() bool { return f.binary }

// ParseNumstat parses `git diff --numstat` output into per-file stats.
// Binary files are reported with "-" counts and flagged as such.
// Malformed lines are skipped.
func ParseNumstat(out string) []FileStat {
	var stats []FileStat
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		fields := strings.SplitN(line, "\t", 3)
		if len(fields) != 3 {
			continue
		}
		stat := FileStat{path: fields[2]}
		if fields[0] == "-" || fields[1] == "-" {
			stat.binary = true
		} else {
			ins, err := strconv.Atoi(fields[0])
			if err != nil {
				continue
			}
			del, err := strconv.Atoi(fields[1])
			if err != nil {
				continue
			}
			stat.insertions = ins
			stat.deletions = del
		}
		stats = append(stats, stat)
	}
	return stats
}

// Branch is a branch name with a current-branch marker.
type Branch struct {
	name    string
	current bool
}

// Name returns the branch name.
func (b Branch) Name() string { return b.name }

// Current reports whether this is the checked-out branch.
func (b Branch) Current() bool { return b.current }

// ParseLocalBranches parses `git branch` output. The branch prefixed with
// "*" is marked current.
func ParseLocalBranches(out string) []Branch {
	var branches []Branch
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		name := strings.TrimSpace(line)
		if name == "" {
			continue
		}
		current := strings.HasPrefix(name, "*")
		if current {
			name = strings.TrimSpace(strings.TrimPrefix(name, "*"))
		}
		branches = append(branches, Branch{name: name, current: current})
	}
	return branches
}

// ParseRemoteBranches parses `git branch -r` output, dropping symbolic
// HEAD pointers (e.g. "origin/HEAD -> origin/main").
func ParseRemoteBranches(out string) []string {
	var branches []string
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		name := strings.TrimSpace(line)
		if name == "" || strings.Contains(name, "->") || strings.HasSuffix(name, "/HEAD") {
			continue
		}
		branches = append(branches, name)
	}
	return branches
}

// ParseCommits parses `git log --oneline` output into one-line commit
// summaries.
func ParseCommits(out string) []string {
	trimmed := strings.TrimSpace(out)
	if trimmed == "" {
		return nil
	}
	lines := strings.Split(trimmed, "\n")
	commits := make([]string, 0, len(lines))
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			commits = append(commits, line)
		}
	}
	return commits
}
