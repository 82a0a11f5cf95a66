package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diffscope/diffscope/domain/diff"
	"github.com/diffscope/diffscope/infrastructure/git"
)

// fakeComparer implements Comparer with canned outputs and errors, and
// records the refs each operation received.
type fakeComparer struct {
	diffOut    string
	diffErr    error
	statOut    string
	numstatOut string
	numstatErr error
	localOut   string
	remoteOut  string
	currentOut string
	currentErr error
	commitsOut string
	fetchErr   error

	gotBase   string
	gotTarget string
	fetched   bool
}

func (f *fakeComparer) Fetch(context.Context) error {
	f.fetched = true
	return f.fetchErr
}

func (f *fakeComparer) Diff(_ context.Context, base, target string) (string, error) {
	f.gotBase, f.gotTarget = base, target
	return f.diffOut, f.diffErr
}

func (f *fakeComparer) DiffStat(_ context.Context, base, target string) (string, error) {
	f.gotBase, f.gotTarget = base, target
	return f.statOut, nil
}

func (f *fakeComparer) Numstat(context.Context, string, string) (string, error) {
	return f.numstatOut, f.numstatErr
}

func (f *fakeComparer) LocalBranches(context.Context) (string, error) {
	return f.localOut, nil
}

func (f *fakeComparer) RemoteBranches(context.Context) (string, error) {
	return f.remoteOut, nil
}

func (f *fakeComparer) CurrentBranch(context.Context) (string, error) {
	return f.currentOut, f.currentErr
}

func (f *fakeComparer) Commits(_ context.Context, base, target string) (string, error) {
	f.gotBase, f.gotTarget = base, target
	return f.commitsOut, nil
}

const testDiff = `diff --git a/main.go b/main.go
--- a/main.go
+++ b/main.go
@@ -1,1 +1,2 @@
 package main
+func main() {}
`

func newTestReview(repo *fakeComparer) *Review {
	return NewReview(repo, diff.DefaultChunkParams(), true, nil)
}

func TestBranchDiff_FormatsChunks(t *testing.T) {
	repo := &fakeComparer{diffOut: testDiff}
	svc := newTestReview(repo)

	out, err := svc.BranchDiff(context.Background(), "main", "feature")
	require.NoError(t, err)

	assert.True(t, repo.fetched)
	assert.Equal(t, "main", repo.gotBase)
	assert.Equal(t, "feature", repo.gotTarget)

	assert.Contains(t, out, "Git Diff: main...feature")
	assert.Contains(t, out, "Found 1 file(s) with changes:")
	assert.Contains(t, out, "File: main.go")
	assert.Contains(t, out, "Lines changed: 1")
	assert.Contains(t, out, "```diff\n"+testDiff+"```")
	assert.NotContains(t, out, "Part ")
}

func TestBranchDiff_MultipleChunksLabelled(t *testing.T) {
	var big strings.Builder
	big.WriteString("diff --git a/gen.go b/gen.go\n")
	for i := 0; i < 100; i++ {
		big.WriteString("+" + strings.Repeat("x", 78) + "\n")
	}
	repo := &fakeComparer{diffOut: big.String()}
	svc := NewReview(repo, diff.ChunkParams{Size: 2000}, true, nil)

	out, err := svc.BranchDiff(context.Background(), "main", "HEAD")
	require.NoError(t, err)

	assert.Contains(t, out, "File: gen.go (Part 1/")
	assert.Contains(t, out, "(Part 2/")
}

func TestBranchDiff_NoDifferences(t *testing.T) {
	svc := newTestReview(&fakeComparer{diffOut: ""})

	out, err := svc.BranchDiff(context.Background(), "main", "HEAD")
	require.NoError(t, err)
	assert.Equal(t, "No differences found between main and HEAD", out)
}

func TestBranchDiff_FetchFailureIsWarning(t *testing.T) {
	repo := &fakeComparer{diffOut: testDiff, fetchErr: errors.New("remote unreachable")}
	svc := newTestReview(repo)

	out, err := svc.BranchDiff(context.Background(), "main", "HEAD")
	require.NoError(t, err)
	assert.Contains(t, out, "Git Diff: main...HEAD")
	assert.Contains(t, out, "Warning: fetch failed")
}

func TestBranchDiff_RefNotFoundSurfaced(t *testing.T) {
	repo := &fakeComparer{diffErr: &git.RefNotFoundError{Ref: "nonexistent-branch"}}
	svc := newTestReview(repo)

	_, err := svc.BranchDiff(context.Background(), "main", "nonexistent-branch")
	require.Error(t, err)

	var refErr *git.RefNotFoundError
	require.ErrorAs(t, err, &refErr)
	assert.Equal(t, "nonexistent-branch", refErr.Ref)
	assert.Contains(t, err.Error(), "get branch diff")
}

func TestBranchDiff_BlankBaseRejected(t *testing.T) {
	svc := newTestReview(&fakeComparer{})

	_, err := svc.BranchDiff(context.Background(), "  ", "HEAD")
	require.ErrorIs(t, err, ErrBaseBranchRequired)
}

func TestBranchDiff_BlankTargetDefaultsToHead(t *testing.T) {
	repo := &fakeComparer{diffOut: testDiff}
	svc := newTestReview(repo)

	_, err := svc.BranchDiff(context.Background(), "main", "")
	require.NoError(t, err)
	assert.Equal(t, "HEAD", repo.gotTarget)
}

func TestBranchDiff_PreambleNotCountedAsFile(t *testing.T) {
	repo := &fakeComparer{diffOut: "warning: refname 'main' is ambiguous.\n" + testDiff}
	svc := newTestReview(repo)

	out, err := svc.BranchDiff(context.Background(), "main", "feature")
	require.NoError(t, err)

	assert.Contains(t, out, "Found 1 file(s) with changes:")
	assert.Contains(t, out, "File: main.go")
	assert.NotContains(t, out, "File: \n")
}

func TestBranchDiff_PreambleOnlyChunkLabelled(t *testing.T) {
	// An oversized preamble cannot borrow a path from a later section.
	var big strings.Builder
	for i := 0; i < 60; i++ {
		big.WriteString("warning: something noisy\n")
	}
	big.WriteString(testDiff)
	repo := &fakeComparer{diffOut: big.String()}
	svc := NewReview(repo, diff.ChunkParams{Size: 200}, true, nil)

	out, err := svc.BranchDiff(context.Background(), "main", "feature")
	require.NoError(t, err)

	assert.Contains(t, out, "File: (preamble)")
	assert.Contains(t, out, "Found 1 file(s) with changes:")
	assert.NotContains(t, out, "File: \n")
}

func TestBranchDiff_InvalidChunkSizeBeforeAnyGitCall(t *testing.T) {
	repo := &fakeComparer{diffOut: testDiff}
	svc := NewReview(repo, diff.ChunkParams{Size: 0}, true, nil)

	_, err := svc.BranchDiff(context.Background(), "main", "HEAD")
	require.ErrorIs(t, err, diff.ErrInvalidChunkSize)
	assert.False(t, repo.fetched)
	assert.Empty(t, repo.gotBase)
}

func TestBranchDiff_NoFetchWhenDisabled(t *testing.T) {
	repo := &fakeComparer{diffOut: testDiff}
	svc := NewReview(repo, diff.DefaultChunkParams(), false, nil)

	_, err := svc.BranchDiff(context.Background(), "main", "HEAD")
	require.NoError(t, err)
	assert.False(t, repo.fetched)
}

func TestDiffStats(t *testing.T) {
	repo := &fakeComparer{
		statOut:    " main.go | 3 ++-\n 1 file changed, 2 insertions(+), 1 deletion(-)\n",
		numstatOut: "2\t1\tmain.go\n-\t-\tlogo.png\n",
	}
	svc := newTestReview(repo)

	out, err := svc.DiffStats(context.Background(), "main", "HEAD")
	require.NoError(t, err)

	assert.Contains(t, out, "Diff Statistics: main...HEAD")
	assert.Contains(t, out, "1 file changed, 2 insertions(+), 1 deletion(-)")
	assert.Contains(t, out, "main.go: +2 -1")
	assert.Contains(t, out, "logo.png: binary")
}

func TestDiffStats_NoDifferences(t *testing.T) {
	svc := newTestReview(&fakeComparer{statOut: "  \n"})

	out, err := svc.DiffStats(context.Background(), "main", "HEAD")
	require.NoError(t, err)
	assert.Equal(t, "No differences found between main and HEAD", out)
}

func TestDiffStats_NumstatFailureNonFatal(t *testing.T) {
	repo := &fakeComparer{
		statOut:    " main.go | 2 ++\n",
		numstatErr: errors.New("boom"),
	}
	svc := newTestReview(repo)

	out, err := svc.DiffStats(context.Background(), "main", "HEAD")
	require.NoError(t, err)
	assert.Contains(t, out, "main.go | 2 ++")
	assert.NotContains(t, out, "Per-file changes")
}

func TestBranchList(t *testing.T) {
	repo := &fakeComparer{
		localOut:  "  feature\n* main\n",
		remoteOut: "  origin/HEAD -> origin/main\n  origin/main\n",
	}
	svc := newTestReview(repo)

	out, err := svc.BranchList(context.Background())
	require.NoError(t, err)

	assert.Contains(t, out, "Available Branches:")
	assert.Contains(t, out, "  - main (current)")
	assert.Contains(t, out, "  - feature\n")
	assert.Contains(t, out, "  - origin/main")
	assert.NotContains(t, out, "origin/HEAD")
}

func TestBranchList_CurrentBranchFromRevParse(t *testing.T) {
	repo := &fakeComparer{
		localOut:   "  feature\n* main\n",
		currentOut: "feature",
	}
	svc := newTestReview(repo)

	out, err := svc.BranchList(context.Background())
	require.NoError(t, err)

	assert.Contains(t, out, "  - feature (current)")
	assert.Contains(t, out, "  - main\n")
}

func TestBranchList_CurrentBranchFailureFallsBackToMarker(t *testing.T) {
	repo := &fakeComparer{
		localOut:   "  feature\n* main\n",
		currentErr: errors.New("rev-parse failed"),
	}
	svc := newTestReview(repo)

	out, err := svc.BranchList(context.Background())
	require.NoError(t, err)
	assert.Contains(t, out, "  - main (current)")
}

func TestCommitRange(t *testing.T) {
	repo := &fakeComparer{commitsOut: "abc1234 add chunker\ndef5678 fix parsing\n"}
	svc := newTestReview(repo)

	out, err := svc.CommitRange(context.Background(), "main", "feature")
	require.NoError(t, err)

	assert.Contains(t, out, "Commits in feature not in main:")
	assert.Contains(t, out, "Found 2 commit(s):")
	assert.Contains(t, out, "  - abc1234 add chunker")
}

func TestCommitRange_EmptyIsNotAnError(t *testing.T) {
	svc := newTestReview(&fakeComparer{commitsOut: "\n"})

	out, err := svc.CommitRange(context.Background(), "main", "HEAD")
	require.NoError(t, err)
	assert.Equal(t, "No new commits found between main and HEAD", out)
}
