package repo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vahti-ci/vahti/internal/executil"
)

func TestGitUpdate(t *testing.T) {
	run := &fakeRunner{results: map[string]executil.Result{
		"git -C checkout pull": {ExitCode: 0, Output: "Already up to date.\n"},
	}}
	r := NewGit("checkout", run)

	ok, output := r.Update(context.Background())
	assert.True(t, ok)
	assert.Contains(t, output, "up to date")
	require.Len(t, run.commands, 1)
	assert.Equal(t, "git -C checkout pull --ff-only", run.commands[0])
}

func TestGitUpdateDivergedFails(t *testing.T) {
	run := &fakeRunner{results: map[string]executil.Result{
		"git -C checkout pull": {ExitCode: 128, Output: "fatal: Not possible to fast-forward, aborting.\n"},
	}}
	r := NewGit("checkout", run)

	ok, output := r.Update(context.Background())
	assert.False(t, ok)
	assert.Contains(t, output, "fast-forward")
}

func TestGitLastCommitInfo(t *testing.T) {
	run := &fakeRunner{results: map[string]executil.Result{
		"git -C checkout log": {ExitCode: 0, Output: "4f2b9c1d8a7e\nmaija\nFix flaky parser test"},
	}}
	r := NewGit("checkout", run)

	info := r.LastCommitInfo(context.Background())
	assert.Equal(t, "4f2b9c1d8a7e", info.ID)
	assert.Equal(t, "maija", info.Author)
	assert.Equal(t, "Fix flaky parser test", info.Message)
}

func TestGitLastCommitInfoFailure(t *testing.T) {
	run := &fakeRunner{results: map[string]executil.Result{
		"git -C checkout log": {ExitCode: 128, Output: "fatal: not a git repository\n"},
	}}
	r := NewGit("checkout", run)

	info := r.LastCommitInfo(context.Background())
	assert.Empty(t, info.ID)
	assert.Contains(t, info.RawOutput, "not a git repository")
}

func TestGitLastCommitInfoTruncatedOutput(t *testing.T) {
	run := &fakeRunner{results: map[string]executil.Result{
		"git -C checkout log": {ExitCode: 0, Output: "4f2b9c1d8a7e\n"},
	}}
	r := NewGit("checkout", run)

	info := r.LastCommitInfo(context.Background())
	assert.Empty(t, info.ID)
}
