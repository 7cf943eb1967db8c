package repo

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vahti-ci/vahti/internal/executil"
)

// fakeRunner maps command prefixes to canned results so backends can be
// tested without the VCS clients installed.
type fakeRunner struct {
	results  map[string]executil.Result
	err      error
	commands []string
}

func (f *fakeRunner) Run(_ context.Context, command string) (executil.Result, error) {
	f.commands = append(f.commands, command)
	if f.err != nil {
		return executil.Result{ExitCode: -1}, f.err
	}
	for prefix, res := range f.results {
		if strings.HasPrefix(command, prefix) {
			return res, nil
		}
	}
	return executil.Result{ExitCode: 127, Output: "command not faked: " + command}, nil
}

const svnInfoOutput = `Path: checkout
Working Copy Root Path: /srv/checkout
URL: https://svn.example.org/project/trunk
Revision: 42
Node Kind: directory
Last Changed Author: maija
Last Changed Rev: 42
Last Changed Date: 2026-08-12 10:11:12 +0000
`

const svnLogOutput = `------------------------------------------------------------------------
r42 | maija | 2026-08-12 10:11:12 +0000 | 1 line

Fix flaky parser test
------------------------------------------------------------------------
`

func TestSVNUpdate(t *testing.T) {
	run := &fakeRunner{results: map[string]executil.Result{
		"svn up": {ExitCode: 0, Output: "At revision 42.\n"},
	}}
	r := NewSVN("checkout", run)

	ok, output := r.Update(context.Background())
	assert.True(t, ok)
	assert.Equal(t, "At revision 42.\n", output)
	require.Len(t, run.commands, 1)
	assert.Equal(t, "svn up checkout", run.commands[0])
}

func TestSVNUpdateFailure(t *testing.T) {
	run := &fakeRunner{results: map[string]executil.Result{
		"svn up": {ExitCode: 1, Output: "svn: E155007: not a working copy\n"},
	}}
	r := NewSVN("checkout", run)

	ok, output := r.Update(context.Background())
	assert.False(t, ok)
	assert.Contains(t, output, "E155007")
}

func TestSVNLastCommitInfo(t *testing.T) {
	run := &fakeRunner{results: map[string]executil.Result{
		"svn info": {ExitCode: 0, Output: svnInfoOutput},
		"svn log":  {ExitCode: 0, Output: svnLogOutput},
	}}
	r := NewSVN("checkout", run)

	info := r.LastCommitInfo(context.Background())
	assert.Equal(t, "42", info.ID)
	assert.Equal(t, "maija", info.Author)
	assert.Equal(t, "Fix flaky parser test", info.Message)
	assert.NotEmpty(t, info.RawOutput)
}

func TestSVNLastCommitInfoLogFailureDegradesToEmptyMessage(t *testing.T) {
	run := &fakeRunner{results: map[string]executil.Result{
		"svn info": {ExitCode: 0, Output: svnInfoOutput},
		"svn log":  {ExitCode: 1, Output: "svn: log unavailable"},
	}}
	r := NewSVN("checkout", run)

	info := r.LastCommitInfo(context.Background())
	assert.Equal(t, "42", info.ID)
	assert.Empty(t, info.Message)
}

func TestSVNLastCommitInfoCommandFailure(t *testing.T) {
	run := &fakeRunner{results: map[string]executil.Result{
		"svn info": {ExitCode: 1, Output: "svn: E155007: not a working copy\n"},
	}}
	r := NewSVN("checkout", run)

	info := r.LastCommitInfo(context.Background())
	assert.Empty(t, info.ID)
	assert.Contains(t, info.RawOutput, "E155007")
}

func TestSVNLastCommitInfoMalformedOutput(t *testing.T) {
	run := &fakeRunner{results: map[string]executil.Result{
		"svn info": {ExitCode: 0, Output: "this is not key value output\n"},
	}}
	r := NewSVN("checkout", run)

	info := r.LastCommitInfo(context.Background())
	assert.Empty(t, info.ID)
	assert.Contains(t, info.RawOutput, "not key value")
}

func TestSVNLastCommitInfoMissingRevision(t *testing.T) {
	run := &fakeRunner{results: map[string]executil.Result{
		"svn info": {ExitCode: 0, Output: "Path: checkout\nURL: https://svn.example.org\n"},
	}}
	r := NewSVN("checkout", run)

	info := r.LastCommitInfo(context.Background())
	assert.Empty(t, info.ID)
	assert.NotEmpty(t, info.RawOutput)
}
