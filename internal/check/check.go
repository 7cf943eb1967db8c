// Package check sequences one CI poll: update the repository, decide whether
// to run tests, notify on outcome transitions, and persist the new status.
package check

import (
	"context"
	"fmt"

	"github.com/vahti-ci/vahti/internal/errors"
	"github.com/vahti-ci/vahti/internal/executil"
	"github.com/vahti-ci/vahti/internal/repo"
	"github.com/vahti-ci/vahti/internal/status"
)

// Notifier is the delivery surface the checker needs; delivery failures are
// the implementation's problem, Notify never reports them back.
type Notifier interface {
	Notify(subject, body string)
}

// StatusStore persists the outcome of the last executed test run.
type StatusStore interface {
	Read() status.Status
	Write(status.Status) error
}

// Options wires one check invocation. All collaborators are required except
// Force.
type Options struct {
	Repo        repo.Repository
	Runner      executil.Runner
	Notifier    Notifier
	Store       StatusStore
	TestCommand string

	// Force runs the test command even when no new commit is detected.
	Force bool
}

// Result describes what one invocation did. ExitCode maps it to the process
// exit contract: 0 for a skip or passing tests, 1 otherwise.
type Result struct {
	Skipped     bool
	TestsRan    bool
	TestSuccess bool
	CommitID    string
	Notified    bool
}

func (r Result) ExitCode() int {
	if r.Skipped || r.TestSuccess {
		return 0
	}
	return 1
}

// Run performs the decide/run/report/persist cycle. A non-nil error means an
// environment failure (repository sync, commit metadata, status write); a
// failing test command is a recorded outcome, not an error.
func Run(ctx context.Context, opts Options) (Result, error) {
	ok, output := opts.Repo.Update(ctx)
	if !ok {
		opts.Notifier.Notify(
			fmt.Sprintf("Could not update repository: %s", opts.Repo.Location()),
			output)
		return Result{}, errors.New(errors.CodeRepoUpdate, fmt.Sprintf("update failed for %s", opts.Repo.Location()))
	}

	info := opts.Repo.LastCommitInfo(ctx)
	if info.ID == "" {
		opts.Notifier.Notify(
			fmt.Sprintf("Could not get commit info: %s", opts.Repo.Location()),
			info.RawOutput)
		return Result{}, errors.New(errors.CodeCommitInfo, fmt.Sprintf("commit info unavailable for %s", opts.Repo.Location()))
	}

	prev := opts.Store.Read()

	// Fast path: repeated invocations against an unchanged repository are
	// side-effect-free.
	if info.ID == prev.LastCommitID && !opts.Force {
		return Result{Skipped: true, TestSuccess: prev.TestSuccess, CommitID: info.ID}, nil
	}

	res, err := opts.Runner.Run(ctx, opts.TestCommand)
	testOutput := res.Output
	if err != nil {
		// A command that could not even spawn is recorded as a failed run.
		testOutput = fmt.Sprintf("%s\nfailed to run test command: %v", testOutput, err)
	}
	success := err == nil && res.Success()

	body := fmt.Sprintf("Last commit %s: %s by %s\n%s", info.ID, info.Message, info.Author, testOutput)

	result := Result{
		TestsRan:    true,
		TestSuccess: success,
		CommitID:    info.ID,
	}

	// Notify only on a transition; repeating the same outcome is spam.
	if success != prev.TestSuccess {
		subject := fmt.Sprintf("Tests now fail @ %s", opts.Repo.Location())
		if success {
			subject = fmt.Sprintf("Tests now succeed @ %s", opts.Repo.Location())
		}
		opts.Notifier.Notify(subject, body)
		result.Notified = true
	}

	// The store always reflects the last executed run, even when the
	// outcome did not change.
	next := status.Status{LastCommitID: info.ID, TestSuccess: success}
	if err := opts.Store.Write(next); err != nil {
		opts.Notifier.Notify(
			fmt.Sprintf("Could not write status for %s", opts.Repo.Location()),
			err.Error())
		return result, errors.Wrap(err, errors.CodeStatusWrite, "status write failed")
	}

	return result, nil
}
