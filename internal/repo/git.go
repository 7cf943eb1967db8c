package repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/vahti-ci/vahti/internal/executil"
)

// Git monitors a cloned git working copy by shelling out to the git
// command-line client. Update only fast-forwards; a working copy that has
// diverged from upstream reports an update failure rather than merging.
type Git struct {
	path string
	run  executil.Runner
}

func NewGit(path string, run executil.Runner) *Git {
	if run == nil {
		run = executil.Shell{}
	}
	return &Git{path: path, run: run}
}

func (r *Git) Location() string {
	return r.path
}

func (r *Git) Update(ctx context.Context) (bool, string) {
	res, err := r.run.Run(ctx, fmt.Sprintf("git -C %s pull --ff-only", r.path))
	if err != nil {
		return false, err.Error()
	}
	return res.Success(), res.Output
}

func (r *Git) LastCommitInfo(ctx context.Context) CommitInfo {
	// %H, %an and %s on separate lines; %s keeps the message to its
	// subject line, which is what notifications show.
	res, err := r.run.Run(ctx, fmt.Sprintf("git -C %s log -1 --pretty=format:%%H%%n%%an%%n%%s", r.path))
	if err != nil {
		return CommitInfo{RawOutput: err.Error()}
	}
	if !res.Success() {
		return CommitInfo{RawOutput: res.Output}
	}

	lines := strings.SplitN(strings.TrimRight(res.Output, "\n"), "\n", 3)
	if len(lines) < 3 || strings.TrimSpace(lines[0]) == "" {
		return CommitInfo{RawOutput: res.Output}
	}

	return CommitInfo{
		ID:        strings.TrimSpace(lines[0]),
		Author:    strings.TrimSpace(lines[1]),
		Message:   strings.TrimSpace(lines[2]),
		RawOutput: res.Output,
	}
}
