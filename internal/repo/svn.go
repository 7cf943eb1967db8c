package repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/vahti-ci/vahti/internal/executil"
)

// SVN monitors a pre-checked-out Subversion working copy by shelling out to
// the svn command-line client.
type SVN struct {
	path string
	run  executil.Runner
}

func NewSVN(path string, run executil.Runner) *SVN {
	if run == nil {
		run = executil.Shell{}
	}
	return &SVN{path: path, run: run}
}

func (r *SVN) Location() string {
	return r.path
}

func (r *SVN) Update(ctx context.Context) (bool, string) {
	res, err := r.run.Run(ctx, fmt.Sprintf("svn up %s", r.path))
	if err != nil {
		return false, err.Error()
	}
	return res.Success(), res.Output
}

func (r *SVN) LastCommitInfo(ctx context.Context) CommitInfo {
	info, output := r.svnInfo(ctx)
	if info == nil {
		return CommitInfo{RawOutput: output}
	}

	rev := info["Last Changed Rev"]
	if rev == "" {
		rev = info["Revision"]
	}
	if rev == "" {
		return CommitInfo{RawOutput: output}
	}

	return CommitInfo{
		ID:        rev,
		Author:    info["Last Changed Author"],
		Message:   r.lastLogMessage(ctx),
		RawOutput: output,
	}
}

// svnInfo parses the key/value output of `svn info` into a map. Returns a nil
// map and the raw output when the command fails or the output is malformed.
func (r *SVN) svnInfo(ctx context.Context) (map[string]string, string) {
	res, err := r.run.Run(ctx, fmt.Sprintf("svn info %s", r.path))
	if err != nil {
		return nil, err.Error()
	}
	if !res.Success() {
		return nil, res.Output
	}

	data := make(map[string]string)
	for _, line := range strings.Split(res.Output, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		key, value, found := strings.Cut(line, ":")
		if !found {
			return nil, res.Output
		}
		data[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	if len(data) == 0 {
		return nil, res.Output
	}
	return data, res.Output
}

// lastLogMessage extracts the newest commit message via `svn log`. The
// message is advisory; a failure here degrades to an empty message rather
// than failing the whole metadata read.
func (r *SVN) lastLogMessage(ctx context.Context) string {
	res, err := r.run.Run(ctx, fmt.Sprintf("svn log -l 1 %s", r.path))
	if err != nil || !res.Success() {
		return ""
	}

	// svn log frames each entry with dashed separator lines; the message
	// body follows the revision header line and a blank line.
	var body []string
	inBody := false
	for _, line := range strings.Split(res.Output, "\n") {
		switch {
		case strings.HasPrefix(line, "----"):
			inBody = false
		case strings.HasPrefix(line, "r") && strings.Contains(line, "|"):
			inBody = true
		case inBody && strings.TrimSpace(line) != "":
			body = append(body, strings.TrimSpace(line))
		}
	}
	return strings.Join(body, " ")
}
