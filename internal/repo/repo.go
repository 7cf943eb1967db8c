// Package repo abstracts the version-control backends a check can monitor.
package repo

import (
	"context"
	"fmt"

	"github.com/vahti-ci/vahti/internal/executil"
)

// CommitInfo describes the newest revision known to a working copy or remote
// ref. An empty ID is the failure signal: it means the commit metadata could
// not be extracted, and RawOutput carries the diagnostic text.
type CommitInfo struct {
	ID        string
	Author    string
	Message   string
	RawOutput string
}

// Repository is the capability set the checker needs from a VCS backend.
// Backends must not leak backend-specific data shapes through this interface.
type Repository interface {
	// Location identifies the monitored repository for notifications.
	Location() string

	// Update synchronizes the working copy with upstream. ok=false means
	// the sync failed and output carries the diagnostic text.
	Update(ctx context.Context) (ok bool, output string)

	// LastCommitInfo extracts the metadata of the current revision. On
	// failure the returned CommitInfo has an empty ID; this is the sole
	// failure signal, no error is returned.
	LastCommitInfo(ctx context.Context) CommitInfo
}

// Kind names a supported backend.
type Kind string

const (
	KindSVN    Kind = "svn"
	KindGit    Kind = "git"
	KindGitHub Kind = "github"
)

// New constructs the backend named by kind for the given repository location.
func New(kind Kind, location string, opts Options) (Repository, error) {
	switch kind {
	case KindSVN:
		return NewSVN(location, opts.Runner), nil
	case KindGit:
		return NewGit(location, opts.Runner), nil
	case KindGitHub:
		return NewGitHub(location, opts.Ref, opts.Token)
	default:
		return nil, fmt.Errorf("unknown repository kind %q", kind)
	}
}

// Options carries backend-specific construction inputs. Runner is used by the
// shell-based backends; Ref and Token by the GitHub backend.
type Options struct {
	Runner executil.Runner
	Ref    string
	Token  string
}
