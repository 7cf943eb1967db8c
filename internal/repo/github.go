package repo

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v63/github"
	"golang.org/x/oauth2"
)

// GitHub monitors a remote repository through the GitHub API instead of a
// local working copy. Update degrades to a reachability probe since there is
// nothing local to synchronize; commit metadata comes from the head of the
// configured ref.
type GitHub struct {
	owner  string
	repo   string
	ref    string
	client *github.Client
}

// NewGitHub builds a GitHub backend for "owner/repo". ref defaults to the
// repository's default branch when empty. token is optional; without it the
// backend is limited to public repositories and anonymous rate limits.
func NewGitHub(ownerRepo, ref, token string) (*GitHub, error) {
	owner, name, found := strings.Cut(ownerRepo, "/")
	if !found || owner == "" || name == "" {
		return nil, fmt.Errorf("github repository must be of the form owner/repo, got %q", ownerRepo)
	}

	var hc *http.Client
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		hc = &http.Client{Transport: &oauth2.Transport{Source: ts, Base: http.DefaultTransport}}
	}

	return &GitHub{
		owner:  owner,
		repo:   name,
		ref:    ref,
		client: github.NewClient(hc),
	}, nil
}

// SetBaseURL points the backend at an alternate API endpoint. Used by tests
// and GitHub Enterprise installations.
func (r *GitHub) SetBaseURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	r.client.BaseURL = u
	return nil
}

func (r *GitHub) Location() string {
	return fmt.Sprintf("%s/%s", r.owner, r.repo)
}

func (r *GitHub) Update(ctx context.Context) (bool, string) {
	repository, _, err := r.client.Repositories.Get(ctx, r.owner, r.repo)
	if err != nil {
		return false, fmt.Sprintf("failed to reach repository %s: %v", r.Location(), err)
	}
	if r.ref == "" {
		r.ref = repository.GetDefaultBranch()
	}
	return true, fmt.Sprintf("repository %s reachable, ref %s", r.Location(), r.ref)
}

func (r *GitHub) LastCommitInfo(ctx context.Context) CommitInfo {
	ref := r.ref
	if ref == "" {
		ref = "HEAD"
	}

	commit, _, err := r.client.Repositories.GetCommit(ctx, r.owner, r.repo, ref, nil)
	if err != nil {
		return CommitInfo{RawOutput: fmt.Sprintf("failed to get commit for %s@%s: %v", r.Location(), ref, err)}
	}
	if commit.GetSHA() == "" {
		return CommitInfo{RawOutput: fmt.Sprintf("no commit found for %s@%s", r.Location(), ref)}
	}

	return CommitInfo{
		ID:        commit.GetSHA(),
		Author:    commit.GetCommit().GetAuthor().GetName(),
		Message:   firstLine(commit.GetCommit().GetMessage()),
		RawOutput: fmt.Sprintf("commit %s at %s@%s", commit.GetSHA(), r.Location(), ref),
	}
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return strings.TrimSpace(line)
}
