// Copyright (c) 2025, TraceAssist Authors.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/storage/memory"

	apperrors "github.com/traceassist/traceassist/pkg/errors"
)

const (
	// tokenUsername is the username paired with a personal access token for
	// HTTP basic auth. Git hosts ignore the username when a token is supplied.
	tokenUsername = "traceassist"

	// commitAuthorName and commitAuthorEmail identify manifest write-back commits.
	commitAuthorName  = "TraceAssist"
	commitAuthorEmail = "bot@traceassist.dev"
)

// Client performs git operations against source repositories.
type Client struct{}

// NewClient returns a git repository access client.
func NewClient() *Client {
	return &Client{}
}

// auth builds the transport auth method for a token, or nil for anonymous access.
func auth(credential string) transport.AuthMethod {
	if credential == "" {
		return nil
	}
	return &githttp.BasicAuth{Username: tokenUsername, Password: credential}
}

// isAuthError reports whether err indicates missing or rejected credentials.
func isAuthError(err error) bool {
	return errors.Is(err, transport.ErrAuthenticationRequired) ||
		errors.Is(err, transport.ErrAuthorizationFailed)
}

// Clone checks out the default branch of url into dir. An empty credential
// clones anonymously. Clone depth covers full history so a later push from
// the same checkout has a valid parent chain.
func (c *Client) Clone(ctx context.Context, url, dir, credential string) error {
	_, err := git.PlainCloneContext(ctx, dir, false, &git.CloneOptions{
		URL:          url,
		Auth:         auth(credential),
		SingleBranch: true,
	})
	if err != nil {
		code := apperrors.ErrCodeCloneFailed
		if isAuthError(err) {
			code = apperrors.ErrCodeUnauthorized
		}
		return apperrors.WrapWithContext(code, "cloning repository", err,
			map[string]any{"url": url})
	}
	return nil
}

// IsPublic reports whether url is readable without credentials. It lists the
// remote's references anonymously; an auth rejection means private, any other
// failure is returned as an error since reachability is then unknown.
func (c *Client) IsPublic(ctx context.Context, url string) (bool, error) {
	remote := git.NewRemote(memory.NewStorage(), &config.RemoteConfig{
		Name: "origin",
		URLs: []string{url},
	})

	_, err := remote.ListContext(ctx, &git.ListOptions{})
	if err == nil {
		return true, nil
	}
	if isAuthError(err) {
		return false, nil
	}
	return false, apperrors.WrapWithContext(apperrors.ErrCodeCloneFailed,
		"listing remote references", err, map[string]any{"url": url})
}

// CommitAndPush stages the given paths in the checkout at dir, commits them,
// and pushes to origin on the current branch. Paths are relative to the
// repository root. A no-op when nothing is staged.
func (c *Client) CommitAndPush(ctx context.Context, dir, credential, message string, paths []string) error {
	repo, err := git.PlainOpen(dir)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrCodePushFailed, "opening checkout", err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return apperrors.Wrap(apperrors.ErrCodePushFailed, "resolving worktree", err)
	}

	for _, path := range paths {
		if _, err := wt.Add(path); err != nil {
			return apperrors.Wrap(apperrors.ErrCodePushFailed,
				fmt.Sprintf("staging %s", path), err)
		}
	}

	status, err := wt.Status()
	if err != nil {
		return apperrors.Wrap(apperrors.ErrCodePushFailed, "reading worktree status", err)
	}
	if status.IsClean() {
		return nil
	}

	_, err = wt.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  commitAuthorName,
			Email: commitAuthorEmail,
			When:  time.Now(),
		},
	})
	if err != nil {
		return apperrors.Wrap(apperrors.ErrCodePushFailed, "committing manifests", err)
	}

	err = repo.PushContext(ctx, &git.PushOptions{
		RemoteName: "origin",
		Auth:       auth(credential),
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return apperrors.Wrap(apperrors.ErrCodePushFailed, "pushing to origin", err)
	}
	return nil
}

// ValidateURL performs a light syntactic check on a repository URL before
// any network access. Local paths are accepted to support file-based remotes.
func ValidateURL(url string) error {
	trimmed := strings.TrimSpace(url)
	if trimmed == "" {
		return apperrors.New(apperrors.ErrCodeInvalidRequest, "repository URL is required")
	}
	if strings.ContainsAny(trimmed, " \t\n") {
		return apperrors.New(apperrors.ErrCodeInvalidRequest, "repository URL contains whitespace")
	}
	return nil
}
