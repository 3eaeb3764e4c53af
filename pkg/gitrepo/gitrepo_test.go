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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// initFixtureRepo creates a local repository with one commit containing the
// given files and returns its path. Local paths double as remotes, keeping
// the tests network-free.
func initFixtureRepo(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()

	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)

	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		_, err = wt.Add(name)
		require.NoError(t, err)
	}

	_, err = wt.Commit("initial", &git.CommitOptions{
		Author: &object.Signature{Name: "fixture", Email: "fixture@test", When: time.Now()},
	})
	require.NoError(t, err)
	return dir
}

func TestCloneLocalRepository(t *testing.T) {
	src := initFixtureRepo(t, map[string]string{
		"Dockerfile":      "FROM python:3.12-slim\n",
		"k8s/deploy.yaml": "apiVersion: apps/v1\nkind: Deployment\nmetadata:\n  name: web\n",
	})

	dest := filepath.Join(t.TempDir(), "checkout")
	client := NewClient()
	require.NoError(t, client.Clone(t.Context(), src, dest, ""))

	data, err := os.ReadFile(filepath.Join(dest, "Dockerfile"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "python")
}

func TestCloneMissingRepository(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "checkout")
	err := NewClient().Clone(t.Context(), filepath.Join(t.TempDir(), "nope"), dest, "")
	require.Error(t, err)
}

func TestIsPublicLocalRepository(t *testing.T) {
	src := initFixtureRepo(t, map[string]string{"README.md": "hello\n"})

	public, err := NewClient().IsPublic(t.Context(), src)
	require.NoError(t, err)
	assert.True(t, public)
}

func TestCommitAndPush(t *testing.T) {
	src := initFixtureRepo(t, map[string]string{
		"k8s/deploy.yaml": "apiVersion: apps/v1\nkind: Deployment\nmetadata:\n  name: web\n",
	})

	// Push target must be bare; clone the fixture into one.
	bare := filepath.Join(t.TempDir(), "origin.git")
	_, err := git.PlainClone(bare, true, &git.CloneOptions{URL: src})
	require.NoError(t, err)

	checkout := filepath.Join(t.TempDir(), "checkout")
	client := NewClient()
	require.NoError(t, client.Clone(t.Context(), bare, checkout, ""))

	rewritten := "apiVersion: apps/v1\nkind: Deployment\nmetadata:\n  name: demo-app-web\n"
	require.NoError(t, os.WriteFile(filepath.Join(checkout, "k8s/deploy.yaml"), []byte(rewritten), 0o644))

	err = client.CommitAndPush(t.Context(), checkout, "", "chore: add auto-instrumentation", []string{"k8s/deploy.yaml"})
	require.NoError(t, err)

	// Verify the commit arrived at the remote.
	verify := filepath.Join(t.TempDir(), "verify")
	require.NoError(t, client.Clone(t.Context(), bare, verify, ""))
	data, err := os.ReadFile(filepath.Join(verify, "k8s/deploy.yaml"))
	require.NoError(t, err)
	assert.Equal(t, rewritten, string(data))
}

func TestCommitAndPushCleanWorktreeIsNoop(t *testing.T) {
	src := initFixtureRepo(t, map[string]string{"a.yaml": "x: 1\n"})

	checkout := filepath.Join(t.TempDir(), "checkout")
	client := NewClient()
	require.NoError(t, client.Clone(t.Context(), src, checkout, ""))

	err := client.CommitAndPush(t.Context(), checkout, "", "noop", []string{"a.yaml"})
	require.NoError(t, err)
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"https url", "https://github.com/org/repo.git", false},
		{"local path", "/tmp/fixture", false},
		{"empty", "", true},
		{"whitespace only", "   ", true},
		{"embedded space", "https://github.com/org/re po", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.url)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
