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

package store

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/traceassist/traceassist/pkg/errors"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	return s
}

func TestCreateAndGet(t *testing.T) {
	s := newTestStore(t)

	record := NewRecord("demo-app", "https://github.com/org/demo.git")
	require.NoError(t, s.Create(record))

	got, err := s.Get("demo-app")
	require.NoError(t, err)
	assert.Equal(t, record.ID, got.ID)
	assert.Equal(t, StatusCreated, got.Status)
	assert.Equal(t, "https://github.com/org/demo.git", got.RepoURL)
}

func TestCreateDuplicateIsConflict(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Create(NewRecord("demo-app", "https://example.com/a.git")))
	err := s.Create(NewRecord("demo-app", "https://example.com/b.git"))
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeConflict, apperrors.CodeOf(err))
}

func TestGetMissingIsNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Get("nope")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeNotFound, apperrors.CodeOf(err))
}

func TestListOrdersNewestFirst(t *testing.T) {
	s := newTestStore(t)

	older := NewRecord("app-a", "https://example.com/a.git")
	older.CreatedAt = time.Now().UTC().Add(-time.Hour)
	require.NoError(t, s.Create(older))
	require.NoError(t, s.Create(NewRecord("app-b", "https://example.com/b.git")))

	records, err := s.List()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "app-b", records[0].Name)
	assert.Equal(t, "app-a", records[1].Name)
}

func TestTransitionFollowsStateMachine(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Create(NewRecord("demo-app", "https://example.com/a.git")))

	for _, next := range []Status{
		StatusCloning, StatusBuilding, StatusAnalyzing,
		StatusPushing, StatusDeploying, StatusDeployed,
	} {
		record, err := s.Transition("demo-app", next, "")
		require.NoError(t, err)
		assert.Equal(t, next, record.Status)
	}
}

func TestTransitionRejectsSkippingSteps(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Create(NewRecord("demo-app", "https://example.com/a.git")))

	_, err := s.Transition("demo-app", StatusDeployed, "")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeConflict, apperrors.CodeOf(err))

	// A rejected transition leaves the record untouched.
	got, err := s.Get("demo-app")
	require.NoError(t, err)
	assert.Equal(t, StatusCreated, got.Status)
}

func TestTransitionToFailedFromAnyNonTerminal(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Create(NewRecord("demo-app", "https://example.com/a.git")))
	_, err := s.Transition("demo-app", StatusCloning, "")
	require.NoError(t, err)

	record, err := s.Transition("demo-app", StatusFailed, "clone timed out")
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, record.Status)
	assert.Equal(t, "clone timed out", record.Cause)

	// Terminal states other than via redeploy/undeploy do not fail again.
	_, err = s.Transition("demo-app", StatusFailed, "again")
	require.Error(t, err)
}

func TestRedeployFromDeployed(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Create(NewRecord("demo-app", "https://example.com/a.git")))
	for _, next := range []Status{
		StatusCloning, StatusBuilding, StatusAnalyzing, StatusDeploying, StatusDeployed,
	} {
		_, err := s.Transition("demo-app", next, "")
		require.NoError(t, err)
	}

	record, err := s.Transition("demo-app", StatusCloning, "")
	require.NoError(t, err)
	assert.Equal(t, StatusCloning, record.Status)
}

func TestUndeployBranch(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Create(NewRecord("demo-app", "https://example.com/a.git")))
	for _, next := range []Status{
		StatusCloning, StatusBuilding, StatusAnalyzing, StatusNoChangesNeeded,
		StatusDeploying, StatusDeployed, StatusUndeploying, StatusUndeployFailed,
	} {
		_, err := s.Transition("demo-app", next, "")
		require.NoError(t, err)
	}

	// UndeployFailed records stay around for a retry.
	record, err := s.Transition("demo-app", StatusUndeploying, "")
	require.NoError(t, err)
	_, err = s.Transition("demo-app", StatusUndeployed, "")
	require.NoError(t, err)
	assert.Equal(t, StatusUndeploying, record.Status)
}

func TestUpdateIsAtomicUnderConcurrency(t *testing.T) {
	s := newTestStore(t)
	record := NewRecord("demo-app", "https://example.com/a.git")
	require.NoError(t, s.Create(record))

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Update("demo-app", func(r *Record) error {
				r.ManifestPaths = append(r.ManifestPaths, "k8s/app.yaml")
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := s.Get("demo-app")
	require.NoError(t, err)
	assert.Len(t, got.ManifestPaths, 20)
}

func TestDelete(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Create(NewRecord("demo-app", "https://example.com/a.git")))
	require.NoError(t, s.Delete("demo-app"))

	err := s.Delete("demo-app")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeNotFound, apperrors.CodeOf(err))
}

func TestStoreSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, s.Create(NewRecord("demo-app", "https://example.com/a.git")))

	reopened, err := NewFileStore(dir)
	require.NoError(t, err)
	got, err := reopened.Get("demo-app")
	require.NoError(t, err)
	assert.Equal(t, "demo-app", got.Name)
}
