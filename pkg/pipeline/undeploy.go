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

package pipeline

import (
	"context"
	"os"
	"path/filepath"

	"github.com/traceassist/traceassist/pkg/defaults"
	apperrors "github.com/traceassist/traceassist/pkg/errors"
	"github.com/traceassist/traceassist/pkg/manifest"
	"github.com/traceassist/traceassist/pkg/store"
)

// Undeploy tears down the deployment's cluster resources and removes its
// record. Adapter errors leave the record in UndeployFailed so an operator
// can retry; the record is never silently dropped.
func (o *Orchestrator) Undeploy(ctx context.Context, name string) error {
	record, err := o.records.Get(name)
	if err != nil {
		return err
	}

	if !o.acquire(name) {
		return apperrors.NewWithContext(apperrors.ErrCodeConflict,
			"pipeline already running for deployment", map[string]any{"name": name})
	}
	defer o.release(name)

	// Nothing was ever applied; just drop the record.
	if record.Status == store.StatusCreated || record.Status == store.StatusUndeployed ||
		len(record.ManifestPaths) == 0 {
		o.removeState(name)
		return o.records.Delete(name)
	}

	if _, err := o.records.Transition(name, store.StatusUndeploying, ""); err != nil {
		return err
	}

	sources, err := o.appliedSources(record)
	if err != nil {
		o.undeployFailed(name, err)
		return err
	}

	if err := o.timedStep(ctx, "undeploy", defaults.UndeployTimeout, func(ctx context.Context) error {
		return o.deployer.Delete(ctx, sources)
	}); err != nil {
		o.undeployFailed(name, err)
		return err
	}

	if _, err := o.records.Transition(name, store.StatusUndeployed, ""); err != nil {
		return err
	}
	pipelineRunsTotal.WithLabelValues("undeployed").Inc()

	o.removeState(name)
	return o.records.Delete(name)
}

func (o *Orchestrator) undeployFailed(name string, err error) {
	o.logger.Error("undeploy failed", "name", name, "error", err)
	pipelineRunsTotal.WithLabelValues("undeploy_failed").Inc()
	if _, terr := o.records.Transition(name, store.StatusUndeployFailed, causeOf(err)); terr != nil {
		o.logger.Error("recording undeploy failure failed", "name", name, "error", terr)
	}
}

// appliedSources reloads the manifest files the last run applied.
func (o *Orchestrator) appliedSources(record *store.Record) ([]manifest.Source, error) {
	workDir := o.workDir(record.Name)
	sources := make([]manifest.Source, 0, len(record.ManifestPaths))
	for _, path := range record.ManifestPaths {
		data, err := os.ReadFile(filepath.Join(workDir, path))
		if err != nil {
			return nil, apperrors.WrapWithContext(apperrors.ErrCodeUndeployFailed,
				"reading applied manifest", err, map[string]any{"path": path})
		}
		sources = append(sources, manifest.Source{Path: path, Data: data})
	}
	return sources, nil
}

func (o *Orchestrator) removeState(name string) {
	if err := os.RemoveAll(o.workDir(name)); err != nil {
		o.logger.Warn("removing workspace failed", "name", name, "error", err)
	}
}
