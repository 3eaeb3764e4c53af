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
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/traceassist/traceassist/pkg/cluster"
	"github.com/traceassist/traceassist/pkg/defaults"
	apperrors "github.com/traceassist/traceassist/pkg/errors"
	"github.com/traceassist/traceassist/pkg/manifest"
	"github.com/traceassist/traceassist/pkg/store"
)

// DeployRequest creates a new named deployment.
type DeployRequest struct {
	Name       string
	RepoURL    string
	Credential string
	// PushEnabled records user consent to push rewritten manifests back to
	// the source repository.
	PushEnabled bool
}

// Create accepts a new deployment, persists its record, and starts the
// pipeline in the background. The caller polls the record for progress.
func (o *Orchestrator) Create(ctx context.Context, req DeployRequest) (*store.Record, error) {
	if err := ValidateName(req.Name); err != nil {
		return nil, err
	}
	if err := o.validateRepoURL(req.RepoURL); err != nil {
		return nil, err
	}

	sealed, err := o.sealer.Seal(req.Credential)
	if err != nil {
		return nil, err
	}

	record := store.NewRecord(req.Name, req.RepoURL)
	record.EncryptedCredential = sealed
	record.PushEnabled = req.PushEnabled

	if !o.acquire(req.Name) {
		return nil, apperrors.NewWithContext(apperrors.ErrCodeConflict,
			"pipeline already running for deployment", map[string]any{"name": req.Name})
	}
	if err := o.records.Create(record); err != nil {
		o.release(req.Name)
		return nil, err
	}

	o.start(ctx, req.Name)
	return record.Clone(), nil
}

// Instrument re-runs the full pipeline for an existing deployment: re-pull,
// rebuild, re-analyze, re-deploy. A run already in progress is rejected.
func (o *Orchestrator) Instrument(ctx context.Context, name string) (*store.Record, error) {
	record, err := o.records.Get(name)
	if err != nil {
		return nil, err
	}

	if !o.acquire(name) {
		return nil, apperrors.NewWithContext(apperrors.ErrCodeConflict,
			"pipeline already running for deployment", map[string]any{"name": name})
	}
	if !record.Status.CanTransition(store.StatusCloning) {
		o.release(name)
		return nil, apperrors.NewWithContext(apperrors.ErrCodeConflict,
			fmt.Sprintf("deployment in status %s cannot be redeployed", record.Status),
			map[string]any{"name": name})
	}

	o.start(ctx, name)
	return record.Clone(), nil
}

// start launches the pipeline goroutine for an acquired name. The run is
// detached from the request's cancellation but keeps its values.
func (o *Orchestrator) start(ctx context.Context, name string) {
	runCtx := context.WithoutCancel(ctx)
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		defer o.release(name)
		o.run(runCtx, name)
	}()
}

// run executes one full pipeline pass for the named deployment. Adapter
// errors are classified, written to the record, and halt the run; they
// never escape.
func (o *Orchestrator) run(ctx context.Context, name string) {
	record, err := o.records.Get(name)
	if err != nil {
		o.logger.Error("pipeline run lost its record", "name", name, "error", err)
		return
	}

	credential, err := o.sealer.Open(record.EncryptedCredential)
	if err != nil {
		o.fail(name, err)
		return
	}

	workDir := o.workDir(name)
	if err := os.RemoveAll(workDir); err != nil {
		o.fail(name, apperrors.Wrap(apperrors.ErrCodeInternal, "resetting workspace", err))
		return
	}
	if err := os.MkdirAll(filepath.Dir(workDir), 0o700); err != nil {
		o.fail(name, apperrors.Wrap(apperrors.ErrCodeInternal, "creating workspace", err))
		return
	}

	// Clone.
	if _, err := o.records.Transition(name, store.StatusCloning, ""); err != nil {
		o.fail(name, err)
		return
	}
	if err := o.timedStep(ctx, "clone", defaults.CloneTimeout, func(ctx context.Context) error {
		return o.cloner.Clone(ctx, record.RepoURL, workDir, credential)
	}); err != nil {
		o.fail(name, err)
		return
	}

	language := o.detect(workDir)
	if _, err := o.records.Update(name, func(r *store.Record) error {
		r.Language = language
		return nil
	}); err != nil {
		o.fail(name, err)
		return
	}

	// Build.
	if _, err := o.records.Transition(name, store.StatusBuilding, ""); err != nil {
		o.fail(name, err)
		return
	}
	var imageRef string
	if err := o.timedStep(ctx, "build", defaults.BuildTimeout, func(ctx context.Context) error {
		ref, err := o.builder.Build(ctx, name, workDir)
		imageRef = ref
		return err
	}); err != nil {
		o.fail(name, err)
		return
	}

	// Analyze and rewrite.
	if _, err := o.records.Transition(name, store.StatusAnalyzing, ""); err != nil {
		o.fail(name, err)
		return
	}

	start := time.Now()
	sources, err := manifest.LoadDir(workDir)
	if err != nil {
		o.fail(name, err)
		return
	}
	analysis, err := manifest.Analyze(sources)
	if err != nil {
		o.fail(name, err)
		return
	}

	pushCause := ""
	if analysis.RequiresChanges {
		sources, err = manifest.Rewrite(sources, name, imageRef)
		if err != nil {
			o.fail(name, err)
			return
		}
		if err := manifest.WriteDir(workDir, sources); err != nil {
			o.fail(name, err)
			return
		}
		pipelineStepDuration.WithLabelValues("analyze").Observe(time.Since(start).Seconds())

		// Push rewritten manifests back when the user consented. Failure
		// here is recorded but does not stop the deploy.
		if record.PushEnabled {
			if _, err := o.records.Transition(name, store.StatusPushing, ""); err != nil {
				o.fail(name, err)
				return
			}
			if err := o.timedStep(ctx, "push", defaults.PushTimeout, func(ctx context.Context) error {
				return o.cloner.CommitAndPush(ctx, workDir, credential,
					"chore: add auto-instrumentation", sourcePaths(sources))
			}); err != nil {
				pushCause = fmt.Sprintf("push failed (non-fatal): %s", causeOf(err))
				o.logger.Warn("manifest push failed, continuing", "name", name, "error", err)
			}
		}
	} else {
		pipelineStepDuration.WithLabelValues("analyze").Observe(time.Since(start).Seconds())
		if _, err := o.records.Transition(name, store.StatusNoChangesNeeded, ""); err != nil {
			o.fail(name, err)
			return
		}
	}

	manifestPaths := sourcePaths(sources)
	if _, err := o.records.Update(name, func(r *store.Record) error {
		r.ManifestPaths = manifestPaths
		r.ImageRef = imageRef
		return nil
	}); err != nil {
		o.fail(name, err)
		return
	}

	// Deploy.
	if _, err := o.records.Transition(name, store.StatusDeploying, pushCause); err != nil {
		o.fail(name, err)
		return
	}
	var applied []cluster.Applied
	if err := o.timedStep(ctx, "deploy", defaults.ApplyTimeout, func(ctx context.Context) error {
		if err := o.deployer.EnsureServiceAccount(ctx); err != nil {
			return err
		}
		result, err := o.deployer.Apply(ctx, sources)
		applied = result
		return err
	}); err != nil {
		o.fail(name, err)
		return
	}

	// Rollout.
	rolloutStart := time.Now()
	for _, res := range applied {
		if res.Kind != manifest.KindDeployment {
			continue
		}
		if err := o.deployer.WaitForRollout(ctx, res.Name, defaults.RolloutTimeout); err != nil {
			o.fail(name, err)
			return
		}
	}
	pipelineStepDuration.WithLabelValues("rollout").Observe(time.Since(rolloutStart).Seconds())

	if _, err := o.records.Transition(name, store.StatusDeployed, pushCause); err != nil {
		o.fail(name, err)
		return
	}
	pipelineRunsTotal.WithLabelValues("deployed").Inc()

	if o.usage != nil {
		if err := o.usage.Append(store.UsageEntry{
			DeploymentName: name,
			RepoURL:        record.RepoURL,
			ChangesMade:    analysis.RequiresChanges,
		}); err != nil {
			o.logger.Warn("usage log append failed", "name", name, "error", err)
		}
	}

	if o.bundleTarget != "" {
		if err := o.timedStep(ctx, "bundle", defaults.BundleExportTimeout, func(ctx context.Context) error {
			return o.exportAfterDeploy(ctx, name, sources)
		}); err != nil {
			o.logger.Warn("bundle export failed, continuing", "name", name, "error", err)
			if _, uerr := o.records.Update(name, func(r *store.Record) error {
				r.Cause = fmt.Sprintf("bundle export failed (non-fatal): %s", causeOf(err))
				return nil
			}); uerr != nil {
				o.logger.Error("recording bundle export failure failed", "name", name, "error", uerr)
			}
		}
	}

	o.logger.Info("pipeline run complete", "name", name, "image", imageRef, "language", language)
}

// fail moves the record to Failed with the classified cause. The record is
// kept for operator inspection.
func (o *Orchestrator) fail(name string, err error) {
	o.logger.Error("pipeline run failed", "name", name, "error", err)
	pipelineRunsTotal.WithLabelValues("failed").Inc()
	if _, terr := o.records.Transition(name, store.StatusFailed, causeOf(err)); terr != nil {
		o.logger.Error("recording failure status failed", "name", name, "error", terr)
	}
}

// timedStep wraps step with a duration metric.
func (o *Orchestrator) timedStep(ctx context.Context, label string, timeout time.Duration, fn func(ctx context.Context) error) error {
	start := time.Now()
	err := step(ctx, timeout, fn)
	pipelineStepDuration.WithLabelValues(label).Observe(time.Since(start).Seconds())
	return err
}

func (o *Orchestrator) workDir(name string) string {
	return filepath.Join(o.workRoot, name)
}

func sourcePaths(sources []manifest.Source) []string {
	paths := make([]string, 0, len(sources))
	for _, src := range sources {
		paths = append(paths, src.Path)
	}
	return paths
}
