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

// Package pipeline drives the deployment workflow: clone, build, analyze,
// optionally push, deploy, and track rollout. Status is persisted to the
// record store after every step so a polling client observes transitions in
// order.
package pipeline

import (
	"context"
	"log/slog"
	"regexp"
	"sync"
	"time"

	"github.com/traceassist/traceassist/pkg/cluster"
	apperrors "github.com/traceassist/traceassist/pkg/errors"
	"github.com/traceassist/traceassist/pkg/manifest"
	"github.com/traceassist/traceassist/pkg/store"
)

// nameExpr constrains deployment names to DNS-label form. The name becomes
// a resource-name prefix and an image repository, so 53 characters leaves
// room for the longest generated suffix.
var nameExpr = regexp.MustCompile(`^[a-z0-9]([-a-z0-9]*[a-z0-9])?$`)

const maxNameLength = 53

// ValidateName checks a deployment name against the naming rules.
func ValidateName(name string) error {
	if name == "" {
		return apperrors.New(apperrors.ErrCodeInvalidRequest, "deployment name is required")
	}
	if len(name) > maxNameLength {
		return apperrors.NewWithContext(apperrors.ErrCodeInvalidRequest,
			"deployment name too long", map[string]any{"max": maxNameLength})
	}
	if !nameExpr.MatchString(name) {
		return apperrors.New(apperrors.ErrCodeInvalidRequest,
			"deployment name must be a lowercase DNS label")
	}
	return nil
}

// Cloner provides repository access.
type Cloner interface {
	Clone(ctx context.Context, url, dir, credential string) error
	IsPublic(ctx context.Context, url string) (bool, error)
	CommitAndPush(ctx context.Context, dir, credential, message string, paths []string) error
}

// Builder builds the application container image.
type Builder interface {
	Build(ctx context.Context, name, dir string) (string, error)
}

// Deployer applies manifests to the cluster and tracks rollout.
type Deployer interface {
	EnsureServiceAccount(ctx context.Context) error
	Apply(ctx context.Context, sources []manifest.Source) ([]cluster.Applied, error)
	WaitForRollout(ctx context.Context, name string, timeout time.Duration) error
	Delete(ctx context.Context, sources []manifest.Source) error
}

// LanguageDetector infers the application language of a checkout.
type LanguageDetector func(dir string) string

// Orchestrator owns the pipeline state machine. All cluster, git, and build
// access goes through the injected adapters so runs can be tested with
// fakes.
type Orchestrator struct {
	cloner   Cloner
	builder  Builder
	deployer Deployer
	detect   LanguageDetector

	records *store.FileStore
	sealer  *store.Sealer
	usage   *store.UsageLog

	workRoot     string
	bundleTarget string
	logger       *slog.Logger

	mu       sync.Mutex
	inflight map[string]struct{}
	wg       sync.WaitGroup
}

// Config carries the orchestrator's collaborators.
type Config struct {
	Cloner   Cloner
	Builder  Builder
	Deployer Deployer
	Detect   LanguageDetector
	Records  *store.FileStore
	Sealer   *store.Sealer
	Usage    *store.UsageLog
	// WorkRoot is where per-deployment checkouts live. Checkouts are kept
	// after a run for undeploy and bundle export.
	WorkRoot string
	// BundleTarget, when set, is the OCI registry reference or local layout
	// directory the applied manifest set is exported to after a successful
	// deploy. Export failures are recorded but do not fail the run.
	BundleTarget string
	Logger       *slog.Logger
}

// New creates an Orchestrator.
func New(cfg Config) *Orchestrator {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	detect := cfg.Detect
	if detect == nil {
		detect = func(string) string { return "unknown" }
	}
	return &Orchestrator{
		cloner:       cfg.Cloner,
		builder:      cfg.Builder,
		deployer:     cfg.Deployer,
		detect:       detect,
		records:      cfg.Records,
		sealer:       cfg.Sealer,
		usage:        cfg.Usage,
		workRoot:     cfg.WorkRoot,
		bundleTarget: cfg.BundleTarget,
		logger:       logger,
		inflight:     make(map[string]struct{}),
	}
}

// Drain blocks until all background pipeline runs finish. Called on
// shutdown so no run is cut off mid-transition.
func (o *Orchestrator) Drain() {
	o.wg.Wait()
}

// RecoverInterrupted moves records stranded in an in-flight status by a
// previous process to Failed, so they can be redeployed or undeployed again.
// Called once at startup, before any new pipeline work is accepted.
func (o *Orchestrator) RecoverInterrupted() (int, error) {
	records, err := o.records.List()
	if err != nil {
		return 0, err
	}

	recovered := 0
	for _, r := range records {
		if !r.Status.InFlight() {
			continue
		}
		if _, err := o.records.Transition(r.Name, store.StatusFailed,
			"interrupted by process restart"); err != nil {
			return recovered, err
		}
		o.logger.Warn("recovered interrupted deployment", "name", r.Name, "from", r.Status)
		recovered++
	}
	return recovered, nil
}

// acquire marks a deployment name as having a pipeline run in flight.
func (o *Orchestrator) acquire(name string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, busy := o.inflight[name]; busy {
		return false
	}
	o.inflight[name] = struct{}{}
	return true
}

func (o *Orchestrator) release(name string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.inflight, name)
}

// step runs fn under its own timeout. Exceeding the timeout surfaces as a
// TIMEOUT error rather than a hang.
func step(ctx context.Context, timeout time.Duration, fn func(ctx context.Context) error) error {
	stepCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := fn(stepCtx)
	if err != nil && stepCtx.Err() == context.DeadlineExceeded {
		return apperrors.Wrap(apperrors.ErrCodeTimeout, "step timed out", err)
	}
	return err
}

// causeOf renders an error as the persisted status cause.
func causeOf(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
