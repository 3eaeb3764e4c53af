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

	"github.com/traceassist/traceassist/pkg/defaults"
	apperrors "github.com/traceassist/traceassist/pkg/errors"
	"github.com/traceassist/traceassist/pkg/manifest"
	"github.com/traceassist/traceassist/pkg/oci"
	"github.com/traceassist/traceassist/pkg/store"
)

// InstrumentManifestRequest is a stateless instrumentation request: a raw
// manifest in, an instrumented manifest out. Nothing is cloned, built, or
// deployed.
type InstrumentManifestRequest struct {
	Manifest       []byte
	RepoURL        string
	DeploymentName string
}

// InstrumentManifest injects the instrumentation annotation and service
// account into the given manifest and records the request in the usage log.
func (o *Orchestrator) InstrumentManifest(req InstrumentManifestRequest) ([]byte, bool, error) {
	out, changed, err := manifest.Instrument(req.Manifest)
	if err != nil {
		return nil, false, err
	}

	if o.usage != nil {
		if err := o.usage.Append(store.UsageEntry{
			DeploymentName: req.DeploymentName,
			RepoURL:        req.RepoURL,
			ChangesMade:    changed,
		}); err != nil {
			o.logger.Warn("usage log append failed", "error", err)
		}
	}

	return out, changed, nil
}

// ExportBundle packages the deployment's applied manifests as an OCI
// artifact at the given target (oci:// registry reference or local layout
// directory).
func (o *Orchestrator) ExportBundle(ctx context.Context, name, target string) (*oci.ExportResult, error) {
	record, err := o.records.Get(name)
	if err != nil {
		return nil, err
	}
	if len(record.ManifestPaths) == 0 {
		return nil, apperrors.NewWithContext(apperrors.ErrCodeConflict,
			"deployment has no applied manifests to export", map[string]any{"name": name})
	}

	parsed, err := oci.ParseTarget(target)
	if err != nil {
		return nil, err
	}

	sources, err := o.appliedSources(record)
	if err != nil {
		return nil, err
	}

	return o.exportSources(ctx, name, parsed, sources)
}

// exportSources stages the manifest files and pushes them as an OCI
// artifact. The checkout holds the whole app repo, so only the manifest
// documents are staged.
func (o *Orchestrator) exportSources(ctx context.Context, name string, target *oci.Target, sources []manifest.Source) (*oci.ExportResult, error) {
	stage, err := os.MkdirTemp("", "traceassist-bundle-*")
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal, "creating bundle stage", err)
	}
	defer os.RemoveAll(stage)
	if err := manifest.WriteDir(stage, sources); err != nil {
		return nil, err
	}

	exportCtx, cancel := context.WithTimeout(ctx, defaults.BundleExportTimeout)
	defer cancel()

	result, err := oci.Export(exportCtx, oci.ExportOptions{
		SourceDir:      stage,
		Target:         target,
		DeploymentName: name,
	})
	if err != nil {
		return nil, err
	}

	o.logger.Info("bundle exported", "name", name, "target", result.Reference, "digest", result.Digest)
	return result, nil
}

// exportAfterDeploy pushes the applied manifest set to the configured
// bundle target, tagged with the deployment name. Failures are logged and
// surfaced in the record cause but never fail the run.
func (o *Orchestrator) exportAfterDeploy(ctx context.Context, name string, sources []manifest.Source) error {
	target, err := oci.ParseTarget(o.bundleTarget)
	if err != nil {
		return err
	}
	if target.IsRegistry {
		target.Tag = name
	}
	_, err = o.exportSources(ctx, name, target, sources)
	return err
}
