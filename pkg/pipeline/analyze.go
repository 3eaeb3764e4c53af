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
)

// AnalyzeRequest describes a read-only repository inspection.
type AnalyzeRequest struct {
	RepoURL    string
	Credential string
}

// AnalyzeResult reports what an instrument run would do, without mutating
// anything.
type AnalyzeResult struct {
	// IsPublic is true when the repository cloned without credentials.
	IsPublic bool
	// PushRequired is true when manifests need rewriting, so pushing them
	// back would change the repository.
	PushRequired bool
	// Language is the detected application language.
	Language string
	// Resources lists the Kubernetes resources found in the repository.
	Resources []manifest.Resource
}

// Analyze clones the repository and reports instrumentation state. An
// anonymous remote listing decides publicness up front, so a private
// repository costs one cheap check instead of a failed clone before the
// credentialed attempt.
func (o *Orchestrator) Analyze(ctx context.Context, req AnalyzeRequest) (result *AnalyzeResult, err error) {
	defer func() {
		status := "success"
		if err != nil {
			status = "error"
		}
		analyzeRequestsTotal.WithLabelValues(status).Inc()
	}()

	if err := o.validateRepoURL(req.RepoURL); err != nil {
		return nil, err
	}

	dir, err := os.MkdirTemp("", "traceassist-analyze-*")
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal, "creating analyze workspace", err)
	}
	defer os.RemoveAll(dir)

	isPublic := true
	if err := step(ctx, defaults.CloneTimeout, func(ctx context.Context) error {
		public, err := o.cloner.IsPublic(ctx, req.RepoURL)
		isPublic = public
		return err
	}); err != nil {
		return nil, err
	}

	credential := ""
	if !isPublic {
		if req.Credential == "" {
			return nil, apperrors.NewWithContext(apperrors.ErrCodeUnauthorized,
				"repository is private and no credential was provided",
				map[string]any{"url": req.RepoURL})
		}
		credential = req.Credential
	}

	if err := step(ctx, defaults.CloneTimeout, func(ctx context.Context) error {
		return o.cloner.Clone(ctx, req.RepoURL, dir, credential)
	}); err != nil {
		return nil, err
	}

	sources, err := manifest.LoadDir(dir)
	if err != nil {
		return nil, err
	}
	analysis, err := manifest.Analyze(sources)
	if err != nil {
		return nil, err
	}

	return &AnalyzeResult{
		IsPublic:     isPublic,
		PushRequired: analysis.RequiresChanges,
		Language:     o.detect(dir),
		Resources:    analysis.Resources,
	}, nil
}

func (o *Orchestrator) validateRepoURL(url string) error {
	if url == "" {
		return apperrors.New(apperrors.ErrCodeInvalidRequest, "repository URL is required")
	}
	return nil
}
