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

// Package oci exports instrumented manifest bundles as OCI artifacts, to a
// registry or a local OCI Image Layout directory.
package oci

import (
	"fmt"
	"strings"

	"github.com/distribution/reference"

	apperrors "github.com/traceassist/traceassist/pkg/errors"
)

// URIScheme marks registry targets (e.g. "oci://ghcr.io/org/bundles:v1").
const URIScheme = "oci://"

// Target is a parsed bundle destination: either an OCI registry reference
// or a local directory that receives an OCI Image Layout.
type Target struct {
	// IsRegistry indicates a remote registry target.
	IsRegistry bool
	// Registry is the registry host (e.g. "ghcr.io", "localhost:5000").
	Registry string
	// Repository is the repository path (e.g. "org/bundles").
	Repository string
	// Tag is the artifact tag. Empty means the caller applies a default.
	Tag string
	// LocalPath is the layout directory for non-registry targets.
	LocalPath string
}

// ParseTarget parses a bundle destination. Strings with the oci:// scheme
// are registry references; anything else is a local layout directory.
func ParseTarget(target string) (*Target, error) {
	if !strings.HasPrefix(target, URIScheme) {
		if strings.TrimSpace(target) == "" {
			return nil, apperrors.New(apperrors.ErrCodeInvalidRequest, "bundle target is required")
		}
		return &Target{LocalPath: target}, nil
	}

	ref, err := reference.ParseNormalizedNamed(strings.TrimPrefix(target, URIScheme))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidRequest, "invalid OCI reference", err)
	}

	var tag string
	if tagged, ok := ref.(reference.Tagged); ok {
		tag = tagged.Tag()
	}

	return &Target{
		IsRegistry: true,
		Registry:   reference.Domain(ref),
		Repository: reference.Path(ref),
		Tag:        tag,
	}, nil
}

// String renders the target back to its input form.
func (t *Target) String() string {
	if !t.IsRegistry {
		return t.LocalPath
	}
	if t.Tag == "" {
		return fmt.Sprintf("%s%s/%s", URIScheme, t.Registry, t.Repository)
	}
	return fmt.Sprintf("%s%s/%s:%s", URIScheme, t.Registry, t.Repository, t.Tag)
}

// ImageReference returns the docker-style reference without the scheme, or
// an empty string for local targets.
func (t *Target) ImageReference() string {
	if !t.IsRegistry {
		return ""
	}
	if t.Tag == "" {
		return fmt.Sprintf("%s/%s", t.Registry, t.Repository)
	}
	return fmt.Sprintf("%s/%s:%s", t.Registry, t.Repository, t.Tag)
}
