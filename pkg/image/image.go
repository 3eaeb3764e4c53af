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

// Package image builds application container images from a checked-out
// repository using the local docker daemon.
package image

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/distribution/reference"

	apperrors "github.com/traceassist/traceassist/pkg/errors"
)

// Tag is the fixed tag applied to built images. Deployments reference the
// image with pullPolicy Never, so the tag only needs to be stable and local.
const Tag = "latest"

// Builder builds container images by shelling out to the docker CLI.
type Builder struct {
	logger *slog.Logger
}

// NewBuilder creates a Builder.
func NewBuilder(logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{logger: logger}
}

// Ref returns the image reference for a deployment name, validating it
// against the docker reference grammar.
func Ref(name string) (string, error) {
	ref := fmt.Sprintf("%s:%s", name, Tag)
	if _, err := reference.ParseNormalizedNamed(ref); err != nil {
		return "", apperrors.WrapWithContext(apperrors.ErrCodeInvalidRequest,
			"invalid image reference", err, map[string]any{"ref": ref})
	}
	return ref, nil
}

// Build builds the image <name>:latest from the checkout at dir. The
// checkout must contain a Dockerfile at its root.
func (b *Builder) Build(ctx context.Context, name, dir string) (string, error) {
	ref, err := Ref(name)
	if err != nil {
		return "", err
	}

	if _, err := os.Stat(filepath.Join(dir, "Dockerfile")); err != nil {
		return "", apperrors.WrapWithContext(apperrors.ErrCodeBuildFailed,
			"repository has no Dockerfile", err, map[string]any{"dir": dir})
	}

	dockerPath, err := exec.LookPath("docker")
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrCodeBuildFailed, "docker not found in PATH", err)
	}

	start := time.Now()
	b.logger.Info("building image", "ref", ref, "dir", dir)

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, dockerPath, "build", "--tag", ref, dir)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", apperrors.WrapWithContext(apperrors.ErrCodeBuildFailed,
			"docker build failed", err, map[string]any{
				"ref":    ref,
				"stderr": tail(stderr.String(), 2048),
			})
	}

	b.logger.Info("image built", "ref", ref, "duration", time.Since(start).String())
	return ref, nil
}

// tail returns at most the last n bytes of s. Build logs can run to
// megabytes; only the end is useful in an error.
func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
