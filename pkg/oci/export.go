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

package oci

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"path/filepath"

	ociv1 "github.com/opencontainers/image-spec/specs-go/v1"
	oras "oras.land/oras-go/v2"
	"oras.land/oras-go/v2/content/file"
	ocistore "oras.land/oras-go/v2/content/oci"
	"oras.land/oras-go/v2/registry/remote"
	"oras.land/oras-go/v2/registry/remote/auth"
	"oras.land/oras-go/v2/registry/remote/credentials"
	"oras.land/oras-go/v2/registry/remote/retry"

	apperrors "github.com/traceassist/traceassist/pkg/errors"
)

// ArtifactType is the media type for instrumented manifest bundles.
const ArtifactType = "application/vnd.traceassist.manifests"

// ExportOptions configures a bundle export.
type ExportOptions struct {
	// SourceDir is the directory holding the rewritten manifests.
	SourceDir string
	// Target is the parsed destination.
	Target *Target
	// DeploymentName annotates the artifact with its originating deployment.
	DeploymentName string
	// PlainHTTP uses HTTP for the registry connection.
	PlainHTTP bool
	// InsecureTLS skips TLS certificate verification.
	InsecureTLS bool
}

// ExportResult describes a completed export.
type ExportResult struct {
	// Digest is the SHA256 digest of the artifact manifest.
	Digest string
	// Reference is the destination the bundle landed at.
	Reference string
}

// Export packages the manifests under SourceDir as a single-layer OCI
// artifact and copies it to the target registry or local layout directory.
func Export(ctx context.Context, opts ExportOptions) (*ExportResult, error) {
	if opts.Target == nil {
		return nil, apperrors.New(apperrors.ErrCodeInvalidRequest, "bundle target is required")
	}

	tag := opts.Target.Tag
	if tag == "" {
		tag = "latest"
	}

	absSourceDir, err := filepath.Abs(opts.SourceDir)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal, "resolving bundle source", err)
	}

	fs, err := file.New(absSourceDir)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal, "creating file store", err)
	}
	defer func() { _ = fs.Close() }()
	fs.TarReproducible = true

	layerDesc, err := fs.Add(ctx, ".", ociv1.MediaTypeImageLayerGzip, absSourceDir)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal, "adding manifests to store", err)
	}

	manifestDesc, err := oras.PackManifest(ctx, fs, oras.PackManifestVersion1_1, ArtifactType,
		oras.PackManifestOptions{
			Layers: []ociv1.Descriptor{layerDesc},
			ManifestAnnotations: map[string]string{
				"org.opencontainers.image.title": fmt.Sprintf("%s manifests", opts.DeploymentName),
			},
		})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal, "packing artifact manifest", err)
	}

	if err := fs.Tag(ctx, manifestDesc, tag); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal, "tagging artifact", err)
	}

	dst, err := newDestination(opts)
	if err != nil {
		return nil, err
	}

	desc, err := oras.Copy(ctx, fs, tag, dst, tag, oras.DefaultCopyOptions)
	if err != nil {
		return nil, apperrors.WrapWithContext(apperrors.ErrCodeInternal,
			"copying artifact to target", err, map[string]any{"target": opts.Target.String()})
	}

	return &ExportResult{
		Digest:    desc.Digest.String(),
		Reference: opts.Target.String(),
	}, nil
}

// newDestination builds the copy target: a remote repository with docker
// credential auth, or a local OCI Image Layout store.
func newDestination(opts ExportOptions) (oras.Target, error) {
	if !opts.Target.IsRegistry {
		store, err := ocistore.New(opts.Target.LocalPath)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrCodeInternal, "creating layout store", err)
		}
		return store, nil
	}

	repo, err := remote.NewRepository(fmt.Sprintf("%s/%s", opts.Target.Registry, opts.Target.Repository))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidRequest, "initializing remote repository", err)
	}
	repo.PlainHTTP = opts.PlainHTTP
	repo.Client = newAuthClient(opts.InsecureTLS)
	return repo, nil
}

// newAuthClient builds an auth client backed by the local docker credential
// store when one is configured.
func newAuthClient(insecureTLS bool) *auth.Client {
	client := &auth.Client{
		Client: retry.DefaultClient,
		Cache:  auth.NewCache(),
	}

	if insecureTLS {
		client.Client = &http.Client{
			Transport: retry.NewTransport(&http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, //nolint:gosec // operator opt-in
			}),
		}
	}

	if store, err := credentials.NewStoreFromDocker(credentials.StoreOptions{}); err == nil {
		client.Credential = credentials.Credential(store)
	}

	return client
}
