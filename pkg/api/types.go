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

package api

import (
	"time"

	"github.com/traceassist/traceassist/pkg/manifest"
	"github.com/traceassist/traceassist/pkg/store"
)

// AnalyzeRequest asks for a read-only inspection of a repository.
type AnalyzeRequest struct {
	RepoURL  string `json:"repo_url"`
	PATToken string `json:"pat_token,omitempty"`
}

// AnalyzeResponse reports what an instrument run would do.
type AnalyzeResponse struct {
	IsPublic     bool                `json:"is_public"`
	PushRequired bool                `json:"push_required"`
	Language     string              `json:"language"`
	Resources    []manifest.Resource `json:"resources"`
}

// CreateDeploymentRequest starts a new deployment pipeline.
type CreateDeploymentRequest struct {
	DeploymentName string `json:"deployment_name"`
	RepoURL        string `json:"repo_url"`
	PATToken       string `json:"pat_token,omitempty"`
	PushToRepo     bool   `json:"push_to_repo"`
}

// DeploymentResponse is the wire form of a deployment record. The stored
// credential is surfaced only as a presence flag.
type DeploymentResponse struct {
	ID              string    `json:"id"`
	DeploymentName  string    `json:"deployment_name"`
	RepoURL         string    `json:"repo_url"`
	Status          string    `json:"status"`
	Cause           string    `json:"cause,omitempty"`
	Language        string    `json:"language,omitempty"`
	PushEnabled     bool      `json:"push_enabled"`
	PATTokenPresent bool      `json:"encrypted_pat_token_present"`
	ImageRef        string    `json:"image_ref,omitempty"`
	ManifestPaths   []string  `json:"manifest_paths,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	LastUpdated     time.Time `json:"last_updated"`
}

// ExportBundleRequest packages a deployment's manifests as an OCI artifact.
type ExportBundleRequest struct {
	Target string `json:"target"`
}

// ExportBundleResponse reports where the bundle landed.
type ExportBundleResponse struct {
	Reference string `json:"reference"`
	Digest    string `json:"digest"`
}

// InstrumentManifestRequest is the stateless manifest rewrite request.
type InstrumentManifestRequest struct {
	Manifest       string `json:"manifest"`
	RepoURL        string `json:"repo_url,omitempty"`
	DeploymentName string `json:"deployment_name,omitempty"`
}

// InstrumentManifestResponse carries the rewritten manifest.
type InstrumentManifestResponse struct {
	Manifest    string `json:"manifest"`
	ChangesMade bool   `json:"changes_made"`
}

// NewDeploymentResponse converts a stored record into its wire form. The
// sealed credential is reduced to a presence flag.
func NewDeploymentResponse(record *store.Record) DeploymentResponse {
	return DeploymentResponse{
		ID:              record.ID,
		DeploymentName:  record.Name,
		RepoURL:         record.RepoURL,
		Status:          string(record.Status),
		Cause:           record.Cause,
		Language:        record.Language,
		PushEnabled:     record.PushEnabled,
		PATTokenPresent: record.HasCredential(),
		ImageRef:        record.ImageRef,
		ManifestPaths:   record.ManifestPaths,
		CreatedAt:       record.CreatedAt,
		LastUpdated:     record.UpdatedAt,
	}
}
