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

// Package store persists deployment records. One record exists per
// deployment name; the store is the single source of truth for pipeline
// status and serializes writes per name.
package store

import (
	"time"

	"github.com/google/uuid"
)

// Record is the durable state of one named deployment.
type Record struct {
	ID       string `json:"id"`
	Name     string `json:"deployment_name"`
	RepoURL  string `json:"repo_url"`
	Language string `json:"language,omitempty"`

	// EncryptedCredential holds the sealed repository credential. The raw
	// value never touches disk or logs.
	EncryptedCredential string `json:"encrypted_credential,omitempty"`

	// PushEnabled records whether the user consented to pushing rewritten
	// manifests back to the source repository.
	PushEnabled bool `json:"push_enabled"`

	Status Status `json:"status"`

	// Cause carries the classified failure (or non-fatal warning) from the
	// last pipeline run, empty while healthy.
	Cause string `json:"cause,omitempty"`

	// ManifestPaths lists the repository-relative YAML files the pipeline
	// applied, used for undeploy.
	ManifestPaths []string `json:"manifest_paths,omitempty"`

	ImageRef string `json:"image_ref,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"last_updated"`
}

// NewRecord creates a record in the Created state.
func NewRecord(name, repoURL string) *Record {
	now := time.Now().UTC()
	return &Record{
		ID:        uuid.NewString(),
		Name:      name,
		RepoURL:   repoURL,
		Status:    StatusCreated,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// HasCredential reports whether a sealed credential is stored, without
// exposing it.
func (r *Record) HasCredential() bool {
	return r.EncryptedCredential != ""
}

// Clone returns a deep copy so callers can hand records out without
// aliasing store-internal state.
func (r *Record) Clone() *Record {
	out := *r
	out.ManifestPaths = append([]string(nil), r.ManifestPaths...)
	return &out
}
