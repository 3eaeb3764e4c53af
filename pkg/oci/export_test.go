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
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTarget(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    *Target
		wantErr bool
	}{
		{
			name:  "registry with tag",
			input: "oci://ghcr.io/org/bundles:v1",
			want:  &Target{IsRegistry: true, Registry: "ghcr.io", Repository: "org/bundles", Tag: "v1"},
		},
		{
			name:  "registry without tag",
			input: "oci://localhost:5000/bundles",
			want:  &Target{IsRegistry: true, Registry: "localhost:5000", Repository: "bundles"},
		},
		{
			name:  "local directory",
			input: "/tmp/bundle-out",
			want:  &Target{LocalPath: "/tmp/bundle-out"},
		},
		{
			name:    "invalid reference",
			input:   "oci://ghcr.io/ORG WITH SPACES",
			wantErr: true,
		},
		{
			name:    "empty target",
			input:   "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTarget(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTargetString(t *testing.T) {
	reg, err := ParseTarget("oci://ghcr.io/org/bundles:v1")
	require.NoError(t, err)
	assert.Equal(t, "oci://ghcr.io/org/bundles:v1", reg.String())
	assert.Equal(t, "ghcr.io/org/bundles:v1", reg.ImageReference())

	local, err := ParseTarget("/tmp/out")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/out", local.String())
	assert.Empty(t, local.ImageReference())
}

func TestExportToLocalLayout(t *testing.T) {
	src := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(src, "k8s"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "k8s", "app.yaml"),
		[]byte("apiVersion: apps/v1\nkind: Deployment\nmetadata:\n  name: demo-app-web\n"), 0o644))

	layout := filepath.Join(t.TempDir(), "bundle")
	target, err := ParseTarget(layout)
	require.NoError(t, err)

	result, err := Export(t.Context(), ExportOptions{
		SourceDir:      src,
		Target:         target,
		DeploymentName: "demo-app",
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(result.Digest, "sha256:"))
	assert.Equal(t, layout, result.Reference)

	// The layout directory holds a valid OCI image layout.
	_, err = os.Stat(filepath.Join(layout, "oci-layout"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(layout, "index.json"))
	require.NoError(t, err)
}

func TestExportRequiresTarget(t *testing.T) {
	_, err := Export(t.Context(), ExportOptions{SourceDir: t.TempDir()})
	require.Error(t, err)
}
