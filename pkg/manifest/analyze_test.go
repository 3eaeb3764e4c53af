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

package manifest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/traceassist/traceassist/pkg/errors"
)

const plainDeployment = `apiVersion: apps/v1
kind: Deployment
metadata:
  name: web
  labels:
    app: web
spec:
  replicas: 2
  selector:
    matchLabels:
      app: web
  template:
    metadata:
      labels:
        app: web
    spec:
      containers:
        - name: web
          image: example/web:1.0
          ports:
            - containerPort: 8080
`

const instrumentedDeployment = `apiVersion: apps/v1
kind: Deployment
metadata:
  name: web
spec:
  selector:
    matchLabels:
      app: web
  template:
    metadata:
      labels:
        app: web
      annotations:
        instrumentation.opentelemetry.io/inject: "true"
    spec:
      serviceAccountName: traceassist-sa
      containers:
        - name: web
          image: example/web:1.0
`

const plainService = `apiVersion: v1
kind: Service
metadata:
  name: web
spec:
  selector:
    app: web
  ports:
    - port: 80
      targetPort: 8080
`

func TestAnalyzeRequiresChanges(t *testing.T) {
	tests := []struct {
		name            string
		sources         []Source
		requiresChanges bool
		resourceCount   int
	}{
		{
			name:            "uninstrumented deployment",
			sources:         []Source{{Path: "deployment.yaml", Data: []byte(plainDeployment)}},
			requiresChanges: true,
			resourceCount:   1,
		},
		{
			name:            "already instrumented deployment",
			sources:         []Source{{Path: "deployment.yaml", Data: []byte(instrumentedDeployment)}},
			requiresChanges: false,
			resourceCount:   1,
		},
		{
			name: "deployment and service across buffers",
			sources: []Source{
				{Path: "deployment.yaml", Data: []byte(plainDeployment)},
				{Path: "service.yaml", Data: []byte(plainService)},
			},
			requiresChanges: true,
			resourceCount:   2,
		},
		{
			name: "multi-document buffer",
			sources: []Source{
				{Path: "all.yaml", Data: []byte(plainDeployment + "---\n" + plainService)},
			},
			requiresChanges: true,
			resourceCount:   2,
		},
		{
			name:            "service only needs no changes",
			sources:         []Source{{Path: "service.yaml", Data: []byte(plainService)}},
			requiresChanges: false,
			resourceCount:   1,
		},
		{
			name:            "no sources",
			sources:         nil,
			requiresChanges: false,
			resourceCount:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analysis, err := Analyze(tt.sources)
			require.NoError(t, err)
			assert.Equal(t, tt.requiresChanges, analysis.RequiresChanges)
			assert.Len(t, analysis.Resources, tt.resourceCount)
		})
	}
}

func TestAnalyzeIgnoresNonManifests(t *testing.T) {
	sources := []Source{
		{Path: "deployment.yaml", Data: []byte(plainDeployment)},
		{Path: "values.yaml", Data: []byte("replicaCount: 3\nimage:\n  tag: latest\n")},
		{Path: "notes.yaml", Data: []byte("just: a\nplain: document\n")},
	}

	analysis, err := Analyze(sources)
	require.NoError(t, err)
	assert.Len(t, analysis.Resources, 1)
	assert.Equal(t, KindDeployment, analysis.Resources[0].Kind)
	assert.Equal(t, "web", analysis.Resources[0].Name)
}

func TestAnalyzeMalformedManifestFails(t *testing.T) {
	// Claims to be a manifest via apiVersion/kind but is not valid YAML.
	broken := "apiVersion: apps/v1\nkind: Deployment\nmetadata:\n  name: web\n   badindent: {{\n"

	_, err := Analyze([]Source{
		{Path: "deployment.yaml", Data: []byte(plainDeployment)},
		{Path: "broken.yaml", Data: []byte(broken)},
	})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeManifestInvalid))
}

func TestAnalyzeMalformedNonManifestIgnored(t *testing.T) {
	garbage := "this is\n\tnot even: [yaml\n"

	analysis, err := Analyze([]Source{
		{Path: "README.yaml", Data: []byte(garbage)},
		{Path: "deployment.yaml", Data: []byte(plainDeployment)},
	})
	require.NoError(t, err)
	assert.Len(t, analysis.Resources, 1)
}

func TestAnalyzeDoesNotMutateInput(t *testing.T) {
	data := []byte(plainDeployment)
	original := string(data)

	_, err := Analyze([]Source{{Path: "deployment.yaml", Data: data}})
	require.NoError(t, err)
	assert.Equal(t, original, string(data))
}

func TestAnalyzeInstrumentedButWrongServiceAccount(t *testing.T) {
	// Annotation present but service account points elsewhere: still requires changes.
	partial := `apiVersion: apps/v1
kind: Deployment
metadata:
  name: web
spec:
  template:
    metadata:
      annotations:
        instrumentation.opentelemetry.io/inject: "true"
    spec:
      serviceAccountName: default
      containers:
        - name: web
          image: example/web:1.0
`
	analysis, err := Analyze([]Source{{Path: "deployment.yaml", Data: []byte(partial)}})
	require.NoError(t, err)
	assert.True(t, analysis.RequiresChanges)
}
