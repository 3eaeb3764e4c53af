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

package defaults

import "time"

// Pipeline step timeouts. Every adapter call made by the orchestrator is
// bounded by one of these; exceeding it fails the run with a timeout cause
// instead of hanging the pipeline.
const (
	// CloneTimeout is the maximum duration for cloning a source repository.
	CloneTimeout = 5 * time.Minute

	// BuildTimeout is the maximum duration for a container image build.
	// Builds dominate pipeline latency; cold caches on large images are slow.
	BuildTimeout = 15 * time.Minute

	// PushTimeout is the maximum duration for committing and pushing
	// rewritten manifests back to the source repository.
	PushTimeout = 2 * time.Minute

	// ApplyTimeout is the maximum duration for applying a manifest set
	// to the cluster.
	ApplyTimeout = 2 * time.Minute

	// RolloutTimeout is the maximum duration to wait for all applied
	// workloads to report rollout completion.
	RolloutTimeout = 5 * time.Minute

	// UndeployTimeout is the maximum duration for deleting a deployment's
	// cluster resources.
	UndeployTimeout = 2 * time.Minute

	// BundleExportTimeout is the maximum duration for pushing the manifest
	// bundle artifact to an OCI registry.
	BundleExportTimeout = 2 * time.Minute
)

// Server timeouts for HTTP server configuration.
const (
	// ServerReadTimeout is the maximum duration for reading request headers.
	ServerReadTimeout = 10 * time.Second

	// ServerReadHeaderTimeout prevents slow header attacks.
	ServerReadHeaderTimeout = 5 * time.Second

	// ServerWriteTimeout is the maximum duration for writing a response. It
	// must exceed AnalyzeHandlerTimeout: analyze responds synchronously after
	// a clone, and the connection write deadline starts when the headers are
	// read, before the handler runs.
	ServerWriteTimeout = 2 * time.Minute

	// ServerIdleTimeout is the maximum duration to wait for the next request.
	ServerIdleTimeout = 120 * time.Second

	// ServerShutdownTimeout is the maximum duration for graceful shutdown.
	ServerShutdownTimeout = 30 * time.Second
)

// Handler timeouts for HTTP request processing.
const (
	// AnalyzeHandlerTimeout bounds the synchronous analyze endpoint, which
	// performs a clone. Kept under ServerWriteTimeout so the handler can
	// still write the classified error when the clone runs long.
	AnalyzeHandlerTimeout = 90 * time.Second
)

// Kubernetes timeouts for K8s API operations.
const (
	// K8sRequestTimeout is the timeout for individual K8s API calls.
	K8sRequestTimeout = 30 * time.Second

	// K8sDiscoveryTimeout is the timeout for API resource discovery used
	// to build the REST mapping for arbitrary manifest kinds.
	K8sDiscoveryTimeout = 30 * time.Second
)

// CLI timeouts for command-line operations.
const (
	// CLIDeployTimeout is the default end-to-end timeout for a deploy
	// invoked from the CLI (clone + build + analyze + apply + rollout).
	CLIDeployTimeout = 30 * time.Minute

	// CLIAnalyzeTimeout is the default timeout for analyze-only operations.
	CLIAnalyzeTimeout = 5 * time.Minute
)
