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

// Package api provides the HTTP API layer for the TraceAssist deployment
// service.
//
// This package is a thin wrapper around the reusable pkg/server package,
// configuring it with the deployment routes and wiring the real git, image,
// and cluster adapters into the pipeline orchestrator.
//
// # Usage
//
// To start the API server:
//
//	package main
//
//	import (
//	    "log"
//	    "github.com/traceassist/traceassist/pkg/api"
//	)
//
//	func main() {
//	    if err := api.Serve(); err != nil {
//	        log.Fatalf("server error: %v", err)
//	    }
//	}
//
// # Endpoints
//
// Application endpoints (rate limited):
//   - POST   /v1/deployments/analyze           - Inspect a repository without deploying
//   - POST   /v1/deployments                   - Create a deployment and start the pipeline
//   - GET    /v1/deployments                   - List deployment records
//   - GET    /v1/deployments/{name}            - Get a deployment record
//   - POST   /v1/deployments/{name}/instrument - Re-run the pipeline for a deployment
//   - POST   /v1/deployments/{name}/bundle     - Export applied manifests as an OCI artifact
//   - DELETE /v1/deployments/{name}            - Undeploy and remove the record
//   - POST   /v1/workflow/instrument           - Stateless manifest rewrite
//
// System endpoints (no rate limiting):
//   - GET /health  - Health check (liveness probe)
//   - GET /ready   - Readiness check
//   - GET /metrics - Prometheus metrics
//
// # Configuration
//
// The server is configured via environment variables:
//   - PORT: HTTP server port (default: 8080)
//   - LOG_LEVEL: Logging level (debug, info, warn, error)
//   - DATA_DIR: Directory for deployment records and the usage log (default: data)
//   - WORK_DIR: Directory for per-deployment checkouts (default: $TMPDIR/traceassist)
//   - NAMESPACE: Target Kubernetes namespace (default: default)
//   - CREDENTIAL_SECRET: Key material for encrypting stored PAT tokens (required)
//   - BUNDLE_TARGET: Optional OCI registry reference or local layout directory
//     for post-deploy manifest bundle export
//
// Version information is set at build time using ldflags:
//
//	go build -ldflags="-X 'github.com/traceassist/traceassist/pkg/api.version=1.0.0'"
package api
