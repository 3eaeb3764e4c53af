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

// Package cli implements the command-line interface for the TraceAssist
// tactl tool.
//
// # Overview
//
// tactl drives the deployment pipeline directly as a library, without an
// API server: it clones application repositories, builds container images,
// rewrites Kubernetes manifests for OpenTelemetry auto-instrumentation,
// and applies them to a cluster. It also runs the API server via the serve
// command.
//
// # Commands
//
// analyze - Inspect a repository without deploying:
//
//	tactl analyze --repo https://github.com/org/demo.git [--pat TOKEN]
//
// deploy - Run the full pipeline and wait for rollout:
//
//	tactl deploy --name demo-app --repo https://github.com/org/demo.git [--push]
//
// list / get - Read deployment records:
//
//	tactl list [--format table]
//	tactl get demo-app
//
// undeploy - Delete cluster resources and the record:
//
//	tactl undeploy demo-app
//
// bundle - Export applied manifests as an OCI artifact:
//
//	tactl bundle demo-app --target oci://ghcr.io/org/bundles:v1
//
// instrument - Rewrite a single manifest file:
//
//	tactl instrument -f deploy.yaml
//
// serve - Run the HTTP API server:
//
//	tactl serve
//
// # Global Flags
//
//	--log-level    Log level: debug, info, warn, error (default: warn)
//	--output, -o   Output file path (default: stdout)
//	--format, -t   Output format: yaml, json, table (default: yaml)
//
// Version information is set at build time using ldflags:
//
//	go build -ldflags="-X 'github.com/traceassist/traceassist/pkg/cli.version=1.0.0'"
package cli
