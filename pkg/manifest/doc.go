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

// Package manifest parses and rewrites user-authored Kubernetes manifests to
// add OpenTelemetry auto-instrumentation.
//
// Manifests are handled as generic yaml.Node document trees rather than typed
// schema structs, so arbitrary user YAML round-trips untouched: key order,
// unknown fields, and comments are preserved, and only the injected fields
// change. Buffers that are not Kubernetes manifests are ignored; buffers that
// claim to be manifests (carry apiVersion/kind) but fail to parse reject the
// whole operation, so a partially rewritten resource set is never produced.
//
// # Operations
//
// Analyze inspects a buffer set and reports whether instrumentation changes
// are required, without mutating the input:
//
//	analysis, err := manifest.Analyze(sources)
//	if analysis.RequiresChanges { ... }
//
// Rewrite produces a minimally modified copy of the buffer set. For every
// Deployment it renames the resource to include the deployment name, points
// the pod template at the locally built image, sets the instrumentation
// service account, and injects the auto-instrumentation annotation; Services
// are renamed and their selectors adjusted to match:
//
//	out, err := manifest.Rewrite(sources, "demo-app", "demo-app:latest")
//
// The two operations are linked by an idempotence contract: the annotation
// and service account injected by Rewrite are exactly the precondition
// Analyze checks, so Analyze(Rewrite(M)) never reports changes.
package manifest
