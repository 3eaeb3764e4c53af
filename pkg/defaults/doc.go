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

// Package defaults provides centralized configuration constants for TraceAssist.
//
// This package defines timeout values and other configuration defaults used
// across the codebase. Centralizing these values ensures consistency and
// makes tuning easier.
//
// # Timeout Categories
//
// Timeouts are organized by component:
//
//   - Pipeline timeouts: Per-step bounds for clone, build, push, apply, rollout
//   - Handler timeouts: For HTTP request processing
//   - Server timeouts: For HTTP server configuration
//   - Kubernetes timeouts: For K8s API operations
//
// # Usage
//
// Import and use constants directly:
//
//	import "github.com/traceassist/traceassist/pkg/defaults"
//
//	ctx, cancel := context.WithTimeout(ctx, defaults.CloneTimeout)
//	defer cancel()
//
// # Timeout Guidelines
//
// When choosing timeout values:
//
//   - Clone/push: minutes, dominated by network and repository size
//   - Image builds: 15m default, cold layer caches are slow
//   - K8s API calls: 30s; rollout wait: 5m
//   - Server shutdown: 30s for graceful shutdown
package defaults
