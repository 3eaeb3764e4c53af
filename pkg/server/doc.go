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

// Package server provides a reusable HTTP server with the middleware stack
// shared by all TraceAssist endpoints: Prometheus metrics, request IDs,
// panic recovery, rate limiting, and request logging. Application routes
// are plugged in via options:
//
//	s := server.New(
//	    server.WithName("traced"),
//	    server.WithVersion(version),
//	    server.WithHandler(routes),
//	)
//	if err := s.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// System endpoints (/health, /ready, /metrics) are always registered and
// bypass rate limiting.
package server
