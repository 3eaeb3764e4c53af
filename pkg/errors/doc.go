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

// Package errors provides structured error types for TraceAssist components.
//
// Errors carry a machine-readable ErrorCode alongside the human-readable
// message and wrapped cause, so that the API layer can map failures to HTTP
// statuses and the pipeline orchestrator can classify step failures before
// recording them on a deployment record.
//
// Usage:
//
//	if err := cloner.Clone(ctx, url, dir); err != nil {
//	    return errors.Wrap(errors.ErrCodeCloneFailed, "cloning repository", err)
//	}
//
// Classification at the consuming end:
//
//	if errors.HasCode(err, errors.ErrCodeConflict) {
//	    // reject with 409
//	}
package errors
