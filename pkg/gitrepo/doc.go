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

// Package gitrepo provides repository access for the instrumentation
// pipeline: cloning a source repository (optionally with a personal access
// token), probing whether it is publicly readable, committing and pushing
// rewritten manifests back, and detecting the application language from the
// checkout contents.
//
// Credentials are accepted as opaque token strings and used only for the
// duration of the call; they are never stored or logged by this package.
package gitrepo
