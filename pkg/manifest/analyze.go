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

// Analyze inspects a buffer set and reports whether instrumentation changes
// are required. The input is never mutated; multiple documents per buffer and
// multiple buffers are treated as one candidate resource set. Non-Kubernetes
// buffers are ignored. A buffer that claims to be a manifest but cannot be
// parsed fails the whole operation.
func Analyze(sources []Source) (*Analysis, error) {
	docs, err := parseSources(sources)
	if err != nil {
		return nil, err
	}

	analysis := &Analysis{}
	for _, doc := range docs {
		if doc.kind == "" {
			continue
		}
		analysis.Resources = append(analysis.Resources, Resource{
			Kind: doc.kind,
			Name: doc.name,
			Path: sources[doc.src].Path,
		})
		if doc.kind == KindDeployment && !instrumented(documentRoot(doc.node)) {
			analysis.RequiresChanges = true
		}
	}

	return analysis, nil
}
