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
	"bytes"
	"errors"
	"fmt"
	"io"
	"regexp"

	"gopkg.in/yaml.v3"

	apperrors "github.com/traceassist/traceassist/pkg/errors"
)

const (
	// InjectAnnotation is the pod-template annotation consumed by the
	// OpenTelemetry Operator to trigger auto-instrumentation injection.
	InjectAnnotation = "instrumentation.opentelemetry.io/inject"

	// InjectAnnotationValue is the value that enables injection.
	InjectAnnotationValue = "true"

	// ServiceAccountName is the fixed service account bound to the
	// instrumentation RBAC role. Pod templates are pointed at it.
	ServiceAccountName = "traceassist-sa"

	// ImagePullPolicy is applied to retargeted containers. Images are built
	// on the node's local daemon and must never be pulled from a registry.
	ImagePullPolicy = "Never"

	// KindDeployment and KindService are the resource kinds the rewriter acts on.
	KindDeployment = "Deployment"
	KindService    = "Service"
)

// Source is one text buffer believed to contain YAML Kubernetes manifests,
// identified by its path within the repository checkout.
type Source struct {
	Path string
	Data []byte
}

// Resource identifies one Kubernetes resource found during analysis.
type Resource struct {
	Kind string `json:"kind"`
	Name string `json:"name"`
	Path string `json:"path"`
}

// Analysis is the result of analyzing a manifest buffer set.
type Analysis struct {
	// RequiresChanges reports whether any Deployment in the set still needs
	// instrumentation fields injected.
	RequiresChanges bool `json:"requiresChanges"`

	// Resources lists every Kubernetes resource recognized in the set.
	Resources []Resource `json:"resources"`
}

// document is one parsed YAML document plus its provenance. Documents that
// are not recognizable Kubernetes resources carry an empty kind; they are
// never rewritten but must survive re-encoding so a changed buffer keeps all
// of its content.
type document struct {
	src  int // index into the source slice
	node *yaml.Node
	kind string
	name string
}

// manifestKeyPattern detects buffers that claim to be Kubernetes manifests.
// Used only when parsing fails, to distinguish a malformed manifest (an
// error) from arbitrary non-manifest YAML or text (ignored).
var manifestKeyPattern = regexp.MustCompile(`(?m)^\s*(apiVersion|kind)\s*:`)

// parseSources decodes every document in every buffer, in order. Buffers
// that fail to parse are ignored unless they contain apiVersion/kind keys, in
// which case the whole operation fails with ErrCodeManifestInvalid. Every
// decoded document is returned; only those with both apiVersion and kind are
// tagged as resources.
func parseSources(sources []Source) ([]document, error) {
	var docs []document

	for i, src := range sources {
		dec := yaml.NewDecoder(bytes.NewReader(src.Data))
		var parsed []*yaml.Node
		var parseErr error

		for {
			var node yaml.Node
			err := dec.Decode(&node)
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				parseErr = err
				break
			}
			parsed = append(parsed, &node)
		}

		if parseErr != nil {
			if manifestKeyPattern.Match(src.Data) {
				return nil, apperrors.WrapWithContext(apperrors.ErrCodeManifestInvalid,
					fmt.Sprintf("malformed Kubernetes manifest in %s", src.Path),
					parseErr, map[string]any{"path": src.Path})
			}
			// Unparseable but not claiming to be a manifest: skip the buffer.
			continue
		}

		for _, node := range parsed {
			if node.Kind == 0 {
				// Empty document; nothing to keep or rewrite.
				continue
			}
			doc := document{src: i, node: node}
			if root := documentRoot(node); root != nil && root.Kind == yaml.MappingNode {
				kind := scalarValue(lookup(root, "kind"))
				apiVersion := scalarValue(lookup(root, "apiVersion"))
				if kind != "" && apiVersion != "" {
					doc.kind = kind
					doc.name = scalarValue(lookup(mappingChild(root, "metadata"), "name"))
				}
			}
			docs = append(docs, doc)
		}
	}

	return docs, nil
}

// documentRoot unwraps the DocumentNode wrapper produced by the decoder.
func documentRoot(node *yaml.Node) *yaml.Node {
	if node == nil {
		return nil
	}
	if node.Kind == yaml.DocumentNode {
		if len(node.Content) == 0 {
			return nil
		}
		return node.Content[0]
	}
	return node
}

// instrumented reports whether a Deployment document already carries the
// injected annotation and service account. This is the precondition Analyze
// checks and exactly what Rewrite injects.
func instrumented(root *yaml.Node) bool {
	template := mappingChild(mappingChild(root, "spec"), "template")
	if template == nil {
		return false
	}

	annotations := mappingChild(mappingChild(template, "metadata"), "annotations")
	if scalarValue(lookup(annotations, InjectAnnotation)) != InjectAnnotationValue {
		return false
	}

	podSpec := mappingChild(template, "spec")
	return scalarValue(lookup(podSpec, "serviceAccountName")) == ServiceAccountName
}
