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
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	apperrors "github.com/traceassist/traceassist/pkg/errors"
)

// encodeIndent matches the conventional manifest indentation.
const encodeIndent = 2

// Rewrite returns a copy of the buffer set with instrumentation fields
// injected into every Deployment and name/selector adjustments applied to
// Deployments and Services. Buffers without changes are returned verbatim;
// changed buffers are re-encoded from their complete document trees,
// preserving key order, unknown fields, comments, and any non-resource
// documents sharing the buffer.
//
// All injected mutations are idempotent: rewriting an already rewritten set
// produces the same bytes.
func Rewrite(sources []Source, deployName, imageRef string) ([]Source, error) {
	if deployName == "" {
		return nil, apperrors.New(apperrors.ErrCodeInvalidRequest, "deployment name is required")
	}

	docs, err := parseSources(sources)
	if err != nil {
		return nil, err
	}

	changed := make(map[int]bool)
	bysrc := make(map[int][]*yaml.Node)
	for _, doc := range docs {
		bysrc[doc.src] = append(bysrc[doc.src], doc.node)

		root := documentRoot(doc.node)
		switch doc.kind {
		case KindDeployment:
			if rewriteDeployment(root, deployName, imageRef) {
				changed[doc.src] = true
			}
		case KindService:
			if rewriteService(root, deployName) {
				changed[doc.src] = true
			}
		}
	}

	out := make([]Source, len(sources))
	for i, src := range sources {
		if !changed[i] {
			out[i] = src
			continue
		}
		data, err := encodeDocuments(bysrc[i])
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrCodeInternal,
				fmt.Sprintf("re-encoding %s", src.Path), err)
		}
		out[i] = Source{Path: src.Path, Data: data}
	}

	return out, nil
}

// Instrument injects only the auto-instrumentation annotation and service
// account into every Deployment in a single buffer, leaving names, images,
// and selectors alone. This is the stateless form used by CI/CD workflows
// that manage their own images and resource naming.
func Instrument(data []byte) ([]byte, bool, error) {
	sources := []Source{{Path: "manifest.yaml", Data: data}}
	docs, err := parseSources(sources)
	if err != nil {
		return nil, false, err
	}

	var nodes []*yaml.Node
	modified := false
	for _, doc := range docs {
		nodes = append(nodes, doc.node)
		if doc.kind != KindDeployment {
			continue
		}
		if injectInstrumentation(documentRoot(doc.node)) {
			modified = true
		}
	}

	if !modified {
		return data, false, nil
	}

	out, err := encodeDocuments(nodes)
	if err != nil {
		return nil, false, apperrors.Wrap(apperrors.ErrCodeInternal, "re-encoding manifest", err)
	}
	return out, true, nil
}

// rewriteDeployment applies the full instrumentation rewrite to one
// Deployment document. Returns true when anything changed.
func rewriteDeployment(root *yaml.Node, deployName, imageRef string) bool {
	changed := false

	metadata := mappingChild(root, "metadata")
	if prefixScalar(lookup(metadata, "name"), deployName) {
		changed = true
	}

	spec := mappingChild(root, "spec")
	selector := mappingChild(mappingChild(spec, "selector"), "matchLabels")
	if prefixLabelValues(selector, deployName) {
		changed = true
	}

	template := ensureMapping(spec, "template")
	if template == nil {
		return changed
	}

	// Every template label value gets the prefix, not just the keys named in
	// matchLabels. Services select on template labels directly and their
	// selectors are prefixed the same way, so a partial rewrite here would
	// detach a Service selecting on a label outside matchLabels.
	templateLabels := mappingChild(mappingChild(template, "metadata"), "labels")
	if prefixLabelValues(templateLabels, deployName) {
		changed = true
	}

	if injectInstrumentation(root) {
		changed = true
	}

	if imageRef != "" && retargetContainers(template, imageRef) {
		changed = true
	}

	return changed
}

// injectInstrumentation sets the inject annotation and service account on a
// Deployment's pod template. Returns true when anything changed.
func injectInstrumentation(root *yaml.Node) bool {
	template := ensureMapping(mappingChild(root, "spec"), "template")
	if template == nil {
		return false
	}

	changed := false

	annotations := ensureMapping(ensureMapping(template, "metadata"), "annotations")
	if setScalar(annotations, InjectAnnotation, InjectAnnotationValue, yaml.DoubleQuotedStyle) {
		changed = true
	}

	podSpec := ensureMapping(template, "spec")
	if setScalar(podSpec, "serviceAccountName", ServiceAccountName, 0) {
		changed = true
	}

	return changed
}

// retargetContainers points the first container of the pod template at the
// locally built image and disables remote pulls for it. The first container
// is the application container by convention; sidecars keep their images.
func retargetContainers(template *yaml.Node, imageRef string) bool {
	containers := sequenceChild(mappingChild(template, "spec"), "containers")
	if containers == nil || len(containers.Content) == 0 {
		return false
	}

	app := containers.Content[0]
	if app.Kind != yaml.MappingNode {
		return false
	}

	changed := setScalar(app, "image", imageRef, 0)
	if setScalar(app, "imagePullPolicy", ImagePullPolicy, 0) {
		changed = true
	}
	return changed
}

// rewriteService prefixes a Service's name and selector label values so
// concurrently deployed applications sharing a namespace cannot collide.
func rewriteService(root *yaml.Node, deployName string) bool {
	changed := false

	metadata := mappingChild(root, "metadata")
	if prefixScalar(lookup(metadata, "name"), deployName) {
		changed = true
	}

	selector := mappingChild(mappingChild(root, "spec"), "selector")
	if prefixLabelValues(selector, deployName) {
		changed = true
	}

	return changed
}

// prefixScalar prepends "<deployName>-" to a scalar value unless it already
// carries the prefix. Returns true when the value changed.
func prefixScalar(node *yaml.Node, deployName string) bool {
	if node == nil || node.Kind != yaml.ScalarNode || node.Value == "" {
		return false
	}
	prefix := deployName + "-"
	if strings.HasPrefix(node.Value, prefix) {
		return false
	}
	node.Value = prefix + node.Value
	return true
}

// prefixLabelValues prefixes every scalar value in a label mapping. Returns
// true when any value actually changed.
func prefixLabelValues(labels *yaml.Node, deployName string) bool {
	if labels == nil || labels.Kind != yaml.MappingNode {
		return false
	}
	changed := false
	for i := 0; i+1 < len(labels.Content); i += 2 {
		val := labels.Content[i+1]
		if val.Kind != yaml.ScalarNode || val.Value == "" {
			continue
		}
		if prefixScalar(val, deployName) {
			changed = true
		}
	}
	return changed
}

// encodeDocuments serializes document nodes back into one multi-document buffer.
func encodeDocuments(nodes []*yaml.Node) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(encodeIndent)
	for _, node := range nodes {
		if err := enc.Encode(node); err != nil {
			enc.Close()
			return nil, err
		}
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
