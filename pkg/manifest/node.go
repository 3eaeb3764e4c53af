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

import "gopkg.in/yaml.v3"

// Helpers for navigating and mutating yaml.Node mapping trees. Mapping nodes
// store alternating key/value children; these helpers keep that invariant and
// never reorder existing entries.

// lookup returns the value node for key within a mapping node, or nil.
func lookup(node *yaml.Node, key string) *yaml.Node {
	if node == nil || node.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1]
		}
	}
	return nil
}

// mappingChild returns the value node for key if it is a mapping, or nil.
func mappingChild(node *yaml.Node, key string) *yaml.Node {
	child := lookup(node, key)
	if child == nil || child.Kind != yaml.MappingNode {
		return nil
	}
	return child
}

// sequenceChild returns the value node for key if it is a sequence, or nil.
func sequenceChild(node *yaml.Node, key string) *yaml.Node {
	child := lookup(node, key)
	if child == nil || child.Kind != yaml.SequenceNode {
		return nil
	}
	return child
}

// scalarValue returns the string value of a scalar node, or "".
func scalarValue(node *yaml.Node) string {
	if node == nil || node.Kind != yaml.ScalarNode {
		return ""
	}
	return node.Value
}

// ensureMapping returns the mapping value for key, creating and appending an
// empty mapping entry when the key is absent. Returns nil if node itself is
// not a mapping or the existing value is not a mapping.
func ensureMapping(node *yaml.Node, key string) *yaml.Node {
	if node == nil || node.Kind != yaml.MappingNode {
		return nil
	}
	if existing := lookup(node, key); existing != nil {
		if existing.Kind != yaml.MappingNode {
			return nil
		}
		return existing
	}
	keyNode := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}
	valNode := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	node.Content = append(node.Content, keyNode, valNode)
	return valNode
}

// setScalar sets key to a string scalar within a mapping node, updating the
// existing entry in place or appending a new one. Returns true when the
// mapping changed.
func setScalar(node *yaml.Node, key, value string, style yaml.Style) bool {
	if node == nil || node.Kind != yaml.MappingNode {
		return false
	}
	if existing := lookup(node, key); existing != nil {
		if existing.Kind == yaml.ScalarNode && existing.Value == value {
			return false
		}
		existing.SetString(value)
		existing.Style = style
		return true
	}
	keyNode := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}
	valNode := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value, Style: style}
	node.Content = append(node.Content, keyNode, valNode)
	return true
}
