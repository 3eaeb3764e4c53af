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
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// LoadDir reads every YAML file under root into a Source set, with paths
// relative to root. Hidden directories (.git and friends) are skipped.
// Ordering is deterministic (lexical walk order), which keeps rewritten
// output and commit contents stable across runs.
func LoadDir(root string) ([]Source, error) {
	var sources []Source

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		ext := strings.ToLower(filepath.Ext(d.Name()))
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		sources = append(sources, Source{Path: rel, Data: data})
		return nil
	})
	if err != nil {
		return nil, err
	}

	return sources, nil
}

// WriteDir writes a Source set back under root, creating parent directories
// as needed. Paths are interpreted relative to root.
func WriteDir(root string, sources []Source) error {
	for _, src := range sources {
		path := filepath.Join(root, src.Path)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("creating directory for %s: %w", src.Path, err)
		}
		if err := os.WriteFile(path, src.Data, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", src.Path, err)
		}
	}
	return nil
}
