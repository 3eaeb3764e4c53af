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

package gitrepo

import (
	"bufio"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// baseImageLanguages maps Dockerfile base image name fragments to language
// identifiers. Checked in order; first hit wins.
var baseImageLanguages = []struct {
	fragment string
	lang     string
}{
	{"python", "python"},
	{"node", "javascript"},
	{"golang", "go"},
	{"openjdk", "java"},
	{"eclipse-temurin", "java"},
	{"amazoncorretto", "java"},
	{"maven", "java"},
	{"gradle", "java"},
	{"ruby", "ruby"},
	{"php", "php"},
	{"rust", "rust"},
	{"dotnet", "csharp"},
}

// extensionLanguages maps source file extensions to language identifiers for
// the fallback scan.
var extensionLanguages = map[string]string{
	".py":   "python",
	".js":   "javascript",
	".ts":   "javascript",
	".go":   "go",
	".java": "java",
	".rb":   "ruby",
	".php":  "php",
	".rs":   "rust",
	".cs":   "csharp",
}

// DetectLanguage infers the application language of a checkout. The
// Dockerfile base image is authoritative when recognizable; otherwise the
// most common source extension wins. Returns "unknown" when neither yields
// a hit. The result is advisory only.
func DetectLanguage(dir string) string {
	if lang := languageFromDockerfile(dir); lang != "" {
		return lang
	}
	if lang := languageFromExtensions(dir); lang != "" {
		return lang
	}
	return "unknown"
}

// DisplayLanguage renders a detected language identifier for human-facing
// output (e.g. "python" -> "Python").
func DisplayLanguage(lang string) string {
	switch lang {
	case "javascript":
		return "JavaScript"
	case "php":
		return "PHP"
	case "csharp":
		return "C#"
	default:
		return cases.Title(language.English).String(lang)
	}
}

func languageFromDockerfile(dir string) string {
	var file *os.File
	for _, name := range []string{"Dockerfile", "dockerfile"} {
		f, err := os.Open(filepath.Join(dir, name))
		if err == nil {
			file = f
			break
		}
	}
	if file == nil {
		return ""
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(strings.ToUpper(line), "FROM ") {
			continue
		}
		image := strings.ToLower(strings.TrimSpace(line[len("FROM "):]))
		for _, entry := range baseImageLanguages {
			if strings.Contains(image, entry.fragment) {
				return entry.lang
			}
		}
		// Only the first build stage identifies the toolchain.
		return ""
	}
	return ""
}

func languageFromExtensions(dir string) string {
	counts := make(map[string]int)

	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != dir {
				return filepath.SkipDir
			}
			return nil
		}
		if lang, ok := extensionLanguages[strings.ToLower(filepath.Ext(d.Name()))]; ok {
			counts[lang]++
		}
		return nil
	})

	best, bestCount := "", 0
	for lang, count := range counts {
		if count > bestCount || (count == bestCount && lang < best) {
			best, bestCount = lang, count
		}
	}
	return best
}
