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

package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/urfave/cli/v3"
)

func hasName(flag cli.Flag, name string) bool {
	for _, n := range flag.Names() {
		if n == name {
			return true
		}
	}
	return false
}

func requireFlags(t *testing.T, cmd *cli.Command, names []string) {
	t.Helper()
	for _, want := range names {
		found := false
		for _, flag := range cmd.Flags {
			if hasName(flag, want) {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("required flag %q not found on %s", want, cmd.Name)
		}
	}
}

func TestRootCmdStructure(t *testing.T) {
	cmd := rootCmd()

	if cmd.Name != "tactl" {
		t.Errorf("Name = %v, want tactl", cmd.Name)
	}

	wantCommands := []string{"serve", "analyze", "deploy", "list", "get", "undeploy", "bundle", "instrument"}
	for _, want := range wantCommands {
		found := false
		for _, sub := range cmd.Commands {
			if sub.Name == want {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("command %q not registered", want)
		}
	}
}

func TestAnalyzeCmdStructure(t *testing.T) {
	cmd := analyzeCmd()

	if cmd.Name != "analyze" {
		t.Errorf("Name = %v, want analyze", cmd.Name)
	}
	if cmd.Action == nil {
		t.Error("Action should not be nil")
	}
	requireFlags(t, cmd, []string{"repo", "pat", "data-dir", "work-dir", "output", "format"})
}

func TestDeployCmdStructure(t *testing.T) {
	cmd := deployCmd()

	if cmd.Name != "deploy" {
		t.Errorf("Name = %v, want deploy", cmd.Name)
	}
	if cmd.Action == nil {
		t.Error("Action should not be nil")
	}
	requireFlags(t, cmd, []string{"name", "repo", "push", "pat", "namespace", "data-dir", "work-dir"})
}

func TestBundleCmdStructure(t *testing.T) {
	cmd := bundleCmd()

	if cmd.Action == nil {
		t.Error("Action should not be nil")
	}
	requireFlags(t, cmd, []string{"target", "data-dir", "work-dir"})
}

func TestParseOutputFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"yaml", false},
		{"json", false},
		{"table", false},
		{"xml", true},
		{"", true},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			cmd := &cli.Command{
				Flags: []cli.Flag{&cli.StringFlag{Name: "format", Value: tt.format}},
				Action: func(_ context.Context, c *cli.Command) error {
					_, err := parseOutputFormat(c)
					if (err != nil) != tt.wantErr {
						t.Errorf("parseOutputFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
					}
					return nil
				},
			}
			if err := cmd.Run(context.Background(), []string{"test"}); err != nil {
				t.Fatalf("failed to run command: %v", err)
			}
		})
	}
}

func TestInstrumentCmdRewritesFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "deploy.yaml")
	out := filepath.Join(dir, "out.yaml")
	src := `apiVersion: apps/v1
kind: Deployment
metadata:
  name: web
spec:
  replicas: 1
  selector:
    matchLabels:
      app: web
  template:
    metadata:
      labels:
        app: web
    spec:
      containers:
        - name: web
          image: web:dev
`
	if err := os.WriteFile(in, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}

	root := &cli.Command{Commands: []*cli.Command{instrumentCmd()}}
	if err := root.Run(context.Background(), []string{"tactl", "instrument", "-f", in, "-o", out}); err != nil {
		t.Fatalf("instrument failed: %v", err)
	}

	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(got), "instrumentation.opentelemetry.io/inject") {
		t.Error("rewritten manifest missing inject annotation")
	}
	if !strings.Contains(string(got), "traceassist-sa") {
		t.Error("rewritten manifest missing service account")
	}

	original, err := os.ReadFile(in)
	if err != nil {
		t.Fatal(err)
	}
	if string(original) != src {
		t.Error("input file should not be modified")
	}
}

func TestListCmdEmptyStore(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "list.json")

	root := &cli.Command{Commands: []*cli.Command{listCmd()}}
	err := root.Run(context.Background(),
		[]string{"tactl", "list", "--data-dir", dir, "--format", "json", "-o", out})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}

	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(string(got)) != "[]" {
		t.Errorf("list output = %q, want []", got)
	}
}

func TestGetCmdMissingName(t *testing.T) {
	root := &cli.Command{Commands: []*cli.Command{getCmd()}}
	err := root.Run(context.Background(), []string{"tactl", "get", "--data-dir", t.TempDir()})
	if err == nil {
		t.Error("expected error for missing name argument")
	}
}
