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
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/traceassist/traceassist/pkg/cluster"
	"github.com/traceassist/traceassist/pkg/gitrepo"
	"github.com/traceassist/traceassist/pkg/image"
	"github.com/traceassist/traceassist/pkg/pipeline"
	"github.com/traceassist/traceassist/pkg/serializers"
	"github.com/traceassist/traceassist/pkg/store"
)

var outputFlag = &cli.StringFlag{
	Name:    "output",
	Aliases: []string{"o"},
	Usage:   "output file path (default: stdout)",
}

var formatFlag = &cli.StringFlag{
	Name:    "format",
	Aliases: []string{"t"},
	Usage:   "output format (json, yaml, or table)",
	Value:   string(serializers.FormatYAML),
}

var dataDirFlag = &cli.StringFlag{
	Name:    "data-dir",
	Usage:   "directory for deployment records and the usage log",
	Sources: cli.EnvVars("DATA_DIR"),
	Value:   "data",
}

var workDirFlag = &cli.StringFlag{
	Name:    "work-dir",
	Usage:   "directory for per-deployment checkouts",
	Sources: cli.EnvVars("WORK_DIR"),
	Value:   filepath.Join(os.TempDir(), "traceassist"),
}

var namespaceFlag = &cli.StringFlag{
	Name:    "namespace",
	Aliases: []string{"n"},
	Usage:   "target Kubernetes namespace",
	Sources: cli.EnvVars("NAMESPACE"),
	Value:   cluster.DefaultNamespace,
}

var patFlag = &cli.StringFlag{
	Name:    "pat",
	Usage:   "personal access token for private repositories",
	Sources: cli.EnvVars("TRACEASSIST_PAT"),
}

// parseOutputFormat validates the --format flag value.
func parseOutputFormat(cmd *cli.Command) (serializers.Format, error) {
	format := serializers.Format(cmd.String("format"))
	if format.IsUnknown() {
		return "", fmt.Errorf("unknown output format: %q", format)
	}
	return format, nil
}

// openRecords opens the record store under the configured data directory.
func openRecords(cmd *cli.Command) (*store.FileStore, error) {
	return store.NewFileStore(filepath.Join(cmd.String("data-dir"), "deployments"))
}

// newSealer builds the credential sealer from CREDENTIAL_SECRET. A local
// default keeps the CLI usable without configuration; stored tokens are
// only as protected as the secret.
func newSealer() (*store.Sealer, error) {
	secret := os.Getenv("CREDENTIAL_SECRET")
	if secret == "" {
		secret = "traceassist-local"
	}
	return store.NewSealer(secret)
}

// newLocalOrchestrator wires the real adapters for direct library use. The
// cluster client is only built when withCluster is set so analyze works
// without a kubeconfig.
func newLocalOrchestrator(cmd *cli.Command, withCluster bool) (*pipeline.Orchestrator, *store.FileStore, error) {
	records, err := openRecords(cmd)
	if err != nil {
		return nil, nil, err
	}
	sealer, err := newSealer()
	if err != nil {
		return nil, nil, err
	}

	var deployer pipeline.Deployer
	if withCluster {
		clientset, restConfig, err := cluster.GetKubeClient()
		if err != nil {
			return nil, nil, err
		}
		dyn, err := cluster.BuildDynamicClient(restConfig)
		if err != nil {
			return nil, nil, err
		}
		deployer = cluster.NewDeployer(clientset, dyn, cmd.String("namespace"), slog.Default())
	}

	orch := pipeline.New(pipeline.Config{
		Cloner:   gitrepo.NewClient(),
		Builder:  image.NewBuilder(slog.Default()),
		Deployer: deployer,
		Detect:   gitrepo.DetectLanguage,
		Records:  records,
		Sealer:   sealer,
		Usage:    store.NewUsageLog(filepath.Join(cmd.String("data-dir"), "usage.jsonl")),
		WorkRoot: cmd.String("work-dir"),
	})

	// A run killed mid-flight (Ctrl-C during deploy) leaves its record in an
	// in-flight status no operation can move; fail it so a retry works.
	if _, err := orch.RecoverInterrupted(); err != nil {
		return nil, nil, err
	}
	return orch, records, nil
}
