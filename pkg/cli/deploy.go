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
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/traceassist/traceassist/pkg/api"
	"github.com/traceassist/traceassist/pkg/defaults"
	"github.com/traceassist/traceassist/pkg/pipeline"
	"github.com/traceassist/traceassist/pkg/serializers"
	"github.com/traceassist/traceassist/pkg/store"
)

func deployCmd() *cli.Command {
	return &cli.Command{
		Name:  "deploy",
		Usage: "Clone, build, instrument, and deploy an application",
		Description: `Run the full deployment pipeline for a repository: clone, build the
container image, rewrite Kubernetes manifests for OpenTelemetry
auto-instrumentation, apply them to the cluster, and wait for rollout.

The command blocks until the pipeline reaches a terminal state.

# Examples

Deploy a public repository:
  tactl deploy --name demo-app --repo https://github.com/org/demo.git

Deploy a private repository and push rewritten manifests back:
  tactl deploy --name demo-app --repo https://github.com/org/demo.git \
    --pat $TOKEN --push`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "name",
				Usage:    "deployment name (lowercase DNS label)",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "repo",
				Aliases:  []string{"r"},
				Usage:    "repository URL to deploy",
				Required: true,
			},
			&cli.BoolFlag{
				Name:  "push",
				Usage: "push rewritten manifests back to the repository",
			},
			patFlag,
			namespaceFlag,
			dataDirFlag,
			workDirFlag,
			outputFlag,
			formatFlag,
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			outFormat, err := parseOutputFormat(cmd)
			if err != nil {
				return err
			}

			orch, records, err := newLocalOrchestrator(cmd, true)
			if err != nil {
				return err
			}

			runCtx, cancel := context.WithTimeout(ctx, defaults.CLIDeployTimeout)
			defer cancel()

			name := cmd.String("name")
			if _, err := orch.Create(runCtx, pipeline.DeployRequest{
				Name:        name,
				RepoURL:     cmd.String("repo"),
				Credential:  cmd.String("pat"),
				PushEnabled: cmd.Bool("push"),
			}); err != nil {
				return fmt.Errorf("error starting deployment: %w", err)
			}

			orch.Drain()

			record, err := records.Get(name)
			if err != nil {
				return err
			}
			if err := serializers.NewFileWriterOrStdout(outFormat, cmd.String("output")).Serialize(api.NewDeploymentResponse(record)); err != nil {
				return err
			}
			if record.Status != store.StatusDeployed {
				return fmt.Errorf("deployment %s ended in status %s: %s", name, record.Status, record.Cause)
			}
			return nil
		},
	}
}
