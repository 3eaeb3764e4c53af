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

	"github.com/traceassist/traceassist/pkg/defaults"
	"github.com/traceassist/traceassist/pkg/pipeline"
	"github.com/traceassist/traceassist/pkg/serializers"
)

func analyzeCmd() *cli.Command {
	return &cli.Command{
		Name:  "analyze",
		Usage: "Inspect a repository without deploying it",
		Description: `Clone a repository, detect its language, and report which Kubernetes
manifests would be rewritten for auto-instrumentation. The clone is
attempted without credentials first to determine whether the repository
is publicly readable.

Nothing is built, pushed, or applied to a cluster.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "repo",
				Aliases:  []string{"r"},
				Usage:    "repository URL to analyze",
				Required: true,
			},
			patFlag,
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

			orch, _, err := newLocalOrchestrator(cmd, false)
			if err != nil {
				return err
			}

			runCtx, cancel := context.WithTimeout(ctx, defaults.CLIAnalyzeTimeout)
			defer cancel()

			result, err := orch.Analyze(runCtx, pipeline.AnalyzeRequest{
				RepoURL:    cmd.String("repo"),
				Credential: cmd.String("pat"),
			})
			if err != nil {
				return fmt.Errorf("error analyzing repository: %w", err)
			}

			return serializers.NewFileWriterOrStdout(outFormat, cmd.String("output")).Serialize(result)
		},
	}
}
