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
)

func undeployCmd() *cli.Command {
	return &cli.Command{
		Name:      "undeploy",
		Usage:     "Delete a deployment's cluster resources and its record",
		ArgsUsage: "NAME",
		Description: `Delete the Kubernetes resources that were applied for a deployment,
then remove its record. If resource deletion fails, the record is kept
in status UndeployFailed so the command can be retried.`,
		Flags: []cli.Flag{
			namespaceFlag,
			dataDirFlag,
			workDirFlag,
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			name := cmd.Args().First()
			if name == "" {
				return fmt.Errorf("deployment name argument is required")
			}

			orch, _, err := newLocalOrchestrator(cmd, true)
			if err != nil {
				return err
			}

			runCtx, cancel := context.WithTimeout(ctx, defaults.UndeployTimeout)
			defer cancel()

			if err := orch.Undeploy(runCtx, name); err != nil {
				return fmt.Errorf("error undeploying %s: %w", name, err)
			}
			fmt.Printf("deployment %s removed\n", name)
			return nil
		},
	}
}
