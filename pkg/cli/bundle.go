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

	"github.com/traceassist/traceassist/pkg/serializers"
)

func bundleCmd() *cli.Command {
	return &cli.Command{
		Name:      "bundle",
		Usage:     "Export a deployment's applied manifests as an OCI artifact",
		ArgsUsage: "NAME",
		Description: `Package the manifests that were applied for a deployment and push them
to an OCI registry or write them to a local OCI image layout.

# Examples

Push to a registry:
  tactl bundle demo-app --target oci://ghcr.io/org/bundles:v1

Write a local layout:
  tactl bundle demo-app --target ./bundles/demo-app`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "target",
				Usage:    "oci:// registry reference or local layout directory",
				Required: true,
			},
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
			name := cmd.Args().First()
			if name == "" {
				return fmt.Errorf("deployment name argument is required")
			}

			orch, _, err := newLocalOrchestrator(cmd, false)
			if err != nil {
				return err
			}

			result, err := orch.ExportBundle(ctx, name, cmd.String("target"))
			if err != nil {
				return fmt.Errorf("error exporting bundle: %w", err)
			}
			return serializers.NewFileWriterOrStdout(outFormat, cmd.String("output")).Serialize(result)
		},
	}
}
