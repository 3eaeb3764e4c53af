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
	"github.com/traceassist/traceassist/pkg/serializers"
)

func listCmd() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List deployment records",
		Flags: []cli.Flag{
			dataDirFlag,
			outputFlag,
			formatFlag,
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			outFormat, err := parseOutputFormat(cmd)
			if err != nil {
				return err
			}

			records, err := openRecords(cmd)
			if err != nil {
				return err
			}
			all, err := records.List()
			if err != nil {
				return err
			}

			views := make([]api.DeploymentResponse, 0, len(all))
			for _, record := range all {
				views = append(views, api.NewDeploymentResponse(record))
			}
			return serializers.NewFileWriterOrStdout(outFormat, cmd.String("output")).Serialize(views)
		},
	}
}

func getCmd() *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Get a deployment record",
		ArgsUsage: "NAME",
		Flags: []cli.Flag{
			dataDirFlag,
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

			records, err := openRecords(cmd)
			if err != nil {
				return err
			}
			record, err := records.Get(name)
			if err != nil {
				return err
			}
			return serializers.NewFileWriterOrStdout(outFormat, cmd.String("output")).Serialize(api.NewDeploymentResponse(record))
		},
	}
}
