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
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/traceassist/traceassist/pkg/manifest"
)

func instrumentCmd() *cli.Command {
	return &cli.Command{
		Name:  "instrument",
		Usage: "Rewrite a manifest file for auto-instrumentation",
		Description: `Inject the OpenTelemetry auto-instrumentation annotation and the
TraceAssist service account into a Kubernetes manifest. The rewritten
manifest is written to stdout or --output; the input file is not
modified. Reads stdin when --file is "-".`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "file",
				Aliases:  []string{"f"},
				Usage:    `manifest file to rewrite ("-" for stdin)`,
				Required: true,
			},
			outputFlag,
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			path := cmd.String("file")
			var data []byte
			var err error
			if path == "-" {
				data, err = io.ReadAll(os.Stdin)
			} else {
				data, err = os.ReadFile(path)
			}
			if err != nil {
				return fmt.Errorf("error reading manifest: %w", err)
			}

			out, changed, err := manifest.Instrument(data)
			if err != nil {
				return err
			}
			if !changed {
				fmt.Fprintln(os.Stderr, "manifest already instrumented, no changes made")
			}

			if dest := cmd.String("output"); dest != "" {
				return os.WriteFile(dest, out, 0o644)
			}
			_, err = os.Stdout.Write(out)
			return err
		},
	}
}
