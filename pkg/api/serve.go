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

package api

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/traceassist/traceassist/pkg/cluster"
	apperrors "github.com/traceassist/traceassist/pkg/errors"
	"github.com/traceassist/traceassist/pkg/gitrepo"
	"github.com/traceassist/traceassist/pkg/image"
	"github.com/traceassist/traceassist/pkg/logging"
	"github.com/traceassist/traceassist/pkg/pipeline"
	"github.com/traceassist/traceassist/pkg/server"
	"github.com/traceassist/traceassist/pkg/store"
)

const (
	name           = "traced"
	versionDefault = "dev"
)

var (
	// overridden during build with ldflags to reflect actual version info
	// e.g., -X "github.com/traceassist/traceassist/pkg/api.version=1.0.0"
	version = versionDefault
	commit  = "unknown"
	date    = "unknown"
)

// Serve starts the API server and blocks until shutdown.
// It wires the git, image, and cluster adapters into the pipeline
// orchestrator, configures logging, and handles graceful shutdown.
func Serve() error {
	ctx := context.Background()

	logging.SetDefaultStructuredLogger(name, version)
	slog.Info("starting",
		"name", name,
		"version", version,
		"commit", commit,
		"date", date,
	)

	orch, records, err := buildOrchestrator()
	if err != nil {
		slog.Error("initialization failed", "error", err)
		return err
	}

	// Records left in flight by an earlier process can never progress on
	// their own; fail them now so redeploy and undeploy stay available.
	recovered, err := orch.RecoverInterrupted()
	if err != nil {
		slog.Error("recovering interrupted deployments failed", "error", err)
		return err
	}
	if recovered > 0 {
		slog.Warn("recovered interrupted deployments", "count", recovered)
	}

	h := NewHandlers(orch, records, slog.Default())

	s := server.New(
		server.WithName(name),
		server.WithVersion(version),
		server.WithHandler(h.Routes()),
	)
	s.OnShutdown(orch.Drain)
	s.SetReady(true)

	if err := s.Run(ctx); err != nil {
		slog.Error("server exited with error", "error", err)
		return err
	}

	return nil
}

// buildOrchestrator assembles the pipeline from environment configuration.
func buildOrchestrator() (*pipeline.Orchestrator, *store.FileStore, error) {
	dataDir := envOrDefault("DATA_DIR", "data")
	workDir := envOrDefault("WORK_DIR", filepath.Join(os.TempDir(), "traceassist"))
	namespace := envOrDefault("NAMESPACE", cluster.DefaultNamespace)

	secret := os.Getenv("CREDENTIAL_SECRET")
	if secret == "" {
		return nil, nil, apperrors.New(apperrors.ErrCodeInvalidRequest,
			"CREDENTIAL_SECRET environment variable is required")
	}
	sealer, err := store.NewSealer(secret)
	if err != nil {
		return nil, nil, err
	}

	records, err := store.NewFileStore(filepath.Join(dataDir, "deployments"))
	if err != nil {
		return nil, nil, err
	}
	usage := store.NewUsageLog(filepath.Join(dataDir, "usage.jsonl"))

	clientset, restConfig, err := cluster.GetKubeClient()
	if err != nil {
		return nil, nil, err
	}
	dyn, err := cluster.BuildDynamicClient(restConfig)
	if err != nil {
		return nil, nil, err
	}
	deployer := cluster.NewDeployer(clientset, dyn, namespace, slog.Default())

	return pipeline.New(pipeline.Config{
		Cloner:       gitrepo.NewClient(),
		Builder:      image.NewBuilder(slog.Default()),
		Deployer:     deployer,
		Detect:       gitrepo.DetectLanguage,
		Records:      records,
		Sealer:       sealer,
		Usage:        usage,
		WorkRoot:     workDir,
		BundleTarget: os.Getenv("BUNDLE_TARGET"),
		Logger:       slog.Default(),
	}), records, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
