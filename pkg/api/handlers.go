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
	"net/http"

	"github.com/traceassist/traceassist/pkg/defaults"
	apperrors "github.com/traceassist/traceassist/pkg/errors"
	"github.com/traceassist/traceassist/pkg/gitrepo"
	"github.com/traceassist/traceassist/pkg/manifest"
	"github.com/traceassist/traceassist/pkg/pipeline"
	"github.com/traceassist/traceassist/pkg/serializers"
	"github.com/traceassist/traceassist/pkg/server"
	"github.com/traceassist/traceassist/pkg/store"
)

// request bodies are small JSON documents; anything larger is a mistake.
const maxRequestBytes = 1 << 20

// Handlers exposes the deployment API over the shared server package.
type Handlers struct {
	orch    *pipeline.Orchestrator
	records *store.FileStore
	logger  *slog.Logger
}

// NewHandlers creates the API handler set.
func NewHandlers(orch *pipeline.Orchestrator, records *store.FileStore, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{orch: orch, records: records, logger: logger}
}

// Routes returns the route table consumed by server.WithHandler.
func (h *Handlers) Routes() map[string]http.HandlerFunc {
	return map[string]http.HandlerFunc{
		"POST /v1/deployments/analyze":           h.handleAnalyze,
		"POST /v1/deployments":                   h.handleCreate,
		"GET /v1/deployments":                    h.handleList,
		"GET /v1/deployments/{name}":             h.handleGet,
		"POST /v1/deployments/{name}/instrument": h.handleInstrument,
		"POST /v1/deployments/{name}/bundle":     h.handleExportBundle,
		"DELETE /v1/deployments/{name}":          h.handleUndeploy,
		"POST /v1/workflow/instrument":           h.handleInstrumentManifest,
	}
}

// handleAnalyze handles POST /v1/deployments/analyze.
func (h *Handlers) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := serializers.DecodeJSONBody(r, &req, maxRequestBytes); err != nil {
		server.WriteStructuredError(w, r,
			apperrors.Wrap(apperrors.ErrCodeInvalidRequest, "invalid request body", err))
		return
	}
	if err := gitrepo.ValidateURL(req.RepoURL); err != nil {
		server.WriteStructuredError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), defaults.AnalyzeHandlerTimeout)
	defer cancel()

	result, err := h.orch.Analyze(ctx, pipeline.AnalyzeRequest{
		RepoURL:    req.RepoURL,
		Credential: req.PATToken,
	})
	if err != nil {
		server.WriteStructuredError(w, r, err)
		return
	}

	resources := result.Resources
	if resources == nil {
		resources = []manifest.Resource{}
	}

	serializers.RespondJSON(w, http.StatusOK, AnalyzeResponse{
		IsPublic:     result.IsPublic,
		PushRequired: result.PushRequired,
		Language:     result.Language,
		Resources:    resources,
	})
}

// handleCreate handles POST /v1/deployments.
func (h *Handlers) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateDeploymentRequest
	if err := serializers.DecodeJSONBody(r, &req, maxRequestBytes); err != nil {
		server.WriteStructuredError(w, r,
			apperrors.Wrap(apperrors.ErrCodeInvalidRequest, "invalid request body", err))
		return
	}
	if err := gitrepo.ValidateURL(req.RepoURL); err != nil {
		server.WriteStructuredError(w, r, err)
		return
	}

	record, err := h.orch.Create(r.Context(), pipeline.DeployRequest{
		Name:        req.DeploymentName,
		RepoURL:     req.RepoURL,
		Credential:  req.PATToken,
		PushEnabled: req.PushToRepo,
	})
	if err != nil {
		server.WriteStructuredError(w, r, err)
		return
	}

	serializers.RespondJSON(w, http.StatusAccepted, NewDeploymentResponse(record))
}

// handleList handles GET /v1/deployments.
func (h *Handlers) handleList(w http.ResponseWriter, r *http.Request) {
	records, err := h.records.List()
	if err != nil {
		server.WriteStructuredError(w, r, err)
		return
	}

	resp := make([]DeploymentResponse, 0, len(records))
	for _, record := range records {
		resp = append(resp, NewDeploymentResponse(record))
	}
	serializers.RespondJSON(w, http.StatusOK, resp)
}

// handleGet handles GET /v1/deployments/{name}.
func (h *Handlers) handleGet(w http.ResponseWriter, r *http.Request) {
	record, err := h.records.Get(r.PathValue("name"))
	if err != nil {
		server.WriteStructuredError(w, r, err)
		return
	}
	serializers.RespondJSON(w, http.StatusOK, NewDeploymentResponse(record))
}

// handleInstrument handles POST /v1/deployments/{name}/instrument.
func (h *Handlers) handleInstrument(w http.ResponseWriter, r *http.Request) {
	record, err := h.orch.Instrument(r.Context(), r.PathValue("name"))
	if err != nil {
		server.WriteStructuredError(w, r, err)
		return
	}
	serializers.RespondJSON(w, http.StatusAccepted, NewDeploymentResponse(record))
}

// handleExportBundle handles POST /v1/deployments/{name}/bundle.
func (h *Handlers) handleExportBundle(w http.ResponseWriter, r *http.Request) {
	var req ExportBundleRequest
	if err := serializers.DecodeJSONBody(r, &req, maxRequestBytes); err != nil {
		server.WriteStructuredError(w, r,
			apperrors.Wrap(apperrors.ErrCodeInvalidRequest, "invalid request body", err))
		return
	}

	result, err := h.orch.ExportBundle(r.Context(), r.PathValue("name"), req.Target)
	if err != nil {
		server.WriteStructuredError(w, r, err)
		return
	}

	serializers.RespondJSON(w, http.StatusOK, ExportBundleResponse{
		Reference: result.Reference,
		Digest:    result.Digest,
	})
}

// handleUndeploy handles DELETE /v1/deployments/{name}.
func (h *Handlers) handleUndeploy(w http.ResponseWriter, r *http.Request) {
	if err := h.orch.Undeploy(r.Context(), r.PathValue("name")); err != nil {
		server.WriteStructuredError(w, r, err)
		return
	}
	serializers.RespondJSON(w, http.StatusOK, struct{}{})
}

// handleInstrumentManifest handles POST /v1/workflow/instrument: the
// stateless rewrite used by callers that manage their own deploys.
func (h *Handlers) handleInstrumentManifest(w http.ResponseWriter, r *http.Request) {
	var req InstrumentManifestRequest
	if err := serializers.DecodeJSONBody(r, &req, maxRequestBytes); err != nil {
		server.WriteStructuredError(w, r,
			apperrors.Wrap(apperrors.ErrCodeInvalidRequest, "invalid request body", err))
		return
	}
	if req.Manifest == "" {
		server.WriteStructuredError(w, r,
			apperrors.New(apperrors.ErrCodeInvalidRequest, "manifest is required"))
		return
	}

	out, changed, err := h.orch.InstrumentManifest(pipeline.InstrumentManifestRequest{
		Manifest:       []byte(req.Manifest),
		RepoURL:        req.RepoURL,
		DeploymentName: req.DeploymentName,
	})
	if err != nil {
		server.WriteStructuredError(w, r, err)
		return
	}

	serializers.RespondJSON(w, http.StatusOK, InstrumentManifestResponse{
		Manifest:    string(out),
		ChangesMade: changed,
	})
}
