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

package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	pipelineRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "traceassist_pipeline_runs_total",
			Help: "Total number of pipeline runs by terminal outcome",
		},
		[]string{"outcome"}, // deployed, failed, undeployed, undeploy_failed
	)

	pipelineStepDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "traceassist_pipeline_step_duration_seconds",
			Help:    "Time taken by individual pipeline steps",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300, 900},
		},
		[]string{"step"}, // clone, build, analyze, push, deploy, rollout, undeploy
	)

	analyzeRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "traceassist_analyze_requests_total",
			Help: "Total number of analyze-only requests",
		},
		[]string{"status"}, // success or error
	)
)
