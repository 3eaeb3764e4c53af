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

package defaults

import (
	"testing"
	"time"
)

func TestTimeoutConstants(t *testing.T) {
	tests := []struct {
		name     string
		timeout  time.Duration
		minValue time.Duration
		maxValue time.Duration
	}{
		// Pipeline timeouts
		{"CloneTimeout", CloneTimeout, 1 * time.Minute, 10 * time.Minute},
		{"BuildTimeout", BuildTimeout, 5 * time.Minute, 30 * time.Minute},
		{"PushTimeout", PushTimeout, 30 * time.Second, 5 * time.Minute},
		{"ApplyTimeout", ApplyTimeout, 30 * time.Second, 5 * time.Minute},
		{"RolloutTimeout", RolloutTimeout, 1 * time.Minute, 15 * time.Minute},
		{"UndeployTimeout", UndeployTimeout, 30 * time.Second, 5 * time.Minute},

		// Server timeouts
		{"ServerReadTimeout", ServerReadTimeout, 5 * time.Second, 30 * time.Second},
		{"ServerWriteTimeout", ServerWriteTimeout, 15 * time.Second, 5 * time.Minute},
		{"ServerReadHeaderTimeout", ServerReadHeaderTimeout, 1 * time.Second, 30 * time.Second},
		{"ServerShutdownTimeout", ServerShutdownTimeout, 10 * time.Second, 60 * time.Second},

		// Handler timeouts
		{"AnalyzeHandlerTimeout", AnalyzeHandlerTimeout, 30 * time.Second, 5 * time.Minute},

		// K8s timeouts
		{"K8sRequestTimeout", K8sRequestTimeout, 10 * time.Second, 60 * time.Second},
		{"K8sDiscoveryTimeout", K8sDiscoveryTimeout, 10 * time.Second, 60 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.timeout < tt.minValue {
				t.Errorf("%s = %v, below reasonable minimum %v", tt.name, tt.timeout, tt.minValue)
			}
			if tt.timeout > tt.maxValue {
				t.Errorf("%s = %v, above reasonable maximum %v", tt.name, tt.timeout, tt.maxValue)
			}
		})
	}
}

func TestStepTimeoutOrdering(t *testing.T) {
	// The rollout wait dominates apply; build dominates everything else.
	if RolloutTimeout <= ApplyTimeout {
		t.Errorf("RolloutTimeout (%v) should exceed ApplyTimeout (%v)", RolloutTimeout, ApplyTimeout)
	}
	if BuildTimeout <= CloneTimeout {
		t.Errorf("BuildTimeout (%v) should exceed CloneTimeout (%v)", BuildTimeout, CloneTimeout)
	}
	if CLIDeployTimeout <= BuildTimeout {
		t.Errorf("CLIDeployTimeout (%v) must allow for a full build (%v)", CLIDeployTimeout, BuildTimeout)
	}
}

func TestServerTimeoutCoversAnalyzeHandler(t *testing.T) {
	// The analyze endpoint responds synchronously after a clone. If the
	// connection write deadline fires before the handler budget, the client
	// gets a reset instead of a classified error.
	if ServerWriteTimeout <= AnalyzeHandlerTimeout {
		t.Errorf("ServerWriteTimeout (%v) must exceed AnalyzeHandlerTimeout (%v)",
			ServerWriteTimeout, AnalyzeHandlerTimeout)
	}
}
