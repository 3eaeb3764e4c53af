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

package store

// Status is the lifecycle state of a deployment record.
type Status string

const (
	StatusCreated         Status = "Created"
	StatusCloning         Status = "Cloning"
	StatusBuilding        Status = "Building"
	StatusAnalyzing       Status = "Analyzing"
	StatusNoChangesNeeded Status = "NoChangesNeeded"
	StatusPushing         Status = "Pushing"
	StatusDeploying       Status = "Deploying"
	StatusDeployed        Status = "Deployed"
	StatusFailed          Status = "Failed"
	StatusUndeploying     Status = "Undeploying"
	StatusUndeployed      Status = "Undeployed"
	StatusUndeployFailed  Status = "UndeployFailed"
)

// validNext defines the forward edges of the pipeline state machine. Failed
// is reachable from every non-terminal state and is handled separately.
var validNext = map[Status][]Status{
	StatusCreated:         {StatusCloning},
	StatusCloning:         {StatusBuilding},
	StatusBuilding:        {StatusAnalyzing},
	StatusAnalyzing:       {StatusNoChangesNeeded, StatusPushing, StatusDeploying},
	StatusNoChangesNeeded: {StatusDeploying},
	StatusPushing:         {StatusDeploying},
	StatusDeploying:       {StatusDeployed},
	StatusDeployed:        {StatusCloning, StatusUndeploying},
	StatusFailed:          {StatusCloning, StatusUndeploying},
	StatusUndeployFailed:  {StatusUndeploying},
	StatusUndeploying:     {StatusUndeployed, StatusUndeployFailed},
}

// Terminal reports whether no pipeline step follows this status on its own.
// A terminal record only moves again on an explicit user action (redeploy or
// undeploy).
func (s Status) Terminal() bool {
	switch s {
	case StatusDeployed, StatusFailed, StatusUndeployed, StatusUndeployFailed:
		return true
	}
	return false
}

// InFlight reports whether a pipeline run is actively progressing this
// record. A second instrument call for the same name is rejected while this
// holds.
func (s Status) InFlight() bool {
	switch s {
	case StatusCloning, StatusBuilding, StatusAnalyzing, StatusNoChangesNeeded,
		StatusPushing, StatusDeploying, StatusUndeploying:
		return true
	}
	return false
}

// CanTransition reports whether moving from s to next follows the state
// machine. Failed is always reachable from a non-terminal state.
func (s Status) CanTransition(next Status) bool {
	if next == StatusFailed {
		return !s.Terminal()
	}
	for _, allowed := range validNext[s] {
		if allowed == next {
			return true
		}
	}
	return false
}
