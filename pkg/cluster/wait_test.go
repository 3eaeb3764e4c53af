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

package cluster

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appsv1 "k8s.io/api/apps/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes/fake"
	"k8s.io/utils/ptr"

	apperrors "github.com/traceassist/traceassist/pkg/errors"
)

func readyDeployment(name string, replicas int32) *appsv1.Deployment {
	return &appsv1.Deployment{
		ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: "default", Generation: 1},
		Spec:       appsv1.DeploymentSpec{Replicas: ptr.To(replicas)},
		Status: appsv1.DeploymentStatus{
			ObservedGeneration: 1,
			UpdatedReplicas:    replicas,
			ReadyReplicas:      replicas,
			AvailableReplicas:  replicas,
		},
	}
}

func TestWaitForRolloutAlreadyComplete(t *testing.T) {
	clientset := fake.NewClientset(readyDeployment("demo-app-web", 2))
	d := NewDeployer(clientset, nil, "", nil)

	err := d.WaitForRollout(t.Context(), "demo-app-web", time.Second)
	require.NoError(t, err)
}

func TestWaitForRolloutTimesOut(t *testing.T) {
	pending := readyDeployment("demo-app-web", 2)
	pending.Status.ReadyReplicas = 0
	pending.Status.AvailableReplicas = 0
	clientset := fake.NewClientset(pending)
	d := NewDeployer(clientset, nil, "", nil)

	err := d.WaitForRollout(t.Context(), "demo-app-web", 50*time.Millisecond)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeTimeout, apperrors.CodeOf(err))
}

func TestRolloutComplete(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*appsv1.Deployment)
		want   bool
	}{
		{"all replicas ready", func(*appsv1.Deployment) {}, true},
		{"stale generation", func(d *appsv1.Deployment) { d.Generation = 2 }, false},
		{"not all updated", func(d *appsv1.Deployment) { d.Status.UpdatedReplicas = 1 }, false},
		{"not all ready", func(d *appsv1.Deployment) { d.Status.ReadyReplicas = 1 }, false},
		{"not all available", func(d *appsv1.Deployment) { d.Status.AvailableReplicas = 1 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deploy := readyDeployment("web", 2)
			tt.mutate(deploy)
			assert.Equal(t, tt.want, rolloutComplete(deploy))
		})
	}
}

func TestRolloutCompleteDefaultsToOneReplica(t *testing.T) {
	deploy := readyDeployment("web", 1)
	deploy.Spec.Replicas = nil
	assert.True(t, rolloutComplete(deploy))
}
