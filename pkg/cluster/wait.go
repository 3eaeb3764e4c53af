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
	"context"
	"fmt"
	"time"

	appsv1 "k8s.io/api/apps/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/watch"
	"k8s.io/utils/ptr"

	apperrors "github.com/traceassist/traceassist/pkg/errors"
)

// WaitForRollout blocks until the named Deployment reports all replicas
// updated and ready, or the timeout elapses.
func (d *Deployer) WaitForRollout(ctx context.Context, name string, timeout time.Duration) error {
	// Check current state first; the watch below only delivers changes.
	current, err := d.clientset.AppsV1().Deployments(d.namespace).Get(ctx, name, metav1.GetOptions{})
	if err == nil && rolloutComplete(current) {
		return nil
	}

	watcher, err := d.clientset.AppsV1().Deployments(d.namespace).Watch(
		ctx,
		metav1.ListOptions{
			FieldSelector: fmt.Sprintf("metadata.name=%s", name),
			Watch:         true,
		},
	)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrCodeDeployFailed, "watching deployment", err)
	}
	defer watcher.Stop()

	timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	for {
		select {
		case <-timeoutCtx.Done():
			return apperrors.NewWithContext(apperrors.ErrCodeTimeout,
				"timeout waiting for rollout", map[string]any{
					"deployment": name,
					"timeout":    timeout.String(),
				})

		case event, ok := <-watcher.ResultChan():
			if !ok {
				return apperrors.New(apperrors.ErrCodeDeployFailed, "watch channel closed unexpectedly")
			}

			if event.Type == watch.Error {
				return apperrors.New(apperrors.ErrCodeDeployFailed,
					fmt.Sprintf("watch error: %v", event.Object))
			}

			deploy, ok := event.Object.(*appsv1.Deployment)
			if !ok {
				continue
			}

			if rolloutComplete(deploy) {
				return nil
			}
		}
	}
}

// rolloutComplete reports whether the Deployment's observed state matches
// its desired state.
func rolloutComplete(deploy *appsv1.Deployment) bool {
	desired := ptr.Deref(deploy.Spec.Replicas, 1)
	return deploy.Status.ObservedGeneration >= deploy.Generation &&
		deploy.Status.UpdatedReplicas == desired &&
		deploy.Status.ReadyReplicas == desired &&
		deploy.Status.AvailableReplicas == desired
}
