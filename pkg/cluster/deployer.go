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

// Package cluster applies rewritten manifests to a Kubernetes cluster and
// tracks their rollout.
package cluster

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
	utilyaml "k8s.io/apimachinery/pkg/util/yaml"
	"k8s.io/client-go/dynamic"

	apperrors "github.com/traceassist/traceassist/pkg/errors"
	"github.com/traceassist/traceassist/pkg/manifest"
)

// DefaultNamespace is where application workloads land when the manifest
// does not name one.
const DefaultNamespace = "default"

// Applied identifies a resource created or updated in the cluster.
type Applied struct {
	Kind      string `json:"kind"`
	Name      string `json:"name"`
	Namespace string `json:"namespace"`
}

// Deployer applies manifests and waits for workloads to become ready.
type Deployer struct {
	clientset Interface
	dynamic   dynamic.Interface
	namespace string
	logger    *slog.Logger
}

// NewDeployer creates a Deployer operating in the given namespace. An empty
// namespace selects DefaultNamespace.
func NewDeployer(clientset Interface, dyn dynamic.Interface, namespace string, logger *slog.Logger) *Deployer {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Deployer{
		clientset: clientset,
		dynamic:   dyn,
		namespace: namespace,
		logger:    logger,
	}
}

// EnsureServiceAccount creates the instrumentation ServiceAccount referenced
// by rewritten workloads. If it already exists, this is a no-op.
func (d *Deployer) EnsureServiceAccount(ctx context.Context) error {
	sa := &corev1.ServiceAccount{
		ObjectMeta: metav1.ObjectMeta{
			Name:      manifest.ServiceAccountName,
			Namespace: d.namespace,
		},
	}

	_, err := d.clientset.CoreV1().ServiceAccounts(d.namespace).Create(ctx, sa, metav1.CreateOptions{})
	if err := ignoreAlreadyExists(err); err != nil {
		return apperrors.Wrap(apperrors.ErrCodeDeployFailed, "creating service account", err)
	}
	return nil
}

// Apply creates or updates every resource in the given manifest buffers and
// returns the applied set in order.
func (d *Deployer) Apply(ctx context.Context, sources []manifest.Source) ([]Applied, error) {
	objects, err := d.decode(sources)
	if err != nil {
		return nil, err
	}

	applied := make([]Applied, 0, len(objects))
	for _, obj := range objects {
		gvr, namespaced, err := d.resolveResource(obj.GroupVersionKind())
		if err != nil {
			return applied, err
		}

		var client dynamic.ResourceInterface = d.dynamic.Resource(gvr)
		ns := ""
		if namespaced {
			ns = obj.GetNamespace()
			if ns == "" {
				ns = d.namespace
				obj.SetNamespace(ns)
			}
			client = d.dynamic.Resource(gvr).Namespace(ns)
		}

		if err := createOrUpdate(ctx, client, obj); err != nil {
			return applied, apperrors.WrapWithContext(apperrors.ErrCodeDeployFailed,
				"applying resource", err, map[string]any{
					"kind": obj.GetKind(),
					"name": obj.GetName(),
				})
		}

		d.logger.Info("applied resource", "kind", obj.GetKind(), "name", obj.GetName(), "namespace", ns)
		applied = append(applied, Applied{Kind: obj.GetKind(), Name: obj.GetName(), Namespace: ns})
	}

	return applied, nil
}

// Delete removes every resource in the given manifest buffers. Resources
// that are already gone are skipped.
func (d *Deployer) Delete(ctx context.Context, sources []manifest.Source) error {
	objects, err := d.decode(sources)
	if err != nil {
		return err
	}

	for _, obj := range objects {
		gvr, namespaced, err := d.resolveResource(obj.GroupVersionKind())
		if err != nil {
			return err
		}

		var client dynamic.ResourceInterface = d.dynamic.Resource(gvr)
		if namespaced {
			ns := obj.GetNamespace()
			if ns == "" {
				ns = d.namespace
			}
			client = d.dynamic.Resource(gvr).Namespace(ns)
		}

		if err := ignoreNotFound(client.Delete(ctx, obj.GetName(), metav1.DeleteOptions{})); err != nil {
			return apperrors.WrapWithContext(apperrors.ErrCodeUndeployFailed,
				"deleting resource", err, map[string]any{
					"kind": obj.GetKind(),
					"name": obj.GetName(),
				})
		}
		d.logger.Info("deleted resource", "kind", obj.GetKind(), "name", obj.GetName())
	}

	return nil
}

// decode parses every document in the manifest buffers into unstructured
// objects, skipping empty documents.
func (d *Deployer) decode(sources []manifest.Source) ([]*unstructured.Unstructured, error) {
	var objects []*unstructured.Unstructured
	for _, src := range sources {
		decoder := utilyaml.NewYAMLOrJSONDecoder(bytes.NewReader(src.Data), 4096)
		for {
			obj := &unstructured.Unstructured{}
			if err := decoder.Decode(obj); err != nil {
				if err == io.EOF {
					break
				}
				return nil, apperrors.WrapWithContext(apperrors.ErrCodeManifestInvalid,
					"decoding manifest document", err, map[string]any{"path": src.Path})
			}
			if obj.Object == nil || obj.GetKind() == "" {
				continue
			}
			objects = append(objects, obj)
		}
	}
	return objects, nil
}

// resolveResource maps a GVK to its resource via API discovery.
func (d *Deployer) resolveResource(gvk schema.GroupVersionKind) (schema.GroupVersionResource, bool, error) {
	_, lists, err := d.clientset.Discovery().ServerGroupsAndResources()
	if err != nil && len(lists) == 0 {
		return schema.GroupVersionResource{}, false,
			apperrors.Wrap(apperrors.ErrCodeDeployFailed, "discovering API resources", err)
	}

	for _, list := range lists {
		if list.GroupVersion != gvk.GroupVersion().String() {
			continue
		}
		for _, res := range list.APIResources {
			if res.Kind != gvk.Kind || strings.Contains(res.Name, "/") {
				continue
			}
			return gvk.GroupVersion().WithResource(res.Name), res.Namespaced, nil
		}
	}

	return schema.GroupVersionResource{}, false, apperrors.New(apperrors.ErrCodeDeployFailed,
		fmt.Sprintf("no API resource for kind %s in %s", gvk.Kind, gvk.GroupVersion()))
}

// createOrUpdate creates the object, falling back to an update (carrying the
// live resourceVersion) when it already exists.
func createOrUpdate(ctx context.Context, client dynamic.ResourceInterface, obj *unstructured.Unstructured) error {
	_, err := client.Create(ctx, obj, metav1.CreateOptions{})
	if err == nil || !errors.IsAlreadyExists(err) {
		return err
	}

	live, err := client.Get(ctx, obj.GetName(), metav1.GetOptions{})
	if err != nil {
		return err
	}
	obj.SetResourceVersion(live.GetResourceVersion())
	_, err = client.Update(ctx, obj, metav1.UpdateOptions{})
	return err
}

// ignoreAlreadyExists returns nil if the error is "already exists".
func ignoreAlreadyExists(err error) error {
	if errors.IsAlreadyExists(err) {
		return nil
	}
	return err
}

// ignoreNotFound returns nil if the error is "not found".
func ignoreNotFound(err error) error {
	if errors.IsNotFound(err) {
		return nil
	}
	return err
}
