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

package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestStructuredErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  *StructuredError
		want string
	}{
		{
			name: "without cause",
			err:  New(ErrCodeNotFound, "deployment not found"),
			want: "[NOT_FOUND] deployment not found",
		},
		{
			name: "with cause",
			err:  Wrap(ErrCodeCloneFailed, "cloning repository", fmt.Errorf("authentication required")),
			want: "[CLONE_FAILED] cloning repository: authentication required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUnwrap(t *testing.T) {
	cause := fmt.Errorf("socket closed")
	err := Wrap(ErrCodeTimeout, "waiting for rollout", cause)

	if !stderrors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}

	var se *StructuredError
	if !stderrors.As(err, &se) {
		t.Fatal("errors.As should match *StructuredError")
	}
	if se.Code != ErrCodeTimeout {
		t.Errorf("Code = %s, want %s", se.Code, ErrCodeTimeout)
	}
}

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{"nil error", nil, ""},
		{"structured", New(ErrCodeBuildFailed, "docker build failed"), ErrCodeBuildFailed},
		{"wrapped structured", fmt.Errorf("step: %w", New(ErrCodeConflict, "run in flight")), ErrCodeConflict},
		{"plain error", fmt.Errorf("boom"), ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CodeOf(tt.err); got != tt.want {
				t.Errorf("CodeOf() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestHasCode(t *testing.T) {
	err := Wrap(ErrCodePushFailed, "pushing manifests", fmt.Errorf("read-only token"))

	if !HasCode(err, ErrCodePushFailed) {
		t.Error("HasCode should match PUSH_FAILED")
	}
	if HasCode(err, ErrCodeDeployFailed) {
		t.Error("HasCode should not match DEPLOY_FAILED")
	}
}

func TestWrapWithContext(t *testing.T) {
	err := WrapWithContext(ErrCodeDeployFailed, "applying manifests", fmt.Errorf("forbidden"),
		map[string]any{"namespace": "default", "resources": 3})

	if err.Context["namespace"] != "default" {
		t.Errorf("Context[namespace] = %v, want default", err.Context["namespace"])
	}
	if err.Context["resources"] != 3 {
		t.Errorf("Context[resources] = %v, want 3", err.Context["resources"])
	}
}
