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

package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/traceassist/traceassist/pkg/errors"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		code apperrors.ErrorCode
		want int
	}{
		{apperrors.ErrCodeNotFound, http.StatusNotFound},
		{apperrors.ErrCodeInvalidRequest, http.StatusBadRequest},
		{apperrors.ErrCodeUnauthorized, http.StatusUnauthorized},
		{apperrors.ErrCodeConflict, http.StatusConflict},
		{apperrors.ErrCodeTimeout, http.StatusGatewayTimeout},
		{apperrors.ErrCodeRateLimitExceeded, http.StatusTooManyRequests},
		{apperrors.ErrCodeMethodNotAllowed, http.StatusMethodNotAllowed},
		{apperrors.ErrCodeInternal, http.StatusInternalServerError},
		{apperrors.ErrCodeCloneFailed, http.StatusInternalServerError},
		{apperrors.ErrCodeBuildFailed, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.code))
		})
	}
}

func TestWriteStructuredError(t *testing.T) {
	err := apperrors.New(apperrors.ErrCodeNotFound, "deployment not found")

	req := httptest.NewRequest(http.MethodGet, "/v1/deployments/missing", nil)
	rec := httptest.NewRecorder()
	WriteStructuredError(rec, req, err)

	require.Equal(t, http.StatusNotFound, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "NOT_FOUND", resp.Code)
	assert.False(t, resp.Retryable)
	assert.NotEmpty(t, resp.RequestID)
}
