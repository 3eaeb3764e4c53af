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

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSealerRoundTrip(t *testing.T) {
	sealer, err := NewSealer("unit-test-secret")
	require.NoError(t, err)

	sealed, err := sealer.Seal("ghp_exampletoken")
	require.NoError(t, err)
	assert.NotEmpty(t, sealed)
	assert.NotContains(t, sealed, "ghp_exampletoken")

	opened, err := sealer.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, "ghp_exampletoken", opened)
}

func TestSealerEmptyCredential(t *testing.T) {
	sealer, err := NewSealer("unit-test-secret")
	require.NoError(t, err)

	sealed, err := sealer.Seal("")
	require.NoError(t, err)
	assert.Empty(t, sealed)

	opened, err := sealer.Open("")
	require.NoError(t, err)
	assert.Empty(t, opened)
}

func TestSealerNonceVariation(t *testing.T) {
	sealer, err := NewSealer("unit-test-secret")
	require.NoError(t, err)

	a, err := sealer.Seal("token")
	require.NoError(t, err)
	b, err := sealer.Seal("token")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestSealerWrongKey(t *testing.T) {
	sealer, err := NewSealer("secret-a")
	require.NoError(t, err)
	sealed, err := sealer.Seal("token")
	require.NoError(t, err)

	other, err := NewSealer("secret-b")
	require.NoError(t, err)
	_, err = other.Open(sealed)
	require.Error(t, err)
}

func TestSealerRejectsGarbage(t *testing.T) {
	sealer, err := NewSealer("unit-test-secret")
	require.NoError(t, err)

	_, err = sealer.Open("not base64!!")
	require.Error(t, err)
	_, err = sealer.Open("c2hvcnQ=")
	require.Error(t, err)
}

func TestSealerRequiresSecret(t *testing.T) {
	_, err := NewSealer("")
	require.Error(t, err)
}
