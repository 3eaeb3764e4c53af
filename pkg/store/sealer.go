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
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"io"

	apperrors "github.com/traceassist/traceassist/pkg/errors"
)

// Sealer encrypts repository credentials at rest with AES-GCM. The key is
// derived from an operator-supplied secret; records hold only sealed values.
type Sealer struct {
	aead cipher.AEAD
}

// NewSealer derives an encryption key from the given secret.
func NewSealer(secret string) (*Sealer, error) {
	if secret == "" {
		return nil, apperrors.New(apperrors.ErrCodeInternal, "credential secret is required")
	}

	key := sha256.Sum256([]byte(secret))
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal, "initializing cipher", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal, "initializing cipher", err)
	}
	return &Sealer{aead: aead}, nil
}

// Seal encrypts a credential for storage. An empty credential seals to an
// empty string.
func (s *Sealer) Seal(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}

	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", apperrors.Wrap(apperrors.ErrCodeInternal, "generating nonce", err)
	}

	sealed := s.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Open decrypts a sealed credential. An empty sealed value opens to an
// empty string.
func (s *Sealer) Open(sealed string) (string, error) {
	if sealed == "" {
		return "", nil
	}

	raw, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrCodeInternal, "decoding sealed credential", err)
	}
	if len(raw) < s.aead.NonceSize() {
		return "", apperrors.New(apperrors.ErrCodeInternal, "sealed credential too short")
	}

	nonce, ciphertext := raw[:s.aead.NonceSize()], raw[s.aead.NonceSize():]
	plaintext, err := s.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrCodeInternal, "opening sealed credential", err)
	}
	return string(plaintext), nil
}
