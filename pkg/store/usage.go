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
	"bufio"
	"encoding/json"
	"os"
	"sync"
	"time"

	apperrors "github.com/traceassist/traceassist/pkg/errors"
)

// UsageEntry records one instrumentation request for audit purposes.
type UsageEntry struct {
	DeploymentName string    `json:"deployment_name"`
	RepoURL        string    `json:"client_repo"`
	ChangesMade    bool      `json:"changes_made"`
	Timestamp      time.Time `json:"timestamp"`
}

// UsageLog is an append-only JSONL audit log of instrumentation requests.
type UsageLog struct {
	path string
	mu   sync.Mutex
}

// NewUsageLog opens (creating if needed) the usage log at path.
func NewUsageLog(path string) *UsageLog {
	return &UsageLog{path: path}
}

// Append writes one entry, stamping it with the current time when unset.
func (l *UsageLog) Append(entry UsageEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrCodeInternal, "encoding usage entry", err)
	}

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrCodeInternal, "opening usage log", err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return apperrors.Wrap(apperrors.ErrCodeInternal, "appending usage entry", err)
	}
	return nil
}

// Entries returns all recorded entries in append order. A missing log file
// yields an empty slice.
func (l *UsageLog) Entries() ([]UsageEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.Open(l.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal, "opening usage log", err)
	}
	defer f.Close()

	var entries []UsageEntry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var entry UsageEntry
		if err := json.Unmarshal(line, &entry); err != nil {
			return nil, apperrors.Wrap(apperrors.ErrCodeInternal, "decoding usage entry", err)
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal, "reading usage log", err)
	}
	return entries, nil
}
