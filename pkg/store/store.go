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
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	apperrors "github.com/traceassist/traceassist/pkg/errors"
)

// FileStore persists one JSON file per deployment record under a directory.
// Writes go through a temp file and rename, so readers never observe a
// partially written record.
type FileStore struct {
	dir string
	mu  sync.RWMutex
}

// NewFileStore opens (creating if needed) a record store at dir.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal, "creating record store directory", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(name string) string {
	return filepath.Join(s.dir, name+".json")
}

// Create persists a new record. A record with the same name must not exist.
func (s *FileStore) Create(record *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(s.path(record.Name)); err == nil {
		return apperrors.NewWithContext(apperrors.ErrCodeConflict,
			"deployment already exists", map[string]any{"name": record.Name})
	}
	return s.write(record)
}

// Get returns a copy of the named record.
func (s *FileStore) Get(name string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read(name)
}

// List returns all records ordered by creation time, newest first.
func (s *FileStore) List() ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal, "listing record store", err)
	}

	records := make([]*Record, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		record, err := s.read(strings.TrimSuffix(entry.Name(), ".json"))
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	return records, nil
}

// Update applies fn to the named record under the store lock and persists
// the result. fn returning an error aborts the update.
func (s *FileStore) Update(name string, fn func(*Record) error) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.read(name)
	if err != nil {
		return nil, err
	}
	if err := fn(record); err != nil {
		return nil, err
	}
	record.UpdatedAt = time.Now().UTC()
	if err := s.write(record); err != nil {
		return nil, err
	}
	return record, nil
}

// Transition moves the named record to the next status, enforcing the state
// machine, and records the cause (empty clears it).
func (s *FileStore) Transition(name string, next Status, cause string) (*Record, error) {
	return s.Update(name, func(record *Record) error {
		if !record.Status.CanTransition(next) {
			return apperrors.NewWithContext(apperrors.ErrCodeConflict,
				fmt.Sprintf("invalid status transition %s -> %s", record.Status, next),
				map[string]any{"name": name})
		}
		record.Status = next
		record.Cause = cause
		return nil
	})
}

// Delete removes the named record. Deleting a missing record is an error.
func (s *FileStore) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path(name))
	if os.IsNotExist(err) {
		return apperrors.NewWithContext(apperrors.ErrCodeNotFound,
			"deployment not found", map[string]any{"name": name})
	}
	if err != nil {
		return apperrors.Wrap(apperrors.ErrCodeInternal, "deleting record", err)
	}
	return nil
}

func (s *FileStore) read(name string) (*Record, error) {
	data, err := os.ReadFile(s.path(name))
	if os.IsNotExist(err) {
		return nil, apperrors.NewWithContext(apperrors.ErrCodeNotFound,
			"deployment not found", map[string]any{"name": name})
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal, "reading record", err)
	}

	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, apperrors.WrapWithContext(apperrors.ErrCodeInternal,
			"decoding record", err, map[string]any{"name": name})
	}
	return &record, nil
}

func (s *FileStore) write(record *Record) error {
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return apperrors.Wrap(apperrors.ErrCodeInternal, "encoding record", err)
	}

	tmp, err := os.CreateTemp(s.dir, record.Name+".*.tmp")
	if err != nil {
		return apperrors.Wrap(apperrors.ErrCodeInternal, "creating temp record", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return apperrors.Wrap(apperrors.ErrCodeInternal, "writing record", err)
	}
	if err := tmp.Close(); err != nil {
		return apperrors.Wrap(apperrors.ErrCodeInternal, "closing temp record", err)
	}
	if err := os.Rename(tmp.Name(), s.path(record.Name)); err != nil {
		return apperrors.Wrap(apperrors.ErrCodeInternal, "committing record", err)
	}
	return nil
}
