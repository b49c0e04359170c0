package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
)

// BundleStore persists a single record at a fixed path. It backs the durable
// client state that survives restarts, like the auth bundle. A missing or
// malformed file reads as absent rather than an error.
type BundleStore[T ValidatingSpec] struct {
	path string

	mu sync.Mutex
}

func NewBundleStore[T ValidatingSpec](path string) *BundleStore[T] {
	return &BundleStore[T]{path: path}
}

// Load reads the persisted record. The second return is false when the file
// is absent, unreadable, or fails validation.
func (s *BundleStore[T]) Load() (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero T

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			slog.Warn("reading bundle", "path", s.path, "error", err)
		}
		return zero, false
	}

	var spec T
	asset := &Asset[T]{Spec: spec}
	if err := json.Unmarshal(data, asset); err != nil {
		slog.Warn("unmarshalling bundle, treating as absent", "path", s.path, "error", err)
		return zero, false
	}
	if err := asset.Validate(); err != nil {
		slog.Warn("validating bundle, treating as absent", "path", s.path, "error", err)
		return zero, false
	}

	return asset.Spec, true
}

// Save writes the record under the given identifier.
func (s *BundleStore[T]) Save(id string, o T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	asset := &Asset[T]{
		Version:    1,
		Identifier: Identifier(id),
		Spec:       o,
	}

	jsonData, err := json.Marshal(asset)
	if err != nil {
		return fmt.Errorf("marshalling json: %w", err)
	}

	return atomicWrite(s.path, jsonData, 0600)
}

// Delete removes the persisted record. Deleting an absent record is not an
// error.
func (s *BundleStore[T]) Delete() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing bundle: %w", err)
	}
	return nil
}

// atomicWrite writes data to a temp file then renames it to the target path.
// This prevents partial or empty files if the process is interrupted.
func atomicWrite(path string, data []byte, perm os.FileMode) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, perm); err != nil {
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		if removeErr := os.Remove(tmp); removeErr != nil {
			slog.Warn("failed to remove temp file after rename failure", "path", tmp, "error", removeErr)
		}
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
