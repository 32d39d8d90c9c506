package status

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

//go:generate mockgen -destination=mocks/mock_status_persistence.go -package=mocks -source=persistence.go StatusPersistence

// StatusPersistence stores the last known sync status, so that a probe or a
// second console process can read the state of a running watch
//
//nolint:revive // This name is fine
type StatusPersistence interface {
	// SaveStatus replaces the stored status
	SaveStatus(ctx context.Context, status *SyncStatus) error

	// LoadStatus returns the stored status, or an empty SyncStatus if none
	// was saved yet
	LoadStatus(ctx context.Context) (*SyncStatus, error)
}

// fileStatusPersistence implements StatusPersistence with a JSON file
type fileStatusPersistence struct {
	path string
}

// NewFileStatusPersistence creates a file-based status persistence writing to path
func NewFileStatusPersistence(path string) StatusPersistence {
	return &fileStatusPersistence{path: path}
}

// SaveStatus writes the status atomically under an exclusive file lock
func (f *fileStatusPersistence) SaveStatus(_ context.Context, status *SyncStatus) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0750); err != nil {
		return fmt.Errorf("failed to create status directory: %w", err)
	}

	data, err := json.MarshalIndent(status, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal status data: %w", err)
	}

	// Two watchers sharing a status file must not interleave temp file writes
	lock := flock.New(f.path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("failed to lock status file: %w", err)
	}
	defer func() { _ = lock.Unlock() }()

	// Write to temporary file first for atomic operation
	tempPath := f.path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write temporary status file: %w", err)
	}

	if err := os.Rename(tempPath, f.path); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to rename status file: %w", err)
	}

	return nil
}

// LoadStatus reads the status file
func (f *fileStatusPersistence) LoadStatus(_ context.Context) (*SyncStatus, error) {
	// #nosec G304 -- path comes from the operator's own flag
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &SyncStatus{}, nil
		}
		return nil, fmt.Errorf("failed to read status file: %w", err)
	}

	var status SyncStatus
	if err := json.Unmarshal(data, &status); err != nil {
		return nil, fmt.Errorf("failed to unmarshal status data: %w", err)
	}

	return &status, nil
}
