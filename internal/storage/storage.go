// Package storage defines the Disk interface for blob storage backends.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// ErrDiskNotFound is returned by the Manager for an unknown disk name.
var ErrDiskNotFound = errors.New("disk not found")

// Disk abstracts a named blob storage backend. Paths are slash-separated and
// relative to the disk root.
type Disk interface {
	// Exists reports whether a file is present at path.
	Exists(ctx context.Context, path string) (bool, error)
	// Write stores the reader's bytes at path, replacing any existing file.
	Write(ctx context.Context, path string, r io.Reader) error
	// Open returns a reader for the file at path.
	Open(ctx context.Context, path string) (io.ReadCloser, error)
	// Delete removes the file at path. Deleting a missing path is not an error.
	Delete(ctx context.Context, path string) error
	// ListFiles returns the paths of all files under the given directory
	// prefix, recursively.
	ListFiles(ctx context.Context, prefix string) ([]string, error)
	// AbsolutePath returns a backend-specific physical location for path,
	// suitable for direct streaming.
	AbsolutePath(path string) string
}

// Manager resolves named disks.
type Manager struct {
	disks       map[string]Disk
	defaultName string
}

// NewManager creates a Manager over the given disks. defaultName must be a
// key of disks.
func NewManager(disks map[string]Disk, defaultName string) (*Manager, error) {
	if len(disks) == 0 {
		return nil, errors.New("at least one disk is required")
	}
	if _, ok := disks[defaultName]; !ok {
		return nil, fmt.Errorf("default disk %q is not configured", defaultName)
	}
	return &Manager{disks: disks, defaultName: defaultName}, nil
}

// Disk returns the disk registered under name, or the default disk when name
// is empty.
func (m *Manager) Disk(name string) (Disk, error) {
	if name == "" {
		name = m.defaultName
	}
	d, ok := m.disks[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrDiskNotFound, name)
	}
	return d, nil
}

// DefaultName returns the name of the default disk.
func (m *Manager) DefaultName() string {
	return m.defaultName
}
