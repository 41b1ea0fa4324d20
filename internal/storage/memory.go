package storage

import (
	"bytes"
	"context"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
)

// MemDisk is an in-memory Disk, used by tests and ephemeral deployments.
type MemDisk struct {
	mu    sync.RWMutex
	files map[string][]byte
}

// NewMemDisk creates an empty in-memory disk.
func NewMemDisk() *MemDisk {
	return &MemDisk{files: make(map[string][]byte)}
}

func normalize(path string) string {
	return strings.Trim(strings.ReplaceAll(path, "//", "/"), "/")
}

func (d *MemDisk) Exists(_ context.Context, path string) (bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.files[normalize(path)]
	return ok, nil
}

func (d *MemDisk) Write(_ context.Context, path string, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.files[normalize(path)] = data
	return nil
}

func (d *MemDisk) Open(_ context.Context, path string) (io.ReadCloser, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	data, ok := d.files[normalize(path)]
	if !ok {
		return nil, os.ErrNotExist
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (d *MemDisk) Delete(_ context.Context, path string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.files, normalize(path))
	return nil
}

func (d *MemDisk) ListFiles(_ context.Context, prefix string) ([]string, error) {
	prefix = normalize(prefix)
	d.mu.RLock()
	defer d.mu.RUnlock()
	var paths []string
	for p := range d.files {
		if prefix == "" || p == prefix || strings.HasPrefix(p, prefix+"/") {
			paths = append(paths, p)
		}
	}
	sort.Strings(paths)
	return paths, nil
}

func (d *MemDisk) AbsolutePath(path string) string {
	return "mem://" + normalize(path)
}
