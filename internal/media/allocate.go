package media

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/caronelabs/mediad/internal/storage"
)

// Allocator picks collision-free base names inside a storage directory by
// probing file existence on a disk.
//
// The probe and the eventual write are not serialized: two concurrent
// non-explicit allocations for the same base name can observe the same free
// suffix and the later writer wins. Callers needing strict concurrent safety
// must serialize per (disk, directory, base name).
type Allocator struct{}

// Allocate returns a free base name for directory/base.extension on disk.
//
// When explicit is true the caller chose the name: if the path is occupied,
// a NameConflictError naming it is returned and the name is never altered.
// Otherwise the desired name is sanitized and probed as base.ext, base_1.ext,
// base_2.ext, ... until a free slot is found.
func (Allocator) Allocate(ctx context.Context, disk storage.Disk, directory, desired, extension string, explicit bool) (string, error) {
	if explicit {
		path := joinDir(directory, desired+"."+extension)
		exists, err := disk.Exists(ctx, path)
		if err != nil {
			return "", storageErr("probe", "", path, err)
		}
		if exists {
			return "", &NameConflictError{Path: path}
		}
		return desired, nil
	}

	base := SanitizeFileName(desired)
	candidate := base
	for i := 1; ; i++ {
		path := joinDir(directory, candidate+"."+extension)
		exists, err := disk.Exists(ctx, path)
		if err != nil {
			return "", storageErr("probe", "", path, err)
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s_%d", base, i)
	}
}

// SanitizeFileName slugs a base name: lowercase, alphanumeric runs kept,
// everything else collapsed to single dashes. An empty result is replaced
// with a generated unique token.
func SanitizeFileName(name string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		return "file-" + uuid.NewString()[:8]
	}
	return slug
}

func joinDir(directory, file string) string {
	dir := strings.Trim(directory, "/")
	if dir == "" {
		return file
	}
	return dir + "/" + file
}
