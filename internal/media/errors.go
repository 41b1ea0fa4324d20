package media

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when an asset record or its backing file is missing.
var ErrNotFound = errors.New("media not found")

// ValidationError reports a request that violates upload constraints
// (disabled kind, missing fields, disallowed extension or content type).
// It is always surfaced before any disk write.
type ValidationError struct {
	Reason string
}

// NewValidationError creates a ValidationError with the given reason.
func NewValidationError(reason string) *ValidationError {
	return &ValidationError{Reason: reason}
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Reason
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// NameConflictError reports that an explicitly requested filename is already
// occupied on disk.
type NameConflictError struct {
	Path string
}

func (e *NameConflictError) Error() string {
	return fmt.Sprintf("file already exists at %q", e.Path)
}

// IsNameConflict reports whether err is a NameConflictError.
func IsNameConflict(err error) bool {
	var nc *NameConflictError
	return errors.As(err, &nc)
}

// StorageError reports a disk or record-store failure with the offending
// location attached so callers can reconcile.
type StorageError struct {
	Op   string
	Disk string
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s failed (disk=%s path=%s): %v", e.Op, e.Disk, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func storageErr(op, disk, path string, err error) *StorageError {
	return &StorageError{Op: op, Disk: disk, Path: path, Err: err}
}
