package media

import (
	"io"
	"time"
)

// Source records where an asset's bytes live.
type Source string

const (
	SourceLocal    Source = "local"
	SourceExternal Source = "external"
)

// Meta bag keys written during ingestion.
const (
	MetaOriginalName   = "original_name"
	MetaSize           = "size"
	MetaMimeType       = "mime_type"
	MetaProcessed      = "processed"
	MetaFinalExtension = "final_extension"
	MetaHost           = "host"
)

// Asset is a persisted media record. Exactly one of Path (source=local) or
// URL (source=external) is populated. ThumbnailPath, when set, is the
// relative path of the derived thumbnail on the same disk and only exists
// for image assets. It resolves through the thumbnail storage template, not
// the primary one: its value usually equals Path character for character,
// and only the template tells the two files apart on disk.
type Asset struct {
	ID            int64          `json:"id"`
	Kind          Kind           `json:"kind"`
	Source        Source         `json:"source"`
	Path          string         `json:"path,omitempty"`
	Disk          string         `json:"disk,omitempty"`
	URL           string         `json:"url,omitempty"`
	DisplayName   string         `json:"display_name"`
	Description   string         `json:"description,omitempty"`
	Date          time.Time      `json:"date"`
	Meta          map[string]any `json:"meta,omitempty"`
	ThumbnailPath string         `json:"thumbnail_path,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// Location rebuilds the asset's FileLocation. Returns false for external
// assets, which have no backing file.
func (a Asset) Location() (FileLocation, bool) {
	if a.Source != SourceLocal || a.Path == "" {
		return FileLocation{}, false
	}
	return LocationFromPath(a.Path, a.Disk), true
}

// StoreLocalRequest carries a validated local upload.
type StoreLocalRequest struct {
	// Kind may be empty; it is then detected from the file extension.
	Kind Kind
	// Payload provides the raw bytes. The caller owns the reader.
	Payload io.Reader
	// OriginalName is the client-side file name; its extension drives kind
	// detection and MIME resolution.
	OriginalName string
	// FileName, when set, is an explicit base name that must not collide.
	FileName string
	// Directory is the logical sub-directory under the storage template.
	Directory string
	// Disk overrides the default disk when set.
	Disk string

	DisplayName string
	Description string
	Date        time.Time
	Meta        map[string]any

	// DeclaredMime is the content type declared by the uploader.
	DeclaredMime string
	// Size is the payload size in bytes when known (0 = unknown).
	Size int64
	// GenerateThumbnail requests thumbnail derivation for supporting kinds.
	GenerateThumbnail bool
}

// StoreExternalRequest carries an externally hosted media reference.
type StoreExternalRequest struct {
	Kind        Kind
	URL         string
	DisplayName string
	Description string
	Date        time.Time
	Meta        map[string]any
}

// File is a retrievable artifact: a stream handle plus serving metadata.
type File struct {
	Reader       io.ReadCloser
	ContentType  string
	AbsolutePath string
}

// Close releases the underlying stream.
func (f *File) Close() error {
	if f == nil || f.Reader == nil {
		return nil
	}
	return f.Reader.Close()
}
