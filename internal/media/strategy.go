package media

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"time"

	"github.com/caronelabs/mediad/internal/storage"
)

// ImagePipeline is the transform surface the image strategy needs. Satisfied
// by *imgproc.Pipeline.
type ImagePipeline interface {
	Enabled() bool
	ThumbnailEnabled() bool
	Process(data []byte, sourceExt string) ([]byte, string, error)
	Thumbnail(data []byte) ([]byte, string, error)
}

// Strategy is the per-kind ingestion and retrieval behavior. Every kind has
// exactly one strategy; the set is closed.
type Strategy interface {
	// Kind is the fixed discriminator for this strategy.
	Kind() Kind
	// StoreLocal writes an uploaded payload to disk and persists its record.
	StoreLocal(ctx context.Context, req StoreLocalRequest) (Asset, error)
	// StoreExternal persists a record pointing at an external URL. No disk I/O.
	StoreExternal(ctx context.Context, req StoreExternalRequest) (Asset, error)
	// FetchPrimary resolves the asset's file and returns a stream handle
	// with its content type. A record pointing at a missing file yields
	// ErrNotFound.
	FetchPrimary(ctx context.Context, asset Asset) (*File, error)
	// SupportsThumbnail reports whether this kind derives thumbnails.
	SupportsThumbnail() bool
	// FetchThumbnail returns the asset's thumbnail, or (nil, nil) when no
	// thumbnail is recorded or its file is missing.
	FetchThumbnail(ctx context.Context, asset Asset) (*File, error)
}

// Registry holds the closed kind->Strategy table.
type Registry struct {
	strategies map[Kind]Strategy
}

// NewRegistry builds the strategy table: the image strategy runs the
// transform pipeline, every other kind stores payloads verbatim.
func NewRegistry(log *slog.Logger, repo Repository, disks *storage.Manager, layout Layout, pipeline ImagePipeline) *Registry {
	if log == nil {
		log = slog.Default()
	}
	table := make(map[Kind]Strategy, len(Kinds()))
	for _, k := range Kinds() {
		base := baseStrategy{
			kind:   k,
			repo:   repo,
			disks:  disks,
			layout: layout,
			logger: log.With(slog.String("strategy", string(k))),
		}
		if k == KindImage {
			table[k] = &imageStrategy{baseStrategy: base, pipeline: pipeline}
		} else {
			s := base
			table[k] = &s
		}
	}
	return &Registry{strategies: table}
}

// For returns the strategy for kind.
func (r *Registry) For(kind Kind) (Strategy, error) {
	s, ok := r.strategies[kind]
	if !ok {
		return nil, NewValidationError(fmt.Sprintf("no strategy for kind %q", kind))
	}
	return s, nil
}

// baseStrategy stores payloads verbatim. It is the full behavior for video,
// audio, and document kinds and the shared machinery for images.
type baseStrategy struct {
	kind   Kind
	repo   Repository
	disks  *storage.Manager
	layout Layout
	alloc  Allocator
	logger *slog.Logger
}

func (s *baseStrategy) Kind() Kind              { return s.kind }
func (s *baseStrategy) SupportsThumbnail() bool { return false }

func (s *baseStrategy) StoreLocal(ctx context.Context, req StoreLocalRequest) (Asset, error) {
	data, err := io.ReadAll(req.Payload)
	if err != nil {
		return Asset{}, fmt.Errorf("read payload: %w", err)
	}
	ext := ExtensionOf(req.OriginalName)
	return s.writeAndRecord(ctx, req, data, ext, false, nil)
}

func (s *baseStrategy) StoreExternal(ctx context.Context, req StoreExternalRequest) (Asset, error) {
	meta := cloneMeta(req.Meta)
	if parsed, err := url.Parse(req.URL); err == nil && parsed.Host != "" {
		meta[MetaHost] = parsed.Host
	}

	asset := Asset{
		Kind:        s.kind,
		Source:      SourceExternal,
		URL:         req.URL,
		DisplayName: req.DisplayName,
		Description: req.Description,
		Date:        normalizeDate(req.Date),
		Meta:        meta,
	}
	created, err := s.repo.Create(ctx, asset)
	if err != nil {
		return Asset{}, fmt.Errorf("create media record: %w", err)
	}
	return created, nil
}

func (s *baseStrategy) FetchPrimary(ctx context.Context, asset Asset) (*File, error) {
	loc, ok := asset.Location()
	if !ok {
		return nil, NewValidationError("asset has no stored file")
	}
	disk, err := s.disks.Disk(loc.Disk)
	if err != nil {
		return nil, err
	}

	diskPath := s.layout.DiskPath(loc.RelativePath())
	exists, err := disk.Exists(ctx, diskPath)
	if err != nil {
		return nil, storageErr("probe", loc.Disk, diskPath, err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: file missing at %s", ErrNotFound, diskPath)
	}

	reader, err := disk.Open(ctx, diskPath)
	if err != nil {
		return nil, storageErr("open", loc.Disk, diskPath, err)
	}
	return &File{
		Reader:       reader,
		ContentType:  ContentTypeForExtension(loc.Extension),
		AbsolutePath: disk.AbsolutePath(diskPath),
	}, nil
}

func (s *baseStrategy) FetchThumbnail(_ context.Context, _ Asset) (*File, error) {
	return nil, nil
}

// thumbnailer derives and writes a thumbnail for an already-written primary
// file, returning its recorded path or "" when derivation is skipped or fails.
type thumbnailer func(ctx context.Context, disk storage.Disk, loc FileLocation, data []byte) string

// writeAndRecord allocates a location, writes data, and persists the record.
// Shared by the verbatim and image paths.
func (s *baseStrategy) writeAndRecord(ctx context.Context, req StoreLocalRequest, data []byte, ext string, processed bool, thumb thumbnailer) (Asset, error) {
	diskName := req.Disk
	if diskName == "" {
		diskName = s.disks.DefaultName()
	}
	disk, err := s.disks.Disk(diskName)
	if err != nil {
		return Asset{}, err
	}

	directory := req.Directory
	if directory == "" {
		directory = string(s.kind)
	}

	base := req.FileName
	explicit := base != ""
	if base == "" {
		base = req.DisplayName
	}
	if base == "" {
		base = BaseNameOf(req.OriginalName)
	}

	name, err := s.alloc.Allocate(ctx, disk, s.layout.Dir(directory), base, ext, explicit)
	if err != nil {
		return Asset{}, err
	}
	loc := NewFileLocation(name, ext, diskName, directory)

	diskPath := s.layout.DiskPath(loc.RelativePath())
	if err := disk.Write(ctx, diskPath, bytes.NewReader(data)); err != nil {
		return Asset{}, storageErr("write", diskName, diskPath, err)
	}

	size := req.Size
	if size == 0 {
		size = int64(len(data))
	}
	mime := NormalizeMime(req.DeclaredMime)
	if mime == "" {
		mime = ContentTypeForExtension(ext)
	}
	meta := cloneMeta(req.Meta)
	meta[MetaOriginalName] = req.OriginalName
	meta[MetaSize] = size
	meta[MetaMimeType] = mime
	meta[MetaProcessed] = processed
	meta[MetaFinalExtension] = ext

	var thumbPath string
	if thumb != nil {
		thumbPath = thumb(ctx, disk, loc, data)
	}

	asset := Asset{
		Kind:          s.kind,
		Source:        SourceLocal,
		Path:          loc.RelativePath(),
		Disk:          diskName,
		DisplayName:   req.DisplayName,
		Description:   req.Description,
		Date:          normalizeDate(req.Date),
		Meta:          meta,
		ThumbnailPath: thumbPath,
	}
	created, err := s.repo.Create(ctx, asset)
	if err != nil {
		return Asset{}, fmt.Errorf("create media record: %w", err)
	}
	return created, nil
}

func cloneMeta(meta map[string]any) map[string]any {
	out := make(map[string]any, len(meta)+4)
	for k, v := range meta {
		out[k] = v
	}
	return out
}

func normalizeDate(date time.Time) time.Time {
	if date.IsZero() {
		return time.Now().UTC()
	}
	return date
}
