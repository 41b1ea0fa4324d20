package media

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/caronelabs/mediad/internal/storage"
)

// imageStrategy runs uploads through the transform pipeline before storage
// and derives a thumbnail alongside the primary file.
type imageStrategy struct {
	baseStrategy
	pipeline ImagePipeline
}

func (s *imageStrategy) SupportsThumbnail() bool { return true }

// StoreLocal processes the payload first so the final extension (which may
// change under format conversion) names the file on disk.
func (s *imageStrategy) StoreLocal(ctx context.Context, req StoreLocalRequest) (Asset, error) {
	data, err := io.ReadAll(req.Payload)
	if err != nil {
		return Asset{}, fmt.Errorf("read payload: %w", err)
	}

	ext := ExtensionOf(req.OriginalName)
	processed := false
	if s.pipeline != nil && s.pipeline.Enabled() {
		out, outExt, perr := s.pipeline.Process(data, ext)
		if perr != nil {
			return Asset{}, NewValidationError(fmt.Sprintf("image processing failed: %v", perr))
		}
		data, ext, processed = out, outExt, true
	}

	var thumb thumbnailer
	if req.GenerateThumbnail && s.pipeline != nil && s.pipeline.ThumbnailEnabled() {
		thumb = s.deriveThumbnail
	}
	return s.writeAndRecord(ctx, req, data, ext, processed, thumb)
}

// deriveThumbnail writes the thumbnail next to the primary file under the
// thumbnail subtree, reusing the primary's base name. Derivation failure is
// logged and never fails the store.
func (s *imageStrategy) deriveThumbnail(ctx context.Context, disk storage.Disk, loc FileLocation, data []byte) string {
	tdata, text, err := s.pipeline.Thumbnail(data)
	if err != nil {
		s.logger.Warn("thumbnail derivation failed", slog.String("path", loc.RelativePath()), slog.Any("error", err))
		return ""
	}

	tloc := NewFileLocation(loc.Name, text, loc.Disk, loc.Directory)
	diskPath := s.layout.ThumbnailDiskPath(tloc.RelativePath())
	if err := disk.Write(ctx, diskPath, bytes.NewReader(tdata)); err != nil {
		s.logger.Warn("thumbnail write failed", slog.String("path", diskPath), slog.Any("error", err))
		return ""
	}
	return tloc.RelativePath()
}

// FetchThumbnail resolves the recorded thumbnail; a missing record or file
// is not an error.
func (s *imageStrategy) FetchThumbnail(ctx context.Context, asset Asset) (*File, error) {
	if asset.ThumbnailPath == "" {
		return nil, nil
	}
	diskName := asset.Disk
	disk, err := s.disks.Disk(diskName)
	if err != nil {
		return nil, err
	}

	diskPath := s.layout.ThumbnailDiskPath(asset.ThumbnailPath)
	exists, err := disk.Exists(ctx, diskPath)
	if err != nil {
		return nil, storageErr("probe", diskName, diskPath, err)
	}
	if !exists {
		return nil, nil
	}

	reader, err := disk.Open(ctx, diskPath)
	if err != nil {
		return nil, storageErr("open", diskName, diskPath, err)
	}
	return &File{
		Reader:       reader,
		ContentType:  ContentTypeForExtension(ExtensionOf(asset.ThumbnailPath)),
		AbsolutePath: disk.AbsolutePath(diskPath),
	}, nil
}
