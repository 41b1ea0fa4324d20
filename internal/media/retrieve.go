package media

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/caronelabs/mediad/internal/storage"
)

// GetService resolves stored media records and their files.
type GetService struct {
	logger     *slog.Logger
	repo       Repository
	disks      *storage.Manager
	layout     Layout
	rules      Rules
	strategies *Registry
}

func NewGetService(log *slog.Logger, repo Repository, disks *storage.Manager, layout Layout, rules Rules, strategies *Registry) *GetService {
	if log == nil {
		log = slog.Default()
	}
	return &GetService{
		logger:     log.With(slog.String("service", "media_get")),
		repo:       repo,
		disks:      disks,
		layout:     layout,
		rules:      rules,
		strategies: strategies,
	}
}

// GetByID returns the record for id, or ErrNotFound.
func (s *GetService) GetByID(ctx context.Context, id int64) (Asset, error) {
	return s.repo.GetByID(ctx, id)
}

// EnabledKinds lists the kinds accepted for ingestion.
func (s *GetService) EnabledKinds() []Kind {
	return s.rules.EnabledKinds()
}

// SupportedExtensions lists the extensions accepted for a kind.
func (s *GetService) SupportedExtensions(kind Kind) []string {
	return s.rules.SupportedExtensions(kind)
}

// FetchPrimary resolves the primary file of the asset with id. External
// assets have no file and yield a validation error.
func (s *GetService) FetchPrimary(ctx context.Context, id int64) (*File, error) {
	asset, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	strategy, err := s.strategies.For(asset.Kind)
	if err != nil {
		return nil, err
	}
	return strategy.FetchPrimary(ctx, asset)
}

// FetchThumbnail resolves the thumbnail of the asset with id. (nil, nil)
// means the asset exists but carries no thumbnail.
func (s *GetService) FetchThumbnail(ctx context.Context, id int64) (*File, error) {
	asset, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	strategy, err := s.strategies.For(asset.Kind)
	if err != nil {
		return nil, err
	}
	if !strategy.SupportsThumbnail() {
		return nil, nil
	}
	return strategy.FetchThumbnail(ctx, asset)
}

// ServeByName opens the file stored as kind/fileName on the default disk.
// This is the direct serving path behind GET /media/:kind/:file.
func (s *GetService) ServeByName(ctx context.Context, kind Kind, fileName string) (*File, error) {
	return s.openAt(ctx, s.layout.DiskPath(relPathOf(kind, fileName)))
}

// ServeThumbnailByName opens the thumbnail counterpart of kind/fileName.
func (s *GetService) ServeThumbnailByName(ctx context.Context, kind Kind, fileName string) (*File, error) {
	return s.openAt(ctx, s.layout.ThumbnailDiskPath(relPathOf(kind, fileName)))
}

func (s *GetService) openAt(ctx context.Context, diskPath string) (*File, error) {
	diskName := s.disks.DefaultName()
	disk, err := s.disks.Disk(diskName)
	if err != nil {
		return nil, err
	}
	exists, err := disk.Exists(ctx, diskPath)
	if err != nil {
		return nil, storageErr("probe", diskName, diskPath, err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, diskPath)
	}
	reader, err := disk.Open(ctx, diskPath)
	if err != nil {
		return nil, storageErr("open", diskName, diskPath, err)
	}
	return &File{
		Reader:       reader,
		ContentType:  ContentTypeForExtension(ExtensionOf(diskPath)),
		AbsolutePath: disk.AbsolutePath(diskPath),
	}, nil
}

func relPathOf(kind Kind, fileName string) string {
	return string(kind) + "/" + fileName
}
