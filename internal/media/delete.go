package media

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/caronelabs/mediad/internal/storage"
)

// BatchFailure pairs a record id with the reason its deletion failed.
type BatchFailure struct {
	ID     int64  `json:"id"`
	Reason string `json:"reason"`
}

// BatchResult reports a batch deletion. Failures never abort the batch;
// every requested id lands in exactly one of the two lists.
type BatchResult struct {
	Succeeded []int64        `json:"succeeded"`
	Failed    []BatchFailure `json:"failed"`
}

// SweepResult reports an orphan sweep: disk paths removed plus per-file
// errors for anything that could not be listed or deleted.
type SweepResult struct {
	Removed []string `json:"removed"`
	Errors  []string `json:"errors,omitempty"`
}

// DeleteService removes media records and their backing files.
type DeleteService struct {
	logger *slog.Logger
	repo   Repository
	disks  *storage.Manager
	layout Layout
	rules  Rules
}

func NewDeleteService(log *slog.Logger, repo Repository, disks *storage.Manager, layout Layout, rules Rules) *DeleteService {
	if log == nil {
		log = slog.Default()
	}
	return &DeleteService{
		logger: log.With(slog.String("service", "media_delete")),
		repo:   repo,
		disks:  disks,
		layout: layout,
		rules:  rules,
	}
}

// DeleteOne removes the asset with id: its primary file and thumbnail
// first, then the record. File deletion is idempotent, so a record whose
// file already vanished still gets cleaned up.
func (s *DeleteService) DeleteOne(ctx context.Context, id int64) error {
	asset, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if loc, ok := asset.Location(); ok {
		disk, err := s.disks.Disk(loc.Disk)
		if err != nil {
			return err
		}
		primary := s.layout.DiskPath(loc.RelativePath())
		if err := disk.Delete(ctx, primary); err != nil {
			return storageErr("delete", loc.Disk, primary, err)
		}
		if asset.ThumbnailPath != "" {
			thumb := s.layout.ThumbnailDiskPath(asset.ThumbnailPath)
			if err := disk.Delete(ctx, thumb); err != nil {
				return storageErr("delete", loc.Disk, thumb, err)
			}
		}
	}

	if err := s.repo.DeleteByID(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		// Files are already gone at this point; name the record so the
		// caller can reconcile.
		return storageErr("delete_record", asset.Disk, fmt.Sprintf("record %d", id), err)
	}
	s.logger.Info("deleted media", slog.Int64("id", id), slog.String("kind", string(asset.Kind)))
	return nil
}

// DeleteMany removes each asset independently. One failing id never blocks
// the rest.
func (s *DeleteService) DeleteMany(ctx context.Context, ids []int64) BatchResult {
	result := BatchResult{Succeeded: []int64{}, Failed: []BatchFailure{}}
	for _, id := range ids {
		if err := s.DeleteOne(ctx, id); err != nil {
			result.Failed = append(result.Failed, BatchFailure{ID: id, Reason: err.Error()})
			continue
		}
		result.Succeeded = append(result.Succeeded, id)
	}
	return result
}

// DeleteByKind removes every asset of the given kind matching the optional
// filters (keys "source" and "disk"). The kind must be enabled.
func (s *DeleteService) DeleteByKind(ctx context.Context, kind Kind, filters map[string]string) (BatchResult, error) {
	if !s.rules.KindEnabled(kind) {
		return BatchResult{}, NewValidationError(fmt.Sprintf("media kind %q is disabled", kind))
	}
	assets, err := s.repo.FindWhere(ctx, kind, filters)
	if err != nil {
		return BatchResult{}, err
	}
	ids := make([]int64, 0, len(assets))
	for _, a := range assets {
		ids = append(ids, a.ID)
	}
	return s.DeleteMany(ctx, ids), nil
}

// SweepOrphans deletes files in the kind's directory on the default disk
// that no local record of that kind references. The thumbnail subtree is
// never a source of orphans; a thumbnail is removed only as the counterpart
// of a removed orphan primary. Per-file failures accumulate without stopping
// the sweep.
func (s *DeleteService) SweepOrphans(ctx context.Context, kind Kind) (SweepResult, error) {
	if _, err := ParseKind(string(kind)); err != nil {
		return SweepResult{}, NewValidationError(fmt.Sprintf("unknown media kind %q", kind))
	}

	diskName := s.disks.DefaultName()
	disk, err := s.disks.Disk(diskName)
	if err != nil {
		return SweepResult{}, err
	}

	assets, err := s.repo.FindWhere(ctx, kind, map[string]string{
		"source": string(SourceLocal),
		"disk":   diskName,
	})
	if err != nil {
		return SweepResult{}, err
	}

	// Records store relative paths; keying by disk paths lets us compare
	// against ListFiles output directly.
	recorded := make(map[string]struct{}, len(assets))
	for _, a := range assets {
		recorded[s.layout.DiskPath(a.Path)] = struct{}{}
	}

	result := SweepResult{Removed: []string{}}

	primaryDir := s.layout.Dir(string(kind))
	thumbDir := s.layout.ThumbnailDir(string(kind))

	files, err := disk.ListFiles(ctx, primaryDir)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("list %s: %v", primaryDir, err))
		return result, nil
	}
	for _, f := range files {
		// The thumbnail subtree may nest under the primary directory; its
		// files are never orphan candidates.
		if strings.HasPrefix(f, thumbDir+"/") {
			continue
		}
		if _, ok := recorded[f]; ok {
			continue
		}
		if err := disk.Delete(ctx, f); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("delete %s: %v", f, err))
			continue
		}
		result.Removed = append(result.Removed, f)

		// An orphan primary takes its thumbnail counterpart with it.
		thumb := s.layout.ThumbnailDiskPath(s.layout.Rel(f))
		if thumb == f {
			continue
		}
		ok, err := disk.Exists(ctx, thumb)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("stat %s: %v", thumb, err))
			continue
		}
		if !ok {
			continue
		}
		if err := disk.Delete(ctx, thumb); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("delete %s: %v", thumb, err))
			continue
		}
		result.Removed = append(result.Removed, thumb)
	}

	s.logger.Info("swept orphans",
		slog.String("kind", string(kind)),
		slog.Int("removed", len(result.Removed)),
		slog.Int("errors", len(result.Errors)),
	)
	return result, nil
}
