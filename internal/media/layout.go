package media

import (
	"strings"

	"github.com/caronelabs/mediad/internal/config"
)

// Layout maps relative asset paths onto disk paths through the configured
// storage templates. Primary files and thumbnails live under separate
// template subtrees so their names never collide.
type Layout struct {
	PathTemplate      string
	ThumbnailTemplate string
}

// NewLayout builds a Layout from storage config, applying the defaults for
// missing templates.
func NewLayout(cfg config.StorageConfig) Layout {
	l := Layout{
		PathTemplate:      cfg.PathTemplate,
		ThumbnailTemplate: cfg.ThumbnailTemplate,
	}
	if l.PathTemplate == "" {
		l.PathTemplate = config.DefaultPathTemplate
	}
	if l.ThumbnailTemplate == "" {
		l.ThumbnailTemplate = config.DefaultThumbnailTemplate
	}
	return l
}

// DiskPath returns the on-disk path for a primary asset's relative path.
func (l Layout) DiskPath(rel string) string {
	return ResolveStoragePath(l.PathTemplate, rel)
}

// ThumbnailDiskPath returns the on-disk path for a thumbnail's relative path.
func (l Layout) ThumbnailDiskPath(rel string) string {
	return ResolveStoragePath(l.ThumbnailTemplate, rel)
}

// Rel reverses DiskPath: it strips the primary template's root from an
// on-disk path, yielding the relative path stored on records.
func (l Layout) Rel(diskPath string) string {
	root := trimTemplateDir(l.PathTemplate, "")
	if root == "" {
		return diskPath
	}
	return strings.TrimPrefix(diskPath, root+"/")
}

// Dir returns the on-disk directory that holds primary files for the given
// logical directory.
func (l Layout) Dir(dir string) string {
	return trimTemplateDir(l.PathTemplate, dir)
}

// ThumbnailDir returns the on-disk directory that holds thumbnails for the
// given logical directory.
func (l Layout) ThumbnailDir(dir string) string {
	return trimTemplateDir(l.ThumbnailTemplate, dir)
}

func trimTemplateDir(template, dir string) string {
	resolved := ResolveStoragePath(template, strings.Trim(dir, "/"))
	return strings.Trim(resolved, "/")
}
