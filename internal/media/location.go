package media

import "strings"

// FileLocation identifies where a file is or will be stored: base name
// (no extension), extension (no dot), disk name, and a directory that is
// logically rooted under the configured storage template. It is a value
// object; only its composed path string is persisted.
type FileLocation struct {
	Name      string
	Extension string
	Disk      string
	Directory string
}

// NewFileLocation constructs a FileLocation without touching storage.
func NewFileLocation(name, extension, disk, directory string) FileLocation {
	return FileLocation{
		Name:      name,
		Extension: extension,
		Disk:      disk,
		Directory: directory,
	}
}

// LocationFromPath splits a relative path into directory, base name, and
// extension. The directory is empty when the path has no slash; the
// extension is empty when the file name has no dot.
func LocationFromPath(path, disk string) FileLocation {
	dir := ""
	base := path
	if idx := strings.LastIndex(path, "/"); idx >= 0 {
		dir = path[:idx]
		base = path[idx+1:]
	}
	name := base
	ext := ""
	if idx := strings.LastIndex(base, "."); idx >= 0 {
		name = base[:idx]
		ext = base[idx+1:]
	}
	return FileLocation{Name: name, Extension: ext, Disk: disk, Directory: dir}
}

// FileName returns "name.extension". The dot is emitted even for an empty
// extension so the value round-trips through LocationFromPath.
func (l FileLocation) FileName() string {
	return l.Name + "." + l.Extension
}

// RelativePath joins the slash-trimmed directory and FileName with a single
// separator.
func (l FileLocation) RelativePath() string {
	dir := strings.Trim(l.Directory, "/")
	if dir == "" {
		return l.FileName()
	}
	return dir + "/" + l.FileName()
}

// StoragePath substitutes the relative path into a one-placeholder template
// (e.g. "media/{path}") to produce the on-disk path.
func (l FileLocation) StoragePath(template string) string {
	return ResolveStoragePath(template, l.RelativePath())
}

// ResolveStoragePath substitutes path into the template's {path} placeholder.
// An empty template yields the path unchanged.
func ResolveStoragePath(template, path string) string {
	if template == "" {
		return path
	}
	return strings.ReplaceAll(template, "{path}", path)
}
