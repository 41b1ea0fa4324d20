package media

import "testing"

func TestLocationRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		path string
		disk string
	}{
		{name: "nested", path: "image/sunset.jpg", disk: "local"},
		{name: "deep", path: "image/2026/08/sunset.jpg", disk: "local"},
		{name: "no directory", path: "sunset.jpg", disk: "s3"},
		{name: "empty extension keeps dot", path: "document/readme.", disk: "local"},
		{name: "dotted base", path: "audio/my.best.take.mp3", disk: "local"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc := LocationFromPath(tt.path, tt.disk)
			if got := loc.RelativePath(); got != tt.path {
				t.Fatalf("RelativePath() = %q, want %q", got, tt.path)
			}
			if loc.Disk != tt.disk {
				t.Fatalf("Disk = %q, want %q", loc.Disk, tt.disk)
			}
		})
	}
}

func TestLocationFromPathSplit(t *testing.T) {
	loc := LocationFromPath("image/2026/my.best.take.mp3", "local")
	if loc.Directory != "image/2026" {
		t.Errorf("Directory = %q, want %q", loc.Directory, "image/2026")
	}
	if loc.Name != "my.best.take" {
		t.Errorf("Name = %q, want %q", loc.Name, "my.best.take")
	}
	if loc.Extension != "mp3" {
		t.Errorf("Extension = %q, want %q", loc.Extension, "mp3")
	}
}

func TestFileNameAlwaysEmitsDot(t *testing.T) {
	loc := NewFileLocation("notes", "", "local", "document")
	if got := loc.FileName(); got != "notes." {
		t.Fatalf("FileName() = %q, want %q", got, "notes.")
	}
	back := LocationFromPath(loc.RelativePath(), "local")
	if back.Name != "notes" || back.Extension != "" {
		t.Fatalf("round trip = (%q, %q), want (notes, \"\")", back.Name, back.Extension)
	}
}

func TestStoragePathTemplates(t *testing.T) {
	loc := NewFileLocation("sunset", "jpg", "local", "image")
	if got := loc.StoragePath("media/{path}"); got != "media/image/sunset.jpg" {
		t.Fatalf("StoragePath = %q", got)
	}
	if got := ResolveStoragePath("media/thumbnails/{path}", "image/sunset.jpg"); got != "media/thumbnails/image/sunset.jpg" {
		t.Fatalf("ResolveStoragePath = %q", got)
	}
}

func TestLayoutRelInvertsDiskPath(t *testing.T) {
	l := Layout{PathTemplate: "media/{path}", ThumbnailTemplate: "media/thumbnails/{path}"}
	if got := l.Rel(l.DiskPath("image/sunset.jpg")); got != "image/sunset.jpg" {
		t.Fatalf("Rel = %q", got)
	}

	bare := Layout{PathTemplate: "{path}", ThumbnailTemplate: "thumbs/{path}"}
	if got := bare.Rel("image/sunset.jpg"); got != "image/sunset.jpg" {
		t.Fatalf("Rel with bare template = %q", got)
	}
}
