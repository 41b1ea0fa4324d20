package storage

import (
	"context"
	"io"
	"os"
	"strings"
	"testing"
)

func testDisks(t *testing.T) map[string]Disk {
	t.Helper()
	local, err := NewLocalDisk(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalDisk: %v", err)
	}
	return map[string]Disk{
		"local": local,
		"mem":   NewMemDisk(),
	}
}

func TestDiskRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, disk := range testDisks(t) {
		t.Run(name, func(t *testing.T) {
			if err := disk.Write(ctx, "media/images/photo.jpg", strings.NewReader("payload")); err != nil {
				t.Fatalf("Write: %v", err)
			}

			ok, err := disk.Exists(ctx, "media/images/photo.jpg")
			if err != nil || !ok {
				t.Fatalf("Exists = %v, %v; want true, nil", ok, err)
			}

			r, err := disk.Open(ctx, "media/images/photo.jpg")
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			data, err := io.ReadAll(r)
			_ = r.Close()
			if err != nil || string(data) != "payload" {
				t.Fatalf("read %q, %v; want \"payload\", nil", data, err)
			}
		})
	}
}

func TestDiskDeleteIdempotent(t *testing.T) {
	ctx := context.Background()
	for name, disk := range testDisks(t) {
		t.Run(name, func(t *testing.T) {
			if err := disk.Write(ctx, "media/a.txt", strings.NewReader("x")); err != nil {
				t.Fatalf("Write: %v", err)
			}
			if err := disk.Delete(ctx, "media/a.txt"); err != nil {
				t.Fatalf("Delete: %v", err)
			}
			// Second delete of the same path must succeed.
			if err := disk.Delete(ctx, "media/a.txt"); err != nil {
				t.Fatalf("Delete (missing): %v", err)
			}
			ok, err := disk.Exists(ctx, "media/a.txt")
			if err != nil || ok {
				t.Fatalf("Exists after delete = %v, %v; want false, nil", ok, err)
			}
		})
	}
}

func TestDiskListFiles(t *testing.T) {
	ctx := context.Background()
	for name, disk := range testDisks(t) {
		t.Run(name, func(t *testing.T) {
			files := []string{"media/image/a.jpg", "media/image/b.jpg", "media/image/nested/c.jpg", "media/video/d.mp4"}
			for _, f := range files {
				if err := disk.Write(ctx, f, strings.NewReader(f)); err != nil {
					t.Fatalf("Write %s: %v", f, err)
				}
			}

			listed, err := disk.ListFiles(ctx, "media/image")
			if err != nil {
				t.Fatalf("ListFiles: %v", err)
			}
			if len(listed) != 3 {
				t.Fatalf("ListFiles returned %d entries (%v), want 3", len(listed), listed)
			}
			for _, p := range listed {
				if !strings.HasPrefix(p, "media/image/") {
					t.Fatalf("listed path %q outside prefix", p)
				}
			}
		})
	}
}

func TestLocalDiskRejectsEscape(t *testing.T) {
	disk, err := NewLocalDisk(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalDisk: %v", err)
	}
	// Cleaning pins the path inside the root, so no error but no escape either.
	if err := disk.Write(context.Background(), "../outside.txt", strings.NewReader("x")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := os.Stat(disk.AbsolutePath("outside.txt")); err != nil {
		t.Fatalf("expected escape attempt to be stored under the root: %v", err)
	}
}

func TestManagerResolvesDefault(t *testing.T) {
	disks := map[string]Disk{"public": NewMemDisk(), "archive": NewMemDisk()}
	m, err := NewManager(disks, "public")
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	d, err := m.Disk("")
	if err != nil || d != disks["public"] {
		t.Fatalf("Disk(\"\") = %v, %v; want default disk", d, err)
	}
	if _, err := m.Disk("archive"); err != nil {
		t.Fatalf("Disk(archive): %v", err)
	}
	if _, err := m.Disk("nope"); err == nil {
		t.Fatal("expected error for unknown disk")
	}
}

func TestManagerRequiresValidDefault(t *testing.T) {
	if _, err := NewManager(map[string]Disk{"a": NewMemDisk()}, "b"); err == nil {
		t.Fatal("expected error when default disk is not configured")
	}
}
