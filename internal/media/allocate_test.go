package media

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/caronelabs/mediad/internal/storage"
)

func TestAllocateSuffixesOnCollision(t *testing.T) {
	ctx := context.Background()
	disk := storage.NewMemDisk()
	var alloc Allocator

	want := []string{"photo", "photo_1", "photo_2"}
	for _, expected := range want {
		name, err := alloc.Allocate(ctx, disk, "media/image", "photo", "jpg", false)
		if err != nil {
			t.Fatalf("Allocate: %v", err)
		}
		if name != expected {
			t.Fatalf("Allocate = %q, want %q", name, expected)
		}
		if err := disk.Write(ctx, "media/image/"+name+".jpg", bytes.NewReader([]byte("x"))); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
}

func TestAllocateSuffixCountsPerExtension(t *testing.T) {
	ctx := context.Background()
	disk := storage.NewMemDisk()
	var alloc Allocator

	if err := disk.Write(ctx, "media/image/photo.png", bytes.NewReader([]byte("x"))); err != nil {
		t.Fatalf("Write: %v", err)
	}
	name, err := alloc.Allocate(ctx, disk, "media/image", "photo", "jpg", false)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if name != "photo" {
		t.Fatalf("Allocate = %q, want photo: a different extension is no collision", name)
	}
}

func TestAllocateExplicitConflict(t *testing.T) {
	ctx := context.Background()
	disk := storage.NewMemDisk()
	var alloc Allocator

	name, err := alloc.Allocate(ctx, disk, "media/image", "Cover-Art", "jpg", true)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if name != "Cover-Art" {
		t.Fatalf("explicit name must pass through unchanged, got %q", name)
	}

	if err := disk.Write(ctx, "media/image/Cover-Art.jpg", bytes.NewReader([]byte("x"))); err != nil {
		t.Fatalf("Write: %v", err)
	}
	_, err = alloc.Allocate(ctx, disk, "media/image", "Cover-Art", "jpg", true)
	if !IsNameConflict(err) {
		t.Fatalf("want NameConflictError, got %v", err)
	}
}

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Sunset Over Water", "sunset-over-water"},
		{"IMG_2041.final", "img-2041-final"},
		{"--weird--name--", "weird-name"},
		{"Déjà vu!", "d-j-vu"},
		{"photo", "photo"},
	}
	for _, tt := range tests {
		if got := SanitizeFileName(tt.in); got != tt.want {
			t.Errorf("SanitizeFileName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSanitizeFileNameEmptyGetsToken(t *testing.T) {
	got := SanitizeFileName("!!!")
	if !strings.HasPrefix(got, "file-") || len(got) != len("file-")+8 {
		t.Fatalf("SanitizeFileName(%q) = %q, want generated file-xxxxxxxx token", "!!!", got)
	}
}
