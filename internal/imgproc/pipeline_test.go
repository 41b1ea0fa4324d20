package imgproc

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"

	"github.com/caronelabs/mediad/internal/config"
)

func testImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	return img
}

func encodeJPEG(t *testing.T, img image.Image) []byte {
	t.Helper()
	data, err := Encode(img, "jpg", 90)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	return data
}

func TestResizeNeverUpsizesWhenDisabled(t *testing.T) {
	out := Resize(testImage(50, 50), config.ResizeConfig{
		Enabled:             true,
		Width:               200,
		Height:              200,
		MaintainAspectRatio: true,
		Upsize:              false,
	})
	if out.Bounds().Dx() != 50 || out.Bounds().Dy() != 50 {
		t.Fatalf("got %dx%d, want 50x50", out.Bounds().Dx(), out.Bounds().Dy())
	}
}

func TestResizeUpsizesWhenPermitted(t *testing.T) {
	out := Resize(testImage(50, 50), config.ResizeConfig{
		Enabled:             true,
		Width:               200,
		Height:              200,
		MaintainAspectRatio: true,
		Upsize:              true,
	})
	if out.Bounds().Dx() != 200 || out.Bounds().Dy() != 200 {
		t.Fatalf("got %dx%d, want 200x200", out.Bounds().Dx(), out.Bounds().Dy())
	}
}

func TestResizePreservesAspectRatio(t *testing.T) {
	tests := []struct {
		name           string
		srcW, srcH     int
		cfg            config.ResizeConfig
		wantW, wantH   int
	}{
		{
			name: "width only",
			srcW: 400, srcH: 300,
			cfg:   config.ResizeConfig{Enabled: true, Width: 200, MaintainAspectRatio: true},
			wantW: 200, wantH: 150,
		},
		{
			name: "bounding box",
			srcW: 400, srcH: 300,
			cfg:   config.ResizeConfig{Enabled: true, Width: 200, Height: 200, MaintainAspectRatio: true},
			wantW: 200, wantH: 150,
		},
		{
			name: "exact when ratio not maintained",
			srcW: 400, srcH: 300,
			cfg:   config.ResizeConfig{Enabled: true, Width: 200, Height: 200, Upsize: true},
			wantW: 200, wantH: 200,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Resize(testImage(tt.srcW, tt.srcH), tt.cfg)
			if out.Bounds().Dx() != tt.wantW || out.Bounds().Dy() != tt.wantH {
				t.Fatalf("got %dx%d, want %dx%d", out.Bounds().Dx(), out.Bounds().Dy(), tt.wantW, tt.wantH)
			}
		})
	}
}

func TestCropExactDimensionsAtEveryAnchor(t *testing.T) {
	anchors := []string{
		"center", "top-left", "top", "top-right", "left",
		"right", "bottom-left", "bottom", "bottom-right",
	}
	src := testImage(240, 180)
	for _, anchor := range anchors {
		t.Run(anchor, func(t *testing.T) {
			out := Crop(src, config.CropConfig{Enabled: true, Width: 100, Height: 100, Position: anchor})
			if out.Bounds().Dx() != 100 || out.Bounds().Dy() != 100 {
				t.Fatalf("got %dx%d, want 100x100", out.Bounds().Dx(), out.Bounds().Dy())
			}
		})
	}
}

func TestCropClampsToImageEdges(t *testing.T) {
	out := Crop(testImage(80, 60), config.CropConfig{Enabled: true, Width: 100, Height: 100, Position: "top-left"})
	if out.Bounds().Dx() != 80 || out.Bounds().Dy() != 60 {
		t.Fatalf("got %dx%d, want clamp to 80x60", out.Bounds().Dx(), out.Bounds().Dy())
	}
}

func TestOverlayOffset(t *testing.T) {
	// 200x100 base, 40x20 overlay, margin 10.
	tests := []struct {
		position string
		x, y     int
	}{
		{"top-left", 10, 10},
		{"top", 80, 10},
		{"top-right", 150, 10},
		{"left", 10, 40},
		{"center", 80, 40},
		{"right", 150, 40},
		{"bottom-left", 10, 70},
		{"bottom", 80, 70},
		{"bottom-right", 150, 70},
		{"unknown", 150, 70},
	}
	for _, tt := range tests {
		t.Run(tt.position, func(t *testing.T) {
			x, y := overlayOffset(200, 100, 40, 20, tt.position, 10)
			if x != tt.x || y != tt.y {
				t.Fatalf("got (%d,%d), want (%d,%d)", x, y, tt.x, tt.y)
			}
		})
	}
}

func TestWatermarkKeepsBaseDimensions(t *testing.T) {
	base := testImage(200, 100)
	overlay := testImage(40, 20)
	out := Watermark(base, overlay, config.WatermarkConfig{
		Enabled: true, Position: "bottom-right", Opacity: 80, Margin: 10,
	})
	if out.Bounds().Dx() != 200 || out.Bounds().Dy() != 100 {
		t.Fatalf("got %dx%d, want 200x100", out.Bounds().Dx(), out.Bounds().Dy())
	}
}

func TestNormalizeFormat(t *testing.T) {
	tests := []struct{ in, want string }{
		{"jpeg", "jpg"},
		{"JPG", "jpg"},
		{".png", "png"},
		{"webp", "webp"},
		{"tiff", "jpg"},
		{"", "jpg"},
	}
	for _, tt := range tests {
		if got := NormalizeFormat(tt.in); got != tt.want {
			t.Errorf("NormalizeFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEncodeFormats(t *testing.T) {
	src := testImage(20, 20)
	for _, format := range []string{"jpg", "png", "webp"} {
		t.Run(format, func(t *testing.T) {
			data, err := Encode(src, format, 85)
			if err != nil {
				t.Fatalf("Encode: %v", err)
			}
			img, err := imaging.Decode(bytes.NewReader(data))
			if err != nil {
				t.Fatalf("decode round-trip: %v", err)
			}
			if img.Bounds().Dx() != 20 || img.Bounds().Dy() != 20 {
				t.Fatalf("round-trip %dx%d, want 20x20", img.Bounds().Dx(), img.Bounds().Dy())
			}
		})
	}
}

func TestProcessPassthroughWhenDisabled(t *testing.T) {
	p := NewPipeline(nil, config.ImageProcessingConfig{Enabled: false}, config.ThumbnailConfig{})
	in := []byte("not even an image")
	out, ext, err := p.Process(in, "png")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if !bytes.Equal(out, in) || ext != "png" {
		t.Fatalf("expected passthrough, got ext %q", ext)
	}
}

func TestProcessResizesAndConverts(t *testing.T) {
	p := NewPipeline(nil, config.ImageProcessingConfig{
		Enabled:       true,
		ConvertFormat: "png",
		Quality:       85,
		Resize: config.ResizeConfig{
			Enabled: true, Width: 100, Height: 100, MaintainAspectRatio: true,
		},
	}, config.ThumbnailConfig{})

	out, ext, err := p.Process(encodeJPEG(t, testImage(400, 300)), "jpg")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if ext != "png" {
		t.Fatalf("ext = %q, want png", ext)
	}
	img, err := imaging.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if img.Bounds().Dx() != 100 || img.Bounds().Dy() != 75 {
		t.Fatalf("got %dx%d, want 100x75", img.Bounds().Dx(), img.Bounds().Dy())
	}
}

func TestThumbnailDerivation(t *testing.T) {
	p := NewPipeline(nil, config.ImageProcessingConfig{}, config.ThumbnailConfig{
		Enabled: true, ConvertFormat: "jpg", Quality: 80, Width: 300, Height: 300,
	})
	out, ext, err := p.Thumbnail(encodeJPEG(t, testImage(400, 300)))
	if err != nil {
		t.Fatalf("Thumbnail: %v", err)
	}
	if ext != "jpg" {
		t.Fatalf("ext = %q, want jpg", ext)
	}
	img, err := imaging.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if img.Bounds().Dx() != 300 || img.Bounds().Dy() != 225 {
		t.Fatalf("got %dx%d, want 300x225", img.Bounds().Dx(), img.Bounds().Dy())
	}
}

func TestThumbnailFailsWithEmptyConfig(t *testing.T) {
	p := NewPipeline(nil, config.ImageProcessingConfig{}, config.ThumbnailConfig{})
	if _, _, err := p.Thumbnail(encodeJPEG(t, testImage(40, 40))); err == nil {
		t.Fatal("expected error for empty thumbnail config")
	}
}
