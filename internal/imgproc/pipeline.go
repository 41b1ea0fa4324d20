// Package imgproc applies the configured transform pipeline to uploaded
// images: resize, crop, watermark, and re-encode, plus thumbnail derivation.
package imgproc

import (
	"bytes"
	"fmt"
	"image"
	"log/slog"
	"math"
	"os"
	"strings"
	"sync"

	"github.com/HugoSmits86/nativewebp"
	"github.com/disintegration/imaging"

	_ "image/gif"
	_ "golang.org/x/image/webp"

	"github.com/caronelabs/mediad/internal/config"
)

// Pipeline transforms image bytes according to an upload processing config
// and derives thumbnails from a separate, simpler config.
type Pipeline struct {
	cfg    config.ImageProcessingConfig
	thumb  config.ThumbnailConfig
	logger *slog.Logger

	wmOnce sync.Once
	wmImg  image.Image
}

// NewPipeline creates a Pipeline. The watermark overlay, if configured, is
// loaded lazily on first use.
func NewPipeline(log *slog.Logger, cfg config.ImageProcessingConfig, thumb config.ThumbnailConfig) *Pipeline {
	if log == nil {
		log = slog.Default()
	}
	return &Pipeline{
		cfg:    cfg,
		thumb:  thumb,
		logger: log.With(slog.String("service", "imgproc")),
	}
}

// Enabled reports whether upload transformation is switched on.
func (p *Pipeline) Enabled() bool {
	return p.cfg.Enabled
}

// ThumbnailEnabled reports whether thumbnail derivation is configured.
func (p *Pipeline) ThumbnailEnabled() bool {
	return p.thumb.Enabled && p.thumb.Width > 0 && p.thumb.Height > 0
}

// Process runs the enabled transform steps in order (resize, crop,
// watermark) and encodes to the configured target format. When the pipeline
// is disabled the input bytes pass through untouched. The returned extension
// is the final on-disk extension for the encoded bytes.
func (p *Pipeline) Process(data []byte, sourceExt string) ([]byte, string, error) {
	if !p.cfg.Enabled {
		return data, sourceExt, nil
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decode image: %w", err)
	}

	if p.cfg.Resize.Enabled {
		img = Resize(img, p.cfg.Resize)
	}
	if p.cfg.Crop.Enabled {
		img = Crop(img, p.cfg.Crop)
	}
	if p.cfg.Watermark.Enabled && p.cfg.Watermark.Path != "" {
		if wm := p.watermark(); wm != nil {
			img = Watermark(img, wm, p.cfg.Watermark)
		}
	}

	format := p.cfg.ConvertFormat
	if format == "" {
		format = sourceExt
	}
	out, err := Encode(img, format, p.cfg.Quality)
	if err != nil {
		return nil, "", err
	}
	return out, NormalizeFormat(format), nil
}

// Thumbnail derives a thumbnail: the mandatory resize followed by encode,
// both driven by the thumbnail config. Returns the encoded bytes and their
// extension.
func (p *Pipeline) Thumbnail(data []byte) ([]byte, string, error) {
	if !p.ThumbnailEnabled() {
		return nil, "", fmt.Errorf("thumbnail config is empty or disabled")
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decode image: %w", err)
	}

	img = Resize(img, config.ResizeConfig{
		Enabled:             true,
		Width:               p.thumb.Width,
		Height:              p.thumb.Height,
		MaintainAspectRatio: true,
		Upsize:              p.thumb.Upsize,
	})

	format := p.thumb.ConvertFormat
	if format == "" {
		format = "jpg"
	}
	out, err := Encode(img, format, p.thumb.Quality)
	if err != nil {
		return nil, "", err
	}
	return out, NormalizeFormat(format), nil
}

// watermark loads the overlay once. A missing or undecodable overlay file
// disables watermarking instead of failing the upload.
func (p *Pipeline) watermark() image.Image {
	p.wmOnce.Do(func() {
		if _, err := os.Stat(p.cfg.Watermark.Path); err != nil {
			p.logger.Warn("watermark overlay not found", slog.String("path", p.cfg.Watermark.Path))
			return
		}
		img, err := imaging.Open(p.cfg.Watermark.Path)
		if err != nil {
			p.logger.Warn("watermark overlay unreadable",
				slog.String("path", p.cfg.Watermark.Path), slog.Any("error", err))
			return
		}
		p.wmImg = img
	})
	return p.wmImg
}

// Resize scales img to the configured dimensions. With aspect preservation
// the image is scaled uniformly to fit within the bounding box; with upsize
// disabled each target dimension is clamped to the source so the image is
// never enlarged. A zero dimension is unconstrained.
func Resize(img image.Image, cfg config.ResizeConfig) image.Image {
	width, height := cfg.Width, cfg.Height
	bounds := img.Bounds()

	if !cfg.Upsize {
		if width > 0 && bounds.Dx() < width {
			width = bounds.Dx()
		}
		if height > 0 && bounds.Dy() < height {
			height = bounds.Dy()
		}
	}
	if width == 0 && height == 0 {
		return img
	}

	if cfg.MaintainAspectRatio {
		if width == 0 || height == 0 {
			// A single constrained dimension already preserves the ratio.
			return imaging.Resize(img, width, height, imaging.Lanczos)
		}
		// Uniform scale so the result fits within the box. Enlargement is
		// possible here only when upsize is permitted (the clamp above).
		scale := math.Min(float64(width)/float64(bounds.Dx()), float64(height)/float64(bounds.Dy()))
		w := int(math.Round(float64(bounds.Dx()) * scale))
		h := int(math.Round(float64(bounds.Dy()) * scale))
		return imaging.Resize(img, w, h, imaging.Lanczos)
	}
	return imaging.Resize(img, width, height, imaging.Lanczos)
}

// Crop extracts a cfg.Width x cfg.Height region anchored at the configured
// position. Regions larger than the image clamp to its edges.
func Crop(img image.Image, cfg config.CropConfig) image.Image {
	return imaging.CropAnchor(img, cfg.Width, cfg.Height, anchorOf(cfg.Position))
}

// Watermark composites the overlay onto img at the configured anchor with
// the configured margin and opacity percentage.
func Watermark(img image.Image, overlay image.Image, cfg config.WatermarkConfig) image.Image {
	x, y := overlayOffset(
		img.Bounds().Dx(), img.Bounds().Dy(),
		overlay.Bounds().Dx(), overlay.Bounds().Dy(),
		cfg.Position, cfg.Margin,
	)
	opacity := float64(cfg.Opacity) / 100
	if opacity <= 0 || opacity > 1 {
		opacity = 1
	}
	return imaging.Overlay(img, overlay, image.Pt(x, y), opacity)
}

// Encode serializes img to the given format at the given quality. Unknown
// formats fall back to jpeg. Quality is ignored for lossless formats.
func Encode(img image.Image, format string, quality int) ([]byte, error) {
	if quality <= 0 || quality > 100 {
		quality = 85
	}
	var buf bytes.Buffer
	var err error
	switch NormalizeFormat(format) {
	case "png":
		err = imaging.Encode(&buf, img, imaging.PNG)
	case "webp":
		err = nativewebp.Encode(&buf, img, nil)
	default:
		err = imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality))
	}
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", NormalizeFormat(format), err)
	}
	return buf.Bytes(), nil
}

// NormalizeFormat maps format aliases to canonical extensions; anything
// unrecognized becomes "jpg" (the encode fallback).
func NormalizeFormat(format string) string {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(format), ".")) {
	case "jpg", "jpeg":
		return "jpg"
	case "png":
		return "png"
	case "webp":
		return "webp"
	default:
		return "jpg"
	}
}

// overlayOffset converts one of the nine anchor positions into the overlay's
// top-left pixel offset. The margin applies on the anchored edges; centered
// axes ignore it.
func overlayOffset(imgW, imgH, wmW, wmH int, position string, margin int) (int, int) {
	centerX := (imgW - wmW) / 2
	centerY := (imgH - wmH) / 2
	rightX := imgW - wmW - margin
	bottomY := imgH - wmH - margin

	switch position {
	case "top-left":
		return margin, margin
	case "top":
		return centerX, margin
	case "top-right":
		return rightX, margin
	case "left":
		return margin, centerY
	case "center":
		return centerX, centerY
	case "right":
		return rightX, centerY
	case "bottom-left":
		return margin, bottomY
	case "bottom":
		return centerX, bottomY
	default: // bottom-right
		return rightX, bottomY
	}
}

func anchorOf(position string) imaging.Anchor {
	switch position {
	case "top-left":
		return imaging.TopLeft
	case "top":
		return imaging.Top
	case "top-right":
		return imaging.TopRight
	case "left":
		return imaging.Left
	case "right":
		return imaging.Right
	case "bottom-left":
		return imaging.BottomLeft
	case "bottom":
		return imaging.Bottom
	case "bottom-right":
		return imaging.BottomRight
	default:
		return imaging.Center
	}
}
