// Package config loads and exposes application configuration (TOML).
package config

import (
	"os"

	"github.com/BurntSushi/toml"
)

// Default configuration values used when a field is missing in TOML.
const (
	DefaultConfigPath        = "config.toml"
	DefaultHTTPAddr          = ":8080"
	DefaultBodyLimit         = "32M"
	DefaultDiskName          = "public"
	DefaultDiskRoot          = "data/public"
	DefaultPathTemplate      = "media/{path}"
	DefaultThumbnailTemplate = "media/thumbnails/{path}"
	DefaultCacheMinutes      = 60
	DefaultPGHost            = "127.0.0.1"
	DefaultPGPort            = 5432
	DefaultPGUser            = "postgres"
	DefaultPGDatabase        = "mediad"
	DefaultPGSSLMode         = "disable"
)

// Config is the root application configuration loaded from TOML.
type Config struct {
	Log      LogConfig      `toml:"log"`
	Server   ServerConfig   `toml:"server"`
	Postgres PostgresConfig `toml:"postgres"`
	Storage  StorageConfig  `toml:"storage"`
	Media    MediaConfig    `toml:"media"`
}

// LogConfig holds logging level and format (e.g. level=info, format=text).
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// ServerConfig holds the HTTP server listen address and request body limit
// (Echo size syntax, e.g. "32M").
type ServerConfig struct {
	Addr      string `toml:"addr"`
	BodyLimit string `toml:"body_limit"`
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	Database string `toml:"database"`
	SSLMode  string `toml:"sslmode"`
}

// StorageConfig names the available disks and the storage layout templates.
// Both templates contain a single {path} placeholder that is substituted with
// an asset's relative path.
type StorageConfig struct {
	DefaultDisk       string                `toml:"default_disk"`
	PathTemplate      string                `toml:"path_template"`
	ThumbnailTemplate string                `toml:"thumbnail_template"`
	Disks             map[string]DiskConfig `toml:"disks"`
}

// DiskConfig holds the filesystem root of one named disk.
type DiskConfig struct {
	Root string `toml:"root"`
}

// MediaConfig holds upload validation rules and image processing settings.
type MediaConfig struct {
	EnabledKinds     []string              `toml:"enabled_kinds"`
	BannedExtensions []string              `toml:"banned_extensions"`
	CacheMinutes     int                   `toml:"cache_minutes"`
	Validation       map[string]KindRule   `toml:"validation"`
	Image            ImageProcessingConfig `toml:"image"`
	Thumbnail        ThumbnailConfig       `toml:"thumbnail"`
}

// KindRule overrides the allowed extensions, MIME types, and size limit for one kind.
type KindRule struct {
	Extensions []string `toml:"extensions"`
	MimeTypes  []string `toml:"mime_types"`
	MaxSizeKB  int64    `toml:"max_size_kb"`
}

// ImageProcessingConfig drives the upload transform pipeline for images.
type ImageProcessingConfig struct {
	Enabled       bool            `toml:"enabled"`
	ConvertFormat string          `toml:"convert_format"`
	Quality       int             `toml:"quality"`
	Resize        ResizeConfig    `toml:"resize"`
	Crop          CropConfig      `toml:"crop"`
	Watermark     WatermarkConfig `toml:"watermark"`
}

// ResizeConfig holds resize dimensions and scaling behavior.
type ResizeConfig struct {
	Enabled             bool `toml:"enabled"`
	Width               int  `toml:"width"`
	Height              int  `toml:"height"`
	MaintainAspectRatio bool `toml:"maintain_aspect_ratio"`
	Upsize              bool `toml:"upsize"`
}

// CropConfig holds crop dimensions and the anchor position
// (center, top-left, top, top-right, left, right, bottom-left, bottom, bottom-right).
type CropConfig struct {
	Enabled  bool   `toml:"enabled"`
	Width    int    `toml:"width"`
	Height   int    `toml:"height"`
	Position string `toml:"position"`
}

// WatermarkConfig holds the overlay image path, anchor, opacity percentage, and pixel margin.
type WatermarkConfig struct {
	Enabled  bool   `toml:"enabled"`
	Path     string `toml:"path"`
	Position string `toml:"position"`
	Opacity  int    `toml:"opacity"`
	Margin   int    `toml:"margin"`
}

// ThumbnailConfig drives thumbnail derivation: a mandatory resize plus encode settings.
type ThumbnailConfig struct {
	Enabled       bool   `toml:"enabled"`
	ConvertFormat string `toml:"convert_format"`
	Quality       int    `toml:"quality"`
	Width         int    `toml:"width"`
	Height        int    `toml:"height"`
	Upsize        bool   `toml:"upsize"`
}

// Load reads and parses the TOML config file at path and applies default values for missing fields.
func Load(path string) (Config, error) {
	cfg := Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Server: ServerConfig{
			Addr:      DefaultHTTPAddr,
			BodyLimit: DefaultBodyLimit,
		},
		Postgres: PostgresConfig{
			Host:     DefaultPGHost,
			Port:     DefaultPGPort,
			User:     DefaultPGUser,
			Database: DefaultPGDatabase,
			SSLMode:  DefaultPGSSLMode,
		},
		Storage: StorageConfig{
			DefaultDisk:       DefaultDiskName,
			PathTemplate:      DefaultPathTemplate,
			ThumbnailTemplate: DefaultThumbnailTemplate,
			Disks: map[string]DiskConfig{
				DefaultDiskName: {Root: DefaultDiskRoot},
			},
		},
		Media: MediaConfig{
			EnabledKinds:     []string{"image", "video", "audio", "document"},
			BannedExtensions: []string{"exe", "bat", "cmd"},
			CacheMinutes:     DefaultCacheMinutes,
			Image: ImageProcessingConfig{
				Enabled:       true,
				ConvertFormat: "jpg",
				Quality:       85,
				Resize: ResizeConfig{
					Width:               1920,
					Height:              1080,
					MaintainAspectRatio: true,
				},
				Crop: CropConfig{
					Width:    800,
					Height:   600,
					Position: "center",
				},
				Watermark: WatermarkConfig{
					Position: "bottom-right",
					Opacity:  80,
					Margin:   10,
				},
			},
			Thumbnail: ThumbnailConfig{
				Enabled:       true,
				ConvertFormat: "jpg",
				Quality:       80,
				Width:         300,
				Height:        300,
			},
		},
	}

	if path == "" {
		path = DefaultConfigPath
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}
