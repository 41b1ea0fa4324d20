// Package postgres persists media asset records in PostgreSQL.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/caronelabs/mediad/internal/db"
	"github.com/caronelabs/mediad/internal/media"
)

const assetColumns = `id, kind, source, path, disk, url, display_name, description, date, meta, thumbnail_path, created_at, updated_at`

// Repository implements media.Repository on a pgx connection pool.
type Repository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewRepository creates a media record repository.
func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	if log == nil {
		log = slog.Default()
	}
	return &Repository{
		pool:   pool,
		logger: log.With(slog.String("service", "media_repository")),
	}
}

// Create inserts the asset and returns it with its generated id and
// timestamps populated.
func (r *Repository) Create(ctx context.Context, asset media.Asset) (media.Asset, error) {
	meta, err := json.Marshal(asset.Meta)
	if err != nil {
		return media.Asset{}, fmt.Errorf("encode meta: %w", err)
	}
	if asset.Meta == nil {
		meta = []byte("{}")
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO media_assets (kind, source, path, disk, url, display_name, description, date, meta, thumbnail_path)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+assetColumns,
		string(asset.Kind),
		string(asset.Source),
		db.NullableText(asset.Path),
		db.NullableText(asset.Disk),
		db.NullableText(asset.URL),
		asset.DisplayName,
		db.NullableText(asset.Description),
		pgtype.Timestamptz{Time: asset.Date, Valid: !asset.Date.IsZero()},
		meta,
		db.NullableText(asset.ThumbnailPath),
	)
	created, err := scanAsset(row)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return media.Asset{}, &media.NameConflictError{Path: asset.Path}
		}
		return media.Asset{}, fmt.Errorf("insert media asset: %w", err)
	}
	return created, nil
}

// GetByID returns the asset with id, or media.ErrNotFound.
func (r *Repository) GetByID(ctx context.Context, id int64) (media.Asset, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+assetColumns+` FROM media_assets WHERE id = $1`, id)
	asset, err := scanAsset(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return media.Asset{}, fmt.Errorf("%w: id %d", media.ErrNotFound, id)
		}
		return media.Asset{}, fmt.Errorf("get media asset: %w", err)
	}
	return asset, nil
}

// FindWhere lists assets of a kind matching the optional filters. Supported
// filter keys are "source" and "disk"; unknown keys are rejected.
func (r *Repository) FindWhere(ctx context.Context, kind media.Kind, filters map[string]string) ([]media.Asset, error) {
	var (
		conds = []string{"kind = $1"}
		args  = []any{string(kind)}
	)
	for key, value := range filters {
		switch key {
		case "source", "disk":
			args = append(args, value)
			conds = append(conds, fmt.Sprintf("%s = $%d", key, len(args)))
		default:
			return nil, fmt.Errorf("unsupported filter %q", key)
		}
	}

	query := `SELECT ` + assetColumns + ` FROM media_assets WHERE ` + strings.Join(conds, " AND ") + ` ORDER BY id`
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list media assets: %w", err)
	}
	defer rows.Close()

	var assets []media.Asset
	for rows.Next() {
		asset, err := scanAsset(rows)
		if err != nil {
			return nil, fmt.Errorf("scan media asset: %w", err)
		}
		assets = append(assets, asset)
	}
	return assets, rows.Err()
}

// DeleteByID removes the asset record with id, or returns media.ErrNotFound.
func (r *Repository) DeleteByID(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM media_assets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete media asset: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: id %d", media.ErrNotFound, id)
	}
	return nil
}

func scanAsset(row pgx.Row) (media.Asset, error) {
	var (
		asset         media.Asset
		kind, source  string
		path          pgtype.Text
		disk          pgtype.Text
		url           pgtype.Text
		description   pgtype.Text
		thumbnailPath pgtype.Text
		date          pgtype.Timestamptz
		meta          []byte
		createdAt     time.Time
		updatedAt     time.Time
	)
	err := row.Scan(
		&asset.ID, &kind, &source, &path, &disk, &url,
		&asset.DisplayName, &description, &date, &meta, &thumbnailPath,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return media.Asset{}, err
	}

	asset.Kind = media.Kind(kind)
	asset.Source = media.Source(source)
	asset.Path = db.TextToString(path)
	asset.Disk = db.TextToString(disk)
	asset.URL = db.TextToString(url)
	asset.Description = db.TextToString(description)
	asset.ThumbnailPath = db.TextToString(thumbnailPath)
	asset.Date = db.TimeFromPg(date)
	asset.CreatedAt = createdAt
	asset.UpdatedAt = updatedAt

	if len(meta) > 0 {
		if err := json.Unmarshal(meta, &asset.Meta); err != nil {
			return media.Asset{}, fmt.Errorf("decode meta: %w", err)
		}
	}
	return asset, nil
}
