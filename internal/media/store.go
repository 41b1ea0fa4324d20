package media

import (
	"context"
	"fmt"
	"log/slog"
)

// StoreService validates incoming media and dispatches storage to the
// per-kind strategy. Validation is fail-fast: the first violated rule
// aborts before any disk or database write.
type StoreService struct {
	logger     *slog.Logger
	rules      Rules
	strategies *Registry
}

func NewStoreService(log *slog.Logger, rules Rules, strategies *Registry) *StoreService {
	if log == nil {
		log = slog.Default()
	}
	return &StoreService{
		logger:     log.With(slog.String("service", "media_store")),
		rules:      rules,
		strategies: strategies,
	}
}

// StoreLocal ingests an uploaded payload. When req.Kind is empty the kind is
// detected from the original file name's extension.
func (s *StoreService) StoreLocal(ctx context.Context, req StoreLocalRequest) (Asset, error) {
	ext := ExtensionOf(req.OriginalName)

	kind := req.Kind
	if kind == "" {
		detected, err := s.rules.DetectKind(ext)
		if err != nil {
			return Asset{}, NewValidationError(fmt.Sprintf("cannot detect media kind for %q", req.OriginalName))
		}
		kind = detected
		req.Kind = kind
	}

	if !s.rules.KindEnabled(kind) {
		return Asset{}, NewValidationError(fmt.Sprintf("media kind %q is disabled", kind))
	}
	if ext == "" {
		return Asset{}, NewValidationError("file name has no extension")
	}
	if s.rules.ExtensionBanned(ext) {
		return Asset{}, NewValidationError(fmt.Sprintf("extension %q is banned", ext))
	}
	if !s.rules.ExtensionAllowed(kind, ext) {
		return Asset{}, NewValidationError(fmt.Sprintf("extension %q is not allowed for kind %q", ext, kind))
	}
	if mime := NormalizeMime(req.DeclaredMime); mime != "" && !s.rules.MimeAllowed(kind, mime) {
		return Asset{}, NewValidationError(fmt.Sprintf("content type %q is not allowed for kind %q", mime, kind))
	}
	if max := s.rules.MaxSizeBytes(kind); max > 0 && req.Size > max {
		return Asset{}, NewValidationError(fmt.Sprintf("payload of %d bytes exceeds the %d byte limit for kind %q", req.Size, max, kind))
	}

	strategy, err := s.strategies.For(kind)
	if err != nil {
		return Asset{}, err
	}

	asset, err := strategy.StoreLocal(ctx, req)
	if err != nil {
		return Asset{}, err
	}
	s.logger.Info("stored media",
		slog.Int64("id", asset.ID),
		slog.String("kind", string(asset.Kind)),
		slog.String("path", asset.Path),
	)
	return asset, nil
}

// StoreExternal records an externally hosted media reference.
func (s *StoreService) StoreExternal(ctx context.Context, req StoreExternalRequest) (Asset, error) {
	if req.URL == "" {
		return Asset{}, NewValidationError("external media requires a url")
	}
	kind := req.Kind
	if kind == "" {
		return Asset{}, NewValidationError("external media requires an explicit kind")
	}
	if _, err := ParseKind(string(kind)); err != nil {
		return Asset{}, NewValidationError(fmt.Sprintf("unknown media kind %q", kind))
	}
	if !s.rules.KindEnabled(kind) {
		return Asset{}, NewValidationError(fmt.Sprintf("media kind %q is disabled", kind))
	}

	strategy, err := s.strategies.For(kind)
	if err != nil {
		return Asset{}, err
	}

	asset, err := strategy.StoreExternal(ctx, req)
	if err != nil {
		return Asset{}, err
	}
	s.logger.Info("stored external media",
		slog.Int64("id", asset.ID),
		slog.String("kind", string(asset.Kind)),
		slog.String("url", asset.URL),
	)
	return asset, nil
}
