package media

import (
	"fmt"
	"slices"
	"strings"

	"github.com/caronelabs/mediad/internal/config"
)

// Rules resolves per-kind upload constraints from config, falling back to
// the built-in defaults per kind.
type Rules struct {
	enabled   map[Kind]bool
	banned    map[string]bool
	overrides map[Kind]config.KindRule
}

// NewRules builds Rules from media config.
func NewRules(cfg config.MediaConfig) Rules {
	r := Rules{
		enabled:   make(map[Kind]bool, len(cfg.EnabledKinds)),
		banned:    make(map[string]bool, len(cfg.BannedExtensions)),
		overrides: make(map[Kind]config.KindRule, len(cfg.Validation)),
	}
	for _, raw := range cfg.EnabledKinds {
		if k, err := ParseKind(raw); err == nil {
			r.enabled[k] = true
		}
	}
	for _, ext := range cfg.BannedExtensions {
		r.banned[normalizeExt(ext)] = true
	}
	for raw, rule := range cfg.Validation {
		if k, err := ParseKind(raw); err == nil {
			r.overrides[k] = rule
		}
	}
	return r
}

// KindEnabled reports whether uploads of this kind are accepted.
func (r Rules) KindEnabled(k Kind) bool {
	return r.enabled[k]
}

// EnabledKinds lists the accepted kinds in fixed order.
func (r Rules) EnabledKinds() []Kind {
	var kinds []Kind
	for _, k := range Kinds() {
		if r.enabled[k] {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

// ExtensionBanned reports whether the extension is globally disallowed.
func (r Rules) ExtensionBanned(ext string) bool {
	return r.banned[normalizeExt(ext)]
}

// ExtensionAllowed reports whether the extension is on the kind's allow-list.
func (r Rules) ExtensionAllowed(k Kind, ext string) bool {
	allowed := k.defaultExtensions()
	if rule, ok := r.overrides[k]; ok && len(rule.Extensions) > 0 {
		allowed = rule.Extensions
	}
	return slices.Contains(allowed, normalizeExt(ext))
}

// SupportedExtensions returns the kind's effective extension allow-list.
func (r Rules) SupportedExtensions(k Kind) []string {
	if rule, ok := r.overrides[k]; ok && len(rule.Extensions) > 0 {
		return rule.Extensions
	}
	return k.defaultExtensions()
}

// DetectKind resolves a kind from a file extension against each kind's
// effective allow-list, so configured extension overrides detect too.
func (r Rules) DetectKind(extension string) (Kind, error) {
	ext := normalizeExt(extension)
	for _, k := range Kinds() {
		if slices.Contains(r.SupportedExtensions(k), ext) {
			return k, nil
		}
	}
	return "", NewValidationError(fmt.Sprintf("could not detect media kind for extension %q", extension))
}

// MimeAllowed reports whether the content type is on the kind's allow-list.
func (r Rules) MimeAllowed(k Kind, mime string) bool {
	allowed := k.defaultMimeTypes()
	if rule, ok := r.overrides[k]; ok && len(rule.MimeTypes) > 0 {
		allowed = rule.MimeTypes
	}
	return slices.Contains(allowed, NormalizeMime(mime))
}

// MaxSizeBytes returns the kind's upload size limit in bytes (0 = unlimited).
func (r Rules) MaxSizeBytes(k Kind) int64 {
	kb := k.defaultMaxSizeKB()
	if rule, ok := r.overrides[k]; ok && rule.MaxSizeKB > 0 {
		kb = rule.MaxSizeKB
	}
	return kb * 1024
}

func normalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}

// ExtensionOf returns the lowercased extension of a file name, without the
// dot, or "" when there is none.
func ExtensionOf(fileName string) string {
	idx := strings.LastIndex(fileName, ".")
	if idx < 0 || idx == len(fileName)-1 {
		return ""
	}
	return strings.ToLower(fileName[idx+1:])
}

// BaseNameOf returns the file name with its extension stripped.
func BaseNameOf(fileName string) string {
	if idx := strings.LastIndex(fileName, "."); idx >= 0 {
		return fileName[:idx]
	}
	return fileName
}
