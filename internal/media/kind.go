package media

import (
	"fmt"
	"strings"
)

// Kind classifies a media asset and selects its storage strategy,
// validation rules, and transform behavior.
type Kind string

const (
	KindImage    Kind = "image"
	KindVideo    Kind = "video"
	KindAudio    Kind = "audio"
	KindDocument Kind = "document"
)

// Kinds lists every kind the system knows about, in a fixed order.
func Kinds() []Kind {
	return []Kind{KindImage, KindVideo, KindAudio, KindDocument}
}

// ParseKind normalizes and validates a kind string.
func ParseKind(raw string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(raw)))
	switch k {
	case KindImage, KindVideo, KindAudio, KindDocument:
		return k, nil
	}
	return "", NewValidationError(fmt.Sprintf("unknown media kind %q", raw))
}

// SupportsThumbnail reports whether thumbnails are derived for this kind.
// Only images are processed; other kinds are stored verbatim.
func (k Kind) SupportsThumbnail() bool {
	return k == KindImage
}

// defaultExtensions is the baseline per-kind extension allow-list.
// Config validation rules may override it.
func (k Kind) defaultExtensions() []string {
	switch k {
	case KindImage:
		return []string{"jpg", "jpeg", "png", "gif", "webp"}
	case KindVideo:
		return []string{"mp4", "mov", "avi"}
	case KindAudio:
		return []string{"mp3", "wav"}
	case KindDocument:
		return []string{"pdf", "doc", "docx", "xls", "xlsx"}
	}
	return nil
}

// defaultMimeTypes is the baseline per-kind content-type allow-list.
func (k Kind) defaultMimeTypes() []string {
	switch k {
	case KindImage:
		return []string{"image/jpeg", "image/jpg", "image/png", "image/gif", "image/webp"}
	case KindVideo:
		return []string{"video/mp4", "video/quicktime", "video/x-msvideo"}
	case KindAudio:
		return []string{"audio/mpeg", "audio/wav", "audio/mp3"}
	case KindDocument:
		return []string{
			"application/pdf",
			"application/msword",
			"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
			"application/vnd.ms-excel",
			"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		}
	}
	return nil
}

// defaultMaxSizeKB is the baseline per-kind upload size limit in KB.
func (k Kind) defaultMaxSizeKB() int64 {
	switch k {
	case KindImage:
		return 5120
	case KindVideo:
		return 20480
	case KindAudio, KindDocument:
		return 10240
	}
	return 0
}
