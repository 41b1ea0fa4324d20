package media

import "strings"

// DefaultContentType is served for extensions missing from the lookup table.
const DefaultContentType = "application/octet-stream"

var mimeByExtension = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"webp": "image/webp",
	"mp4":  "video/mp4",
	"mov":  "video/quicktime",
	"avi":  "video/x-msvideo",
	"mp3":  "audio/mpeg",
	"wav":  "audio/wav",
	"pdf":  "application/pdf",
	"doc":  "application/msword",
	"docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"xls":  "application/vnd.ms-excel",
	"xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

// ContentTypeForExtension maps a file extension to its MIME type, falling
// back to DefaultContentType for unknown extensions.
func ContentTypeForExtension(extension string) string {
	ext := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(extension), "."))
	if mime, ok := mimeByExtension[ext]; ok {
		return mime
	}
	return DefaultContentType
}

// NormalizeMime lowercases a MIME value and strips any parameters
// (e.g. "IMAGE/JPEG; charset=utf-8" -> "image/jpeg").
func NormalizeMime(raw string) string {
	mime := strings.ToLower(strings.TrimSpace(raw))
	if idx := strings.Index(mime, ";"); idx >= 0 {
		mime = strings.TrimSpace(mime[:idx])
	}
	return mime
}
