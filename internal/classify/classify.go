package classify

import (
	"path/filepath"
	"strings"
)

// Kind is the coarse media category used for conversion dispatch.
type Kind string

const (
	KindImage      Kind = "image"
	KindVector     Kind = "vector"
	KindVideo      Kind = "video"
	KindAudio      Kind = "audio"
	KindDocument   Kind = "document"
	KindSourceCode Kind = "code"
	KindUnknown    Kind = "unknown"
)

// Extension sets per kind. svg and ico belong to both the image set and
// the vector set; the vector check runs first so they always classify
// as KindVector.
var (
	vectorExts = map[string]bool{
		"svg": true,
		"ico": true,
	}
	imageExts = map[string]bool{
		"jpeg": true, "jpg": true, "png": true, "webp": true,
		"avif": true, "gif": true, "svg": true, "ico": true, "tiff": true,
	}
	videoExts = map[string]bool{
		"mp4": true, "avi": true, "mov": true, "webm": true, "mkv": true, "flv": true,
	}
	audioExts = map[string]bool{
		"mp3": true, "wav": true, "aac": true, "ogg": true, "flac": true,
	}
	documentExts = map[string]bool{
		"pdf": true, "docx": true, "doc": true, "rtf": true, "txt": true,
	}
	codeExts = map[string]bool{
		"js": true, "ts": true, "jsx": true, "tsx": true, "html": true,
		"css": true, "json": true, "xml": true, "yaml": true, "yml": true,
	}
)

// Ext returns the lower-cased extension of fileName without the leading
// dot, or "" when the name has no extension.
func Ext(fileName string) string {
	ext := filepath.Ext(fileName)
	if ext == "" {
		return ""
	}
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// Detect maps a file name to its Kind based solely on the extension.
// No content sniffing. Unmatched extensions classify as KindUnknown and
// are rejected downstream by the dispatcher.
func Detect(fileName string) Kind {
	ext := Ext(fileName)
	if ext == "" {
		return KindUnknown
	}

	switch {
	case vectorExts[ext]:
		return KindVector
	case imageExts[ext]:
		return KindImage
	case videoExts[ext]:
		return KindVideo
	case audioExts[ext]:
		return KindAudio
	case documentExts[ext]:
		return KindDocument
	case codeExts[ext]:
		return KindSourceCode
	default:
		return KindUnknown
	}
}

// mimeTypes maps a target format to the Content-Type served for it.
var mimeTypes = map[string]string{
	"jpeg":              "image/jpeg",
	"jpg":               "image/jpeg",
	"png":               "image/png",
	"webp":              "image/webp",
	"avif":              "image/avif",
	"gif":               "image/gif",
	"tiff":              "image/tiff",
	"ico":               "image/x-icon",
	"svg":               "image/svg+xml",
	"pdf":               "application/pdf",
	"watermark-removed": "image/png",
	"mp4":               "video/mp4",
	"avi":               "video/x-msvideo",
	"mov":               "video/quicktime",
	"webm":              "video/webm",
	"mp3":               "audio/mpeg",
	"wav":               "audio/wav",
	"aac":               "audio/aac",
	"html":              "text/html",
	"txt":               "text/plain",
	"js":                "text/javascript",
}

// MIMEType returns the Content-Type for a target format, falling back
// to application/octet-stream for formats without a mapping.
func MIMEType(target string) string {
	if mt, ok := mimeTypes[strings.ToLower(target)]; ok {
		return mt
	}
	return "application/octet-stream"
}
