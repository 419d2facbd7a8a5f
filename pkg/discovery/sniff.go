package discovery

import (
	"mime"
	"path/filepath"
	"strings"
)

// compressionExts maps extensions to the content encoding they imply.
var compressionExts = map[string]string{
	".gz":  "gzip",
	".bz2": "bzip2",
	".xz":  "xz",
	".Z":   "compress",
	".br":  "br",
	".zst": "zstd",
}

// guessType inspects only the file name. It returns a non-empty reason when
// the name implies compressed or non-text content.
func guessType(path string) string {
	ext := filepath.Ext(path)
	if ext == "" {
		return ""
	}

	if encoding, ok := compressionExts[ext]; ok {
		return encoding
	}

	if encoding, ok := compressionExts[strings.ToLower(ext)]; ok {
		return encoding
	}

	mimeType := mime.TypeByExtension(ext)
	if mimeType != "" && !strings.HasPrefix(mimeType, "text/") {
		return mimeType
	}

	return ""
}
