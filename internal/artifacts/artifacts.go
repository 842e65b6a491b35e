// Package artifacts discovers and validates image files produced by an
// instrumented run, encoding them for transport.
package artifacts

import (
	"encoding/base64"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// Artifact is one validated image, base64-encoded and ready to return.
type Artifact struct {
	Data     string // base64-encoded file contents
	MIMEType string
}

// Files smaller than this are treated as incomplete or corrupt writes
// and discarded.
const minSizeBytes = 100

// DefaultMax bounds how many artifacts a single run returns.
const DefaultMax = 3

var mimeTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".svg":  "image/svg+xml",
	".bmp":  "image/bmp",
	".webp": "image/webp",
}

// Collect scans dir for image files in directory order, validates and
// encodes each, and returns at most max artifacts. Invalid files are
// skipped with a logged warning, never escalated. A missing directory
// yields no artifacts.
func Collect(dir string, max int) []Artifact {
	if max <= 0 {
		max = DefaultMax
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var out []Artifact
	var omitted int
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if _, ok := mimeTypes[ext]; !ok {
			continue
		}
		if len(out) >= max {
			omitted++
			continue
		}

		path := filepath.Join(dir, entry.Name())
		info, err := entry.Info()
		if err != nil || info.Size() < minSizeBytes {
			log.Printf("skipping artifact %s: below %d byte minimum", path, minSizeBytes)
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			log.Printf("skipping artifact %s: %v", path, err)
			continue
		}
		if len(data) == 0 {
			continue
		}

		encoded := base64.StdEncoding.EncodeToString(data)
		if !validBase64(encoded) {
			log.Printf("skipping artifact %s: encoded content failed validation", path)
			continue
		}

		out = append(out, Artifact{Data: encoded, MIMEType: mimeTypeFor(ext)})
	}

	if omitted > 0 {
		log.Printf("artifact limit %d reached, omitted %d", max, omitted)
	}
	return out
}

// mimeTypeFor maps an extension to its MIME type, defaulting to the
// generic image type for anything unrecognized.
func mimeTypeFor(ext string) string {
	if mt, ok := mimeTypes[ext]; ok {
		return mt
	}
	return "image/png"
}

// validBase64 checks that every byte is in the standard base64
// alphabet, with padding only at the end.
func validBase64(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9', c == '+', c == '/':
		case c == '=' && i >= len(s)-2:
		default:
			return false
		}
	}
	return true
}
