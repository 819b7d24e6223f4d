// Package blob stores uploaded attachments and returns their public URLs.
package blob

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

// ErrInvalidName is returned for object names that are empty or contain path separators.
var ErrInvalidName = errors.New("invalid object name")

// Uploader stores an object in a bucket and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, bucket, name string, r io.Reader, contentType string) (string, error)
}

// extensions maps accepted content types to file extensions.
var extensions = map[string]string{
	"image/jpeg":      "jpg",
	"image/png":       "png",
	"image/webp":      "webp",
	"application/pdf": "pdf",
}

// RandomName returns "<uuid>.<ext>". ext may carry a leading dot.
// PRE: none
// POST: the name is unique and never contains a path separator
func RandomName(ext string) string {
	ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
	ext = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}
		return -1
	}, ext)
	if ext == "" {
		return uuid.New().String()
	}
	return uuid.New().String() + "." + ext
}

// ExtensionFor picks the extension for an upload from its filename, falling back to the content type.
func ExtensionFor(filename, contentType string) string {
	if ext := strings.TrimPrefix(path.Ext(filename), "."); ext != "" {
		return strings.ToLower(ext)
	}
	ct, _, _ := strings.Cut(contentType, ";")
	return extensions[strings.ToLower(strings.TrimSpace(ct))]
}

func validName(bucket, name string) error {
	for _, s := range []string{bucket, name} {
		if s == "" || s == "." || s == ".." || strings.ContainsAny(s, `/\`) {
			return ErrInvalidName
		}
	}
	return nil
}
