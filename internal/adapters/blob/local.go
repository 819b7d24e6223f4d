package blob

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// LocalUploader writes attachments under a directory, one subdirectory per bucket.
// It backs development setups where the files are served from BaseURL.
type LocalUploader struct {
	Dir     string
	BaseURL string // e.g. "/files"
}

// Compile-time check that *LocalUploader satisfies Uploader.
var _ Uploader = (*LocalUploader)(nil)

// NewLocalUploader creates an uploader rooted at dir.
func NewLocalUploader(dir, baseURL string) *LocalUploader {
	return &LocalUploader{Dir: dir, BaseURL: strings.TrimRight(baseURL, "/")}
}

// Upload copies r to Dir/bucket/name.
// PRE: bucket and name are plain object names
// POST: returns BaseURL/bucket/name; a failed copy leaves no partial file
func (u *LocalUploader) Upload(ctx context.Context, bucket, name string, r io.Reader, contentType string) (string, error) {
	if err := validName(bucket, name); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	dir := filepath.Join(u.Dir, bucket)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create bucket dir: %w", err)
	}
	dst := filepath.Join(dir, name)
	f, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", name, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(dst)
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(dst)
		return "", fmt.Errorf("close %s: %w", name, err)
	}
	return u.BaseURL + "/" + bucket + "/" + name, nil
}

// Handler serves stored files below the prefix given to http.StripPrefix by the caller.
func (u *LocalUploader) Handler() http.Handler {
	return http.FileServer(noListing{http.Dir(u.Dir)})
}

// noListing hides directory indexes.
type noListing struct {
	fs http.FileSystem
}

func (n noListing) Open(name string) (http.File, error) {
	f, err := n.fs.Open(name)
	if err != nil {
		return nil, err
	}
	if st, err := f.Stat(); err == nil && st.IsDir() {
		f.Close()
		return nil, os.ErrNotExist
	}
	return f, nil
}
