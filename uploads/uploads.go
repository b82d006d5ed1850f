// Package uploads stores user-supplied files (profile pictures, recipe images)
// in a shared directory served under /uploads/.
package uploads

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime/multipart"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"recipebook/logging"
	"recipebook/models"

	"github.com/disintegration/imaging"
)

const (
	URLPrefix   = "/uploads/"
	ThumbPrefix = "thumb_"
	ThumbSize   = 256
)

// File is an upload in flight: the client's original filename and its content.
type File struct {
	Name string
	Body io.Reader
}

// FromHeader opens a multipart file header. The caller closes the returned closer.
func FromHeader(fh *multipart.FileHeader) (File, io.Closer, error) {
	f, err := fh.Open()
	if err != nil {
		return File{}, nil, err
	}
	return File{Name: fh.Filename, Body: f}, f, nil
}

type Store struct {
	dir string
	log logging.Logger
}

func NewStore(dir string, log logging.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Store{dir: dir, log: logging.OrNop(log)}, nil
}

func (s *Store) Dir() string { return s.dir }

// Save writes f as "<owner>_<basename>" and returns its URL path. An existing
// file with the same name is overwritten. Image files also get a thumbnail.
func (s *Store) Save(ctx context.Context, owner string, f File) (string, error) {
	name := FileName(owner, f.Name)
	if name == "" {
		return "", fmt.Errorf("no usable file name for %q from owner %q", f.Name, owner)
	}
	path := filepath.Join(s.dir, name)

	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", name, err)
	}
	if _, err := io.Copy(dst, f.Body); err != nil {
		dst.Close()
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	if err := dst.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", name, err)
	}

	if isImage(name) {
		if err := s.thumbnail(path, name); err != nil {
			s.log.Warn(ctx, "thumbnail failed", "file", name, "error", err)
		}
	}
	return URLPrefix + name, nil
}

// Remove deletes a file saved under url, and its thumbnail. Missing files are
// ignored; other failures are logged.
func (s *Store) Remove(ctx context.Context, url string) {
	name := strings.TrimPrefix(url, URLPrefix)
	if name == url || name == "" || name != filepath.Base(name) {
		return
	}
	for _, n := range []string{name, ThumbPrefix + name} {
		if err := os.Remove(filepath.Join(s.dir, n)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			s.log.Warn(ctx, "remove upload failed", "file", n, "error", err)
		}
	}
}

func (s *Store) thumbnail(path, name string) error {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return err
	}
	thumb := imaging.Thumbnail(img, ThumbSize, ThumbSize, imaging.Lanczos)
	return imaging.Save(thumb, filepath.Join(s.dir, ThumbPrefix+name))
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// FileName derives the stored name from the owner and the client's filename.
// Directory components are dropped and unsafe characters replaced. The owner
// must be a valid username; since those contain no '_', the owner part is
// always recoverable and two owners never share a name.
func FileName(owner, original string) string {
	if !models.ValidUsername(owner) {
		return ""
	}
	base := filepath.Base(strings.ReplaceAll(original, `\`, "/"))
	if base == "." || base == "/" {
		base = ""
	}
	base = unsafeChars.ReplaceAllString(base, "_")
	base = strings.TrimLeft(base, ".")
	if base == "" {
		return ""
	}
	return owner + "_" + base
}

func isImage(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg", ".png", ".gif":
		return true
	}
	return false
}
