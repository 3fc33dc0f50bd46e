package repository

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/reshetovitsme/lecture-telegram-bot/internal/shared/errors"
	"github.com/samber/oops"
)

// DiskStorage implements file.Repository on a flat local directory
type DiskStorage struct {
	basePath string
}

// NewDiskStorage creates the uploads directory if needed
func NewDiskStorage(basePath string) (Repository, error) {
	abs, err := filepath.Abs(basePath)
	if err != nil {
		return nil, oops.With("base_path", basePath, "context", "failed to resolve uploads directory").Wrap(err)
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return nil, oops.With("base_path", abs, "context", "failed to create uploads directory").Wrap(err)
	}

	return &DiskStorage{basePath: abs}, nil
}

// Dir returns the absolute uploads directory
func (s *DiskStorage) Dir() string {
	return s.basePath
}

// Save writes data under name. The bytes are synced and renamed into place
// so a reader never sees a partial file.
func (s *DiskStorage) Save(name string, data []byte) (string, error) {
	path, err := s.Resolve(name)
	if err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(s.basePath, ".upload-*")
	if err != nil {
		return "", oops.With("file_name", name).Wrap(errors.Mark(errors.ErrStorageWrite, err))
	}
	tmpPath := tmp.Name()

	fail := func(err error) (string, error) {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return "", oops.With("file_name", name).Wrap(errors.Mark(errors.ErrStorageWrite, err))
	}

	if _, err := tmp.Write(data); err != nil {
		return fail(err)
	}
	if err := tmp.Sync(); err != nil {
		return fail(err)
	}
	if err := tmp.Close(); err != nil {
		return fail(err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return fail(err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return "", oops.With("file_name", name).Wrap(errors.Mark(errors.ErrStorageWrite, err))
	}

	return path, nil
}

// Open returns a reader for the stored file at path
func (s *DiskStorage) Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, oops.With("file_path", path).Wrap(errors.Mark(errors.ErrStorageRead, err))
	}
	return f, nil
}

// Remove deletes the file at path. A file that is already gone is not an error.
func (s *DiskStorage) Remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return oops.With("file_path", path).Wrap(errors.Mark(errors.ErrStorageWrite, err))
	}
	return nil
}

// Exists reports whether path names a regular file in the store
func (s *DiskStorage) Exists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err == nil {
		return !info.IsDir(), nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, oops.With("file_path", path).Wrap(errors.Mark(errors.ErrStorageRead, err))
}

// Resolve maps a bare stored name to its path. Names with directory parts
// or a leading dot are reported as not found.
func (s *DiskStorage) Resolve(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", oops.With("file_name", name).Wrap(errors.ErrNotFound)
	}
	return filepath.Join(s.basePath, name), nil
}

// UniqueName builds a stored file name from the uploader's original name.
// The millisecond timestamp keeps names sortable and the uuid fragment
// keeps concurrent uploads of the same name apart.
func UniqueName(original string, now time.Time) string {
	return fmt.Sprintf("%d_%s_%s", now.UnixMilli(), uuid.NewString()[:8], SanitizeName(original))
}

// SanitizeName strips directory parts and control characters from name.
func SanitizeName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(name)
	name = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) || r == '/' {
			return -1
		}
		if unicode.IsSpace(r) {
			return '_'
		}
		return r
	}, name)
	name = strings.TrimLeft(name, ".")
	if name == "" {
		return "file"
	}
	return name
}
