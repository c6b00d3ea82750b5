// Package file stores inventory documents as files in a directory.
package file

import (
	"bytes"
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"

	"github.com/xenking/stockroom/internal/domain/inventory"
)

var _ inventory.Storage = (*Storage)(nil)

// gzipExt marks documents that are stored gzip-compressed.
const gzipExt = ".gz"

// Storage implements inventory.Storage on top of a local directory.
// Document names are paths relative to the directory.
type Storage struct {
	dir string
}

// New returns a Storage rooted at dir.
func New(dir string) *Storage {
	return &Storage{dir: dir}
}

// Read returns the contents of the named document, decompressing it when the
// name ends in .gz.
func (s *Storage) Read(_ context.Context, name string) ([]byte, error) {
	path, err := s.path(name)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errors.Wrapf(inventory.ErrDocumentNotFound, "open %s", path)
		}
		return nil, errors.Wrapf(err, "read %s", path)
	}
	if !isGzip(name) {
		return data, nil
	}

	gz, err := pgzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrapf(err, "create gzip reader for %s", path)
	}
	defer func() { _ = gz.Close() }()

	out, err := io.ReadAll(gz)
	if err != nil {
		return nil, errors.Wrapf(err, "decompress %s", path)
	}
	return out, nil
}

// Write replaces the named document. Data is written to a temporary file in
// the same directory and renamed over the target, so a failed write leaves
// the previous document intact.
func (s *Storage) Write(_ context.Context, name string, data []byte) error {
	path, err := s.path(name)
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "create directory %s", dir)
	}

	tmp, err := os.CreateTemp(dir, ".stockroom-*")
	if err != nil {
		return errors.Wrap(err, "create temp file")
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if err := writeBody(tmp, data, isGzip(name)); err != nil {
		_ = tmp.Close()
		return errors.Wrapf(err, "write %s", tmp.Name())
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, "close %s", tmp.Name())
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return errors.Wrapf(err, "chmod %s", tmp.Name())
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.Wrapf(err, "rename to %s", path)
	}
	return nil
}

// Ping checks that the directory exists, creating it when missing.
func (s *Storage) Ping(_ context.Context) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return errors.Wrapf(err, "create directory %s", s.dir)
	}
	return nil
}

func writeBody(f *os.File, data []byte, compress bool) error {
	if !compress {
		_, err := f.Write(data)
		return err
	}

	gz := pgzip.NewWriter(f)
	if _, err := gz.Write(data); err != nil {
		_ = gz.Close()
		return err
	}
	return gz.Close()
}

// path resolves name inside the storage directory, rejecting names that
// would escape it.
func (s *Storage) path(name string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(name))
	if name == "" || filepath.IsAbs(clean) || clean == "." ||
		clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", errors.Wrapf(inventory.ErrInvalidDocumentName, "%q", name)
	}
	return filepath.Join(s.dir, clean), nil
}

func isGzip(name string) bool {
	return strings.EqualFold(filepath.Ext(name), gzipExt)
}
