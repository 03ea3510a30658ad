package common

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/afero"
)

// MappedFile owns a read-only view of a file's bytes for the duration of one
// query. Every slice handed out by Bytes (and every row or field derived from
// it) is invalid once Close returns.
type MappedFile struct {
	path   string
	data   []byte
	mapped bool // true when data came from MmapFile and must be unmapped
}

// MapFile opens path on fs and exposes its contents as a byte slice.
//
// Files on the OS filesystem are memory mapped. Any other afero filesystem
// (in-memory fixtures, read-only overlays) is read into a private buffer,
// which keeps the same read-only contract for callers.
func MapFile(fs afero.Fs, path string) (*MappedFile, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrFileNotFound, path, err)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("%w: stat %s: %w", ErrIO, path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrFileNotFound, path)
	}
	if info.Size() == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyFile, path)
	}

	m := &MappedFile{path: path}
	if osFile, ok := f.(*os.File); ok {
		m.data, err = MmapFile(osFile)
		m.mapped = m.data != nil
	} else {
		m.data, err = io.ReadAll(f)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: map %s: %w", ErrIO, path, err)
	}
	// The file may have been truncated between Stat and the read.
	if len(m.data) == 0 {
		_ = m.Close()
		return nil, fmt.Errorf("%w: %s", ErrEmptyFile, path)
	}
	return m, nil
}

// Bytes returns the mapped region.
func (m *MappedFile) Bytes() []byte { return m.data }

// Len returns the mapped length in bytes.
func (m *MappedFile) Len() int { return len(m.data) }

// Path returns the path the region was mapped from.
func (m *MappedFile) Path() string { return m.path }

// Close releases the mapping. It is safe to call more than once.
func (m *MappedFile) Close() error {
	if m.data == nil {
		return nil
	}
	var err error
	if m.mapped {
		err = MunmapFile(m.data)
	}
	m.data = nil
	m.mapped = false
	return err
}
