//go:build unix

package common

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// MmapFile maps the whole file read-only into memory.
// An empty file yields a nil slice and no error.
func MmapFile(f *os.File) ([]byte, error) {
	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	size := info.Size()
	if size == 0 {
		return nil, nil
	}
	if int64(int(size)) != size {
		return nil, fmt.Errorf("file too large to map: %d bytes", size)
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("mmap: %w", err)
	}
	return data, nil
}

// MunmapFile releases a mapping created by MmapFile.
func MunmapFile(data []byte) error {
	if data == nil {
		return nil
	}
	return unix.Munmap(data)
}
