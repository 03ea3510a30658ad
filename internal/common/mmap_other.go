//go:build !unix

package common

import (
	"io"
	"os"
)

// MmapFile reads the whole file into memory on targets without unix mmap.
// Callers only ever see a read-only byte slice, so the contract is unchanged.
func MmapFile(f *os.File) ([]byte, error) {
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}
	return data, nil
}

// MunmapFile is a no-op for ReadAll buffers.
func MunmapFile(data []byte) error {
	return nil
}
