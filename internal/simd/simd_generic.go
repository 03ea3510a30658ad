//go:build !amd64

package simd

import "bytes"

func init() {
	countImpl = countRuntime
}

// HasAVX2 returns false on non-AMD64 platforms.
func HasAVX2() bool {
	return false
}

func countRuntime(data []byte, b byte) int {
	return bytes.Count(data, []byte{b})
}
