//go:build amd64

package simd

import (
	"bytes"

	"golang.org/x/sys/cpu"
)

func init() {
	if cpu.X86.HasAVX2 || cpu.X86.HasPOPCNT {
		// bytes.Count is backed by vectorised assembly on these CPUs.
		countImpl = countRuntime
	} else {
		countImpl = countSWAR
	}
}

// HasAVX2 reports whether the vectorised path is available.
func HasAVX2() bool {
	return cpu.X86.HasAVX2
}

func countRuntime(data []byte, b byte) int {
	return bytes.Count(data, []byte{b})
}
