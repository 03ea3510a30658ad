// Package simd counts delimiter bytes in large buffers using the fastest
// routine the CPU supports.
package simd

import (
	"math/bits"
	"sync"
)

// countImpl is selected in init() from the CPU feature flags.
var countImpl func(data []byte, b byte) int

// Count returns the number of occurrences of b in data.
func Count(data []byte, b byte) int {
	return countImpl(data, b)
}

// minChunk keeps tiny inputs on a single goroutine.
const minChunk = 1 << 20

// CountParallel splits data into at most workers chunks and counts b in each
// concurrently. data must not be modified while the call is in progress.
func CountParallel(data []byte, b byte, workers int) int {
	if workers > len(data)/minChunk {
		workers = len(data) / minChunk
	}
	if workers <= 1 {
		return Count(data, b)
	}

	chunkSize := len(data) / workers
	counts := make([]int, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		start := i * chunkSize
		end := start + chunkSize
		if i == workers-1 {
			end = len(data)
		}
		wg.Add(1)
		go func(i int, chunk []byte) {
			defer wg.Done()
			counts[i] = Count(chunk, b)
		}(i, data[start:end])
	}
	wg.Wait()

	total := 0
	for _, c := range counts {
		total += c
	}
	return total
}

// countSWAR tests eight bytes per step with the classic has-zero-byte trick.
func countSWAR(data []byte, b byte) int {
	const (
		lo = 0x0101010101010101
		hi = 0x8080808080808080
	)
	pattern := uint64(b) * lo
	n := 0
	i := 0
	for ; i+8 <= len(data); i += 8 {
		w := uint64(data[i]) | uint64(data[i+1])<<8 | uint64(data[i+2])<<16 | uint64(data[i+3])<<24 |
			uint64(data[i+4])<<32 | uint64(data[i+5])<<40 | uint64(data[i+6])<<48 | uint64(data[i+7])<<56
		x := w ^ pattern
		// Exact per-byte zero test: no borrow propagation between lanes.
		t := ((x & ^uint64(hi)) + ^uint64(hi)) | x
		n += bits.OnesCount64(^t & hi)
	}
	for ; i < len(data); i++ {
		if data[i] == b {
			n++
		}
	}
	return n
}
