package simd

import (
	"bytes"
	"strings"
	"testing"
)

func TestCount(t *testing.T) {
	tests := []struct {
		name  string
		input string
		sep   byte
		want  int
	}{
		{"empty", "", '\n', 0},
		{"no newlines", "hello world", '\n', 0},
		{"single", "id,amount\n", '\n', 1},
		{"no trailing newline", "id\n1\n2", '\n', 2},
		{"only newlines", "\n\n\n", '\n', 3},
		{"comma separator", "a,b,c,d", ',', 3},
		{"custom separator", "a|b|c", '|', 2},
		{"long string", strings.Repeat("a", 100) + "\n" + strings.Repeat("b", 100), '\n', 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Count([]byte(tt.input), tt.sep); got != tt.want {
				t.Errorf("Count() = %v, want %v", got, tt.want)
			}
			if got := countSWAR([]byte(tt.input), tt.sep); got != tt.want {
				t.Errorf("countSWAR() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCountSWARTail(t *testing.T) {
	// boundaries around the 8-byte word size
	sizes := []int{1, 7, 8, 9, 15, 16, 17, 63, 64, 65}
	for _, size := range sizes {
		data := bytes.Repeat([]byte{'.'}, size)
		data[size-1] = '\n'
		if got := countSWAR(data, '\n'); got != 1 {
			t.Errorf("countSWAR(size=%d) = %v, want 1", size, got)
		}
	}
}

func TestCountSWARHighBytes(t *testing.T) {
	// 0x8a differs from '\n' only in the high bit
	data := []byte{0x8a, '\n', 0xff, 0x0a, 0x00, 0x0b, 0x09, 0x8a, '\n'}
	if got, want := countSWAR(data, '\n'), bytes.Count(data, []byte{'\n'}); got != want {
		t.Errorf("countSWAR() = %v, want %v", got, want)
	}
}

func TestCountParallel(t *testing.T) {
	// 3MB buffer so several workers get a chunk
	size := 3*minChunk + 17
	data := make([]byte, size)
	expected := 0
	for i := range data {
		if i%97 == 0 {
			data[i] = '\n'
			expected++
		} else {
			data[i] = 'x'
		}
	}

	for _, workers := range []int{0, 1, 2, 3, 8} {
		if got := CountParallel(data, '\n', workers); got != expected {
			t.Errorf("CountParallel(workers=%d) = %v, want %v", workers, got, expected)
		}
	}
}

func BenchmarkCount1MB(b *testing.B) {
	input := bytes.Repeat([]byte("1,alpha,3.25,beta\n"), (1<<20)/18)
	b.SetBytes(int64(len(input)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Count(input, '\n')
	}
}

func BenchmarkCountSWAR1MB(b *testing.B) {
	input := bytes.Repeat([]byte("1,alpha,3.25,beta\n"), (1<<20)/18)
	b.SetBytes(int64(len(input)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		countSWAR(input, '\n')
	}
}

func FuzzCount(f *testing.F) {
	f.Add([]byte("a,b,c\n"))
	f.Add([]byte("\n\n"))
	f.Add([]byte{})

	f.Fuzz(func(t *testing.T, input []byte) {
		want := bytes.Count(input, []byte{'\n'})
		if got := countSWAR(input, '\n'); got != want {
			t.Errorf("countSWAR() = %d, want %d", got, want)
		}
	})
}
