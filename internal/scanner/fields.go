package scanner

import (
	"bytes"
	"unsafe"
)

// Fields holds the comma-separated fields of one row. Fields are plain
// splits: quotes are not interpreted and embedded commas are not escaped.
type Fields struct {
	cols []string
}

// Split replaces the current fields with those of row. The backing slice is
// reused between calls, so a Fields value must not be shared across rows.
func (f *Fields) Split(row []byte) {
	f.cols = f.cols[:0]
	for {
		i := bytes.IndexByte(row, ',')
		if i == -1 {
			f.cols = append(f.cols, bytesToString(row))
			return
		}
		f.cols = append(f.cols, bytesToString(row[:i]))
		row = row[i+1:]
	}
}

// Get returns field i, or "" when the row has fewer fields.
func (f *Fields) Get(i int) string {
	if i < 0 || i >= len(f.cols) {
		return ""
	}
	return f.cols[i]
}

// bytesToString aliases b without copying. The mapping behind b is read-only
// and outlives every row of a scan, so the string never observes a change.
func bytesToString(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	return unsafe.String(&b[0], len(b))
}
