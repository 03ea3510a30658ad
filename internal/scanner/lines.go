// Package scanner segments a memory-mapped CSV region into rows and fields
// without copying.
//
// All slices and strings returned by this package alias the input region and
// are only valid while the region is. Copy anything that must outlive it.
package scanner

import "bytes"

// Lines is a forward-only sequence of rows over a byte region, split on '\n'.
//
// A carriage return before the newline is kept as the last byte of the row
// unless StripCR is set, so CRLF files carry '\r' into their final field.
// The last row is produced even without a trailing newline, and a trailing
// newline does not produce an extra empty row.
type Lines struct {
	data    []byte
	pos     int
	line    int
	StripCR bool
}

// NewLines starts a new pass over data.
func NewLines(data []byte) *Lines {
	return &Lines{data: data}
}

// Next returns the next row. ok is false once the region is exhausted.
func (l *Lines) Next() (row []byte, ok bool) {
	if l.pos >= len(l.data) {
		return nil, false
	}

	rest := l.data[l.pos:]
	end := bytes.IndexByte(rest, '\n')
	if end == -1 {
		row = rest
		l.pos = len(l.data)
	} else {
		row = rest[:end]
		l.pos += end + 1
	}
	l.line++

	if l.StripCR && len(row) > 0 && row[len(row)-1] == '\r' {
		row = row[:len(row)-1]
	}
	return row, true
}

// Line returns the 1-based line number of the row last returned by Next.
func (l *Lines) Line() int {
	return l.line
}
