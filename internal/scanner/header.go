package scanner

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/csvquery/csvsql/internal/common"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Header is the ordered list of column names read from the first row.
// Names are not required to be unique.
type Header []string

// ReadHeader consumes the first row of lines and parses it as column names.
//
// A leading UTF-8 byte order mark is dropped, every name is trimmed of
// surrounding whitespace, and invalid UTF-8 is replaced with U+FFFD rather
// than rejected.
func ReadHeader(lines *Lines) (Header, error) {
	row, ok := lines.Next()
	if !ok {
		return nil, fmt.Errorf("%w: no header row", common.ErrParse)
	}
	row = bytes.TrimPrefix(row, utf8BOM)

	parts := bytes.Split(row, []byte{','})
	h := make(Header, len(parts))
	for i, part := range parts {
		h[i] = strings.ToValidUTF8(string(bytes.TrimSpace(part)), "\uFFFD")
	}
	return h, nil
}

// Index returns the position of the first column named exactly name, or -1.
func (h Header) Index(name string) int {
	for i, col := range h {
		if col == name {
			return i
		}
	}
	return -1
}
