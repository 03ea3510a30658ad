// Package writer serializes query results: projected rows, aggregate results
// and raw file bytes for the SELECT * fast path.
package writer

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/pierrec/lz4/v4"
	"go.uber.org/multierr"
)

// Format selects the output encoding.
type Format string

const (
	FormatCSV   Format = "csv"   // comma-joined lines, no escaping
	FormatJSONL Format = "jsonl" // one JSON object per row
	FormatTable Format = "table" // rendered ASCII table
)

// Layout selects how CSV aggregate results are printed.
type Layout string

const (
	LayoutLines Layout = "lines" // a label line followed by a value line
	LayoutPairs Layout = "pairs" // one "label: value" line per aggregate
)

// Compression selects an optional stream compression for the output.
type Compression string

const (
	CompressionNone Compression = "none"
	CompressionLZ4  Compression = "lz4"
)

// WriterConfig holds configuration for the writer
type WriterConfig struct {
	Format          Format
	AggregateLayout Layout
	Compression     Compression
	BufferSize      int // bufio buffer size in bytes
	FlushBytes      int // flush once this many bytes are buffered, 0 = only when full
}

// ResultWriter buffers result output and writes whole rows at a time.
type ResultWriter struct {
	config WriterConfig
	lz     *lz4.Writer
	buf    *bufio.Writer
	table  *tablewriter.Table

	columns []string // jsonl keys for the projected fields
	line    []byte
	rows    int64
}

// NewResultWriter creates a writer that emits to w.
func NewResultWriter(w io.Writer, config WriterConfig) (*ResultWriter, error) {
	if config.Format == "" {
		config.Format = FormatCSV
	}
	if config.AggregateLayout == "" {
		config.AggregateLayout = LayoutLines
	}
	if config.Compression == "" {
		config.Compression = CompressionNone
	}
	if config.BufferSize <= 0 {
		config.BufferSize = 64 * 1024
	}

	switch config.Format {
	case FormatCSV, FormatJSONL, FormatTable:
	default:
		return nil, fmt.Errorf("unknown output format %q", config.Format)
	}
	switch config.AggregateLayout {
	case LayoutLines, LayoutPairs:
	default:
		return nil, fmt.Errorf("unknown aggregate layout %q", config.AggregateLayout)
	}

	rw := &ResultWriter{config: config}
	switch config.Compression {
	case CompressionNone:
	case CompressionLZ4:
		rw.lz = lz4.NewWriter(w)
		if err := rw.lz.Apply(lz4.BlockSizeOption(lz4.Block64Kb)); err != nil {
			return nil, fmt.Errorf("configure lz4: %w", err)
		}
		w = rw.lz
	default:
		return nil, fmt.Errorf("unknown compression %q", config.Compression)
	}
	rw.buf = bufio.NewWriterSize(w, config.BufferSize)
	return rw, nil
}

// Format returns the configured output format.
func (rw *ResultWriter) Format() Format {
	return rw.config.Format
}

// Rows returns the number of data rows written so far.
func (rw *ResultWriter) Rows() int64 {
	return rw.rows
}

// WriteHeader starts a projection. labels are printed verbatim as the CSV
// header line. columns name the projected fields and serve as the table
// header and the jsonl keys, so names that matched no column are absent.
func (rw *ResultWriter) WriteHeader(labels, columns []string) error {
	switch rw.config.Format {
	case FormatTable:
		rw.table = tablewriter.NewWriter(rw.buf)
		rw.table.SetAutoFormatHeaders(false)
		rw.table.SetAutoWrapText(false)
		rw.table.SetHeader(columns)
		return nil
	case FormatJSONL:
		rw.columns = columns
		return nil
	}
	return rw.writeLine(append(rw.line[:0], strings.Join(labels, ",")...))
}

// WriteRow writes one projected row.
func (rw *ResultWriter) WriteRow(fields []string) error {
	rw.rows++
	switch rw.config.Format {
	case FormatTable:
		// Rendering happens at Close; keep copies, fields alias the scan.
		row := make([]string, len(fields))
		for i, f := range fields {
			row[i] = strings.Clone(f)
		}
		rw.table.Append(row)
		return nil
	case FormatJSONL:
		line := append(rw.line[:0], '{')
		for i, f := range fields {
			if i > 0 {
				line = append(line, ',')
			}
			key := ""
			if i < len(rw.columns) {
				key = rw.columns[i]
			}
			line = appendJSONString(line, key)
			line = append(line, ':')
			line = appendJSONString(line, f)
		}
		return rw.writeLine(append(line, '}'))
	}

	line := rw.line[:0]
	for i, f := range fields {
		if i > 0 {
			line = append(line, ',')
		}
		line = append(line, f...)
	}
	return rw.writeLine(line)
}

// WriteAggregates writes the final aggregate results, one value per label.
func (rw *ResultWriter) WriteAggregates(labels []string, values []float64) error {
	switch rw.config.Format {
	case FormatTable:
		t := tablewriter.NewWriter(rw.buf)
		t.SetAutoFormatHeaders(false)
		t.SetAutoWrapText(false)
		t.SetHeader(labels)
		row := make([]string, len(values))
		for i, v := range values {
			row[i] = FormatValue(v)
		}
		t.Append(row)
		t.Render()
		return nil
	case FormatJSONL:
		line := append(rw.line[:0], '{')
		for i, label := range labels {
			if i > 0 {
				line = append(line, ',')
			}
			line = appendJSONString(line, label)
			line = append(line, ':')
			if v := values[i]; math.IsNaN(v) || math.IsInf(v, 0) {
				line = appendJSONString(line, FormatValue(v))
			} else {
				line = strconv.AppendFloat(line, v, 'f', -1, 64)
			}
		}
		return rw.writeLine(append(line, '}'))
	}

	if rw.config.AggregateLayout == LayoutPairs {
		for i, label := range labels {
			line := append(rw.line[:0], label...)
			line = append(line, ": "...)
			line = append(line, FormatValue(values[i])...)
			if err := rw.writeLine(line); err != nil {
				return err
			}
		}
		return nil
	}

	if err := rw.writeLine(append(rw.line[:0], strings.Join(labels, ",")...)); err != nil {
		return err
	}
	line := rw.line[:0]
	for i, v := range values {
		if i > 0 {
			line = append(line, ',')
		}
		line = append(line, FormatValue(v)...)
	}
	return rw.writeLine(line)
}

// WriteRaw copies p to the output unchanged.
func (rw *ResultWriter) WriteRaw(p []byte) error {
	if err := rw.buf.Flush(); err != nil {
		return err
	}
	// Large regions bypass the buffer entirely.
	_, err := rw.buf.Write(p)
	return err
}

// Close renders any pending table, flushes buffered output and terminates
// the compression stream.
func (rw *ResultWriter) Close() error {
	var err error
	if rw.table != nil {
		rw.table.Render()
		rw.table = nil
	}
	err = multierr.Append(err, rw.buf.Flush())
	if rw.lz != nil {
		err = multierr.Append(err, rw.lz.Close())
		rw.lz = nil
	}
	return err
}

// Discard drops everything still buffered. Used when a scan fails part way
// so a partial result is not completed. Rows already flushed by FlushBytes
// or a full buffer have reached the underlying writer and stay there.
func (rw *ResultWriter) Discard() {
	rw.table = nil
	rw.buf.Reset(io.Discard)
}

// writeLine writes line plus a newline so that the row never straddles two
// flushes of the underlying writer.
func (rw *ResultWriter) writeLine(line []byte) error {
	line = append(line, '\n')
	rw.line = line[:0]

	if rw.buf.Available() < len(line) && rw.buf.Buffered() > 0 {
		if err := rw.buf.Flush(); err != nil {
			return err
		}
	}
	if _, err := rw.buf.Write(line); err != nil {
		return err
	}
	if rw.config.FlushBytes > 0 && rw.buf.Buffered() >= rw.config.FlushBytes {
		return rw.buf.Flush()
	}
	return nil
}

// FormatValue renders an aggregate result: shortest round-trip decimal,
// NaN as "NaN".
func FormatValue(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func appendJSONString(dst []byte, s string) []byte {
	b, err := json.Marshal(s)
	if err != nil {
		return append(dst, `""`...)
	}
	return append(dst, b...)
}
