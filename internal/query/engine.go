package query

import (
	"fmt"
	"io"
	"os"
	"time"
	"unicode/utf8"

	"github.com/spf13/afero"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/csvquery/csvsql/internal/common"
	"github.com/csvquery/csvsql/internal/scanner"
	"github.com/csvquery/csvsql/internal/simd"
	"github.com/csvquery/csvsql/internal/writer"
)

// QueryConfig holds query parameters
type QueryConfig struct {
	Command      CommandSpec         // parsed query
	Output       writer.WriterConfig // result encoding
	StripCR      bool                // drop a trailing \r from every row
	CountWorkers int                 // goroutines for the COUNT(*) fast path
}

// QueryEngine executes one query against one CSV file.
type QueryEngine struct {
	config QueryConfig

	// Fs resolves the data file path (defaults to the OS filesystem)
	Fs afero.Fs

	// Writer for output (defaults to stdout)
	Writer io.Writer

	// Logger receives execution diagnostics (defaults to a no-op logger)
	Logger *zap.Logger
}

// NewQueryEngine creates a query engine
func NewQueryEngine(config QueryConfig) *QueryEngine {
	if config.CountWorkers < 1 {
		config.CountWorkers = 1
	}
	return &QueryEngine{
		config: config,
		Fs:     afero.NewOsFs(),
		Writer: os.Stdout,
		Logger: zap.NewNop(),
	}
}

// scanStats summarises one execution for the debug log.
type scanStats struct {
	path    string
	scanned int64
	matched int64
}

// Run executes the query and writes its result.
//
// The data file stays mapped until the output has been flushed, because
// projected fields alias the mapping. When the scan fails part way the
// output still buffered is dropped; rows already flushed stay written.
func (q *QueryEngine) Run() (err error) {
	start := time.Now()
	cmd := q.config.Command

	mf, err := common.MapFile(q.Fs, cmd.DataFile)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, mf.Close()) }()

	out, err := writer.NewResultWriter(q.Writer, q.config.Output)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			out.Discard()
			return
		}
		err = out.Close()
	}()

	stats := scanStats{}
	data := mf.Bytes()
	switch {
	case cmd.IsCountStar():
		stats.path = "count_star"
		err = q.runCountAll(data, out)
	case cmd.IsSelectStar() && out.Format() == writer.FormatCSV:
		stats.path = "select_star"
		err = out.WriteRaw(data)
	default:
		stats.path = "scan"
		err = q.runScan(data, out, &stats)
	}
	if err != nil {
		return err
	}

	q.Logger.Debug("query finished",
		zap.String("file", mf.Path()),
		zap.String("path", stats.path),
		zap.Bool("avx2", simd.HasAVX2()),
		zap.Int("mapped_bytes", mf.Len()),
		zap.Int64("rows_scanned", stats.scanned),
		zap.Int64("rows_matched", stats.matched),
		zap.Int64("rows_written", out.Rows()),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}

// runCountAll counts data rows by counting newlines. The header is not a
// data row; a final row without a newline still counts.
func (q *QueryEngine) runCountAll(data []byte, out *writer.ResultWriter) error {
	n := CountRows(data, q.config.CountWorkers)
	return out.WriteAggregates(q.config.Command.Columns, []float64{float64(n)})
}

// CountRows returns the number of data rows in data, excluding the header.
func CountRows(data []byte, workers int) int64 {
	if len(data) == 0 {
		return 0
	}
	n := int64(simd.CountParallel(data, '\n', workers))
	if data[len(data)-1] != '\n' {
		n++
	}
	if n > 0 {
		n--
	}
	return n
}

func (q *QueryEngine) runScan(data []byte, out *writer.ResultWriter, stats *scanStats) error {
	lines := scanner.NewLines(data)
	lines.StripCR = q.config.StripCR

	header, err := scanner.ReadHeader(lines)
	if err != nil {
		return err
	}
	rc, err := q.config.Command.Resolve(header)
	if err != nil {
		return err
	}
	q.Logger.Debug("command resolved",
		zap.Strings("header", header),
		zap.Strings("labels", rc.Labels),
		zap.Bool("aggregate", rc.Aggregate),
		zap.Strings("filter_columns", rc.Where.Columns()),
	)

	if rc.Aggregate {
		return q.runAggregation(lines, rc, out, stats)
	}
	return q.runProjection(lines, rc, out, stats)
}

// nextRow returns the next data row, rejecting rows that are not UTF-8.
func nextRow(lines *scanner.Lines) ([]byte, bool, error) {
	row, ok := lines.Next()
	if !ok {
		return nil, false, nil
	}
	if !utf8.Valid(row) {
		return nil, false, fmt.Errorf("%w: line %d", common.ErrUTF8Decode, lines.Line())
	}
	return row, true, nil
}

func (q *QueryEngine) runAggregation(lines *scanner.Lines, rc *ResolvedCommand, out *writer.ResultWriter, stats *scanStats) error {
	reg := rc.NewRegistry()
	accs := make([]*Accumulator, len(rc.Aggregates))
	for i, agg := range rc.Aggregates {
		accs[i], _ = reg.Get(agg.Label)
	}
	q.Logger.Debug("aggregating", zap.Strings("accumulators", reg.Labels()))

	var fields scanner.Fields
	for {
		row, ok, err := nextRow(lines)
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		stats.scanned++

		fields.Split(row)
		if !rc.Where.Evaluate(&fields) {
			continue
		}
		stats.matched++

		for i, agg := range rc.Aggregates {
			if agg.Star {
				accs[i].Apply(0)
				continue
			}
			if agg.Index < 0 {
				continue
			}
			v, ok := parseFloat(fields.Get(agg.Index))
			if !ok {
				continue
			}
			accs[i].Apply(v)
		}
	}

	results := reg.Results(rc.Labels)
	values := make([]float64, len(rc.Labels))
	for i, label := range rc.Labels {
		values[i] = results[label]
	}
	return out.WriteAggregates(rc.Labels, values)
}

func (q *QueryEngine) runProjection(lines *scanner.Lines, rc *ResolvedCommand, out *writer.ResultWriter, stats *scanStats) error {
	if err := out.WriteHeader(rc.Labels, rc.Columns); err != nil {
		return err
	}

	var fields scanner.Fields
	projected := make([]string, len(rc.Projection))
	for {
		row, ok, err := nextRow(lines)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		stats.scanned++

		fields.Split(row)
		if !rc.Where.Evaluate(&fields) {
			continue
		}
		stats.matched++

		for i, idx := range rc.Projection {
			projected[i] = fields.Get(idx)
		}
		if err := out.WriteRow(projected); err != nil {
			return err
		}
	}
}
