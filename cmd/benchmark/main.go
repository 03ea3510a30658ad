// Command benchmark generates a synthetic CSV and times csvsql queries on it.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/csvquery/csvsql/internal/query"
	"github.com/csvquery/csvsql/internal/writer"
)

func main() {
	sizeMB := flag.Int("size", 500, "Approximate CSV size in MB")
	keep := flag.String("keep", "", "Write the CSV to this path and keep it")
	workers := flag.Int("workers", 4, "Goroutines for the COUNT(*) fast path")
	flag.Parse()

	if err := run(*sizeMB, *keep, *workers); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run returns instead of exiting so the temporary CSV is always removed.
func run(sizeMB int, keep string, workers int) error {
	path := keep
	if path == "" {
		tmpDir, err := os.MkdirTemp("", "csv_bench")
		if err != nil {
			return err
		}
		defer func() { _ = os.RemoveAll(tmpDir) }()
		path = filepath.Join(tmpDir, "bench.csv")
	}

	fmt.Printf("Generating %d MB CSV...\n", sizeMB)
	rows, size, err := generate(path, int64(sizeMB)*1024*1024)
	if err != nil {
		return err
	}
	fmt.Printf("Generated %d rows (%.2f MB)\n", rows, float64(size)/1024/1024)

	queries := []string{
		"SELECT COUNT(*) FROM " + path,
		"SELECT SUM(score), AVG(score), MAX(id) FROM " + path,
		"SELECT COUNT(*) FROM " + path + " WHERE score > 50 AND active = 'true'",
		"SELECT id, name FROM " + path + " WHERE score = 99",
		"SELECT * FROM " + path,
	}

	fmt.Printf("\n--------------------------------------------------\n")
	for _, text := range queries {
		elapsed, err := timeQuery(text, workers)
		if err != nil {
			return fmt.Errorf("%s: %w", text, err)
		}
		mbPerSec := float64(size) / 1024 / 1024 / elapsed.Seconds()
		fmt.Printf("%-10v %8.2f MB/s  %s\n", elapsed.Round(time.Millisecond), mbPerSec, text)
	}
	fmt.Printf("--------------------------------------------------\n")
	return nil
}

// generate writes id,name,score,active rows until limit bytes.
func generate(path string, limit int64) (int, int64, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, 0, err
	}
	defer func() { _ = f.Close() }()

	w := bufio.NewWriterSize(f, 64*1024)
	n, _ := w.WriteString("id,name,score,active\n")
	written := int64(n)

	rows := 0
	buf := make([]byte, 0, 64)
	for written < limit {
		// Avoid fmt for speed
		buf = strconv.AppendInt(buf[:0], int64(rows), 10)
		buf = append(buf, ",user"...)
		buf = strconv.AppendInt(buf, int64(rows%1000), 10)
		buf = append(buf, ',')
		buf = strconv.AppendInt(buf, int64(rows%100), 10)
		if rows%2 == 0 {
			buf = append(buf, ",true\n"...)
		} else {
			buf = append(buf, ",false\n"...)
		}
		n, err := w.Write(buf)
		if err != nil {
			return rows, written, err
		}
		written += int64(n)
		rows++
	}
	return rows, written, w.Flush()
}

func timeQuery(text string, workers int) (time.Duration, error) {
	cmd, err := query.ParseCommand(text)
	if err != nil {
		return 0, err
	}
	engine := query.NewQueryEngine(query.QueryConfig{
		Command:      cmd,
		Output:       writer.WriterConfig{Format: writer.FormatCSV},
		CountWorkers: workers,
	})
	engine.Writer = io.Discard

	start := time.Now()
	err = engine.Run()
	return time.Since(start), err
}
