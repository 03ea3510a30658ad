// Package main provides csvsql, a streaming SQL-like query tool for CSV files.
//
//	csvsql --query "SELECT SUM(amount) FROM data.csv WHERE amount > 15"
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/afero"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/csvquery/csvsql/internal/common"
	"github.com/csvquery/csvsql/internal/config"
	"github.com/csvquery/csvsql/internal/logging"
	"github.com/csvquery/csvsql/internal/query"
)

// Version information
const Version = "0.3.0"

func main() {
	os.Exit(run(os.Args[1:], afero.NewOsFs(), os.Stdout, os.Stderr))
}

func printUsage(w io.Writer) {
	fmt.Fprintf(w, `csvsql v%s - streaming queries over CSV files

Usage:
    csvsql --query "SELECT <columns> FROM <file.csv> [WHERE <condition>]"

Environment:
    CSVSQL_CONFIG             optional config file (yaml, json or toml)
    CSVSQL_LOG_LEVEL          debug, info, warn, error
    CSVSQL_OUTPUT_FORMAT      csv, jsonl, table
    CSVSQL_OUTPUT_COMPRESSION none, lz4
`, Version)
}

// run executes one invocation and returns the process exit code.
func run(args []string, fs afero.Fs, stdout, stderr io.Writer) int {
	text, err := parseArgs(args)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		printUsage(stderr)
		return 1
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	logger, err := logging.NewWithSink(cfg.LogLevel, zapcore.AddSync(stderr))
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()
	logger, _ = logging.WithQueryID(logger)

	cmd, err := query.ParseCommand(text)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	logger.Debug("query parsed",
		zap.Strings("columns", cmd.Columns),
		zap.String("file", cmd.DataFile),
		zap.String("condition", cmd.Condition),
	)

	engine := query.NewQueryEngine(query.QueryConfig{
		Command:      cmd,
		Output:       cfg.WriterConfig(),
		StripCR:      cfg.StripCR,
		CountWorkers: cfg.CountWorkers,
	})
	engine.Fs = fs
	engine.Writer = stdout
	engine.Logger = logger

	if err := engine.Run(); err != nil {
		logger.Debug("query failed", zap.Error(err))
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// parseArgs accepts exactly: --query "<text>".
func parseArgs(args []string) (string, error) {
	if len(args) != 2 {
		return "", fmt.Errorf("%w: expected 2 arguments, got %d", common.ErrInvalidArguments, len(args))
	}
	if args[0] != "--query" {
		return "", fmt.Errorf("%w: expected --query, got %q", common.ErrInvalidArguments, args[0])
	}
	return args[1], nil
}
