// Package logging builds the zap logger shared by the CLI and the engine.
// Logs always go to stderr so that stdout carries query results only.
package logging

import (
	"os"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a console logger at the given level writing to stderr.
func New(level string) (*zap.Logger, error) {
	return NewWithSink(level, zapcore.Lock(os.Stderr))
}

// NewWithSink is New with an explicit destination.
func NewWithSink(level string, sink zapcore.WriteSyncer) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}

	enc := zap.NewDevelopmentEncoderConfig()
	enc.EncodeLevel = zapcore.CapitalLevelEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), sink, lvl)
	return zap.New(core), nil
}

// WithQueryID tags every entry of l with a fresh query id and returns both.
func WithQueryID(l *zap.Logger) (*zap.Logger, string) {
	id := uuid.NewString()
	return l.With(zap.String("query_id", id)), id
}
