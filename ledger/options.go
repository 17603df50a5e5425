package ledger

import (
	"io"
	"log/slog"
	"time"
)

// Option configures a Blockchain at construction.
type Option func(Blockchain) Blockchain

// WithLogger makes the chain report sealed blocks on logger at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(bc Blockchain) Blockchain {
		if logger != nil {
			bc.logger = logger
		}
		return bc
	}
}

// WithClock replaces the wall clock used to timestamp new blocks.
func WithClock(now func() time.Time) Option {
	return func(bc Blockchain) Blockchain {
		if now != nil {
			bc.now = now
		}
		return bc
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
