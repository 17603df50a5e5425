package executor

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/luca-patrignani/powledger/ledger"
)

// Receipt records what happened to one block's payload.
type Receipt struct {
	Index   uint64
	Hash    string
	Outcome Outcome
	Err     error
}

// Dispatcher submits the payloads of sealed blocks to an Executor.
type Dispatcher struct {
	exec        Executor
	logger      *slog.Logger
	stopOnError bool
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(Dispatcher) Dispatcher

// NewDispatcher returns a Dispatcher feeding exec. Without options it logs
// nothing and keeps going past failed payloads.
func NewDispatcher(exec Executor, opts ...DispatcherOption) *Dispatcher {
	d := Dispatcher{
		exec:   exec,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		d = opt(d)
	}
	return &d
}

// WithLogger sets the logger used for per-block progress. A nil logger is
// ignored.
func WithLogger(logger *slog.Logger) DispatcherOption {
	return func(d Dispatcher) Dispatcher {
		if logger != nil {
			d.logger = logger
		}
		return d
	}
}

// WithStopOnError makes Dispatch return at the first payload the executor
// fails to take.
func WithStopOnError() DispatcherOption {
	return func(d Dispatcher) Dispatcher {
		d.stopOnError = true
		return d
	}
}

// Dispatch submits the payload of every sealed non-genesis block, in order.
// Failures are recorded in the receipts and do not stop the walk unless
// WithStopOnError was given. A done context stops it and is returned.
func (d *Dispatcher) Dispatch(ctx context.Context, blocks []ledger.Block) ([]Receipt, error) {
	receipts := make([]Receipt, 0, len(blocks))
	for _, b := range blocks {
		if b.Index == 0 || !b.Sealed() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return receipts, err
		}

		outcome, err := d.exec.Submit(ctx, []byte(b.Payload))
		receipts = append(receipts, Receipt{Index: b.Index, Hash: b.Hash, Outcome: outcome, Err: err})
		if err != nil {
			d.logger.Warn("payload not executed", "index", b.Index, "error", err)
			if d.stopOnError {
				return receipts, fmt.Errorf("block %d: %w", b.Index, err)
			}
			continue
		}
		d.logger.Info("payload executed",
			"index", b.Index,
			"accepted", outcome.Accepted,
			"reference", outcome.Reference,
		)
	}
	return receipts, nil
}
