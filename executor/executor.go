// Package executor hands the payloads of sealed blocks to an external
// execution engine.
//
// # Core Components
//
// Executor: The narrow interface an execution engine adapter implements.
// The ledger never sees it; nothing an executor returns flows back into
// hashing or mining.
//
// Dispatcher: Walks a list of sealed blocks in order and submits each
// payload, collecting one Receipt per block.
//
// Recorder: An in-memory Executor that keeps every payload it is given.
package executor

import (
	"context"
	"sync"
)

// Executor runs a block payload out of band.
type Executor interface {
	// Submit hands payload to the execution engine. Outcome describes what the
	// engine did with it; an error means it could not be handed over at all.
	Submit(ctx context.Context, payload []byte) (Outcome, error)
}

// Outcome is the engine's answer for one payload.
type Outcome struct {
	Reference string // engine specific handle, e.g. a transaction hash
	Accepted  bool
	Detail    string
}

// Recorder is an Executor that accepts everything and remembers it.
type Recorder struct {
	mu       sync.Mutex
	payloads [][]byte
}

// Submit records payload and accepts it, unless ctx is already done.
func (r *Recorder) Submit(ctx context.Context, payload []byte) (Outcome, error) {
	if err := ctx.Err(); err != nil {
		return Outcome{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payloads = append(r.payloads, append([]byte(nil), payload...))
	return Outcome{Accepted: true, Detail: "recorded"}, nil
}

// Payloads returns every payload submitted so far, in order.
func (r *Recorder) Payloads() [][]byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([][]byte, len(r.payloads))
	copy(out, r.payloads)
	return out
}
