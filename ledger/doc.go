// Package ledger implements an append-only, hash-chained ledger sealed by
// proof of work.
//
// # Core Components
//
// Blockchain: An ordered sequence of blocks starting at a fixed genesis
// block. New blocks are mined before they are appended.
//
// Block: A single entry holding an opaque payload, the hash of its
// predecessor, and the nonce that makes its own hash meet a difficulty target.
//
// # Security Properties
//
// The ledger provides:
//   - Linkage: every block commits to the hash of the block before it
//   - Proof of work: every non-genesis hash starts with Difficulty zero hex digits
//   - Tamper detection: changing any hashed field breaks the chain
//
// # Usage
//
// Create a blockchain with NewBlockchain, then call Append for every payload.
// Append blocks until a valid nonce is found; AppendContext can be used when
// the search has to be abandoned. Verify reports where the chain is broken and
// IsValid answers yes or no.
//
// A Blockchain is not safe for concurrent use. Callers that share one between
// goroutines must serialize access themselves.
package ledger
