package ledger

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyChain      = errors.New("empty blockchain")
	ErrInvalidGenesis  = errors.New("invalid genesis block")
	ErrIndexMismatch   = errors.New("invalid index")
	ErrLinkMismatch    = errors.New("invalid prev hash")
	ErrHashMismatch    = errors.New("invalid hash")
	ErrDifficultyUnmet = errors.New("difficulty not met")
	ErrIndexOutOfRange = errors.New("index out of range")
)

// ValidationError locates the first broken invariant found by Verify.
// Kind is one of the sentinel errors above and is matched by errors.Is.
type ValidationError struct {
	Kind     error
	Index    int
	Expected string
	Got      string
}

func (e *ValidationError) Error() string {
	if e.Expected == "" && e.Got == "" {
		return fmt.Sprintf("block %d invalid: %v", e.Index, e.Kind)
	}
	return fmt.Sprintf("block %d invalid: %v: expected %s, got %s", e.Index, e.Kind, e.Expected, e.Got)
}

func (e *ValidationError) Unwrap() error {
	return e.Kind
}
