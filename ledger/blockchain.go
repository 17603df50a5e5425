package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"
)

// GenesisPayload is the fixed payload of every chain's first block.
const GenesisPayload = "Genesis Block"

// GenesisPrevHash marks the genesis block as having no predecessor.
const GenesisPrevHash = "0"

// Blockchain is an append-only sequence of mined blocks. It owns its blocks:
// every accessor hands out copies.
type Blockchain struct {
	blocks []Block
	logger *slog.Logger
	now    func() time.Time
}

// NewBlockchain creates a blockchain holding only the genesis block. The
// genesis block is sealed at difficulty 0 and is exempt from the proof of
// work check in Verify.
func NewBlockchain(opts ...Option) *Blockchain {
	bc := Blockchain{
		blocks: make([]Block, 0, 1),
		logger: discardLogger(),
		now:    time.Now,
	}
	for _, opt := range opts {
		bc = opt(bc)
	}

	genesis := newBlockAt(0, GenesisPrevHash, GenesisPayload, bc.now())
	genesis.Mine(0)
	bc.blocks = append(bc.blocks, genesis)

	return &bc
}

// Append mines a block carrying payload on top of the latest block and adds
// it to the chain. It blocks until a nonce meeting difficulty is found and
// cannot be interrupted; see AppendContext for a cancellable variant.
func (bc *Blockchain) Append(payload string, difficulty uint) Block {
	block := bc.next(payload)
	block.Mine(difficulty)
	bc.push(block)
	return block
}

// AppendContext is Append with a cancellable nonce search. When ctx is done
// before a nonce is found the chain is left unchanged and ctx.Err() is
// returned.
func (bc *Blockchain) AppendContext(ctx context.Context, payload string, difficulty uint) (Block, error) {
	block := bc.next(payload)
	if err := block.MineContext(ctx, difficulty); err != nil {
		return Block{}, fmt.Errorf("mining block %d: %w", block.Index, err)
	}
	bc.push(block)
	return block, nil
}

func (bc *Blockchain) next(payload string) Block {
	latest := bc.blocks[len(bc.blocks)-1]
	return newBlockAt(latest.Index+1, latest.Hash, payload, bc.now())
}

func (bc *Blockchain) push(block Block) {
	bc.blocks = append(bc.blocks, block)
	bc.logger.Debug("block sealed",
		"index", block.Index,
		"nonce", block.Nonce,
		"difficulty", block.Difficulty,
		"hash", block.Hash,
	)
}

// Len returns the number of blocks, genesis included.
func (bc *Blockchain) Len() int {
	return len(bc.blocks)
}

// Latest returns the most recently added block in the blockchain.
// Returns an error if the blockchain is empty.
func (bc *Blockchain) Latest() (Block, error) {
	if len(bc.blocks) == 0 {
		return Block{}, ErrEmptyChain
	}
	return bc.blocks[len(bc.blocks)-1], nil
}

// GetByIndex retrieves a copy of the block at index.
func (bc *Blockchain) GetByIndex(index int) (Block, error) {
	if index < 0 || index >= len(bc.blocks) {
		return Block{}, fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}
	return bc.blocks[index], nil
}

// Blocks returns a copy of the block list.
func (bc *Blockchain) Blocks() []Block {
	out := make([]Block, len(bc.blocks))
	copy(out, bc.blocks)
	return out
}

// IsValid reports whether Verify finds no broken invariant. That includes the
// genesis block: its index, its "0" previous hash and its stored hash are
// checked like any other block's, so editing the genesis payload in place
// makes the chain invalid even though no later link is broken.
func (bc *Blockchain) IsValid() bool {
	return bc.Verify() == nil
}

// Verify validates the integrity of the entire blockchain. It checks the
// genesis block (index 0, previous hash "0", stored hash equal to its
// recomputed hash), then every later block's index, previous hash linkage,
// stored hash and proof of work, in that order. The first violation is
// returned as a *ValidationError.
func (bc *Blockchain) Verify() error {
	if len(bc.blocks) == 0 {
		return ErrEmptyChain
	}

	if err := validateGenesis(bc.blocks[0]); err != nil {
		return err
	}

	for i := 1; i < len(bc.blocks); i++ {
		if err := validateBlock(i, bc.blocks[i], bc.blocks[i-1]); err != nil {
			return err
		}
	}

	return nil
}

func validateGenesis(genesis Block) error {
	if genesis.Index != 0 {
		return &ValidationError{Kind: ErrIndexMismatch, Index: 0, Expected: "0", Got: strconv.FormatUint(genesis.Index, 10)}
	}
	if genesis.PrevHash != GenesisPrevHash {
		return &ValidationError{Kind: ErrInvalidGenesis, Index: 0, Expected: GenesisPrevHash, Got: genesis.PrevHash}
	}
	if expected := genesis.CalculateHash(); genesis.Hash != expected {
		return &ValidationError{Kind: ErrHashMismatch, Index: 0, Expected: expected, Got: genesis.Hash}
	}
	return nil
}

// validateBlock verifies that the block at position i is valid relative to
// the previous block.
func validateBlock(i int, current, previous Block) error {
	if current.Index != uint64(i) {
		return &ValidationError{
			Kind:     ErrIndexMismatch,
			Index:    i,
			Expected: strconv.Itoa(i),
			Got:      strconv.FormatUint(current.Index, 10),
		}
	}

	if current.PrevHash != previous.Hash {
		return &ValidationError{Kind: ErrLinkMismatch, Index: i, Expected: previous.Hash, Got: current.PrevHash}
	}

	if expected := current.CalculateHash(); current.Hash != expected {
		return &ValidationError{Kind: ErrHashMismatch, Index: i, Expected: expected, Got: current.Hash}
	}

	if !current.MeetsDifficulty(current.Difficulty) {
		return &ValidationError{
			Kind:     ErrDifficultyUnmet,
			Index:    i,
			Expected: strconv.FormatUint(uint64(current.Difficulty), 10) + " leading zeros",
			Got:      current.Hash,
		}
	}

	return nil
}
