package main

import (
	"context"
	"errors"
	"math/big"
	"os"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pterm/pterm"

	"github.com/luca-patrignani/powledger/config"
	"github.com/luca-patrignani/powledger/executor"
	"github.com/luca-patrignani/powledger/executor/evm"
	"github.com/luca-patrignani/powledger/ledger"
	"github.com/luca-patrignani/powledger/transaction"
)

func TestMain(m *testing.M) {
	pterm.DisableStyling()
	pterm.DisableOutput()
	os.Exit(m.Run())
}

func TestBuildChain(t *testing.T) {
	cfg := config.Default()
	cfg.Ledger.Difficulty = 1

	bc, err := buildChain(context.Background(), cfg, newLogger("info"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bc.Len() != len(cfg.Ledger.Payloads)+1 {
		t.Fatalf("expected %d blocks, got %d", len(cfg.Ledger.Payloads)+1, bc.Len())
	}
	if !bc.IsValid() {
		t.Fatalf("chain should be valid: %v", bc.Verify())
	}
}

func TestBuildChainCancelled(t *testing.T) {
	cfg := config.Default()
	cfg.Ledger.Difficulty = ledger.MaxDifficulty + 1
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := buildChain(ctx, cfg, newLogger("info")); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestGetBlockBox(t *testing.T) {
	bc := ledger.NewBlockchain()
	block := bc.Append("Block 1 Data", 1)

	box := getBlockBox(block)
	for _, want := range []string{"Index: 1", "Data: Block 1 Data", "Hash: " + block.Hash, "Previous Hash: " + block.PrevHash} {
		if !strings.Contains(box, want) {
			t.Fatalf("box should contain %q:\n%s", want, box)
		}
	}

	genesis, _ := bc.GetByIndex(0)
	if !strings.Contains(getBlockBox(genesis), "Previous Hash: 0") {
		t.Fatal("genesis box should show the \"0\" sentinel")
	}
}

func TestGetValidityMessage(t *testing.T) {
	if msg := getValidityMessage(nil); msg != "Blockchain is valid." {
		t.Fatalf("unexpected message %q", msg)
	}
	err := &ledger.ValidationError{Kind: ledger.ErrLinkMismatch, Index: 2}
	msg := getValidityMessage(err)
	if !strings.HasPrefix(msg, "Blockchain is NOT valid.") || !strings.Contains(msg, "block 2") {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestGetReceiptRows(t *testing.T) {
	rows := getReceiptRows([]executor.Receipt{
		{Index: 1, Outcome: executor.Outcome{Accepted: true, Reference: "0xabc", Detail: "call"}},
		{Index: 2, Err: errors.New("refused")},
	})
	if len(rows) != 3 {
		t.Fatalf("expected header and 2 rows, got %d", len(rows))
	}
	if rows[1][1] != "true" || rows[1][2] != "0xabc" {
		t.Fatalf("unexpected row %v", rows[1])
	}
	if rows[2][1] != "false" || rows[2][3] != "refused" {
		t.Fatalf("unexpected row %v", rows[2])
	}
}

type nodeStub struct {
	sent []*types.Transaction
}

func (n *nodeStub) PendingNonceAt(context.Context, common.Address) (uint64, error) {
	return uint64(len(n.sent)), nil
}

func (n *nodeStub) SuggestGasPrice(context.Context) (*big.Int, error) {
	return big.NewInt(1_000_000_000), nil
}

func (n *nodeStub) ChainID(context.Context) (*big.Int, error) {
	return big.NewInt(1337), nil
}

func (n *nodeStub) SendTransaction(_ context.Context, tx *types.Transaction) error {
	n.sent = append(n.sent, tx)
	return nil
}

func transactionConfig() *config.Config {
	cfg := config.Default()
	cfg.Ledger.Difficulty = 1
	cfg.Ledger.Payloads = []string{"plain note"}
	cfg.Ledger.Transactions = []config.Transaction{
		{To: "0x00000000000000000000000000000000000000aa", Value: "1000", GasLimit: 21000},
		{Data: "0x6080", GasLimit: 500000},
	}
	return cfg
}

func TestLedgerPayloadsSignsTransactions(t *testing.T) {
	cfg := transactionConfig()
	private, _ := transaction.GenerateKey()
	raw, err := private.MarshalBinary()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cfg.Ledger.SignerKey = hexutil.Encode(raw)
	sender, err := transaction.PublicKey(private)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	payloads, err := ledgerPayloads(cfg, newLogger("info"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(payloads) != 3 || payloads[0] != "plain note" {
		t.Fatalf("expected the plain payload then 2 envelopes, got %q", payloads)
	}
	for i, payload := range payloads[1:] {
		env, err := transaction.Open([]byte(payload))
		if err != nil {
			t.Fatalf("envelope %d does not open: %v", i, err)
		}
		if env.Sender.String() != sender {
			t.Fatalf("envelope %d signed by %s, want %s", i, env.Sender, sender)
		}
	}
}

func TestLedgerPayloadsRejectsBadTransaction(t *testing.T) {
	cfg := transactionConfig()
	cfg.Ledger.Transactions[1].Data = ""

	if _, err := ledgerPayloads(cfg, newLogger("info")); !errors.Is(err, transaction.ErrMissingCode) {
		t.Fatalf("expected missing code error, got %v", err)
	}
}

// TestConfiguredTransactionsReachTheNode builds a chain from a config with
// transactions and runs it through the EVM executor: the signed blocks are
// accepted and broadcast, the plain one is not.
func TestConfiguredTransactionsReachTheNode(t *testing.T) {
	cfg := transactionConfig()
	logger := newLogger("info")

	bc, err := buildChain(context.Background(), cfg, logger)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bc.Len() != 4 {
		t.Fatalf("expected 4 blocks, got %d", bc.Len())
	}

	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	node := &nodeStub{}
	receipts, err := executeBlocks(context.Background(), evm.New(node, key), logger, bc.Blocks())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(receipts) != 3 {
		t.Fatalf("expected 3 receipts, got %d", len(receipts))
	}
	if receipts[0].Outcome.Accepted {
		t.Fatal("plain payload should not be accepted")
	}
	for _, r := range receipts[1:] {
		if r.Err != nil || !r.Outcome.Accepted {
			t.Fatalf("block %d: expected acceptance, got %+v", r.Index, r)
		}
	}
	if len(node.sent) != 2 {
		t.Fatalf("expected 2 broadcast transactions, got %d", len(node.sent))
	}
	if node.sent[0].To() == nil || node.sent[0].Value().Int64() != 1000 {
		t.Fatalf("unexpected call transaction %+v", node.sent[0])
	}
	if node.sent[1].To() != nil {
		t.Fatal("second transaction should be a deployment")
	}
}
