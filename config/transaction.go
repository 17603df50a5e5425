package config

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/luca-patrignani/powledger/transaction"
)

// Transaction is the YAML form of a transaction to sign into a block payload.
// Amounts are decimal or 0x-prefixed hex strings; an empty To deploys Data as
// contract code.
type Transaction struct {
	To       string `yaml:"to"`
	Value    string `yaml:"value"`
	Data     string `yaml:"data"`
	GasLimit uint64 `yaml:"gas_limit"`
	GasPrice string `yaml:"gas_price"`
}

// Build converts t into a validated transaction.
func (t Transaction) Build() (transaction.Transaction, error) {
	var tx transaction.Transaction
	if t.To != "" {
		if !common.IsHexAddress(t.To) {
			return tx, fmt.Errorf("invalid address %q", t.To)
		}
		to := common.HexToAddress(t.To)
		tx.To = &to
	}
	var err error
	if tx.Value, err = parseAmount(t.Value); err != nil {
		return tx, fmt.Errorf("value: %w", err)
	}
	if tx.GasPrice, err = parseAmount(t.GasPrice); err != nil {
		return tx, fmt.Errorf("gas price: %w", err)
	}
	if t.Data != "" {
		if !has0xPrefix(t.Data) {
			t.Data = "0x" + t.Data
		}
		if tx.Data, err = hexutil.Decode(t.Data); err != nil {
			return tx, fmt.Errorf("data: %w", err)
		}
	}
	tx.GasLimit = t.GasLimit
	return tx, tx.Validate()
}

func parseAmount(s string) (*hexutil.Big, error) {
	if s == "" {
		return nil, nil
	}
	n, ok := new(big.Int).SetString(s, 0)
	if !ok {
		return nil, fmt.Errorf("invalid amount %q", s)
	}
	return (*hexutil.Big)(n), nil
}

func has0xPrefix(s string) bool {
	return len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}
