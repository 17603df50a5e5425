// Package transaction defines the transaction format carried inside block
// payloads and the signed envelope that binds a transaction to its submitter.
//
// The ledger never interprets payloads; this package is shared by the code
// that writes payloads and the executors that consume them.
package transaction

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

var ErrMissingCode = errors.New("contract deployment without code")

// Transaction is a contract call, a value transfer, or a contract deployment
// when To is nil.
type Transaction struct {
	To       *common.Address `json:"to,omitempty"`
	Value    *hexutil.Big    `json:"value,omitempty"`
	Data     hexutil.Bytes   `json:"data,omitempty"`
	GasLimit uint64          `json:"gas_limit"`
	GasPrice *hexutil.Big    `json:"gas_price,omitempty"` // nil lets the executor pick one
}

// IsDeployment reports whether the transaction creates a contract.
func (tx Transaction) IsDeployment() bool {
	return tx.To == nil
}

// Validate checks the fields every executor relies on.
func (tx Transaction) Validate() error {
	if tx.IsDeployment() && len(tx.Data) == 0 {
		return ErrMissingCode
	}
	if tx.GasLimit == 0 {
		return errors.New("gas limit must be positive")
	}
	if tx.Value != nil && tx.Value.ToInt().Sign() < 0 {
		return errors.New("negative value")
	}
	return nil
}

// Encode returns the canonical JSON encoding of tx.
func (tx Transaction) Encode() ([]byte, error) {
	return json.Marshal(tx)
}

// Decode parses a transaction produced by Encode.
func Decode(data []byte) (Transaction, error) {
	var tx Transaction
	if err := json.Unmarshal(data, &tx); err != nil {
		return Transaction{}, fmt.Errorf("decode transaction: %w", err)
	}
	return tx, nil
}
