// Package evm adapts an Ethereum JSON-RPC node to the executor.Executor
// interface. Payloads are signed transaction envelopes; each one is turned
// into a legacy EVM transaction, signed with the executor's account key and
// broadcast.
package evm

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/luca-patrignani/powledger/executor"
	"github.com/luca-patrignani/powledger/transaction"
)

// Client is the part of ethclient.Client the executor needs.
type Client interface {
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	ChainID(ctx context.Context) (*big.Int, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
}

// Executor submits transaction envelopes to an EVM node from a single
// account.
type Executor struct {
	client  Client
	key     *ecdsa.PrivateKey
	from    common.Address
	chainID *big.Int
	timeout time.Duration
}

var _ executor.Executor = (*Executor)(nil)

// Option configures an Executor.
type Option func(Executor) Executor

// New returns an Executor that signs with key and talks to client. Unless
// WithChainID is given the chain id is asked from the node on every Submit.
func New(client Client, key *ecdsa.PrivateKey, opts ...Option) *Executor {
	e := Executor{
		client:  client,
		key:     key,
		from:    crypto.PubkeyToAddress(key.PublicKey),
		timeout: 30 * time.Second,
	}
	for _, opt := range opts {
		e = opt(e)
	}
	return &e
}

// Dial connects to the node at endpoint and signs with the hex encoded
// secp256k1 key.
func Dial(ctx context.Context, endpoint string, hexKey string, opts ...Option) (*Executor, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(hexKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	client, err := ethclient.DialContext(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", endpoint, err)
	}
	return New(client, key, opts...), nil
}

// WithChainID fixes the chain id instead of asking the node.
func WithChainID(id *big.Int) Option {
	return func(e Executor) Executor {
		e.chainID = new(big.Int).Set(id)
		return e
	}
}

// WithTimeout bounds every Submit call.
func WithTimeout(timeout time.Duration) Option {
	return func(e Executor) Executor {
		e.timeout = timeout
		return e
	}
}

// Address returns the account transactions are sent from.
func (e *Executor) Address() common.Address {
	return e.from
}

// Submit opens the envelope in payload and broadcasts the transaction it
// carries. Payloads that are not valid envelopes are reported as not
// accepted; node errors are returned.
func (e *Executor) Submit(ctx context.Context, payload []byte) (executor.Outcome, error) {
	env, err := transaction.Open(payload)
	if err != nil {
		return executor.Outcome{Accepted: false, Detail: err.Error()}, nil
	}
	tx := env.Transaction

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	nonce, err := e.client.PendingNonceAt(ctx, e.from)
	if err != nil {
		return executor.Outcome{}, fmt.Errorf("failed to get nonce: %w", err)
	}

	var gasPrice *big.Int
	if tx.GasPrice != nil {
		gasPrice = tx.GasPrice.ToInt()
	} else {
		gasPrice, err = e.client.SuggestGasPrice(ctx)
		if err != nil {
			return executor.Outcome{}, fmt.Errorf("failed to suggest gas price: %w", err)
		}
	}

	chainID := e.chainID
	if chainID == nil {
		chainID, err = e.client.ChainID(ctx)
		if err != nil {
			return executor.Outcome{}, fmt.Errorf("failed to get chain id: %w", err)
		}
	}

	value := big.NewInt(0)
	if tx.Value != nil {
		value = tx.Value.ToInt()
	}

	unsigned := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		GasPrice: gasPrice,
		Gas:      tx.GasLimit,
		To:       tx.To,
		Value:    value,
		Data:     tx.Data,
	})
	signed, err := types.SignTx(unsigned, types.LatestSignerForChainID(chainID), e.key)
	if err != nil {
		return executor.Outcome{}, fmt.Errorf("failed to sign transaction: %w", err)
	}
	if err := e.client.SendTransaction(ctx, signed); err != nil {
		return executor.Outcome{}, fmt.Errorf("failed to send transaction: %w", err)
	}

	var detail string
	if tx.IsDeployment() {
		detail = "deployment to " + crypto.CreateAddress(e.from, nonce).Hex()
	} else {
		detail = "call to " + tx.To.Hex()
	}
	return executor.Outcome{
		Reference: signed.Hash().Hex(),
		Accepted:  true,
		Detail:    detail,
	}, nil
}
