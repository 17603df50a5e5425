package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/big"
	"os"
	"os/signal"

	"github.com/pterm/pterm"
	"github.com/pterm/pterm/putils"
	"go.dedis.ch/kyber/v4"

	"github.com/luca-patrignani/powledger/config"
	"github.com/luca-patrignani/powledger/executor"
	"github.com/luca-patrignani/powledger/executor/evm"
	"github.com/luca-patrignani/powledger/ledger"
	"github.com/luca-patrignani/powledger/transaction"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			pterm.Error.Printfln("failed to load config: %v", err)
			os.Exit(1)
		}
	}
	if args := flag.Args(); len(args) > 0 {
		cfg.Ledger.Payloads = args
	}

	logger := newLogger(cfg.Log.Level)

	pterm.DefaultBigText.WithLetters(
		putils.LettersFromStringWithStyle("POW", pterm.FgRed.ToStyle()),
		putils.LettersFromStringWithStyle("ledger", pterm.FgDarkGray.ToStyle()),
	).Render()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	bc, err := buildChain(ctx, cfg, logger)
	if err != nil {
		logger.Error("mining stopped", "error", err)
		os.Exit(1)
	}

	printChain(bc.Blocks())
	pterm.Println(getValidityMessage(bc.Verify()))

	if !cfg.Executor.Enabled {
		return
	}
	if err := dispatch(ctx, cfg, logger, bc.Blocks()); err != nil {
		logger.Error("dispatch failed", "error", err)
		os.Exit(1)
	}
}

func newLogger(level string) *slog.Logger {
	switch level {
	case "debug":
		pterm.DefaultLogger.Level = pterm.LogLevelDebug
	case "warn":
		pterm.DefaultLogger.Level = pterm.LogLevelWarn
	case "error":
		pterm.DefaultLogger.Level = pterm.LogLevelError
	default:
		pterm.DefaultLogger.Level = pterm.LogLevelInfo
	}
	handler := pterm.NewSlogHandler(&pterm.DefaultLogger)
	return slog.New(handler)
}

// ledgerPayloads returns the plain payloads followed by one signed envelope
// per configured transaction.
func ledgerPayloads(cfg *config.Config, logger *slog.Logger) ([]string, error) {
	payloads := append([]string(nil), cfg.Ledger.Payloads...)
	if len(cfg.Ledger.Transactions) == 0 {
		return payloads, nil
	}

	signer, err := signerKey(cfg.Ledger.SignerKey)
	if err != nil {
		return nil, err
	}
	sender, err := transaction.PublicKey(signer)
	if err != nil {
		return nil, err
	}
	logger.Info("signing transactions", "sender", sender, "count", len(cfg.Ledger.Transactions))

	for i, t := range cfg.Ledger.Transactions {
		tx, err := t.Build()
		if err != nil {
			return nil, fmt.Errorf("transaction %d: %w", i, err)
		}
		env, err := transaction.Sign(signer, tx)
		if err != nil {
			return nil, fmt.Errorf("transaction %d: %w", i, err)
		}
		payload, err := env.Encode()
		if err != nil {
			return nil, fmt.Errorf("transaction %d: %w", i, err)
		}
		payloads = append(payloads, string(payload))
	}
	return payloads, nil
}

func signerKey(hexKey string) (kyber.Scalar, error) {
	if hexKey == "" {
		private, _ := transaction.GenerateKey()
		return private, nil
	}
	return transaction.ParseKey(hexKey)
}

func buildChain(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*ledger.Blockchain, error) {
	payloads, err := ledgerPayloads(cfg, logger)
	if err != nil {
		return nil, err
	}

	bc := ledger.NewBlockchain(ledger.WithLogger(logger))
	for _, payload := range payloads {
		spinner, _ := pterm.DefaultSpinner.Start(fmt.Sprintf("Mining block %d at difficulty %d ...", bc.Len(), cfg.Ledger.Difficulty))
		block, err := bc.AppendContext(ctx, payload, cfg.Ledger.Difficulty)
		if err != nil {
			spinner.Fail(err.Error())
			return nil, err
		}
		spinner.Success(fmt.Sprintf("Block %d sealed with nonce %d", block.Index, block.Nonce))
	}
	return bc, nil
}

func dispatch(ctx context.Context, cfg *config.Config, logger *slog.Logger, blocks []ledger.Block) error {
	opts := []evm.Option{evm.WithTimeout(cfg.Executor.Timeout)}
	if cfg.Executor.ChainID != 0 {
		opts = append(opts, evm.WithChainID(big.NewInt(cfg.Executor.ChainID)))
	}
	exec, err := evm.Dial(ctx, cfg.Executor.Endpoint, cfg.Executor.PrivateKey, opts...)
	if err != nil {
		return err
	}
	pterm.Info.Printfln("Executing payloads from %s", exec.Address().Hex())

	receipts, err := executeBlocks(ctx, exec, logger, blocks)
	if err != nil {
		return err
	}
	return printReceipts(receipts)
}

func executeBlocks(ctx context.Context, exec executor.Executor, logger *slog.Logger, blocks []ledger.Block) ([]executor.Receipt, error) {
	return executor.NewDispatcher(exec, executor.WithLogger(logger)).Dispatch(ctx, blocks)
}
