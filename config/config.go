// Package config loads the YAML configuration of the ledger binary.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	yaml "gopkg.in/yaml.v2"

	"github.com/luca-patrignani/powledger/ledger"
	"github.com/luca-patrignani/powledger/transaction"
)

// Config is the whole binary configuration, loaded from one YAML file.
type Config struct {
	Ledger struct {
		Difficulty   uint          `yaml:"difficulty"`
		Payloads     []string      `yaml:"payloads"`
		Transactions []Transaction `yaml:"transactions"`
		SignerKey    string        `yaml:"signer_key"` // hex Ed25519 scalar; empty generates one per run
	} `yaml:"ledger"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`

	Executor struct {
		Enabled    bool          `yaml:"enabled"`
		Endpoint   string        `yaml:"endpoint"`
		PrivateKey string        `yaml:"private_key"`
		ChainID    int64         `yaml:"chain_id"` // 0 asks the node
		Timeout    time.Duration `yaml:"timeout"`
	} `yaml:"executor"`
}

// Default returns the configuration used when no file is given: three demo
// blocks mined at difficulty 2 and no executor.
func Default() *Config {
	var cfg Config
	cfg.Ledger.Difficulty = 2
	cfg.Ledger.Payloads = []string{"Block 1 Data", "Block 2 Data", "Block 3 Data"}
	cfg.Log.Level = "info"
	cfg.Executor.Endpoint = "http://localhost:8545"
	cfg.Executor.Timeout = 30 * time.Second
	return &cfg
}

// Load reads filename over the defaults and validates the result.
func Load(filename string) (*Config, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cfg := Default()
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(cfg); err != nil {
		return nil, fmt.Errorf("decode %s: %w", filename, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the binary cannot run with. Difficulty is bounded
// here because mining never gives up on its own.
func (c *Config) Validate() error {
	if c.Ledger.Difficulty > ledger.MaxDifficulty {
		return fmt.Errorf("difficulty %d exceeds the maximum of %d", c.Ledger.Difficulty, ledger.MaxDifficulty)
	}
	for i, tx := range c.Ledger.Transactions {
		if _, err := tx.Build(); err != nil {
			return fmt.Errorf("transaction %d: %w", i, err)
		}
	}
	if c.Ledger.SignerKey != "" {
		if _, err := transaction.ParseKey(c.Ledger.SignerKey); err != nil {
			return err
		}
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Log.Level)
	}
	if c.Executor.Enabled {
		if c.Executor.Endpoint == "" {
			return errors.New("executor endpoint is required")
		}
		if c.Executor.PrivateKey == "" {
			return errors.New("executor private key is required")
		}
		if c.Executor.Timeout <= 0 {
			return errors.New("executor timeout must be positive")
		}
	}
	return nil
}
