// Package config loads the almonry run configuration. Settings are YAML with
// every field optional; unset fields keep the engine defaults.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kingrea/The-Almonry/internal/consensus"
)

// File models the on-disk configuration. Pointer fields distinguish "unset"
// from zero so partial files override only what they name.
type File struct {
	MaxRounds          *int     `yaml:"max_rounds,omitempty"`
	ApprovalThreshold  *float64 `yaml:"approval_threshold,omitempty"`
	EscalateOnDeadlock *bool    `yaml:"escalate_on_deadlock,omitempty"`
	MinConfidence      *float64 `yaml:"min_confidence,omitempty"`
	VaultAddress       *string  `yaml:"vault_address,omitempty"`

	LedgerDir string `yaml:"ledger_dir,omitempty"`
	LogPath   string `yaml:"log_path,omitempty"`
}

// Config is the resolved runtime configuration.
type Config struct {
	Consensus consensus.Config
	LedgerDir string
	LogPath   string
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Consensus: consensus.DefaultConfig(),
		LedgerDir: ".almonry/ledger",
		LogPath:   ".almonry/logs/almonry.log",
	}
}

// Load reads the file at path and resolves it against the defaults. A missing
// file is not an error; the defaults are returned as-is.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return file.resolve(cfg), nil
}

func (f File) resolve(base Config) Config {
	overrides := consensus.ConfigOverrides{
		MaxRounds:          f.MaxRounds,
		ApprovalThreshold:  f.ApprovalThreshold,
		EscalateOnDeadlock: f.EscalateOnDeadlock,
		MinConfidence:      f.MinConfidence,
		VaultAddress:       f.VaultAddress,
	}
	base.Consensus = overrides.Apply(base.Consensus)
	if f.LedgerDir != "" {
		base.LedgerDir = f.LedgerDir
	}
	if f.LogPath != "" {
		base.LogPath = f.LogPath
	}
	return base
}
