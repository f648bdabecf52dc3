// Package config handles proving-core configuration.
//
// Configuration is split into two categories:
//   - Proof parameters: k1/k2/k3 and the PoW target. These must match the
//     values used at initialization time or proofs will not verify.
//   - Runtime settings: data directory, thread count, logging. These can vary
//     freely between invocations without affecting proof validity.
package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// ScryptParams holds parameters for the auxiliary KDF used during dataset
// initialization. The proving core never runs scrypt itself; the fields
// exist only so a loaded Config round-trips the values initialization wrote.
type ScryptParams struct {
	N int `conf:"scrypt.n"`
	R int `conf:"scrypt.r"`
	P int `conf:"scrypt.p"`
}

// Config holds the proof parameters and runtime settings for a proving run.
type Config struct {
	// Proof parameters (must match the values the dataset was initialized with).
	K1           uint32       `conf:"k1"`
	K2           uint32       `conf:"k2"`
	K3           uint32       `conf:"k3"`
	PowDifficulty [32]byte    `conf:"pow_difficulty"`
	Scrypt       ScryptParams `conf:"scrypt"`

	// Runtime
	DataDir string       `conf:"datadir"`
	Scan    ScanConfig
	Log     LogConfig
}

// ScanConfig holds operational settings for the scan orchestrator. None of
// these affect proof validity, only how fast a proof is found.
type ScanConfig struct {
	NoncesPerIteration uint32 `conf:"scan.nonces_per_iter"` // Must be a multiple of 16.
	Threads            int    `conf:"scan.threads"`         // Worker pool size for cipher construction and batch scanning.
	ReaderChunkBytes    int    `conf:"scan.reader_chunk_bytes"`
	CheckpointEnabled   bool   `conf:"scan.checkpoint"` // Persist nonce-range progress so a restart resumes instead of rescanning.
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `conf:"log.level"`
	File  string `conf:"log.file"`
	JSON  bool   `conf:"log.json"`
}

// DefaultDataDir returns the platform-specific default data directory.
//
//	Linux:   ~/.postprove
//	macOS:   ~/Library/Application Support/Postprove
//	Windows: %APPDATA%\Postprove
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".postprove"
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "Postprove")
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData != "" {
			return filepath.Join(appData, "Postprove")
		}
		return filepath.Join(home, "AppData", "Roaming", "Postprove")
	default:
		return filepath.Join(home, ".postprove")
	}
}

// MetadataFile returns the path to the initialization metadata file.
func (c *Config) MetadataFile() string {
	return filepath.Join(c.DataDir, "postdata_metadata.json")
}

// CheckpointDir returns the directory for persisted scan progress.
func (c *Config) CheckpointDir() string {
	return filepath.Join(c.DataDir, "prove_checkpoint")
}

// LogsDir returns the logs directory.
func (c *Config) LogsDir() string {
	return filepath.Join(c.DataDir, "logs")
}

// ConfigFile returns the config file path.
func (c *Config) ConfigFile() string {
	return filepath.Join(c.DataDir, "postprove.conf")
}
