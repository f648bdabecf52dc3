package config

import (
	"encoding/hex"
	"flag"
	"fmt"
	"os"
)

// Flags holds parsed command-line flags.
type Flags struct {
	// Commands
	Help    bool
	Version bool

	// Core
	DataDir string
	Config  string

	// Challenge to prove, as a hex string. Required unless --help/--version.
	Challenge string

	// Proof parameters (override the config file and defaults; rarely needed outside tests).
	K1            uint
	K2            uint
	K3            uint
	PowDifficulty string

	// Scan
	NoncesPerIteration uint
	Threads            int
	ReaderChunkBytes   int
	Checkpoint         bool

	// Logging
	LogLevel string
	LogFile  string
	LogJSON  bool

	// Remaining args
	Args []string

	// Explicitly-set bool flags (for true/false overrides).
	SetCheckpoint bool
	SetLogJSON    bool
}

// ParseFlags parses command-line flags.
func ParseFlags() *Flags {
	f := &Flags{}
	fs := flag.NewFlagSet("postprove", flag.ContinueOnError)

	// Commands
	fs.BoolVar(&f.Help, "help", false, "Show help message")
	fs.BoolVar(&f.Help, "h", false, "Show help message (shorthand)")
	fs.BoolVar(&f.Version, "version", false, "Show version information")
	fs.BoolVar(&f.Version, "v", false, "Show version (shorthand)")

	// Core
	fs.StringVar(&f.DataDir, "datadir", "", "Data directory containing the initialized POS dataset")
	fs.StringVar(&f.Config, "config", "", "Config file path")
	fs.StringVar(&f.Config, "c", "", "Config file path (shorthand)")
	fs.StringVar(&f.Challenge, "challenge", "", "Challenge to prove, as a hex string")

	// Proof parameters
	fs.UintVar(&f.K1, "k1", 0, "Override k1 (expected labels per nonce passing the difficulty test; sets the difficulty)")
	fs.UintVar(&f.K2, "k2", 0, "Override k2 (total labels required for a valid proof)")
	fs.UintVar(&f.K3, "k3", 0, "Override k3 (verifier-side parameter; not used by the prover)")
	fs.StringVar(&f.PowDifficulty, "pow-difficulty", "", "Override PoW difficulty target, as 64 hex chars")

	// Scan
	fs.UintVar(&f.NoncesPerIteration, "nonces-per-iter", 0, "Initial nonce range width per escalation step (multiple of 16)")
	fs.IntVar(&f.Threads, "threads", 0, "Worker pool size for cipher construction and batch scanning")
	fs.IntVar(&f.ReaderChunkBytes, "reader-chunk-bytes", 0, "Reader internal buffer size in bytes")
	fs.BoolVar(&f.Checkpoint, "checkpoint", true, "Persist nonce-range progress so a restart resumes instead of rescanning")

	// Logging
	fs.StringVar(&f.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&f.LogFile, "log-file", "", "Log file path")
	fs.BoolVar(&f.LogJSON, "log-json", false, "Output logs as JSON")

	fs.Usage = func() {
		printUsage()
	}

	if err := fs.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	f.SetCheckpoint = isFlagSet(fs, "checkpoint")
	f.SetLogJSON = isFlagSet(fs, "log-json")
	f.Args = fs.Args()

	return f
}

// ApplyFlags applies command-line flags to a Config struct.
func ApplyFlags(cfg *Config, f *Flags) error {
	if f.DataDir != "" {
		cfg.DataDir = f.DataDir
	}

	if f.K1 != 0 {
		cfg.K1 = uint32(f.K1)
	}
	if f.K2 != 0 {
		cfg.K2 = uint32(f.K2)
	}
	if f.K3 != 0 {
		cfg.K3 = uint32(f.K3)
	}
	if f.PowDifficulty != "" {
		b, err := hex.DecodeString(f.PowDifficulty)
		if err != nil || len(b) != 32 {
			return fmt.Errorf("--pow-difficulty must be 64 hex chars")
		}
		copy(cfg.PowDifficulty[:], b)
	}

	if f.NoncesPerIteration != 0 {
		cfg.Scan.NoncesPerIteration = uint32(f.NoncesPerIteration)
	}
	if f.Threads != 0 {
		cfg.Scan.Threads = f.Threads
	}
	if f.ReaderChunkBytes != 0 {
		cfg.Scan.ReaderChunkBytes = f.ReaderChunkBytes
	}
	if f.SetCheckpoint {
		cfg.Scan.CheckpointEnabled = f.Checkpoint
	}

	if f.LogLevel != "" {
		cfg.Log.Level = f.LogLevel
	}
	if f.LogFile != "" {
		cfg.Log.File = f.LogFile
	}
	if f.SetLogJSON {
		cfg.Log.JSON = f.LogJSON
	}

	return nil
}

// isFlagSet checks if a flag was explicitly set.
func isFlagSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

func printUsage() {
	usage := `postprove - Proof-of-Space proof generation core

Usage:
  postprove --challenge=<hex> [options]
  postprove --help

Commands:
  --help, -h      Show this help message
  --version, -v   Show version information

Core Options:
  --datadir       Data directory containing the initialized POS dataset (default: ~/.postprove)
  --config, -c    Config file path (default: <datadir>/postprove.conf)
  --challenge     Challenge to prove, as a hex string (required)

Proof Parameter Overrides (must match dataset initialization, rarely needed):
  --k1                Expected labels per nonce passing the difficulty test (sets the difficulty)
  --k2                Total labels required for a valid proof
  --k3                Verifier-side parameter (not used by the prover)
  --pow-difficulty    PoW difficulty target, as 64 hex chars

Scan Options (operational only — never affect proof validity):
  --nonces-per-iter     Initial nonce range width per escalation step (default: 160)
  --threads             Worker pool size (default: 1)
  --reader-chunk-bytes  Reader internal buffer size in bytes (default: 1048576)
  --checkpoint          Persist nonce-range progress across restarts (default: true)

Logging Options:
  --log-level     Log level: debug, info, warn, error (default: info)
  --log-file      Log file path (default: stdout)
  --log-json      Output logs as JSON

Examples:
  # Generate a proof for a challenge against an initialized dataset
  postprove --datadir=/data/post --challenge=aabbccdd...

  # Resume an interrupted run with more worker threads
  postprove --datadir=/data/post --challenge=aabbccdd... --threads=4

Note:
  k1/k2/k3 and the PoW difficulty are taken from the config file (or the
  built-in defaults); the dataset's metadata file does not carry them.
  A mismatch with the values the dataset was initialized with will
  produce proofs that do not verify.
`
	fmt.Print(usage)
}

// Load loads configuration with the following precedence:
// 1. Default values
// 2. Auto-create data dir + default config (idempotent)
// 3. Config file
// 4. Command-line flags
func Load() (*Config, *Flags, error) {
	flags := ParseFlags()

	if flags.Help {
		printUsage()
		os.Exit(0)
	}
	if flags.Version {
		fmt.Println("postprove version 0.1.0")
		os.Exit(0)
	}

	cfg := Default()

	if flags.DataDir != "" {
		cfg.DataDir = flags.DataDir
	}

	if err := EnsureDataDirs(cfg); err != nil {
		return nil, nil, fmt.Errorf("ensuring data dirs: %w", err)
	}

	configPath := flags.Config
	if configPath == "" {
		configPath = cfg.ConfigFile()
	}

	fileValues, err := LoadFile(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config file: %w", err)
	}

	if err := ApplyFileConfig(cfg, fileValues); err != nil {
		return nil, nil, fmt.Errorf("applying config file: %w", err)
	}

	if err := ApplyFlags(cfg, flags); err != nil {
		return nil, nil, fmt.Errorf("applying flags: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, flags, nil
}

// EnsureDataDirs creates the data directory structure and a default config
// file if they don't already exist. Idempotent — safe to call on every
// startup.
func EnsureDataDirs(cfg *Config) error {
	dirs := []string{
		cfg.DataDir,
		cfg.CheckpointDir(),
		cfg.LogsDir(),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}

	configPath := cfg.ConfigFile()
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := WriteDefaultConfig(configPath); err != nil {
			return fmt.Errorf("writing config file: %w", err)
		}
	}

	return nil
}
