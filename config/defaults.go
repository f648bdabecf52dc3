package config

// DefaultNoncesPerIteration is the initial width of the nonce range the
// scan orchestrator tries before escalating (must be a multiple of 16).
const DefaultNoncesPerIteration = 16 * 10

// DefaultReaderChunkBytes is the reader's internal buffer size. Tuning only;
// never affects which labels pass the difficulty predicate.
const DefaultReaderChunkBytes = 1024 * 1024

// Default returns the default proving configuration. K1/K2/K3 and
// PowDifficulty are placeholders — real values come from the config file or
// flags (the dataset's metadata file does not carry them) and must match the
// values the dataset was initialized with.
func Default() *Config {
	return &Config{
		K1: 26,
		K2: 37,
		K3: 37,
		Scrypt: ScryptParams{
			N: 512,
			R: 1,
			P: 1,
		},
		DataDir: DefaultDataDir(),
		Scan: ScanConfig{
			NoncesPerIteration: DefaultNoncesPerIteration,
			Threads:            1,
			ReaderChunkBytes:   DefaultReaderChunkBytes,
			CheckpointEnabled:  true,
		},
		Log: LogConfig{
			Level: "info",
			JSON:  false,
		},
	}
}
