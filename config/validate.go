package config

import "fmt"

// Validate checks proving config for obvious operator mistakes.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	if cfg.K1 == 0 {
		return fmt.Errorf("k1 must be > 0")
	}
	if cfg.K2 == 0 {
		return fmt.Errorf("k2 must be > 0")
	}
	if cfg.Scan.NoncesPerIteration == 0 || cfg.Scan.NoncesPerIteration%16 != 0 {
		return fmt.Errorf("scan.nonces_per_iter must be a positive multiple of 16")
	}
	if cfg.Scan.Threads < 0 {
		return fmt.Errorf("scan.threads must be >= 0")
	}
	if cfg.Scan.ReaderChunkBytes <= 0 || cfg.Scan.ReaderChunkBytes%128 != 0 {
		return fmt.Errorf("scan.reader_chunk_bytes must be a positive multiple of 128")
	}
	return nil
}
