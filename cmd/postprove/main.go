// Command postprove generates a single proof-of-space proof for a challenge
// against a previously initialized dataset.
package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Klingon-tech/klingnet-post/config"
	"github.com/Klingon-tech/klingnet-post/internal/checkpoint"
	"github.com/Klingon-tech/klingnet-post/internal/compression"
	"github.com/Klingon-tech/klingnet-post/internal/log"
	"github.com/Klingon-tech/klingnet-post/internal/metadata"
	"github.com/Klingon-tech/klingnet-post/internal/pow"
	"github.com/Klingon-tech/klingnet-post/internal/proving"
	"github.com/Klingon-tech/klingnet-post/internal/reader"
	"github.com/Klingon-tech/klingnet-post/internal/storage"
)

func main() {
	cfg, flags, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	if err := log.Init(cfg.Log.Level, cfg.Log.JSON, cfg.Log.File); err != nil {
		fmt.Fprintln(os.Stderr, "error initializing logger:", err)
		os.Exit(1)
	}

	cliLog := log.WithComponent("cli")
	cliLog.Debug().Str("data_dir", cfg.DataDir).Msg("configuration loaded")

	if flags.Challenge == "" {
		fmt.Fprintln(os.Stderr, "error: --challenge is required")
		os.Exit(1)
	}
	challengeBytes, err := hex.DecodeString(flags.Challenge)
	if err != nil || len(challengeBytes) != 32 {
		fmt.Fprintln(os.Stderr, "error: --challenge must be 64 hex chars")
		os.Exit(1)
	}
	var challenge [32]byte
	copy(challenge[:], challengeBytes)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, challenge); err != nil {
		log.Proving.Error().Err(err).Msg("proving run failed")
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, challenge [32]byte) error {
	meta, err := metadata.Load(cfg.MetadataFile())
	if err != nil {
		return fmt.Errorf("loading metadata: %w", err)
	}

	params, err := proving.NewProvingParams(cfg, meta)
	if err != nil {
		return fmt.Errorf("deriving proving params: %w", err)
	}

	oracle := &pow.CPUOracle{Threads: cfg.Scan.Threads}

	rdr, err := reader.NewFileReader(cfg.DataDir, cfg.Scan.ReaderChunkBytes, meta.MaxFileSize)
	if err != nil {
		return fmt.Errorf("opening reader: %w", err)
	}
	defer rdr.Close()

	var ckpt *checkpoint.Store
	if cfg.Scan.CheckpointEnabled {
		db, err := storage.NewBadger(cfg.CheckpointDir())
		if err != nil {
			return fmt.Errorf("opening checkpoint store: %w", err)
		}
		defer db.Close()
		ckpt = checkpoint.New(db)
	}

	log.Proving.Info().
		Uint32("k1", cfg.K1).Uint32("k2", cfg.K2).
		Uint64("num_labels", meta.NumLabels()).
		Msg("starting proving run")

	proof, err := proving.GenerateProof(ctx, challenge, cfg, meta, params, oracle, rdr, ckpt)
	if err != nil {
		return fmt.Errorf("generating proof: %w", err)
	}

	bitsPerIndex := compression.RequiredBits(meta.NumLabels())
	packed := compression.CompressIndices(proof.Indices, bitsPerIndex)

	log.Proving.Info().
		Uint32("nonce", proof.Nonce).
		Uint64("pow", proof.Pow).
		Int("num_indices", len(proof.Indices)).
		Msg("proof found")

	fmt.Printf("nonce=%d pow=%d indices=%s\n", proof.Nonce, proof.Pow, hex.EncodeToString(packed))
	return nil
}
