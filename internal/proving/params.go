// Package proving implements the proof-of-space proving core: the prover,
// its cipher construction, the batched scan algorithm, and the escalation
// orchestrator.
package proving

import (
	"fmt"

	"github.com/Klingon-tech/klingnet-post/config"
	"github.com/Klingon-tech/klingnet-post/internal/difficulty"
	"github.com/Klingon-tech/klingnet-post/internal/metadata"
)

// Proof is the result of a successful proving run.
type Proof struct {
	Nonce   uint32
	Indices []uint64
	Pow     uint64
}

// ProvingParams holds the derived, immutable parameters a proving run scans
// against: the 64-bit label difficulty and the per-unit-scaled PoW target.
type ProvingParams struct {
	Difficulty    uint64
	PowDifficulty [32]byte
}

// NewProvingParams derives ProvingParams from the dataset metadata and the
// resolved config. num_units == 1 leaves PowDifficulty unchanged from
// cfg.PowDifficulty; num_units > 1 strictly shrinks it.
func NewProvingParams(cfg *config.Config, meta *metadata.Metadata) (*ProvingParams, error) {
	d, err := difficulty.ProvingDifficulty(uint64(cfg.K1), meta.NumLabels())
	if err != nil {
		return nil, fmt.Errorf("proving params: %w", err)
	}

	scaled := difficulty.ScalePoWDifficulty(cfg.PowDifficulty, meta.NumUnits)

	return &ProvingParams{
		Difficulty:    d,
		PowDifficulty: scaled,
	}, nil
}
