package proving

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/Klingon-tech/klingnet-post/config"
	"github.com/Klingon-tech/klingnet-post/internal/checkpoint"
	"github.com/Klingon-tech/klingnet-post/internal/log"
	"github.com/Klingon-tech/klingnet-post/internal/metadata"
	"github.com/Klingon-tech/klingnet-post/internal/metrics"
	"github.com/Klingon-tech/klingnet-post/internal/pow"
	"github.com/Klingon-tech/klingnet-post/internal/reader"
)

// accumulator tracks, for the current nonce range, the indices collected per
// nonce so far. Guarded by mu; the scan workers serialize all writes through
// it. Contention is expected to be low since consume only fires for labels
// that pass the MSB (and occasionally LSB) filter.
type accumulator struct {
	mu  sync.Mutex
	k2  int
	byN map[uint32][]uint64
}

func newAccumulator(k2 int) *accumulator {
	return &accumulator{k2: k2, byN: make(map[uint32][]uint64)}
}

// add records idx for nonce n and reports whether that nonce has now
// collected k2 indices, returning the finalized (and truncated) list when so.
func (a *accumulator) add(n uint32, idx uint64) ([]uint64, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.byN[n] = append(a.byN[n], idx)
	if len(a.byN[n]) >= a.k2 {
		out := a.byN[n][:a.k2]
		return out, true
	}
	return nil, false
}

// GenerateProof runs the escalating nonce-range scan described in SPEC_FULL.md
// §4.6: for each widening nonce range, it builds a Prover, dispatches reader
// batches to a bounded worker pool, and returns as soon as some nonce
// accumulates k2 indices. Ranges that are exhausted without success advance
// the checkpoint (if enabled) before escalating.
func GenerateProof(ctx context.Context, challenge [32]byte, cfg *config.Config, meta *metadata.Metadata, params *ProvingParams, oracle pow.Oracle, rdr reader.Reader, ckpt *checkpoint.Store) (*Proof, error) {
	start := uint32(0)
	if ckpt != nil {
		if resumed, ok, err := ckpt.NextStart(challenge); err == nil && ok {
			start = resumed
		}
	}

	width := cfg.Scan.NoncesPerIteration
	end := start + width

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		metrics.CurrentNonceRangeStart.Set(float64(start))
		log.Proving.Info().Uint32("start", start).Uint32("end", end).Msg("scanning nonce range")

		proverCtx, cancel := context.WithCancel(ctx)
		p, err := New(proverCtx, challenge, start, end, params, oracle, cfg.Scan.Threads)
		if err != nil {
			cancel()
			return nil, fmt.Errorf("proving: constructing prover for [%d,%d): %w", start, end, err)
		}

		acc := newAccumulator(int(cfg.K2))
		result, err := scanRange(proverCtx, p, rdr, acc, cfg.Scan.Threads)
		cancel()
		if err != nil {
			return nil, err
		}

		if result != nil {
			if ckpt != nil {
				_ = ckpt.Clear(challenge)
			}
			return &Proof{
				Nonce:   result.nonce,
				Indices: result.indices,
				Pow:     p.Pow(result.nonce),
			}, nil
		}

		if ckpt != nil {
			_ = ckpt.Save(challenge, end)
		}
		metrics.NonceRangesEscalated.Inc()
		start, end = end, end+width
	}
}

type scanResult struct {
	nonce   uint32
	indices []uint64
}

// scanRange drives a bounded worker pool pulling batches from rdr, handing
// each to prover.Prove, until either a proof is found (result != nil) or the
// reader is exhausted (result == nil, err == nil).
func scanRange(ctx context.Context, prover *Prover, rdr reader.Reader, acc *accumulator, threads int) (*scanResult, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var found scanResult
	var foundOnce sync.Once
	foundAny := false

	if threads <= 0 {
		threads = 1
	}
	g, gctx := errgroup.WithContext(ctx)

	// Reader implementations (e.g. reader.FileReader) are not required to
	// support concurrent Next calls; a single mutex serializes the pull side
	// while label scanning (the expensive part) still runs in parallel.
	var readMu sync.Mutex
	next := func() (reader.Batch, bool, error) {
		readMu.Lock()
		defer readMu.Unlock()
		return rdr.Next(gctx)
	}

	for i := 0; i < threads; i++ {
		g.Go(func() error {
			for {
				batch, ok, err := next()
				if err != nil {
					if gctx.Err() != nil {
						return nil
					}
					return err
				}
				if !ok {
					return nil
				}

				consume := func(nonce uint32, idx uint64) ([]uint64, bool) {
					return acc.add(nonce, idx)
				}

				nonce, indices, done, err := prover.Prove(gctx, batch.Data, batch.Pos/16, consume)
				if err != nil {
					if gctx.Err() != nil {
						return nil
					}
					return err
				}
				if done {
					foundOnce.Do(func() {
						found = scanResult{nonce: nonce, indices: indices}
						foundAny = true
					})
					cancel()
					return nil
				}
			}
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if foundAny {
		return &found, nil
	}
	return nil, nil
}
