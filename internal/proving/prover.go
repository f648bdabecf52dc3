package proving

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/Klingon-tech/klingnet-post/internal/cipher"
	"github.com/Klingon-tech/klingnet-post/internal/difficulty"
	"github.com/Klingon-tech/klingnet-post/internal/metrics"
	"github.com/Klingon-tech/klingnet-post/internal/pow"
)

// ErrInvalidNonceRange is returned when a nonce range does not satisfy
// start%16==0, a positive multiple-of-16 length.
var ErrInvalidNonceRange = errors.New("proving: invalid nonce range")

// Prover holds the cipher pair built for a specific nonce range and the
// split difficulty it tests labels against. A Prover is immutable once
// constructed and is discarded once its range is exhausted.
type Prover struct {
	start, end uint32

	primary   []*cipher.AesCipher // one per nonce group
	secondary []*cipher.AesCipher // one per nonce

	msb uint8
	lsb uint64
}

// New constructs a Prover for nonces in [start, end). It calls oracle once
// per nonce group (in parallel, bounded by threads) to obtain the PoW value
// binding each group, then builds the secondary cipher for every nonce from
// its group's PoW value.
func New(ctx context.Context, challenge [32]byte, start, end uint32, params *ProvingParams, oracle pow.Oracle, threads int) (*Prover, error) {
	if start%NoncesPerGroup != 0 || end <= start || (end-start)%NoncesPerGroup != 0 {
		return nil, ErrInvalidNonceRange
	}

	numGroups := (end - start) / NoncesPerGroup
	primary := make([]*cipher.AesCipher, numGroups)

	var challengePrefix [8]byte
	copy(challengePrefix[:], challenge[:8])

	g, gctx := errgroup.WithContext(ctx)
	if threads > 0 {
		g.SetLimit(threads)
	}
	for i := uint32(0); i < numGroups; i++ {
		i := i
		g.Go(func() error {
			group := start/NoncesPerGroup + i
			powVal, err := oracle.Prove(gctx, group, challengePrefix, params.PowDifficulty)
			if err != nil {
				return fmt.Errorf("proving: pow failed for group %d: %w", group, err)
			}
			c, err := cipher.NewPrimary(challenge, group, powVal)
			if err != nil {
				return err
			}
			primary[i] = c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	secondary := make([]*cipher.AesCipher, end-start)
	for n := start; n < end; n++ {
		rel := n - start
		groupIdx := rel / NoncesPerGroup
		group := start/NoncesPerGroup + groupIdx
		powVal := primary[groupIdx].Pow
		c, err := cipher.NewSecondary(challenge, n, group, powVal)
		if err != nil {
			return nil, err
		}
		secondary[rel] = c
	}

	msb, lsb := difficulty.SplitDifficulty(params.Difficulty)

	return &Prover{
		start: start, end: end,
		primary: primary, secondary: secondary,
		msb: msb, lsb: lsb,
	}, nil
}

// Pow returns the PoW value bound to the group containing nonce n.
func (p *Prover) Pow(n uint32) uint64 {
	rel := n - p.start
	groupIdx := rel / NoncesPerGroup
	return p.primary[groupIdx].Pow
}

// Consume is invoked for every (nonce, index) pair whose label passes the
// difficulty predicate. It returns the finalized index list and true to
// short-circuit the scan, or nil, false to keep scanning.
type Consume func(nonce uint32, index uint64) (finalized []uint64, done bool)

const chunkBytes = 128
const labelBytes = 16
const labelsPerChunk = chunkBytes / labelBytes

// Prove scans batch (whose length must be a multiple of 128) starting at
// baseIndex (the logical label index of batch[0]), invoking consume for
// every passing (nonce, index) pair. Returns the finalized nonce and index
// list as soon as consume reports done, or ok=false if the whole batch was
// scanned without success. ctx is checked between chunks for cancellation.
func (p *Prover) Prove(ctx context.Context, batch []byte, baseIndex uint64, consume Consume) (nonce uint32, indices []uint64, ok bool, err error) {
	if len(batch)%chunkBytes != 0 {
		return 0, nil, false, fmt.Errorf("proving: batch length %d not a multiple of %d", len(batch), chunkBytes)
	}
	metrics.BatchesScanned.Inc()

	scratch := make([]byte, chunkBytes)
	numChunks := len(batch) / chunkBytes

	for c := 0; c < numChunks; c++ {
		select {
		case <-ctx.Done():
			return 0, nil, false, ctx.Err()
		default:
		}

		chunk := batch[c*chunkBytes : (c+1)*chunkBytes]

		for _, pc := range p.primary {
			pc.EncryptChunk(scratch, chunk)

			for o := 0; o < chunkBytes; o++ {
				n := pc.NonceGroup*NoncesPerGroup + uint32(o%NoncesPerGroup)
				u := scratch[o]

				var passed bool
				switch {
				case u < p.msb:
					passed = true
				case u == p.msb:
					label := chunk[(o/NoncesPerGroup)*labelBytes : (o/NoncesPerGroup)*labelBytes+labelBytes]
					passed = p.checkLSB(n, label)
				}
				if !passed {
					continue
				}

				idx := baseIndex + uint64(8*c) + uint64(o/NoncesPerGroup)
				metrics.LabelsPassedMSB.Inc()
				finalized, done := consume(n, idx)
				if done {
					return n, finalized, true, nil
				}
			}
		}
	}

	return 0, nil, false, nil
}

// checkLSB performs the secondary difficulty check for a label under
// nonce n's secondary cipher: encrypt the label, interpret the first 8
// output bytes little-endian, mask the low 56 bits, and compare against lsb.
func (p *Prover) checkLSB(n uint32, label []byte) bool {
	rel := n - p.start
	sc := p.secondary[rel]

	var out [16]byte
	sc.EncryptLabel(out[:], label)

	x := binary.LittleEndian.Uint64(out[:8])
	y := x & 0x00ff_ffff_ffff_ffff
	passed := y < p.lsb
	if passed {
		metrics.LabelsPassedLSB.Inc()
	}
	return passed
}
