package pow

import (
	"context"
	"encoding/binary"
	"math/big"
	"sync"

	"github.com/zeebo/blake3"

	"github.com/Klingon-tech/klingnet-post/internal/log"
)

// CPUOracle is a CPU-bound stand-in for a memory-hard RandomX-family oracle.
// It searches a 64-bit value space for a hash that, interpreted as a
// big-endian unsigned integer, is <= the target difficulty. It is not
// memory-hard and offers no ASIC resistance; production deployments should
// swap in a real RandomX oracle behind the Oracle interface without any
// change to the prover.
type CPUOracle struct {
	// Threads controls how many goroutines search in parallel. 0 or 1 means
	// single-threaded.
	Threads int
}

// Prove implements Oracle by iterating candidate 64-bit values, hashing
// (challengePrefix, nonceGroup, candidate) with BLAKE3, and returning the
// first candidate whose hash meets difficulty.
func (o *CPUOracle) Prove(ctx context.Context, nonceGroup uint32, challengePrefix [8]byte, difficulty [32]byte) (uint64, error) {
	defer log.Benchmark("pow-oracle-prove")()

	threads := o.Threads
	if threads <= 1 {
		return o.proveSingle(ctx, nonceGroup, challengePrefix, difficulty)
	}
	return o.proveParallel(ctx, nonceGroup, challengePrefix, difficulty, threads)
}

func target(difficulty [32]byte) *big.Int {
	return new(big.Int).SetBytes(difficulty[:])
}

func candidateHash(challengePrefix [8]byte, nonceGroup uint32, candidate uint64) []byte {
	var buf [20]byte
	copy(buf[0:8], challengePrefix[:])
	binary.LittleEndian.PutUint32(buf[8:12], nonceGroup)
	binary.LittleEndian.PutUint64(buf[12:20], candidate)
	sum := blake3.Sum256(buf[:])
	return sum[:]
}

func (o *CPUOracle) proveSingle(ctx context.Context, nonceGroup uint32, challengePrefix [8]byte, difficulty [32]byte) (uint64, error) {
	t := target(difficulty)
	hashInt := new(big.Int)

	for candidate := uint64(0); ; candidate++ {
		if candidate&0xFFFF == 0 {
			select {
			case <-ctx.Done():
				return 0, ctx.Err()
			default:
			}
		}

		hash := candidateHash(challengePrefix, nonceGroup, candidate)
		hashInt.SetBytes(hash)
		if hashInt.Cmp(t) <= 0 {
			return candidate, nil
		}
		if candidate == ^uint64(0) {
			return 0, ErrPoWNotFound
		}
	}
}

func (o *CPUOracle) proveParallel(ctx context.Context, nonceGroup uint32, challengePrefix [8]byte, difficulty [32]byte, threads int) (uint64, error) {
	t := target(difficulty)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type result struct {
		value uint64
		err   error
	}
	found := make(chan result, 1)

	var wg sync.WaitGroup
	for i := 0; i < threads; i++ {
		wg.Add(1)
		start := uint64(i)
		stride := uint64(threads)
		go func() {
			defer wg.Done()
			hashInt := new(big.Int)

			for candidate := start; ; candidate += stride {
				if (candidate/stride)&0xFFFF == 0 && candidate > 0 {
					select {
					case <-ctx.Done():
						return
					default:
					}
				}

				hash := candidateHash(challengePrefix, nonceGroup, candidate)
				hashInt.SetBytes(hash)
				if hashInt.Cmp(t) <= 0 {
					select {
					case found <- result{value: candidate}:
					default:
					}
					cancel()
					return
				}

				if candidate > ^uint64(0)-stride {
					select {
					case found <- result{err: ErrPoWNotFound}:
					default:
					}
					return
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(found)
	}()

	select {
	case r, ok := <-found:
		if !ok {
			return 0, ErrPoWNotFound
		}
		return r.value, r.err
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}
