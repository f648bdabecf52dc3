// Package difficulty computes the proving difficulty threshold and scales
// the PoW target by the number of storage units in a dataset.
package difficulty

import (
	"fmt"
	"math"
	"math/big"
)

// ErrOverflow is returned when the caller-supplied k1 or numLabels would
// produce a nonsensical difficulty.
var ErrOverflow = fmt.Errorf("difficulty: k1 or numLabels out of range")

// ProvingDifficulty returns D in [0, 2^64) such that a uniformly random
// 64-bit label has probability k1/numLabels of being <= D.
func ProvingDifficulty(k1 uint64, numLabels uint64) (uint64, error) {
	if numLabels == 0 {
		return 0, ErrOverflow
	}
	if k1 > numLabels {
		return 0, ErrOverflow
	}

	// D = floor(2^64 * k1 / numLabels), clamped to the uint64 range.
	maxU64 := new(big.Int).Lsh(big.NewInt(1), 64)
	num := new(big.Int).Mul(maxU64, new(big.Int).SetUint64(k1))
	d := new(big.Int).Div(num, new(big.Int).SetUint64(numLabels))

	if d.Cmp(new(big.Int).Sub(maxU64, big.NewInt(1))) >= 0 {
		return math.MaxUint64, nil
	}
	return d.Uint64(), nil
}

// SplitDifficulty splits a 64-bit difficulty into its top byte (msb) and
// bottom 56 bits (lsb).
func SplitDifficulty(d uint64) (msb uint8, lsb uint64) {
	msb = uint8(d >> 56)
	lsb = d & 0x00ff_ffff_ffff_ffff
	return msb, lsb
}

// ScalePoWDifficulty divides the 256-bit big-endian PoW target by numUnits.
// When numUnits > 1 the result is strictly smaller than the input.
func ScalePoWDifficulty(target [32]byte, numUnits uint32) [32]byte {
	if numUnits == 0 {
		numUnits = 1
	}
	t := new(big.Int).SetBytes(target[:])
	scaled := new(big.Int).Div(t, new(big.Int).SetUint64(uint64(numUnits)))

	var out [32]byte
	b := scaled.Bytes()
	copy(out[32-len(b):], b)
	return out
}
