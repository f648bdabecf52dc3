// Package pow defines the external memory-hard proof-of-work oracle the
// prover binds each nonce group to, plus a CPU-bound reference
// implementation usable in place of a real RandomX oracle.
package pow

import (
	"context"
	"errors"
)

// ErrPoWNotFound is returned when an oracle exhausts its search space (or its
// configured budget) without finding a value meeting the target.
var ErrPoWNotFound = errors.New("pow: no value found meeting difficulty")

// Oracle produces a 64-bit value binding a nonce group to a challenge under
// a memory-hard (or, for the reference implementation, CPU-bound)
// proof-of-work predicate. Implementations must be deterministic given the
// same inputs.
type Oracle interface {
	Prove(ctx context.Context, nonceGroup uint32, challengePrefix [8]byte, difficulty [32]byte) (uint64, error)
}

// FuncOracle adapts a plain function to the Oracle interface, for tests and
// for oracles simple enough not to need their own type.
type FuncOracle func(ctx context.Context, nonceGroup uint32, challengePrefix [8]byte, difficulty [32]byte) (uint64, error)

// Prove implements Oracle.
func (f FuncOracle) Prove(ctx context.Context, nonceGroup uint32, challengePrefix [8]byte, difficulty [32]byte) (uint64, error) {
	return f(ctx, nonceGroup, challengePrefix, difficulty)
}
