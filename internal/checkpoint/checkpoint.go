// Package checkpoint persists scan progress so a restarted proving run can
// resume nonce-range escalation instead of rescanning from nonce 0. It is a
// purely operational optimization: it never affects which proof a run
// eventually finds, since escalation always proceeds through the same
// deterministic widening order.
package checkpoint

import (
	"encoding/binary"
	"fmt"

	"github.com/Klingon-tech/klingnet-post/internal/log"
	"github.com/Klingon-tech/klingnet-post/internal/storage"
	"github.com/Klingon-tech/klingnet-post/pkg/crypto"
)

// Store persists, per challenge, the next nonce-range start to try.
type Store struct {
	db storage.DB
}

// New wraps an already-open DB as a checkpoint store.
func New(db storage.DB) *Store {
	return &Store{db: db}
}

// key namespaces the checkpoint entry under a content-addressed fingerprint
// of the challenge rather than the raw bytes, so the on-disk key format
// doesn't change if the challenge encoding ever does.
func key(challenge [32]byte) []byte {
	fp := crypto.Hash(challenge[:])
	return []byte("checkpoint/" + fp.String())
}

// NextStart returns the nonce-range start to resume from for challenge, and
// whether a checkpoint existed. Absence means "start from nonce 0".
func (s *Store) NextStart(challenge [32]byte) (uint32, bool, error) {
	val, err := s.db.Get(key(challenge))
	if err != nil {
		return 0, false, nil
	}
	if len(val) != 4 {
		return 0, false, fmt.Errorf("checkpoint: corrupt entry for challenge %x", challenge)
	}
	return binary.LittleEndian.Uint32(val), true, nil
}

// Save records that the nonce range up to (but not including) nextStart has
// been exhausted without success for challenge.
func (s *Store) Save(challenge [32]byte, nextStart uint32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], nextStart)
	log.Checkpoint.Debug().Uint32("next_start", nextStart).Msg("saving checkpoint")
	return s.db.Put(key(challenge), buf[:])
}

// Clear removes any checkpoint for challenge, called after a proof is found.
func (s *Store) Clear(challenge [32]byte) error {
	log.Checkpoint.Debug().Msg("clearing checkpoint")
	return s.db.Delete(key(challenge))
}
