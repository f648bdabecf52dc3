// Package cipher builds the primary and secondary (lazy) AES ciphers the
// prover uses to evaluate the difficulty predicate against labels.
package cipher

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/binary"

	"github.com/zeebo/blake3"
)

// AesCipher wraps a scheduled AES-128 block cipher together with the nonce
// group (and PoW value) it was derived from.
type AesCipher struct {
	block      cipher.Block
	NonceGroup uint32
	Pow        uint64
}

var primaryTag = []byte("postprove/primary-cipher-key/v1")
var secondaryTag = []byte("postprove/secondary-cipher-key/v1")

// NewPrimary builds the primary cipher for nonce group g, bound to the
// challenge and the PoW value returned by the oracle for that group.
func NewPrimary(challenge [32]byte, group uint32, pow uint64) (*AesCipher, error) {
	key := deriveKey(primaryTag, challenge, group, 0, pow)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return &AesCipher{block: block, NonceGroup: group, Pow: pow}, nil
}

// NewSecondary builds the secondary ("lazy") cipher for nonce n belonging to
// nonce group g, using the pow value the primary cipher for that group was
// constructed with.
func NewSecondary(challenge [32]byte, nonce uint32, group uint32, pow uint64) (*AesCipher, error) {
	key := deriveKey(secondaryTag, challenge, group, nonce, pow)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return &AesCipher{block: block, NonceGroup: group, Pow: pow}, nil
}

// deriveKey derives a 128-bit AES key, domain-separated by tag, from the
// challenge, nonce group, nonce (ignored by the primary derivation), and PoW
// value. Truncating a wide hash to a block-cipher key size is the same
// pattern the reference repository uses to turn BLAKE3 output into other
// fixed-size fields.
func deriveKey(tag []byte, challenge [32]byte, group, nonce uint32, pow uint64) []byte {
	h := blake3.New()
	h.Write(tag)
	h.Write(challenge[:])

	var buf [16]byte
	binary.LittleEndian.PutUint32(buf[0:4], group)
	binary.LittleEndian.PutUint32(buf[4:8], nonce)
	binary.LittleEndian.PutUint64(buf[8:16], pow)
	h.Write(buf[:])

	sum := h.Sum(nil)
	return sum[:16]
}

// EncryptChunk encrypts src, a 128-byte chunk (8 labels), block by block into
// dst under this cipher's key.
func (c *AesCipher) EncryptChunk(dst, src []byte) {
	const blockSize = aes.BlockSize
	for off := 0; off < len(src); off += blockSize {
		c.block.Encrypt(dst[off:off+blockSize], src[off:off+blockSize])
	}
}

// EncryptLabel encrypts a single 16-byte label under this cipher.
func (c *AesCipher) EncryptLabel(dst, label []byte) {
	c.block.Encrypt(dst, label)
}
