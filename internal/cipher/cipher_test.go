package cipher

import (
	"bytes"
	"testing"
)

func testChallenge() [32]byte {
	var c [32]byte
	copy(c[:], []byte("hello world, CHALLENGE me!!!!!!!"))
	return c
}

func TestNewPrimary_Deterministic(t *testing.T) {
	challenge := testChallenge()
	c1, err := NewPrimary(challenge, 2, 42)
	if err != nil {
		t.Fatalf("NewPrimary: %v", err)
	}
	c2, err := NewPrimary(challenge, 2, 42)
	if err != nil {
		t.Fatalf("NewPrimary: %v", err)
	}

	src := make([]byte, 16)
	out1 := make([]byte, 16)
	out2 := make([]byte, 16)
	c1.EncryptLabel(out1, src)
	c2.EncryptLabel(out2, src)
	if !bytes.Equal(out1, out2) {
		t.Errorf("same (challenge, group, pow) produced different ciphers: %x != %x", out1, out2)
	}
}

func TestNewPrimary_DifferentGroupsDifferentKeys(t *testing.T) {
	challenge := testChallenge()
	c1, err := NewPrimary(challenge, 0, 42)
	if err != nil {
		t.Fatalf("NewPrimary: %v", err)
	}
	c2, err := NewPrimary(challenge, 1, 42)
	if err != nil {
		t.Fatalf("NewPrimary: %v", err)
	}

	src := make([]byte, 16)
	out1 := make([]byte, 16)
	out2 := make([]byte, 16)
	c1.EncryptLabel(out1, src)
	c2.EncryptLabel(out2, src)
	if bytes.Equal(out1, out2) {
		t.Error("different nonce groups produced the same cipher output")
	}
}

func TestPrimaryAndSecondary_DifferentKeys(t *testing.T) {
	challenge := testChallenge()
	primary, err := NewPrimary(challenge, 0, 42)
	if err != nil {
		t.Fatalf("NewPrimary: %v", err)
	}
	secondary, err := NewSecondary(challenge, 3, 0, 42)
	if err != nil {
		t.Fatalf("NewSecondary: %v", err)
	}

	src := make([]byte, 16)
	out1 := make([]byte, 16)
	out2 := make([]byte, 16)
	primary.EncryptLabel(out1, src)
	secondary.EncryptLabel(out2, src)
	if bytes.Equal(out1, out2) {
		t.Error("primary and secondary ciphers produced the same output")
	}
}

func TestSecondary_DifferentNoncesDifferentKeys(t *testing.T) {
	challenge := testChallenge()
	s1, err := NewSecondary(challenge, 0, 0, 42)
	if err != nil {
		t.Fatalf("NewSecondary: %v", err)
	}
	s2, err := NewSecondary(challenge, 1, 0, 42)
	if err != nil {
		t.Fatalf("NewSecondary: %v", err)
	}

	src := make([]byte, 16)
	out1 := make([]byte, 16)
	out2 := make([]byte, 16)
	s1.EncryptLabel(out1, src)
	s2.EncryptLabel(out2, src)
	if bytes.Equal(out1, out2) {
		t.Error("different nonces produced the same secondary cipher output")
	}
}

func TestEncryptChunk_MatchesPerBlockEncryption(t *testing.T) {
	challenge := testChallenge()
	c, err := NewPrimary(challenge, 0, 42)
	if err != nil {
		t.Fatalf("NewPrimary: %v", err)
	}

	chunk := make([]byte, 128)
	for i := range chunk {
		chunk[i] = byte(i)
	}

	gotChunk := make([]byte, 128)
	c.EncryptChunk(gotChunk, chunk)

	want := make([]byte, 128)
	for off := 0; off < 128; off += 16 {
		c.EncryptLabel(want[off:off+16], chunk[off:off+16])
	}
	if !bytes.Equal(want, gotChunk) {
		t.Errorf("EncryptChunk = %x, want %x (per-block encryption)", gotChunk, want)
	}
}
