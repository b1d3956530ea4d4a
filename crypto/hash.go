// Package crypto provides the hash primitive used across the ledger:
// SHA-256 digests, wrapped with the byte-layout conveniences the ledger's
// canonical preimages depend on. Ed25519 signing and verification are done
// with the standard library's crypto/ed25519 directly.
package crypto

import (
	"crypto/sha256"
)

// HashLen is the length in bytes of a Hash.
const HashLen = 32

// Hash is a fixed 32-byte digest. The zero value is the sentinel
// "empty/genesis parent" hash.
type Hash [HashLen]byte

// IsZero reports whether h is the all-zero sentinel hash.
func (h Hash) IsZero() bool {
	return h == Hash{}
}

// Bytes returns a copy of h as a byte slice.
func (h Hash) Bytes() []byte {
	b := make([]byte, HashLen)
	copy(b, h[:])
	return b
}

// BytesToHash truncates or zero-pads b to HashLen and returns the Hash.
func BytesToHash(b []byte) Hash {
	var h Hash
	if len(b) > HashLen {
		b = b[len(b)-HashLen:]
	}
	copy(h[HashLen-len(b):], b)
	return h
}

// Hasher accumulates bytes and produces a Hash, in the same running-digest
// style as a Keccak256 streaming helper, but committed to SHA-256.
type Hasher struct {
	inner interface {
		Write(p []byte) (int, error)
		Sum(b []byte) []byte
	}
}

// NewHasher returns a fresh Hasher.
func NewHasher() *Hasher {
	return &Hasher{inner: sha256.New()}
}

// Write feeds data into the running digest.
func (h *Hasher) Write(data []byte) *Hasher {
	h.inner.Write(data)
	return h
}

// WriteUint32 feeds the big-endian encoding of v into the digest.
func (h *Hasher) WriteUint32(v uint32) *Hasher {
	var buf [4]byte
	buf[0] = byte(v >> 24)
	buf[1] = byte(v >> 16)
	buf[2] = byte(v >> 8)
	buf[3] = byte(v)
	return h.Write(buf[:])
}

// Sum finalizes the digest into a Hash.
func (h *Hasher) Sum() Hash {
	return BytesToHash(h.inner.Sum(nil))
}

// Sum256 is a convenience one-shot SHA-256 over the concatenation of data.
func Sum256(data ...[]byte) Hash {
	h := NewHasher()
	for _, d := range data {
		h.Write(d)
	}
	return h.Sum()
}
