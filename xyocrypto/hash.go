// Package xyocrypto supplies the hash and signature capability objects
// the protocol engine treats as opaque providers: Hash, Signer,
// PublicKey and Signature. The core never hard-codes an algorithm beyond
// the (major, minor) tag carried on the wire.
package xyocrypto

import (
	"bytes"
	"encoding/hex"

	"golang.org/x/crypto/sha3"
)

// Algorithm identifies a hash or signature scheme. Hash, Signature and
// PublicKey each carry one alongside their bytes; on the wire, the codecs
// installed by RegisterDefaults derive it from the value's (major, minor)
// tag instead of writing it out.
type Algorithm uint8

const (
	// AlgorithmKeccak256 is the Keccak-256 hash scheme.
	AlgorithmKeccak256 Algorithm = 1
	// AlgorithmSecp256k1 is the secp256k1 ECDSA signature scheme.
	AlgorithmSecp256k1 Algorithm = 2
)

// Hash is an opaque byte string tagged by a hash algorithm. Equality is
// byte equality; the algorithm is tracked alongside for verifier checks
// that need it (§4.5 check 3), not folded into the byte comparison.
type Hash struct {
	Algorithm Algorithm
	Bytes     []byte
}

// Equal reports whether h and other are byte-equal.
func (h Hash) Equal(other Hash) bool {
	return bytes.Equal(h.Bytes, other.Bytes)
}

// String renders the hash as a hex string, for logging.
func (h Hash) String() string {
	return hex.EncodeToString(h.Bytes)
}

// IsZero reports whether h carries no bytes.
func (h Hash) IsZero() bool {
	return len(h.Bytes) == 0
}

// HashProvider computes a Hash over arbitrary bytes.
type HashProvider interface {
	Algorithm() Algorithm
	Hash(data []byte) Hash
}

// Keccak256Provider is the default HashProvider, matching the hashing
// convention used throughout this corpus's chain clients.
type Keccak256Provider struct{}

// Hash implements HashProvider.
func (Keccak256Provider) Hash(data []byte) Hash {
	sum := sha3.NewLegacyKeccak256()
	sum.Write(data)
	return Hash{Algorithm: AlgorithmKeccak256, Bytes: sum.Sum(nil)}
}

// Algorithm implements HashProvider.
func (Keccak256Provider) Algorithm() Algorithm { return AlgorithmKeccak256 }
