package xyocrypto

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
)

func init() {
	RegisterVerifier(AlgorithmSecp256k1, verifySecp256k1)
}

// Secp256k1Signer is a Signer backed by a secp256k1 private key.
type Secp256k1Signer struct {
	priv *secp256k1.PrivateKey
}

// NewSecp256k1Signer generates a fresh random signer.
func NewSecp256k1Signer() (*Secp256k1Signer, error) {
	priv, err := secp256k1.GeneratePrivateKeyFromRand(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate secp256k1 key: %w", err)
	}
	return &Secp256k1Signer{priv: priv}, nil
}

// NewSecp256k1SignerFromBytes builds a signer from an existing 32-byte
// private key, for recovery/bootstrap.
func NewSecp256k1SignerFromBytes(b []byte) (*Secp256k1Signer, error) {
	if len(b) != 32 {
		return nil, fmt.Errorf("secp256k1 private key must be 32 bytes, got %d", len(b))
	}
	priv := secp256k1.PrivKeyFromBytes(b)
	return &Secp256k1Signer{priv: priv}, nil
}

// PrivateKeyBytes returns the raw 32-byte private key, for repository
// backends that need to persist a signer across restarts.
func (s *Secp256k1Signer) PrivateKeyBytes() []byte {
	return s.priv.Serialize()
}

// PublicKey implements Signer.
func (s *Secp256k1Signer) PublicKey() PublicKey {
	return PublicKey{
		Algorithm: AlgorithmSecp256k1,
		Bytes:     s.priv.PubKey().SerializeCompressed(),
	}
}

// Sign implements Signer, signing the sha256 digest of data per the
// standard ECDSA-over-secp256k1 convention.
func (s *Secp256k1Signer) Sign(data []byte) (Signature, error) {
	digest := sha256.Sum256(data)
	sig := ecdsa.Sign(s.priv, digest[:])
	return Signature{Algorithm: AlgorithmSecp256k1, Bytes: sig.Serialize()}, nil
}

func verifySecp256k1(pub PublicKey, data []byte, sig Signature) bool {
	parsedPub, err := secp256k1.ParsePubKey(pub.Bytes)
	if err != nil {
		return false
	}
	parsedSig, err := ecdsa.ParseDERSignature(sig.Bytes)
	if err != nil {
		return false
	}
	digest := sha256.Sum256(data)
	return parsedSig.Verify(digest[:], parsedPub)
}
