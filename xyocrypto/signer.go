package xyocrypto

// Signature is a typed byte string produced by a Signer.
type Signature struct {
	Algorithm Algorithm
	Bytes     []byte
}

// PublicKey is a typed byte string that can verify a signature produced
// over the same algorithm.
type PublicKey struct {
	Algorithm Algorithm
	Bytes     []byte
}

// Equal reports whether p and other carry the same bytes.
func (p PublicKey) Equal(other PublicKey) bool {
	if len(p.Bytes) != len(other.Bytes) {
		return false
	}
	for i := range p.Bytes {
		if p.Bytes[i] != other.Bytes[i] {
			return false
		}
	}
	return true
}

// Verify checks sig against data using this public key.
func (p PublicKey) Verify(data []byte, sig Signature) bool {
	verifier, ok := verifiers[p.Algorithm]
	if !ok {
		return false
	}
	return verifier(p, data, sig)
}

// Signer holds private key material and exposes a public key plus a
// signing capability. Signers must never be shared across concurrent
// sessions without external synchronization (§5).
type Signer interface {
	PublicKey() PublicKey
	Sign(data []byte) (Signature, error)
}

// verifiers is keyed by Algorithm so PublicKey.Verify can dispatch
// without importing every provider package into this one.
var verifiers = map[Algorithm]func(PublicKey, []byte, Signature) bool{}

// RegisterVerifier installs a verification function for an algorithm.
// Provider packages call this from an init() func.
func RegisterVerifier(alg Algorithm, fn func(PublicKey, []byte, Signature) bool) {
	verifiers[alg] = fn
}
