package xyocrypto

import (
	"github.com/xyo-network/origin-chain/packer"
	"github.com/xyo-network/origin-chain/xyoerr"
)

// Wire type ids for the crypto primitives. Major 0x01 is reserved for
// hashes, 0x02 for public keys, 0x03 for signatures; the minor id
// selects the concrete algorithm.
const (
	HashMajor byte = 0x01

	PublicKeyMajor          byte = 0x02
	PublicKeySecp256k1Minor byte = 0x01

	SignatureMajor          byte = 0x03
	SignatureSecp256k1Minor byte = 0x01
)

const (
	keccak256Size       = 32
	secp256k1PubKeySize = 33
)

// RegisterDefaults installs the Keccak-256 hash codec and the secp256k1
// public-key/signature codecs on p.
func RegisterDefaults(p *packer.Packer) error {
	if err := p.Register("Hash.Keccak256", hashSerializer{}); err != nil {
		return err
	}
	if err := p.Register("PublicKey.Secp256k1", publicKeySerializer{}); err != nil {
		return err
	}
	if err := p.Register("Signature.Secp256k1", signatureSerializer{}); err != nil {
		return err
	}
	return nil
}

type hashSerializer struct{}

func (hashSerializer) Major() byte          { return HashMajor }
func (hashSerializer) Minor() byte          { return byte(AlgorithmKeccak256) }
func (hashSerializer) SizePrefixWidth() int { return 0 }

func (hashSerializer) Serialize(value interface{}, _ *packer.Packer) ([]byte, error) {
	h, ok := value.(Hash)
	if !ok {
		return nil, xyoerr.New(xyoerr.KindMalformed, "Hash serializer: value is not a Hash")
	}
	if len(h.Bytes) != keccak256Size {
		return nil, xyoerr.New(xyoerr.KindMalformed, "Hash serializer: keccak256 hash must be 32 bytes")
	}
	return h.Bytes, nil
}

func (hashSerializer) Deserialize(payload []byte, _ *packer.Packer) (interface{}, error) {
	out := make([]byte, keccak256Size)
	copy(out, payload)
	return Hash{Algorithm: AlgorithmKeccak256, Bytes: out}, nil
}

func (hashSerializer) ReadSize([]byte, *packer.Packer) (int, error) { return keccak256Size, nil }

type publicKeySerializer struct{}

func (publicKeySerializer) Major() byte          { return PublicKeyMajor }
func (publicKeySerializer) Minor() byte          { return PublicKeySecp256k1Minor }
func (publicKeySerializer) SizePrefixWidth() int { return 0 }

func (publicKeySerializer) Serialize(value interface{}, _ *packer.Packer) ([]byte, error) {
	pk, ok := value.(PublicKey)
	if !ok {
		return nil, xyoerr.New(xyoerr.KindMalformed, "PublicKey serializer: value is not a PublicKey")
	}
	if len(pk.Bytes) != secp256k1PubKeySize {
		return nil, xyoerr.New(xyoerr.KindMalformed, "PublicKey serializer: compressed secp256k1 key must be 33 bytes")
	}
	return pk.Bytes, nil
}

func (publicKeySerializer) Deserialize(payload []byte, _ *packer.Packer) (interface{}, error) {
	out := make([]byte, secp256k1PubKeySize)
	copy(out, payload)
	return PublicKey{Algorithm: AlgorithmSecp256k1, Bytes: out}, nil
}

func (publicKeySerializer) ReadSize([]byte, *packer.Packer) (int, error) {
	return secp256k1PubKeySize, nil
}

type signatureSerializer struct{}

func (signatureSerializer) Major() byte          { return SignatureMajor }
func (signatureSerializer) Minor() byte          { return SignatureSecp256k1Minor }
func (signatureSerializer) SizePrefixWidth() int { return 1 }

func (signatureSerializer) Serialize(value interface{}, _ *packer.Packer) ([]byte, error) {
	sig, ok := value.(Signature)
	if !ok {
		return nil, xyoerr.New(xyoerr.KindMalformed, "Signature serializer: value is not a Signature")
	}
	return sig.Bytes, nil
}

func (signatureSerializer) Deserialize(payload []byte, _ *packer.Packer) (interface{}, error) {
	out := make([]byte, len(payload))
	copy(out, payload)
	return Signature{Algorithm: AlgorithmSecp256k1, Bytes: out}, nil
}

func (signatureSerializer) ReadSize(header []byte, _ *packer.Packer) (int, error) {
	if len(header) < 1 {
		return 0, xyoerr.New(xyoerr.KindMalformed, "Signature: truncated size prefix")
	}
	return int(header[0]), nil
}
