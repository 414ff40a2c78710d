package heuristic

import (
	"encoding/binary"

	"github.com/xyo-network/origin-chain/packer"
	"github.com/xyo-network/origin-chain/xyocrypto"
	"github.com/xyo-network/origin-chain/xyoerr"
)

// --- ChainIndex ---

type chainIndexSerializer struct{}

func registerChainIndex(p *packer.Packer) error {
	return p.Register("Heuristic.ChainIndex", chainIndexSerializer{})
}

func (chainIndexSerializer) Major() byte          { return Major }
func (chainIndexSerializer) Minor() byte          { return MinorChainIndex }
func (chainIndexSerializer) SizePrefixWidth() int { return 0 }

func (chainIndexSerializer) Serialize(value interface{}, _ *packer.Packer) ([]byte, error) {
	idx, ok := value.(ChainIndex)
	if !ok {
		return nil, xyoerr.New(xyoerr.KindMalformed, "ChainIndex: value is not a ChainIndex")
	}
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(idx))
	return buf, nil
}

func (chainIndexSerializer) Deserialize(payload []byte, _ *packer.Packer) (interface{}, error) {
	if len(payload) < 8 {
		return nil, xyoerr.New(xyoerr.KindMalformed, "ChainIndex: truncated payload")
	}
	return ChainIndex(binary.BigEndian.Uint64(payload)), nil
}

func (chainIndexSerializer) ReadSize([]byte, *packer.Packer) (int, error) { return 8, nil }

// --- PreviousHash ---

type previousHashSerializer struct{}

func registerPreviousHash(p *packer.Packer) error {
	return p.Register("Heuristic.PreviousHash", previousHashSerializer{})
}

func (previousHashSerializer) Major() byte          { return Major }
func (previousHashSerializer) Minor() byte          { return MinorPreviousHash }
func (previousHashSerializer) SizePrefixWidth() int { return 0 }

func (previousHashSerializer) Serialize(value interface{}, _ *packer.Packer) ([]byte, error) {
	ph, ok := value.(PreviousHash)
	if !ok {
		return nil, xyoerr.New(xyoerr.KindMalformed, "PreviousHash: value is not a PreviousHash")
	}
	return ph.Hash.Bytes, nil
}

func (previousHashSerializer) Deserialize(payload []byte, _ *packer.Packer) (interface{}, error) {
	out := make([]byte, len(payload))
	copy(out, payload)
	return PreviousHash{Hash: xyocrypto.Hash{Algorithm: xyocrypto.AlgorithmKeccak256, Bytes: out}}, nil
}

func (previousHashSerializer) ReadSize([]byte, *packer.Packer) (int, error) { return 32, nil }

// --- NextPublicKey ---

type nextPublicKeySerializer struct{}

func registerNextPublicKey(p *packer.Packer) error {
	return p.Register("Heuristic.NextPublicKey", nextPublicKeySerializer{})
}

func (nextPublicKeySerializer) Major() byte          { return Major }
func (nextPublicKeySerializer) Minor() byte          { return MinorNextPublicKey }
func (nextPublicKeySerializer) SizePrefixWidth() int { return 1 }

func (nextPublicKeySerializer) Serialize(value interface{}, _ *packer.Packer) ([]byte, error) {
	npk, ok := value.(NextPublicKey)
	if !ok {
		return nil, xyoerr.New(xyoerr.KindMalformed, "NextPublicKey: value is not a NextPublicKey")
	}
	out := make([]byte, 0, 1+len(npk.PublicKey.Bytes))
	out = append(out, byte(npk.PublicKey.Algorithm))
	out = append(out, npk.PublicKey.Bytes...)
	return out, nil
}

func (nextPublicKeySerializer) Deserialize(payload []byte, _ *packer.Packer) (interface{}, error) {
	if len(payload) < 1 {
		return nil, xyoerr.New(xyoerr.KindMalformed, "NextPublicKey: truncated payload")
	}
	alg := xyocrypto.Algorithm(payload[0])
	keyBytes := make([]byte, len(payload)-1)
	copy(keyBytes, payload[1:])
	return NextPublicKey{PublicKey: xyocrypto.PublicKey{Algorithm: alg, Bytes: keyBytes}}, nil
}

func (nextPublicKeySerializer) ReadSize(header []byte, _ *packer.Packer) (int, error) {
	if len(header) < 1 {
		return 0, xyoerr.New(xyoerr.KindMalformed, "NextPublicKey: truncated size prefix")
	}
	return int(header[0]), nil
}

// --- RSSI ---

type rssiSerializer struct{}

func registerRSSI(p *packer.Packer) error {
	return p.Register("Heuristic.RSSI", rssiSerializer{})
}

func (rssiSerializer) Major() byte          { return Major }
func (rssiSerializer) Minor() byte          { return MinorRSSI }
func (rssiSerializer) SizePrefixWidth() int { return 0 }

func (rssiSerializer) Serialize(value interface{}, _ *packer.Packer) ([]byte, error) {
	r, ok := value.(RSSI)
	if !ok {
		return nil, xyoerr.New(xyoerr.KindMalformed, "RSSI: value is not an RSSI")
	}
	return []byte{byte(int8(r))}, nil
}

func (rssiSerializer) Deserialize(payload []byte, _ *packer.Packer) (interface{}, error) {
	if len(payload) < 1 {
		return nil, xyoerr.New(xyoerr.KindMalformed, "RSSI: truncated payload")
	}
	return RSSI(int8(payload[0])), nil
}

func (rssiSerializer) ReadSize([]byte, *packer.Packer) (int, error) { return 1, nil }

// --- lookup helpers ---

// FindChainIndex returns the first ChainIndex item among items, if any.
func FindChainIndex(items []packer.TypedValue) (ChainIndex, bool) {
	for _, it := range items {
		if it.Major == Major && it.Minor == MinorChainIndex {
			if idx, ok := it.Value.(ChainIndex); ok {
				return idx, true
			}
		}
	}
	return 0, false
}

// FindPreviousHash returns the first PreviousHash item among items, if any.
func FindPreviousHash(items []packer.TypedValue) (PreviousHash, bool) {
	for _, it := range items {
		if it.Major == Major && it.Minor == MinorPreviousHash {
			if ph, ok := it.Value.(PreviousHash); ok {
				return ph, true
			}
		}
	}
	return PreviousHash{}, false
}

// FindNextPublicKey returns the first NextPublicKey item among items, if any.
func FindNextPublicKey(items []packer.TypedValue) (NextPublicKey, bool) {
	for _, it := range items {
		if it.Major == Major && it.Minor == MinorNextPublicKey {
			if npk, ok := it.Value.(NextPublicKey); ok {
				return npk, true
			}
		}
	}
	return NextPublicKey{}, false
}
