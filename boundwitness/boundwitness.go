// Package boundwitness implements the block produced by a completed
// zig-zag negotiation: parallel ordered lists of public keys, payloads
// and signatures, plus the invariants that must hold once it is
// complete (§3).
package boundwitness

import (
	"github.com/xyo-network/origin-chain/heuristic"
	"github.com/xyo-network/origin-chain/packer"
	"github.com/xyo-network/origin-chain/payload"
	"github.com/xyo-network/origin-chain/xyocrypto"
	"github.com/xyo-network/origin-chain/xyoerr"
)

// Major/minor wire ids for BoundWitness.
const (
	Major byte = 0x40
	Minor byte = 0x01
)

// BoundWitness is the block: parallel, equal-length ordered lists of
// participants' public keys, payloads and signatures.
type BoundWitness struct {
	PublicKeys []xyocrypto.PublicKey
	Payloads   []payload.Payload
	Signatures []xyocrypto.Signature
}

// RegisterDefaults installs the BoundWitness codec on p.
func RegisterDefaults(p *packer.Packer) error {
	return p.Register("BoundWitness", boundWitnessSerializer{})
}

// publicKeyTypeFor returns the (major, minor) used to tag a PublicKey of
// the given algorithm inside a MultiTypeArray.
func publicKeyTypeFor(alg xyocrypto.Algorithm) (byte, byte, error) {
	switch alg {
	case xyocrypto.AlgorithmSecp256k1:
		return xyocrypto.PublicKeyMajor, xyocrypto.PublicKeySecp256k1Minor, nil
	default:
		return 0, 0, xyoerr.New(xyoerr.KindUnknownType, "unsupported public key algorithm")
	}
}

// SigningData computes the canonical bytes both peers sign and verify
// against: the serialization of (public_keys, all signed_heuristics in
// order), in participant order. It is a pure function of its inputs —
// no wall-clock or random state — so both sides compute identical bytes
// (§4.1 Determinism, §4.3 "Equality of signing_data").
func SigningData(p *packer.Packer, publicKeys []xyocrypto.PublicKey, payloads []payload.Payload) ([]byte, error) {
	pkItems := make([]interface{}, 0, len(publicKeys))
	for _, pk := range publicKeys {
		major, minor, err := publicKeyTypeFor(pk.Algorithm)
		if err != nil {
			return nil, err
		}
		pkItems = append(pkItems, packer.TypedValue{Major: major, Minor: minor, Value: pk})
	}
	pkBytes, err := p.SerializeUntyped(packer.MultiTypeArray{Items: pkItems}, packer.MultiArrayMajor, packer.MultiArrayMinor)
	if err != nil {
		return nil, err
	}

	var heuristics []interface{}
	for _, pl := range payloads {
		for _, h := range pl.SignedHeuristics {
			heuristics = append(heuristics, h)
		}
	}
	heuristicBytes, err := p.SerializeUntyped(packer.MultiTypeArray{Items: heuristics}, packer.MultiArrayMajor, packer.MultiArrayMinor)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, len(pkBytes)+len(heuristicBytes))
	out = append(out, pkBytes...)
	out = append(out, heuristicBytes...)
	return out, nil
}

// Validate checks every invariant §3 requires of a completed block:
// parallel lists of equal length N >= 1, no duplicate public key, and
// every signature verifies against the canonical signing data.
func (bw BoundWitness) Validate(p *packer.Packer) error {
	n := len(bw.PublicKeys)
	if n == 0 {
		return xyoerr.New(xyoerr.KindNegotiationAborted, "bound witness has no participants")
	}
	if len(bw.Payloads) != n || len(bw.Signatures) != n {
		return xyoerr.New(xyoerr.KindNegotiationAborted, "bound witness lists have mismatched lengths")
	}

	seen := make(map[string]struct{}, n)
	for _, pk := range bw.PublicKeys {
		key := string(pk.Bytes)
		if _, dup := seen[key]; dup {
			return xyoerr.New(xyoerr.KindNegotiationAborted, "duplicate public key in bound witness")
		}
		seen[key] = struct{}{}
	}

	signingData, err := SigningData(p, bw.PublicKeys, bw.Payloads)
	if err != nil {
		return err
	}
	for i := range bw.PublicKeys {
		if !bw.PublicKeys[i].Verify(signingData, bw.Signatures[i]) {
			return xyoerr.New(xyoerr.KindSignatureInvalid, "signature does not verify against signing data")
		}
	}
	return nil
}

// Encode serializes bw with Typed framing, the representation hashed to
// produce the block's identity and chained previous-hash reference.
func Encode(p *packer.Packer, bw BoundWitness) ([]byte, error) {
	return p.Serialize(bw, Major, Minor, packer.FramingTyped)
}

// SignedHeuristicsFor returns the flattened, typed signed-heuristic items
// for participant i, a convenience for verifier/handler lookups.
func (bw BoundWitness) SignedHeuristicsFor(i int) []packer.TypedValue {
	if i < 0 || i >= len(bw.Payloads) {
		return nil
	}
	return bw.Payloads[i].SignedHeuristics
}

// ChainIndexFor returns participant i's ChainIndex heuristic, if present.
func (bw BoundWitness) ChainIndexFor(i int) (heuristic.ChainIndex, bool) {
	return heuristic.FindChainIndex(bw.SignedHeuristicsFor(i))
}

// PreviousHashFor returns participant i's PreviousHash heuristic, if present.
func (bw BoundWitness) PreviousHashFor(i int) (heuristic.PreviousHash, bool) {
	return heuristic.FindPreviousHash(bw.SignedHeuristicsFor(i))
}

// NextPublicKeyFor returns participant i's NextPublicKey heuristic, if present.
func (bw BoundWitness) NextPublicKeyFor(i int) (heuristic.NextPublicKey, bool) {
	return heuristic.FindNextPublicKey(bw.SignedHeuristicsFor(i))
}

type boundWitnessSerializer struct{}

func (boundWitnessSerializer) Major() byte          { return Major }
func (boundWitnessSerializer) Minor() byte          { return Minor }
func (boundWitnessSerializer) SizePrefixWidth() int { return 4 }

func (boundWitnessSerializer) Serialize(value interface{}, p *packer.Packer) ([]byte, error) {
	bw, ok := value.(BoundWitness)
	if !ok {
		return nil, xyoerr.New(xyoerr.KindMalformed, "BoundWitness: value is not a BoundWitness")
	}

	pkItems := make([]interface{}, 0, len(bw.PublicKeys))
	for _, pk := range bw.PublicKeys {
		major, minor, err := publicKeyTypeFor(pk.Algorithm)
		if err != nil {
			return nil, err
		}
		pkItems = append(pkItems, packer.TypedValue{Major: major, Minor: minor, Value: pk})
	}
	pkBytes, err := p.SerializeUntyped(packer.MultiTypeArray{Items: pkItems}, packer.MultiArrayMajor, packer.MultiArrayMinor)
	if err != nil {
		return nil, err
	}

	payloadItems := make([]interface{}, 0, len(bw.Payloads))
	for _, pl := range bw.Payloads {
		payloadItems = append(payloadItems, packer.TypedValue{Major: payload.Major, Minor: payload.Minor, Value: pl})
	}
	payloadsBytes, err := p.SerializeUntyped(packer.MultiTypeArray{Items: payloadItems}, packer.MultiArrayMajor, packer.MultiArrayMinor)
	if err != nil {
		return nil, err
	}

	sigItems := make([]interface{}, 0, len(bw.Signatures))
	for _, sig := range bw.Signatures {
		sigItems = append(sigItems, packer.TypedValue{Major: xyocrypto.SignatureMajor, Minor: xyocrypto.SignatureSecp256k1Minor, Value: sig})
	}
	sigsBytes, err := p.SerializeUntyped(packer.MultiTypeArray{Items: sigItems}, packer.MultiArrayMajor, packer.MultiArrayMinor)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, len(pkBytes)+len(payloadsBytes)+len(sigsBytes))
	out = append(out, pkBytes...)
	out = append(out, payloadsBytes...)
	out = append(out, sigsBytes...)
	return out, nil
}

func (boundWitnessSerializer) Deserialize(data []byte, p *packer.Packer) (interface{}, error) {
	pkVal, consumed, err := p.DeserializeUntyped(packer.MultiArrayMajor, packer.MultiArrayMinor, data)
	if err != nil {
		return nil, err
	}
	pkArr, ok := pkVal.(packer.MultiTypeArray)
	if !ok {
		return nil, xyoerr.New(xyoerr.KindMalformed, "BoundWitness: public keys did not decode to a MultiTypeArray")
	}
	rest := data[consumed:]

	plVal, consumed2, err := p.DeserializeUntyped(packer.MultiArrayMajor, packer.MultiArrayMinor, rest)
	if err != nil {
		return nil, err
	}
	plArr, ok := plVal.(packer.MultiTypeArray)
	if !ok {
		return nil, xyoerr.New(xyoerr.KindMalformed, "BoundWitness: payloads did not decode to a MultiTypeArray")
	}
	rest = rest[consumed2:]

	sigVal, _, err := p.DeserializeUntyped(packer.MultiArrayMajor, packer.MultiArrayMinor, rest)
	if err != nil {
		return nil, err
	}
	sigArr, ok := sigVal.(packer.MultiTypeArray)
	if !ok {
		return nil, xyoerr.New(xyoerr.KindMalformed, "BoundWitness: signatures did not decode to a MultiTypeArray")
	}

	bw := BoundWitness{}
	for _, item := range pkArr.Items {
		tv := item.(packer.TypedValue)
		pk, ok := tv.Value.(xyocrypto.PublicKey)
		if !ok {
			return nil, xyoerr.New(xyoerr.KindMalformed, "BoundWitness: public key item has wrong type")
		}
		bw.PublicKeys = append(bw.PublicKeys, pk)
	}
	for _, item := range plArr.Items {
		tv := item.(packer.TypedValue)
		pl, ok := tv.Value.(payload.Payload)
		if !ok {
			return nil, xyoerr.New(xyoerr.KindMalformed, "BoundWitness: payload item has wrong type")
		}
		bw.Payloads = append(bw.Payloads, pl)
	}
	for _, item := range sigArr.Items {
		tv := item.(packer.TypedValue)
		sig, ok := tv.Value.(xyocrypto.Signature)
		if !ok {
			return nil, xyoerr.New(xyoerr.KindMalformed, "BoundWitness: signature item has wrong type")
		}
		bw.Signatures = append(bw.Signatures, sig)
	}
	return bw, nil
}

func (boundWitnessSerializer) ReadSize(header []byte, _ *packer.Packer) (int, error) {
	if len(header) < 4 {
		return 0, xyoerr.New(xyoerr.KindMalformed, "BoundWitness: truncated size prefix")
	}
	v := uint32(header[0])<<24 | uint32(header[1])<<16 | uint32(header[2])<<8 | uint32(header[3])
	return int(v), nil
}
