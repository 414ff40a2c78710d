// Package zigzag implements the three-message bound-witness negotiation
// state machine (§4.3): a single incoming_data method driven up to three
// times per peer, exchanging a Transfer message at each step.
package zigzag

import (
	"github.com/xyo-network/origin-chain/packer"
	"github.com/xyo-network/origin-chain/payload"
	"github.com/xyo-network/origin-chain/xyocrypto"
	"github.com/xyo-network/origin-chain/xyoerr"
)

// Major/minor wire ids for Transfer. Transfer is never sent Typed on the
// wire — both sides already know they're exchanging a Transfer — so
// these ids only matter for registry lookup by the driver.
const (
	Major byte = 0x50
	Minor byte = 0x01
)

// Transfer carries one side's newly-available contribution for the
// other side to integrate: public keys, payloads and signatures, each
// optional and growing monotonically across the exchange.
type Transfer struct {
	PublicKeys []xyocrypto.PublicKey
	Payloads   []payload.Payload
	Signatures []xyocrypto.Signature
}

// RegisterDefaults installs the Transfer codec on p.
func RegisterDefaults(p *packer.Packer) error {
	return p.Register("Transfer", transferSerializer{})
}

type transferSerializer struct{}

func (transferSerializer) Major() byte          { return Major }
func (transferSerializer) Minor() byte          { return Minor }
func (transferSerializer) SizePrefixWidth() int { return 4 }

func (transferSerializer) Serialize(value interface{}, p *packer.Packer) ([]byte, error) {
	t, ok := value.(Transfer)
	if !ok {
		if ptr, ok := value.(*Transfer); ok {
			t = *ptr
		} else {
			return nil, xyoerr.New(xyoerr.KindMalformed, "Transfer: value is not a Transfer")
		}
	}

	pkItems := make([]interface{}, 0, len(t.PublicKeys))
	for _, pk := range t.PublicKeys {
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

	plItems := make([]interface{}, 0, len(t.Payloads))
	for _, pl := range t.Payloads {
		plItems = append(plItems, packer.TypedValue{Major: payload.Major, Minor: payload.Minor, Value: pl})
	}
	plBytes, err := p.SerializeUntyped(packer.MultiTypeArray{Items: plItems}, packer.MultiArrayMajor, packer.MultiArrayMinor)
	if err != nil {
		return nil, err
	}

	sigItems := make([]interface{}, 0, len(t.Signatures))
	for _, sig := range t.Signatures {
		sigItems = append(sigItems, packer.TypedValue{Major: xyocrypto.SignatureMajor, Minor: xyocrypto.SignatureSecp256k1Minor, Value: sig})
	}
	sigBytes, err := p.SerializeUntyped(packer.MultiTypeArray{Items: sigItems}, packer.MultiArrayMajor, packer.MultiArrayMinor)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, len(pkBytes)+len(plBytes)+len(sigBytes))
	out = append(out, pkBytes...)
	out = append(out, plBytes...)
	out = append(out, sigBytes...)
	return out, nil
}

func (transferSerializer) Deserialize(data []byte, p *packer.Packer) (interface{}, error) {
	pkVal, consumed, err := p.DeserializeUntyped(packer.MultiArrayMajor, packer.MultiArrayMinor, data)
	if err != nil {
		return nil, err
	}
	pkArr := pkVal.(packer.MultiTypeArray)
	rest := data[consumed:]

	plVal, consumed2, err := p.DeserializeUntyped(packer.MultiArrayMajor, packer.MultiArrayMinor, rest)
	if err != nil {
		return nil, err
	}
	plArr := plVal.(packer.MultiTypeArray)
	rest = rest[consumed2:]

	sigVal, _, err := p.DeserializeUntyped(packer.MultiArrayMajor, packer.MultiArrayMinor, rest)
	if err != nil {
		return nil, err
	}
	sigArr := sigVal.(packer.MultiTypeArray)

	t := Transfer{}
	for _, item := range pkArr.Items {
		tv := item.(packer.TypedValue)
		t.PublicKeys = append(t.PublicKeys, tv.Value.(xyocrypto.PublicKey))
	}
	for _, item := range plArr.Items {
		tv := item.(packer.TypedValue)
		t.Payloads = append(t.Payloads, tv.Value.(payload.Payload))
	}
	for _, item := range sigArr.Items {
		tv := item.(packer.TypedValue)
		t.Signatures = append(t.Signatures, tv.Value.(xyocrypto.Signature))
	}
	return t, nil
}

func (transferSerializer) ReadSize(header []byte, _ *packer.Packer) (int, error) {
	if len(header) < 4 {
		return 0, xyoerr.New(xyoerr.KindMalformed, "Transfer: truncated size prefix")
	}
	v := uint32(header[0])<<24 | uint32(header[1])<<16 | uint32(header[2])<<8 | uint32(header[3])
	return int(v), nil
}

func publicKeyTypeFor(alg xyocrypto.Algorithm) (byte, byte, error) {
	switch alg {
	case xyocrypto.AlgorithmSecp256k1:
		return xyocrypto.PublicKeyMajor, xyocrypto.PublicKeySecp256k1Minor, nil
	default:
		return 0, 0, xyoerr.New(xyoerr.KindUnknownType, "unsupported public key algorithm")
	}
}
