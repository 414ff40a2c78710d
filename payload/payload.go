// Package payload implements the ordered pair of heuristic lists each
// peer contributes to a bound witness: the signed heuristics (covered by
// the signature) and the unsigned heuristics (metadata only).
package payload

import (
	"github.com/xyo-network/origin-chain/packer"
	"github.com/xyo-network/origin-chain/xyoerr"
)

// Major/minor wire ids for Payload.
const (
	Major byte = 0x30
	Minor byte = 0x01
)

// Payload is one peer's contribution to a block: an ordered list of
// heuristics covered by the signature, and an ordered list that isn't.
type Payload struct {
	SignedHeuristics   []packer.TypedValue
	UnsignedHeuristics []packer.TypedValue
}

// RegisterDefaults installs the Payload codec on p.
func RegisterDefaults(p *packer.Packer) error {
	return p.Register("Payload", payloadSerializer{})
}

type payloadSerializer struct{}

func (payloadSerializer) Major() byte          { return Major }
func (payloadSerializer) Minor() byte          { return Minor }
func (payloadSerializer) SizePrefixWidth() int { return 4 }

func (payloadSerializer) Serialize(value interface{}, p *packer.Packer) ([]byte, error) {
	pl, ok := value.(Payload)
	if !ok {
		if ptr, ok := value.(*Payload); ok {
			pl = *ptr
		} else {
			return nil, xyoerr.New(xyoerr.KindMalformed, "Payload: value is not a Payload")
		}
	}
	signed, err := p.SerializeUntyped(packer.MultiTypeArray{Items: toItems(pl.SignedHeuristics)}, packer.MultiArrayMajor, packer.MultiArrayMinor)
	if err != nil {
		return nil, err
	}
	unsigned, err := p.SerializeUntyped(packer.MultiTypeArray{Items: toItems(pl.UnsignedHeuristics)}, packer.MultiArrayMajor, packer.MultiArrayMinor)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(signed)+len(unsigned))
	out = append(out, signed...)
	out = append(out, unsigned...)
	return out, nil
}

func (payloadSerializer) Deserialize(data []byte, p *packer.Packer) (interface{}, error) {
	signedVal, consumed, err := p.DeserializeUntyped(packer.MultiArrayMajor, packer.MultiArrayMinor, data)
	if err != nil {
		return nil, err
	}
	signedArr, ok := signedVal.(packer.MultiTypeArray)
	if !ok {
		return nil, xyoerr.New(xyoerr.KindMalformed, "Payload: signed heuristics did not decode to a MultiTypeArray")
	}
	rest := data[consumed:]

	unsignedVal, _, err := p.DeserializeUntyped(packer.MultiArrayMajor, packer.MultiArrayMinor, rest)
	if err != nil {
		return nil, err
	}
	unsignedArr, ok := unsignedVal.(packer.MultiTypeArray)
	if !ok {
		return nil, xyoerr.New(xyoerr.KindMalformed, "Payload: unsigned heuristics did not decode to a MultiTypeArray")
	}

	return Payload{
		SignedHeuristics:   fromItems(signedArr.Items),
		UnsignedHeuristics: fromItems(unsignedArr.Items),
	}, nil
}

func toItems(values []packer.TypedValue) []interface{} {
	items := make([]interface{}, len(values))
	for i, v := range values {
		items[i] = v
	}
	return items
}

func fromItems(items []interface{}) []packer.TypedValue {
	var values []packer.TypedValue
	for _, item := range items {
		values = append(values, item.(packer.TypedValue))
	}
	return values
}

func (payloadSerializer) ReadSize(header []byte, p *packer.Packer) (int, error) {
	return readSizePrefixHelper(header)
}

func readSizePrefixHelper(header []byte) (int, error) {
	if len(header) < 4 {
		return 0, xyoerr.New(xyoerr.KindMalformed, "Payload: truncated size prefix")
	}
	v := uint32(header[0])<<24 | uint32(header[1])<<16 | uint32(header[2])<<8 | uint32(header[3])
	return int(v), nil
}
