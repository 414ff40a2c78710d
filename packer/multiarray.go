package packer

import "github.com/xyo-network/origin-chain/xyoerr"

// MultiArrayMajor and MultiArrayMinor identify the MultiTypeArray
// collection itself on the wire.
const (
	MultiArrayMajor byte = 0x20
	MultiArrayMinor byte = 0x01
)

// MultiTypeArray is a heterogeneous, ordered collection whose payload is
// a concatenation of Typed-framed children. It lets a BoundWitness mix
// public keys, payloads and signatures — each a different (major, minor)
// — inside one self-describing list (§4.1).
type MultiTypeArray struct {
	Items []interface{}
}

type multiArraySerializer struct{}

// RegisterMultiTypeArray installs the MultiTypeArray collection codec.
// It has no domain-specific dependencies and lives in the packer package
// itself since it only dispatches to whatever else is registered.
func RegisterMultiTypeArray(p *Packer) error {
	return p.Register("MultiTypeArray", multiArraySerializer{})
}

func (multiArraySerializer) Major() byte          { return MultiArrayMajor }
func (multiArraySerializer) Minor() byte          { return MultiArrayMinor }
func (multiArraySerializer) SizePrefixWidth() int { return 4 }

func (multiArraySerializer) Serialize(value interface{}, p *Packer) ([]byte, error) {
	arr, ok := value.(MultiTypeArray)
	if !ok {
		if items, ok := value.([]interface{}); ok {
			arr = MultiTypeArray{Items: items}
		} else {
			return nil, xyoerr.New(xyoerr.KindMalformed, "MultiTypeArray: value is not a MultiTypeArray")
		}
	}
	var out []byte
	for _, item := range arr.Items {
		wrapped, ok := item.(TypedValue)
		if !ok {
			return nil, xyoerr.New(xyoerr.KindMalformed, "MultiTypeArray: item is not a TypedValue")
		}
		encoded, err := p.Serialize(wrapped.Value, wrapped.Major, wrapped.Minor, FramingTyped)
		if err != nil {
			return nil, err
		}
		out = append(out, encoded...)
	}
	return out, nil
}

func (multiArraySerializer) Deserialize(payload []byte, p *Packer) (interface{}, error) {
	var items []interface{}
	remaining := payload
	for len(remaining) > 0 {
		value, consumed, err := p.Deserialize(remaining)
		if err != nil {
			return nil, err
		}
		major, minor := remaining[0], remaining[1]
		items = append(items, TypedValue{Major: major, Minor: minor, Value: value})
		remaining = remaining[consumed:]
	}
	return MultiTypeArray{Items: items}, nil
}

func (multiArraySerializer) ReadSize(header []byte, p *Packer) (int, error) {
	return readSizePrefix(4, header)
}

// TypedValue tags a decoded value with the (major, minor) it was read
// from, since MultiTypeArray children are heterogeneous.
type TypedValue struct {
	Major byte
	Minor byte
	Value interface{}
}
