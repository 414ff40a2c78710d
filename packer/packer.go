// Package packer implements the self-describing, length-prefixed binary
// format shared by every protocol entity: a registry of codecs keyed by
// (major, minor), dispatched through the Serializer interface rather
// than reflection, matching this corpus's name-keyed runtime
// registration idiom made static-typed.
package packer

import (
	"fmt"
	"sync"

	"github.com/xyo-network/origin-chain/xyoerr"
)

type typeKey struct {
	major byte
	minor byte
}

// Packer holds the (major, minor) -> Serializer registry. It is
// effectively read-only after registration and may be shared freely
// across concurrent sessions (§5).
type Packer struct {
	mu      sync.RWMutex
	byKey   map[typeKey]Serializer
	byName  map[string]Serializer
	started bool
}

// New returns an empty Packer.
func New() *Packer {
	return &Packer{
		byKey:  make(map[typeKey]Serializer),
		byName: make(map[string]Serializer),
	}
}

// Register installs a named Serializer. It fails on a duplicate name or
// a duplicate (major, minor) pair. Register must only be called during
// startup, before any Serialize/Deserialize call — concurrent use after
// that point is not supported, matching the registry's effectively
// read-only lifecycle (§4.1, §5).
func (p *Packer) Register(name string, s Serializer) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.byName[name]; exists {
		return fmt.Errorf("packer: serializer %q already registered", name)
	}
	key := typeKey{s.Major(), s.Minor()}
	if _, exists := p.byKey[key]; exists {
		return fmt.Errorf("packer: type (%d,%d) already registered", s.Major(), s.Minor())
	}
	p.byName[name] = s
	p.byKey[key] = s
	return nil
}

// LookupByName returns the Serializer registered under name.
func (p *Packer) LookupByName(name string) (Serializer, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	s, ok := p.byName[name]
	return s, ok
}

// LookupByMajorMinor returns the Serializer registered for (major, minor).
func (p *Packer) LookupByMajorMinor(major, minor byte) (Serializer, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	s, ok := p.byKey[typeKey{major, minor}]
	return s, ok
}

// Serialize encodes value as (major, minor) using the requested framing.
func (p *Packer) Serialize(value interface{}, major, minor byte, framing Framing) ([]byte, error) {
	s, ok := p.LookupByMajorMinor(major, minor)
	if !ok {
		return nil, xyoerr.New(xyoerr.KindUnknownType, fmt.Sprintf("(%d,%d) not registered", major, minor))
	}
	payload, err := s.Serialize(value, p)
	if err != nil {
		return nil, err
	}
	switch framing {
	case FramingRaw:
		return payload, nil
	case FramingUntyped:
		return writeSizePrefix(s.SizePrefixWidth(), payload)
	case FramingTyped:
		body, err := writeSizePrefix(s.SizePrefixWidth(), payload)
		if err != nil {
			return nil, err
		}
		out := make([]byte, 2+len(body))
		out[0] = major
		out[1] = minor
		copy(out[2:], body)
		return out, nil
	default:
		return nil, fmt.Errorf("packer: unknown framing %d", framing)
	}
}

// Deserialize decodes a Typed-framed value: it reads (major, minor) from
// the first two bytes, looks up the Serializer, strips the size prefix
// and dispatches. It returns the decoded value and the number of bytes
// of data consumed (2 + the framed body), so callers decoding a
// concatenation of typed children (as inside a MultiTypeArray) can loop.
func (p *Packer) Deserialize(data []byte) (interface{}, int, error) {
	if len(data) < 2 {
		return nil, 0, xyoerr.New(xyoerr.KindMalformed, "buffer shorter than a type tag")
	}
	major, minor := data[0], data[1]
	s, ok := p.LookupByMajorMinor(major, minor)
	if !ok {
		return nil, 0, xyoerr.New(xyoerr.KindUnknownType, fmt.Sprintf("(%d,%d) not registered", major, minor))
	}
	body := data[2:]
	width := s.SizePrefixWidth()

	var payload []byte
	var consumedBody int
	if width == 0 {
		size, err := s.ReadSize(nil, p)
		if err != nil {
			return nil, 0, err
		}
		if len(body) < size {
			return nil, 0, xyoerr.New(xyoerr.KindMalformed, "truncated fixed-length payload")
		}
		payload = body[:size]
		consumedBody = size
	} else {
		if len(body) < width {
			return nil, 0, xyoerr.New(xyoerr.KindMalformed, "truncated size prefix")
		}
		total, err := s.ReadSize(body[:width], p)
		if err != nil {
			return nil, 0, err
		}
		if total < width {
			return nil, 0, xyoerr.New(xyoerr.KindMalformed, "inconsistent size prefix")
		}
		if len(body) < total {
			return nil, 0, xyoerr.New(xyoerr.KindMalformed, "truncated payload")
		}
		payload = body[width:total]
		consumedBody = total
	}

	value, err := s.Deserialize(payload, p)
	if err != nil {
		return nil, 0, err
	}
	return value, 2 + consumedBody, nil
}

// SerializeUntyped is a convenience for Serialize(value, major, minor, FramingUntyped).
func (p *Packer) SerializeUntyped(value interface{}, major, minor byte) ([]byte, error) {
	return p.Serialize(value, major, minor, FramingUntyped)
}

// DeserializeUntyped decodes an Untyped-framed value whose (major, minor)
// the caller already knows from context (e.g. a driver decoding a
// Transfer message, which carries no type tag on the wire). It returns
// the decoded value and the number of bytes consumed.
func (p *Packer) DeserializeUntyped(major, minor byte, data []byte) (interface{}, int, error) {
	s, ok := p.LookupByMajorMinor(major, minor)
	if !ok {
		return nil, 0, xyoerr.New(xyoerr.KindUnknownType, fmt.Sprintf("(%d,%d) not registered", major, minor))
	}
	width := s.SizePrefixWidth()
	var payload []byte
	var consumed int
	if width == 0 {
		size, err := s.ReadSize(nil, p)
		if err != nil {
			return nil, 0, err
		}
		if len(data) < size {
			return nil, 0, xyoerr.New(xyoerr.KindMalformed, "truncated fixed-length payload")
		}
		payload = data[:size]
		consumed = size
	} else {
		if len(data) < width {
			return nil, 0, xyoerr.New(xyoerr.KindMalformed, "truncated size prefix")
		}
		total, err := s.ReadSize(data[:width], p)
		if err != nil {
			return nil, 0, err
		}
		if total < width {
			return nil, 0, xyoerr.New(xyoerr.KindMalformed, "inconsistent size prefix")
		}
		if len(data) < total {
			return nil, 0, xyoerr.New(xyoerr.KindMalformed, "truncated payload")
		}
		payload = data[width:total]
		consumed = total
	}
	value, err := s.Deserialize(payload, p)
	if err != nil {
		return nil, 0, err
	}
	return value, consumed, nil
}
