package packer

// Serializer encodes and decodes one (major, minor) protocol value. All
// methods receive the owning Packer so a composite value (an array, a
// payload, a block) can dispatch to its children through the same
// registry rather than hard-coding their types.
type Serializer interface {
	// Major is the value's major type id.
	Major() byte
	// Minor is the value's minor type id.
	Minor() byte
	// SizePrefixWidth is 0 for a fixed-length type, or 1/2/4 for the
	// big-endian length-prefix width used in Untyped/Typed framing.
	SizePrefixWidth() int
	// Serialize returns the value's raw payload bytes: no major/minor
	// tag, no size prefix.
	Serialize(value interface{}, p *Packer) ([]byte, error)
	// Deserialize parses raw payload bytes (already stripped of any
	// prefix and tag) back into a value.
	Deserialize(payload []byte, p *Packer) (interface{}, error)
	// ReadSize interprets header bytes for this type. For a
	// SizePrefixWidth() > 0 type, header is the first SizePrefixWidth()
	// bytes of the framed value and ReadSize returns the total framed
	// length (counting the prefix itself). For a zero-width type, header
	// is ignored and ReadSize returns the type's fixed payload length.
	ReadSize(header []byte, p *Packer) (int, error)
}
