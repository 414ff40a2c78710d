package driver

// Catalogue is the bitmask a peer advertises on the first outbound
// message of a pipe session, naming which sub-protocols it is willing
// to run over that pipe (§4.4 "catalogue exchange"). The bound-witness
// negotiation is one bit among potentially many; a node speaking only
// bound-witness sets just CatalogueBoundWitness.
type Catalogue uint32

// CatalogueBoundWitness is the reserved bit for the zig-zag bound-witness
// sub-protocol implemented by this package.
const CatalogueBoundWitness Catalogue = 1 << 0

// Supports reports whether c advertises the given sub-protocol bit.
func (c Catalogue) Supports(bit Catalogue) bool {
	return c&bit != 0
}

// catalogueBitmaskWidth is the fixed size-of-header constant §4.4/§6
// prepend as the header's leading self-describing byte: 4 bytes of
// bitmask, never more or fewer regardless of which bits are set.
const catalogueBitmaskWidth = 4

// catalogueHeaderWidth is the full on-wire header: the 1-byte size field
// plus the 4-byte bitmask it describes.
const catalogueHeaderWidth = 1 + catalogueBitmaskWidth

func encodeCatalogue(c Catalogue) []byte {
	return []byte{
		catalogueBitmaskWidth,
		byte(c >> 24),
		byte(c >> 16),
		byte(c >> 8),
		byte(c),
	}
}

func decodeCatalogue(header []byte) Catalogue {
	bitmask := header[1:catalogueHeaderWidth]
	return Catalogue(bitmask[0])<<24 | Catalogue(bitmask[1])<<16 | Catalogue(bitmask[2])<<8 | Catalogue(bitmask[3])
}
