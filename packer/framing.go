package packer

import (
	"encoding/binary"

	"github.com/xyo-network/origin-chain/xyoerr"
)

// Framing selects how a value's payload bytes are wrapped on the wire.
type Framing int

const (
	// FramingRaw emits payload bytes only. Valid only when the caller
	// already knows both the value's (major, minor) and its length from
	// surrounding context.
	FramingRaw Framing = iota
	// FramingUntyped emits a size-prefix (width fixed per (major, minor))
	// followed by the payload. The size-prefix counts itself.
	FramingUntyped
	// FramingTyped emits major, minor, then an untyped-style size-prefix,
	// then the payload.
	FramingTyped
)

// writeSizePrefix returns width-bytes-of-length (counting itself) followed
// by payload, for width in {1, 2, 4}. Width 0 means fixed-length: no
// prefix is written at all.
func writeSizePrefix(width int, payload []byte) ([]byte, error) {
	if width == 0 {
		return payload, nil
	}
	total := width + len(payload)
	buf := make([]byte, width+len(payload))
	if err := putUint(buf[:width], width, uint64(total)); err != nil {
		return nil, err
	}
	copy(buf[width:], payload)
	return buf, nil
}

// readSizePrefix reads a width-byte big-endian length (which counts
// itself) from the front of header and returns it.
func readSizePrefix(width int, header []byte) (int, error) {
	if len(header) < width {
		return 0, xyoerr.New(xyoerr.KindMalformed, "truncated size prefix")
	}
	v, err := getUint(header[:width], width)
	if err != nil {
		return 0, err
	}
	if int(v) < width {
		return 0, xyoerr.New(xyoerr.KindMalformed, "size prefix smaller than its own width")
	}
	return int(v), nil
}

func putUint(buf []byte, width int, v uint64) error {
	switch width {
	case 1:
		if v > 0xFF {
			return xyoerr.New(xyoerr.KindMalformed, "value too large for 1-byte size prefix")
		}
		buf[0] = byte(v)
	case 2:
		if v > 0xFFFF {
			return xyoerr.New(xyoerr.KindMalformed, "value too large for 2-byte size prefix")
		}
		binary.BigEndian.PutUint16(buf, uint16(v))
	case 4:
		if v > 0xFFFFFFFF {
			return xyoerr.New(xyoerr.KindMalformed, "value too large for 4-byte size prefix")
		}
		binary.BigEndian.PutUint32(buf, uint32(v))
	default:
		return xyoerr.New(xyoerr.KindMalformed, "unsupported size-prefix width")
	}
	return nil
}

func getUint(buf []byte, width int) (uint64, error) {
	switch width {
	case 1:
		return uint64(buf[0]), nil
	case 2:
		return uint64(binary.BigEndian.Uint16(buf)), nil
	case 4:
		return uint64(binary.BigEndian.Uint32(buf)), nil
	default:
		return 0, xyoerr.New(xyoerr.KindMalformed, "unsupported size-prefix width")
	}
}
