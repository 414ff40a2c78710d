// Package heuristic implements the typed, serializable data a peer
// places inside a payload: chain index, previous-hash reference,
// next-public-key commitment, and signal-strength heuristics. The set is
// extensible through the packer registry — this package only provides
// the items the core protocol itself needs.
package heuristic

import (
	"github.com/xyo-network/origin-chain/packer"
	"github.com/xyo-network/origin-chain/xyocrypto"
)

// Major is the wire major id shared by every heuristic item.
const Major byte = 0x10

// Minor ids for the built-in heuristic items.
const (
	MinorChainIndex     byte = 0x01
	MinorPreviousHash   byte = 0x02
	MinorNextPublicKey  byte = 0x03
	MinorRSSI           byte = 0x04
)

// ChainIndex is the position of a block within one participant's chain
// (§3 "Block <-> chain linkage").
type ChainIndex uint64

// PreviousHash references the hash of the previous block on one
// participant's chain. Absent only at genesis.
type PreviousHash struct {
	Hash xyocrypto.Hash
}

// NextPublicKey commits the signer of the participant's next block.
type NextPublicKey struct {
	PublicKey xyocrypto.PublicKey
}

// RSSI is a signed received-signal-strength-indicator sample, the
// canonical example of a free-form encounter datum.
type RSSI int8

// RegisterDefaults installs the built-in heuristic item codecs on p.
func RegisterDefaults(p *packer.Packer) error {
	for _, reg := range []func(*packer.Packer) error{
		registerChainIndex,
		registerPreviousHash,
		registerNextPublicKey,
		registerRSSI,
	} {
		if err := reg(p); err != nil {
			return err
		}
	}
	return nil
}

// AsTyped wraps a heuristic value with its wire (major, minor) so it can
// be placed inside a packer.MultiTypeArray.
func AsTyped(minor byte, value interface{}) packer.TypedValue {
	return packer.TypedValue{Major: Major, Minor: minor, Value: value}
}
