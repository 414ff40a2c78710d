package zigzag_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xyo-network/origin-chain/boundwitness"
	"github.com/xyo-network/origin-chain/heuristic"
	"github.com/xyo-network/origin-chain/packer"
	"github.com/xyo-network/origin-chain/payload"
	"github.com/xyo-network/origin-chain/xyocrypto"
	"github.com/xyo-network/origin-chain/xyoerr"
	"github.com/xyo-network/origin-chain/zigzag"
)

func newTestPacker(t *testing.T) *packer.Packer {
	t.Helper()
	p := packer.New()
	require.NoError(t, packer.RegisterMultiTypeArray(p))
	require.NoError(t, xyocrypto.RegisterDefaults(p))
	require.NoError(t, heuristic.RegisterDefaults(p))
	require.NoError(t, payload.RegisterDefaults(p))
	require.NoError(t, boundwitness.RegisterDefaults(p))
	require.NoError(t, zigzag.RegisterDefaults(p))
	return p
}

// TestAssembler_TwoPeerExchange drives the full three-message zig-zag
// (§4.3) between an initiator with one signer and a responder with one
// signer, each carrying a distinct RSSI heuristic, and checks the
// resulting block validates on both sides and the signatures land in
// the expected participant slots.
func TestAssembler_TwoPeerExchange(t *testing.T) {
	p := newTestPacker(t)

	signerA, err := xyocrypto.NewSecp256k1Signer()
	require.NoError(t, err)
	signerB, err := xyocrypto.NewSecp256k1Signer()
	require.NoError(t, err)

	payloadA := payload.Payload{
		SignedHeuristics: []packer.TypedValue{
			heuristic.AsTyped(heuristic.MinorChainIndex, heuristic.ChainIndex(1)),
			heuristic.AsTyped(heuristic.MinorRSSI, heuristic.RSSI(-42)),
		},
	}
	payloadB := payload.Payload{
		SignedHeuristics: []packer.TypedValue{
			heuristic.AsTyped(heuristic.MinorChainIndex, heuristic.ChainIndex(7)),
			heuristic.AsTyped(heuristic.MinorRSSI, heuristic.RSSI(-55)),
		},
	}

	initiator, err := zigzag.New(p, []xyocrypto.Signer{signerA}, payloadA)
	require.NoError(t, err)
	responder, err := zigzag.New(p, []xyocrypto.Signer{signerB}, payloadB)
	require.NoError(t, err)

	transfer1, err := initiator.IncomingData(nil, false)
	require.NoError(t, err)
	require.Len(t, transfer1.PublicKeys, 1)
	require.Empty(t, transfer1.Signatures)

	transfer2, err := responder.IncomingData(transfer1, true)
	require.NoError(t, err)
	require.Len(t, transfer2.PublicKeys, 1)
	require.Len(t, transfer2.Signatures, 1)

	transfer3, err := initiator.IncomingData(transfer2, false)
	require.NoError(t, err)
	require.Empty(t, transfer3.PublicKeys)
	require.Len(t, transfer3.Signatures, 1)

	_, err = responder.IncomingData(transfer3, false)
	require.NoError(t, err)

	blockA, ok := initiator.Result()
	require.True(t, ok)
	blockB, ok := responder.Result()
	require.True(t, ok)

	require.NoError(t, blockA.Validate(p))
	require.NoError(t, blockB.Validate(p))

	require.Len(t, blockA.PublicKeys, 2)
	require.True(t, blockA.PublicKeys[0].Equal(signerA.PublicKey()))
	require.True(t, blockA.PublicKeys[1].Equal(signerB.PublicKey()))

	require.Equal(t, blockA.PublicKeys, blockB.PublicKeys)
	require.Equal(t, blockA.Payloads, blockB.Payloads)
	require.Equal(t, len(blockA.Signatures), len(blockB.Signatures))
}

// TestAssembler_MultiSignerPeer exercises a peer rotating two signers at
// once, checking slot assignment still lines up when N > 1 per side.
func TestAssembler_MultiSignerPeer(t *testing.T) {
	p := newTestPacker(t)

	signerA1, err := xyocrypto.NewSecp256k1Signer()
	require.NoError(t, err)
	signerA2, err := xyocrypto.NewSecp256k1Signer()
	require.NoError(t, err)
	signerB, err := xyocrypto.NewSecp256k1Signer()
	require.NoError(t, err)

	payloadA := payload.Payload{SignedHeuristics: []packer.TypedValue{
		heuristic.AsTyped(heuristic.MinorChainIndex, heuristic.ChainIndex(3)),
	}}
	payloadB := payload.Payload{SignedHeuristics: []packer.TypedValue{
		heuristic.AsTyped(heuristic.MinorChainIndex, heuristic.ChainIndex(9)),
	}}

	initiator, err := zigzag.New(p, []xyocrypto.Signer{signerA1, signerA2}, payloadA)
	require.NoError(t, err)
	responder, err := zigzag.New(p, []xyocrypto.Signer{signerB}, payloadB)
	require.NoError(t, err)

	transfer1, err := initiator.IncomingData(nil, false)
	require.NoError(t, err)
	require.Len(t, transfer1.PublicKeys, 2)

	transfer2, err := responder.IncomingData(transfer1, true)
	require.NoError(t, err)

	transfer3, err := initiator.IncomingData(transfer2, false)
	require.NoError(t, err)
	require.Len(t, transfer3.Signatures, 2)

	_, err = responder.IncomingData(transfer3, false)
	require.NoError(t, err)

	block, ok := initiator.Result()
	require.True(t, ok)
	require.NoError(t, block.Validate(p))
	require.Len(t, block.PublicKeys, 3)
}

// TestAssembler_TamperedSignatureRejected mutates the responder's
// reported signature before the initiator integrates it; the exchange
// must abort rather than assemble a block with an unverifiable entry.
func TestAssembler_TamperedSignatureRejected(t *testing.T) {
	p := newTestPacker(t)

	signerA, err := xyocrypto.NewSecp256k1Signer()
	require.NoError(t, err)
	signerB, err := xyocrypto.NewSecp256k1Signer()
	require.NoError(t, err)

	initiator, err := zigzag.New(p, []xyocrypto.Signer{signerA}, payload.Payload{})
	require.NoError(t, err)
	responder, err := zigzag.New(p, []xyocrypto.Signer{signerB}, payload.Payload{})
	require.NoError(t, err)

	transfer1, err := initiator.IncomingData(nil, false)
	require.NoError(t, err)

	transfer2, err := responder.IncomingData(transfer1, true)
	require.NoError(t, err)

	tampered := *transfer2
	tampered.Signatures = append([]xyocrypto.Signature(nil), transfer2.Signatures...)
	tampered.Signatures[0].Bytes = append([]byte(nil), tampered.Signatures[0].Bytes...)
	tampered.Signatures[0].Bytes[0] ^= 0xFF

	_, err = initiator.IncomingData(&tampered, false)
	require.Error(t, err)
	require.True(t, xyoerr.Is(err, xyoerr.KindSignatureInvalid))
}
