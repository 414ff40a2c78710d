package driver_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/xyo-network/origin-chain/boundwitness"
	"github.com/xyo-network/origin-chain/driver"
	"github.com/xyo-network/origin-chain/driver/pipemock"
	"github.com/xyo-network/origin-chain/heuristic"
	"github.com/xyo-network/origin-chain/internal/logging"
	"github.com/xyo-network/origin-chain/packer"
	"github.com/xyo-network/origin-chain/payload"
	"github.com/xyo-network/origin-chain/xyocrypto"
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

// TestDriver_RunsFullSessionOverMockPipe exercises RunInitiator and
// RunResponder against each other over a pipemock.Pair, including the
// catalogue header the initiator's first message must carry.
func TestDriver_RunsFullSessionOverMockPipe(t *testing.T) {
	p := newTestPacker(t)
	ctx := context.Background()
	log := logging.NewNoOp()

	signerA, err := xyocrypto.NewSecp256k1Signer()
	require.NoError(t, err)
	signerB, err := xyocrypto.NewSecp256k1Signer()
	require.NoError(t, err)

	asmA, err := zigzag.New(p, []xyocrypto.Signer{signerA}, payload.Payload{
		SignedHeuristics: []packer.TypedValue{heuristic.AsTyped(heuristic.MinorChainIndex, heuristic.ChainIndex(1))},
	})
	require.NoError(t, err)
	asmB, err := zigzag.New(p, []xyocrypto.Signer{signerB}, payload.Payload{
		SignedHeuristics: []packer.TypedValue{heuristic.AsTyped(heuristic.MinorChainIndex, heuristic.ChainIndex(2))},
	})
	require.NoError(t, err)

	initiatorPipe, responderPipe := pipemock.NewPair()

	type initResult struct {
		bw  *boundwitness.BoundWitness
		err error
	}
	resultCh := make(chan initResult, 1)
	go func() {
		bw, err := driver.RunInitiator(ctx, p, initiatorPipe, asmA, driver.CatalogueBoundWitness, log)
		resultCh <- initResult{bw, err}
	}()

	firstInbound, err := responderPipe.Drain(ctx)
	require.NoError(t, err)

	catalogue, stripped, err := driver.ReadCatalogue(firstInbound)
	require.NoError(t, err)
	require.True(t, catalogue.Supports(driver.CatalogueBoundWitness))

	responderBW, err := driver.RunResponder(ctx, p, responderPipe, asmB, stripped, log)
	require.NoError(t, err)

	res := <-resultCh
	require.NoError(t, res.err)

	require.NoError(t, res.bw.Validate(p))
	require.NoError(t, responderBW.Validate(p))
	require.Equal(t, res.bw.PublicKeys, responderBW.PublicKeys)
	require.Len(t, res.bw.PublicKeys, 2)
}

// TestDriver_DisconnectSurfacesAsContextError drains the initiator's
// first message but never replies, and checks the initiator's blocked
// Send gives up once the caller's context expires rather than hanging
// forever.
func TestDriver_DisconnectSurfacesAsContextError(t *testing.T) {
	p := newTestPacker(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	log := logging.NewNoOp()

	signerA, err := xyocrypto.NewSecp256k1Signer()
	require.NoError(t, err)

	asmA, err := zigzag.New(p, []xyocrypto.Signer{signerA}, payload.Payload{})
	require.NoError(t, err)

	initiatorPipe, responderPipe := pipemock.NewPair()

	go func() {
		_, _ = responderPipe.Drain(context.Background())
		// Deliberately never respond, simulating a vanished peer.
	}()

	_, err = driver.RunInitiator(ctx, p, initiatorPipe, asmA, driver.CatalogueBoundWitness, log)
	require.Error(t, err)
}
