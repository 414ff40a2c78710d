package handler

import (
	"context"

	"github.com/xyo-network/origin-chain/boundwitness"
)

// SuccessListener is notified once a bound-witness negotiation completes
// and validates. participantIndex is this node's own slot within the
// block, so the listener can find its own chain_index/previous_hash/
// next_public_key commitments without re-deriving them.
type SuccessListener interface {
	OnBoundWitnessComplete(ctx context.Context, bw boundwitness.BoundWitness, participantIndex int) error
}

// SuccessListenerFunc adapts a plain function to a SuccessListener.
type SuccessListenerFunc func(ctx context.Context, bw boundwitness.BoundWitness, participantIndex int) error

// OnBoundWitnessComplete implements SuccessListener.
func (f SuccessListenerFunc) OnBoundWitnessComplete(ctx context.Context, bw boundwitness.BoundWitness, participantIndex int) error {
	return f(ctx, bw, participantIndex)
}
