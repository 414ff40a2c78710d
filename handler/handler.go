// Package handler orchestrates one pipe session end to end: build an
// assembler from the node's current signers and payload, drive it
// through the driver, and on success hand the completed block to a
// SuccessListener along with any nested bound witnesses it carries.
package handler

import (
	"context"
	"errors"

	"github.com/xyo-network/origin-chain/boundwitness"
	"github.com/xyo-network/origin-chain/driver"
	"github.com/xyo-network/origin-chain/internal/logging"
	"github.com/xyo-network/origin-chain/internal/metrics"
	"github.com/xyo-network/origin-chain/packer"
	"github.com/xyo-network/origin-chain/payload"
	"github.com/xyo-network/origin-chain/verifier"
	"github.com/xyo-network/origin-chain/xyocrypto"
	"github.com/xyo-network/origin-chain/xyoerr"
	"github.com/xyo-network/origin-chain/zigzag"
)

// ChainSource supplies what an assembler needs from this node's chain
// state for one session — the signers currently eligible to sign (§4.2
// current_signers) and the payload to attach for this block — and the
// single write this package ever performs against chain state: advancing
// it once a block completes (§4.6 "on success ... repo.update_origin_
// chain_state"). It is satisfied structurally by originchain.Repository
// without either package importing the other.
type ChainSource interface {
	CurrentSigners(ctx context.Context) ([]xyocrypto.Signer, error)
	NextPayload(ctx context.Context) (payload.Payload, error)
	UpdateOriginChainState(hash xyocrypto.Hash) error
	GetIndex() uint64
}

// Handler wires one node's chain source and packer into repeatable
// pipe sessions.
type Handler struct {
	Packer   *packer.Packer
	Chain    ChainSource
	Listener SuccessListener
	Hash     xyocrypto.HashProvider
	Log      logging.Logger
	Metrics  *metrics.Metrics
}

// New builds a Handler. log and m may be NewNoOp()-shaped defaults.
func New(p *packer.Packer, chain ChainSource, listener SuccessListener, hash xyocrypto.HashProvider, log logging.Logger, m *metrics.Metrics) *Handler {
	return &Handler{Packer: p, Chain: chain, Listener: listener, Hash: hash, Log: log, Metrics: m}
}

// HandleOutbound runs this node as the initiator of a new session over pipe.
func (h *Handler) HandleOutbound(ctx context.Context, pipe driver.Pipe, catalogue driver.Catalogue) (*boundwitness.BoundWitness, error) {
	h.Metrics.NegotiationsStarted.Inc()
	asm, err := h.newAssembler(ctx)
	if err != nil {
		return nil, err
	}
	bw, err := driver.RunInitiator(ctx, h.Packer, pipe, asm, catalogue, h.Log)
	if err != nil {
		h.Metrics.NegotiationsAborted.WithLabelValues(abortKind(err)).Inc()
		return nil, err
	}
	return h.onSuccess(ctx, *bw, 0)
}

// HandleInbound runs this node as the responder, given the first
// message received on pipe (catalogue header included).
func (h *Handler) HandleInbound(ctx context.Context, pipe driver.Pipe, firstInboundFramed []byte) (*boundwitness.BoundWitness, error) {
	catalogue, stripped, err := driver.ReadCatalogue(firstInboundFramed)
	if err != nil {
		return nil, err
	}
	if !catalogue.Supports(driver.CatalogueBoundWitness) {
		return nil, xyoerr.New(xyoerr.KindUnknownType, "peer's catalogue does not advertise the bound-witness sub-protocol")
	}

	h.Metrics.NegotiationsStarted.Inc()
	asm, err := h.newAssembler(ctx)
	if err != nil {
		return nil, err
	}
	bw, err := driver.RunResponder(ctx, h.Packer, pipe, asm, stripped, h.Log)
	if err != nil {
		h.Metrics.NegotiationsAborted.WithLabelValues(abortKind(err)).Inc()
		return nil, err
	}

	signers, err := h.Chain.CurrentSigners(ctx)
	if err != nil {
		return nil, err
	}
	return h.onSuccess(ctx, *bw, len(bw.PublicKeys)-len(signers))
}

func (h *Handler) newAssembler(ctx context.Context) (*zigzag.Assembler, error) {
	signers, err := h.Chain.CurrentSigners(ctx)
	if err != nil {
		return nil, xyoerr.Wrap(xyoerr.KindRepositoryUnavailable, "handler: could not load current signers", err)
	}
	pl, err := h.Chain.NextPayload(ctx)
	if err != nil {
		return nil, xyoerr.Wrap(xyoerr.KindRepositoryUnavailable, "handler: could not build next payload", err)
	}
	return zigzag.New(h.Packer, signers, pl)
}

func (h *Handler) onSuccess(ctx context.Context, bw boundwitness.BoundWitness, participantIndex int) (*boundwitness.BoundWitness, error) {
	h.Metrics.NegotiationsComplete.Inc()
	h.Log.Info("bound witness complete", "participants", len(bw.PublicKeys))

	blockHash, err := verifier.BlockHash(h.Packer, h.Hash, bw)
	if err != nil {
		return nil, xyoerr.Wrap(xyoerr.KindMalformed, "handler: could not hash completed block", err)
	}

	if h.Listener != nil {
		if err := h.Listener.OnBoundWitnessComplete(ctx, bw, participantIndex); err != nil {
			return nil, err
		}
		for _, nested := range ExtractNested(bw) {
			if err := h.Listener.OnBoundWitnessComplete(ctx, nested, -1); err != nil {
				return nil, err
			}
		}
	}

	// update_origin_chain_state happens-after every listener notification
	// for this block (§5 ordering) and is skipped entirely on any earlier
	// failure (§4.6 "On failure, the repository is untouched").
	if err := h.Chain.UpdateOriginChainState(blockHash); err != nil {
		return nil, xyoerr.Wrap(xyoerr.KindRepositoryUnavailable, "handler: could not advance chain state", err)
	}
	h.Metrics.RepositoryIndex.Set(float64(h.Chain.GetIndex()))

	return &bw, nil
}

// abortKind labels an aborted negotiation by its xyoerr.Kind, or
// "Unknown" for an error that carries none.
func abortKind(err error) string {
	var xerr *xyoerr.Error
	if errors.As(err, &xerr) {
		return xerr.Kind.String()
	}
	return "Unknown"
}
