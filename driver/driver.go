package driver

import (
	"context"

	"github.com/xyo-network/origin-chain/boundwitness"
	"github.com/xyo-network/origin-chain/internal/logging"
	"github.com/xyo-network/origin-chain/packer"
	"github.com/xyo-network/origin-chain/xyoerr"
	"github.com/xyo-network/origin-chain/zigzag"
)

// RunInitiator drives the initiator's side of one zig-zag session over
// pipe to completion: send our contribution, await the peer's, send our
// signatures. Only the initiator's first outbound message carries the
// catalogue header (§4.4) — the responder never has to ask for one,
// since it only starts talking once it has already received it.
func RunInitiator(ctx context.Context, p *packer.Packer, pipe Pipe, asm *zigzag.Assembler, catalogue Catalogue, log logging.Logger) (*boundwitness.BoundWitness, error) {
	transfer1, err := asm.IncomingData(nil, false)
	if err != nil {
		return nil, err
	}
	out1, err := encodeTransfer(p, transfer1)
	if err != nil {
		return nil, err
	}
	framed1 := append(encodeCatalogue(catalogue), out1...)

	log.Debug("sending initial transfer", "bytes", len(framed1))
	resp, err := pipe.Send(ctx, framed1, true)
	if err != nil {
		return nil, xyoerr.Wrap(xyoerr.KindPeerDisconnected, "initiator: send/await first transfer failed", err)
	}

	transfer2, err := decodeTransfer(p, resp)
	if err != nil {
		return nil, err
	}
	transfer3, err := asm.IncomingData(transfer2, false)
	if err != nil {
		return nil, err
	}
	out3, err := encodeTransfer(p, transfer3)
	if err != nil {
		return nil, err
	}

	log.Debug("sending final transfer", "bytes", len(out3))
	if _, err := pipe.Send(ctx, out3, false); err != nil {
		return nil, xyoerr.Wrap(xyoerr.KindPeerDisconnected, "initiator: send of final transfer failed", err)
	}

	bw, ok := asm.Result()
	if !ok {
		return nil, xyoerr.New(xyoerr.KindNegotiationAborted, "initiator: exchange completed without a result")
	}
	return &bw, nil
}

// RunResponder drives the responder's side: firstInbound is the peer's
// first transfer, already stripped of its catalogue header by the
// caller (the handler, which needs the header to pick a sub-protocol
// before dispatching here in the first place).
func RunResponder(ctx context.Context, p *packer.Packer, pipe Pipe, asm *zigzag.Assembler, firstInbound []byte, log logging.Logger) (*boundwitness.BoundWitness, error) {
	transfer1, err := decodeTransfer(p, firstInbound)
	if err != nil {
		return nil, err
	}
	transfer2, err := asm.IncomingData(transfer1, true)
	if err != nil {
		return nil, err
	}
	out2, err := encodeTransfer(p, transfer2)
	if err != nil {
		return nil, err
	}

	log.Debug("sending signature transfer", "bytes", len(out2))
	resp, err := pipe.Send(ctx, out2, true)
	if err != nil {
		return nil, xyoerr.Wrap(xyoerr.KindPeerDisconnected, "responder: send/await second transfer failed", err)
	}

	transfer3, err := decodeTransfer(p, resp)
	if err != nil {
		return nil, err
	}
	if _, err := asm.IncomingData(transfer3, false); err != nil {
		return nil, err
	}

	bw, ok := asm.Result()
	if !ok {
		return nil, xyoerr.New(xyoerr.KindNegotiationAborted, "responder: exchange completed without a result")
	}
	return &bw, nil
}

// ReadCatalogue strips and decodes the catalogue header a peer's first
// inbound message is expected to carry, returning the remaining bytes
// for the caller to dispatch.
func ReadCatalogue(data []byte) (Catalogue, []byte, error) {
	if len(data) < catalogueHeaderWidth {
		return 0, nil, xyoerr.New(xyoerr.KindMalformed, "catalogue header truncated")
	}
	return decodeCatalogue(data[:catalogueHeaderWidth]), data[catalogueHeaderWidth:], nil
}

func encodeTransfer(p *packer.Packer, t *zigzag.Transfer) ([]byte, error) {
	return p.SerializeUntyped(*t, zigzag.Major, zigzag.Minor)
}

func decodeTransfer(p *packer.Packer, data []byte) (*zigzag.Transfer, error) {
	val, _, err := p.DeserializeUntyped(zigzag.Major, zigzag.Minor, data)
	if err != nil {
		return nil, err
	}
	t, ok := val.(zigzag.Transfer)
	if !ok {
		return nil, xyoerr.New(xyoerr.KindMalformed, "decoded value is not a Transfer")
	}
	return &t, nil
}
