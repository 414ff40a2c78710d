// Package pipemock provides a hand-written driver.Pipe double backed by
// paired Go channels, for tests that need two peers talking over the
// exchange without a real transport.
package pipemock

import (
	"context"

	"github.com/xyo-network/origin-chain/xyoerr"
)

// Pair wires two Pipes to each other: writes on one arrive as the other's
// next Send response (or as the inbound handoff returned by Drain).
type Pair struct {
	a *Pipe
	b *Pipe
}

// NewPair builds two connected Pipes, named for clarity in tests.
func NewPair() (initiator *Pipe, responder *Pipe) {
	toResponder := make(chan []byte, 4)
	toInitiator := make(chan []byte, 4)
	initiator = &Pipe{out: toResponder, in: toInitiator}
	responder = &Pipe{out: toInitiator, in: toResponder}
	return initiator, responder
}

// Pipe is one end of a Pair.
type Pipe struct {
	out    chan<- []byte
	in     <-chan []byte
	closed bool
}

// Send implements driver.Pipe.
func (p *Pipe) Send(ctx context.Context, data []byte, awaitResponse bool) ([]byte, error) {
	if p.closed {
		return nil, xyoerr.New(xyoerr.KindPeerDisconnected, "pipemock: send on closed pipe")
	}
	select {
	case p.out <- data:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if !awaitResponse {
		return nil, nil
	}
	select {
	case resp, ok := <-p.in:
		if !ok {
			return nil, xyoerr.New(xyoerr.KindPeerDisconnected, "pipemock: peer closed before responding")
		}
		return resp, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Drain reads one message sent to this pipe without a matching Send, for
// a test harness handing the responder its first inbound message.
func (p *Pipe) Drain(ctx context.Context) ([]byte, error) {
	select {
	case data, ok := <-p.in:
		if !ok {
			return nil, xyoerr.New(xyoerr.KindPeerDisconnected, "pipemock: peer closed")
		}
		return data, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close implements driver.Pipe.
func (p *Pipe) Close() error {
	p.closed = true
	return nil
}
