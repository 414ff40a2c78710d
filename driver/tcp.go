package driver

import (
	"context"
	"encoding/binary"
	"io"
	"net"
	"sync"

	"github.com/xyo-network/origin-chain/xyoerr"
)

// TCPPipe adapts a net.Conn into a driver.Pipe, applying the §6
// application framing: every datagram is preceded by a 4-byte
// big-endian length field that counts itself plus the payload. Framing
// here is the transport's job only — the catalogue header is layered on
// top by the driver, not by this type.
type TCPPipe struct {
	conn net.Conn

	mu       sync.Mutex
	closed   bool
	closedCh chan struct{}
}

// NewTCPPipe wraps an already-dialed/accepted connection.
func NewTCPPipe(conn net.Conn) *TCPPipe {
	return &TCPPipe{conn: conn, closedCh: make(chan struct{})}
}

// Send implements Pipe: it writes the length-framed payload and, if
// awaitResponse, blocks for the next length-framed message or ctx
// cancellation/peer disconnect, whichever comes first.
func (p *TCPPipe) Send(ctx context.Context, data []byte, awaitResponse bool) ([]byte, error) {
	if err := p.writeFrame(data); err != nil {
		return nil, xyoerr.Wrap(xyoerr.KindPeerDisconnected, "tcp pipe: write failed", err)
	}
	if !awaitResponse {
		return nil, nil
	}

	type result struct {
		data []byte
		err  error
	}
	done := make(chan result, 1)
	go func() {
		data, err := p.readFrame()
		done <- result{data, err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			return nil, xyoerr.Wrap(xyoerr.KindPeerDisconnected, "tcp pipe: read failed", r.err)
		}
		return r.data, nil
	case <-ctx.Done():
		p.Close()
		return nil, xyoerr.Wrap(xyoerr.KindPeerDisconnected, "tcp pipe: context cancelled while awaiting response", ctx.Err())
	case <-p.closedCh:
		return nil, xyoerr.New(xyoerr.KindPeerDisconnected, "tcp pipe: closed while awaiting response")
	}
}

func (p *TCPPipe) writeFrame(payload []byte) error {
	frame := make([]byte, 4+len(payload))
	binary.BigEndian.PutUint32(frame, uint32(len(frame)))
	copy(frame[4:], payload)
	_, err := p.conn.Write(frame)
	return err
}

func (p *TCPPipe) readFrame() ([]byte, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(p.conn, lenBuf[:]); err != nil {
		return nil, err
	}
	total := binary.BigEndian.Uint32(lenBuf[:])
	if total < 4 {
		return nil, xyoerr.New(xyoerr.KindMalformed, "tcp pipe: frame length shorter than its own length field")
	}
	payload := make([]byte, total-4)
	if _, err := io.ReadFull(p.conn, payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// Receive reads one length-framed message without sending anything
// first, for the responder side of a session: it must read the peer's
// catalogue-prefixed first message before it has anything of its own to
// send (§4.4 "Responder side is symmetric").
func (p *TCPPipe) Receive(ctx context.Context) ([]byte, error) {
	type result struct {
		data []byte
		err  error
	}
	done := make(chan result, 1)
	go func() {
		data, err := p.readFrame()
		done <- result{data, err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			return nil, xyoerr.Wrap(xyoerr.KindPeerDisconnected, "tcp pipe: read failed", r.err)
		}
		return r.data, nil
	case <-ctx.Done():
		p.Close()
		return nil, xyoerr.Wrap(xyoerr.KindPeerDisconnected, "tcp pipe: context cancelled while awaiting first message", ctx.Err())
	case <-p.closedCh:
		return nil, xyoerr.New(xyoerr.KindPeerDisconnected, "tcp pipe: closed while awaiting first message")
	}
}

// Close implements Pipe.
func (p *TCPPipe) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	close(p.closedCh)
	return p.conn.Close()
}
