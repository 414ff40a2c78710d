package driver

import "context"

// Pipe is the transport abstraction the driver runs the zig-zag exchange
// over: one logical request/response channel to a single peer for the
// lifetime of one session (§4.4). Concrete implementations adapt a TCP
// connection, an in-process channel pair, or a test double.
type Pipe interface {
	// Send writes data to the peer. If awaitResponse is true, Send blocks
	// until the peer's next message arrives (or ctx is done) and returns
	// it; otherwise it returns immediately with a nil response.
	Send(ctx context.Context, data []byte, awaitResponse bool) ([]byte, error)

	// Close releases any resources held by the pipe. Calling Send after
	// Close must return an error.
	Close() error
}
