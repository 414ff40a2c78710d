package zigzag

// This package raises only the shared xyoerr.Kind taxonomy
// (KindNegotiationAborted, KindSignatureInvalid) rather than its own
// sentinels, so driver and handler callers match on one vocabulary
// regardless of which subsystem aborted the exchange.
