// Package config holds the runtime knobs the core protocol engine leaves
// to the outer system: pipe timeouts, catalogue defaults, and which
// repository backend to use. It follows the teacher's Config struct /
// Builder / preset shape, trimmed to what the core actually consumes.
package config

import "time"

// HashAlgorithm identifies which hash provider the node uses by default.
type HashAlgorithm uint8

// SignatureAlgorithm identifies which signer provider the node uses by default.
type SignatureAlgorithm uint8

const (
	// HashAlgorithmKeccak256 selects the Keccak-256 hash provider.
	HashAlgorithmKeccak256 HashAlgorithm = 1
)

const (
	// SignatureAlgorithmSecp256k1 selects the secp256k1 signer provider.
	SignatureAlgorithmSecp256k1 SignatureAlgorithm = 1
)

// RepositoryBackend selects the origin-chain repository implementation.
type RepositoryBackend uint8

const (
	// RepositoryBackendMemory keeps chain state in process memory only.
	RepositoryBackendMemory RepositoryBackend = iota
	// RepositoryBackendPebble persists chain state to a pebble database.
	RepositoryBackendPebble
)

// Config is the full set of knobs a node boots with.
type Config struct {
	// PipeTimeout bounds how long the interaction driver waits for a
	// response to an awaited send before treating the peer as gone.
	PipeTimeout time.Duration

	// DefaultCatalogue is the catalogue-item bitmask advertised on the
	// first outbound message of a session that doesn't specify one.
	DefaultCatalogue uint32

	// HashAlgorithm names the default hash provider. No code reads it;
	// block hashes are always computed with Keccak-256.
	HashAlgorithm HashAlgorithm

	// SignatureAlgorithm is the default signer provider algorithm id.
	SignatureAlgorithm SignatureAlgorithm

	// RepositoryBackend selects the chain-state storage implementation.
	RepositoryBackend RepositoryBackend

	// RepositoryPath is the on-disk path for RepositoryBackendPebble.
	RepositoryPath string

	// LogLevel is passed through to internal/logging.New.
	LogLevel string
}

// CatalogueBoundWitness is the reserved bit for the bound-witness sub-protocol.
const CatalogueBoundWitness uint32 = 1 << 0
