package config

import "time"

// Mainnet is the default configuration for production nodes.
var Mainnet = Config{
	PipeTimeout:        10 * time.Second,
	DefaultCatalogue:   CatalogueBoundWitness,
	HashAlgorithm:      HashAlgorithmKeccak256,
	SignatureAlgorithm: SignatureAlgorithmSecp256k1,
	RepositoryBackend:  RepositoryBackendPebble,
	RepositoryPath:     "./data/originchain",
	LogLevel:           "info",
}

// Testnet relaxes timeouts and keeps state in memory for throwaway runs.
var Testnet = Config{
	PipeTimeout:        30 * time.Second,
	DefaultCatalogue:   CatalogueBoundWitness,
	HashAlgorithm:      HashAlgorithmKeccak256,
	SignatureAlgorithm: SignatureAlgorithmSecp256k1,
	RepositoryBackend:  RepositoryBackendMemory,
	LogLevel:           "debug",
}

// Local is tuned for a single-process, two-peer local demo.
var Local = Config{
	PipeTimeout:        2 * time.Second,
	DefaultCatalogue:   CatalogueBoundWitness,
	HashAlgorithm:      HashAlgorithmKeccak256,
	SignatureAlgorithm: SignatureAlgorithmSecp256k1,
	RepositoryBackend:  RepositoryBackendMemory,
	LogLevel:           "trace",
}

// Builder constructs a Config by applying overrides on top of a preset,
// mirroring the teacher's override-the-base-config CLI pattern.
type Builder struct {
	cfg Config
}

// NewBuilder starts a Builder from a base preset.
func NewBuilder(base Config) *Builder {
	return &Builder{cfg: base}
}

// WithPipeTimeout overrides the pipe timeout if d > 0.
func (b *Builder) WithPipeTimeout(d time.Duration) *Builder {
	if d > 0 {
		b.cfg.PipeTimeout = d
	}
	return b
}

// WithRepositoryBackend overrides the repository backend.
func (b *Builder) WithRepositoryBackend(backend RepositoryBackend, path string) *Builder {
	b.cfg.RepositoryBackend = backend
	b.cfg.RepositoryPath = path
	return b
}

// WithLogLevel overrides the log level if non-empty.
func (b *Builder) WithLogLevel(level string) *Builder {
	if level != "" {
		b.cfg.LogLevel = level
	}
	return b
}

// Build returns the assembled Config.
func (b *Builder) Build() Config {
	return b.cfg
}
