package originchain

import (
	"context"
	"sync"

	"github.com/cockroachdb/pebble"
	"github.com/fxamacker/cbor/v2"

	"github.com/xyo-network/origin-chain/packer"
	"github.com/xyo-network/origin-chain/payload"
	"github.com/xyo-network/origin-chain/xyocrypto"
	"github.com/xyo-network/origin-chain/xyoerr"
)

// stateKey is the single pebble key this repository ever writes. One
// origin-chain repository owns one pebble database (config.RepositoryPath
// per node), so there is no need to namespace by peer.
var stateKey = []byte("originchain/state/v1")

// persistedSigner is the cbor-on-disk shape of a secp256k1 signer: just
// its raw private key, the only algorithm this repository persists.
type persistedSigner struct {
	Algorithm  xyocrypto.Algorithm
	PrivateKey []byte
}

// persistedState is the cbor-on-disk shape of everything MemoryRepository
// keeps in memory, so a PebbleRepository survives process restarts.
type persistedState struct {
	Index          uint64
	HasPrevHash    bool
	PrevHashAlg    xyocrypto.Algorithm
	PrevHashBytes  []byte
	CurrentSigners []persistedSigner
	WaitingSigners []persistedSigner
	HasNextPubKey  bool
	NextPubKeyAlg  xyocrypto.Algorithm
	NextPubKeyByte []byte
}

// PebbleRepository is the persistent Repository backend: the same
// continuity state as MemoryRepository, but read from and written to a
// pebble database on every mutation, per spec.md §6 "Repository
// interface ... backend may be in-memory or persistent."
type PebbleRepository struct {
	mu     sync.Mutex
	db     *pebble.DB
	packer *packer.Packer
}

// OpenPebbleRepository opens (creating if absent) a pebble database at
// path and wraps it as a Repository. Callers own the returned
// repository's lifecycle and must call Close when done.
func OpenPebbleRepository(path string, p *packer.Packer) (*PebbleRepository, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, xyoerr.Wrap(xyoerr.KindRepositoryUnavailable, "originchain: could not open pebble database", err)
	}
	return &PebbleRepository{db: db, packer: p}, nil
}

// Close releases the underlying pebble database.
func (r *PebbleRepository) Close() error {
	return r.db.Close()
}

func (r *PebbleRepository) load() (persistedState, error) {
	val, closer, err := r.db.Get(stateKey)
	if err == pebble.ErrNotFound {
		return persistedState{}, nil
	}
	if err != nil {
		return persistedState{}, xyoerr.Wrap(xyoerr.KindRepositoryUnavailable, "originchain: pebble get failed", err)
	}
	defer closer.Close()

	var st persistedState
	if err := cbor.Unmarshal(val, &st); err != nil {
		return persistedState{}, xyoerr.Wrap(xyoerr.KindRepositoryUnavailable, "originchain: corrupt persisted state", err)
	}
	return st, nil
}

func (r *PebbleRepository) save(st persistedState) error {
	buf, err := cbor.Marshal(st)
	if err != nil {
		return xyoerr.Wrap(xyoerr.KindRepositoryUnavailable, "originchain: encode persisted state", err)
	}
	if err := r.db.Set(stateKey, buf, pebble.Sync); err != nil {
		return xyoerr.Wrap(xyoerr.KindRepositoryUnavailable, "originchain: pebble set failed", err)
	}
	return nil
}

func signerToPersisted(s xyocrypto.Signer) (persistedSigner, error) {
	sk, ok := s.(*xyocrypto.Secp256k1Signer)
	if !ok {
		return persistedSigner{}, xyoerr.New(xyoerr.KindRepositoryUnavailable, "originchain: pebble backend only persists secp256k1 signers")
	}
	return persistedSigner{Algorithm: xyocrypto.AlgorithmSecp256k1, PrivateKey: sk.PrivateKeyBytes()}, nil
}

func persistedToSigner(ps persistedSigner) (xyocrypto.Signer, error) {
	switch ps.Algorithm {
	case xyocrypto.AlgorithmSecp256k1:
		return xyocrypto.NewSecp256k1SignerFromBytes(ps.PrivateKey)
	default:
		return nil, xyoerr.New(xyoerr.KindRepositoryUnavailable, "originchain: unknown persisted signer algorithm")
	}
}

func signersToPersisted(signers []xyocrypto.Signer) ([]persistedSigner, error) {
	out := make([]persistedSigner, 0, len(signers))
	for _, s := range signers {
		ps, err := signerToPersisted(s)
		if err != nil {
			return nil, err
		}
		out = append(out, ps)
	}
	return out, nil
}

func persistedToSigners(in []persistedSigner) ([]xyocrypto.Signer, error) {
	out := make([]xyocrypto.Signer, 0, len(in))
	for _, ps := range in {
		s, err := persistedToSigner(ps)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// GetIndex implements Repository.
func (r *PebbleRepository) GetIndex() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, err := r.load()
	if err != nil {
		return 0
	}
	return st.Index
}

// GetPreviousHash implements Repository.
func (r *PebbleRepository) GetPreviousHash() (xyocrypto.Hash, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, err := r.load()
	if err != nil || !st.HasPrevHash {
		return xyocrypto.Hash{}, false
	}
	return xyocrypto.Hash{Algorithm: st.PrevHashAlg, Bytes: st.PrevHashBytes}, true
}

// GetSigners implements Repository.
func (r *PebbleRepository) GetSigners() []xyocrypto.Signer {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, err := r.load()
	if err != nil {
		return nil
	}
	signers, err := persistedToSigners(st.CurrentSigners)
	if err != nil {
		return nil
	}
	return signers
}

// GetWaitingSigners implements Repository.
func (r *PebbleRepository) GetWaitingSigners() []xyocrypto.Signer {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, err := r.load()
	if err != nil {
		return nil
	}
	signers, err := persistedToSigners(st.WaitingSigners)
	if err != nil {
		return nil
	}
	return signers
}

// GetGenesisSigner implements Repository.
func (r *PebbleRepository) GetGenesisSigner() (xyocrypto.Signer, bool) {
	signers := r.GetSigners()
	if len(signers) == 0 {
		return nil, false
	}
	return signers[0], true
}

// GetNextPublicKey implements Repository.
func (r *PebbleRepository) GetNextPublicKey() (xyocrypto.PublicKey, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, err := r.load()
	if err != nil || !st.HasNextPubKey {
		return xyocrypto.PublicKey{}, false
	}
	return xyocrypto.PublicKey{Algorithm: st.NextPubKeyAlg, Bytes: st.NextPubKeyByte}, true
}

// AddSigner implements Repository.
func (r *PebbleRepository) AddSigner(s xyocrypto.Signer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, err := r.load()
	if err != nil {
		return err
	}
	ps, err := signerToPersisted(s)
	if err != nil {
		return err
	}
	st.WaitingSigners = append(st.WaitingSigners, ps)
	return r.save(st)
}

// RemoveOldestSigner implements Repository.
func (r *PebbleRepository) RemoveOldestSigner() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, err := r.load()
	if err != nil {
		return err
	}
	if len(st.CurrentSigners) < 2 {
		return xyoerr.New(xyoerr.KindNoRotatableSigners, "no rotatable signers beyond genesis")
	}
	st.CurrentSigners = append(st.CurrentSigners[:1], st.CurrentSigners[2:]...)
	return r.save(st)
}

// SetCurrentSigners implements Repository.
func (r *PebbleRepository) SetCurrentSigners(signers []xyocrypto.Signer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, err := r.load()
	if err != nil {
		return err
	}
	ps, err := signersToPersisted(signers)
	if err != nil {
		return err
	}
	st.CurrentSigners = ps
	return r.save(st)
}

// UpdateOriginChainState implements Repository.
func (r *PebbleRepository) UpdateOriginChainState(hash xyocrypto.Hash) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, err := r.load()
	if err != nil {
		return err
	}
	st.HasPrevHash = true
	st.PrevHashAlg = hash.Algorithm
	st.PrevHashBytes = hash.Bytes
	st.Index++
	if len(st.WaitingSigners) > 0 {
		next := st.WaitingSigners[0]
		st.WaitingSigners = st.WaitingSigners[1:]
		st.CurrentSigners = append(st.CurrentSigners, next)
	}
	st.HasNextPubKey = false
	st.NextPubKeyByte = nil
	return r.save(st)
}

// CurrentSigners implements handler.ChainSource.
func (r *PebbleRepository) CurrentSigners(_ context.Context) ([]xyocrypto.Signer, error) {
	return r.GetSigners(), nil
}

// NextPayload implements handler.ChainSource, mirroring
// MemoryRepository.NextPayload over the persisted state.
func (r *PebbleRepository) NextPayload(_ context.Context) (payload.Payload, error) {
	r.mu.Lock()
	st, err := r.load()
	r.mu.Unlock()
	if err != nil {
		return payload.Payload{}, err
	}

	var prevHash *xyocrypto.Hash
	if st.HasPrevHash {
		prevHash = &xyocrypto.Hash{Algorithm: st.PrevHashAlg, Bytes: st.PrevHashBytes}
	}
	var committed *xyocrypto.PublicKey
	if len(st.WaitingSigners) > 0 {
		s, err := persistedToSigner(st.WaitingSigners[0])
		if err != nil {
			return payload.Payload{}, err
		}
		pk := s.PublicKey()
		committed = &pk
	}
	return buildNextPayload(st.Index, prevHash, committed), nil
}
