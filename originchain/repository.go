// Package originchain implements the per-peer chain-continuity state
// machine (§4.2): the index, previous-hash, signer rotation and
// next-public-key commitment a node advances on every successful bound
// witness. The repository is the sole writer of this state; every other
// component reads snapshots (§5).
package originchain

import (
	"context"
	"sync"

	"github.com/xyo-network/origin-chain/heuristic"
	"github.com/xyo-network/origin-chain/packer"
	"github.com/xyo-network/origin-chain/payload"
	"github.com/xyo-network/origin-chain/xyocrypto"
	"github.com/xyo-network/origin-chain/xyoerr"
)

// Repository is exactly the operations §4.2 names, plus the two methods
// (CurrentSigners, NextPayload) that make it structurally satisfy
// handler.ChainSource without either package importing the other.
type Repository interface {
	GetIndex() uint64
	GetPreviousHash() (xyocrypto.Hash, bool)
	GetSigners() []xyocrypto.Signer
	GetWaitingSigners() []xyocrypto.Signer
	GetGenesisSigner() (xyocrypto.Signer, bool)
	GetNextPublicKey() (xyocrypto.PublicKey, bool)

	AddSigner(s xyocrypto.Signer) error
	RemoveOldestSigner() error
	SetCurrentSigners(signers []xyocrypto.Signer) error
	UpdateOriginChainState(hash xyocrypto.Hash) error

	// CurrentSigners and NextPayload satisfy handler.ChainSource.
	CurrentSigners(ctx context.Context) ([]xyocrypto.Signer, error)
	NextPayload(ctx context.Context) (payload.Payload, error)
}

// MemoryRepository is the in-memory Repository implementation: chain
// state lives only in process memory, guarded by a mutex so the
// single-writer invariant (§5) holds across concurrent sessions.
type MemoryRepository struct {
	mu sync.Mutex

	packer *packer.Packer

	index          uint64
	previousHash   *xyocrypto.Hash
	currentSigners []xyocrypto.Signer
	waitingSigners []xyocrypto.Signer
	nextPublicKey  *xyocrypto.PublicKey
}

// NewMemoryRepository returns an empty repository at genesis (index 0,
// no previous hash, no signers).
func NewMemoryRepository(p *packer.Packer) *MemoryRepository {
	return &MemoryRepository{packer: p}
}

// GetIndex implements Repository.
func (r *MemoryRepository) GetIndex() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.index
}

// GetPreviousHash implements Repository. It is absent only at genesis.
func (r *MemoryRepository) GetPreviousHash() (xyocrypto.Hash, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.previousHash == nil {
		return xyocrypto.Hash{}, false
	}
	return *r.previousHash, true
}

// GetSigners returns a copy of current_signers at the time of the call.
func (r *MemoryRepository) GetSigners() []xyocrypto.Signer {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]xyocrypto.Signer(nil), r.currentSigners...)
}

// GetWaitingSigners returns a copy of waiting_signers.
func (r *MemoryRepository) GetWaitingSigners() []xyocrypto.Signer {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]xyocrypto.Signer(nil), r.waitingSigners...)
}

// GetGenesisSigner returns current_signers[0], the signer fixed at
// genesis and never removed by RemoveOldestSigner.
func (r *MemoryRepository) GetGenesisSigner() (xyocrypto.Signer, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.currentSigners) == 0 {
		return nil, false
	}
	return r.currentSigners[0], true
}

// GetNextPublicKey implements Repository.
func (r *MemoryRepository) GetNextPublicKey() (xyocrypto.PublicKey, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.nextPublicKey == nil {
		return xyocrypto.PublicKey{}, false
	}
	return *r.nextPublicKey, true
}

// AddSigner appends s to waiting_signers. Use SetCurrentSigners to seed
// the genesis signer; add_signer only ever queues a rotation candidate
// (§4.2).
func (r *MemoryRepository) AddSigner(s xyocrypto.Signer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.waitingSigners = append(r.waitingSigners, s)
	return nil
}

// RemoveOldestSigner pops the non-genesis front of current_signers. The
// genesis signer (index 0) is never removed.
func (r *MemoryRepository) RemoveOldestSigner() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.currentSigners) < 2 {
		return xyoerr.New(xyoerr.KindNoRotatableSigners, "no rotatable signers beyond genesis")
	}
	r.currentSigners = append(r.currentSigners[:1], r.currentSigners[2:]...)
	return nil
}

// SetCurrentSigners replaces current_signers wholesale. Per the open
// question in spec.md §9, waiting_signers and next_public_key are left
// untouched — this diverges from the source, which has no explicit
// policy here; this repository picks the conservative reading.
func (r *MemoryRepository) SetCurrentSigners(signers []xyocrypto.Signer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.currentSigners = append([]xyocrypto.Signer(nil), signers...)
	return nil
}

// UpdateOriginChainState advances the chain atomically: sets
// previous_hash, increments index, drains one waiting signer into
// current_signers if any are queued, and clears next_public_key.
func (r *MemoryRepository) UpdateOriginChainState(hash xyocrypto.Hash) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	h := hash
	r.previousHash = &h
	r.index++
	if len(r.waitingSigners) > 0 {
		next := r.waitingSigners[0]
		r.waitingSigners = r.waitingSigners[1:]
		r.currentSigners = append(r.currentSigners, next)
	}
	r.nextPublicKey = nil
	return nil
}

// CurrentSigners implements handler.ChainSource.
func (r *MemoryRepository) CurrentSigners(_ context.Context) ([]xyocrypto.Signer, error) {
	return r.GetSigners(), nil
}

// NextPayload implements handler.ChainSource: it builds the signed
// heuristics a new block must carry for this peer's chain-linkage slot
// (§3 "Block <-> chain linkage") — ChainIndex always, PreviousHash past
// genesis, and a NextPublicKey commitment when a signer rotation is
// queued, so the following block is required to use it.
func (r *MemoryRepository) NextPayload(_ context.Context) (payload.Payload, error) {
	r.mu.Lock()
	idx := r.index
	var prevHash *xyocrypto.Hash
	if r.previousHash != nil {
		h := *r.previousHash
		prevHash = &h
	}
	var committed *xyocrypto.PublicKey
	if len(r.waitingSigners) > 0 {
		pk := r.waitingSigners[0].PublicKey()
		committed = &pk
	}
	r.mu.Unlock()

	return buildNextPayload(idx, prevHash, committed), nil
}

// buildNextPayload assembles the signed heuristics a new block must
// carry for one peer's chain-linkage slot (§3), shared by
// MemoryRepository and PebbleRepository so both backends announce
// identical heuristics for identical state.
func buildNextPayload(idx uint64, prevHash *xyocrypto.Hash, committedNextKey *xyocrypto.PublicKey) payload.Payload {
	signed := []packer.TypedValue{heuristic.AsTyped(heuristic.MinorChainIndex, heuristic.ChainIndex(idx))}
	if prevHash != nil {
		signed = append(signed, heuristic.AsTyped(heuristic.MinorPreviousHash, heuristic.PreviousHash{Hash: *prevHash}))
	}
	if committedNextKey != nil {
		signed = append(signed, heuristic.AsTyped(heuristic.MinorNextPublicKey, heuristic.NextPublicKey{PublicKey: *committedNextKey}))
	}
	return payload.Payload{SignedHeuristics: signed}
}
