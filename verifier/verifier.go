// Package verifier checks the chain-linkage invariants a new block must
// satisfy against one participant's prior chain state (§4.5): internal
// bound-witness validity, chain-index continuity, previous-hash
// continuity, and next-public-key commitment continuity.
package verifier

import (
	"errors"

	"github.com/xyo-network/origin-chain/boundwitness"
	"github.com/xyo-network/origin-chain/packer"
	"github.com/xyo-network/origin-chain/xyocrypto"
	"github.com/xyo-network/origin-chain/xyoerr"
)

// Expectation captures what a participant's prior chain state requires
// of its next block. PreviousHash and NextPublicKey are nil at genesis,
// where no prior block exists to reference.
type Expectation struct {
	Index         uint64
	PreviousHash  *xyocrypto.Hash
	NextPublicKey *xyocrypto.PublicKey
}

// BlockHash computes the block-identity hash: the hash provider applied
// to the block's Typed-framed encoding, used both to produce a
// PreviousHash reference and to check one (§3 "Block hashing").
func BlockHash(p *packer.Packer, hp xyocrypto.HashProvider, bw boundwitness.BoundWitness) (xyocrypto.Hash, error) {
	encoded, err := boundwitness.Encode(p, bw)
	if err != nil {
		return xyocrypto.Hash{}, err
	}
	return hp.Hash(encoded), nil
}

// VerifyLinkage checks every §4.5 invariant for participant i's slot in
// bw against exp, in the order the spec defines them so the report's
// FirstInvalidIndex/Kind/Reason name the earliest failure.
func VerifyLinkage(p *packer.Packer, bw boundwitness.BoundWitness, participantIndex int, exp Expectation) Report {
	if participantIndex < 0 || participantIndex >= len(bw.PublicKeys) {
		return failAt(participantIndex, xyoerr.KindChainLinkageInvalid, "participant index out of range")
	}

	if err := bw.Validate(p); err != nil {
		kind := xyoerr.KindChainLinkageInvalid
		var xerr *xyoerr.Error
		if errors.As(err, &xerr) {
			kind = xerr.Kind
		}
		return failAt(participantIndex, kind, err.Error())
	}

	idx, present := bw.ChainIndexFor(participantIndex)
	if !present {
		return failAt(participantIndex, xyoerr.KindChainLinkageInvalid, "missing chain_index heuristic")
	}
	if uint64(idx) != exp.Index {
		return failAt(participantIndex, xyoerr.KindChainLinkageInvalid, "chain_index does not match expected next index")
	}

	ph, hasPrevHash := bw.PreviousHashFor(participantIndex)
	if exp.PreviousHash == nil {
		if hasPrevHash {
			return failAt(participantIndex, xyoerr.KindChainLinkageInvalid, "genesis block must not carry a previous_hash heuristic")
		}
	} else {
		if !hasPrevHash {
			return failAt(participantIndex, xyoerr.KindChainLinkageInvalid, "missing previous_hash heuristic")
		}
		if !ph.Hash.Equal(*exp.PreviousHash) {
			return failAt(participantIndex, xyoerr.KindChainLinkageInvalid, "previous_hash does not match the prior block's hash")
		}
	}

	if exp.NextPublicKey != nil {
		if !bw.PublicKeys[participantIndex].Equal(*exp.NextPublicKey) {
			return failAt(participantIndex, xyoerr.KindChainLinkageInvalid, "signer does not match the prior block's committed next_public_key")
		}
	}

	return ok()
}

// VerifyChain implements §4.5's actual operation: given an ordered tail
// of one peer P's origin chain — P identified by the public key it
// signed the earliest supplied block with — and the index that earliest
// block is expected to carry, walk the sequence checking every linkage
// invariant between consecutive blocks (index continuity, previous-hash
// continuity, next-public-key commitment continuity, internal block
// validity) and return the first failure, or is_valid=true if the whole
// tail checks out.
func VerifyChain(p *packer.Packer, hp xyocrypto.HashProvider, blocks []boundwitness.BoundWitness, startIndex uint64, genesisSigner xyocrypto.PublicKey) Report {
	exp := Expectation{Index: startIndex}
	expectedSigner := genesisSigner

	for k, bw := range blocks {
		participantIndex := indexOfSigner(bw, expectedSigner)
		if participantIndex < 0 {
			return failAt(k, xyoerr.KindChainLinkageInvalid, "block does not carry a contribution from the expected signer")
		}

		report := VerifyLinkage(p, bw, participantIndex, exp)
		if !report.IsValid {
			report.FirstInvalidIndex = k
			return report
		}

		hash, err := BlockHash(p, hp, bw)
		if err != nil {
			return failAt(k, xyoerr.KindMalformed, "could not hash block")
		}

		exp.Index++
		exp.PreviousHash = &hash
		exp.NextPublicKey = nil
		if nextKey, ok := bw.NextPublicKeyFor(participantIndex); ok {
			pk := nextKey.PublicKey
			exp.NextPublicKey = &pk
			expectedSigner = pk
		}
	}

	return ok()
}

func indexOfSigner(bw boundwitness.BoundWitness, signer xyocrypto.PublicKey) int {
	for i, pk := range bw.PublicKeys {
		if pk.Equal(signer) {
			return i
		}
	}
	return -1
}
