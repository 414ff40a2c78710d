package verifier_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/xyo-network/origin-chain/boundwitness"
	"github.com/xyo-network/origin-chain/heuristic"
	"github.com/xyo-network/origin-chain/packer"
	"github.com/xyo-network/origin-chain/payload"
	"github.com/xyo-network/origin-chain/verifier"
	"github.com/xyo-network/origin-chain/xyocrypto"
	"github.com/xyo-network/origin-chain/xyoerr"
	"github.com/xyo-network/origin-chain/zigzag"
)

func newPacker() *packer.Packer {
	p := packer.New()
	Expect(packer.RegisterMultiTypeArray(p)).To(Succeed())
	Expect(xyocrypto.RegisterDefaults(p)).To(Succeed())
	Expect(heuristic.RegisterDefaults(p)).To(Succeed())
	Expect(payload.RegisterDefaults(p)).To(Succeed())
	Expect(boundwitness.RegisterDefaults(p)).To(Succeed())
	Expect(zigzag.RegisterDefaults(p)).To(Succeed())
	return p
}

// completeExchange drives a full two-peer zig-zag negotiation and
// returns the resulting block, one signer per side, each contributing
// a ChainIndex-0 genesis heuristic.
func completeExchange(p *packer.Packer) (boundwitness.BoundWitness, xyocrypto.Signer, xyocrypto.Signer) {
	signerA, err := xyocrypto.NewSecp256k1Signer()
	Expect(err).NotTo(HaveOccurred())
	signerB, err := xyocrypto.NewSecp256k1Signer()
	Expect(err).NotTo(HaveOccurred())
	bw := exchangeBlock(p, signerA, payload.Payload{SignedHeuristics: []packer.TypedValue{
		heuristic.AsTyped(heuristic.MinorChainIndex, heuristic.ChainIndex(0)),
	}}, signerB)
	return bw, signerA, signerB
}

// exchangeBlock drives a full two-peer zig-zag negotiation between
// signerA (the initiator, contributing payloadA) and signerB (the
// responder, contributing a bare ChainIndex(0) payload), and returns
// the resulting block. Used to build multi-block chains where signerA
// is held fixed across blocks while its payload changes per block.
func exchangeBlock(p *packer.Packer, signerA xyocrypto.Signer, payloadA payload.Payload, signerB xyocrypto.Signer) boundwitness.BoundWitness {
	payloadB := payload.Payload{SignedHeuristics: []packer.TypedValue{
		heuristic.AsTyped(heuristic.MinorChainIndex, heuristic.ChainIndex(0)),
	}}

	initiator, err := zigzag.New(p, []xyocrypto.Signer{signerA}, payloadA)
	Expect(err).NotTo(HaveOccurred())
	responder, err := zigzag.New(p, []xyocrypto.Signer{signerB}, payloadB)
	Expect(err).NotTo(HaveOccurred())

	t1, err := initiator.IncomingData(nil, false)
	Expect(err).NotTo(HaveOccurred())
	t2, err := responder.IncomingData(t1, true)
	Expect(err).NotTo(HaveOccurred())
	t3, err := initiator.IncomingData(t2, false)
	Expect(err).NotTo(HaveOccurred())
	_, err = responder.IncomingData(t3, false)
	Expect(err).NotTo(HaveOccurred())

	bw, ok := initiator.Result()
	Expect(ok).To(BeTrue())
	return bw
}

var _ = Describe("VerifyLinkage", func() {
	var p *packer.Packer
	var bw boundwitness.BoundWitness

	BeforeEach(func() {
		p = newPacker()
		bw, _, _ = completeExchange(p)
	})

	It("accepts a genesis block with no prior hash or commitment", func() {
		report := verifier.VerifyLinkage(p, bw, 0, verifier.Expectation{Index: 0})
		Expect(report.IsValid).To(BeTrue())
	})

	It("rejects a chain_index that does not match the expected next index", func() {
		report := verifier.VerifyLinkage(p, bw, 0, verifier.Expectation{Index: 5})
		Expect(report.IsValid).To(BeFalse())
		Expect(report.FirstInvalidIndex).To(Equal(0))
		Expect(report.Kind).To(Equal(xyoerr.KindChainLinkageInvalid))
		Expect(report.Reason).To(ContainSubstring("chain_index"))
	})

	It("rejects a missing previous_hash when one is expected", func() {
		expectedHash := xyocrypto.Hash{Algorithm: xyocrypto.AlgorithmKeccak256, Bytes: make([]byte, 32)}
		report := verifier.VerifyLinkage(p, bw, 0, verifier.Expectation{Index: 0, PreviousHash: &expectedHash})
		Expect(report.IsValid).To(BeFalse())
		Expect(report.Kind).To(Equal(xyoerr.KindChainLinkageInvalid))
		Expect(report.Reason).To(ContainSubstring("previous_hash"))
	})

	It("rejects a signer that does not match the committed next_public_key", func() {
		other, err := xyocrypto.NewSecp256k1Signer()
		Expect(err).NotTo(HaveOccurred())
		expectedKey := other.PublicKey()
		report := verifier.VerifyLinkage(p, bw, 0, verifier.Expectation{Index: 0, NextPublicKey: &expectedKey})
		Expect(report.IsValid).To(BeFalse())
		Expect(report.Kind).To(Equal(xyoerr.KindChainLinkageInvalid))
		Expect(report.Reason).To(ContainSubstring("next_public_key"))
	})

	It("rejects a block whose signature has been tampered with", func() {
		tampered := bw
		tampered.Signatures = append([]xyocrypto.Signature(nil), bw.Signatures...)
		tampered.Signatures[0].Bytes = append([]byte(nil), tampered.Signatures[0].Bytes...)
		tampered.Signatures[0].Bytes[0] ^= 0xFF

		report := verifier.VerifyLinkage(p, tampered, 0, verifier.Expectation{Index: 0})
		Expect(report.IsValid).To(BeFalse())
		Expect(report.Kind).To(Equal(xyoerr.KindSignatureInvalid))
	})

	It("rejects a participant index outside the block's bounds", func() {
		report := verifier.VerifyLinkage(p, bw, len(bw.PublicKeys), verifier.Expectation{Index: 0})
		Expect(report.IsValid).To(BeFalse())
		Expect(report.Reason).To(ContainSubstring("out of range"))
	})

	It("rejects an empty signed-heuristics list as a missing chain_index", func() {
		signerA, err := xyocrypto.NewSecp256k1Signer()
		Expect(err).NotTo(HaveOccurred())
		signerB, err := xyocrypto.NewSecp256k1Signer()
		Expect(err).NotTo(HaveOccurred())
		// A signs over an empty signed-heuristics list, so the block itself
		// validates and only the chain linkage is missing.
		empty := exchangeBlock(p, signerA, payload.Payload{}, signerB)

		report := verifier.VerifyLinkage(p, empty, 0, verifier.Expectation{Index: 0})
		Expect(report.IsValid).To(BeFalse())
		Expect(report.Kind).To(Equal(xyoerr.KindChainLinkageInvalid))
		Expect(report.Reason).To(ContainSubstring("chain_index"))
	})
})

var _ = Describe("BlockHash", func() {
	It("is deterministic for identical blocks", func() {
		p := newPacker()
		bw, _, _ := completeExchange(p)

		h1, err := verifier.BlockHash(p, xyocrypto.Keccak256Provider{}, bw)
		Expect(err).NotTo(HaveOccurred())
		h2, err := verifier.BlockHash(p, xyocrypto.Keccak256Provider{}, bw)
		Expect(err).NotTo(HaveOccurred())
		Expect(h1.Equal(h2)).To(BeTrue())
	})
})

var _ = Describe("VerifyChain", func() {
	var p *packer.Packer
	var hp xyocrypto.Keccak256Provider
	var signerA xyocrypto.Signer
	var b1, b2 boundwitness.BoundWitness

	BeforeEach(func() {
		p = newPacker()
		hp = xyocrypto.Keccak256Provider{}

		var err error
		signerA, err = xyocrypto.NewSecp256k1Signer()
		Expect(err).NotTo(HaveOccurred())
		signerB1, err := xyocrypto.NewSecp256k1Signer()
		Expect(err).NotTo(HaveOccurred())
		signerB2, err := xyocrypto.NewSecp256k1Signer()
		Expect(err).NotTo(HaveOccurred())

		b1 = exchangeBlock(p, signerA, payload.Payload{SignedHeuristics: []packer.TypedValue{
			heuristic.AsTyped(heuristic.MinorChainIndex, heuristic.ChainIndex(0)),
		}}, signerB1)

		hash1, err := verifier.BlockHash(p, hp, b1)
		Expect(err).NotTo(HaveOccurred())

		b2 = exchangeBlock(p, signerA, payload.Payload{SignedHeuristics: []packer.TypedValue{
			heuristic.AsTyped(heuristic.MinorChainIndex, heuristic.ChainIndex(1)),
			heuristic.AsTyped(heuristic.MinorPreviousHash, heuristic.PreviousHash{Hash: hash1}),
		}}, signerB2)
	})

	// S3: two sequential bound witnesses on A's chain with valid
	// PreviousHash linkage; verifier accepts [B1, B2] and rejects [B2, B1].
	It("accepts a valid two-block chain in order", func() {
		report := verifier.VerifyChain(p, hp, []boundwitness.BoundWitness{b1, b2}, 0, signerA.PublicKey())
		Expect(report.IsValid).To(BeTrue())
	})

	It("rejects the same two blocks reversed", func() {
		report := verifier.VerifyChain(p, hp, []boundwitness.BoundWitness{b2, b1}, 0, signerA.PublicKey())
		Expect(report.IsValid).To(BeFalse())
		Expect(report.FirstInvalidIndex).To(Equal(0))
		Expect(report.Kind).To(Equal(xyoerr.KindChainLinkageInvalid))
	})

	// S4: B2 declares ChainIndex(2) instead of 1 -> verifier rejects at index 1.
	It("rejects a chain_index skip at the second block", func() {
		signerB3, err := xyocrypto.NewSecp256k1Signer()
		Expect(err).NotTo(HaveOccurred())
		hash1, err := verifier.BlockHash(p, hp, b1)
		Expect(err).NotTo(HaveOccurred())

		skipped := exchangeBlock(p, signerA, payload.Payload{SignedHeuristics: []packer.TypedValue{
			heuristic.AsTyped(heuristic.MinorChainIndex, heuristic.ChainIndex(2)),
			heuristic.AsTyped(heuristic.MinorPreviousHash, heuristic.PreviousHash{Hash: hash1}),
		}}, signerB3)

		report := verifier.VerifyChain(p, hp, []boundwitness.BoundWitness{b1, skipped}, 0, signerA.PublicKey())
		Expect(report.IsValid).To(BeFalse())
		Expect(report.FirstInvalidIndex).To(Equal(1))
		Expect(report.Kind).To(Equal(xyoerr.KindChainLinkageInvalid))
		Expect(report.Reason).To(ContainSubstring("chain_index"))
	})

	// S5 (chain form): B1 contains NextPublicKey(p) for A; B2 is signed
	// (at A's slot) by a different signer -> verifier rejects. If B2 is
	// signed by the signer whose public key equals p, verifier accepts.
	It("enforces a next_public_key commitment across a key rotation", func() {
		rotated, err := xyocrypto.NewSecp256k1Signer()
		Expect(err).NotTo(HaveOccurred())
		rotatedPub := rotated.PublicKey()

		signerB4, err := xyocrypto.NewSecp256k1Signer()
		Expect(err).NotTo(HaveOccurred())
		committing := exchangeBlock(p, signerA, payload.Payload{SignedHeuristics: []packer.TypedValue{
			heuristic.AsTyped(heuristic.MinorChainIndex, heuristic.ChainIndex(0)),
			heuristic.AsTyped(heuristic.MinorNextPublicKey, heuristic.NextPublicKey{PublicKey: rotatedPub}),
		}}, signerB4)
		hash1, err := verifier.BlockHash(p, hp, committing)
		Expect(err).NotTo(HaveOccurred())

		signerB5, err := xyocrypto.NewSecp256k1Signer()
		Expect(err).NotTo(HaveOccurred())
		wrongSigner, err := xyocrypto.NewSecp256k1Signer()
		Expect(err).NotTo(HaveOccurred())
		wrongNext := exchangeBlock(p, wrongSigner, payload.Payload{SignedHeuristics: []packer.TypedValue{
			heuristic.AsTyped(heuristic.MinorChainIndex, heuristic.ChainIndex(1)),
			heuristic.AsTyped(heuristic.MinorPreviousHash, heuristic.PreviousHash{Hash: hash1}),
		}}, signerB5)

		rejected := verifier.VerifyChain(p, hp, []boundwitness.BoundWitness{committing, wrongNext}, 0, signerA.PublicKey())
		Expect(rejected.IsValid).To(BeFalse())
		Expect(rejected.FirstInvalidIndex).To(Equal(1))

		signerB6, err := xyocrypto.NewSecp256k1Signer()
		Expect(err).NotTo(HaveOccurred())
		rightNext := exchangeBlock(p, rotated, payload.Payload{SignedHeuristics: []packer.TypedValue{
			heuristic.AsTyped(heuristic.MinorChainIndex, heuristic.ChainIndex(1)),
			heuristic.AsTyped(heuristic.MinorPreviousHash, heuristic.PreviousHash{Hash: hash1}),
		}}, signerB6)

		accepted := verifier.VerifyChain(p, hp, []boundwitness.BoundWitness{committing, rightNext}, 0, signerA.PublicKey())
		Expect(accepted.IsValid).To(BeTrue())
	})

	It("rejects when the expected signer's contribution is absent from the block", func() {
		stranger, err := xyocrypto.NewSecp256k1Signer()
		Expect(err).NotTo(HaveOccurred())
		report := verifier.VerifyChain(p, hp, []boundwitness.BoundWitness{b1}, 0, stranger.PublicKey())
		Expect(report.IsValid).To(BeFalse())
		Expect(report.FirstInvalidIndex).To(Equal(0))
	})
})
