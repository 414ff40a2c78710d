package zigzag

import (
	"github.com/xyo-network/origin-chain/boundwitness"
	"github.com/xyo-network/origin-chain/packer"
	"github.com/xyo-network/origin-chain/payload"
	"github.com/xyo-network/origin-chain/xyocrypto"
	"github.com/xyo-network/origin-chain/xyoerr"
)

// Phase is the assembler's position in the three-message exchange.
type Phase int

const (
	// PhaseInitial is before the first incoming_data call.
	PhaseInitial Phase = iota
	// PhaseSentOwn is the initiator, after sending transfer1, awaiting transfer2.
	PhaseSentOwn
	// PhaseSentSignatures is the responder, after sending transfer2, awaiting transfer3.
	PhaseSentSignatures
	// PhaseDone is a completed block has been assembled (at most once per instance, §4.3).
	PhaseDone
	// PhaseFailed is terminal: NegotiationAborted occurred, no further calls succeed.
	PhaseFailed
)

// Assembler drives one peer's side of the zig-zag exchange (§4.3). It
// supports exactly two participants, as the spec's Open Question on
// multi-party bound witnesses directs: the data model is general, the
// assembler is not.
type Assembler struct {
	packer *packer.Packer

	signers     []xyocrypto.Signer
	ownPublic   []xyocrypto.PublicKey
	ownPayloads []payload.Payload

	phase Phase

	allPublicKeys []xyocrypto.PublicKey
	allPayloads   []payload.Payload
	allSignatures []xyocrypto.Signature
	ownSlotStart  int

	result *boundwitness.BoundWitness
}

// New creates an Assembler for one peer, given its packer, its set of
// active signers (repo.get_signers()), and the local payload to attach
// once per signer slot.
func New(p *packer.Packer, signers []xyocrypto.Signer, localPayload payload.Payload) (*Assembler, error) {
	if len(signers) == 0 {
		return nil, xyoerr.New(xyoerr.KindNegotiationAborted, "assembler requires at least one local signer")
	}
	ownPublic := make([]xyocrypto.PublicKey, len(signers))
	ownPayloads := make([]payload.Payload, len(signers))
	for i, s := range signers {
		ownPublic[i] = s.PublicKey()
		ownPayloads[i] = localPayload
	}
	return &Assembler{
		packer:      p,
		signers:     signers,
		ownPublic:   ownPublic,
		ownPayloads: ownPayloads,
		phase:       PhaseInitial,
	}, nil
}

// Result returns the assembled block, if this instance has reached
// PhaseDone. A completed block is produced at most once per instance.
func (a *Assembler) Result() (boundwitness.BoundWitness, bool) {
	if a.result == nil {
		return boundwitness.BoundWitness{}, false
	}
	return *a.result, true
}

// IncomingData drives the state machine forward. transfer is nil only on
// the initiator's very first call. endPoint tells this peer it concludes
// the exchange on this call (true only for the responder's first call).
func (a *Assembler) IncomingData(transfer *Transfer, endPoint bool) (*Transfer, error) {
	switch a.phase {
	case PhaseInitial:
		return a.stepInitial(transfer, endPoint)
	case PhaseSentOwn:
		return a.stepInitiatorFinal(transfer)
	case PhaseSentSignatures:
		return a.stepResponderFinal(transfer)
	default:
		return nil, xyoerr.New(xyoerr.KindNegotiationAborted, "incoming_data called on a terminal assembler")
	}
}

func (a *Assembler) stepInitial(transfer *Transfer, endPoint bool) (*Transfer, error) {
	if transfer == nil {
		// Initiator's first call: no integration, just announce ourselves.
		a.allPublicKeys = append(a.allPublicKeys, a.ownPublic...)
		a.allPayloads = append(a.allPayloads, a.ownPayloads...)
		a.ownSlotStart = 0
		a.phase = PhaseSentOwn
		return &Transfer{PublicKeys: a.ownPublic, Payloads: a.ownPayloads}, nil
	}

	if !endPoint {
		a.phase = PhaseFailed
		return nil, xyoerr.New(xyoerr.KindNegotiationAborted, "responder's first call must set end_point=true")
	}
	if len(transfer.PublicKeys) != len(transfer.Payloads) {
		a.phase = PhaseFailed
		return nil, xyoerr.New(xyoerr.KindNegotiationAborted, "length disagreement between incoming public keys and payloads")
	}
	if len(transfer.Signatures) != 0 {
		a.phase = PhaseFailed
		return nil, xyoerr.New(xyoerr.KindNegotiationAborted, "unexpected signatures in first transfer")
	}

	// Responder: integrate the initiator's contribution, then append our own.
	a.allPublicKeys = append(a.allPublicKeys, transfer.PublicKeys...)
	a.allPayloads = append(a.allPayloads, transfer.Payloads...)
	a.ownSlotStart = len(transfer.PublicKeys)
	a.allPublicKeys = append(a.allPublicKeys, a.ownPublic...)
	a.allPayloads = append(a.allPayloads, a.ownPayloads...)

	signingData, err := boundwitness.SigningData(a.packer, a.allPublicKeys, a.allPayloads)
	if err != nil {
		a.phase = PhaseFailed
		return nil, err
	}

	ownSigs, err := signAll(a.signers, signingData)
	if err != nil {
		a.phase = PhaseFailed
		return nil, xyoerr.Wrap(xyoerr.KindNegotiationAborted, "local signing failed", err)
	}

	a.allSignatures = make([]xyocrypto.Signature, len(a.allPublicKeys))
	copy(a.allSignatures[a.ownSlotStart:], ownSigs)

	a.phase = PhaseSentSignatures
	return &Transfer{PublicKeys: a.ownPublic, Payloads: a.ownPayloads, Signatures: ownSigs}, nil
}

// stepInitiatorFinal is the initiator's second call: integrate the
// responder's public keys, payloads and signatures, sign, assemble.
func (a *Assembler) stepInitiatorFinal(transfer *Transfer) (*Transfer, error) {
	if transfer == nil {
		a.phase = PhaseFailed
		return nil, xyoerr.New(xyoerr.KindNegotiationAborted, "expected a transfer on the initiator's second call")
	}
	if len(transfer.PublicKeys) != len(transfer.Payloads) || len(transfer.PublicKeys) != len(transfer.Signatures) {
		a.phase = PhaseFailed
		return nil, xyoerr.New(xyoerr.KindNegotiationAborted, "length disagreement in responder's transfer")
	}

	otherSlotStart := len(a.allPublicKeys)
	a.allPublicKeys = append(a.allPublicKeys, transfer.PublicKeys...)
	a.allPayloads = append(a.allPayloads, transfer.Payloads...)

	signingData, err := boundwitness.SigningData(a.packer, a.allPublicKeys, a.allPayloads)
	if err != nil {
		a.phase = PhaseFailed
		return nil, err
	}

	if err := verifyRange(transfer.PublicKeys, transfer.Signatures, signingData); err != nil {
		a.phase = PhaseFailed
		return nil, err
	}

	ownSigs, err := signAll(a.signers, signingData)
	if err != nil {
		a.phase = PhaseFailed
		return nil, xyoerr.Wrap(xyoerr.KindNegotiationAborted, "local signing failed", err)
	}

	a.allSignatures = make([]xyocrypto.Signature, len(a.allPublicKeys))
	copy(a.allSignatures[a.ownSlotStart:otherSlotStart], ownSigs)
	copy(a.allSignatures[otherSlotStart:], transfer.Signatures)

	bw := boundwitness.BoundWitness{
		PublicKeys: a.allPublicKeys,
		Payloads:   a.allPayloads,
		Signatures: a.allSignatures,
	}
	a.result = &bw
	a.phase = PhaseDone

	return &Transfer{Signatures: ownSigs}, nil
}

// stepResponderFinal is the responder's second call: integrate the
// initiator's signatures and assemble the identical block.
func (a *Assembler) stepResponderFinal(transfer *Transfer) (*Transfer, error) {
	if transfer == nil {
		a.phase = PhaseFailed
		return nil, xyoerr.New(xyoerr.KindNegotiationAborted, "expected a transfer on the responder's second call")
	}
	if len(transfer.Signatures) != a.ownSlotStart {
		a.phase = PhaseFailed
		return nil, xyoerr.New(xyoerr.KindNegotiationAborted, "initiator signature count does not match its public key count")
	}

	signingData, err := boundwitness.SigningData(a.packer, a.allPublicKeys, a.allPayloads)
	if err != nil {
		a.phase = PhaseFailed
		return nil, err
	}
	if err := verifyRange(a.allPublicKeys[:a.ownSlotStart], transfer.Signatures, signingData); err != nil {
		a.phase = PhaseFailed
		return nil, err
	}

	copy(a.allSignatures[:a.ownSlotStart], transfer.Signatures)

	bw := boundwitness.BoundWitness{
		PublicKeys: a.allPublicKeys,
		Payloads:   a.allPayloads,
		Signatures: a.allSignatures,
	}
	a.result = &bw
	a.phase = PhaseDone

	return &Transfer{}, nil
}

func signAll(signers []xyocrypto.Signer, data []byte) ([]xyocrypto.Signature, error) {
	sigs := make([]xyocrypto.Signature, len(signers))
	for i, s := range signers {
		sig, err := s.Sign(data)
		if err != nil {
			return nil, err
		}
		sigs[i] = sig
	}
	return sigs, nil
}

func verifyRange(pubKeys []xyocrypto.PublicKey, sigs []xyocrypto.Signature, data []byte) error {
	if len(pubKeys) != len(sigs) {
		return xyoerr.New(xyoerr.KindNegotiationAborted, "length disagreement between public keys and signatures")
	}
	for i := range pubKeys {
		if !pubKeys[i].Verify(data, sigs[i]) {
			return xyoerr.New(xyoerr.KindSignatureInvalid, "signature failed to verify during integration")
		}
	}
	return nil
}
