package verifier

import "github.com/xyo-network/origin-chain/xyoerr"

// Report is the structured result of checking chain linkage for one
// block (or the tail of a chain) per §4.5. A report with IsValid false
// always carries the Kind of the failure and a FirstInvalidIndex:
// VerifyChain sets it to the position of the first failing block in the
// tail, VerifyLinkage to the participant index it was asked to check.
// Reason adds a human-readable detail.
type Report struct {
	IsValid           bool
	FirstInvalidIndex int
	Kind              xyoerr.Kind
	Reason            string
}

func ok() Report {
	return Report{IsValid: true, FirstInvalidIndex: -1}
}

func failAt(index int, kind xyoerr.Kind, reason string) Report {
	return Report{IsValid: false, FirstInvalidIndex: index, Kind: kind, Reason: reason}
}
