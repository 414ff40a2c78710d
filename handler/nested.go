package handler

import (
	"github.com/xyo-network/origin-chain/boundwitness"
	"github.com/xyo-network/origin-chain/packer"
)

// ExtractNested walks every participant's signed and unsigned heuristics
// looking for embedded BoundWitness items — a peer witnessing another
// bound witness rather than a plain heuristic datum — and returns the
// full set found, including witnesses nested inside those witnesses.
func ExtractNested(bw boundwitness.BoundWitness) []boundwitness.BoundWitness {
	var found []boundwitness.BoundWitness
	queue := []boundwitness.BoundWitness{bw}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, pl := range current.Payloads {
			found = appendNestedFrom(found, &queue, pl.SignedHeuristics)
			found = appendNestedFrom(found, &queue, pl.UnsignedHeuristics)
		}
	}

	return found
}

func appendNestedFrom(found []boundwitness.BoundWitness, queue *[]boundwitness.BoundWitness, items []packer.TypedValue) []boundwitness.BoundWitness {
	for _, item := range items {
		if item.Major != boundwitness.Major || item.Minor != boundwitness.Minor {
			continue
		}
		nested, ok := item.Value.(boundwitness.BoundWitness)
		if !ok {
			continue
		}
		found = append(found, nested)
		*queue = append(*queue, nested)
	}
	return found
}
