package services

import (
	"sort"

	"github.com/ochairo/golicense/internal/domain/entities"
)

// Candidate is a template that survived the pre-screen
type Candidate struct {
	Template   *entities.IndexedTemplate
	UpperBound float64 // no alignment of this template can score higher
}

// FilterCandidates narrows the corpus to templates that could reach threshold.
//
// For a template of m tokens, let overlap be the size of the multiset
// intersection of the document and template token bags. Every alignment
// leaves at least m-overlap template tokens unmatched, each costing one edit,
// so the matcher score 1-cost/m never exceeds overlap/m. Dropping templates
// whose bound is below threshold therefore never drops a template the matcher
// would accept. Lower thresholds keep more candidates and cost more time.
func FilterCandidates(docBag map[uint64]int, corpus *entities.CorpusSnapshot, threshold entities.Threshold) []Candidate {
	if corpus == nil || len(docBag) == 0 {
		return nil
	}

	candidates := make([]Candidate, 0)
	for _, t := range corpus.Templates() {
		bound := UpperBound(docBag, t)
		if !threshold.Admits(bound) {
			continue
		}
		candidates = append(candidates, Candidate{Template: t, UpperBound: bound})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].UpperBound != candidates[j].UpperBound {
			return candidates[i].UpperBound > candidates[j].UpperBound
		}
		return candidates[i].Template.Key() < candidates[j].Template.Key()
	})

	return candidates
}

// UpperBound returns overlap/m for template t against a document bag
func UpperBound(docBag map[uint64]int, t *entities.IndexedTemplate) float64 {
	m := len(t.TokenIDs)
	if m == 0 {
		return 0
	}

	overlap := 0
	for id, n := range t.Bag {
		if d := docBag[id]; d < n {
			overlap += d
		} else {
			overlap += n
		}
	}
	return float64(overlap) / float64(m)
}
