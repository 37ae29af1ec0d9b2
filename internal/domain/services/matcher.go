package services

import (
	"context"
	"math"
	"sort"

	"github.com/ochairo/golicense/internal/domain/entities"
)

// occurrence is an approximate occurrence of a template in the document
type occurrence struct {
	cost  int // token edit distance between template and window
	start int // window token range [start, end)
	end   int
}

// scoredMatch keeps the token range next to the reported match for ownership checks
type scoredMatch struct {
	match entities.Match
	start int
	end   int
}

// MatchCandidates scores every candidate against the document and returns the
// matches that clear threshold, after ownership resolution, ordered by
// position in the document.
func MatchCandidates(ctx context.Context, doc *NormalizedDocument, candidates []Candidate, threshold entities.Threshold) ([]entities.Match, error) {
	if doc.Len() == 0 || len(candidates) == 0 {
		return []entities.Match{}, nil
	}

	ids := doc.IDs()
	found := make([]scoredMatch, 0, len(candidates))
	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		occ, ok := BestOccurrence(ids, c.Template.TokenIDs, maxCost(len(c.Template.TokenIDs), threshold))
		if !ok {
			continue
		}

		score := occurrenceScore(occ.cost, len(c.Template.TokenIDs))
		if !threshold.Admits(score) {
			continue
		}

		startLine, endLine, startIndex, endIndex := doc.Span(occ.start, occ.end)
		found = append(found, scoredMatch{
			match: entities.Match{
				Key:        c.Template.Key(),
				Score:      score,
				StartLine:  startLine,
				EndLine:    endLine,
				StartIndex: startIndex,
				EndIndex:   endIndex,
				Category:   c.Template.Template.Category,
			},
			start: occ.start,
			end:   occ.end,
		})
	}

	owned := resolveOwnership(found)
	matches := make([]entities.Match, len(owned))
	for i, sm := range owned {
		matches[i] = sm.match
	}
	return matches, nil
}

// maxCost is the largest edit distance that still scores >= threshold
// for a template of m tokens; it is always below m
func maxCost(m int, threshold entities.Threshold) int {
	k := int(math.Floor((1-float64(threshold))*float64(m) + 1e-9))
	if k > m-1 {
		k = m - 1
	}
	if k < 0 {
		k = 0
	}
	return k
}

func occurrenceScore(cost, m int) float64 {
	score := 1 - float64(cost)/float64(m)
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// BestOccurrence finds the window of text with the smallest token edit
// distance to pattern, considering only distances <= k.
//
// This is Sellers' approximate matching (pattern fully consumed, free start
// and end in text) with Ukkonen's cutoff: only rows that can still stay
// within k are evaluated. Each cell also carries the text index where its
// alignment started, so the winning window is recovered without a traceback.
// Ties on cost keep the earliest window end.
func BestOccurrence(text, pattern []uint64, k int) (occurrence, bool) {
	m := len(pattern)
	if m == 0 || k < 0 || len(text) == 0 {
		return occurrence{}, false
	}
	if k > m-1 {
		k = m - 1
	}

	prev := make([]int, m+1)
	cur := make([]int, m+1)
	prevStart := make([]int, m+1)
	curStart := make([]int, m+1)
	for i := range prev {
		prev[i] = i
	}
	lastPrev := k // rows 0..k of column 0 are within k

	best := occurrence{cost: math.MaxInt}
	found := false

	for j := 1; j <= len(text); j++ {
		tok := text[j-1]
		cur[0] = 0
		curStart[0] = j
		lastCur := 0

		for i := 1; i <= m; i++ {
			// deletion of a pattern token is always available
			v, s := cur[i-1]+1, curStart[i-1]

			if i-1 <= lastPrev {
				c := prev[i-1]
				if pattern[i-1] != tok {
					c++
				}
				if c <= v {
					v, s = c, prevStart[i-1]
				}
			}
			if i <= lastPrev {
				if c := prev[i] + 1; c < v {
					v, s = c, prevStart[i]
				}
			}

			cur[i] = v
			curStart[i] = s
			if v <= k {
				lastCur = i
			} else if i > lastPrev {
				// only deletions remain above this row and they only grow
				break
			}
		}

		if lastCur == m && cur[m] < best.cost {
			best = occurrence{cost: cur[m], start: curStart[m], end: j}
			found = true
		}

		prev, cur = cur, prev
		prevStart, curStart = curStart, prevStart
		lastPrev = lastCur
	}

	return best, found
}

// resolveOwnership drops matches whose token range overlaps a better match.
// Higher score owns the span; equal scores fall back to ascending key.
func resolveOwnership(found []scoredMatch) []scoredMatch {
	ranked := make([]scoredMatch, len(found))
	copy(ranked, found)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].match.Score != ranked[j].match.Score {
			return ranked[i].match.Score > ranked[j].match.Score
		}
		return ranked[i].match.Key < ranked[j].match.Key
	})

	owned := make([]scoredMatch, 0, len(ranked))
	for _, candidate := range ranked {
		overlaps := false
		for _, o := range owned {
			if candidate.start < o.end && o.start < candidate.end {
				overlaps = true
				break
			}
		}
		if !overlaps {
			owned = append(owned, candidate)
		}
	}

	sort.SliceStable(owned, func(i, j int) bool {
		if owned[i].match.StartIndex != owned[j].match.StartIndex {
			return owned[i].match.StartIndex < owned[j].match.StartIndex
		}
		return owned[i].match.Key < owned[j].match.Key
	})
	return owned
}
