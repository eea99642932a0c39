package session

import "math"

// weightedIndex picks an index into cands with probability proportional to
// each candidate's probability, using inverse transform sampling over the
// cumulative weights. Zero, negative and non-finite weights never win. ok is
// false when no candidate carries positive weight.
func weightedIndex(cands []Candidate, rng Rand) (idx int, ok bool) {
	total := 0.0
	for _, c := range cands {
		total += weight(c.Probability)
	}
	if total <= 0 {
		return 0, false
	}
	u := rng.Float64() * total
	cumulative := 0.0
	last := -1
	for i, c := range cands {
		w := weight(c.Probability)
		if w == 0 {
			continue
		}
		cumulative += w
		last = i
		if u < cumulative {
			return i, true
		}
	}
	// rounding can leave u just past the final boundary
	return last, true
}

func weight(p float64) float64 {
	if p > 0 && !math.IsInf(p, 1) {
		return p
	}
	return 0
}
