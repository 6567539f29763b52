// Package similarity implements the proximity similarity metric and
// the redundancy judgement built on top of it.
package similarity

// Sim computes the proximity similarity of a against b, as a percentage in
// [0,100].
//
// For each position i in a, it finds the nearest occurrence of a[i] in b (by
// index distance) and scores it 1/(1+distance); positions of a with no match
// in b score 0. The total is the sum of per-position scores divided by
// len(a), scaled to a percentage.
//
// Sim is not symmetric: it normalizes by len(a), so Sim(a, b) and Sim(b, a)
// generally differ. An empty a or b yields 0.
func Sim(a, b []int) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	var total float64

	for i, wa := range a {
		best := -1

		for j, wb := range b {
			if wb != wa {
				continue
			}

			d := abs(i - j)
			if best == -1 || d < best {
				best = d
			}

			if best == 0 {
				break
			}
		}

		if best >= 0 {
			total += 1.0 / float64(1+best)
		}
	}

	return total / float64(len(a)) * 100
}

// SimTerminated is like [Sim] but operates on (-1)-terminated sequences,
// capped at maxLen elements (the terminator itself is excluded from both
// inputs and from the length cap).
func SimTerminated(a, b []int, maxLen int) float64 {
	return Sim(truncateAtTerminator(a, maxLen), truncateAtTerminator(b, maxLen))
}

func truncateAtTerminator(s []int, maxLen int) []int {
	n := 0

	for n < len(s) && n < maxLen && s[n] != -1 {
		n++
	}

	return s[:n]
}

func abs(x int) int {
	if x < 0 {
		return -x
	}

	return x
}

// Judgement is the result of a redundancy check against an observation set.
type Judgement struct {
	Redundant bool
	BestIndex int
	BestScore float64
}

// Judge reports whether candidate is redundant against the observations
// sequence obs (called once per stored line, in order), i.e. whether some
// observation's similarity to candidate meets or exceeds thresholdPercent.
// It short-circuits as soon as the threshold is met.
func Judge(candidate []int, numObs int, obsAt func(i int) []int, thresholdPercent float64) Judgement {
	best := Judgement{BestIndex: -1}

	for i := range numObs {
		score := Sim(candidate, obsAt(i))
		if score > best.BestScore {
			best.BestScore = score
			best.BestIndex = i
		}

		if score >= thresholdPercent {
			best.Redundant = true

			return best
		}
	}

	return best
}
