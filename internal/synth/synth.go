// Package synth implements the command synthesizer: it samples a
// scoped random subset of the vocabulary and greedily assembles an argument
// sequence by picking, at each position, the candidate whose association
// score against the chosen prefix is highest.
package synth

import (
	"math/rand/v2"

	"github.com/coriolis-dev/shdrift/internal/assoc"
	"github.com/coriolis-dev/shdrift/internal/settings"
	"github.com/coriolis-dev/shdrift/internal/vocab"
)

// Synthesize produces a (-1)-terminated index sequence of length
// 0 <= argc <= min(snap.Length, numWords), with no duplicate indices.
//
// It holds the vocabulary's lock for its entire duration, so the vocabulary
// size observed at entry is the size used throughout synthesis, even if
// other goroutines append new words concurrently ("consistent
// snapshot").
func Synthesize(v *vocab.Vocabulary, snap settings.Snapshot, rng *rand.Rand) []int {
	v.Lock()
	defer v.Unlock()

	numWords := v.NumWordsLocked()
	if numWords == 0 {
		return []int{vocab.Terminator}
	}

	length := clamp(snap.Length, settings.CmdMin, min(settings.CmdMax, numWords))
	sampleSize := sampleSizeFor(numWords, snap.Scope)

	pool := make([]int, numWords)
	for i := range pool {
		pool[i] = i
	}

	sampleLen := partialShuffle(pool, sampleSize, rng)

	chosen := make([]int, 0, length)

	// Seed: pick one candidate uniformly from the sample.
	r := rng.IntN(sampleLen)
	chosen = append(chosen, pool[r])
	sampleLen = removeAt(pool, sampleLen, r)

	a := v.Assoc()

	for len(chosen) < length && sampleLen > 0 {
		pos := len(chosen)
		best := bestCandidate(a, pool[:sampleLen], pos, chosen, rng)
		chosen = append(chosen, pool[best])
		sampleLen = removeAt(pool, sampleLen, best)
	}

	chosen = append(chosen, vocab.Terminator)

	return chosen
}

// sampleSizeFor computes round(numWords * scope / 100), clamped to
// [1, numWords].
func sampleSizeFor(numWords, scopePercent int) int {
	raw := (numWords*scopePercent + 50) / 100 // round-half-up
	if raw < 1 {
		raw = 1
	}

	if raw > numWords {
		raw = numWords
	}

	return raw
}

// partialShuffle performs a partial Fisher-Yates shuffle, promoting n unique
// indices of pool to the front, and returns n.
func partialShuffle(pool []int, n int, rng *rand.Rand) int {
	for i := range n {
		j := i + rng.IntN(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}

	return n
}

// removeAt removes the element at index i from the live prefix pool[:n] by
// swapping it with the last live element, and returns the new length.
func removeAt(pool []int, n, i int) int {
	pool[i] = pool[n-1]

	return n - 1
}

// bestCandidate returns the index (into candidates) of the candidate that
// maximises the pair score against the chosen prefix, breaking ties
// uniformly at random.
func bestCandidate(a *assoc.Map, candidates []int, pos int, chosen []int, rng *rand.Rand) int {
	bestIdx := 0
	bestScore := pairScore(a, candidates[0], pos, chosen)
	ties := 1

	for i := 1; i < len(candidates); i++ {
		score := pairScore(a, candidates[i], pos, chosen)

		switch {
		case score > bestScore:
			bestScore = score
			bestIdx = i
			ties = 1
		case score == bestScore:
			ties++
			// Reservoir sampling over ties seen so far: replace the current
			// winner with probability 1/ties.
			if rng.IntN(ties) == 0 {
				bestIdx = i
			}
		}
	}

	return bestIdx
}

// pairScore computes score(w,p) = sum over the chosen prefix of
// A.get(w,p,c[j],j) + A.get(c[j],j,w,p), interrogating the directional
// association in both directions to account for asymmetric history.
func pairScore(a *assoc.Map, w, p int, chosen []int) int {
	total := 0

	for j, c := range chosen {
		total += a.Get(assoc.Key{WordI: w, PosI: p, WordK: c, PosK: j})
		total += a.Get(assoc.Key{WordI: c, PosI: j, WordK: w, PosK: p})
	}

	return total
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}

	if v > hi {
		return hi
	}

	return v
}
