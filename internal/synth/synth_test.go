package synth

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/coriolis-dev/shdrift/internal/settings"
	"github.com/coriolis-dev/shdrift/internal/vocab"
)

func newRNG() *rand.Rand {
	return rand.New(rand.NewPCG(1, 2))
}

func TestSynthesize_Empty_Vocabulary_Returns_Bare_Terminator(t *testing.T) {
	t.Parallel()

	v := vocab.New()
	got := Synthesize(v, settings.Snapshot{Length: 3, Scope: 100}, newRNG())

	require.Equal(t, []int{vocab.Terminator}, got)
}

func seedVocab(words ...string) *vocab.Vocabulary {
	v := vocab.New()
	for _, w := range words {
		v.Append(w)
	}

	return v
}

func TestSynthesize_Respects_Length_Termination_And_Bounds(t *testing.T) {
	t.Parallel()

	v := seedVocab("a", "b", "c", "d", "e")
	rng := newRNG()

	for range 200 {
		got := Synthesize(v, settings.Snapshot{Length: 3, Scope: 60}, rng)

		require.Equal(t, vocab.Terminator, got[len(got)-1], "must be terminated")

		argc := len(got) - 1
		require.GreaterOrEqual(t, argc, 0)
		require.LessOrEqual(t, argc, 3)

		seen := map[int]bool{}
		for _, idx := range got[:argc] {
			require.False(t, seen[idx], "duplicate index %d in %v", idx, got)
			seen[idx] = true
			require.GreaterOrEqual(t, idx, 0)
			require.Less(t, idx, v.NumWords())
		}
	}
}

func TestSynthesize_Scope_Zero_Yields_Sample_Size_One(t *testing.T) {
	t.Parallel()

	v := seedVocab("a", "b", "c", "d")
	rng := newRNG()

	// scope=0 means sample_size clamps to 1: the synthesized command can
	// have at most 1 argument even when length allows more, since only one
	// candidate is ever eligible and the seed pick exhausts it.
	got := Synthesize(v, settings.Snapshot{Length: 3, Scope: 0}, rng)

	argc := len(got) - 1
	require.LessOrEqual(t, argc, 1)
}

func TestSynthesize_Length_Clamped_To_NumWords(t *testing.T) {
	t.Parallel()

	v := seedVocab("a", "b")
	rng := newRNG()

	got := Synthesize(v, settings.Snapshot{Length: settings.CmdMax, Scope: 100}, rng)

	argc := len(got) - 1
	require.LessOrEqual(t, argc, 2)
}

func TestSampleSizeFor_Clamps(t *testing.T) {
	t.Parallel()

	require.Equal(t, 1, sampleSizeFor(10, 0))
	require.Equal(t, 10, sampleSizeFor(10, 100))
	require.Equal(t, 5, sampleSizeFor(10, 50))
}
