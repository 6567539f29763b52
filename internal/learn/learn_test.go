package learn

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/coriolis-dev/shdrift/internal/assoc"
	"github.com/coriolis-dev/shdrift/internal/obslog"
	"github.com/coriolis-dev/shdrift/internal/vocab"
)

func seededVocab(words ...string) *vocab.Vocabulary {
	v := vocab.New()
	for _, w := range words {
		v.Append(w)
	}

	return v
}

func TestUpdate_Novel_Output_Rewards_Positively(t *testing.T) {
	t.Parallel()

	v := seededVocab("ls", "-la", "foo")
	obs := obslog.New()
	cmd := []int{0, 1, vocab.Terminator}

	reward := Update(v, obs, cmd, "foo bar baz", DefaultParams())

	require.Equal(t, DefaultReward, reward)
	require.Equal(t, 1, obs.Len())
}

func TestUpdate_Redundant_Output_Penalizes(t *testing.T) {
	t.Parallel()

	v := seededVocab("a", "b")
	obs := obslog.New()
	obs.Append([]int{0, 1})

	cmd := []int{0, 1, vocab.Terminator}

	reward := Update(v, obs, cmd, "a b", DefaultParams())

	require.Equal(t, -DefaultPenalty, reward)
}

func TestUpdate_Empty_Tokenization_Yields_No_Reward_And_No_Mutation(t *testing.T) {
	t.Parallel()

	v := seededVocab("a", "b")
	obs := obslog.New()
	cmd := []int{0, 1, vocab.Terminator}

	reward := Update(v, obs, cmd, "unknownword anotherunknown", DefaultParams())

	require.Equal(t, 0, reward)
	require.Equal(t, 0, obs.Len())
}

func TestUpdate_Applies_Reward_To_All_Ordered_Position_Pairs(t *testing.T) {
	t.Parallel()

	v := seededVocab("a", "b", "c")
	obs := obslog.New()
	cmd := []int{0, 1, 2, vocab.Terminator}

	reward := Update(v, obs, cmd, "a b c", DefaultParams())
	require.Equal(t, DefaultReward, reward)

	a := v.Assoc()
	require.Equal(t, reward, a.Get(assoc.Key{WordI: 0, PosI: 0, WordK: 1, PosK: 1}))
	require.Equal(t, reward, a.Get(assoc.Key{WordI: 1, PosI: 1, WordK: 0, PosK: 0}))
	require.Equal(t, reward, a.Get(assoc.Key{WordI: 0, PosI: 0, WordK: 2, PosK: 2}))
	require.Equal(t, 0, a.Get(assoc.Key{WordI: 0, PosI: 0, WordK: 0, PosK: 0}))
}

func TestUpdate_Store_Redundant_Flag_Still_Appends(t *testing.T) {
	t.Parallel()

	v := seededVocab("a", "b")
	obs := obslog.New()
	obs.Append([]int{0, 1})

	cmd := []int{0, 1, vocab.Terminator}
	p := DefaultParams()
	p.StoreRedundant = true

	reward := Update(v, obs, cmd, "a b", p)

	require.Equal(t, -DefaultPenalty, reward)
	require.Equal(t, 2, obs.Len())
}
