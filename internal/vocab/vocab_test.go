package vocab

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/coriolis-dev/shdrift/internal/assoc"
)

func makeKey(wordI, posI, wordK, posK int) assoc.Key {
	return assoc.Key{WordI: wordI, PosI: posI, WordK: wordK, PosK: posK}
}

func TestVocabulary_Append_Is_Idempotent_For_Duplicate_Tokens(t *testing.T) {
	t.Parallel()

	v := New()

	idx1 := v.Append("echo")
	idx2 := v.Append("echo")

	require.Equal(t, idx1, idx2)
	require.Equal(t, 1, v.NumWords())
}

func TestVocabulary_Append_Rejects_Empty_Token(t *testing.T) {
	t.Parallel()

	v := New()

	idx := v.Append("")

	require.Equal(t, -1, idx)
	require.Equal(t, 0, v.NumWords())
}

func TestVocabulary_Append_Preserves_Insertion_Order(t *testing.T) {
	t.Parallel()

	v := New()

	v.Append("echo")
	v.Append("hi")
	v.Append("true")

	require.Equal(t, "echo", v.Word(0))
	require.Equal(t, "hi", v.Word(1))
	require.Equal(t, "true", v.Word(2))
}

func TestVocabulary_Find_Reports_Presence(t *testing.T) {
	t.Parallel()

	v := New()
	v.Append("echo")

	idx, ok := v.Find("echo")
	require.True(t, ok)
	require.Equal(t, 0, idx)

	_, ok = v.Find("missing")
	require.False(t, ok)
}

func TestVocabulary_Assoc_Is_Shared_And_Survives_Appends(t *testing.T) {
	t.Parallel()

	v := New()
	a := v.Append("echo")
	b := v.Append("hi")

	v.Lock()
	v.Assoc().Add(makeKey(a, 0, b, 1), 3)
	v.Unlock()

	v.Append("true") // must not disturb existing association entries

	v.Lock()
	got := v.Assoc().Get(makeKey(a, 0, b, 1))
	v.Unlock()

	require.Equal(t, 3, got)
}
