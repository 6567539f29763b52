package settings

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNew_Clamps_Out_Of_Range_Inputs(t *testing.T) {
	t.Parallel()

	s := New(-5, 500)
	snap := s.Snapshot()

	require.Equal(t, CmdMin, snap.Length)
	require.Equal(t, SearchScopeMax, snap.Scope)
}

func TestAdjustLength_Saturates_At_Bounds(t *testing.T) {
	t.Parallel()

	s := New(CmdMax, 50)
	for range 5 {
		s.AdjustLength(+1)
	}

	require.Equal(t, CmdMax, s.Snapshot().Length)

	s2 := New(CmdMin, 50)
	for range 5 {
		s2.AdjustLength(-1)
	}

	require.Equal(t, CmdMin, s2.Snapshot().Length)
}

func TestAdjustLength_Moves_By_Delta(t *testing.T) {
	t.Parallel()

	s := New(3, 50)
	s.AdjustLength(+1)

	require.Equal(t, 4, s.Snapshot().Length)

	s.AdjustLength(-2)
	require.Equal(t, 2, s.Snapshot().Length)
}
