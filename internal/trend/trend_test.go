package trend

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTracker_New_Is_Empty(t *testing.T) {
	t.Parallel()

	tr := New(5)
	require.Equal(t, 0.0, tr.Mean())
	require.Equal(t, 0, tr.Verdict())
}

func TestTracker_Mean_Of_Pushed_Values(t *testing.T) {
	t.Parallel()

	tr := New(5)
	tr.Push(1)
	tr.Push(2)
	tr.Push(3)

	require.InDelta(t, 2.0, tr.Mean(), 1e-9)
}

func TestTracker_Wraps_Around_Window(t *testing.T) {
	t.Parallel()

	tr := New(3)
	tr.Push(1)
	tr.Push(2)
	tr.Push(3)
	tr.Push(100) // evicts the 1

	require.InDelta(t, (2.0+3.0+100.0)/3, tr.Mean(), 1e-9)
}

func TestTracker_Verdict_Positive_When_Recent_Higher(t *testing.T) {
	t.Parallel()

	tr := New(10)
	for _, v := range []float64{0, 0, 5, 5} {
		tr.Push(v)
	}

	require.Equal(t, 1, tr.Verdict())
}

func TestTracker_Verdict_Negative_When_Recent_Lower(t *testing.T) {
	t.Parallel()

	tr := New(10)
	for _, v := range []float64{5, 5, 0, 0} {
		tr.Push(v)
	}

	require.Equal(t, -1, tr.Verdict())
}

func TestTracker_Verdict_Zero_When_Within_Epsilon(t *testing.T) {
	t.Parallel()

	tr := New(10)
	for _, v := range []float64{1, 1, 1.2, 1.2} {
		tr.Push(v)
	}

	require.Equal(t, 0, tr.Verdict())
}

func TestTracker_Verdict_Zero_With_Fewer_Than_Two_Samples(t *testing.T) {
	t.Parallel()

	tr := New(10)
	tr.Push(42)

	require.Equal(t, 0, tr.Verdict())
}
