package tuner

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/coriolis-dev/shdrift/internal/settings"
	"github.com/coriolis-dev/shdrift/internal/trend"
)

func TestRun_Increments_Length_On_Positive_Verdict(t *testing.T) {
	t.Parallel()

	s := settings.New(3, 50)
	tr := trend.New(10)
	for _, v := range []float64{0, 0, 5, 5} {
		tr.Push(v)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		Run(ctx, s, tr, 10*time.Millisecond)
		close(done)
	}()

	time.Sleep(35 * time.Millisecond)
	cancel()
	<-done

	require.Greater(t, s.Snapshot().Length, 3)
}

func TestRun_Stops_On_Context_Cancel(t *testing.T) {
	t.Parallel()

	s := settings.New(3, 50)
	tr := trend.New(10)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		Run(ctx, s, tr, 5*time.Millisecond)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after context cancel")
	}
}
