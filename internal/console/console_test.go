package console

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPrintln_Is_Safe_For_Concurrent_Callers(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	c := New(&out, &bytes.Buffer{})

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)

		go func() {
			defer wg.Done()
			c.Println("ran: echo hi")
		}()
	}
	wg.Wait()

	require.Equal(t, 50, strings.Count(out.String(), "ran: echo hi\n"))
}

func TestWarn_Flushes_On_First_Println_And_Again_On_Finish(t *testing.T) {
	t.Parallel()

	var out, errOut bytes.Buffer
	c := New(&out, &errOut)

	c.Warn("persistence: vocab file missing")
	c.Println("first output")

	require.Contains(t, errOut.String(), "vocab file missing")

	n := c.Finish()
	require.Equal(t, 1, n)
	require.Equal(t, 2, strings.Count(errOut.String(), "vocab file missing"))
}

func TestFinish_With_No_Warnings_Returns_Zero(t *testing.T) {
	t.Parallel()

	var out, errOut bytes.Buffer
	c := New(&out, &errOut)

	require.Equal(t, 0, c.Finish())
	require.Empty(t, errOut.String())
}
