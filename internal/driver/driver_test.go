package driver

import (
	"bytes"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRun_Help_Flag_Exits_Zero_Without_Starting_The_Loop(t *testing.T) {
	t.Parallel()

	var out, errOut bytes.Buffer
	dir := t.TempDir()

	exitCode := Run(&out, &errOut, []string{"--help"}, dir, nil)

	require.Equal(t, 0, exitCode)
	require.Contains(t, out.String(), "shdrift")
}

func TestRun_Unknown_Flag_Exits_Nonzero(t *testing.T) {
	t.Parallel()

	var out, errOut bytes.Buffer
	dir := t.TempDir()

	exitCode := Run(&out, &errOut, []string{"--not-a-real-flag"}, dir, nil)

	require.Equal(t, 1, exitCode)
}

func TestRun_Shuts_Down_Cleanly_On_Signal(t *testing.T) {
	var out, errOut bytes.Buffer
	dir := t.TempDir()

	// Sandbox the PATH scan to a directory with one harmless executable, so
	// this test never shells out to whatever happens to be installed on the
	// machine running it.
	binDir := t.TempDir()
	require.NoError(t, os.WriteFile(binDir+"/true", []byte("#!/bin/sh\nexit 0\n"), 0o755))
	t.Setenv("PATH", binDir)

	sigCh := make(chan os.Signal, 1)

	done := make(chan int, 1)

	go func() {
		done <- Run(&out, &errOut, []string{"-w", "1", "--runtime", "1"}, dir, sigCh)
	}()

	time.Sleep(150 * time.Millisecond)
	sigCh <- os.Interrupt

	select {
	case exitCode := <-done:
		require.Equal(t, 0, exitCode)
	case <-time.After(10 * time.Second):
		t.Fatal("Run did not shut down after signal")
	}

	require.FileExists(t, dir+"/.shdrift/vocab.txt")
}
