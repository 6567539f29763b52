// Package main provides shdrift, an exploratory agent that learns to drive
// a shell by synthesizing candidate commands, executing them under a
// bounded runtime budget, and rewarding or penalizing its internal
// association model based on whether the output is novel or redundant.
package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/coriolis-dev/shdrift/internal/driver"
)

func main() {
	workDir, err := os.Getwd()
	if err != nil {
		os.Exit(1)
	}

	signal.Ignore(syscall.SIGPIPE)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	exitCode := driver.Run(os.Stdout, os.Stderr, os.Args[1:], workDir, sigCh)

	os.Exit(exitCode)
}
