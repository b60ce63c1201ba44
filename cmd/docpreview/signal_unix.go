//go:build !windows

package main

import (
	"os"
	"syscall"
)

// exportSignals stop a running batch. SIGHUP covers a closed terminal.
var exportSignals = []os.Signal{os.Interrupt, syscall.SIGTERM, syscall.SIGHUP}
