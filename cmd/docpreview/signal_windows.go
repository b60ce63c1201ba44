//go:build windows

package main

import "os"

// Only os.Interrupt is delivered on Windows.
var exportSignals = []os.Signal{os.Interrupt}
