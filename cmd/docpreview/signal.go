package main

import (
	"context"
	"os/signal"
)

// notifyContext cancels a batch on the first exportSignals signal. In-flight
// exports see the canceled context, close their previews and report
// context.Canceled; documents not yet started are skipped.
func notifyContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, exportSignals...)
}
