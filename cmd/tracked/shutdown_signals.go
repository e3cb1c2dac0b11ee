package main

import (
	"context"
	"os"
	"sync/atomic"

	"tracked/internal/logging"
)

// watchShutdownSignals cancels the run on the first signal and logs once if
// more arrive while shutting down. The returned func stops watching.
func watchShutdownSignals(logger *logging.Logger, cancel context.CancelFunc, signalCh <-chan os.Signal) func() {
	if signalCh == nil {
		return func() {}
	}

	done := make(chan struct{})
	var shutdownStarted atomic.Bool
	var loggedRepeat atomic.Bool

	go func() {
		for {
			select {
			case <-done:
				return
			case sig, ok := <-signalCh:
				if !ok {
					return
				}
				fields := map[string]string{}
				if sig != nil {
					fields["signal"] = sig.String()
				}
				if shutdownStarted.CompareAndSwap(false, true) {
					logger.Info("shutdown signal received", fields)
					if cancel != nil {
						cancel()
					}
					continue
				}
				if loggedRepeat.CompareAndSwap(false, true) {
					logger.Info("shutdown already in progress; ignoring signal", fields)
				}
			}
		}
	}()

	return func() {
		close(done)
	}
}
