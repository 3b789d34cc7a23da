// Package signal turns SIGINT and SIGTERM into cancellation of the CLI's
// root context.
//
// Cancelling the root context stops whatever demo is running: a retry wait
// returns context.Canceled, HTTP requests abort and batch chunks stop
// early. main then asks the returned Interrupt whether a signal caused the
// stop and exits with exitcode.Interrupted (130) instead of mapping the
// command's error.
package signal

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// Interrupt records the signal, if any, that cancelled the root context.
type Interrupt struct {
	mu  sync.Mutex
	sig os.Signal
}

// Interrupted reports whether a signal has arrived.
func (i *Interrupt) Interrupted() bool {
	return i.Signal() != nil
}

// Signal returns the signal that arrived, or nil.
func (i *Interrupt) Signal() os.Signal {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.sig
}

// SetupSignalHandler listens for SIGINT and SIGTERM until ctx is done. The
// first signal is recorded, passed to onInterrupt (if non-nil) so main can
// warn on stderr, and then cancel is called. Listening stops after the first
// signal, so a second Ctrl-C gets the default behavior and kills the process.
func SetupSignalHandler(ctx context.Context, cancel context.CancelFunc, onInterrupt func(os.Signal)) *Interrupt {
	in := &Interrupt{}
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigCh)
		select {
		case sig := <-sigCh:
			in.mu.Lock()
			in.sig = sig
			in.mu.Unlock()
			if onInterrupt != nil {
				onInterrupt(sig)
			}
			cancel()
		case <-ctx.Done():
		}
	}()
	return in
}
