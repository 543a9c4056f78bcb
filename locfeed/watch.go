// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package locfeed

import (
	"context"
	"sync"
	"time"
)

// DefaultWatchInterval is used when Watch gets a non-positive interval
const DefaultWatchInterval = 5 * time.Second

// Watcher keeps asking a Source for fixes until stopped
type Watcher struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Watch requests a fix right away and then every interval, passing each
// outcome to fn on the watcher's goroutine. Failures do not stop the watch.
func Watch(ctx context.Context, src Source, interval, timeout time.Duration, fn func(Fix, error)) *Watcher {
	if interval <= 0 {
		interval = DefaultWatchInterval
	}
	ctx, cancel := context.WithCancel(ctx)
	w := &Watcher{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(w.done)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			fix, err := Request(ctx, src, timeout)
			if ctx.Err() != nil {
				return
			}
			fn(fix, err)

			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()

	return w
}

// Stop cancels the watch and waits for the last callback to return.
// It is safe to call more than once but must not be called from fn.
func (w *Watcher) Stop() {
	w.once.Do(w.cancel)
	<-w.done
}

// Done is closed once the watch has ended
func (w *Watcher) Done() <-chan struct{} {
	return w.done
}
