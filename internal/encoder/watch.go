// internal/encoder/watch.go
package encoder

import (
	"context"
	"fmt"
	"sync"
	"time"

	"periph.io/x/conn/v3/gpio"
)

// edgePoll bounds how long an edge goroutine waits before rechecking ctx.
const edgePoll = 100 * time.Millisecond

// Watch arms both channel pins for edge detection and samples the matching
// channel on every edge. One goroutine per channel; they play the role of the
// pin interrupt handlers. Blocks until ctx is done.
func (e *Encoder) Watch(ctx context.Context) error {
	return e.watch(ctx, nil)
}

// watch runs Watch and calls armed, when set, once both pins are armed and
// resampled.
func (e *Encoder) watch(ctx context.Context, armed func()) error {
	if err := e.a.In(gpio.PullNoChange, gpio.BothEdges); err != nil {
		return fmt.Errorf("encoder: arm channel A %s: %w", e.a, err)
	}
	if err := e.b.In(gpio.PullNoChange, gpio.BothEdges); err != nil {
		return fmt.Errorf("encoder: arm channel B %s: %w", e.b, err)
	}

	// pins may have moved between New and edge arming
	e.SampleChannels()
	if armed != nil {
		armed()
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		watchEdges(ctx, e.a, e.SampleA)
	}()
	go func() {
		defer wg.Done()
		watchEdges(ctx, e.b, e.SampleB)
	}()
	wg.Wait()
	return nil
}

func watchEdges(ctx context.Context, p gpio.PinIn, sample func()) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		if p.WaitForEdge(edgePoll) {
			sample()
		}
	}
}
