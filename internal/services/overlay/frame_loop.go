package overlay

import (
	"context"
	"sync"
	"time"

	"CryptoView/internal/clock"
)

// DefaultFrameInterval approximates one display refresh.
const DefaultFrameInterval = 16 * time.Millisecond

// FrameLoop re-projects on every tick while it is visible and hands each
// frame to a sink. It stops on context cancellation or Hide.
type FrameLoop struct {
	clk      clock.Clock
	interval time.Duration
	project  func() Frame
	sink     func(Frame)

	mu      sync.Mutex
	running bool
	timer   clock.Timer
	seq     uint64
	stop    chan struct{}
}

func NewFrameLoop(clk clock.Clock, interval time.Duration, project func() Frame, sink func(Frame)) *FrameLoop {
	if clk == nil {
		clk = clock.Real()
	}
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	return &FrameLoop{clk: clk, interval: interval, project: project, sink: sink}
}

// Show starts ticking. It is a no-op when already running.
func (l *FrameLoop) Show(ctx context.Context) {
	l.mu.Lock()
	if l.running {
		l.mu.Unlock()
		return
	}
	l.running = true
	stop := make(chan struct{})
	l.stop = stop
	l.timer = l.clk.AfterFunc(l.interval, l.tick)
	l.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
			l.Hide()
		case <-stop:
		}
	}()
}

// Hide stops the loop; no frame is emitted after it returns.
func (l *FrameLoop) Hide() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.running {
		return
	}
	l.running = false
	if l.timer != nil {
		l.timer.Stop()
		l.timer = nil
	}
	close(l.stop)
}

// Running reports whether the loop is ticking.
func (l *FrameLoop) Running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.running
}

func (l *FrameLoop) tick() {
	l.mu.Lock()
	if !l.running {
		l.mu.Unlock()
		return
	}
	l.seq++
	f := l.project()
	f.Seq = l.seq
	// emit under the lock so Hide cannot interleave with a frame
	l.sink(f)
	l.timer = l.clk.AfterFunc(l.interval, l.tick)
	l.mu.Unlock()
}
