package reconcile

import (
	"context"
	"log"
	"sync"
	"time"
)

// DefaultInterval is the status poll cadence.
const DefaultInterval = 5 * time.Second

// Outcome is the result of one poll. Apply commits the fetched snapshot;
// the poller invokes it only while still active, so a fetch that lands
// after Stop is discarded without touching state. Again asks for another
// poll after the interval.
type Outcome struct {
	Apply func()
	Again bool
}

// PollFunc performs one status fetch. An error is logged and the
// previous snapshot is retained; polling continues on the same cadence.
type PollFunc func(ctx context.Context) (Outcome, error)

// Poller runs a PollFunc at a fixed interval with no overlap: poll N+1
// is scheduled only after poll N has returned and its outcome has been
// applied. There is no backoff and no poll-count limit; the loop ends
// when an outcome reports Again=false or the poller is stopped.
//
// A Poller is single-use. Create a new one to poll again after it ends.
type Poller struct {
	interval time.Duration
	fn       PollFunc
	logf     func(format string, args ...any)

	mu      sync.Mutex
	started bool
	stopped bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewPoller builds a poller. A non-positive interval falls back to
// DefaultInterval.
func NewPoller(interval time.Duration, fn PollFunc) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{
		interval: interval,
		fn:       fn,
		logf:     log.Printf,
		done:     make(chan struct{}),
	}
}

// Start launches the poll loop. The first poll fires one interval after
// Start; the initial snapshot is the caller's responsibility. Start is a
// no-op on a poller that already ran.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started || p.stopped {
		return
	}
	p.started = true

	ctx, p.cancel = context.WithCancel(ctx)
	go p.loop(ctx)
}

// Stop tears the loop down. A poll already in flight finishes but its
// outcome is not applied. Stop is idempotent and safe before Start.
func (p *Poller) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	cancel := p.cancel
	started := p.started
	p.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if !started {
		close(p.done)
	}
}

// Done is closed once the loop has fully ended.
func (p *Poller) Done() <-chan struct{} {
	return p.done
}

func (p *Poller) loop(ctx context.Context) {
	defer close(p.done)

	timer := time.NewTimer(p.interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		outcome, err := p.fn(ctx)
		if err != nil {
			if ctx.Err() == nil {
				p.logf("status poll failed: %v", err)
			}
		} else {
			if !p.apply(outcome) {
				return
			}
			if !outcome.Again {
				p.markStopped()
				return
			}
		}

		timer.Reset(p.interval)
	}
}

// apply commits an outcome unless the poller was stopped while the fetch
// was in flight. Returns false when the outcome was discarded.
func (p *Poller) apply(outcome Outcome) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return false
	}
	if outcome.Apply != nil {
		outcome.Apply()
	}
	return true
}

func (p *Poller) markStopped() {
	p.mu.Lock()
	p.stopped = true
	p.mu.Unlock()
}
