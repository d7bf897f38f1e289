// Package poller runs a named function on a fixed interval in its own
// goroutine. Both the mailbox scanner and the reply watcher are built on it.
package poller

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const defaultCycleTimeout = 45 * time.Second

// CycleFunc is one polling pass. Errors are logged and swallowed so a bad
// cycle never stops the loop.
type CycleFunc func(ctx context.Context) error

type Poller struct {
	name         string
	interval     time.Duration
	cycleTimeout time.Duration
	cycle        CycleFunc
	logger       *zap.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	running bool
}

func New(name string, interval time.Duration, cycle CycleFunc, lg *zap.Logger) *Poller {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if lg == nil {
		lg = zap.NewNop()
	}

	return &Poller{
		name:         name,
		interval:     interval,
		cycleTimeout: defaultCycleTimeout,
		cycle:        cycle,
		logger:       lg,
	}
}

// Start launches the polling goroutine. Calling it on a running poller is a
// no-op.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		p.logger.Info("poller already running", zap.String("poller", p.name))
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	p.running = true

	p.logger.Info("poller started",
		zap.String("poller", p.name),
		zap.Duration("interval", p.interval),
	)

	go p.run(runCtx, p.done)
}

func (p *Poller) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		p.runCycle(ctx)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (p *Poller) runCycle(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	cycleCtx, cancel := context.WithTimeout(ctx, p.cycleTimeout)
	defer cancel()

	if err := p.cycle(cycleCtx); err != nil {
		if ctx.Err() != nil {
			return
		}
		p.logger.Error("poll cycle failed",
			zap.String("poller", p.name),
			zap.Error(err),
		)
	}
}

// Stop halts the loop and waits for the in-flight cycle to finish. Calling
// it on a stopped poller is a no-op.
func (p *Poller) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	cancel := p.cancel
	done := p.done
	p.running = false
	p.mu.Unlock()

	cancel()
	<-done

	p.logger.Info("poller stopped", zap.String("poller", p.name))
}

// Running reports whether the loop is active.
func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}
