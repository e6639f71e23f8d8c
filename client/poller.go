package client

import (
	"context"
	"log"
	"time"
)

// DefaultPollInterval is used when a Poller is given a non-positive interval.
const DefaultPollInterval = 5 * time.Second

// Poller refreshes a view on a fixed interval until its context ends.
type Poller struct {
	interval time.Duration
	refresh  func(ctx context.Context) error
}

// NewPoller calls refresh every interval once Run starts. A non-positive
// interval falls back to DefaultPollInterval.
func NewPoller(interval time.Duration, refresh func(ctx context.Context) error) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{interval: interval, refresh: refresh}
}

// Run refreshes immediately and then on every tick. Refresh errors are
// logged and do not stop the poller. It returns ctx.Err() when ctx ends.
func (p *Poller) Run(ctx context.Context) error {
	p.tick(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

func (p *Poller) tick(ctx context.Context) {
	if err := p.refresh(ctx); err != nil && ctx.Err() == nil {
		log.Printf("⚠️  Poll refresh failed: %v", err)
	}
}
