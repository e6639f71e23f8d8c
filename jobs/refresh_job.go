package jobs

import (
	"context"
	"log"
	"sync"
	"time"
)

// Reloader re-reads shared state from durable storage.
type Reloader interface {
	Reload(ctx context.Context) error
}

// RefreshJob periodically reloads marketplace state so instances that
// miss a change signal still converge.
type RefreshJob struct {
	target   Reloader
	interval time.Duration
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewRefreshJob creates a new refresh job
func NewRefreshJob(target Reloader, interval time.Duration) *RefreshJob {
	return &RefreshJob{
		target:   target,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

// Start begins the refresh job. A non-positive interval disables it.
func (j *RefreshJob) Start() {
	if j.interval <= 0 {
		log.Println("⏸️  Refresh job disabled")
		return
	}
	j.wg.Add(1)
	go j.run()
	log.Printf("🚀 Refresh job started (every %v)", j.interval)
}

// Stop stops the refresh job and waits for a running reload to finish
func (j *RefreshJob) Stop() {
	j.stopOnce.Do(func() {
		close(j.stopChan)
		j.wg.Wait()
		log.Println("🛑 Refresh job stopped")
	})
}

func (j *RefreshJob) run() {
	defer j.wg.Done()
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			j.refresh()
		case <-j.stopChan:
			return
		}
	}
}

func (j *RefreshJob) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), j.interval)
	defer cancel()
	if err := j.target.Reload(ctx); err != nil {
		log.Printf("❌ Error refreshing marketplace state: %v", err)
	}
}
