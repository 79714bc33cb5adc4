package services

import (
	"sync"
	"time"

	"github.com/cppla/sharedrop/utils"
)

// Sweeper schedules expiry sweeps on a fixed interval, independent of
// request traffic. It is started exactly once at process start; cycles are
// single-flight, so a slow pass is skipped over rather than overlapped and
// two sweeps can never race on the same record.
type Sweeper struct {
	remove   *RemoveService
	interval time.Duration

	mu      sync.Mutex
	started bool
	stop    chan struct{}
}

// NewSweeper creates a sweeper over the removal engine.
func NewSweeper(remove *RemoveService, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Sweeper{remove: remove, interval: interval, stop: make(chan struct{})}
}

// Start launches the background goroutine. Calling it again is a no-op.
func (w *Sweeper) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		return
	}
	w.started = true

	go func() {
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				w.RunOnce()
			case <-w.stop:
				return
			}
		}
	}()
}

// Stop terminates the background goroutine.
func (w *Sweeper) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.started {
		return
	}
	w.started = false
	close(w.stop)
	w.stop = make(chan struct{})
}

// RunOnce performs a single sweep cycle if none is in flight.
func (w *Sweeper) RunOnce() {
	if !w.mu.TryLock() {
		return
	}
	defer w.mu.Unlock()

	res, err := w.remove.Sweep()
	if err != nil {
		if utils.Sugar != nil {
			if IsScanFailure(err) {
				utils.Sugar.Errorf("expiry scan failed, nothing swept: %v", err)
			} else {
				utils.Sugar.Errorf("expiry sweep failed: %v", err)
			}
		}
		return
	}
	if res.Outcome == SweepNoWorkFound {
		return
	}
	if utils.Sugar != nil {
		utils.Sugar.Infof("expiry sweep completed: removed=%d failed=%d", res.Removed, res.Failed)
	}
}

// DeferredRemove schedules a one-shot removal after the grace delay, used to
// take a file down shortly after its recipient downloaded it. The timer is
// best-effort; a restart drops it and the regular sweep picks the file up at
// expiry instead.
func (w *Sweeper) DeferredRemove(owner, hashID, ext string, delay time.Duration) *time.Timer {
	return time.AfterFunc(delay, func() {
		st := w.remove.RemoveOne(owner, hashID, ext)
		if utils.Sugar != nil {
			utils.Sugar.Infof("deferred removal of %s/%s: %s", owner, hashID, st)
		}
	})
}
