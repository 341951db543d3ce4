package runner

import (
	"context"
	"sync"
)

// running tracks the cancel function of every in-flight job so the API can
// cancel by job ID.
var (
	runningMu sync.Mutex
	running   = make(map[string]context.CancelFunc)
)

// Register records the cancel function for a running job.
func Register(jobID string, cancel context.CancelFunc) {
	runningMu.Lock()
	defer runningMu.Unlock()
	running[jobID] = cancel
}

// Unregister drops a finished job from the registry.
func Unregister(jobID string) {
	runningMu.Lock()
	defer runningMu.Unlock()
	delete(running, jobID)
}

// Cancel trips the cancellation token of a running job. It reports whether
// the job was found in-flight.
func Cancel(jobID string) bool {
	runningMu.Lock()
	cancel, ok := running[jobID]
	runningMu.Unlock()
	if ok {
		cancel()
	}
	return ok
}
