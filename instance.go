package office2png

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"
)

// workerInstance is one isolated soffice execution slot. The profile
// directory is exclusively owned by this instance for the lifetime of
// the pool; the busy flag is guarded by mu so an instance can never be
// claimed by two jobs at once.
type workerInstance struct {
	id         int
	profileDir string

	mu   sync.Mutex
	busy bool

	docsProcessed atomic.Uint32
}

// newWorkerInstance creates an instance with a unique profile directory
// under root.
func newWorkerInstance(id int, root string) (*workerInstance, error) {
	profileDir, err := os.MkdirTemp(root, fmt.Sprintf("lo-profile-%d-", id))
	if err != nil {
		return nil, fmt.Errorf("creating profile directory for instance %d: %w", id, err)
	}

	return &workerInstance{
		id:         id,
		profileDir: profileDir,
	}, nil
}

// tryClaim atomically marks the instance busy if it is idle.
// Returns false if the instance is already serving a job.
func (w *workerInstance) tryClaim() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.busy {
		return false
	}
	w.busy = true
	return true
}

// release marks the instance idle again.
func (w *workerInstance) release() {
	w.mu.Lock()
	w.busy = false
	w.mu.Unlock()
}

// isBusy reports whether the instance is currently serving a job.
func (w *workerInstance) isBusy() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.busy
}

// incrementDocs bumps the processed counter and returns the new value.
func (w *workerInstance) incrementDocs() uint32 {
	return w.docsProcessed.Add(1)
}

// processed returns the number of documents this instance has handled.
func (w *workerInstance) processed() uint32 {
	return w.docsProcessed.Load()
}

// needsRecycling reports whether the instance has reached the
// configured per-instance document limit. The flag is monotonic: it
// only resets with an explicit counter reset, which the pool never
// performs (recycling is reporting-only).
func (w *workerInstance) needsRecycling(maxDocs int) bool {
	return w.processed() >= uint32(maxDocs)
}

// cleanup removes the profile directory. Called once at pool Close.
func (w *workerInstance) cleanup() error {
	return os.RemoveAll(w.profileDir)
}
