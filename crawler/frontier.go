package crawler

import "sync"

// frontier is the work queue. It deduplicates by URL, tracks how many
// tasks are still live (queued, in flight, or waiting out a retry
// backoff), and closes itself once the last live task completes.
type frontier struct {
	mu      sync.Mutex
	cond    *sync.Cond
	queue   []*Task
	seen    map[string]struct{}
	pending int
	closed  bool
}

func newFrontier() *frontier {
	f := &frontier{seen: make(map[string]struct{})}
	f.cond = sync.NewCond(&f.mu)
	return f
}

// Push enqueues a task unless its URL has been seen before or the
// frontier is already closed. Returns true when the task was accepted.
func (f *frontier) Push(t *Task) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return false
	}
	if _, dup := f.seen[t.URL]; dup {
		return false
	}
	f.seen[t.URL] = struct{}{}
	f.queue = append(f.queue, t)
	f.pending++
	f.cond.Signal()
	return true
}

// Requeue puts a task back for another attempt. The task is still live,
// so pending is untouched; dedup is skipped because its URL is
// necessarily already seen.
func (f *frontier) Requeue(t *Task) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.queue = append(f.queue, t)
	f.cond.Signal()
}

// MarkSeen records a URL without enqueuing anything. Returns false when
// the URL was already known. Used to deduplicate listings emitted
// straight from summaries, where no detail task carries the URL.
func (f *frontier) MarkSeen(url string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, dup := f.seen[url]; dup {
		return false
	}
	f.seen[url] = struct{}{}
	return true
}

// Pop blocks until a task is available or the frontier closes. The
// second return is false once the frontier has drained.
func (f *frontier) Pop() (*Task, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for len(f.queue) == 0 && !f.closed {
		f.cond.Wait()
	}
	if len(f.queue) == 0 {
		return nil, false
	}
	t := f.queue[0]
	f.queue = f.queue[1:]
	return t, true
}

// closeIfIdle closes an empty frontier so workers started with no seeds
// return immediately instead of blocking in Pop.
func (f *frontier) closeIfIdle() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pending == 0 && !f.closed {
		f.closed = true
		f.cond.Broadcast()
	}
}

// Done marks one live task terminal. When the last live task finishes
// the frontier closes and every blocked Pop returns.
func (f *frontier) Done() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pending--
	if f.pending <= 0 && !f.closed {
		f.closed = true
		f.cond.Broadcast()
	}
}
