package telegram

import "sync"

// dispatcher serializes work per user while letting different users run
// concurrently. Jobs for one user execute in arrival order; a presence in
// the queues map means a goroutine is already draining that user.
type dispatcher struct {
	mu     sync.Mutex
	queues map[int64][]func()
	wg     sync.WaitGroup
}

func newDispatcher() *dispatcher {
	return &dispatcher{queues: make(map[int64][]func())}
}

func (d *dispatcher) enqueue(user int64, fn func()) {
	d.wg.Add(1)
	job := func() {
		defer d.wg.Done()
		fn()
	}

	d.mu.Lock()
	if q, running := d.queues[user]; running {
		d.queues[user] = append(q, job)
		d.mu.Unlock()
		return
	}
	d.queues[user] = nil
	d.mu.Unlock()

	go d.drain(user, job)
}

func (d *dispatcher) drain(user int64, job func()) {
	for {
		job()

		d.mu.Lock()
		q := d.queues[user]
		if len(q) == 0 {
			delete(d.queues, user)
			d.mu.Unlock()
			return
		}
		job = q[0]
		d.queues[user] = q[1:]
		d.mu.Unlock()
	}
}

// wait blocks until every enqueued job has run. Used on shutdown and in
// tests.
func (d *dispatcher) wait() {
	d.wg.Wait()
}
