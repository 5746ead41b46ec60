package http

import (
	"sync"

	"github.com/shapestone/shape-httpd/internal/refcount"
)

// workerPool serves connections on a fixed set of goroutines fed from a
// bounded queue.
type workerPool struct {
	serve func(h *refcount.Handle[*Conn])
	queue chan *refcount.Handle[*Conn]

	wg       sync.WaitGroup
	stopOnce sync.Once
}

func newWorkerPool(workers, queueSize int, serve func(h *refcount.Handle[*Conn])) *workerPool {
	wp := &workerPool{
		serve: serve,
		queue: make(chan *refcount.Handle[*Conn], queueSize),
	}
	wp.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go wp.worker()
	}
	return wp
}

func (wp *workerPool) worker() {
	defer wp.wg.Done()
	for h := range wp.queue {
		wp.serve(h)
	}
}

// Serve hands h to a worker. It returns false without blocking when every
// worker is busy and the queue is full; the caller keeps ownership of h.
func (wp *workerPool) Serve(h *refcount.Handle[*Conn]) bool {
	select {
	case wp.queue <- h:
		return true
	default:
		return false
	}
}

// Stop closes the queue and waits for the workers to drain it. Serve must
// not be called after Stop.
func (wp *workerPool) Stop() {
	wp.stopOnce.Do(func() { close(wp.queue) })
	wp.wg.Wait()
}
