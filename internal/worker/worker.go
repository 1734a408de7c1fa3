// Package worker provides the background task pool used for fire-and-forget
// work: route-distance calculation and photo post-processing. Task errors are
// logged, never propagated to the request that submitted them.
package worker

import (
	"context"
	"log"
	"runtime"
	"sync"
)

// Task is a unit of background work.
type Task interface {
	Execute()
}

// Pool is a fixed-size goroutine pool with a bounded queue.
type Pool struct {
	workers int
	queue   chan Task
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
	started bool
	mu      sync.Mutex
}

func NewPool(workers, queueSize int) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if queueSize <= 0 {
		queueSize = 1000
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{
		workers: workers,
		queue:   make(chan Task, queueSize),
		ctx:     ctx,
		cancel:  cancel,
	}
}

func (p *Pool) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return
	}
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	p.started = true
	log.Printf("Background worker pool started with %d workers", p.workers)
}

func (p *Pool) Stop() {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return
	}
	p.started = false
	p.mu.Unlock()

	p.cancel()
	p.wg.Wait()
	log.Println("Background worker pool stopped")
}

// Submit enqueues a task without blocking. When the queue is full the task is
// dropped with a warning; background work is best-effort.
func (p *Pool) Submit(task Task) bool {
	select {
	case <-p.ctx.Done():
		return false
	default:
	}
	select {
	case p.queue <- task:
		return true
	default:
		log.Println("WARN: worker pool queue is full, task dropped")
		return false
	}
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for {
		select {
		case <-p.ctx.Done():
			return
		case task := <-p.queue:
			p.run(task)
		}
	}
}

func (p *Pool) run(task Task) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Worker task panicked: %v", r)
		}
	}()
	task.Execute()
}
