package worker

import (
	"sync"

	"github.com/nimasrn/ledger-reconciler/pkg/logger"
)

type Handler = func(workerIndex int, job any)

// Pool is a fixed-size goroutine pool fed by a buffered job channel. With a
// single worker it doubles as an in-process serializer: jobs run strictly
// one at a time in enqueue order.
type Pool struct {
	jobs    chan any
	workers int
	handle  Handler
	quit    chan struct{}
	wg      sync.WaitGroup
	once    sync.Once
}

func NewPool(bufferSize, workers int) *Pool {
	if workers < 1 {
		workers = 1
	}
	return &Pool{
		jobs:    make(chan any, bufferSize),
		workers: workers,
		quit:    make(chan struct{}),
	}
}

func (p *Pool) SetHandler(h Handler) {
	p.handle = h
}

func (p *Pool) Pending() int {
	return len(p.jobs)
}

// Enqueue publishes a job. Blocks when the buffer is full.
func (p *Pool) Enqueue(job any) {
	p.jobs <- job
}

// TryEnqueue publishes a job without blocking; returns false when the
// buffer is full.
func (p *Pool) TryEnqueue(job any) bool {
	select {
	case p.jobs <- job:
		return true
	default:
		return false
	}
}

func (p *Pool) Start() {
	p.wg.Add(p.workers)
	for i := 0; i < p.workers; i++ {
		go func(index int) {
			defer p.wg.Done()
			for {
				select {
				case <-p.quit:
					return
				case job := <-p.jobs:
					p.handle(index, job)
				}
			}
		}(i)
	}
	logger.Info("[worker] pool started", "workers", p.workers)
}

// Stop signals all workers and waits for in-flight jobs to finish. The job
// channel is left open so concurrent Enqueue calls never panic.
func (p *Pool) Stop() {
	p.once.Do(func() {
		close(p.quit)
	})
	p.wg.Wait()
	logger.Info("[worker] pool stopped", "pending", len(p.jobs))
}
