// Package dispatch runs jobs across a bounded set of workers and funnels
// their results to a single consumer.
package dispatch

import (
	"context"
	"sync"

	"tagsignal/pkg/logger"
)

// Worker processes one job and returns its result.
type Worker[J, R any] func(ctx context.Context, job J) R

// Pool fans jobs out to at most `workers` goroutines. Results arrive on a
// single channel, closed once every submitted job has been processed, so
// the consumer never needs its own synchronization.
type Pool[J, R any] struct {
	workers int
	fn      Worker[J, R]
	jobs    chan J
	results chan R
	wg      sync.WaitGroup
	log     logger.Logger
}

// NewPool creates a pool of the given width. A width below 1 is clamped
// to 1.
func NewPool[J, R any](workers int, fn Worker[J, R], log logger.Logger) *Pool[J, R] {
	if workers < 1 {
		workers = 1
	}
	return &Pool[J, R]{
		workers: workers,
		fn:      fn,
		jobs:    make(chan J),
		results: make(chan R),
		log:     log,
	}
}

// Start launches the workers. The context is handed to every job; jobs are
// expected to return promptly once it is cancelled.
func (p *Pool[J, R]) Start(ctx context.Context) {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go func(id int) {
			defer p.wg.Done()
			p.log.WithField("worker", id).Debug("worker started")
			for job := range p.jobs {
				p.results <- p.fn(ctx, job)
			}
			p.log.WithField("worker", id).Debug("worker stopped")
		}(i)
	}

	go func() {
		p.wg.Wait()
		close(p.results)
	}()
}

// Submit queues a job. Blocks while all workers are busy.
func (p *Pool[J, R]) Submit(job J) {
	p.jobs <- job
}

// Close signals that no more jobs will be submitted. The results channel
// closes after the in-flight jobs finish.
func (p *Pool[J, R]) Close() {
	close(p.jobs)
}

// Results returns the result channel.
func (p *Pool[J, R]) Results() <-chan R {
	return p.results
}
