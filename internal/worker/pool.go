package worker

import (
	"context"
	"sort"
	"sync"
)

// Job represents a unit of work to be executed. Index ties the job to its
// slot in the result order.
type Job interface {
	Index() int
	Execute(ctx context.Context) Result
}

// Result represents the result of a job execution
type Result interface {
	Index() int
	GetError() error
}

// Pool manages a pool of workers that execute jobs concurrently. A collector
// drains results as they complete, so callers may submit any number of jobs
// before calling Wait. Results come back in submission-index order regardless
// of completion order, so downstream merges and batch output stay
// deterministic.
type Pool struct {
	workers    int
	jobQueue   chan Job
	results    chan Result
	collected  []Result
	done       chan struct{}
	wg         sync.WaitGroup
	ctx        context.Context
	cancelFunc context.CancelFunc
	closeOnce  sync.Once
}

// NewPool creates a new worker pool with the specified number of workers
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Pool{
		workers:    workers,
		jobQueue:   make(chan Job, workers*2),
		results:    make(chan Result, workers*2),
		done:       make(chan struct{}),
		ctx:        ctx,
		cancelFunc: cancel,
	}
}

// Start starts the workers and the result collector
func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	go p.collect()
}

// worker is the worker goroutine that processes jobs
func (p *Pool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case job, ok := <-p.jobQueue:
			if !ok {
				return
			}
			result := job.Execute(p.ctx)
			select {
			case p.results <- result:
			case <-p.ctx.Done():
				return
			}
		}
	}
}

// collect accumulates results until the results channel closes. Workers
// never stall on a full results buffer, which keeps Submit from wedging
// when a caller queues a large batch up front.
func (p *Pool) collect() {
	defer close(p.done)
	for result := range p.results {
		p.collected = append(p.collected, result)
	}
}

// Submit submits a job to the pool for execution. It blocks only while
// every worker is busy and the queue is full.
func (p *Pool) Submit(job Job) {
	select {
	case <-p.ctx.Done():
		return
	case p.jobQueue <- job:
	}
}

// Wait waits for all jobs to complete and returns the results ordered by
// job index
func (p *Pool) Wait() []Result {
	close(p.jobQueue)
	p.wg.Wait()
	p.closeResults()
	<-p.done

	sort.Slice(p.collected, func(i, j int) bool {
		return p.collected[i].Index() < p.collected[j].Index()
	})

	return p.collected
}

// Shutdown shuts down the worker pool immediately, discarding queued jobs
func (p *Pool) Shutdown() {
	p.cancelFunc()
	p.wg.Wait()
	p.closeResults()
	<-p.done
}

func (p *Pool) closeResults() {
	p.closeOnce.Do(func() {
		close(p.results)
	})
}
