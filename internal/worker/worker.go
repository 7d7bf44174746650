package worker

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/akolanti/DocSearch/internal/config"
	"github.com/akolanti/DocSearch/internal/job"
	"github.com/akolanti/DocSearch/internal/metrics"
	"github.com/akolanti/DocSearch/internal/rag"
	"github.com/akolanti/DocSearch/pkg/logger_i"
)

// Pool is an elastic set of workers draining the job service's task channel.
// The dispatcher adds a worker per signal up to maxWorkers; idle workers retire down to minWorkers.
type Pool struct {
	jobService  *job.Service
	ragService  rag.Service
	stop        chan bool
	wg          *sync.WaitGroup
	workerCount int64
	minWorkers  int64
	maxWorkers  int64
	idleTimeout time.Duration
	taskTimeout time.Duration
	logger      *logger_i.Logger
}

func NewPool(jobService *job.Service, ragService rag.Service) *Pool {
	return &Pool{
		jobService:  jobService,
		ragService:  ragService,
		minWorkers:  config.MinWorkerCount,
		maxWorkers:  config.MaxWorkerCount,
		idleTimeout: config.IdleWorkerTimeout,
		taskTimeout: config.TaskTimeout,
		logger:      logger_i.NewLogger("WorkerPool"),
	}
}

// Start launches the dispatcher. Closing stop retires every worker; wg tracks them.
func (p *Pool) Start(stop chan bool, wg *sync.WaitGroup) {
	p.stop = stop
	p.wg = wg
	p.logger.Info("Initializing worker pool")
	go p.dispatcher()
}

func (p *Pool) WorkerCount() int64 {
	return atomic.LoadInt64(&p.workerCount)
}

func (p *Pool) dispatcher() {
	p.createWorker()
	p.logger.Info("Dispatcher started")
	for {
		select {
		case <-p.stop:
			p.logger.Info("Dispatcher stopped")
			return
		case <-p.jobService.DispatcherChannel:
			if p.WorkerCount() < p.maxWorkers {
				p.logger.Info("Creating new worker", "workerCount", p.WorkerCount())
				p.createWorker()
			}
		}
	}
}

func (p *Pool) createWorker() {
	p.wg.Add(1)
	atomic.AddInt64(&p.workerCount, 1)
	metrics.IncrementActiveWorkerCount()
	go p.worker()
}

func (p *Pool) worker() {
	defer p.wg.Done()
	idle := time.NewTimer(p.idleTimeout)
	defer idle.Stop()

	for {
		select {
		case task := <-p.jobService.TaskChannel:
			metrics.DecrementTasksInQueue()
			p.execute(task)
			idle.Reset(p.idleTimeout)

		case <-p.stop:
			atomic.AddInt64(&p.workerCount, -1)
			p.removeWorker("Stop worker signal received")
			return

		case <-idle.C:
			if p.tryRetire() {
				p.removeWorker("Idle worker timeout")
				return
			}
			idle.Reset(p.idleTimeout)
		}
	}
}

// tryRetire decrements the worker count unless that would go below minWorkers.
func (p *Pool) tryRetire() bool {
	for {
		n := atomic.LoadInt64(&p.workerCount)
		if n <= p.minWorkers {
			return false
		}
		if atomic.CompareAndSwapInt64(&p.workerCount, n, n-1) {
			return true
		}
	}
}

func (p *Pool) removeWorker(reason string) {
	metrics.DecrementActiveWorkerCount()
	p.logger.Info("Removed worker", "reason", reason, "workerCount", p.WorkerCount())
}
