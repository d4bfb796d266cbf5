package worker

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/akolanti/docqa/internal/config"
	"github.com/akolanti/docqa/internal/job"
	"github.com/akolanti/docqa/internal/metrics"
	"github.com/akolanti/docqa/internal/rag"
	"github.com/akolanti/docqa/pkg/logger_i"
)

var (
	_jobService        *job.Service
	stopWorkerChannel  chan bool
	workerWaitGroup    *sync.WaitGroup
	dispatcherChannel  chan bool
	currentWorkerCount int64
	logger             = logger_i.NewLogger("WorkerPool")
	_ragService        rag.Service
	minWorkerCount     = config.MinWorkerCount
	maxWorkerCount     = config.MaxWorkerCount
	idleWorkerTimeout  = config.IdleWorkerTimeout
)

func InitServices(jobService *job.Service, ragService rag.Service) {
	_jobService = jobService
	_ragService = ragService
	dispatcherChannel = jobService.DispatcherChannel
}

func InitWorkerPool(stopWorkerChan chan bool, waitGroup *sync.WaitGroup) {
	stopWorkerChannel = stopWorkerChan
	workerWaitGroup = waitGroup
	logger.Info("Initializing worker pool")
	createWorker()
	go dispatcher()
}

func dispatcher() {
	logger.Info("Dispatcher started")
	for {
		select {
		case <-dispatcherChannel:
			if atomic.LoadInt64(&currentWorkerCount) < atomic.LoadInt64(&maxWorkerCount) {
				logger.Info("Creating new worker", "workerCount", atomic.LoadInt64(&currentWorkerCount))
				createWorker()
			}
		case <-stopWorkerChannel:
			logger.Info("Dispatcher stopped")
			return
		}
	}
}

func createWorker() {
	workerWaitGroup.Add(1)
	atomic.AddInt64(&currentWorkerCount, 1)
	metrics.IncrementActiveWorkerCount()
	go worker()
	logger.Info("Created new worker")
}

func worker() {
	idle := time.NewTimer(idleWorkerTimeout)
	defer idle.Stop()
	for {
		select {
		case currentJob := <-_jobService.JobChannel:
			executeJob(currentJob)
			metrics.DecrementJobsInQueue()
			idle.Reset(idleWorkerTimeout)

		case <-stopWorkerChannel:
			atomic.AddInt64(&currentWorkerCount, -1)
			workerExited("Stop worker signal received")
			return

		case <-idle.C:
			if tryRetire() {
				workerExited("Idle worker timeout")
				return
			}
			idle.Reset(idleWorkerTimeout)
		}
	}
}

// tryRetire claims a slot above the minimum, so idle workers timing out
// together never shrink the pool below it.
func tryRetire() bool {
	for {
		n := atomic.LoadInt64(&currentWorkerCount)
		if n <= atomic.LoadInt64(&minWorkerCount) {
			return false
		}
		if atomic.CompareAndSwapInt64(&currentWorkerCount, n, n-1) {
			return true
		}
	}
}
