// internal/common/camunda/worker.go
package camunda

import (
	"sync"
	"time"

	"visa-portal/internal/common/config"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"go.uber.org/zap"
)

// HandlerFunc is the Zeebe job callback every worker package exposes as Handle.
type HandlerFunc func(client worker.JobClient, job entities.Job)

// WorkerPool opens job workers against one Zeebe client and closes them together.
type WorkerPool struct {
	client  zbc.Client
	logger  *zap.Logger
	mu      sync.Mutex
	workers map[string]worker.JobWorker
}

func NewWorkerPool(client zbc.Client, logger *zap.Logger) *WorkerPool {
	return &WorkerPool{
		client:  client,
		logger:  logger,
		workers: make(map[string]worker.JobWorker),
	}
}

// Start opens a job worker for taskType unless it is disabled in config.
// It reports whether a worker was opened.
func (p *WorkerPool) Start(taskType string, wcfg config.WorkerConfig, handler HandlerFunc) bool {
	if !wcfg.Enabled {
		p.logger.Info("worker disabled", zap.String("taskType", taskType))
		return false
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.workers[taskType]; exists {
		p.logger.Warn("worker already started", zap.String("taskType", taskType))
		return false
	}

	jobWorker := p.client.NewJobWorker().
		JobType(taskType).
		Handler(worker.JobHandler(handler)).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(time.Duration(wcfg.Timeout) * time.Millisecond).
		Open()

	p.workers[taskType] = jobWorker

	p.logger.Info("worker started",
		zap.String("taskType", taskType),
		zap.Int("maxJobsActive", wcfg.MaxJobsActive),
		zap.Int("timeout_ms", wcfg.Timeout),
	)
	return true
}

// Count returns the number of open workers.
func (p *WorkerPool) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.workers)
}

// Close stops every worker and waits for in-flight jobs.
func (p *WorkerPool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for taskType, w := range p.workers {
		p.logger.Info("stopping worker", zap.String("taskType", taskType))
		w.Close()
		w.AwaitClose()
	}
	p.workers = make(map[string]worker.JobWorker)
}
