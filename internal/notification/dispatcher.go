package notification

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/frahmantamala/hr-attendance/pkg/logger"
)

type ProcessFunc func(ctx context.Context, job Job) error

type Worker struct {
	ID         int
	WorkerPool chan chan Job
	JobChannel chan Job
	Logger     *slog.Logger
}

func NewWorker(id int, workerPool chan chan Job, logger *slog.Logger) *Worker {
	return &Worker{
		ID:         id,
		WorkerPool: workerPool,
		JobChannel: make(chan Job),
		Logger:     logger,
	}
}

// Start registers the worker as idle, runs each job it is handed and exits when ctx is done.
func (w *Worker) Start(ctx context.Context, wg *sync.WaitGroup, process func(Job)) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case w.WorkerPool <- w.JobChannel:
			case <-ctx.Done():
				w.Logger.Debug("notification worker shutting down", "worker_id", w.ID)
				return
			}

			select {
			case job := <-w.JobChannel:
				w.Logger.Debug("worker processing notification", "worker_id", w.ID, "event_id", job.EventID)
				process(job)
			case <-ctx.Done():
				w.Logger.Debug("notification worker shutting down", "worker_id", w.ID)
				return
			}
		}
	}()
}

type Config struct {
	MaxWorkers   int
	JobQueueSize int
	SendTimeout  time.Duration
}

// Dispatcher feeds queued jobs to idle workers.
type Dispatcher struct {
	process     ProcessFunc
	sendTimeout time.Duration
	logger      *slog.Logger

	jobQueue   chan Job
	workerPool chan chan Job
	maxWorkers int
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	once       sync.Once

	mu     sync.RWMutex
	closed bool
}

func NewDispatcher(config Config, process ProcessFunc, logger *slog.Logger) *Dispatcher {
	ctx, cancel := context.WithCancel(context.Background())

	maxWorkers := config.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = 4
	}
	jobQueueSize := config.JobQueueSize
	if jobQueueSize <= 0 {
		jobQueueSize = 100
	}
	sendTimeout := config.SendTimeout
	if sendTimeout <= 0 {
		sendTimeout = 15 * time.Second
	}

	return &Dispatcher{
		process:     process,
		sendTimeout: sendTimeout,
		logger:      logger,
		maxWorkers:  maxWorkers,
		jobQueue:    make(chan Job, jobQueueSize),
		workerPool:  make(chan chan Job, maxWorkers),
		ctx:         ctx,
		cancel:      cancel,
	}
}

func (d *Dispatcher) Start() {
	d.once.Do(func() {
		for i := 0; i < d.maxWorkers; i++ {
			NewWorker(i, d.workerPool, d.logger).Start(d.ctx, &d.wg, d.run)
		}
		d.wg.Add(1)
		go d.dispatch()

		d.logger.Info("notification dispatcher started",
			"max_workers", d.maxWorkers,
			"queue_size", cap(d.jobQueue))
	})
}

func (d *Dispatcher) dispatch() {
	defer d.wg.Done()
	for {
		select {
		case job, ok := <-d.jobQueue:
			if !ok {
				// queue drained after Shutdown; let idle workers go
				d.cancel()
				return
			}
			select {
			case jobChannel := <-d.workerPool:
				select {
				case jobChannel <- job:
				case <-d.ctx.Done():
					return
				}
			case <-d.ctx.Done():
				return
			}
		case <-d.ctx.Done():
			return
		}
	}
}

func (d *Dispatcher) run(job Job) {
	jobLogger := d.logger.With("event_id", job.EventID)
	ctx, cancel := context.WithTimeout(logger.Into(context.Background(), jobLogger), d.sendTimeout)
	defer cancel()
	if err := d.process(ctx, job); err != nil {
		jobLogger.Error("notification delivery failed", "error", err)
	}
}

// Enqueue never blocks; a full queue is reported to the caller.
func (d *Dispatcher) Enqueue(job Job) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrDispatcherClosed
	}
	select {
	case d.jobQueue <- job:
		return nil
	default:
		d.logger.Warn("notification queue full, dropping job", "event_id", job.EventID, "queue_capacity", cap(d.jobQueue))
		return ErrQueueFull
	}
}

// Shutdown stops accepting jobs and waits for queued ones to be delivered.
// When ctx expires first the workers are stopped and ctx.Err is returned.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.logger.Info("shutting down notification dispatcher", "pending", len(d.jobQueue))
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.jobQueue)
	}
	d.mu.Unlock()
	d.Start()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		d.logger.Info("notification dispatcher shutdown complete")
		return nil
	case <-ctx.Done():
		d.cancel()
		<-done
		return ctx.Err()
	}
}
