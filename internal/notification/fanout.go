package notification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/frahmantamala/office-hr/internal/core/events"
)

var (
	ErrQueueFull     = errors.New("notification fan-out queue is full")
	ErrFanOutStopped = errors.New("notification fan-out stopped")
)

// FanOutJob delivers one notification to every active user holding Role.
type FanOutJob struct {
	CompanyID string
	Role      string
	Title     string
	Message   string
	Type      string
	SourceKey string
}

// RecipientDirectory pages through active users of a role.
type RecipientDirectory interface {
	ListActiveUserIDsByRole(ctx context.Context, companyID, role string, offset, limit int) ([]string, error)
}

type Creator interface {
	Create(ctx context.Context, in NewNotification) (*Notification, error)
}

type Worker struct {
	ID         int
	WorkerPool chan chan FanOutJob
	JobChannel chan FanOutJob
	Logger     *slog.Logger
}

func NewWorker(id int, workerPool chan chan FanOutJob, logger *slog.Logger) *Worker {
	return &Worker{
		ID:         id,
		WorkerPool: workerPool,
		JobChannel: make(chan FanOutJob),
		Logger:     logger,
	}
}

func (w *Worker) Start(ctx context.Context, wg *sync.WaitGroup, processFunc func(FanOutJob)) {
	wg.Add(1)
	go func() {
		defer wg.Done()

		for {
			select {
			case w.WorkerPool <- w.JobChannel:
			case <-ctx.Done():
				return
			}

			select {
			case job := <-w.JobChannel:
				w.Logger.Debug("worker processing fan-out", "worker_id", w.ID, "role", job.Role, "source_key", job.SourceKey)
				processFunc(job)
			case <-ctx.Done():
				w.Logger.Debug("worker shutting down", "worker_id", w.ID)
				return
			}
		}
	}()
}

type FanOutConfig struct {
	Workers    int
	QueueSize  int
	PageSize   int
	JobTimeout time.Duration
}

// FanOut is a bounded worker pool. Each job pages through the recipients of
// a role without a cap and creates one notification per recipient.
type FanOut struct {
	directory RecipientDirectory
	creator   Creator
	logger    *slog.Logger

	pageSize   int
	jobTimeout time.Duration
	maxWorkers int
	jobQueue   chan FanOutJob
	workerPool chan chan FanOutJob
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	once       sync.Once

	// mu guards closed and the accepted-job count; idle is closed whenever
	// the count drops back to zero.
	mu       sync.Mutex
	closed   bool
	inflight int
	idle     chan struct{}
}

func NewFanOut(cfg FanOutConfig, directory RecipientDirectory, creator Creator, logger *slog.Logger) *FanOut {
	ctx, cancel := context.WithCancel(context.Background())

	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 256
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 200
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = time.Minute
	}

	f := &FanOut{
		directory:  directory,
		creator:    creator,
		logger:     logger,
		pageSize:   cfg.PageSize,
		jobTimeout: cfg.JobTimeout,
		maxWorkers: cfg.Workers,
		jobQueue:   make(chan FanOutJob, cfg.QueueSize),
		workerPool: make(chan chan FanOutJob, cfg.Workers),
		ctx:        ctx,
		cancel:     cancel,
	}
	f.start()
	return f
}

func (f *FanOut) start() {
	f.once.Do(func() {
		for i := 0; i < f.maxWorkers; i++ {
			worker := NewWorker(i, f.workerPool, f.logger)
			worker.Start(f.ctx, &f.wg, f.process)
		}

		f.wg.Add(1)
		go f.dispatch()

		f.logger.Info("notification fan-out pool started",
			"max_workers", f.maxWorkers,
			"queue_size", cap(f.jobQueue))
	})
}

func (f *FanOut) dispatch() {
	defer f.wg.Done()

	for {
		select {
		case job := <-f.jobQueue:
			select {
			case jobChannel := <-f.workerPool:
				select {
				case jobChannel <- job:
				case <-f.ctx.Done():
					f.release()
					return
				}
			case <-f.ctx.Done():
				f.release()
				return
			}
		case <-f.ctx.Done():
			f.logger.Info("fan-out dispatcher shutting down")
			return
		}
	}
}

// Enqueue never blocks; a full queue is reported to the caller.
func (f *FanOut) Enqueue(job FanOutJob) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrFanOutStopped
	}
	select {
	case f.jobQueue <- job:
		f.inflight++
		if f.inflight == 1 {
			f.idle = make(chan struct{})
		}
		f.logger.Debug("fan-out job queued", "role", job.Role, "queue_length", len(f.jobQueue))
		return nil
	default:
		f.logger.Warn("fan-out queue full, dropping job",
			"role", job.Role,
			"source_key", job.SourceKey,
			"queue_capacity", cap(f.jobQueue))
		return ErrQueueFull
	}
}

// release marks one accepted job as finished or abandoned.
func (f *FanOut) release() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inflight--
	if f.inflight == 0 {
		close(f.idle)
	}
}

func (f *FanOut) process(job FanOutJob) {
	defer f.release()

	ctx, cancel := context.WithTimeout(f.ctx, f.jobTimeout)
	defer cancel()

	delivered := 0
	for offset := 0; ; offset += f.pageSize {
		recipients, err := f.directory.ListActiveUserIDsByRole(ctx, job.CompanyID, job.Role, offset, f.pageSize)
		if err != nil {
			f.logger.Error("fan-out recipient lookup failed",
				"error", err,
				"company_id", job.CompanyID,
				"role", job.Role,
				"offset", offset)
			return
		}

		for _, userID := range recipients {
			_, err := f.creator.Create(ctx, NewNotification{
				CompanyID: job.CompanyID,
				UserID:    userID,
				Title:     job.Title,
				Message:   job.Message,
				Type:      job.Type,
				SourceKey: job.SourceKey,
			})
			if err != nil {
				f.logger.Warn("fan-out notification failed", "error", err, "user_id", userID)
				continue
			}
			delivered++
		}

		if len(recipients) < f.pageSize {
			break
		}
	}

	f.logger.Info("fan-out completed",
		"company_id", job.CompanyID,
		"role", job.Role,
		"source_key", job.SourceKey,
		"delivered", delivered)
}

// Wait blocks until no accepted job is left or ctx is done.
func (f *FanOut) Wait(ctx context.Context) error {
	f.mu.Lock()
	if f.inflight == 0 {
		f.mu.Unlock()
		return nil
	}
	idle := f.idle
	f.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown stops accepting jobs, stops the workers and abandons whatever is
// still queued.
func (f *FanOut) Shutdown() {
	f.logger.Info("shutting down notification fan-out")
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()

	f.cancel()
	f.wg.Wait()

	for abandoned := len(f.jobQueue); abandoned > 0; abandoned-- {
		job := <-f.jobQueue
		f.logger.Warn("fan-out job abandoned at shutdown", "role", job.Role, "source_key", job.SourceKey)
		f.release()
	}
	f.logger.Info("notification fan-out shutdown complete")
}

// LeaveRequestedHandler turns leave.requested events into a fan-out to the
// HR role.
func (f *FanOut) LeaveRequestedHandler(role string) events.Handler {
	return func(ctx context.Context, event events.Event) error {
		e, ok := event.(*events.LeaveRequestedEvent)
		if !ok {
			return fmt.Errorf("expected LeaveRequestedEvent, got %T", event)
		}
		return f.Enqueue(FanOutJob{
			CompanyID: e.CompanyID,
			Role:      role,
			Title:     "New leave request",
			Message:   fmt.Sprintf("%s requested leave.", e.EmployeeLabel),
			Type:      TypeInfo,
			SourceKey: "leave:" + e.LeaveID + ":requested",
		})
	}
}

func (f *FanOut) RegisterEventHandlers(bus *events.EventBus, hrRole string) {
	bus.Subscribe(events.EventLeaveRequested, f.LeaveRequestedHandler(hrRole))
	f.logger.Info("notification event handlers registered", "handlers", []string{events.EventLeaveRequested})
}
