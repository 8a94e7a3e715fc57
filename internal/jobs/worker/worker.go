package worker

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/PeeapDev/merchant-backend/internal/jobs/runtime"
	"github.com/PeeapDev/merchant-backend/internal/pkg/logger"
	"github.com/PeeapDev/merchant-backend/internal/repos"
	"github.com/PeeapDev/merchant-backend/internal/services"
)

const (
	maxAttempts  = 5
	retryDelay   = 30 * time.Second
	staleRunning = 2 * time.Minute
)

// Worker claims queued job runs one at a time and dispatches them to
// registered handlers. SKIP LOCKED in the claim query lets multiple
// instances poll the same table without stepping on each other.
type Worker struct {
	db       *gorm.DB
	log      *logger.Logger
	repo     repos.JobRunRepo
	registry *runtime.Registry
	notify   services.JobNotifier
}

func NewWorker(db *gorm.DB, baseLog *logger.Logger, repo repos.JobRunRepo, registry *runtime.Registry, notify services.JobNotifier) *Worker {
	return &Worker{
		db:       db,
		log:      baseLog.With("component", "JobWorker"),
		repo:     repo,
		registry: registry,
		notify:   notify,
	}
}

func (w *Worker) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(1 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				job, err := w.repo.ClaimNextRunnable(ctx, nil, maxAttempts, retryDelay, staleRunning)
				if err != nil {
					w.log.Warn("ClaimNextRunnable failed", "error", err)
					continue
				}
				if job == nil {
					continue
				}
				jc := runtime.NewContext(ctx, w.db, job, w.repo, w.notify)
				h, ok := w.registry.Get(job.JobType)
				if !ok {
					w.log.Warn("No handler registered for job_type", "job_type", job.JobType, "job_id", job.ID)
					jc.Fail("dispatch", fmt.Errorf("no handler registered for job_type=%s", job.JobType))
					continue
				}
				w.run(jc, h)
			}
		}
	}()
}

// run dispatches with panic recovery so one bad handler cannot take
// the worker loop down.
func (w *Worker) run(jc *runtime.Context, h runtime.Handler) {
	defer func() {
		if r := recover(); r != nil {
			w.log.Error("Job handler panic", "job_id", jc.Job.ID, "job_type", jc.Job.JobType, "panic", r)
			jc.Fail("panic", fmt.Errorf("handler panic: %v", r))
		}
	}()
	h.Run(jc)
}
