package jobs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/PeeapDev/merchant-backend/internal/pkg/logger"
	"github.com/PeeapDev/merchant-backend/internal/repos"
	"github.com/PeeapDev/merchant-backend/internal/requestdata"
	"github.com/PeeapDev/merchant-backend/internal/types"
)

// Job types the worker pool knows how to run.
const (
	TypeSyncReconcile = "pos.sync_reconcile"
	TypeStockAlerts   = "pos.stock_alerts"
)

// Service enqueues background runs and reads their status. Execution
// belongs to the worker; this is the front door.
type Service interface {
	Enqueue(ctx context.Context, jobType string, entityType string, entityID *uuid.UUID, payload map[string]any) (*types.JobRun, error)
	Get(ctx context.Context, jobID uuid.UUID) (*types.JobRun, error)
	GetLatestForEntity(ctx context.Context, entityType string, entityID uuid.UUID, jobType string) (*types.JobRun, error)
}

type service struct {
	db   *gorm.DB
	log  *logger.Logger
	repo repos.JobRunRepo
}

func NewService(db *gorm.DB, log *logger.Logger, repo repos.JobRunRepo) Service {
	return &service{
		db:   db,
		log:  log.With("service", "JobsService"),
		repo: repo,
	}
}

func (s *service) Enqueue(ctx context.Context, jobType string, entityType string, entityID *uuid.UUID, payload map[string]any) (*types.JobRun, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.MerchantID == uuid.Nil {
		return nil, fmt.Errorf("unauthorized")
	}
	if jobType == "" {
		return nil, fmt.Errorf("job type required")
	}
	var doc datatypes.JSON
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode payload: %w", err)
		}
		doc = raw
	}
	job := &types.JobRun{
		ID:         uuid.New(),
		MerchantID: rd.MerchantID,
		JobType:    jobType,
		EntityType: entityType,
		EntityID:   entityID,
		Status:     types.JobStatusQueued,
		Stage:      "queued",
		Payload:    doc,
	}
	if _, err := s.repo.Create(ctx, nil, []*types.JobRun{job}); err != nil {
		return nil, fmt.Errorf("failed to enqueue job: %w", err)
	}
	s.log.Info("Job enqueued", "job_id", job.ID, "job_type", jobType)
	return job, nil
}

func (s *service) Get(ctx context.Context, jobID uuid.UUID) (*types.JobRun, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.MerchantID == uuid.Nil {
		return nil, fmt.Errorf("unauthorized")
	}
	found, err := s.repo.GetByIDs(ctx, nil, []uuid.UUID{jobID})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch job: %w", err)
	}
	if len(found) == 0 || found[0].MerchantID != rd.MerchantID {
		return nil, fmt.Errorf("job not found")
	}
	return found[0], nil
}

func (s *service) GetLatestForEntity(ctx context.Context, entityType string, entityID uuid.UUID, jobType string) (*types.JobRun, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.MerchantID == uuid.Nil {
		return nil, fmt.Errorf("unauthorized")
	}
	return s.repo.GetLatestByEntity(ctx, nil, rd.MerchantID, entityType, entityID, jobType)
}
