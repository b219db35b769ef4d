package persistence

import (
	"context"

	"gorm.io/gorm"

	"github.com/salon-ledger/backend/internal/application/adapter"
	"github.com/salon-ledger/backend/internal/domain/entity"
	"github.com/salon-ledger/backend/internal/integration/persistence/model"
)

// reportQueueRepository implements the adapter.ReportQueueRepository interface.
type reportQueueRepository struct {
	db *gorm.DB
}

// NewReportQueueRepository creates a new report queue repository instance.
func NewReportQueueRepository(db *gorm.DB) adapter.ReportQueueRepository {
	return &reportQueueRepository{
		db: db,
	}
}

// Enqueue persists a new pending report job.
func (r *reportQueueRepository) Enqueue(ctx context.Context, job *entity.ReportJob) error {
	jobModel := model.ReportJobFromEntity(job)
	result := r.db.WithContext(ctx).Create(jobModel)
	return result.Error
}

// GetPendingJobs returns up to limit pending jobs, oldest first.
func (r *reportQueueRepository) GetPendingJobs(ctx context.Context, limit int) ([]*entity.ReportJob, error) {
	var jobModels []model.ReportJobModel
	result := r.db.WithContext(ctx).
		Where("status = ?", string(entity.ReportJobStatusPending)).
		Order("created_at ASC").
		Limit(limit).
		Find(&jobModels)
	if result.Error != nil {
		return nil, result.Error
	}

	jobs := make([]*entity.ReportJob, len(jobModels))
	for i := range jobModels {
		jobs[i] = jobModels[i].ToEntity()
	}
	return jobs, nil
}

// Update persists job state transitions.
func (r *reportQueueRepository) Update(ctx context.Context, job *entity.ReportJob) error {
	jobModel := model.ReportJobFromEntity(job)
	result := r.db.WithContext(ctx).Save(jobModel)
	return result.Error
}
