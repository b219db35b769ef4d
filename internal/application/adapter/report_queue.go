package adapter

import (
	"context"

	"github.com/salon-ledger/backend/internal/domain/entity"
)

// ReportQueueRepository defines the interface for the report job queue.
type ReportQueueRepository interface {
	// Enqueue persists a new pending report job.
	Enqueue(ctx context.Context, job *entity.ReportJob) error

	// GetPendingJobs returns up to limit pending jobs, oldest first.
	GetPendingJobs(ctx context.Context, limit int) ([]*entity.ReportJob, error)

	// Update persists job state transitions.
	Update(ctx context.Context, job *entity.ReportJob) error
}

// SendReportInput is a rendered settlement report ready for delivery.
type SendReportInput struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// ReportSender delivers rendered settlement reports.
type ReportSender interface {
	Send(ctx context.Context, input SendReportInput) error
}
