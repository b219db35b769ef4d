package email

import (
	"context"
	"log/slog"
	"time"

	"github.com/salon-ledger/backend/internal/application/adapter"
	"github.com/salon-ledger/backend/internal/domain/entity"
	domainerror "github.com/salon-ledger/backend/internal/domain/error"
)

// Worker processes the report queue and sends settlement report emails.
type Worker struct {
	queue        adapter.ReportQueueRepository
	sender       adapter.ReportSender
	pollInterval time.Duration
	batchSize    int
}

// WorkerConfig holds configuration for the report worker.
type WorkerConfig struct {
	PollInterval time.Duration
	BatchSize    int
}

// DefaultWorkerConfig returns the default worker configuration.
func DefaultWorkerConfig() WorkerConfig {
	return WorkerConfig{
		PollInterval: 5 * time.Second,
		BatchSize:    10,
	}
}

// NewWorker creates a new report worker.
func NewWorker(queue adapter.ReportQueueRepository, sender adapter.ReportSender, config WorkerConfig) *Worker {
	return &Worker{
		queue:        queue,
		sender:       sender,
		pollInterval: config.PollInterval,
		batchSize:    config.BatchSize,
	}
}

// Start begins the worker loop. It blocks until the context is cancelled.
func (w *Worker) Start(ctx context.Context) {
	slog.Info("report worker started",
		"poll_interval", w.pollInterval,
		"batch_size", w.batchSize,
	)

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	// Process immediately on start, then on ticker.
	w.processBatch(ctx)

	for {
		select {
		case <-ctx.Done():
			slog.Info("report worker shutting down")
			return
		case <-ticker.C:
			w.processBatch(ctx)
		}
	}
}

// processBatch fetches and processes a batch of pending report jobs.
func (w *Worker) processBatch(ctx context.Context) {
	jobs, err := w.queue.GetPendingJobs(ctx, w.batchSize)
	if err != nil {
		slog.Error("failed to get pending report jobs", "error", err)
		return
	}

	for _, job := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
			w.processJob(ctx, job)
		}
	}
}

// processJob processes a single report job. Failures mark the job and never
// stop the worker.
func (w *Worker) processJob(ctx context.Context, job *entity.ReportJob) {
	logger := slog.With(
		"job_id", job.ID,
		"recipient", job.RecipientEmail,
		"year_month", job.YearMonth,
	)

	job.MarkProcessing()
	if err := w.queue.Update(ctx, job); err != nil {
		logger.Error("failed to mark report job as processing", "error", err)
		return
	}

	if err := w.sender.Send(ctx, RenderReport(job)); err != nil {
		logger.Error("failed to send report", "error", err)
		w.handleFailure(ctx, job, err)
		return
	}

	job.MarkSent()
	if err := w.queue.Update(ctx, job); err != nil {
		logger.Error("failed to mark report job as sent", "error", err)
		return
	}
	logger.Info("settlement report sent")
}

// handleFailure records a delivery failure on the job.
func (w *Worker) handleFailure(ctx context.Context, job *entity.ReportJob, err error) {
	job.MarkFailed(err.Error(), domainerror.IsPermanent(err))

	if updateErr := w.queue.Update(ctx, job); updateErr != nil {
		slog.Error("failed to update report job after failure",
			"job_id", job.ID,
			"error", updateErr,
		)
	}

	if job.Status == entity.ReportJobStatusFailed {
		slog.Warn("report job permanently failed",
			"job_id", job.ID,
			"attempts", job.Attempts,
			"last_error", job.LastError,
		)
	} else {
		slog.Info("report job scheduled for retry",
			"job_id", job.ID,
			"attempts", job.Attempts,
		)
	}
}

// ProcessNow processes all pending reports immediately (useful for testing).
func (w *Worker) ProcessNow(ctx context.Context) {
	w.processBatch(ctx)
}
