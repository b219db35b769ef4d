package email

import (
	"context"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/salon-ledger/backend/internal/application/adapter"
	"github.com/salon-ledger/backend/internal/domain/entity"
	"github.com/salon-ledger/backend/internal/integration/persistence"
	"github.com/salon-ledger/backend/internal/integration/persistence/model"
)

func newTestQueue(t *testing.T) adapter.ReportQueueRepository {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&model.ReportJobModel{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return persistence.NewReportQueueRepository(db)
}

func enqueueJob(t *testing.T, queue adapter.ReportQueueRepository) *entity.ReportJob {
	t.Helper()

	job := entity.NewReportJob(uuid.New(), "owner@example.com", "2026-08", 1500000, 400000, 1100000)
	if err := queue.Enqueue(context.Background(), job); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	return job
}

func TestWorker_SendsPendingReports(t *testing.T) {
	queue := newTestQueue(t)
	sender := NewMockReportSender()
	worker := NewWorker(queue, sender, DefaultWorkerConfig())

	job := enqueueJob(t, queue)
	worker.ProcessNow(context.Background())

	if len(sender.SentReports) != 1 {
		t.Fatalf("expected 1 sent report, got %d", len(sender.SentReports))
	}
	sent := sender.SentReports[0]
	if sent.To != "owner@example.com" {
		t.Errorf("expected recipient owner@example.com, got %s", sent.To)
	}
	if !strings.Contains(sent.Subject, job.YearMonth) {
		t.Errorf("expected subject to carry the month, got %q", sent.Subject)
	}
	if !strings.Contains(sent.Text, "1,500,000") {
		t.Errorf("expected formatted revenue in text body, got %q", sent.Text)
	}

	pending, err := queue.GetPendingJobs(context.Background(), 10)
	if err != nil {
		t.Fatalf("GetPendingJobs failed: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("expected no pending jobs after send, got %d", len(pending))
	}
}

func TestWorker_TemporaryFailureRetries(t *testing.T) {
	queue := newTestQueue(t)
	sender := NewMockReportSender()
	sender.ShouldFail = true
	worker := NewWorker(queue, sender, DefaultWorkerConfig())

	enqueueJob(t, queue)
	worker.ProcessNow(context.Background())

	pending, err := queue.GetPendingJobs(context.Background(), 10)
	if err != nil {
		t.Fatalf("GetPendingJobs failed: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected job back in the queue after temporary failure, got %d pending", len(pending))
	}
	if pending[0].Attempts != 1 {
		t.Errorf("expected 1 attempt recorded, got %d", pending[0].Attempts)
	}
	if pending[0].LastError == "" {
		t.Error("expected last error to be recorded")
	}

	sender.ShouldFail = false
	worker.ProcessNow(context.Background())

	if len(sender.SentReports) != 1 {
		t.Fatalf("expected report delivered on retry, got %d sent", len(sender.SentReports))
	}
}

func TestWorker_PermanentFailureDoesNotRetry(t *testing.T) {
	queue := newTestQueue(t)
	sender := NewMockReportSender()
	sender.ShouldFail = true
	sender.IsPermanent = true
	worker := NewWorker(queue, sender, DefaultWorkerConfig())

	enqueueJob(t, queue)
	worker.ProcessNow(context.Background())

	pending, err := queue.GetPendingJobs(context.Background(), 10)
	if err != nil {
		t.Fatalf("GetPendingJobs failed: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("expected permanently failed job to leave the queue, got %d pending", len(pending))
	}
}

func TestWorker_ExhaustedAttemptsFailPermanently(t *testing.T) {
	queue := newTestQueue(t)
	sender := NewMockReportSender()
	sender.ShouldFail = true
	worker := NewWorker(queue, sender, DefaultWorkerConfig())

	enqueueJob(t, queue)
	for i := 0; i < entity.MaxReportAttempts; i++ {
		worker.ProcessNow(context.Background())
	}

	pending, err := queue.GetPendingJobs(context.Background(), 10)
	if err != nil {
		t.Fatalf("GetPendingJobs failed: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("expected job to fail after %d attempts, got %d pending", entity.MaxReportAttempts, len(pending))
	}
}

func TestFormatWon(t *testing.T) {
	cases := []struct {
		amount int64
		want   string
	}{
		{0, "0"},
		{900, "900"},
		{1000, "1,000"},
		{1500000, "1,500,000"},
		{-45000, "-45,000"},
	}
	for _, tc := range cases {
		if got := formatWon(tc.amount); got != tc.want {
			t.Errorf("formatWon(%d) = %q, want %q", tc.amount, got, tc.want)
		}
	}
}
