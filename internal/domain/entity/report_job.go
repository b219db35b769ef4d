package entity

import (
	"time"

	"github.com/google/uuid"
)

// ReportJobStatus represents the lifecycle state of a settlement report email.
type ReportJobStatus string

const (
	ReportJobStatusPending    ReportJobStatus = "pending"
	ReportJobStatusProcessing ReportJobStatus = "processing"
	ReportJobStatusSent       ReportJobStatus = "sent"
	ReportJobStatusFailed     ReportJobStatus = "failed"
)

// MaxReportAttempts is the number of delivery attempts before a job is
// permanently failed.
const MaxReportAttempts = 3

// ReportJob is a queued monthly settlement report email. The settlement
// aggregator enqueues jobs; a background worker renders and sends them.
type ReportJob struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	RecipientEmail string
	YearMonth      string // "yyyy-MM"
	TotalRevenue   int64
	TotalExpense   int64
	NetProfit      int64
	Status         ReportJobStatus
	Attempts       int
	LastError      string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewReportJob creates a pending report job for one settled month.
func NewReportJob(userID uuid.UUID, recipientEmail, yearMonth string, totalRevenue, totalExpense, netProfit int64) *ReportJob {
	now := time.Now().UTC()

	return &ReportJob{
		ID:             uuid.New(),
		UserID:         userID,
		RecipientEmail: recipientEmail,
		YearMonth:      yearMonth,
		TotalRevenue:   totalRevenue,
		TotalExpense:   totalExpense,
		NetProfit:      netProfit,
		Status:         ReportJobStatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// MarkProcessing transitions the job to processing and counts the attempt.
func (j *ReportJob) MarkProcessing() {
	j.Status = ReportJobStatusProcessing
	j.Attempts++
	j.UpdatedAt = time.Now().UTC()
}

// MarkSent transitions the job to sent.
func (j *ReportJob) MarkSent() {
	j.Status = ReportJobStatusSent
	j.UpdatedAt = time.Now().UTC()
}

// MarkFailed records a delivery failure. Permanent failures and jobs with an
// exhausted attempt budget stay failed; everything else returns to pending
// for another attempt.
func (j *ReportJob) MarkFailed(reason string, permanent bool) {
	j.LastError = reason
	if permanent || j.Attempts >= MaxReportAttempts {
		j.Status = ReportJobStatusFailed
	} else {
		j.Status = ReportJobStatusPending
	}
	j.UpdatedAt = time.Now().UTC()
}
