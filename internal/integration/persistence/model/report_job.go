package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/salon-ledger/backend/internal/domain/entity"
)

// ReportJobModel represents the report_jobs table holding queued settlement
// report emails.
type ReportJobModel struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID         uuid.UUID `gorm:"type:uuid;index;not null"`
	RecipientEmail string    `gorm:"type:varchar(255);not null"`
	YearMonth      string    `gorm:"type:varchar(7);not null"`
	TotalRevenue   int64     `gorm:"not null"`
	TotalExpense   int64     `gorm:"not null"`
	NetProfit      int64     `gorm:"not null"`
	Status         string    `gorm:"type:varchar(20);index;not null"`
	Attempts       int       `gorm:"default:0"`
	LastError      string    `gorm:"type:text"`
	CreatedAt      time.Time `gorm:"not null"`
	UpdatedAt      time.Time `gorm:"not null"`
}

// TableName returns the table name for the ReportJobModel.
func (ReportJobModel) TableName() string {
	return "report_jobs"
}

// ToEntity converts a ReportJobModel to a domain ReportJob entity.
func (m *ReportJobModel) ToEntity() *entity.ReportJob {
	return &entity.ReportJob{
		ID:             m.ID,
		UserID:         m.UserID,
		RecipientEmail: m.RecipientEmail,
		YearMonth:      m.YearMonth,
		TotalRevenue:   m.TotalRevenue,
		TotalExpense:   m.TotalExpense,
		NetProfit:      m.NetProfit,
		Status:         entity.ReportJobStatus(m.Status),
		Attempts:       m.Attempts,
		LastError:      m.LastError,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

// ReportJobFromEntity creates a ReportJobModel from a domain ReportJob entity.
func ReportJobFromEntity(job *entity.ReportJob) *ReportJobModel {
	return &ReportJobModel{
		ID:             job.ID,
		UserID:         job.UserID,
		RecipientEmail: job.RecipientEmail,
		YearMonth:      job.YearMonth,
		TotalRevenue:   job.TotalRevenue,
		TotalExpense:   job.TotalExpense,
		NetProfit:      job.NetProfit,
		Status:         string(job.Status),
		Attempts:       job.Attempts,
		LastError:      job.LastError,
		CreatedAt:      job.CreatedAt,
		UpdatedAt:      job.UpdatedAt,
	}
}
