package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateRecordRequest struct {
	Title       string `json:"title" form:"title" validate:"required"`
	RecordType  string `json:"record_type" form:"record_type" validate:"required"`
	RecordDate  string `json:"record_date" form:"record_date" validate:"required,datetime=2006-01-02"`
	Description string `json:"description" form:"description"`
}

type RecordResponse struct {
	Id          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	RecordType  string    `json:"record_type"`
	RecordDate  time.Time `json:"record_date"`
	Description string    `json:"description,omitempty"`
	FileName    string    `json:"file_name,omitempty"`
	FileUrl     string    `json:"file_url,omitempty"`
	FileSize    int64     `json:"file_size,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type DashboardResponse struct {
	TotalRecords  int64            `json:"total_records"`
	TotalSessions int64            `json:"total_sessions"`
	RecentRecords []RecordResponse `json:"recent_records"`
}
