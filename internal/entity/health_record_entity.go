package entity

import (
	"time"

	"github.com/google/uuid"
)

type HealthRecord struct {
	Id          uuid.UUID
	UserId      uuid.UUID
	Title       string
	RecordType  string
	RecordDate  time.Time
	Description string
	FileName    string
	FileUrl     string
	FileSize    int64
	CreatedAt   time.Time
	UpdatedAt   *time.Time
	DeletedAt   *time.Time
	IsDeleted   bool
}
