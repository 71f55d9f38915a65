package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type HealthRecord struct {
	Id          uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId      uuid.UUID      `gorm:"type:uuid;not null;index"`
	Title       string         `gorm:"type:varchar(255);not null"`
	RecordType  string         `gorm:"type:varchar(50);not null"`
	RecordDate  time.Time      `gorm:"type:date;not null;index"`
	Description string         `gorm:"type:text"`
	FileName    string         `gorm:"type:varchar(255)"`
	FileUrl     string         `gorm:"type:text"`
	FileSize    int64          `gorm:"type:bigint"`
	CreatedAt   time.Time      `gorm:"autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime"`
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

func (HealthRecord) TableName() string {
	return "health_records"
}
