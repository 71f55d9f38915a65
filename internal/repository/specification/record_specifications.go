package specification

import (
	"gorm.io/gorm"
)

// ByRecordType filters health records by their type tag.
type ByRecordType struct {
	RecordType string
}

func (s ByRecordType) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("record_type = ?", s.RecordType)
}

// MostRecentByRecordDate orders records newest-first by their record date,
// not by insertion time.
type MostRecentByRecordDate struct{}

func (s MostRecentByRecordDate) Apply(db *gorm.DB) *gorm.DB {
	return db.Order("record_date DESC")
}
