package mapper

import (
	"time"

	"qr-health-be/internal/entity"
	"qr-health-be/internal/model"

	"gorm.io/gorm"
)

type RecordMapper struct{}

func NewRecordMapper() *RecordMapper {
	return &RecordMapper{}
}

func (m *RecordMapper) ToEntity(r *model.HealthRecord) *entity.HealthRecord {
	if r == nil {
		return nil
	}

	var deletedAt *time.Time
	if r.DeletedAt.Valid {
		t := r.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !r.UpdatedAt.IsZero() {
		t := r.UpdatedAt
		updatedAt = &t
	}

	return &entity.HealthRecord{
		Id:          r.Id,
		UserId:      r.UserId,
		Title:       r.Title,
		RecordType:  r.RecordType,
		RecordDate:  r.RecordDate,
		Description: r.Description,
		FileName:    r.FileName,
		FileUrl:     r.FileUrl,
		FileSize:    r.FileSize,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   updatedAt,
		DeletedAt:   deletedAt,
		IsDeleted:   r.DeletedAt.Valid,
	}
}

func (m *RecordMapper) ToModel(r *entity.HealthRecord) *model.HealthRecord {
	if r == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if r.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *r.DeletedAt, Valid: true}
	} else if r.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if r.UpdatedAt != nil {
		updatedAt = *r.UpdatedAt
	}

	return &model.HealthRecord{
		Id:          r.Id,
		UserId:      r.UserId,
		Title:       r.Title,
		RecordType:  r.RecordType,
		RecordDate:  r.RecordDate,
		Description: r.Description,
		FileName:    r.FileName,
		FileUrl:     r.FileUrl,
		FileSize:    r.FileSize,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   updatedAt,
		DeletedAt:   deletedAt,
	}
}

func (m *RecordMapper) ToEntities(records []*model.HealthRecord) []*entity.HealthRecord {
	entities := make([]*entity.HealthRecord, len(records))
	for i, r := range records {
		entities[i] = m.ToEntity(r)
	}
	return entities
}
