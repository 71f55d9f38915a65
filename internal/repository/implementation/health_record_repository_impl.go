package implementation

import (
	"context"
	"errors"

	"qr-health-be/internal/entity"
	"qr-health-be/internal/mapper"
	"qr-health-be/internal/model"
	"qr-health-be/internal/repository/contract"
	"qr-health-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type HealthRecordRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.RecordMapper
}

func NewHealthRecordRepository(db *gorm.DB) contract.HealthRecordRepository {
	return &HealthRecordRepositoryImpl{
		db:     db,
		mapper: mapper.NewRecordMapper(),
	}
}

func (r *HealthRecordRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *HealthRecordRepositoryImpl) Create(ctx context.Context, record *entity.HealthRecord) error {
	m := r.mapper.ToModel(record)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*record = *r.mapper.ToEntity(m)
	return nil
}

func (r *HealthRecordRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.HealthRecord{}, id).Error
}

func (r *HealthRecordRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.HealthRecord, error) {
	var m model.HealthRecord
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *HealthRecordRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.HealthRecord, error) {
	var models []*model.HealthRecord
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *HealthRecordRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.HealthRecord{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
