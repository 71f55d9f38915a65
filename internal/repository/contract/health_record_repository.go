package contract

import (
	"context"

	"qr-health-be/internal/entity"
	"qr-health-be/internal/repository/specification"

	"github.com/google/uuid"
)

type HealthRecordRepository interface {
	Create(ctx context.Context, record *entity.HealthRecord) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.HealthRecord, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.HealthRecord, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
