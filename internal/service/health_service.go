package service

import (
	"context"
	"time"

	"qr-health-be/internal/dto"
	"qr-health-be/pkg/llm"

	"github.com/patrickmn/go-cache"
	"gorm.io/gorm"
)

const modelListCacheKey = "model_list"

type IHealthService interface {
	// Check never fails; an unreachable dependency is reported as degraded.
	Check(ctx context.Context) *dto.HealthResponse
}

type healthService struct {
	db       *gorm.DB
	provider llm.Provider
	cache    *cache.Cache
}

func NewHealthService(db *gorm.DB, provider llm.Provider) IHealthService {
	return &healthService{
		db:       db,
		provider: provider,
		// Model tags change rarely; probe at most every 30 seconds.
		cache: cache.New(30*time.Second, time.Minute),
	}
}

func (s *healthService) storeHealthy(ctx context.Context) bool {
	sqlDB, err := s.db.DB()
	if err != nil {
		return false
	}
	return sqlDB.PingContext(ctx) == nil
}

func (s *healthService) modelList(ctx context.Context) []string {
	if cached, ok := s.cache.Get(modelListCacheKey); ok {
		return cached.([]string)
	}
	models, err := s.provider.ListModels(ctx)
	if err != nil {
		return []string{}
	}
	s.cache.Set(modelListCacheKey, models, cache.DefaultExpiration)
	return models
}

func (s *healthService) Check(ctx context.Context) *dto.HealthResponse {
	modelUp := s.provider.Healthy(ctx)
	storeUp := s.storeHealthy(ctx)

	status := "healthy"
	if !modelUp || !storeUp {
		status = "degraded"
	}

	models := []string{}
	if modelUp {
		models = s.modelList(ctx)
	}

	return &dto.HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC(),
		Services: dto.ServiceStatus{
			Model: modelUp,
			Store: storeUp,
		},
		Models: models,
	}
}
