package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"qr-health-be/internal/constant"
	"qr-health-be/internal/dto"
	"qr-health-be/internal/entity"
	"qr-health-be/internal/pkg/logger"
	"qr-health-be/internal/repository/specification"
	"qr-health-be/internal/repository/unitofwork"
	"qr-health-be/pkg/events"
	"qr-health-be/pkg/storage"

	"github.com/google/uuid"
)

// ErrRecordNotFound is returned when a record id does not exist or is owned
// by another user.
var ErrRecordNotFound = errors.New("health record not found")

// RecordFile carries an optional attachment accompanying a record.
type RecordFile struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

type IRecordService interface {
	CreateRecord(ctx context.Context, userId uuid.UUID, req *dto.CreateRecordRequest, file *RecordFile) (*dto.RecordResponse, error)
	GetAllRecords(ctx context.Context, userId uuid.UUID, recordType string) ([]dto.RecordResponse, error)
	GetRecord(ctx context.Context, userId uuid.UUID, recordId uuid.UUID) (*dto.RecordResponse, error)
	DeleteRecord(ctx context.Context, userId uuid.UUID, recordId uuid.UUID) error
	Dashboard(ctx context.Context, userId uuid.UUID) (*dto.DashboardResponse, error)
}

type recordService struct {
	uowFactory unitofwork.RepositoryFactory
	storage    storage.ObjectStorage
	eventBus   *events.Bus
	logger     logger.ILogger
}

func NewRecordService(uowFactory unitofwork.RepositoryFactory, store storage.ObjectStorage, eventBus *events.Bus, log logger.ILogger) IRecordService {
	return &recordService{
		uowFactory: uowFactory,
		storage:    store,
		eventBus:   eventBus,
		logger:     log,
	}
}

func recordToResponse(record *entity.HealthRecord) dto.RecordResponse {
	return dto.RecordResponse{
		Id:          record.Id,
		Title:       record.Title,
		RecordType:  record.RecordType,
		RecordDate:  record.RecordDate,
		Description: record.Description,
		FileName:    record.FileName,
		FileUrl:     record.FileUrl,
		FileSize:    record.FileSize,
		CreatedAt:   record.CreatedAt,
	}
}

func (s *recordService) CreateRecord(ctx context.Context, userId uuid.UUID, req *dto.CreateRecordRequest, file *RecordFile) (*dto.RecordResponse, error) {
	recordDate, err := time.Parse("2006-01-02", req.RecordDate)
	if err != nil {
		return nil, fmt.Errorf("invalid record_date: %w", err)
	}

	record := &entity.HealthRecord{
		Id:          uuid.New(),
		UserId:      userId,
		Title:       req.Title,
		RecordType:  req.RecordType,
		RecordDate:  recordDate,
		Description: req.Description,
		CreatedAt:   time.Now(),
	}

	// Upload first so a storage failure never leaves a row pointing at
	// nothing.
	if file != nil {
		key := fmt.Sprintf("records/%s/%s-%s", userId, record.Id, file.Name)
		url, err := s.storage.Upload(ctx, key, file.ContentType, file.Body)
		if err != nil {
			return nil, fmt.Errorf("upload attachment: %w", err)
		}
		record.FileName = file.Name
		record.FileUrl = url
		record.FileSize = file.Size
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.HealthRecordRepository().Create(ctx, record); err != nil {
		return nil, err
	}

	evt := events.New(constant.EventRecordUploaded, map[string]interface{}{
		"user_id":     userId.String(),
		"record_id":   record.Id.String(),
		"title":       record.Title,
		"record_type": record.RecordType,
	})
	if err := s.eventBus.Publish(ctx, constant.NotificationTopicName, evt); err != nil {
		s.logger.Warn("RecordService", "Failed to publish record event", map[string]interface{}{"error": err.Error()})
	}

	response := recordToResponse(record)
	return &response, nil
}

func (s *recordService) GetAllRecords(ctx context.Context, userId uuid.UUID, recordType string) ([]dto.RecordResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	specs := []specification.Specification{
		specification.UserOwnedBy{UserID: userId},
		specification.MostRecentByRecordDate{},
	}
	if recordType != "" {
		specs = append(specs, specification.ByRecordType{RecordType: recordType})
	}

	records, err := uow.HealthRecordRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.RecordResponse, 0, len(records))
	for _, record := range records {
		responses = append(responses, recordToResponse(record))
	}
	return responses, nil
}

func (s *recordService) GetRecord(ctx context.Context, userId uuid.UUID, recordId uuid.UUID) (*dto.RecordResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	record, err := uow.HealthRecordRepository().FindOne(ctx,
		specification.ByID{ID: recordId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, ErrRecordNotFound
	}

	response := recordToResponse(record)
	return &response, nil
}

func (s *recordService) DeleteRecord(ctx context.Context, userId uuid.UUID, recordId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	record, err := uow.HealthRecordRepository().FindOne(ctx,
		specification.ByID{ID: recordId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return err
	}
	if record == nil {
		return ErrRecordNotFound
	}

	if err := uow.HealthRecordRepository().Delete(ctx, recordId); err != nil {
		return err
	}

	// Rows are soft-deleted; the object can go now. A failed object delete
	// only leaves an orphan in the bucket.
	if record.FileUrl != "" {
		key := fmt.Sprintf("records/%s/%s-%s", userId, record.Id, record.FileName)
		if err := s.storage.Delete(ctx, key); err != nil {
			s.logger.Warn("RecordService", "Failed to delete stored attachment", map[string]interface{}{
				"record_id": recordId,
				"error":     err.Error(),
			})
		}
	}

	return nil
}

func (s *recordService) Dashboard(ctx context.Context, userId uuid.UUID) (*dto.DashboardResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	totalRecords, err := uow.HealthRecordRepository().Count(ctx, specification.UserOwnedBy{UserID: userId})
	if err != nil {
		return nil, err
	}

	totalSessions, err := uow.ChatSessionRepository().Count(ctx, specification.UserOwnedBy{UserID: userId})
	if err != nil {
		return nil, err
	}

	recent, err := uow.HealthRecordRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.MostRecentByRecordDate{},
		specification.Limit{N: 5},
	)
	if err != nil {
		return nil, err
	}

	recentResponses := make([]dto.RecordResponse, 0, len(recent))
	for _, record := range recent {
		recentResponses = append(recentResponses, recordToResponse(record))
	}

	return &dto.DashboardResponse{
		TotalRecords:  totalRecords,
		TotalSessions: totalSessions,
		RecentRecords: recentResponses,
	}, nil
}
