package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"qr-health-be/internal/constant"
	"qr-health-be/internal/dto"
	"qr-health-be/internal/model"
	"qr-health-be/internal/pkg/logger"
	"qr-health-be/internal/pkg/mailer"
	"qr-health-be/internal/repository"
	"qr-health-be/internal/repository/specification"
	"qr-health-be/internal/repository/unitofwork"
	"qr-health-be/pkg/events"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// NotificationDelivery defines how to push real-time updates.
// Typically implemented by the WebSocket Hub.
type NotificationDelivery interface {
	Send(userID uuid.UUID, notification model.Notification)
}

type NotificationService struct {
	repo         repository.NotificationRepository
	uowFactory   unitofwork.RepositoryFactory
	eventBus     *events.Bus
	delivery     NotificationDelivery
	emailService mailer.IEmailService
	logger       logger.ILogger
}

func NewNotificationService(
	repo repository.NotificationRepository,
	uowFactory unitofwork.RepositoryFactory,
	eventBus *events.Bus,
	delivery NotificationDelivery,
	emailService mailer.IEmailService,
	log logger.ILogger,
) *NotificationService {
	return &NotificationService{
		repo:         repo,
		uowFactory:   uowFactory,
		eventBus:     eventBus,
		delivery:     delivery,
		emailService: emailService,
		logger:       log,
	}
}

// Start begins consuming domain events. It returns once the subscription
// is active; handling runs in the background until ctx is cancelled.
func (s *NotificationService) Start(ctx context.Context) error {
	err := s.eventBus.Subscribe(ctx, constant.NotificationTopicName, s.handleEvent)
	if err != nil {
		s.logger.Error("NotificationService", "Failed to start notification subscriber", map[string]interface{}{"error": err.Error()})
		return err
	}
	s.logger.Info("NotificationService", "Notification service started", map[string]interface{}{"topic": constant.NotificationTopicName})
	return nil
}

func (s *NotificationService) handleEvent(ctx context.Context, event events.Event) error {
	s.logger.Info("NotificationService", fmt.Sprintf("Processing event: %s", event.EventType()), map[string]interface{}{"type": event.EventType()})

	switch event.EventType() {
	case constant.EventUserRegistered:
		return s.handleUserRegistered(ctx, event)
	case constant.EventRecordUploaded:
		return s.handleRecordUploaded(ctx, event)
	default:
		// Unknown events are acked, not retried.
		s.logger.Warn("NotificationService", "Unhandled event type", map[string]interface{}{"type": event.EventType()})
		return nil
	}
}

func (s *NotificationService) handleUserRegistered(ctx context.Context, event events.Event) error {
	payload := event.Payload()
	userId, err := uuid.Parse(stringField(payload, "user_id"))
	if err != nil {
		s.logger.Warn("NotificationService", "Event carries invalid user_id", map[string]interface{}{"error": err.Error()})
		return nil
	}
	fullName := stringField(payload, "full_name")
	email := stringField(payload, "email")

	notification := model.Notification{
		ID:        uuid.New(),
		UserID:    userId,
		TypeCode:  constant.EventUserRegistered,
		Title:     "Welcome to QR Health",
		Body:      fmt.Sprintf("Hi %s, your account is ready. Upload a health record to get started.", fullName),
		CreatedAt: time.Now(),
	}
	if err := s.dispatch(ctx, notification); err != nil {
		return err
	}

	if email != "" {
		if err := s.emailService.SendWelcome(email, fullName); err != nil {
			s.logger.Warn("NotificationService", "Failed to send welcome email", map[string]interface{}{"error": err.Error()})
		}
	}
	return nil
}

func (s *NotificationService) handleRecordUploaded(ctx context.Context, event events.Event) error {
	payload := event.Payload()
	userId, err := uuid.Parse(stringField(payload, "user_id"))
	if err != nil {
		s.logger.Warn("NotificationService", "Event carries invalid user_id", map[string]interface{}{"error": err.Error()})
		return nil
	}
	title := stringField(payload, "title")

	metadata, _ := json.Marshal(map[string]interface{}{
		"record_id":   payload["record_id"],
		"record_type": payload["record_type"],
	})

	notification := model.Notification{
		ID:        uuid.New(),
		UserID:    userId,
		TypeCode:  constant.EventRecordUploaded,
		Title:     "Health record added",
		Body:      fmt.Sprintf("\"%s\" was added to your records.", title),
		Metadata:  datatypes.JSON(metadata),
		CreatedAt: time.Now(),
	}
	if err := s.dispatch(ctx, notification); err != nil {
		return err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err == nil && user != nil {
		if err := s.emailService.SendRecordUploaded(user.Email, title); err != nil {
			s.logger.Warn("NotificationService", "Failed to send record email", map[string]interface{}{"error": err.Error()})
		}
	}
	return nil
}

// dispatch persists the notification then pushes it to connected clients.
func (s *NotificationService) dispatch(ctx context.Context, notification model.Notification) error {
	if err := s.repo.CreateNotification(ctx, &notification); err != nil {
		s.logger.Error("NotificationService", "Failed to persist notification", map[string]interface{}{"error": err.Error()})
		return err
	}
	s.delivery.Send(notification.UserID, notification)
	return nil
}

func (s *NotificationService) List(ctx context.Context, userId uuid.UUID, limit, offset int) (*dto.NotificationListResponse, error) {
	notifications, total, err := s.repo.GetNotificationsByUserID(ctx, userId, limit, offset)
	if err != nil {
		return nil, err
	}
	unread, err := s.repo.GetUnreadCount(ctx, userId)
	if err != nil {
		return nil, err
	}
	return &dto.NotificationListResponse{
		Notifications: notifications,
		Total:         total,
		Unread:        unread,
	}, nil
}

func (s *NotificationService) MarkAsRead(ctx context.Context, notificationId uuid.UUID) error {
	return s.repo.MarkAsRead(ctx, notificationId)
}

func (s *NotificationService) MarkAllAsRead(ctx context.Context, userId uuid.UUID) error {
	return s.repo.MarkAllAsRead(ctx, userId)
}

func stringField(payload map[string]interface{}, key string) string {
	value, _ := payload[key].(string)
	return value
}
