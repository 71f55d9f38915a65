package service

import (
	"context"
	"errors"
	"time"

	"qr-health-be/internal/constant"
	"qr-health-be/internal/dto"
	"qr-health-be/internal/entity"
	"qr-health-be/internal/pkg/logger"
	"qr-health-be/internal/repository/specification"
	"qr-health-be/internal/repository/unitofwork"
	"qr-health-be/pkg/llm"
	"qr-health-be/pkg/prompt"

	"github.com/google/uuid"
)

// ErrSessionNotFound is returned when a session id does not exist or is
// owned by another user. Controllers map it to 404.
var ErrSessionNotFound = errors.New("chat session not found")

type IChatService interface {
	// Completion answers a stateless turn: the caller carries the history,
	// nothing is persisted.
	Completion(ctx context.Context, userId uuid.UUID, req *dto.ChatCompletionRequest) (*dto.ChatCompletionResponse, error)

	CreateSession(ctx context.Context, userId uuid.UUID) (*dto.CreateSessionResponse, error)
	GetAllSessions(ctx context.Context, userId uuid.UUID) ([]dto.GetAllSessionsResponse, error)
	GetChatHistory(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) ([]dto.GetChatHistoryResponse, error)
	DeleteSession(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) error
	SendChat(ctx context.Context, userId uuid.UUID, req *dto.SendChatRequest) (*dto.SendChatResponse, error)
}

type chatService struct {
	uowFactory unitofwork.RepositoryFactory
	provider   llm.Provider
	logger     logger.ILogger
}

func NewChatService(uowFactory unitofwork.RepositoryFactory, provider llm.Provider, log logger.ILogger) IChatService {
	return &chatService{
		uowFactory: uowFactory,
		provider:   provider,
		logger:     log,
	}
}

// assembleSystemMessage loads the user's most recent records and folds them
// into the policy prompt. A user with no records still gets the policy
// preamble, only the context block is empty.
func (s *chatService) assembleSystemMessage(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID) (llm.Message, error) {
	records, err := uow.HealthRecordRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.MostRecentByRecordDate{},
		specification.Limit{N: prompt.MaxContextRecords},
	)
	if err != nil {
		return llm.Message{}, err
	}

	return llm.Message{
		Role:    llm.RoleSystem,
		Content: prompt.BuildSystemPrompt(prompt.BuildRecordContext(records)),
	}, nil
}

// callModel makes the gateway call with the turn timeout, retrying once
// after a short backoff when the endpoint is unavailable. Malformed
// responses are not retried.
func (s *chatService) callModel(ctx context.Context, history []llm.Message) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, constant.GatewayTimeout)
	defer cancel()

	reply, err := s.provider.Chat(callCtx, history)
	if err == nil {
		return reply, nil
	}
	if !errors.Is(err, llm.ErrUnavailable) {
		return "", err
	}

	s.logger.Warn("ChatService", "Model endpoint unavailable, retrying once", map[string]interface{}{"error": err.Error()})

	select {
	case <-time.After(constant.GatewayRetryBackoff):
	case <-ctx.Done():
		return "", llm.ErrUnavailable
	}

	retryCtx, cancelRetry := context.WithTimeout(ctx, constant.GatewayTimeout)
	defer cancelRetry()
	return s.provider.Chat(retryCtx, history)
}

func (s *chatService) Completion(ctx context.Context, userId uuid.UUID, req *dto.ChatCompletionRequest) (*dto.ChatCompletionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	systemMsg, err := s.assembleSystemMessage(ctx, uow, userId)
	if err != nil {
		return nil, err
	}

	history := make([]llm.Message, 0, len(req.Messages)+1)
	history = append(history, systemMsg)
	for _, m := range req.Messages {
		if m.Role == constant.ChatMessageRoleSystem {
			// The policy prompt is authoritative; client system messages
			// are dropped.
			continue
		}
		history = append(history, llm.Message{Role: llm.Role(m.Role), Content: m.Content})
	}

	reply, err := s.callModel(ctx, history)
	if err != nil {
		return nil, err
	}

	return &dto.ChatCompletionResponse{Response: reply}, nil
}

func (s *chatService) CreateSession(ctx context.Context, userId uuid.UUID) (*dto.CreateSessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session := &entity.ChatSession{
		Id:        uuid.New(),
		UserId:    userId,
		Title:     "New Conversation",
		CreatedAt: time.Now(),
	}
	if err := uow.ChatSessionRepository().Create(ctx, session); err != nil {
		return nil, err
	}

	return &dto.CreateSessionResponse{Id: session.Id}, nil
}

func (s *chatService) GetAllSessions(ctx context.Context, userId uuid.UUID) ([]dto.GetAllSessionsResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	sessions, err := uow.ChatSessionRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.GetAllSessionsResponse, 0, len(sessions))
	for _, session := range sessions {
		responses = append(responses, dto.GetAllSessionsResponse{
			Id:        session.Id,
			Title:     session.Title,
			CreatedAt: session.CreatedAt,
			UpdatedAt: session.UpdatedAt,
		})
	}
	return responses, nil
}

// findOwnedSession resolves a session id under the caller's ownership.
func (s *chatService) findOwnedSession(ctx context.Context, uow unitofwork.UnitOfWork, userId, sessionId uuid.UUID) (*entity.ChatSession, error) {
	session, err := uow.ChatSessionRepository().FindOne(ctx,
		specification.ByID{ID: sessionId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

func (s *chatService) GetChatHistory(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) ([]dto.GetChatHistoryResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if _, err := s.findOwnedSession(ctx, uow, userId, sessionId); err != nil {
		return nil, err
	}

	messages, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.ByChatSessionID{ChatSessionID: sessionId},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.GetChatHistoryResponse, 0, len(messages))
	for _, message := range messages {
		responses = append(responses, dto.GetChatHistoryResponse{
			Id:        message.Id,
			Role:      message.Role,
			Content:   message.Content,
			CreatedAt: message.CreatedAt,
		})
	}
	return responses, nil
}

func (s *chatService) DeleteSession(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if _, err := s.findOwnedSession(ctx, uow, userId, sessionId); err != nil {
		return err
	}

	// Messages and session go together or not at all.
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.ChatMessageRepository().DeleteAllBySessionId(ctx, sessionId); err != nil {
		return err
	}
	if err := uow.ChatSessionRepository().Delete(ctx, sessionId); err != nil {
		return err
	}

	return uow.Commit()
}

// sessionTitle derives a session title from the opening message.
func sessionTitle(input string) string {
	runes := []rune(input)
	if len(runes) > constant.SessionTitleMaxLength {
		return string(runes[:constant.SessionTitleMaxLength])
	}
	return input
}

// SendChat runs one persisted conversation turn:
//
//  1. resolve or create the session (new sessions are titled from the
//     message prefix),
//  2. persist the user message — this commit is never rolled back, a model
//     failure later must not lose what the user typed,
//  3. assemble system prompt + stored history and call the model,
//  4. persist the assistant reply; if that write fails the reply is still
//     returned and the loss is logged.
func (s *chatService) SendChat(ctx context.Context, userId uuid.UUID, req *dto.SendChatRequest) (*dto.SendChatResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	var session *entity.ChatSession
	var err error
	if req.SessionId != nil {
		session, err = s.findOwnedSession(ctx, uow, userId, *req.SessionId)
		if err != nil {
			return nil, err
		}
	} else {
		session = &entity.ChatSession{
			Id:        uuid.New(),
			UserId:    userId,
			Title:     sessionTitle(req.Chat),
			CreatedAt: time.Now(),
		}
		if err := uow.ChatSessionRepository().Create(ctx, session); err != nil {
			return nil, err
		}
	}

	userMessage := &entity.ChatMessage{
		Id:            uuid.New(),
		Content:       req.Chat,
		Role:          constant.ChatMessageRoleUser,
		ChatSessionId: session.Id,
		CreatedAt:     time.Now(),
	}
	if err := uow.ChatMessageRepository().Create(ctx, userMessage); err != nil {
		return nil, err
	}

	systemMsg, err := s.assembleSystemMessage(ctx, uow, userId)
	if err != nil {
		return nil, err
	}

	stored, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.ByChatSessionID{ChatSessionID: session.Id},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	history := make([]llm.Message, 0, len(stored)+1)
	history = append(history, systemMsg)
	for _, m := range stored {
		history = append(history, llm.Message{Role: llm.Role(m.Role), Content: m.Content})
	}

	reply, err := s.callModel(ctx, history)
	if err != nil {
		// The user message stays persisted; the turn surfaces the failure.
		s.logger.Error("ChatService", "Model call failed for session turn", map[string]interface{}{
			"session_id": session.Id,
			"error":      err.Error(),
		})
		return nil, err
	}

	assistantMessage := &entity.ChatMessage{
		Id:            uuid.New(),
		Content:       reply,
		Role:          constant.ChatMessageRoleAssistant,
		ChatSessionId: session.Id,
		CreatedAt:     time.Now(),
	}
	if err := uow.ChatMessageRepository().Create(ctx, assistantMessage); err != nil {
		// The reply was already generated; losing the row is better than
		// losing the answer.
		s.logger.Error("ChatService", "Failed to persist assistant reply", map[string]interface{}{
			"session_id": session.Id,
			"error":      err.Error(),
		})
	}

	return &dto.SendChatResponse{
		SessionId: session.Id,
		Reply:     reply,
	}, nil
}
