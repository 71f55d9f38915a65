package dto

import (
	"time"

	"github.com/google/uuid"
)

// ChatMessagePayload mirrors one role/content pair on the wire.
type ChatMessagePayload struct {
	Role    string `json:"role" validate:"required,oneof=user assistant system"`
	Content string `json:"content" validate:"required"`
}

// ChatCompletionRequest is the body of POST /chat.
type ChatCompletionRequest struct {
	Messages []ChatMessagePayload `json:"messages"`
}

type ChatCompletionResponse struct {
	Response string `json:"response"`
}

// SendChatRequest drives one session turn. SessionId may be nil; a session
// is then created, titled from the message prefix.
type SendChatRequest struct {
	SessionId *uuid.UUID `json:"session_id"`
	Chat      string     `json:"chat" validate:"required"`
}

type SendChatResponse struct {
	SessionId uuid.UUID `json:"session_id"`
	Reply     string    `json:"reply"`
}

type CreateSessionResponse struct {
	Id uuid.UUID `json:"id"`
}

type GetAllSessionsResponse struct {
	Id        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

type GetChatHistoryResponse struct {
	Id        uuid.UUID `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
