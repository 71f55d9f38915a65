package entity

import (
	"time"

	"github.com/google/uuid"
)

// ChatMessage is one persisted message of a session. Role is stored as the
// string value of llm.Role; no alternation invariant is enforced, the store
// accepts any role sequence.
type ChatMessage struct {
	Id            uuid.UUID
	Content       string
	Role          string
	ChatSessionId uuid.UUID
	CreatedAt     time.Time
	UpdatedAt     *time.Time
	DeletedAt     *time.Time
	IsDeleted     bool
}
