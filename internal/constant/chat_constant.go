package constant

import "time"

const (
	ChatMessageRoleUser      = "user"
	ChatMessageRoleAssistant = "assistant"
	ChatMessageRoleSystem    = "system"

	// SessionTitleMaxLength bounds the title prefix taken from the first
	// user message of a new session.
	SessionTitleMaxLength = 50

	// ChatFailureReply is what the caller sees when the model endpoint
	// fails a turn; the user's message stays persisted for a re-send.
	ChatFailureReply = "I'm sorry, I couldn't reach the AI assistant right now. Please try again in a moment."

	// GatewayTimeout caps one model call issued by a chat turn.
	GatewayTimeout = 120 * time.Second

	// GatewayRetryBackoff is the wait before the single retry of an
	// unavailable endpoint.
	GatewayRetryBackoff = 2 * time.Second
)

const (
	EventRecordUploaded = "RECORD_UPLOADED"
	EventUserRegistered = "USER_REGISTERED"

	// NotificationTopicName is the watermill topic carrying domain events
	// consumed by the notification service.
	NotificationTopicName = "NOTIFICATION_EVENTS"
)
