package models

// Role distinguishes who produced a stored chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatMessage is one persisted turn of a conversation. Append-only;
// sequence order within a (user, conversation) pair is insertion order.
type ChatMessage struct {
	UserID         string `json:"user_id"`
	ConversationID string `json:"conversation_id"`
	Type           Role   `json:"message_type"`
	Content        string `json:"content"`
}
