package entities

import "time"

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type ChatMessage struct {
	MessageID uint      `gorm:"primaryKey" json:"message_id"`
	SessionID string    `gorm:"index;size:36" json:"session_id"`
	UserID    string    `gorm:"index" json:"user_id"`
	Role      string    `json:"role"` // user|assistant
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
