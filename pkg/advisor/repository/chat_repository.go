package repository

import "agrisentry/entities"

type ChatRepository interface {
	// Append stores msgs in one transaction, in order.
	Append(msgs ...*entities.ChatMessage) error
	Session(uid, sessionID string) ([]entities.ChatMessage, error)
}
