package repositoryImp

import (
	"gorm.io/gorm"

	"agrisentry/entities"
	"agrisentry/pkg/advisor/repository"
)

type chatRepo struct{ db *gorm.DB }

func New(db *gorm.DB) repository.ChatRepository { return &chatRepo{db} }

func (r *chatRepo) Append(msgs ...*entities.ChatMessage) error {
	if len(msgs) == 0 {
		return nil
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		for _, m := range msgs {
			if err := tx.Create(m).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *chatRepo) Session(uid, sessionID string) ([]entities.ChatMessage, error) {
	var ms []entities.ChatMessage
	err := r.db.Where("user_id = ? AND session_id = ?", uid, sessionID).
		Order("message_id ASC").Find(&ms).Error
	return ms, err
}
