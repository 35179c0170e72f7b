package services

import (
	"context"
	"fmt"

	"studybud/internal/database"
	"studybud/internal/models"
)

type MessageService struct {
	db database.MessageRepository
}

func NewMessageService(db database.MessageRepository) *MessageService {
	return &MessageService{db: db}
}

// DeletableMessage returns the message if userID wrote it. Room hosts get
// no special rights over other people's messages.
func (s *MessageService) DeletableMessage(ctx context.Context, messageID, userID int64) (*models.Message, error) {
	msg, err := s.db.GetMessageByID(ctx, messageID)
	if err != nil {
		return nil, notFound(err)
	}
	if !msg.IsAuthoredBy(userID) {
		return nil, ErrForbidden
	}
	return msg, nil
}

func (s *MessageService) DeleteMessage(ctx context.Context, messageID, userID int64) error {
	if _, err := s.DeletableMessage(ctx, messageID, userID); err != nil {
		return err
	}
	if err := s.db.DeleteMessage(ctx, messageID); err != nil {
		return fmt.Errorf("failed to delete message: %w", notFound(err))
	}
	return nil
}
