package core

import (
	"context"
	"fmt"

	"shopfront.dev/ecommerce-backend/internal/store"
)

type ChatStore interface {
	CreateChatMessage(ctx context.Context, msg *store.ChatMessage) error
	GetChatMessagesByUserID(ctx context.Context, userID string) ([]store.ChatMessage, error)
}

type ChatService struct {
	messages ChatStore
}

func NewChatService(messages ChatStore) *ChatService {
	return &ChatService{messages: messages}
}

// History returns the user's messages oldest first. An empty userID matches
// nothing.
func (s *ChatService) History(ctx context.Context, userID string) ([]store.ChatMessage, error) {
	if userID == "" {
		return []store.ChatMessage{}, nil
	}
	messages, err := s.messages.GetChatMessagesByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get chat history for %s: %w", userID, err)
	}
	return messages, nil
}

// SaveMessage stores one message. messageType is kept as given; "user" and
// "bot" are the values clients send.
func (s *ChatService) SaveMessage(ctx context.Context, userID, content, messageType string) (*store.ChatMessage, error) {
	msg := store.ChatMessage{
		UserID:      userID,
		Content:     content,
		MessageType: messageType,
	}
	if err := s.messages.CreateChatMessage(ctx, &msg); err != nil {
		return nil, fmt.Errorf("failed to store chat message: %w", err)
	}
	return &msg, nil
}
