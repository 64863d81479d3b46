package services

import (
	"anongram/contract"
	"anongram/domain"
)

type IChatService interface {
	GetConversation(a, b domain.ParticipantID) ([]domain.ChatMessage, error)
}

type ChatService struct {
	store contract.MessageStore
}

func NewChatService(store contract.MessageStore) *ChatService {
	return &ChatService{store: store}
}

// GetConversation returns every message exchanged between the two
// participants, ascending by timestamp. The pair is unordered: callers may
// pass the identifiers in either direction.
func (s *ChatService) GetConversation(a, b domain.ParticipantID) ([]domain.ChatMessage, error) {
	return s.store.QueryByParticipants(a, b)
}
