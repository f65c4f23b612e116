package service

import (
	"context"

	"gasbot/pkg/api"
	"gasbot/pkg/logger"
)

type ChatService interface {
	Send(ctx context.Context, message string) (string, error)
}

type chatService struct {
	client *api.Client
	log    logger.ILogger
}

func NewChatService(client *api.Client, log logger.ILogger) ChatService {
	return &chatService{client: client, log: log}
}

func (s *chatService) Send(ctx context.Context, message string) (string, error) {
	return s.client.Chat(ctx, message)
}
