package service

import (
	"time"

	"gasbot/pkg/api"
	"gasbot/pkg/logger"
	"gasbot/storage"
)

type IServiceManager interface {
	Session() SessionService
	Order() OrderService
	Driver() DriverService
	Notification() NotificationService
	Chat() ChatService
	API() *api.Client
}

type service struct {
	client              *api.Client
	sessionService      *sessionService
	orderService        OrderService
	driverService       DriverService
	notificationService NotificationService
	chatService         ChatService
}

// New wires one client runtime: the session service doubles as the API
// client's token source, so there is exactly one writer of token state.
func New(apiBaseURL string, timeout time.Duration, stg storage.IStorage, log logger.ILogger) IServiceManager {
	sess := newSessionService(stg, log)
	client := api.New(apiBaseURL, timeout, sess, log)
	sess.client = client

	return &service{
		client:              client,
		sessionService:      sess,
		orderService:        NewOrderService(client, stg, log),
		driverService:       NewDriverService(client, log),
		notificationService: NewNotificationService(client, log),
		chatService:         NewChatService(client, log),
	}
}

func (s *service) Session() SessionService           { return s.sessionService }
func (s *service) Order() OrderService               { return s.orderService }
func (s *service) Driver() DriverService             { return s.driverService }
func (s *service) Notification() NotificationService { return s.notificationService }
func (s *service) Chat() ChatService                 { return s.chatService }
func (s *service) API() *api.Client                  { return s.client }
