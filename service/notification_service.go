package service

import (
	"context"
	"fmt"

	"gasbot/pkg/api"
	"gasbot/pkg/logger"
	"gasbot/pkg/models"
)

type NotificationService interface {
	// List merges the built-in local tips with the server's
	// notifications, deduplicated by identifier.
	List(ctx context.Context) ([]*models.Notification, error)
	MarkRead(ctx context.Context, notifID string) error
	MarkAllRead(ctx context.Context) error
	Delete(ctx context.Context, notifID string) error
}

type notificationService struct {
	client *api.Client
	log    logger.ILogger
}

func NewNotificationService(client *api.Client, log logger.ILogger) NotificationService {
	return &notificationService{client: client, log: log}
}

// localTips are client-synthesized, always-available notifications. The
// sys: id namespace keeps them disjoint from server-issued ids.
var localTips = []*models.Notification{
	{
		ID:      models.LocalNotificationPrefix + "orders:howto",
		Title:   "Placing an order",
		Message: "Pick a package, confirm your delivery address and payment method, and your cylinder is on its way.",
		Type:    "system",
		Local:   true,
	},
	{
		ID:      models.LocalNotificationPrefix + "tracking:feature",
		Title:   "Live tracking",
		Message: "Once a driver is assigned you can follow the delivery on the tracking screen in real time.",
		Type:    "system",
		Local:   true,
	},
	{
		ID:      models.LocalNotificationPrefix + "safety:tips",
		Title:   "Handle cylinders safely",
		Message: "Keep cylinders upright, away from heat, and check the seal on delivery.",
		Type:    "system",
		Local:   true,
	},
	{
		ID:      models.LocalNotificationPrefix + "support:contact",
		Title:   "Need help?",
		Message: "The support chat answers questions about prices, delivery and safety around the clock.",
		Type:    "system",
		Local:   true,
	},
}

func (s *notificationService) List(ctx context.Context) ([]*models.Notification, error) {
	serverList, err := s.client.ListNotifications(ctx)
	if err != nil {
		// Tips still render when the backend is unreachable.
		s.log.Warning("notification fetch failed, serving local tips", logger.Error(err))
		serverList = nil
	}
	return MergeNotifications(serverList, localTips), nil
}

// MergeNotifications merges server notifications with local tips keyed
// by identifier. On the (never expected) collision the server copy wins.
func MergeNotifications(server, local []*models.Notification) []*models.Notification {
	seen := make(map[string]bool, len(server)+len(local))
	out := make([]*models.Notification, 0, len(server)+len(local))
	for _, n := range server {
		if n == nil || seen[n.ID] {
			continue
		}
		seen[n.ID] = true
		out = append(out, n)
	}
	for _, n := range local {
		if n == nil || seen[n.ID] {
			continue
		}
		seen[n.ID] = true
		out = append(out, n)
	}
	return out
}

func (s *notificationService) MarkRead(ctx context.Context, notifID string) error {
	n := &models.Notification{ID: notifID}
	if n.IsLocal() {
		return nil
	}
	return s.client.MarkNotificationRead(ctx, notifID)
}

func (s *notificationService) MarkAllRead(ctx context.Context) error {
	return s.client.MarkAllNotificationsRead(ctx)
}

func (s *notificationService) Delete(ctx context.Context, notifID string) error {
	n := &models.Notification{ID: notifID}
	if n.IsLocal() {
		return fmt.Errorf("notification %s is client-local and cannot be deleted", notifID)
	}
	return s.client.DeleteNotification(ctx, notifID)
}
