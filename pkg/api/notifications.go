package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"gasbot/pkg/models"
)

func (c *Client) ListNotifications(ctx context.Context) ([]*models.Notification, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, epNotifications, nil, &raw); err != nil {
		return nil, err
	}

	var list []*models.Notification
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}
	var wrapped struct {
		Notifications []*models.Notification `json:"notifications"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, fmt.Errorf("decode notification list: %w", err)
	}
	return wrapped.Notifications, nil
}

func (c *Client) MarkNotificationRead(ctx context.Context, notifID string) error {
	return c.do(ctx, http.MethodPatch, epNotificationRead(notifID), nil, nil)
}

func (c *Client) MarkAllNotificationsRead(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, epMarkAllRead, nil, nil)
}

func (c *Client) DeleteNotification(ctx context.Context, notifID string) error {
	return c.do(ctx, http.MethodDelete, epNotificationDelete(notifID), nil, nil)
}
