package models

import (
	"strings"
	"time"
)

// LocalNotificationPrefix namespaces client-synthesized tips so their ids
// can never collide with server-issued notification ids.
const LocalNotificationPrefix = "sys:"

type Notification struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
	Local     bool      `json:"_local,omitempty"`
}

func (n *Notification) IsLocal() bool {
	return n.Local || strings.HasPrefix(n.ID, LocalNotificationPrefix)
}
