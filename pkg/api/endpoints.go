package api

import "fmt"

// REST paths under the versioned base URL.
const (
	epRegister       = "user/register/"
	epVerifyOTP      = "user/verify/"
	epLogin          = "user/login/"
	epLogout         = "user/logout/"
	epProfile        = "user/profile/"
	epRefresh        = "user/refresh/"
	epDeleteAccount  = "user/delete-account/"
	epForgotPassword = "user/forgot-password/"
	epResetPassword  = "user/reset-password/"

	epStartOrder    = "orders/start/"
	epFinalizeOrder = "orders/finalize/"
	epMyOrders      = "orders/my-orders/"

	epListDrivers = "drivers/list/"

	epNotifications = "notifications/"
	epMarkAllRead   = "notifications/mark-all-read/"

	epChat = "chat-gpt/"
)

func epOrderDetail(orderID string) string   { return fmt.Sprintf("orders/%s/", orderID) }
func epOrderCancel(orderID string) string   { return fmt.Sprintf("orders/%s/cancel/", orderID) }
func epOrderTrack(orderID string) string    { return fmt.Sprintf("orders/%s/track/", orderID) }
func epOrderStatus(orderID string) string   { return fmt.Sprintf("orders/%s/status/", orderID) }
func epTrackingDetails(orderID string) string {
	return fmt.Sprintf("orders/%s/tracking-details/", orderID)
}

func epNotificationRead(notifID string) string {
	return fmt.Sprintf("notifications/%s/read/", notifID)
}
func epNotificationDelete(notifID string) string {
	return fmt.Sprintf("notifications/%s/", notifID)
}

// WSTrackPath is the per-order path on the WebSocket host.
func WSTrackPath(orderID string) string { return fmt.Sprintf("/ws/track/%s/", orderID) }
