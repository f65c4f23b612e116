package models

import (
	"strings"
	"time"
)

const (
	OrderStatusPending        = "pending"
	OrderStatusConfirmed      = "confirmed"
	OrderStatusOutForDelivery = "out_for_delivery"
	OrderStatusDelivered      = "delivered"
	OrderStatusCancelled      = "cancelled"
)

// TempOrderIDPrefix marks client-local order ids assigned before the
// backend has acknowledged the order.
const TempOrderIDPrefix = "temp-"

type OrderItem struct {
	Name string `json:"name"`
	Qty  int    `json:"qty"`
}

type Order struct {
	OrderID         string      `json:"order_id"`
	CreatedAt       time.Time   `json:"created_at"`
	TotalPrice      float64     `json:"total_price"`
	Status          string      `json:"status"`
	Items           []OrderItem `json:"items"`
	Weight          float64     `json:"weight"`
	DeliveryAddress string      `json:"delivery_address"`
	Phone           string      `json:"phone"`
	PaymentMethod   string      `json:"payment_method"`
	Notes           string      `json:"notes"`

	// Local is true for optimistic records that have not yet been
	// confirmed by a server fetch.
	Local bool `json:"_local,omitempty"`
}

func (o *Order) HasTempID() bool {
	return strings.HasPrefix(o.OrderID, TempOrderIDPrefix)
}
