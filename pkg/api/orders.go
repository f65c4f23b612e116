package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"gasbot/pkg/models"
)

type StartOrderRequest struct {
	Quantity        int     `json:"quantity"`
	Weight          string  `json:"weight"`
	DeliveryAddress string  `json:"delivery_address"`
	PaymentMethod   string  `json:"payment_method"`
	Notes           string  `json:"notes"`
	DeliveryType    string  `json:"delivery_type"`
	ScheduledTime   *string `json:"scheduled_time"`
	Phone           string  `json:"phone"`
	ProductID       string  `json:"product_id"`
	IsCustom        bool    `json:"is_custom,omitempty"`
	CustomWeight    string  `json:"custom_weight,omitempty"`
	CustomCylinders int     `json:"custom_cylinders,omitempty"`
}

type PaynowInfo struct {
	RedirectURL string `json:"redirect_url"`
}

type StartOrderResponse struct {
	OrderID        string        `json:"order_id"`
	Order          *models.Order `json:"order"`
	TotalPrice     float64       `json:"total_price"`
	Paynow         *PaynowInfo   `json:"paynow"`
	MerchantNumber string        `json:"merchant_number"`
}

// OrderIDValue returns the server-assigned id wherever the backend put it.
func (r *StartOrderResponse) OrderIDValue() string {
	if r.OrderID != "" {
		return r.OrderID
	}
	if r.Order != nil {
		return r.Order.OrderID
	}
	return ""
}

func (c *Client) StartOrder(ctx context.Context, req StartOrderRequest) (*StartOrderResponse, error) {
	var resp StartOrderResponse
	if err := c.do(ctx, http.MethodPost, epStartOrder, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) FinalizeOrder(ctx context.Context, orderID string) error {
	return c.do(ctx, http.MethodPost, epFinalizeOrder, map[string]string{"order_id": orderID}, nil)
}

// MyOrders fetches the authoritative order list. The backend answers
// either with a bare array or wrapped in {"orders": [...]}.
func (c *Client) MyOrders(ctx context.Context) ([]*models.Order, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, epMyOrders, nil, &raw); err != nil {
		return nil, err
	}
	return decodeOrderList(raw)
}

func decodeOrderList(raw json.RawMessage) ([]*models.Order, error) {
	var orders []*models.Order
	if err := json.Unmarshal(raw, &orders); err == nil {
		return orders, nil
	}
	var wrapped struct {
		Orders []*models.Order `json:"orders"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, fmt.Errorf("decode order list: %w", err)
	}
	return wrapped.Orders, nil
}

func (c *Client) OrderDetail(ctx context.Context, orderID string) (*models.Order, error) {
	var order models.Order
	if err := c.do(ctx, http.MethodGet, epOrderDetail(orderID), nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *Client) CancelOrder(ctx context.Context, orderID string) error {
	return c.do(ctx, http.MethodPost, epOrderCancel(orderID), nil, nil)
}

func (c *Client) OrderStatus(ctx context.Context, orderID string) (string, error) {
	var resp struct {
		Status string `json:"status"`
	}
	if err := c.do(ctx, http.MethodGet, epOrderStatus(orderID), nil, &resp); err != nil {
		return "", err
	}
	return resp.Status, nil
}

func (c *Client) TrackOrder(ctx context.Context, orderID string) (*models.Order, error) {
	var order models.Order
	if err := c.do(ctx, http.MethodGet, epOrderTrack(orderID), nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// trackingDetailsResponse is the wire shape of the pre-socket snapshot;
// driver identity fields have drifted across backend revisions, so both
// spellings are read.
type trackingDetailsResponse struct {
	Status string `json:"status"`
	ETA    string `json:"eta"`
	Driver struct {
		ID              string `json:"_id"`
		DriverID        string `json:"driver_id"`
		Username        string `json:"username"`
		DriverName      string `json:"driver_name"`
		VehicleNumber   string `json:"vehicle_number"`
		CurrentLocation *struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"current_location"`
	} `json:"driver"`
}

func (c *Client) TrackingDetails(ctx context.Context, orderID string) (*models.TrackingSnapshot, error) {
	var resp trackingDetailsResponse
	if err := c.do(ctx, http.MethodGet, epTrackingDetails(orderID), nil, &resp); err != nil {
		return nil, err
	}

	snap := &models.TrackingSnapshot{
		OrderID:       orderID,
		Status:        resp.Status,
		ETA:           resp.ETA,
		DriverID:      resp.Driver.ID,
		DriverName:    resp.Driver.Username,
		VehicleNumber: resp.Driver.VehicleNumber,
	}
	if snap.DriverID == "" {
		snap.DriverID = resp.Driver.DriverID
	}
	if snap.DriverName == "" {
		snap.DriverName = resp.Driver.DriverName
	}
	if loc := resp.Driver.CurrentLocation; loc != nil {
		snap.Lat = loc.Lat
		snap.Lng = loc.Lng
	}
	return snap, nil
}
