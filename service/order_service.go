package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"gasbot/pkg/api"
	"gasbot/pkg/logger"
	"gasbot/pkg/models"
	"gasbot/storage"
)

type OrderService interface {
	// PlaceOrder starts an order on the backend and records it in the
	// local cache optimistically so the order list shows it at once.
	PlaceOrder(ctx context.Context, req api.StartOrderRequest) (*models.Order, *api.StartOrderResponse, error)
	// PlaceOrderOptimistically inserts a not-yet-acknowledged record at
	// the front of the cache.
	PlaceOrderOptimistically(order *models.Order) error
	// CachedOrders is the instant render value: whatever the cache holds.
	CachedOrders() ([]*models.Order, error)
	// LoadOrders reconciles the cache against the server's list. On
	// fetch failure the cached list comes back unchanged alongside the
	// fetch error, so callers can render it and still report the sync.
	LoadOrders(ctx context.Context) ([]*models.Order, error)
	CancelOrder(ctx context.Context, orderID string) error
	OrderDetail(ctx context.Context, orderID string) (*models.Order, error)
	OrderStatus(ctx context.Context, orderID string) (string, error)
	TrackingDetails(ctx context.Context, orderID string) (*models.TrackingSnapshot, error)
	// LastDeliveryDetails returns the last-used address and phone.
	LastDeliveryDetails() (address, phone string)
}

type orderService struct {
	client *api.Client
	stg    storage.IOrderStorage
	prefs  storage.IPrefsStorage
	log    logger.ILogger
}

func NewOrderService(client *api.Client, stg storage.IStorage, log logger.ILogger) OrderService {
	return &orderService{
		client: client,
		stg:    stg.Orders(),
		prefs:  stg.Prefs(),
		log:    log,
	}
}

func (s *orderService) PlaceOrder(ctx context.Context, req api.StartOrderRequest) (*models.Order, *api.StartOrderResponse, error) {
	resp, err := s.client.StartOrder(ctx, req)
	if err != nil {
		return nil, nil, err
	}

	orderID := resp.OrderIDValue()
	if orderID == "" {
		orderID = models.TempOrderIDPrefix + uuid.NewString()
	} else if resp.Paynow == nil {
		// Non-gateway payments finalize immediately; paynow orders are
		// finalized by the payment callback instead.
		if err := s.client.FinalizeOrder(ctx, orderID); err != nil {
			s.log.Warning("order finalize failed", logger.String("order_id", orderID), logger.Error(err))
		}
	}

	local := &models.Order{
		OrderID:         orderID,
		CreatedAt:       time.Now().UTC(),
		TotalPrice:      resp.TotalPrice,
		Status:          models.OrderStatusPending,
		Weight:          parseWeight(req.Weight),
		DeliveryAddress: req.DeliveryAddress,
		Phone:           req.Phone,
		PaymentMethod:   req.PaymentMethod,
		Notes:           req.Notes,
		Items:           []models.OrderItem{{Name: req.Weight + "kg", Qty: req.Quantity}},
	}
	if err := s.PlaceOrderOptimistically(local); err != nil {
		s.log.Warning("optimistic order cache write failed", logger.Error(err))
	}

	if err := s.prefs.Set(storage.PrefDeliveryAddress, req.DeliveryAddress); err != nil {
		s.log.Warning("persist delivery address failed", logger.Error(err))
	}
	if err := s.prefs.Set(storage.PrefPhoneNumber, req.Phone); err != nil {
		s.log.Warning("persist phone failed", logger.Error(err))
	}

	return local, resp, nil
}

func (s *orderService) PlaceOrderOptimistically(order *models.Order) error {
	order.Local = true
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now().UTC()
	}
	return s.stg.Unshift(order)
}

func (s *orderService) CachedOrders() ([]*models.Order, error) {
	return s.stg.List()
}

func (s *orderService) LoadOrders(ctx context.Context) ([]*models.Order, error) {
	cached, err := s.stg.List()
	if err != nil {
		s.log.Warning("order cache unreadable", logger.Error(err))
	}

	fetched, err := s.client.MyOrders(ctx)
	if err != nil {
		// Availability over consistency: the cached list stays the truth.
		s.log.Warning("order sync failed, serving cached list", logger.Error(err))
		return cached, err
	}
	if len(fetched) == 0 && len(cached) > 0 {
		// An empty reply does not wipe local history.
		return cached, nil
	}

	merged := ReconcileOrders(cached, fetched)
	if err := s.stg.Save(merged); err != nil {
		s.log.Warning("persist reconciled orders failed", logger.Error(err))
	}
	return merged, nil
}

// CancelOrder asks the server first; only a confirmed cancel triggers
// the re-fetch that reconciles the local cache.
func (s *orderService) CancelOrder(ctx context.Context, orderID string) error {
	if err := s.client.CancelOrder(ctx, orderID); err != nil {
		return fmt.Errorf("cancel order %s: %w", orderID, err)
	}
	if _, err := s.LoadOrders(ctx); err != nil {
		s.log.Warning("post-cancel reconcile failed", logger.Error(err))
	}
	return nil
}

func (s *orderService) OrderDetail(ctx context.Context, orderID string) (*models.Order, error) {
	return s.client.OrderDetail(ctx, orderID)
}

func (s *orderService) OrderStatus(ctx context.Context, orderID string) (string, error) {
	return s.client.OrderStatus(ctx, orderID)
}

func (s *orderService) TrackingDetails(ctx context.Context, orderID string) (*models.TrackingSnapshot, error) {
	return s.client.TrackingDetails(ctx, orderID)
}

func (s *orderService) LastDeliveryDetails() (string, string) {
	address, err := s.prefs.Get(storage.PrefDeliveryAddress)
	if err != nil {
		s.log.Warning("read delivery address failed", logger.Error(err))
	}
	phone, err := s.prefs.Get(storage.PrefPhoneNumber)
	if err != nil {
		s.log.Warning("read phone failed", logger.Error(err))
	}
	return address, phone
}

func parseWeight(w string) float64 {
	var weight float64
	_, _ = fmt.Sscanf(w, "%f", &weight)
	return weight
}
