package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gasbot/pkg/api"
	"gasbot/pkg/models"
	"gasbot/storage"
)

func TestPlaceOrderCachesOptimisticallyAndSavesPrefs(t *testing.T) {
	var finalized int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/orders/start/":
			w.Write([]byte(`{"order_id":"ord-55","total_price":12.5}`))
		case "/orders/finalize/":
			atomic.AddInt32(&finalized, 1)
			w.Write([]byte(`{"status":"confirmed"}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	stg := newTestStorage(t)
	svc := newTestManager(t, srv.URL, stg)

	local, resp, err := svc.Order().PlaceOrder(context.Background(), api.StartOrderRequest{
		Quantity:        1,
		Weight:          "9",
		DeliveryAddress: "12 Samora Machel Ave, Harare",
		PaymentMethod:   "cash",
		Phone:           "+263771234567",
	})
	require.NoError(t, err)
	assert.Equal(t, "ord-55", resp.OrderIDValue())
	assert.Equal(t, "ord-55", local.OrderID)
	assert.Equal(t, int32(1), atomic.LoadInt32(&finalized), "cash orders finalize immediately")
	assert.Equal(t, 9.0, local.Weight)
	assert.True(t, local.Local)

	cached, err := svc.Order().CachedOrders()
	require.NoError(t, err)
	require.Len(t, cached, 1)
	assert.Equal(t, "ord-55", cached[0].OrderID)
	assert.Equal(t, models.OrderStatusPending, cached[0].Status)

	addr, phone := svc.Order().LastDeliveryDetails()
	assert.Equal(t, "12 Samora Machel Ave, Harare", addr)
	assert.Equal(t, "+263771234567", phone)
}

func TestPlaceOrderFallsBackToTempIDWhenServerOmitsOne(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"total_price":10}`))
	}))
	defer srv.Close()

	svc := newTestManager(t, srv.URL, newTestStorage(t))

	local, _, err := svc.Order().PlaceOrder(context.Background(), api.StartOrderRequest{Weight: "9"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(local.OrderID, models.TempOrderIDPrefix))
	assert.True(t, local.HasTempID())
}

func TestOptimisticOrderGoesToFrontOfCache(t *testing.T) {
	stg := newTestStorage(t)
	require.NoError(t, stg.Orders().Save([]*models.Order{
		{OrderID: "ord-old", Status: models.OrderStatusDelivered},
	}))

	svc := newTestManager(t, "http://unused", stg)
	require.NoError(t, svc.Order().PlaceOrderOptimistically(&models.Order{
		OrderID: "temp-new", Status: models.OrderStatusPending,
	}))

	cached, err := svc.Order().CachedOrders()
	require.NoError(t, err)
	require.Len(t, cached, 2)
	assert.Equal(t, "temp-new", cached[0].OrderID)
	assert.True(t, cached[0].Local)
	assert.Equal(t, "ord-old", cached[1].OrderID)
}

func TestLoadOrdersReplacesCacheWithReconciledList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"order_id":"ord-1","status":"delivered"},
			{"order_id":"ord-2","status":"pending"}
		]`))
	}))
	defer srv.Close()

	stg := newTestStorage(t)
	require.NoError(t, stg.Orders().Save([]*models.Order{
		{OrderID: "temp-x", Status: models.OrderStatusPending, Local: true},
		{OrderID: "ord-1", Status: models.OrderStatusPending, Local: true},
	}))

	svc := newTestManager(t, srv.URL, stg)
	orders, err := svc.Order().LoadOrders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"temp-x", "ord-1", "ord-2"}, ids(orders))
	assert.Equal(t, models.OrderStatusDelivered, orders[1].Status)

	// The reconciled list is also what the cache now holds.
	cached, err := stg.Orders().List()
	require.NoError(t, err)
	assert.Equal(t, []string{"temp-x", "ord-1", "ord-2"}, ids(cached))
}

func TestLoadOrdersServesCacheWhenFetchFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	stg := newTestStorage(t)
	require.NoError(t, stg.Orders().Save([]*models.Order{
		{OrderID: "ord-1", Status: models.OrderStatusPending},
	}))

	svc := newTestManager(t, srv.URL, stg)
	orders, err := svc.Order().LoadOrders(context.Background())
	require.Error(t, err, "the sync failure is reported")
	assert.True(t, api.IsNetworkError(err))
	assert.Equal(t, []string{"ord-1"}, ids(orders), "and the cached list still renders")

	// The cache itself was not touched by the failed sync.
	cached, err := stg.Orders().List()
	require.NoError(t, err)
	assert.Equal(t, []string{"ord-1"}, ids(cached))
}

func TestLoadOrdersEmptyReplyKeepsLocalHistory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	stg := newTestStorage(t)
	require.NoError(t, stg.Orders().Save([]*models.Order{
		{OrderID: "ord-1", Status: models.OrderStatusDelivered},
	}))

	svc := newTestManager(t, srv.URL, stg)
	orders, err := svc.Order().LoadOrders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"ord-1"}, ids(orders))
}

func TestCancelOrderRefetchesOnlyAfterServerConfirms(t *testing.T) {
	var listCalls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/cancel/"):
			w.Write([]byte(`{"status":"cancelled"}`))
		case r.URL.Path == "/orders/my-orders/":
			atomic.AddInt32(&listCalls, 1)
			w.Write([]byte(`[{"order_id":"ord-1","status":"cancelled"}]`))
		}
	}))
	defer srv.Close()

	stg := newTestStorage(t)
	require.NoError(t, stg.Orders().Save([]*models.Order{
		{OrderID: "ord-1", Status: models.OrderStatusPending},
	}))

	svc := newTestManager(t, srv.URL, stg)
	require.NoError(t, svc.Order().CancelOrder(context.Background(), "ord-1"))
	assert.Equal(t, int32(1), atomic.LoadInt32(&listCalls))

	cached, err := stg.Orders().List()
	require.NoError(t, err)
	require.Len(t, cached, 1)
	assert.Equal(t, models.OrderStatusCancelled, cached[0].Status)
}

func TestCancelOrderFailureLeavesCacheUntouched(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"error":"order already out for delivery"}`))
	}))
	defer srv.Close()

	stg := newTestStorage(t)
	require.NoError(t, stg.Orders().Save([]*models.Order{
		{OrderID: "ord-1", Status: models.OrderStatusOutForDelivery},
	}))

	svc := newTestManager(t, srv.URL, stg)
	err := svc.Order().CancelOrder(context.Background(), "ord-1")
	require.Error(t, err)

	apiErr, ok := api.AsError(err)
	require.True(t, ok)
	assert.Equal(t, "order already out for delivery", apiErr.Message)

	cached, err := stg.Orders().List()
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusOutForDelivery, cached[0].Status)
}

func TestLastDeliveryDetailsEmptyWithoutHistory(t *testing.T) {
	stg := newTestStorage(t)
	svc := newTestManager(t, "http://unused", stg)

	addr, phone := svc.Order().LastDeliveryDetails()
	assert.Empty(t, addr)
	assert.Empty(t, phone)

	require.NoError(t, stg.Prefs().Set(storage.PrefDeliveryAddress, "7 Borrowdale Rd"))
	require.NoError(t, stg.Prefs().Set(storage.PrefPhoneNumber, "+263719999999"))

	addr, phone = svc.Order().LastDeliveryDetails()
	assert.Equal(t, "7 Borrowdale Rd", addr)
	assert.Equal(t, "+263719999999", phone)
}
