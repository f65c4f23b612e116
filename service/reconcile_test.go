package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gasbot/pkg/models"
)

func order(id, status string) *models.Order {
	return &models.Order{OrderID: id, Status: status}
}

func localOrder(id, status string) *models.Order {
	o := order(id, status)
	o.Local = true
	return o
}

func ids(orders []*models.Order) []string {
	out := make([]string, 0, len(orders))
	for _, o := range orders {
		out = append(out, o.OrderID)
	}
	return out
}

func TestReconcileServerWinsOnCollision(t *testing.T) {
	cached := []*models.Order{localOrder("ord-1", models.OrderStatusPending)}
	fetched := []*models.Order{order("ord-1", models.OrderStatusDelivered)}

	merged := ReconcileOrders(cached, fetched)

	require.Len(t, merged, 1)
	assert.Equal(t, models.OrderStatusDelivered, merged[0].Status)
	assert.False(t, merged[0].Local, "server copy clears the optimistic flag")
}

func TestReconcileKeepsUnackedTempOrdersAtFront(t *testing.T) {
	cached := []*models.Order{
		localOrder("temp-abc", models.OrderStatusPending),
		order("ord-1", models.OrderStatusPending),
	}
	fetched := []*models.Order{
		order("ord-1", models.OrderStatusConfirmed),
		order("ord-2", models.OrderStatusDelivered),
	}

	merged := ReconcileOrders(cached, fetched)

	assert.Equal(t, []string{"temp-abc", "ord-1", "ord-2"}, ids(merged))
}

func TestReconcileDropsNonTempCacheOnlyOrders(t *testing.T) {
	// A real id the server no longer reports means the server deleted it.
	cached := []*models.Order{order("ord-gone", models.OrderStatusPending)}
	fetched := []*models.Order{order("ord-1", models.OrderStatusPending)}

	merged := ReconcileOrders(cached, fetched)

	assert.Equal(t, []string{"ord-1"}, ids(merged))
}

func TestReconcileDedupesFetchedList(t *testing.T) {
	fetched := []*models.Order{
		order("ord-1", models.OrderStatusPending),
		order("ord-1", models.OrderStatusConfirmed),
		order("ord-2", models.OrderStatusPending),
	}

	merged := ReconcileOrders(nil, fetched)

	assert.Equal(t, []string{"ord-1", "ord-2"}, ids(merged))
	assert.Equal(t, models.OrderStatusPending, merged[0].Status, "first occurrence wins")
}

func TestReconcileDoesNotMutateInputs(t *testing.T) {
	cached := []*models.Order{localOrder("temp-1", models.OrderStatusPending)}
	fetchedOrder := localOrder("ord-1", models.OrderStatusPending)
	fetched := []*models.Order{fetchedOrder}

	_ = ReconcileOrders(cached, fetched)

	assert.True(t, cached[0].Local)
	assert.True(t, fetchedOrder.Local, "fetched records are copied, not rewritten in place")
}

func TestReconcileEmptyInputs(t *testing.T) {
	assert.Empty(t, ReconcileOrders(nil, nil))

	cached := []*models.Order{localOrder("temp-1", models.OrderStatusPending)}
	merged := ReconcileOrders(cached, nil)
	assert.Equal(t, []string{"temp-1"}, ids(merged))
}
