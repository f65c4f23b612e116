package service

import "gasbot/pkg/models"

// ReconcileOrders merges the locally cached order list with a freshly
// fetched server list. The server always wins on an identifier
// collision; cached records that only exist client-side survive only
// while they still carry a temporary id (they have not been superseded
// by the server's copy yet). Pure function, inputs are not mutated.
func ReconcileOrders(cached, fetched []*models.Order) []*models.Order {
	fetchedIDs := make(map[string]bool, len(fetched))
	server := make([]*models.Order, 0, len(fetched))
	for _, o := range fetched {
		if o == nil || fetchedIDs[o.OrderID] {
			continue
		}
		fetchedIDs[o.OrderID] = true
		confirmed := *o
		confirmed.Local = false
		server = append(server, &confirmed)
	}

	var pending []*models.Order
	seen := make(map[string]bool)
	for _, o := range cached {
		if o == nil || fetchedIDs[o.OrderID] || seen[o.OrderID] {
			continue
		}
		if o.HasTempID() {
			seen[o.OrderID] = true
			pending = append(pending, o)
		}
	}

	// Optimistic records stay at the front, the way they were rendered.
	return append(pending, server...)
}
