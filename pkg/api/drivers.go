package api

import (
	"context"
	"net/http"

	"gasbot/pkg/models"
)

// ListDrivers returns the current driver listing. Ephemeral: callers do
// not cache this beyond the fetch that produced it.
func (c *Client) ListDrivers(ctx context.Context) ([]*models.Driver, error) {
	var resp struct {
		Drivers []*models.Driver `json:"drivers"`
	}
	if err := c.do(ctx, http.MethodGet, epListDrivers, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Drivers, nil
}
