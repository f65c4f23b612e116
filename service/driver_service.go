package service

import (
	"context"
	"strings"

	"gasbot/pkg/api"
	"gasbot/pkg/logger"
	"gasbot/pkg/models"
)

type DriverService interface {
	// List fetches the driver listing fresh each call; last fetch wins.
	List(ctx context.Context) ([]*models.Driver, error)
}

type driverService struct {
	client *api.Client
	log    logger.ILogger
}

func NewDriverService(client *api.Client, log logger.ILogger) DriverService {
	return &driverService{client: client, log: log}
}

func (s *driverService) List(ctx context.Context) ([]*models.Driver, error) {
	return s.client.ListDrivers(ctx)
}

// FilterDrivers narrows a listing by a case-insensitive match on name or
// status, the way the selection screen's search box does.
func FilterDrivers(drivers []*models.Driver, query string) []*models.Driver {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return drivers
	}
	var out []*models.Driver
	for _, d := range drivers {
		if d == nil {
			continue
		}
		if strings.Contains(strings.ToLower(d.Name), query) ||
			strings.Contains(strings.ToLower(d.Status), query) {
			out = append(out, d)
		}
	}
	return out
}
