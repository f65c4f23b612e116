package models

const (
	TrackingEventLocationUpdate = "location_update"
	TrackingEventError          = "error"
)

// TrackingSnapshot is the initial REST view of an order's delivery,
// fetched before the live socket is opened.
type TrackingSnapshot struct {
	OrderID       string
	DriverID      string
	DriverName    string
	VehicleNumber string
	Status        string
	ETA           string
	Lat           float64
	Lng           float64
}

// LocationUpdate is one message on the tracking socket. Lat/Lng arrive
// at the top level of the JSON payload, not nested under the driver.
type LocationUpdate struct {
	Event     string  `json:"event"`
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
	Timestamp string  `json:"timestamp"`
	Message   string  `json:"message,omitempty"`
}
