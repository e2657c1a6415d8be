package api

const (
	// BaseURL is the base URL of the praamid.ee booking service.
	BaseURL = "https://www.praamid.ee"

	// EndpointEvents returns all sailings for one route and date.
	// Required params: direction, departure-date
	EndpointEvents = "/online/events"
)
