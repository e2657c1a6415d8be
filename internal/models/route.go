package models

import (
	"errors"
	"fmt"
)

// ErrUnknownRoute indicates a route code or label outside the fixed line set.
var ErrUnknownRoute = errors.New("unknown route")

// Route is one of the four fixed ferry line directions.
type Route int

const (
	RouteHR Route = iota // Heltermaa - Rohuküla
	RouteRH              // Rohuküla - Heltermaa
	RouteKV              // Kuivastu - Virtsu
	RouteVK              // Virtsu - Kuivastu
)

var routeTable = []struct {
	abbr  string
	label string
}{
	{"HR", "Heltermaa - Rohuküla"},
	{"RH", "Rohuküla - Heltermaa"},
	{"KV", "Kuivastu - Virtsu"},
	{"VK", "Virtsu - Kuivastu"},
}

// Routes returns all routes in their canonical order.
func Routes() []Route {
	return []Route{RouteHR, RouteRH, RouteKV, RouteVK}
}

// ParseRoute converts a server-side abbreviation (e.g. "HR") or a
// human-readable label into a Route. Matching is exact; anything outside
// the four fixed lines fails with ErrUnknownRoute.
func ParseRoute(s string) (Route, error) {
	for i, entry := range routeTable {
		if s == entry.abbr || s == entry.label {
			return Route(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownRoute, s)
}

// Abbreviation returns the query code sent as the direction parameter.
func (r Route) Abbreviation() string {
	return routeTable[r].abbr
}

// Label returns the human-readable "Port - Port" form.
func (r Route) Label() string {
	return routeTable[r].label
}

func (r Route) String() string {
	return r.Label()
}
