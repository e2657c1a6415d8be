package models

import (
	"fmt"
	"sort"
	"time"
)

// serviceTimeLayout matches the provider's timestamp format, e.g.
// "2024-06-01T09:30:00.000000+0300". Go accepts shorter or absent
// fractional seconds on parse.
const serviceTimeLayout = "2006-01-02T15:04:05-0700"

// DateLayout is the calendar-date format used in queries and prompts.
const DateLayout = "2006-01-02"

// Capacity holds the remaining capacity counters of one sailing.
// The provider may report negative sentinel values; any non-positive
// count means no capacity.
type Capacity struct {
	Passengers    int `json:"pcs"`
	Bicycles      int `json:"bc"`
	SmallVehicles int `json:"sv"`
	LargeVehicles int `json:"bv"`
	Deck          int `json:"dc"`
}

// codeWrapper unwraps the provider's {"code": "..."} objects.
type codeWrapper struct {
	Code string `json:"code"`
}

// SailingResponse is the raw JSON shape of one sailing as received.
type SailingResponse struct {
	UID                string      `json:"uid"`
	Capacities         Capacity    `json:"capacities"`
	PriceList          codeWrapper `json:"pricelist"`
	TransportationType codeWrapper `json:"transportationType"`
	Ship               codeWrapper `json:"ship"`
	Status             string      `json:"status"`
	Start              string      `json:"dtstart"`
	End                string      `json:"dtend"`
}

// EventsResponse is the envelope returned by the events endpoint.
type EventsResponse struct {
	TotalCount int               `json:"totalCount"`
	Items      []SailingResponse `json:"items"`
}

// Sailing is an immutable snapshot of one scheduled crossing. It is
// rebuilt wholesale on every fetch; the server is the source of truth.
type Sailing struct {
	UID                    string   `json:"uid"`
	Capacities             Capacity `json:"capacities"`
	PriceListCode          string   `json:"priceListCode"`
	TransportationTypeCode string   `json:"transportationTypeCode"`
	ShipCode               string   `json:"shipCode"`
	Status                 string   `json:"status"`
	Start                  string   `json:"start"`
	End                    string   `json:"end"`
}

// ToSailing converts the raw response entry to a Sailing.
func (r *SailingResponse) ToSailing() *Sailing {
	return &Sailing{
		UID:                    r.UID,
		Capacities:             r.Capacities,
		PriceListCode:          r.PriceList.Code,
		TransportationTypeCode: r.TransportationType.Code,
		ShipCode:               r.Ship.Code,
		Status:                 r.Status,
		Start:                  r.Start,
		End:                    r.End,
	}
}

// HasSmallVehicleSpace reports whether the sailing can take another
// small vehicle. Strict greater-than-zero: zero and negative sentinel
// values both mean no.
func (s *Sailing) HasSmallVehicleSpace() bool {
	return s.Capacities.SmallVehicles > 0
}

// StartTime parses the sailing's departure timestamp.
func (s *Sailing) StartTime() (time.Time, error) {
	t, err := time.Parse(serviceTimeLayout, s.Start)
	if err != nil {
		return time.Time{}, &TimeFormatError{Value: s.Start, cause: err}
	}
	return t, nil
}

// LocalTimeRange formats the sailing as a "HH:MM - HH:MM" local time
// range for selection lists.
func (s *Sailing) LocalTimeRange() (string, error) {
	start, err := time.Parse(serviceTimeLayout, s.Start)
	if err != nil {
		return "", &TimeFormatError{Value: s.Start, cause: err}
	}
	end, err := time.Parse(serviceTimeLayout, s.End)
	if err != nil {
		return "", &TimeFormatError{Value: s.End, cause: err}
	}
	return fmt.Sprintf("%s - %s", start.Local().Format("15:04"), end.Local().Format("15:04")), nil
}

// TimeFormatError indicates a sailing timestamp that does not match the
// documented provider format.
type TimeFormatError struct {
	Value string
	cause error
}

func (e *TimeFormatError) Error() string {
	return fmt.Sprintf("malformed sailing timestamp %q: %v", e.Value, e.cause)
}

func (e *TimeFormatError) Unwrap() error {
	return e.cause
}

// SailingSet maps sailing uid to its latest snapshot for one route/date.
type SailingSet map[string]Sailing

// BuildSailingSet keys the response items by uid. When two items share a
// uid the later one in source order wins.
func BuildSailingSet(resp *EventsResponse) SailingSet {
	set := make(SailingSet, len(resp.Items))
	for i := range resp.Items {
		s := resp.Items[i].ToSailing()
		set[s.UID] = *s
	}
	return set
}

// Sorted returns the sailings ordered by departure time ascending, which
// is the order selection lists must present. Entries whose start time
// does not parse sort last, by uid.
func (set SailingSet) Sorted() []Sailing {
	sailings := make([]Sailing, 0, len(set))
	for _, s := range set {
		sailings = append(sailings, s)
	}
	sort.Slice(sailings, func(i, j int) bool {
		ti, errI := sailings[i].StartTime()
		tj, errJ := sailings[j].StartTime()
		switch {
		case errI == nil && errJ == nil:
			if !ti.Equal(tj) {
				return ti.Before(tj)
			}
			return sailings[i].UID < sailings[j].UID
		case errI == nil:
			return true
		case errJ == nil:
			return false
		default:
			return sailings[i].UID < sailings[j].UID
		}
	})
	return sailings
}
