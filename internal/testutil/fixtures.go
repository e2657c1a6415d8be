package testutil

import "fmt"

// Sample JSON bodies mirroring the praamid.ee events endpoint.

// SampleEventsResponse is a valid two-sailing envelope for the
// Heltermaa - Rohuküla line. The first sailing has no small-vehicle
// capacity left, the second has plenty.
const SampleEventsResponse = `{
	"totalCount": 2,
	"items": [
		{
			"uid": "2c5be43e-morning",
			"capacities": {"pcs": 120, "bc": 10, "sv": 0, "bv": 4, "dc": 2},
			"pricelist": {"code": "PL-2024"},
			"transportationType": {"code": "REGULAR"},
			"ship": {"code": "TIIU"},
			"status": "OPEN",
			"dtstart": "2024-06-01T09:00:00.000000+0300",
			"dtend": "2024-06-01T10:15:00.000000+0300"
		},
		{
			"uid": "8f1aa902-noon",
			"capacities": {"pcs": 150, "bc": 12, "sv": 34, "bv": 6, "dc": 2},
			"pricelist": {"code": "PL-2024"},
			"transportationType": {"code": "REGULAR"},
			"ship": {"code": "LEIGER"},
			"status": "OPEN",
			"dtstart": "2024-06-01T12:30:00.000000+0300",
			"dtend": "2024-06-01T13:45:00.000000+0300"
		}
	]
}`

// SampleEmptyEventsResponse is a valid envelope with no sailings.
const SampleEmptyEventsResponse = `{"totalCount": 0, "items": []}`

// SampleMalformedEventsResponse is not valid JSON at all; the provider
// occasionally serves an HTML error page on the JSON endpoint.
const SampleMalformedEventsResponse = `<html><body>hooldus</body></html>`

// EventsBody builds a single-sailing envelope with the given uid and
// small-vehicle count, for scripting wait scenarios.
func EventsBody(uid string, smallVehicles int) string {
	return fmt.Sprintf(`{
	"totalCount": 1,
	"items": [
		{
			"uid": %q,
			"capacities": {"pcs": 100, "bc": 8, "sv": %d, "bv": 3, "dc": 1},
			"pricelist": {"code": "PL-2024"},
			"transportationType": {"code": "REGULAR"},
			"ship": {"code": "TIIU"},
			"status": "OPEN",
			"dtstart": "2024-06-01T09:00:00.000000+0300",
			"dtend": "2024-06-01T10:15:00.000000+0300"
		}
	]
}`, uid, smallVehicles)
}
