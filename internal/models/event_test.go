package models

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/paat-dev/paat/internal/testutil"
)

const sampleEnvelope = `{
	"totalCount": 2,
	"items": [
		{
			"uid": "abc",
			"capacities": {"pcs": 120, "bc": 10, "sv": 0, "bv": 4, "dc": 2},
			"pricelist": {"code": "PL-2024"},
			"transportationType": {"code": "REGULAR"},
			"ship": {"code": "TIIU"},
			"status": "OPEN",
			"dtstart": "2024-06-01T09:00:00.000000+0300",
			"dtend": "2024-06-01T10:15:00.000000+0300"
		},
		{
			"uid": "def",
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

func decodeEnvelope(t *testing.T, body string) SailingSet {
	t.Helper()
	var resp EventsResponse
	testutil.AssertNil(t, json.Unmarshal([]byte(body), &resp))
	return BuildSailingSet(&resp)
}

func TestBuildSailingSet(t *testing.T) {
	set := decodeEnvelope(t, sampleEnvelope)

	testutil.AssertEqual(t, len(set), 2)

	morning, ok := set["abc"]
	testutil.AssertTrue(t, ok)
	testutil.AssertEqual(t, morning.ShipCode, "TIIU")
	testutil.AssertEqual(t, morning.PriceListCode, "PL-2024")
	testutil.AssertEqual(t, morning.TransportationTypeCode, "REGULAR")
	testutil.AssertEqual(t, morning.Status, "OPEN")
	testutil.AssertEqual(t, morning.Capacities.SmallVehicles, 0)
	testutil.AssertEqual(t, morning.Capacities.Passengers, 120)
	testutil.AssertEqual(t, morning.Capacities.Bicycles, 10)
	testutil.AssertEqual(t, morning.Capacities.LargeVehicles, 4)
	testutil.AssertEqual(t, morning.Capacities.Deck, 2)
}

func TestBuildSailingSet_IdempotentDecode(t *testing.T) {
	// Decoding the same envelope twice yields equal sets key by key.
	first := decodeEnvelope(t, sampleEnvelope)
	second := decodeEnvelope(t, sampleEnvelope)

	testutil.AssertEqual(t, len(first), len(second))
	for uid, sailing := range first {
		other, ok := second[uid]
		testutil.AssertTrue(t, ok)
		testutil.AssertEqual(t, sailing, other)
	}
}

func TestBuildSailingSet_DuplicateUIDLastWins(t *testing.T) {
	const body = `{
		"totalCount": 2,
		"items": [
			{"uid": "dup", "capacities": {"pcs": 1, "bc": 1, "sv": 1, "bv": 1, "dc": 1},
			 "pricelist": {"code": "A"}, "transportationType": {"code": "R"}, "ship": {"code": "TIIU"},
			 "status": "OPEN", "dtstart": "2024-06-01T09:00:00+0300", "dtend": "2024-06-01T10:00:00+0300"},
			{"uid": "dup", "capacities": {"pcs": 2, "bc": 2, "sv": 7, "bv": 2, "dc": 2},
			 "pricelist": {"code": "B"}, "transportationType": {"code": "R"}, "ship": {"code": "LEIGER"},
			 "status": "OPEN", "dtstart": "2024-06-01T09:00:00+0300", "dtend": "2024-06-01T10:00:00+0300"}
		]
	}`

	set := decodeEnvelope(t, body)
	testutil.AssertEqual(t, len(set), 1)

	sailing := set["dup"]
	testutil.AssertEqual(t, sailing.ShipCode, "LEIGER")
	testutil.AssertEqual(t, sailing.Capacities.SmallVehicles, 7)
}

func TestHasSmallVehicleSpace(t *testing.T) {
	tests := []struct {
		sv   int
		want bool
	}{
		{-5, false},
		{-1, false},
		{0, false},
		{1, true},
		{34, true},
	}

	for _, tt := range tests {
		s := Sailing{Capacities: Capacity{SmallVehicles: tt.sv}}
		testutil.AssertEqual(t, s.HasSmallVehicleSpace(), tt.want)
	}
}

func TestLocalTimeRange(t *testing.T) {
	s := Sailing{
		Start: "2024-06-01T09:00:00.000000+0300",
		End:   "2024-06-01T10:15:00.000000+0300",
	}

	rangeText, err := s.LocalTimeRange()
	testutil.AssertNil(t, err)
	testutil.AssertContains(t, rangeText, " - ")
}

func TestLocalTimeRange_MalformedStart(t *testing.T) {
	s := Sailing{
		Start: "yesterday",
		End:   "2024-06-01T10:15:00.000000+0300",
	}

	_, err := s.LocalTimeRange()
	testutil.AssertError(t, err)

	var tfe *TimeFormatError
	testutil.AssertTrue(t, errors.As(err, &tfe))
	testutil.AssertEqual(t, tfe.Value, "yesterday")
}

func TestLocalTimeRange_MalformedEnd(t *testing.T) {
	s := Sailing{
		Start: "2024-06-01T09:00:00.000000+0300",
		End:   "soon",
	}

	_, err := s.LocalTimeRange()
	testutil.AssertError(t, err)
}

func TestStartTime_ShortFraction(t *testing.T) {
	// The provider is not consistent about fraction width.
	s := Sailing{Start: "2024-06-01T09:00:00.5+0300"}
	_, err := s.StartTime()
	testutil.AssertNil(t, err)

	s = Sailing{Start: "2024-06-01T09:00:00+0300"}
	_, err = s.StartTime()
	testutil.AssertNil(t, err)
}

func TestSorted_ByDepartureAscending(t *testing.T) {
	set := SailingSet{
		"late": {UID: "late", Start: "2024-06-01T18:00:00+0300"},
		"mid":  {UID: "mid", Start: "2024-06-01T12:30:00+0300"},
		"early": {
			UID:   "early",
			Start: "2024-06-01T06:45:00+0300",
		},
	}

	sorted := set.Sorted()
	testutil.AssertLen(t, sorted, 3)
	testutil.AssertEqual(t, sorted[0].UID, "early")
	testutil.AssertEqual(t, sorted[1].UID, "mid")
	testutil.AssertEqual(t, sorted[2].UID, "late")
}

func TestSorted_UnparseableTimesSortLast(t *testing.T) {
	set := SailingSet{
		"bad":  {UID: "bad", Start: "???"},
		"good": {UID: "good", Start: "2024-06-01T06:45:00+0300"},
	}

	sorted := set.Sorted()
	testutil.AssertEqual(t, sorted[0].UID, "good")
	testutil.AssertEqual(t, sorted[1].UID, "bad")
}
