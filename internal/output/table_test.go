package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/paat-dev/paat/internal/models"
	"github.com/paat-dev/paat/internal/testutil"
)

func plainColors(t *testing.T) *Colors {
	t.Helper()

	oldNoColor := color.NoColor
	t.Cleanup(func() { color.NoColor = oldNoColor })
	color.NoColor = true

	return NewColors(ColorNever)
}

func sampleSailing(uid, start, end, ship string, smallVehicles int) models.Sailing {
	return models.Sailing{
		UID:        uid,
		Start:      start,
		End:        end,
		ShipCode:   ship,
		Capacities: models.Capacity{SmallVehicles: smallVehicles, Passengers: 120, Bicycles: 10},
	}
}

func TestRenderSailings_Empty(t *testing.T) {
	var buf bytes.Buffer
	RenderSailings(&buf, models.SailingSet{}, TableOptions{Colors: plainColors(t)})

	testutil.AssertContains(t, buf.String(), "No sailings found.")
}

func TestRenderSailings_OrderedByDeparture(t *testing.T) {
	set := models.SailingSet{
		"noon": sampleSailing("noon",
			"2024-06-01T12:30:00.000000+0300", "2024-06-01T13:45:00.000000+0300", "LEIGER", 34),
		"morning": sampleSailing("morning",
			"2024-06-01T09:00:00.000000+0300", "2024-06-01T10:15:00.000000+0300", "TIIU", 0),
	}

	var buf bytes.Buffer
	RenderSailings(&buf, set, TableOptions{Colors: plainColors(t), ShowShip: true})
	out := buf.String()

	testutil.AssertContains(t, out, "TIIU")
	testutil.AssertContains(t, out, "LEIGER")
	testutil.AssertTrue(t, strings.Index(out, "TIIU") < strings.Index(out, "LEIGER"))
}

func TestRenderSailings_StatusColumn(t *testing.T) {
	set := models.SailingSet{
		"full": sampleSailing("full",
			"2024-06-01T09:00:00.000000+0300", "2024-06-01T10:15:00.000000+0300", "TIIU", 0),
		"open": sampleSailing("open",
			"2024-06-01T12:30:00.000000+0300", "2024-06-01T13:45:00.000000+0300", "LEIGER", 12),
	}

	var buf bytes.Buffer
	RenderSailings(&buf, set, TableOptions{Colors: plainColors(t)})
	out := buf.String()

	testutil.AssertContains(t, out, "sold out")
	testutil.AssertContains(t, out, "available")
}

func TestRenderSailings_CapacityColumns(t *testing.T) {
	set := models.SailingSet{
		"open": sampleSailing("open",
			"2024-06-01T12:30:00.000000+0300", "2024-06-01T13:45:00.000000+0300", "LEIGER", 34),
	}

	var buf bytes.Buffer
	RenderSailings(&buf, set, TableOptions{Colors: plainColors(t), ShowCapacity: true})
	out := buf.String()

	testutil.AssertContains(t, out, "CAR")
	testutil.AssertContains(t, out, "34")
	testutil.AssertContains(t, out, "120") // passengers
}

func TestRenderSailings_UnparseableTime(t *testing.T) {
	set := models.SailingSet{
		"broken": sampleSailing("broken", "garbage", "garbage", "TIIU", 5),
	}

	var buf bytes.Buffer
	RenderSailings(&buf, set, TableOptions{Colors: plainColors(t)})

	testutil.AssertContains(t, buf.String(), "??:?? - ??:??")
}

func TestRenderRoutes(t *testing.T) {
	var buf bytes.Buffer
	RenderRoutes(&buf, TableOptions{Colors: plainColors(t)})
	out := buf.String()

	testutil.AssertContains(t, out, "HR")
	testutil.AssertContains(t, out, "Heltermaa - Rohuküla")
	testutil.AssertContains(t, out, "KV")
	testutil.AssertContains(t, out, "Kuivastu - Virtsu")
	testutil.AssertContains(t, out, "paat watch")
}
