package output

import (
	"fmt"
	"io"

	"github.com/paat-dev/paat/internal/models"
)

// TableOptions configures the table output
type TableOptions struct {
	Colors       *Colors
	ShowCapacity bool
	ShowShip     bool
}

// RenderSailings renders a sailing set as a formatted table, ordered by
// departure time.
func RenderSailings(w io.Writer, set models.SailingSet, opts TableOptions) {
	if len(set) == 0 {
		_, _ = fmt.Fprintln(w, "No sailings found.")
		return
	}

	c := opts.Colors
	if c == nil {
		c = NewColors(ColorNever)
	}

	header := fmt.Sprintf("%-13s", "TIME")
	if opts.ShowCapacity {
		header += fmt.Sprintf(" %4s %4s %4s", "CAR", "PAS", "BIC")
	}
	if opts.ShowShip {
		header += fmt.Sprintf("  %-10s", "SHIP")
	}
	header += "  STATUS"
	_, _ = fmt.Fprintln(w, c.Header(header))

	for _, sailing := range set.Sorted() {
		// Time range
		timeStr := "??:?? - ??:??"
		if tr, err := sailing.LocalTimeRange(); err == nil {
			timeStr = tr
		}

		row := c.Time("%-13s", timeStr)

		if opts.ShowCapacity {
			row += " " + c.FormatCapacity(sailing.Capacities.SmallVehicles)
			row += fmt.Sprintf(" %4d %4d", sailing.Capacities.Passengers, sailing.Capacities.Bicycles)
		}

		if opts.ShowShip {
			ship := sailing.ShipCode
			if len(ship) > 10 {
				ship = ship[:10]
			}
			row += "  " + c.Ship("%-10s", ship)
		}

		if sailing.HasSmallVehicleSpace() {
			row += "  " + c.Free("available")
		} else {
			row += "  " + c.SoldOut("sold out")
		}

		_, _ = fmt.Fprintln(w, row)
	}
}

// RenderRoutes renders the supported crossings as a formatted list.
func RenderRoutes(w io.Writer, opts TableOptions) {
	c := opts.Colors
	if c == nil {
		c = NewColors(ColorNever)
	}

	_, _ = fmt.Fprintln(w, c.Header("Supported crossings:"))
	_, _ = fmt.Fprintln(w)

	for _, route := range models.Routes() {
		_, _ = fmt.Fprintf(w, "  %s  %s\n",
			c.Route("%-3s", route.Abbreviation()),
			route.Label(),
		)
	}
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintf(w, "%s paat watch --route HR --date 2024-06-01 --sailing <uid>\n", c.Muted("Use:"))
}
