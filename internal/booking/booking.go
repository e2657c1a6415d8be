// Package booking drives the praamid.ee booking portal in a real
// browser to move an existing booking onto a sailing that just got
// capacity. The portal has no booking API, so this automates the web
// flow a person would click through.
package booking

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"

	"github.com/paat-dev/paat/internal/models"
)

// Selectors into the portal's Angular markup. Brittle by nature; when
// the portal redeploys with new class hashes these need re-recording.
const (
	changeButtonSelector = `body > app-root > app-ticket-checkout-success > app-ticket-layout > div.bg-science-blue-50 > div.container.relative.max-w-screen-lg.pt-8.pb-24.lg\:py-8 > section:nth-child(1) > div.mt-8.active-tickets.mx-2.lg\:mx-0 > app-ticket-detail > article > div > div.px-3.py-1.lg\:items-center.lg\:py-5.md\:px-8.lg\:flex.lg\:justify-between > div.flex.justify-between.items-center.mt-2.lg\:mt-0 > a.lg\:ml-2.flex.items-center.text-xs.btn.btn--secondary.btn--icon.btn--borderless.lg\:flex-none`

	directionSelectSelector    = `body > app-root > app-ticket-purchase > app-ticket-layout > div.bg-science-blue-50 > div.container.relative.pt-8.pb-5.xl\:pb-8 > div:nth-child(3) > app-ticket-purchase-searchbar > div > div > div.flex.flex-1.py-4.border-b.lg\:flex-none.border-midnight-blue-200.lg\:border-0.lg\:pr-8 > div > a`
	directionOptionListPrefix  = `body > app-root > app-ticket-purchase > app-ticket-layout > div.bg-science-blue-50 > div.container.relative.pt-8.pb-5.xl\:pb-8 > div:nth-child(3) > app-ticket-purchase-searchbar > div > div > div.flex.flex-1.py-4.border-b.lg\:flex-none.border-midnight-blue-200.lg\:border-0.lg\:pr-8 > div > app-ticket-route-picker > div`
	dateSelectSelector         = `body > app-root > app-ticket-purchase > app-ticket-layout > div.bg-science-blue-50 > div.container.relative.pt-8.pb-5.xl\:pb-8 > div:nth-child(3) > app-ticket-purchase-searchbar > div > div > div.flex.items-center.py-4.border-b.lg\:border-b-0.lg\:flex-1.border-midnight-blue-200.lg\:px-8.lg\:border-l > div > div.flex.items-center > div > app-datepicker > input.lowercase.text-date.flatpickr-input.departure-select-date.ng-untouched.ng-pristine.ng-invalid.form-control.input`
	selectedMonthSelector      = `body > div > div.flatpickr-months > div > div > span`
	selectedYearSelector       = `body > div > div.flatpickr-months > div > div > div > input`
	nextMonthSelector          = `body > div > div.flatpickr-months > span.flatpickr-next-month > a`
	calendarDaySelector        = `body > div > div.flatpickr-innerContainer > div > div.flatpickr-days > div > span.flatpickr-day:not(.prevMonthDay)`
	sailingListSelector        = `body > app-root > app-ticket-purchase > app-ticket-layout > div.bg-science-blue-50 > div.container.relative.pt-8.pb-5.xl\:pb-8 > div.mt-6 > div:nth-child(1) > section > app-event-selector > div`
	sailingRowSelector         = sailingListSelector + ` > div`
	sailingTimeSelector        = `article > div.flex.justify-between.lg\:justify-start.lg\:content-center.lg\:self-center.p-2.sm\:px-8.lg\:pl-2.lg\:pr-0 > div.w-14.flex.items-center.pl-2.lg\:pl-0 > div`
	sailingBookButtonSelector  = `article > div.flex.justify-between.lg\:justify-start.lg\:content-center.lg\:self-center.p-2.sm\:px-8.lg\:pl-2.lg\:pr-0 > button`
	continueButtonSelector     = `#modal-ticket-content > footer > app-button`
	bookingURLPrefix           = `https://www.praamid.ee/portal/ticket/checkout/success;`
	bookingURLLanguageFragment = `lang=et`
)

// calendarScanLimit caps next-month clicks while walking to the target
// year and month.
const calendarScanLimit = 120

// estonianMonths maps the portal's Estonian month labels. The flow
// forces lang=et, so these are the only labels that appear.
var estonianMonths = map[string]time.Month{
	"jaanuar":   time.January,
	"veebruar":  time.February,
	"märts":     time.March,
	"aprill":    time.April,
	"mai":       time.May,
	"juuni":     time.June,
	"juuli":     time.July,
	"august":    time.August,
	"september": time.September,
	"oktoober":  time.October,
	"november":  time.November,
	"detsember": time.December,
}

// ParseEstonianMonth resolves a portal month label to a time.Month.
func ParseEstonianMonth(label string) (time.Month, bool) {
	month, ok := estonianMonths[strings.ToLower(strings.TrimSpace(label))]
	return month, ok
}

// BookingURL builds the checkout page URL for an existing booking.
func BookingURL(bookingID string) string {
	return fmt.Sprintf("%sbookingUid=%s;%s", bookingURLPrefix, bookingID, bookingURLLanguageFragment)
}

// DirectionOptionSelector returns the route picker entry for a route.
// The picker lists the four crossings in a fixed order after a header
// row.
func DirectionOptionSelector(route models.Route) string {
	position := 2 + int(route)
	return fmt.Sprintf("%s > div:nth-child(%d) > div > a", directionOptionListPrefix, position)
}

// Changer rebooks through a visible browser window so the user can
// take over if the portal asks for anything unexpected.
type Changer struct {
	headless bool
	timeout  time.Duration
}

// ChangerOption configures a Changer.
type ChangerOption func(*Changer)

// WithHeadless hides the browser window. Useful in tests; rebooking a
// real ticket should stay visible.
func WithHeadless() ChangerOption {
	return func(c *Changer) {
		c.headless = true
	}
}

// WithFlowTimeout bounds the whole rebooking flow.
func WithFlowTimeout(d time.Duration) ChangerOption {
	return func(c *Changer) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// NewChanger creates a booking changer.
func NewChanger(opts ...ChangerOption) *Changer {
	c := &Changer{timeout: 3 * time.Minute}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ChangeBooking moves the booking onto the given sailing: opens the
// checkout page, clicks through the change flow, picks the date and
// direction, selects the sailing row whose departure time matches, and
// confirms.
func (c *Changer) ChangeBooking(ctx context.Context, bookingID string, route models.Route, date time.Time, sailing models.Sailing) error {
	if dateOnly(date).Before(dateOnly(time.Now())) {
		return fmt.Errorf("cannot move a booking into the past: %s", date.Format(models.DateLayout))
	}

	timeRange, err := sailing.LocalTimeRange()
	if err != nil {
		return fmt.Errorf("sailing %s has no usable departure time: %w", sailing.UID, err)
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("incognito", true),
		chromedp.Flag("headless", c.headless),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	flowCtx, cancelFlow := context.WithTimeout(browserCtx, c.timeout)
	defer cancelFlow()

	if err := chromedp.Run(flowCtx,
		chromedp.Navigate(BookingURL(bookingID)),
		chromedp.WaitVisible(changeButtonSelector, chromedp.ByQuery),
		chromedp.ScrollIntoView(changeButtonSelector, chromedp.ByQuery),
		chromedp.Click(changeButtonSelector, chromedp.ByQuery),
	); err != nil {
		return fmt.Errorf("failed to open the change flow: %w", err)
	}

	if err := c.selectDate(flowCtx, date); err != nil {
		return err
	}
	if err := c.selectDirection(flowCtx, route); err != nil {
		return err
	}
	if err := c.selectSailing(flowCtx, timeRange); err != nil {
		return err
	}

	if err := chromedp.Run(flowCtx,
		chromedp.WaitVisible(continueButtonSelector, chromedp.ByQuery),
		chromedp.Sleep(500*time.Millisecond),
		chromedp.ScrollIntoView(continueButtonSelector, chromedp.ByQuery),
		chromedp.Sleep(1500*time.Millisecond),
		chromedp.Click(continueButtonSelector, chromedp.ByQuery),
	); err != nil {
		return fmt.Errorf("failed to confirm the new sailing: %w", err)
	}

	return nil
}

// selectDate opens the date picker and walks the calendar to the
// target year, month and day.
func (c *Changer) selectDate(ctx context.Context, date time.Time) error {
	if err := chromedp.Run(ctx,
		chromedp.WaitVisible(dateSelectSelector, chromedp.ByQuery),
		chromedp.Click(dateSelectSelector, chromedp.ByQuery),
	); err != nil {
		return fmt.Errorf("failed to open the date picker: %w", err)
	}

	if err := c.walkCalendar(ctx, date); err != nil {
		return err
	}

	return c.clickDay(ctx, date.Day())
}

// walkCalendar clicks next-month until the picker shows the target
// year and month.
func (c *Changer) walkCalendar(ctx context.Context, date time.Time) error {
	for i := 0; i < calendarScanLimit; i++ {
		var yearText, monthLabel string
		if err := chromedp.Run(ctx,
			chromedp.Value(selectedYearSelector, &yearText, chromedp.ByQuery),
			chromedp.Text(selectedMonthSelector, &monthLabel, chromedp.ByQuery),
		); err != nil {
			return fmt.Errorf("failed to read the calendar header: %w", err)
		}

		year, err := strconv.Atoi(strings.TrimSpace(yearText))
		if err != nil {
			return fmt.Errorf("calendar shows unparseable year %q: %w", yearText, err)
		}
		month, ok := ParseEstonianMonth(monthLabel)
		if !ok {
			return fmt.Errorf("calendar shows unknown month label %q", monthLabel)
		}

		if year == date.Year() && month == date.Month() {
			return nil
		}

		if err := chromedp.Run(ctx, chromedp.Click(nextMonthSelector, chromedp.ByQuery)); err != nil {
			return fmt.Errorf("failed to advance the calendar: %w", err)
		}
	}
	return fmt.Errorf("calendar never reached %s", date.Format(models.DateLayout))
}

// clickDay clicks the calendar cell carrying the given day number.
func (c *Changer) clickDay(ctx context.Context, day int) error {
	var cells []*cdp.Node
	if err := chromedp.Run(ctx,
		chromedp.Nodes(calendarDaySelector, &cells, chromedp.ByQueryAll),
	); err != nil {
		return fmt.Errorf("failed to list calendar days: %w", err)
	}

	for _, cell := range cells {
		var text string
		if err := chromedp.Run(ctx,
			chromedp.Text([]cdp.NodeID{cell.NodeID}, &text, chromedp.ByNodeID),
		); err != nil {
			continue
		}
		number, err := strconv.Atoi(strings.TrimSpace(text))
		if err != nil || number != day {
			continue
		}
		return chromedp.Run(ctx, chromedp.MouseClickNode(cell))
	}
	return fmt.Errorf("day %d not present in the calendar", day)
}

// selectDirection opens the route picker and clicks the crossing.
func (c *Changer) selectDirection(ctx context.Context, route models.Route) error {
	option := DirectionOptionSelector(route)
	if err := chromedp.Run(ctx,
		chromedp.WaitVisible(directionSelectSelector, chromedp.ByQuery),
		chromedp.Click(directionSelectSelector, chromedp.ByQuery),
		chromedp.WaitVisible(option, chromedp.ByQuery),
		chromedp.Click(option, chromedp.ByQuery),
	); err != nil {
		return fmt.Errorf("failed to pick the %s crossing: %w", route, err)
	}
	return nil
}

// selectSailing finds the listed sailing whose departure time prefixes
// the tracked sailing's time range and clicks its book button.
func (c *Changer) selectSailing(ctx context.Context, timeRange string) error {
	var rows []*cdp.Node
	if err := chromedp.Run(ctx,
		chromedp.WaitVisible(sailingListSelector, chromedp.ByQuery),
		chromedp.Nodes(sailingRowSelector, &rows, chromedp.ByQueryAll),
	); err != nil {
		return fmt.Errorf("failed to list sailings on the booking page: %w", err)
	}

	for _, row := range rows {
		var departure string
		if err := chromedp.Run(ctx,
			chromedp.Text(sailingTimeSelector, &departure, chromedp.ByQuery, chromedp.FromNode(row)),
		); err != nil {
			continue
		}
		if !strings.HasPrefix(timeRange, strings.TrimSpace(departure)) {
			continue
		}
		return chromedp.Run(ctx,
			chromedp.ScrollIntoView(sailingBookButtonSelector, chromedp.ByQuery, chromedp.FromNode(row)),
			chromedp.Click(sailingBookButtonSelector, chromedp.ByQuery, chromedp.FromNode(row)),
		)
	}
	return fmt.Errorf("no listed sailing departs at %s", timeRange)
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
