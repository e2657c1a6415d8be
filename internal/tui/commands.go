package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/paat-dev/paat/internal/api"
	"github.com/paat-dev/paat/internal/models"
	"github.com/paat-dev/paat/internal/notify"
	"github.com/paat-dev/paat/internal/watch"
)

const (
	apiTimeout   = 10 * time.Second
	alertTimeout = 10 * time.Second
)

// fetchSailings returns a tea.Cmd that fetches the sailings for one
// route and date, sorted by departure.
func fetchSailings(client *api.Client, route models.Route, date time.Time) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), apiTimeout)
		defer cancel()

		set, err := client.FetchSailings(ctx, route, date)
		return sailingsResultMsg{
			route:    route,
			date:     date,
			sailings: set.Sorted(),
			err:      err,
		}
	}
}

// waitForUpdate returns a tea.Cmd that blocks on the registry's update
// feed. It is re-issued after every delivery so the feed is always
// being drained.
func waitForUpdate(registry *watch.Registry) tea.Cmd {
	return func() tea.Msg {
		update, ok := <-registry.Updates()
		if !ok {
			return updatesClosedMsg{}
		}
		return trackingUpdateMsg(update)
	}
}

// playAlert returns a tea.Cmd that raises the capacity alert.
func playAlert(notifier notify.Notifier) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), alertTimeout)
		defer cancel()

		return alertDoneMsg{err: notifier.Alert(ctx)}
	}
}
