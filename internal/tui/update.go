package tui

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/paat-dev/paat/internal/models"
	"github.com/paat-dev/paat/internal/watch"
)

// Update handles all messages and key events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case sailingsResultMsg:
		return m.handleSailingsResult(msg)

	case trackingUpdateMsg:
		return m.handleTrackingUpdate(msg)

	case updatesClosedMsg:
		return m, nil

	case alertDoneMsg:
		// A failed alert is not worth interrupting the flow for.
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	// Pass remaining messages to the date input when it is showing
	if m.step == stepDate {
		var cmd tea.Cmd
		m.dateInput, cmd = m.dateInput.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) handleSailingsResult(msg sailingsResultMsg) (tea.Model, tea.Cmd) {
	// Ignore results for a route or date the user has moved away from
	if msg.route != m.route || !msg.date.Equal(m.date) {
		return m, nil
	}
	m.sailingsLoad = false
	m.sailingsErr = msg.err
	if msg.err != nil {
		return m, nil
	}

	m.sailings = msg.sailings
	m.sailingsLoaded = true
	m.sailingCursor = 0
	m.step = stepSailing
	return m, nil
}

func (m Model) handleTrackingUpdate(msg trackingUpdateMsg) (tea.Model, tea.Cmd) {
	m.tracked = m.registry.Snapshot()

	cmds := []tea.Cmd{waitForUpdate(m.registry)}

	if msg.Outcome.Status == watch.StatusFound {
		m.notice = m.foundNotice(msg.SailingID, msg.Outcome.Spots)
		if m.notifier != nil {
			cmds = append(cmds, playAlert(m.notifier))
		}
	}

	return m, tea.Batch(cmds...)
}

// foundNotice builds the localized capacity announcement with the
// sailing's departure time and spot count.
func (m Model) foundNotice(sailingID string, spots int) string {
	timeStr := "??:??"
	for _, entry := range m.tracked {
		if entry.Sailing.UID != sailingID {
			continue
		}
		if tr, err := entry.Sailing.LocalTimeRange(); err == nil {
			timeStr = tr
		}
		break
	}
	return m.tr.Tf("capacity-found", map[string]any{
		"Time":  timeStr,
		"Spots": spots,
	})
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Global keys
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	}

	switch m.step {
	case stepRoute:
		return m.handleRouteKeys(msg)
	case stepDate:
		return m.handleDateKeys(msg)
	case stepSailing:
		return m.handleSailingKeys(msg)
	case stepTracking:
		return m.handleTrackingKeys(msg)
	}

	return m, nil
}

func (m Model) handleRouteKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit

	case "j", "down":
		if m.routeCursor < len(m.routes)-1 {
			m.routeCursor++
		}
		return m, nil

	case "k", "up":
		if m.routeCursor > 0 {
			m.routeCursor--
		}
		return m, nil

	case "t", "tab":
		if len(m.tracked) > 0 {
			m.step = stepTracking
		}
		return m, nil

	case "enter":
		m.route = m.routes[m.routeCursor]
		m.step = stepDate
		m.dateErr = nil
		m.dateInput.Focus()
		return m, nil
	}

	return m, nil
}

func (m Model) handleDateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		raw := strings.TrimSpace(m.dateInput.Value())
		date, err := time.ParseInLocation(models.DateLayout, raw, time.Local)
		if err != nil {
			m.dateErr = err
			return m, nil
		}
		m.date = date
		m.dateErr = nil
		m.dateInput.Blur()
		m.sailingsLoad = true
		m.sailingsErr = nil
		m.sailings = nil
		m.sailingsLoaded = false
		return m, fetchSailings(m.client, m.route, date)

	case "esc":
		m.step = stepRoute
		m.dateInput.Blur()
		return m, nil
	}

	// Forward to the date input
	var cmd tea.Cmd
	m.dateInput, cmd = m.dateInput.Update(msg)
	return m, cmd
}

func (m Model) handleSailingKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Defensive clamp at start of handler to prevent out-of-bounds scroll
	if len(m.sailings) > 0 {
		if m.sailingCursor < 0 {
			m.sailingCursor = 0
		}
		if m.sailingCursor >= len(m.sailings) {
			m.sailingCursor = len(m.sailings) - 1
		}
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit

	case "esc":
		m.step = stepDate
		m.dateInput.Focus()
		return m, nil

	case "j", "down":
		if m.sailingCursor < len(m.sailings)-1 {
			m.sailingCursor++
		}
		return m, nil

	case "k", "up":
		if m.sailingCursor > 0 {
			m.sailingCursor--
		}
		return m, nil

	case "home":
		m.sailingCursor = 0
		return m, nil

	case "end":
		if len(m.sailings) > 0 {
			m.sailingCursor = len(m.sailings) - 1
		}
		return m, nil

	case "r":
		m.sailingsLoad = true
		m.sailingsErr = nil
		return m, fetchSailings(m.client, m.route, m.date)

	case "tab":
		if len(m.tracked) > 0 {
			m.step = stepTracking
		}
		return m, nil

	case "enter", "t":
		sailing, ok := m.selectedSailing()
		if !ok {
			return m, nil
		}
		m.registry.Track(m.route, m.date, sailing)
		m.tracked = m.registry.Snapshot()
		m.step = stepTracking
		m.notice = ""
		return m, nil
	}

	return m, nil
}

func (m Model) handleTrackingKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit

	case "esc":
		if m.sailingsLoaded {
			m.step = stepSailing
		} else {
			m.step = stepRoute
		}
		return m, nil

	case "n":
		m.step = stepRoute
		return m, nil

	case "c":
		m.registry.ClearFinished()
		m.tracked = m.registry.Snapshot()
		return m, nil

	case "x":
		m.registry.ClearUnfinished()
		m.tracked = m.registry.Snapshot()
		return m, nil
	}

	return m, nil
}
