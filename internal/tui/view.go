package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/paat-dev/paat/internal/models"
)

// View renders the entire TUI.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	header := renderHeader()
	statusBar := m.renderStatusBar()

	headerHeight := lipgloss.Height(header)
	statusHeight := lipgloss.Height(statusBar)
	panelHeight := m.height - headerHeight - statusHeight - 2
	if panelHeight < 3 {
		panelHeight = 3
	}

	var panel string
	switch m.step {
	case stepRoute:
		panel = m.renderRouteList(panelHeight)
	case stepDate:
		panel = m.renderDatePrompt()
	case stepSailing:
		panel = m.renderSailingList(panelHeight)
	case stepTracking:
		panel = m.renderTrackingList(panelHeight)
	}

	panel = stylePanel.
		Width(m.width - 2).
		Height(panelHeight).
		Render(panel)

	return lipgloss.JoinVertical(lipgloss.Left, header, panel, statusBar)
}

// renderHeader renders the boat logo and brand name.
func renderHeader() string {
	logo := "" +
		"                   __/___    \n" +
		"             _____/______|   \n" +
		"     _______/_____\\_______\\__\n" +
		"     \\  p a a t           |  \n" +
		"  ~~~~~~~~~~~~~~~~~~~~~~~~~~~"

	return styleLogo.Render(logo)
}

// renderRouteList renders the crossing picker.
func (m Model) renderRouteList(height int) string {
	title := styleHeader.Render(m.tr.T("select-line"))

	var b strings.Builder
	b.WriteString(title)
	b.WriteString("\n\n")

	for i, route := range m.routes {
		label := fmt.Sprintf("%-3s %s", route.Abbreviation(), route.Label())
		if i == m.routeCursor {
			b.WriteString(styleSelected.Render(" > " + label))
		} else {
			b.WriteString("   " + label)
		}
		if i < len(m.routes)-1 {
			b.WriteString("\n")
		}
	}

	return b.String()
}

// renderDatePrompt renders the departure date input.
func (m Model) renderDatePrompt() string {
	title := styleHeader.Render(m.tr.T("departure-date"))

	var b strings.Builder
	b.WriteString(title)
	b.WriteString("\n\n")
	b.WriteString(styleRoute.Render(m.route.Label()))
	b.WriteString("\n\n ")
	b.WriteString(m.dateInput.View())

	if m.dateErr != nil {
		b.WriteString("\n\n")
		b.WriteString(styleError.Render(" " + m.dateErr.Error()))
	}

	return b.String()
}

// renderSailingList renders the sailing picker for the chosen day.
func (m Model) renderSailingList(height int) string {
	title := styleHeader.Render(fmt.Sprintf("%s  %s %s",
		m.tr.T("select-ferry"),
		m.route.Abbreviation(),
		m.date.Format(models.DateLayout),
	))

	if m.sailingsLoad {
		return title + "\n" + styleLoading.Render(" Loading...")
	}
	if m.sailingsErr != nil {
		return title + "\n" + styleError.Render(" "+m.tr.T("event-fetch-error"))
	}
	if len(m.sailings) == 0 {
		return title + "\n" + styleMuted.Render(" No sailings found")
	}

	var b strings.Builder
	b.WriteString(title)
	b.WriteString("\n")

	maxVisible := height - 2
	if maxVisible < 1 {
		maxVisible = 1
	}
	start, end := visibleRange(m.sailingCursor, len(m.sailings), maxVisible)

	for i := start; i < end; i++ {
		line := renderSailingLine(m.sailings[i], i == m.sailingCursor)
		b.WriteString(line)
		if i < end-1 {
			b.WriteString("\n")
		}
	}

	return b.String()
}

// renderSailingLine renders a single sailing entry.
func renderSailingLine(sailing models.Sailing, selected bool) string {
	timeStr := "??:?? - ??:??"
	if tr, err := sailing.LocalTimeRange(); err == nil {
		timeStr = tr
	}

	ship := sailing.ShipCode
	if len(ship) > 10 {
		ship = ship[:10]
	}

	entry := fmt.Sprintf("%s %s  %s",
		styleTime.Render(fmt.Sprintf("%-13s", timeStr)),
		formatCapacity(sailing.Capacities.SmallVehicles),
		styleShip.Render(fmt.Sprintf("%-10s", ship)),
	)

	if selected {
		return styleSelected.Render(">") + entry
	}
	return " " + entry
}

// renderTrackingList renders the tracked sailings and their live state.
func (m Model) renderTrackingList(height int) string {
	title := styleHeader.Render(m.tr.T("track-list"))

	if len(m.tracked) == 0 {
		return title + "\n" + styleMuted.Render(" Nothing tracked yet")
	}

	var b strings.Builder
	b.WriteString(title)
	b.WriteString("\n")

	header := fmt.Sprintf(" %-3s  %-10s  %-13s  %s",
		m.tr.T("direction"), m.tr.T("date"), m.tr.T("time"), "")
	b.WriteString(styleMuted.Render(header))
	b.WriteString("\n")

	maxVisible := height - 4
	if maxVisible < 1 {
		maxVisible = 1
	}
	if len(m.tracked) < maxVisible {
		maxVisible = len(m.tracked)
	}

	for i := 0; i < maxVisible; i++ {
		entry := m.tracked[i]

		timeStr := "??:?? - ??:??"
		if tr, err := entry.Sailing.LocalTimeRange(); err == nil {
			timeStr = tr
		}

		var status string
		switch {
		case entry.Found:
			status = styleFound.Render(fmt.Sprintf("%d %s", entry.Spots, m.tr.T("spots")))
		case entry.Err != nil:
			status = styleError.Render(m.tr.T("status-failed"))
		default:
			status = styleMuted.Render(fmt.Sprintf("%s (%d)", m.tr.T("status-waiting"), entry.Polls))
		}

		b.WriteString(fmt.Sprintf(" %s  %s  %s  %s",
			styleRoute.Render(fmt.Sprintf("%-3s", entry.Route.Abbreviation())),
			styleTime.Render(entry.Date.Format(models.DateLayout)),
			styleTime.Render(fmt.Sprintf("%-13s", timeStr)),
			status,
		))
		if i < maxVisible-1 {
			b.WriteString("\n")
		}
	}

	if m.notice != "" {
		b.WriteString("\n\n")
		b.WriteString(styleFound.Render(" " + m.notice))
	}

	return b.String()
}

// renderStatusBar renders context-aware keyboard hints at the bottom.
func (m Model) renderStatusBar() string {
	var hints string
	switch m.step {
	case stepRoute:
		hints = "j/k:navigate  Enter:select  t:tracked  q:quit"
	case stepDate:
		hints = "Enter:confirm  Esc:back  Ctrl+C:quit"
	case stepSailing:
		hints = "j/k:navigate  Enter:track  r:refresh  Tab:tracked  Esc:back  q:quit"
	case stepTracking:
		hints = "c:clear finished  x:clear waiting  n:new search  Esc:back  q:quit"
	}

	return styleStatusBar.Width(m.width).Render(" " + hints)
}

// visibleRange calculates the start and end indices for a scrollable list.
func visibleRange(cursor, total, maxVisible int) (int, int) {
	if total <= maxVisible {
		return 0, total
	}

	start := cursor - maxVisible/2
	if start < 0 {
		start = 0
	}
	end := start + maxVisible
	if end > total {
		end = total
		start = end - maxVisible
		if start < 0 {
			start = 0
		}
	}
	return start, end
}
