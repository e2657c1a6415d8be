package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/paat-dev/paat/internal/api"
	"github.com/paat-dev/paat/internal/i18n"
	"github.com/paat-dev/paat/internal/models"
	"github.com/paat-dev/paat/internal/notify"
	"github.com/paat-dev/paat/internal/watch"
)

// step is the screen the flow currently shows. The flow is linear:
// pick a crossing, pick a date, pick a sailing, watch it.
type step int

const (
	stepRoute step = iota
	stepDate
	stepSailing
	stepTracking
)

// Model is the root Bubble Tea model for the TUI.
type Model struct {
	client   *api.Client
	registry *watch.Registry
	tr       *i18n.Translator
	notifier notify.Notifier

	width  int
	height int
	step   step

	// Route selection
	routes      []models.Route
	routeCursor int
	route       models.Route

	// Date selection
	dateInput textinput.Model
	date      time.Time
	dateErr   error

	// Sailing selection
	sailings       []models.Sailing
	sailingCursor  int
	sailingsLoaded bool
	sailingsLoad   bool
	sailingsErr    error

	// Tracking
	tracked []watch.TrackedSailing
	notice  string
}

// New creates a new TUI model. The registry outlives individual screens
// so tracked sailings keep polling while the user browses.
func New(client *api.Client, registry *watch.Registry, tr *i18n.Translator, notifier notify.Notifier) Model {
	ti := textinput.New()
	ti.Placeholder = models.DateLayout
	ti.SetValue(time.Now().Format(models.DateLayout))
	ti.CharLimit = len(models.DateLayout)
	ti.Width = 16

	return Model{
		client:    client,
		registry:  registry,
		tr:        tr,
		notifier:  notifier,
		routes:    models.Routes(),
		dateInput: ti,
	}
}

// selectedSailing returns the sailing under the cursor, if any.
func (m Model) selectedSailing() (models.Sailing, bool) {
	if len(m.sailings) == 0 || m.sailingCursor < 0 || m.sailingCursor >= len(m.sailings) {
		return models.Sailing{}, false
	}
	return m.sailings[m.sailingCursor], true
}

// Init starts listening on the registry's update feed.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, waitForUpdate(m.registry))
}
