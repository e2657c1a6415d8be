package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/paat-dev/paat/internal/api"
	"github.com/paat-dev/paat/internal/booking"
	"github.com/paat-dev/paat/internal/config"
	"github.com/paat-dev/paat/internal/i18n"
	"github.com/paat-dev/paat/internal/models"
	"github.com/paat-dev/paat/internal/notify"
	"github.com/paat-dev/paat/internal/output"
	"github.com/paat-dev/paat/internal/tui"
	"github.com/paat-dev/paat/internal/watch"
	"github.com/spf13/cobra"
)

var version = "1.2.0"

func main() {
	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "paat",
	Short: "Watch praamid.ee ferry sailings for free car spots",
	Long: `paat watches the praamid.ee ferry lines between the Estonian
mainland and the islands of Hiiumaa and Muhumaa, and tells you the
moment a sold-out sailing gets space for another car.

Features:
  - List all sailings on a crossing for any date
  - Watch one sailing until small-vehicle capacity appears
  - Audible alert when capacity is found
  - Automatic rebooking of an existing ticket through the web portal
  - Interactive full-screen TUI
  - JSON output for scripting

Quick Start:
  1. Launch TUI:          paat (or paat tui)
  2. List crossings:      paat routes
  3. List sailings:       paat sailings --route HR --date 2024-06-01
  4. Watch a sailing:     paat watch --route HR --date 2024-06-01 --sailing <uid>`,
	Version: version,
	RunE: func(cmd *cobra.Command, args []string) error {
		// If no subcommand is provided, launch TUI
		if len(args) == 0 {
			return runTUI(cmd, args)
		}
		return cmd.Help()
	},
}

// Global flags
var (
	flagConfig  string
	flagJSON    bool
	flagRawJSON bool
	flagColor   string
	flagNoCache bool
	flagLang    string
)

// Sailings/watch flags
var (
	flagRoute     string
	flagDate      string
	flagSailing   string
	flagInterval  time.Duration
	flagCapacity  bool
	flagShip      bool
	flagRefresh   time.Duration
	flagNoSound   bool
	flagBook      bool
	flagBookingID string
)

func init() {
	rootCmd.AddCommand(sailingsCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(routesCmd)
	rootCmd.AddCommand(tuiCmd)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file (default paat.yaml, $HOME/.config/paat)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Output as JSON")
	rootCmd.PersistentFlags().BoolVar(&flagRawJSON, "raw-json", false, "Output raw API response")
	rootCmd.PersistentFlags().StringVar(&flagColor, "color", "auto", "Color output: auto, always, never")
	rootCmd.PersistentFlags().BoolVar(&flagNoCache, "no-cache", false, "Disable response caching")
	rootCmd.PersistentFlags().StringVar(&flagLang, "lang", "", "Interface language: en, et")

	// Sailings-specific flags
	sailingsCmd.Flags().StringVarP(&flagRoute, "route", "r", "", "Crossing (HR, RH, KV, VK or full name)")
	sailingsCmd.Flags().StringVarP(&flagDate, "date", "d", "", "Departure date (YYYY-MM-DD, default today)")
	sailingsCmd.Flags().BoolVar(&flagCapacity, "capacity", false, "Show capacity columns")
	sailingsCmd.Flags().BoolVar(&flagShip, "ship", false, "Show the ship serving each sailing")
	sailingsCmd.Flags().DurationVar(&flagRefresh, "refresh", 0, "Repaint the table on an interval (live board)")
	_ = sailingsCmd.MarkFlagRequired("route")

	// Watch-specific flags
	watchCmd.Flags().StringVarP(&flagRoute, "route", "r", "", "Crossing (HR, RH, KV, VK or full name)")
	watchCmd.Flags().StringVarP(&flagDate, "date", "d", "", "Departure date (YYYY-MM-DD, default today)")
	watchCmd.Flags().StringVarP(&flagSailing, "sailing", "s", "", "Sailing uid to watch")
	watchCmd.Flags().DurationVar(&flagInterval, "interval", 0, "Poll interval (default 30s)")
	watchCmd.Flags().BoolVar(&flagNoSound, "no-sound", false, "Skip the audible alert")
	watchCmd.Flags().BoolVar(&flagBook, "book", false, "Rebook an existing ticket when capacity appears")
	watchCmd.Flags().StringVar(&flagBookingID, "booking-id", "", "Booking uid to move (required with --book)")
	_ = watchCmd.MarkFlagRequired("route")
}

// loadConfig resolves the runtime configuration.
func loadConfig() *config.Config {
	return config.LoadOrDefault(flagConfig)
}

// createClient creates an API client with common options
func createClient(cfg *config.Config) *api.Client {
	opts := []api.ClientOption{
		api.WithBaseURL(cfg.BaseURL),
		api.WithTimeout(cfg.HTTPTimeout),
	}

	// Enable caching unless disabled
	if !flagNoCache && !cfg.NoCache {
		opts = append(opts, api.WithDefaultCache())
	}

	return api.NewClient(opts...)
}

// newLogger builds the CLI logger from the configured level.
func newLogger(cfg *config.Config) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})
	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}
	return logger
}

// newTranslator resolves the interface language, flag over config.
func newTranslator(cfg *config.Config) (*i18n.Translator, error) {
	locale := cfg.Locale
	if flagLang != "" {
		locale = flagLang
	}
	return i18n.NewTranslator(locale)
}

// getColorMode returns the color mode based on flag
func getColorMode() output.ColorMode {
	return output.ParseColorMode(flagColor)
}

// parseDate parses the --date flag, defaulting to today.
func parseDate() (time.Time, error) {
	if flagDate == "" {
		now := time.Now()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local), nil
	}
	date, err := time.ParseInLocation(models.DateLayout, flagDate, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("date must be %s: %w", models.DateLayout, err)
	}
	return date, nil
}

var sailingsCmd = &cobra.Command{
	Use:   "sailings",
	Short: "List sailings on a crossing",
	Long: `List all sailings on a crossing for one departure date,
ordered by departure time.

The crossing can be given as its abbreviation or full name:
  HR  Heltermaa - Rohuküla
  RH  Rohuküla - Heltermaa
  KV  Kuivastu - Virtsu
  VK  Virtsu - Kuivastu

Examples:
  paat sailings --route HR
  paat sailings --route HR --date 2024-06-01 --capacity --ship
  paat sailings --route "Kuivastu - Virtsu" --json`,
	RunE: runSailings,
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch one sailing until capacity appears",
	Long: `Poll the chosen sailing until it has space for another small
vehicle, then raise an audible alert.

The sailing uid comes from 'paat sailings --json'. When --sailing is
omitted, the day's sailings are listed and the pick is read from stdin.

Rebooking:
  --book --booking-id <uid>   When capacity appears, open the booking
                              portal in a browser and move the given
                              booking onto the watched sailing.

Examples:
  paat watch --route HR --date 2024-06-01 --sailing <uid>
  paat watch --route HR --sailing <uid> --interval 10s --no-sound
  paat watch --route HR --sailing <uid> --book --booking-id <booking>`,
	RunE: runWatch,
}

var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "List the supported crossings",
	RunE:  runRoutes,
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive full-screen TUI",
	Long: `Launch an interactive full-screen terminal UI: pick a crossing,
a date and a sailing, then track any number of sailings at once.

Keyboard:
  j/k or arrows  Navigate lists
  Enter        Select / track
  Esc          Go back
  c            Clear finished entries
  q            Quit`,
	RunE: runTUI,
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	client := createClient(cfg)

	tr, err := newTranslator(cfg)
	if err != nil {
		return fmt.Errorf("failed to load translations: %w", err)
	}

	// The TUI registry polls without the listing cache.
	watchClient := api.NewClient(
		api.WithBaseURL(cfg.BaseURL),
		api.WithTimeout(cfg.HTTPTimeout),
	)
	registry := watch.NewRegistry(watchClient,
		watch.WithRegistryInterval(cfg.PollInterval),
		watch.WithRegistryLogger(newLogger(cfg)),
	)
	defer registry.Stop()

	var notifier notify.Notifier
	if cfg.Sound {
		notifier = notify.Fallback{
			notify.NewToneNotifier(0),
			notify.NewBellNotifier(os.Stdout),
		}
	}

	model := tui.New(client, registry, tr, notifier)
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err = p.Run()
	return err
}

func runRoutes(cmd *cobra.Command, args []string) error {
	if flagJSON {
		abbrs := make([]string, 0, len(models.Routes()))
		for _, route := range models.Routes() {
			abbrs = append(abbrs, route.Abbreviation())
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(abbrs)
	}

	colors := output.NewColors(getColorMode())
	output.RenderRoutes(os.Stdout, output.TableOptions{Colors: colors})
	return nil
}

func runSailings(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	cfg := loadConfig()

	route, err := models.ParseRoute(flagRoute)
	if err != nil {
		return fmt.Errorf("%w\nUse 'paat routes' to list crossings", err)
	}

	date, err := parseDate()
	if err != nil {
		return err
	}

	client := createClient(cfg)

	// Raw JSON output
	if flagRawJSON {
		raw, err := client.FetchSailingsRaw(ctx, route, date)
		if err != nil {
			return err
		}
		return printPrettyJSON(raw)
	}

	// Live board repaints instead of printing once
	if flagRefresh > 0 && !flagJSON {
		return runSailingsLive(client, route, date, output.NewColors(getColorMode()))
	}

	set, err := client.FetchSailings(ctx, route, date)
	if err != nil {
		return err
	}

	// JSON output
	if flagJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(set.Sorted())
	}

	// Text output with colors
	colors := output.NewColors(getColorMode())
	output.RenderSailings(os.Stdout, set, output.TableOptions{
		Colors:       colors,
		ShowCapacity: flagCapacity,
		ShowShip:     flagShip,
	})

	return nil
}

// runSailingsLive repaints the sailing table on every tick until
// interrupted.
func runSailingsLive(client *api.Client, route models.Route, date time.Time, colors *output.Colors) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := output.SetupSignalHandler()
	go func() {
		<-sigChan
		cancel()
	}()

	output.HideCursor(os.Stdout)
	defer output.ShowCursor(os.Stdout)

	sched := watch.NewScheduler(flagRefresh)
	for range sched.Ticks(ctx) {
		set, err := client.FetchSailings(ctx, route, date)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			return err
		}

		output.ClearScreen(os.Stdout)
		fmt.Printf("%s  %s  %s\n\n",
			colors.Route(route.Abbreviation()),
			colors.Time(date.Format(models.DateLayout)),
			colors.Muted("as of %s", time.Now().Format("15:04:05")),
		)
		output.RenderSailings(os.Stdout, set, output.TableOptions{
			Colors:       colors,
			ShowCapacity: flagCapacity,
			ShowShip:     flagShip,
		})
	}

	return nil
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	logger := newLogger(cfg)

	route, err := models.ParseRoute(flagRoute)
	if err != nil {
		return fmt.Errorf("%w\nUse 'paat routes' to list crossings", err)
	}

	date, err := parseDate()
	if err != nil {
		return err
	}

	if flagBook && flagBookingID == "" {
		return fmt.Errorf("--book requires --booking-id")
	}

	interval := cfg.PollInterval
	if flagInterval > 0 {
		interval = flagInterval
	}

	// The wait loop needs every poll to hit the server; no cache.
	client := api.NewClient(
		api.WithBaseURL(cfg.BaseURL),
		api.WithTimeout(cfg.HTTPTimeout),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := output.SetupSignalHandler()
	go func() {
		<-sigChan
		cancel()
	}()

	colors := output.NewColors(getColorMode())

	sailingID := flagSailing
	if sailingID == "" {
		sailingID, err = selectSailing(ctx, client, route, date, colors)
		if err != nil {
			return err
		}
		flagSailing = sailingID
	}

	engine := watch.NewEngine(client, route, date, sailingID,
		watch.WithInterval(interval),
		watch.WithLogger(logger),
	)

	logger.Info("watching sailing",
		"route", route.Abbreviation(),
		"date", date.Format(models.DateLayout),
		"sailing", flagSailing,
		"interval", interval,
	)

	polls := 0
	for outcome := range engine.Run(ctx) {
		switch outcome.Status {
		case watch.StatusWaiting:
			polls++
			logger.Info("no capacity yet", "polls", polls)

		case watch.StatusFailed:
			return fmt.Errorf("watch failed: %w", outcome.Err)

		case watch.StatusFound:
			fmt.Println(colors.Found("Capacity found: %d spots", outcome.Spots))
			return handleFound(ctx, cfg, route, date, outcome.Spots, logger)
		}
	}

	// The outcome channel closed without a terminal state: cancelled.
	logger.Info("watch cancelled")
	return nil
}

// selectSailing lists the day's sailings and reads a pick from stdin.
func selectSailing(ctx context.Context, client *api.Client, route models.Route, date time.Time, colors *output.Colors) (string, error) {
	set, err := client.FetchSailings(ctx, route, date)
	if err != nil {
		return "", err
	}

	sailings := set.Sorted()
	if len(sailings) == 0 {
		return "", fmt.Errorf("no sailings on %s %s",
			route.Abbreviation(), date.Format(models.DateLayout))
	}

	fmt.Printf("%s  %s\n\n", colors.Route(route.Label()), colors.Time(date.Format(models.DateLayout)))
	for i, sailing := range sailings {
		timeStr := "??:?? - ??:??"
		if tr, err := sailing.LocalTimeRange(); err == nil {
			timeStr = tr
		}
		fmt.Printf("%3d  %-13s  %s %s\n",
			i+1, timeStr, colors.FormatCapacity(sailing.Capacities.SmallVehicles),
			colors.Ship(sailing.ShipCode))
	}

	fmt.Printf("\nWatch which sailing? [1-%d]: ", len(sailings))
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("reading selection: %w", err)
	}

	pick, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil || pick < 1 || pick > len(sailings) {
		return "", fmt.Errorf("selection must be a number between 1 and %d", len(sailings))
	}

	return sailings[pick-1].UID, nil
}

// handleFound raises the alert and, when asked, rebooks the ticket.
func handleFound(ctx context.Context, cfg *config.Config, route models.Route, date time.Time, spots int, logger *log.Logger) error {
	if cfg.Sound && !flagNoSound {
		notifier := notify.Fallback{
			notify.NewToneNotifier(0),
			notify.NewBellNotifier(os.Stdout),
		}
		if err := notifier.Alert(ctx); err != nil {
			logger.Warn("alert failed", "err", err)
		}
	}

	if !flagBook {
		return nil
	}

	// Fetch the sailing once more for its departure time; the booking
	// page matches rows by time, not uid.
	client := api.NewClient(
		api.WithBaseURL(cfg.BaseURL),
		api.WithTimeout(cfg.HTTPTimeout),
	)
	set, err := client.FetchSailings(ctx, route, date)
	if err != nil {
		return fmt.Errorf("capacity found but sailing lookup failed: %w", err)
	}
	sailing, ok := set[flagSailing]
	if !ok {
		return fmt.Errorf("capacity found but sailing %s vanished from the listing", flagSailing)
	}

	logger.Info("rebooking", "booking", flagBookingID, "spots", spots)
	changer := booking.NewChanger()
	if err := changer.ChangeBooking(ctx, flagBookingID, route, date, sailing); err != nil {
		return fmt.Errorf("rebooking failed: %w", err)
	}

	logger.Info("booking moved", "sailing", flagSailing)
	return nil
}

func printPrettyJSON(data []byte) error {
	var prettyJSON interface{}
	if err := json.Unmarshal(data, &prettyJSON); err != nil {
		// If we can't parse it, just print raw
		fmt.Println(string(data))
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(prettyJSON)
}
