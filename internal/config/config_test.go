package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/paat-dev/paat/internal/api"
	"github.com/paat-dev/paat/internal/testutil"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	testutil.AssertNil(t, err)

	testutil.AssertEqual(t, api.BaseURL, cfg.BaseURL)
	testutil.AssertEqual(t, 10*time.Second, cfg.HTTPTimeout)
	testutil.AssertEqual(t, 30*time.Second, cfg.PollInterval)
	testutil.AssertEqual(t, "en", cfg.Locale)
	testutil.AssertTrue(t, cfg.Sound)
	testutil.AssertEqual(t, "info", cfg.LogLevel)
	testutil.AssertFalse(t, cfg.NoCache)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("PAAT_POLL_INTERVAL", "5s")
	t.Setenv("PAAT_LOCALE", "et")
	t.Setenv("PAAT_SOUND", "false")
	t.Setenv("PAAT_LOG_LEVEL", "debug")

	cfg, err := Load("")
	testutil.AssertNil(t, err)

	testutil.AssertEqual(t, 5*time.Second, cfg.PollInterval)
	testutil.AssertEqual(t, "et", cfg.Locale)
	testutil.AssertFalse(t, cfg.Sound)
	testutil.AssertEqual(t, "debug", cfg.LogLevel)
}

func TestLoad_BareSecondsInterval(t *testing.T) {
	t.Setenv("PAAT_POLL_INTERVAL", "45")

	cfg, err := Load("")
	testutil.AssertNil(t, err)
	testutil.AssertEqual(t, 45*time.Second, cfg.PollInterval)
}

func TestLoad_BareSecondsIntervalInConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "paat.yaml")
	testutil.AssertNil(t, os.WriteFile(path, []byte("poll_interval: 45\n"), 0o644))

	cfg, err := Load(path)
	testutil.AssertNil(t, err)
	testutil.AssertEqual(t, 45*time.Second, cfg.PollInterval)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "paat.yaml")
	body := "base_url: https://staging.praamid.ee\npoll_interval: 45s\nlocale: et\n"
	testutil.AssertNil(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := Load(path)
	testutil.AssertNil(t, err)

	testutil.AssertEqual(t, "https://staging.praamid.ee", cfg.BaseURL)
	testutil.AssertEqual(t, 45*time.Second, cfg.PollInterval)
	testutil.AssertEqual(t, "et", cfg.Locale)
}

func TestLoad_EnvironmentBeatsConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "paat.yaml")
	testutil.AssertNil(t, os.WriteFile(path, []byte("poll_interval: 45s\n"), 0o644))

	t.Setenv("PAAT_POLL_INTERVAL", "7s")

	cfg, err := Load(path)
	testutil.AssertNil(t, err)
	testutil.AssertEqual(t, 7*time.Second, cfg.PollInterval)
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	t.Setenv("PAAT_LOG_LEVEL", "loud")

	_, err := Load("")
	testutil.AssertError(t, err)
	testutil.AssertContains(t, err.Error(), "log_level")
}

func TestLoad_RejectsNonPositiveInterval(t *testing.T) {
	t.Setenv("PAAT_POLL_INTERVAL", "0s")

	_, err := Load("")
	testutil.AssertError(t, err)
	testutil.AssertContains(t, err.Error(), "poll_interval")
}

func TestLoadOrDefault_FallsBack(t *testing.T) {
	t.Setenv("PAAT_LOG_LEVEL", "loud")

	cfg := LoadOrDefault("")
	testutil.AssertEqual(t, "info", cfg.LogLevel)
	testutil.AssertEqual(t, 30*time.Second, cfg.PollInterval)
}
