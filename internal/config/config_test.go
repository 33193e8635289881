package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Shivanand-hulikatti/event-landing/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{})
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, BackendFile, cfg.Store.Backend)
	assert.Equal(t, 5242880, cfg.Store.QuotaBytes)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Equal(t, 10000, cfg.SessionMax)
	assert.Equal(t, "data", cfg.Store.Path, "a directory; the file backend writes <key>.json inside it")
	assert.Equal(t, "json", cfg.Log.Format)
	assert.True(t, cfg.MetricsEnabled)
	assert.False(t, cfg.OperatorAPIEnabled, "registrant listing is opt-in")
	assert.Equal(t, "codezen", cfg.Calendar.UIDDomain)
	assert.Equal(t,
		"host=localhost port=5432 user=postgres password=postgres dbname=eventlanding sslmode=disable",
		cfg.DatabaseConfig().DSN(),
	)
}

func TestLoadFrom_Overrides(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{
		"PORT":                 "9090",
		"STORE_BACKEND":        " Redis ",
		"DATABASE_URL":         "postgres://u:p@db:5432/x",
		"SESSION_TTL":          "5m",
		"LOG_FORMAT":           "console",
		"OPERATOR_API_ENABLED": "true",
	})
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, BackendRedis, cfg.Store.Backend)
	assert.Equal(t, "postgres://u:p@db:5432/x", cfg.DatabaseConfig().DSN())
	assert.Equal(t, 5*time.Minute, cfg.SessionTTL)
	assert.True(t, cfg.OperatorAPIEnabled)
}

func TestLoadFrom_Invalid(t *testing.T) {
	for name, environ := range map[string]map[string]string{
		"backend": {"STORE_BACKEND": "floppy"},
		"ttl":     {"SESSION_TTL": "0s"},
		"format":  {"LOG_FORMAT": "xml"},
		"quota":   {"STORE_QUOTA_BYTES": "lots"},
		"max":     {"SESSION_MAX": "0"},
	} {
		_, err := LoadFrom(environ)
		assert.Error(t, err, name)
	}
}

func TestLoadEvent_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "event.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
title: "Codezen: Build & Connect!"
start: "2025-10-04T16:00:00+05:30"
end: "2025-10-04T19:00:00+05:30"
location: "Main Auditorium, North Campus"
`), 0o600))

	ev, err := LoadEvent(path, time.Now())
	require.NoError(t, err)
	assert.Equal(t, model.EventInfo{
		Title:    "Codezen: Build & Connect!",
		Start:    "2025-10-04T16:00:00+05:30",
		End:      "2025-10-04T19:00:00+05:30",
		Location: "Main Auditorium, North Campus",
	}, ev)
}

func TestLoadEvent_MissingFileUsesDefaults(t *testing.T) {
	now := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)
	ev, err := LoadEvent(filepath.Join(t.TempDir(), "absent.yaml"), now)
	require.NoError(t, err)

	assert.Equal(t, model.EventInfo{
		Title:    DefaultEventTitle,
		Start:    "2025-09-01T12:00:00Z",
		End:      "2025-09-01T14:00:00Z",
		Location: DefaultEventLocation,
	}, ev)
}

func TestLoadEvent_EndDefaultsFromStart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "event.yaml")
	require.NoError(t, os.WriteFile(path, []byte("start: \"2025-10-04T10:00:00Z\"\n"), 0o600))

	ev, err := LoadEvent(path, time.Now())
	require.NoError(t, err)
	assert.Equal(t, "2025-10-04T12:00:00Z", ev.End)
}

func TestLoadEvent_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "event.yaml")
	require.NoError(t, os.WriteFile(path, []byte("title: [unterminated"), 0o600))

	_, err := LoadEvent(path, time.Now())
	assert.Error(t, err)
}
