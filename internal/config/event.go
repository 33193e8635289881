package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/Shivanand-hulikatti/event-landing/internal/ics"
	"github.com/Shivanand-hulikatti/event-landing/internal/model"
	"gopkg.in/yaml.v3"
)

// LoadEvent reads the event content file at path and fills in defaults for
// missing fields. A missing file yields an all-default event. Dates are
// passed through as written; a malformed one surfaces later as an
// ics.InvalidDateError.
func LoadEvent(path string, now time.Time) (model.EventInfo, error) {
	var ev model.EventInfo

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return model.EventInfo{}, fmt.Errorf("read event file: %w", err)
	default:
		if err := yaml.Unmarshal(data, &ev); err != nil {
			return model.EventInfo{}, fmt.Errorf("parse event file: %w", err)
		}
	}

	return withDefaults(ev, now), nil
}

func withDefaults(ev model.EventInfo, now time.Time) model.EventInfo {
	ev.Title = strings.TrimSpace(ev.Title)
	ev.Start = strings.TrimSpace(ev.Start)
	ev.End = strings.TrimSpace(ev.End)
	ev.Location = strings.TrimSpace(ev.Location)

	if ev.Title == "" {
		ev.Title = DefaultEventTitle
	}
	if ev.Start == "" {
		ev.Start = now.UTC().Format(time.RFC3339)
	}
	if ev.End == "" {
		base := now
		if start, err := ics.ParseInstant(ev.Start, time.Local); err == nil {
			base = start
		}
		ev.End = base.Add(DefaultEventDuration).UTC().Format(time.RFC3339)
	}
	if ev.Location == "" {
		ev.Location = DefaultEventLocation
	}
	return ev
}
