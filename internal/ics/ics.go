// Package ics builds iCalendar (.ics) documents for the advertised event.
//
// Generation is pure apart from the UID and DTSTAMP, which come from the
// generator's NewUID and Now hooks and differ between calls.
package ics

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/Shivanand-hulikatti/event-landing/internal/model"
	"github.com/google/uuid"
)

// Defaults for the fixed parts of the document.
const (
	DefaultProdID      = "-//Codezen//Event//EN"
	DefaultUIDDomain   = "codezen"
	DefaultDescription = "Join Codezen. Learn, build, and connect."

	// ContentType is the media type the document is served with.
	ContentType = "text/calendar; charset=utf-8"

	dateLayout = "20060102T150405Z"
	crlf       = "\r\n"
)

// Document is a generated calendar file.
type Document struct {
	Filename string
	Content  string
}

// InvalidDateError reports an event timestamp that cannot be parsed into an
// instant. It indicates broken page content, not a user error.
type InvalidDateError struct {
	Field string
	Value string
	Err   error
}

func (e *InvalidDateError) Error() string {
	return fmt.Sprintf("ics: invalid %s date %q", e.Field, e.Value)
}

func (e *InvalidDateError) Unwrap() error { return e.Err }

// Generator renders EventInfo into calendar documents.
type Generator struct {
	ProdID      string
	UIDDomain   string
	Description string

	// Location is used for timestamps that carry no zone. Nil means time.Local.
	Location *time.Location

	Now    func() time.Time
	NewUID func() string
}

// NewGenerator constructs a Generator with the default constants.
func NewGenerator() *Generator {
	return &Generator{
		ProdID:      DefaultProdID,
		UIDDomain:   DefaultUIDDomain,
		Description: DefaultDescription,
		Now:         time.Now,
		NewUID:      func() string { return uuid.New().String() },
	}
}

// Generate renders event as a calendar document. It fails with
// *InvalidDateError when Start or End is not a valid instant.
func (g *Generator) Generate(event model.EventInfo) (Document, error) {
	start, err := ParseInstant(event.Start, g.location())
	if err != nil {
		return Document{}, &InvalidDateError{Field: "start", Value: event.Start, Err: err}
	}
	end, err := ParseInstant(event.End, g.location())
	if err != nil {
		return Document{}, &InvalidDateError{Field: "end", Value: event.End, Err: err}
	}

	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:" + g.ProdID,
		"CALSCALE:GREGORIAN",
		"METHOD:PUBLISH",
		"BEGIN:VEVENT",
		"UID:" + g.NewUID() + "@" + g.UIDDomain,
		"DTSTAMP:" + FormatDate(g.Now()),
		"DTSTART:" + FormatDate(start),
		"DTEND:" + FormatDate(end),
		"SUMMARY:" + Escape(event.Title),
		"LOCATION:" + Escape(event.Location),
		"DESCRIPTION:" + Escape(g.Description),
		"END:VEVENT",
		"END:VCALENDAR",
	}

	return Document{
		Filename: Filename(event.Title),
		Content:  strings.Join(lines, crlf),
	}, nil
}

func (g *Generator) location() *time.Location {
	if g.Location == nil {
		return time.Local
	}
	return g.Location
}

// FormatDate renders t in UTC as YYYYMMDDTHHMMSSZ.
func FormatDate(t time.Time) string {
	return t.UTC().Format(dateLayout)
}

// ParseDate is the inverse of FormatDate.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(dateLayout, s)
}

// zonedLayouts cover ISO-8601 forms RFC 3339 leaves out.
var zonedLayouts = []string{
	"2006-01-02T15:04Z07:00",
}

// zoneless layouts are read in the caller's location; date-only is UTC.
var zonelessLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
}

// ParseInstant parses the ISO-8601 forms page content uses.
func ParseInstant(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	for _, layout := range zonelessLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
	}
	return t, nil
}

var textEscaper = strings.NewReplacer(
	`\`, `\\`,
	`,`, `\,`,
	`;`, `\;`,
	"\n", `\n`,
)

// Escape applies iCalendar TEXT escaping. The replacements are single-pass,
// so characters introduced by one rule are never rewritten by another.
func Escape(text string) string {
	return textEscaper.Replace(text)
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lower-cases s, collapses every run outside [a-z0-9] to one hyphen
// and trims hyphens from both ends.
func Slugify(s string) string {
	return strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(s), "-"), "-")
}

// Filename returns the download name for an event titled title.
func Filename(title string) string {
	slug := Slugify(title)
	if slug == "" {
		slug = "event"
	}
	return slug + ".ics"
}
