package handler

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/Shivanand-hulikatti/event-landing/internal/ics"
	"golang.org/x/text/language"
)

// displayLocales are the locales the "when" line is formatted for. The
// first entry is the fallback.
var displayLocales = []language.Tag{
	language.AmericanEnglish,
	language.BritishEnglish,
	language.German,
	language.French,
	language.Spanish,
	language.BrazilianPortuguese,
}

var localeMatcher = language.NewMatcher(displayLocales)

type dateLayouts struct {
	date  string
	clock string
}

var layoutsByLocale = map[language.Tag]dateLayouts{
	language.AmericanEnglish:     {date: "Jan 2, 2006", clock: "3:04 PM"},
	language.BritishEnglish:      {date: "2 Jan 2006", clock: "15:04"},
	language.German:              {date: "02.01.2006", clock: "15:04"},
	language.French:              {date: "02/01/2006", clock: "15:04"},
	language.Spanish:             {date: "2/1/2006", clock: "15:04"},
	language.BrazilianPortuguese: {date: "02/01/2006", clock: "15:04"},
}

// matchLocale picks the best supported locale for an Accept-Language value.
func matchLocale(acceptLanguage string) language.Tag {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return displayLocales[0]
	}
	_, idx, _ := localeMatcher.Match(tags...)
	return displayLocales[idx]
}

// whenText renders the event start as "<date> · <time>" in the event's own
// offset. ok is false when start is not a valid instant.
func whenText(start string, tag language.Tag) (string, bool) {
	t, err := ics.ParseInstant(start, time.Local)
	if err != nil {
		return "", false
	}
	l, found := layoutsByLocale[tag]
	if !found {
		l = layoutsByLocale[displayLocales[0]]
	}
	return fmt.Sprintf("%s · %s", t.Format(l.date), t.Format(l.clock)), true
}

// venueName is the location up to its first comma.
func venueName(location string) string {
	head, _, _ := strings.Cut(location, ",")
	if head = strings.TrimSpace(head); head != "" {
		return head
	}
	return location
}

// mapsURL links to a map search for location.
func mapsURL(location string) string {
	return "https://www.google.com/maps/search/?api=1&query=" + escapeURIComponent(location)
}

// uriComponentUnescaper restores the marks QueryEscape encodes but URI
// components leave alone.
var uriComponentUnescaper = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// escapeURIComponent percent-encodes s leaving only A-Z a-z 0-9 and
// - _ . ! ~ * ' ( ) unescaped.
func escapeURIComponent(s string) string {
	return uriComponentUnescaper.Replace(url.QueryEscape(s))
}
