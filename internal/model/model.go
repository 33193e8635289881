// Package model defines the core domain types for the event landing page.
package model

import "time"

// EventInfo describes the single event the landing page advertises.
// It is built once at startup and passed by value; nothing mutates it.
// Start and End are ISO-8601 strings exactly as supplied by the page content.
type EventInfo struct {
	Title    string `json:"title" yaml:"title"`
	Start    string `json:"start" yaml:"start"`
	End      string `json:"end" yaml:"end"`
	Location string `json:"location" yaml:"location"`
}

// Year is the study-year selection on the registration form.
type Year string

// Year choices offered by the form. The empty Year means "no selection".
const (
	YearFirst    Year = "1"
	YearSecond   Year = "2"
	YearThird    Year = "3"
	YearFourth   Year = "4"
	YearPostgrad Year = "pg"
)

// YearChoices lists the selectable years in display order.
var YearChoices = []Year{YearFirst, YearSecond, YearThird, YearFourth, YearPostgrad}

// Valid reports whether y is one of the fixed choices.
func (y Year) Valid() bool {
	for _, c := range YearChoices {
		if y == c {
			return true
		}
	}
	return false
}

// Label returns the human-readable option text.
func (y Year) Label() string {
	switch y {
	case YearFirst:
		return "1st year"
	case YearSecond:
		return "2nd year"
	case YearThird:
		return "3rd year"
	case YearFourth:
		return "4th year"
	case YearPostgrad:
		return "Postgraduate"
	}
	return ""
}

// RegistrationInput is the raw content of the registration form on submit.
type RegistrationInput struct {
	FullName   string `json:"fullName"`
	Email      string `json:"email"`
	StudentID  string `json:"studentId"`
	Department string `json:"department"`
	Year       Year   `json:"year"`
	Consent    bool   `json:"consent"`
}

// RegistrationRecord is a successful submission together with a snapshot of
// the event it was made for. Records are append-only.
type RegistrationRecord struct {
	RegistrationInput
	EventTitle    string    `json:"eventTitle"`
	EventStart    string    `json:"eventStart"`
	EventEnd      string    `json:"eventEnd"`
	EventLocation string    `json:"eventLocation"`
	SubmittedAt   time.Time `json:"submittedAt"`
}

// NewRegistrationRecord snapshots event into a record for in.
func NewRegistrationRecord(in RegistrationInput, event EventInfo, at time.Time) RegistrationRecord {
	return RegistrationRecord{
		RegistrationInput: in,
		EventTitle:        event.Title,
		EventStart:        event.Start,
		EventEnd:          event.End,
		EventLocation:     event.Location,
		SubmittedAt:       at.UTC(),
	}
}

// ErrorResponse is a standard JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}
