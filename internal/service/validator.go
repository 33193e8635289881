package service

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/Shivanand-hulikatti/event-landing/internal/model"
)

// Field names a registration form input.
type Field string

// Form fields that can carry an inline error.
const (
	FieldFullName  Field = "fullName"
	FieldEmail     Field = "email"
	FieldStudentID Field = "studentId"
	FieldYear      Field = "year"
	FieldConsent   Field = "consent"
)

// Messages shown to the visitor.
const (
	MsgFullNameRequired  = "Please enter your name."
	MsgEmailInvalid      = "Enter a valid email address."
	MsgStudentIDRequired = "Student ID is required."
	MsgYearRequired      = "Select your year."

	// MsgConsentRequired is shown as a blocking notice, not inline.
	// Every other rule reports inline; the mismatch is a known UX defect.
	MsgConsentRequired = "Please agree to receive event-related emails to proceed."
)

// emailPattern treats Unicode separators, vertical tab and BOM as whitespace;
// RE2's \s alone only covers ASCII.
var emailPattern = regexp.MustCompile(
	`^[^\s\p{Z}\v\x{FEFF}@]+@[^\s\p{Z}\v\x{FEFF}@]+\.[^\s\p{Z}\v\x{FEFF}@]+$`,
)

// ValidationResult is the outcome of one validation pass.
type ValidationResult struct {
	Errors         map[Field]string
	ConsentMissing bool
	OK             bool
}

// Error returns the inline message for f, or "" when f is valid.
func (r ValidationResult) Error(f Field) string {
	return r.Errors[f]
}

// Validate checks every rule and reports all failures together.
func Validate(in model.RegistrationInput) ValidationResult {
	res := ValidationResult{Errors: make(map[Field]string)}

	if trim(in.FullName) == "" {
		res.Errors[FieldFullName] = MsgFullNameRequired
	}
	if !emailPattern.MatchString(trim(in.Email)) {
		res.Errors[FieldEmail] = MsgEmailInvalid
	}
	if trim(in.StudentID) == "" {
		res.Errors[FieldStudentID] = MsgStudentIDRequired
	}
	if !in.Year.Valid() {
		res.Errors[FieldYear] = MsgYearRequired
	}
	res.ConsentMissing = !in.Consent

	res.OK = len(res.Errors) == 0 && !res.ConsentMissing
	return res
}

// Normalize trims surrounding whitespace from the free-text fields.
func Normalize(in model.RegistrationInput) model.RegistrationInput {
	in.FullName = trim(in.FullName)
	in.Email = trim(in.Email)
	in.StudentID = trim(in.StudentID)
	in.Department = trim(in.Department)
	return in
}

// trim strips leading and trailing whitespace, BOM included.
func trim(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == '\uFEFF'
	})
}
