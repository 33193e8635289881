package service

import (
	"testing"

	"github.com/Shivanand-hulikatti/event-landing/internal/model"
	"github.com/stretchr/testify/assert"
)

func validInput() model.RegistrationInput {
	return model.RegistrationInput{
		FullName:  "Ada Lovelace",
		Email:     "ada@example.com",
		StudentID: "S123",
		Year:      model.YearSecond,
		Consent:   true,
	}
}

func TestValidate_AllEmpty(t *testing.T) {
	res := Validate(model.RegistrationInput{})

	assert.False(t, res.OK)
	assert.Len(t, res.Errors, 4)
	for _, f := range []Field{FieldFullName, FieldEmail, FieldStudentID, FieldYear} {
		assert.NotEmpty(t, res.Error(f), f)
	}
	assert.True(t, res.ConsentMissing)
	assert.Empty(t, res.Error(FieldConsent), "consent is never an inline error")
}

func TestValidate_AllValid(t *testing.T) {
	res := Validate(validInput())

	assert.True(t, res.OK)
	assert.Empty(t, res.Errors)
	assert.False(t, res.ConsentMissing)
}

func TestValidate_Messages(t *testing.T) {
	in := validInput()
	in.FullName = "   "
	in.Year = "7"

	res := Validate(in)
	assert.False(t, res.OK)
	assert.Equal(t, map[Field]string{
		FieldFullName: MsgFullNameRequired,
		FieldYear:     MsgYearRequired,
	}, res.Errors)
}

func TestValidate_Email(t *testing.T) {
	tests := map[string]bool{
		"a@b":                    false,
		"noatsign.com":           false,
		"a@b.co":                 true,
		"  a@b.co  ":             true,
		"\ufeffa@b.co\u00a0":     true,
		"a b@c.d":                false,
		"a@@b.co":                false,
		"":                       false,
		"first.last@x.io":        true,
		"ada\u00a0x@example.com": false,
		"ada@exa\u2003mple.com":  false,
		"a\vb@c.co":              false,
		"a@b\u2028c.co":          false,
		"a\ufeffb@c.co":          false,
	}
	for email, ok := range tests {
		in := validInput()
		in.Email = email
		res := Validate(in)
		assert.Equal(t, ok, res.Error(FieldEmail) == "", "email %q", email)
	}
}

func TestValidate_ConsentOnly(t *testing.T) {
	in := validInput()
	in.Consent = false

	res := Validate(in)
	assert.False(t, res.OK)
	assert.Empty(t, res.Errors)
	assert.True(t, res.ConsentMissing)
}

func TestValidate_DepartmentOptional(t *testing.T) {
	in := validInput()
	in.Department = ""
	assert.True(t, Validate(in).OK)
}

func TestNormalize(t *testing.T) {
	got := Normalize(model.RegistrationInput{
		FullName:   "  Ada ",
		Email:      " ada@example.com\t",
		StudentID:  " S1 ",
		Department: " CS ",
		Year:       model.YearFirst,
		Consent:    true,
	})
	assert.Equal(t, model.RegistrationInput{
		FullName:   "Ada",
		Email:      "ada@example.com",
		StudentID:  "S1",
		Department: "CS",
		Year:       model.YearFirst,
		Consent:    true,
	}, got)
}
