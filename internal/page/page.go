// Package page wires the landing page's trigger elements to the
// registration dialog, the submit pipeline and the calendar export.
package page

import (
	"context"
	"errors"
	"fmt"

	"github.com/Shivanand-hulikatti/event-landing/internal/ics"
	"github.com/Shivanand-hulikatti/event-landing/internal/modal"
	"github.com/Shivanand-hulikatti/event-landing/internal/model"
	"github.com/Shivanand-hulikatti/event-landing/internal/service"
	"github.com/rs/zerolog"
)

// Trigger identifies a clickable element on the page.
type Trigger string

const (
	OpenRegisterTop    Trigger = "openRegisterTop"
	OpenRegisterBottom Trigger = "openRegisterBottom"
	CloseRegister      Trigger = "closeRegister"
	// Backdrop is the dismissible region around the dialog.
	Backdrop Trigger = "backdrop"

	AddToCalendarTop    Trigger = "addToCalendarTop"
	AddToCalendarMid    Trigger = "addToCalendarMid"
	AddToCalendarBottom Trigger = "addToCalendarBottom"
	SuccessCalendar     Trigger = "successCalendar"
)

// EscapeKey is the key that dismisses the dialog.
const EscapeKey = "Escape"

// ErrUnknownTrigger is returned for a click on an element the page does not bind.
var ErrUnknownTrigger = errors.New("unknown trigger")

// IsCalendar reports whether t starts a calendar download.
func (t Trigger) IsCalendar() bool {
	switch t {
	case AddToCalendarTop, AddToCalendarMid, AddToCalendarBottom, SuccessCalendar:
		return true
	}
	return false
}

// OpensDialog reports whether t opens the registration dialog.
func (t Trigger) OpensDialog() bool {
	return t == OpenRegisterTop || t == OpenRegisterBottom
}

// Calendar renders the event as a calendar file.
type Calendar interface {
	Generate(event model.EventInfo) (ics.Document, error)
}

// Submitter runs the validate-then-persist pipeline.
type Submitter interface {
	Submit(ctx context.Context, event model.EventInfo, in model.RegistrationInput) service.SubmitResult
}

// Outcome is what the caller must do after an action.
type Outcome struct {
	State modal.State
	// Download is the file to hand to the visitor, or nil.
	Download *ics.Document
	// Validation is set after a submit.
	Validation *service.ValidationResult
}

// Controller is one visitor's page. Like the modal it drives, it expects
// its callers to serialise actions.
type Controller struct {
	event    model.EventInfo
	modal    *modal.Controller
	calendar Calendar
	submit   Submitter
	log      zerolog.Logger
}

// New builds a page controller for event. The event is copied and never
// re-read from anywhere else.
func New(event model.EventInfo, calendar Calendar, submit Submitter, m *modal.Controller, log zerolog.Logger) *Controller {
	if m == nil {
		m = modal.New()
	}
	return &Controller{event: event, modal: m, calendar: calendar, submit: submit, log: log}
}

// Event returns the event the page advertises.
func (c *Controller) Event() model.EventInfo { return c.event }

// Modal exposes the dialog for rendering.
func (c *Controller) Modal() *modal.Controller { return c.modal }

// Click handles a click on trigger t.
func (c *Controller) Click(t Trigger) (Outcome, error) {
	switch t {
	case OpenRegisterTop, OpenRegisterBottom:
		c.modal.Open()
	case CloseRegister:
		c.modal.Cancel(modal.CloseButton)
	case Backdrop:
		c.modal.Cancel(modal.Backdrop)
	case AddToCalendarTop, AddToCalendarMid, AddToCalendarBottom, SuccessCalendar:
		return c.exportCalendar(t)
	default:
		return c.outcome(), fmt.Errorf("%w: %q", ErrUnknownTrigger, t)
	}
	return c.outcome(), nil
}

// KeyDown handles a key press anywhere on the page.
func (c *Controller) KeyDown(key string) Outcome {
	if key == EscapeKey && c.modal.State() != modal.Closed {
		c.modal.Cancel(modal.EscapeKey)
	}
	return c.outcome()
}

// Submit handles the registration form's submit. Invalid input keeps the
// form open with its errors; valid input is recorded and shows the success
// view even when the record could not be stored.
func (c *Controller) Submit(ctx context.Context, in model.RegistrationInput) Outcome {
	if c.modal.State() != modal.FormOpen {
		// The form is not on screen, so nothing could have submitted it.
		return c.outcome()
	}
	_ = c.modal.SetValues(in)

	res := c.submit.Submit(ctx, c.event, in)
	if !res.Validation.OK {
		notice := ""
		if res.Validation.ConsentMissing {
			notice = service.MsgConsentRequired
		}
		fieldErrors := make(map[string]string, len(res.Validation.Errors))
		for f, msg := range res.Validation.Errors {
			fieldErrors[string(f)] = msg
		}
		_ = c.modal.SetErrors(fieldErrors, notice)
		out := c.outcome()
		out.Validation = &res.Validation
		return out
	}

	if err := c.modal.SubmitSuccess(); err != nil {
		c.log.Error().Err(err).Msg("success transition rejected")
	}
	out := c.outcome()
	out.Validation = &res.Validation
	return out
}

func (c *Controller) exportCalendar(t Trigger) (Outcome, error) {
	doc, err := c.calendar.Generate(c.event)
	if err != nil {
		var dateErr *ics.InvalidDateError
		if errors.As(err, &dateErr) {
			c.log.Error().Err(err).Str("trigger", string(t)).Msg("event dates are misconfigured, calendar export aborted")
		}
		return c.outcome(), fmt.Errorf("export calendar: %w", err)
	}
	out := c.outcome()
	out.Download = &doc
	return out, nil
}

func (c *Controller) outcome() Outcome {
	return Outcome{State: c.modal.State()}
}
