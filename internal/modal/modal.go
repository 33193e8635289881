// Package modal implements the registration dialog as a small state machine.
//
//	Closed --Open--> FormOpen --SubmitSuccess--> SuccessOpen
//	FormOpen | SuccessOpen --Cancel--> Closed
//
// The controller owns the dialog's visual state and the form it hosts, so a
// cancel can reset both in one step.
package modal

import (
	"errors"
	"fmt"

	"github.com/Shivanand-hulikatti/event-landing/internal/model"
)

// State is the dialog state.
type State int

const (
	Closed State = iota
	FormOpen
	SuccessOpen
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case FormOpen:
		return "form_open"
	case SuccessOpen:
		return "success_open"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// CancelReason records which control dismissed the dialog.
type CancelReason string

const (
	CloseButton CancelReason = "close_button"
	Backdrop    CancelReason = "backdrop"
	EscapeKey   CancelReason = "escape_key"
)

// FirstField is the input that receives focus when the dialog opens.
const FirstField = "fullName"

// ErrInvalidTransition is returned for a transition the current state does
// not allow.
var ErrInvalidTransition = errors.New("invalid modal transition")

// Visual is what the page should currently show.
type Visual struct {
	DialogHidden  bool
	FormHidden    bool
	SuccessHidden bool
	ScrollLocked  bool
	// Focus names the field to focus once the dialog is visible, or "".
	Focus string
}

// FormVisible reports whether the form view is on screen.
func (v Visual) FormVisible() bool { return !v.DialogHidden && !v.FormHidden }

// SuccessVisible reports whether the success view is on screen.
func (v Visual) SuccessVisible() bool { return !v.DialogHidden && !v.SuccessHidden }

// Form is the registration form hosted in the dialog.
type Form struct {
	Values model.RegistrationInput
	Errors map[string]string
	// Notice is a blocking message shown above the form, or "".
	Notice string
}

// Controller is the dialog state machine. It is not safe for concurrent use;
// callers serialise access the way a single UI loop would.
type Controller struct {
	state  State
	visual Visual
	form   Form

	// OnTransition, if set, is called after every state change.
	OnTransition func(Transition)
}

// Transition describes one state change.
type Transition struct {
	From, To State
	// Trigger is "open", "submit_success" or the CancelReason.
	Trigger string
}

// New returns a controller in the Closed state.
func New() *Controller {
	c := &Controller{}
	c.reset()
	return c
}

// State returns the current state.
func (c *Controller) State() State { return c.state }

// Visual returns a copy of the current visual state.
func (c *Controller) Visual() Visual { return c.visual }

// Form returns a copy of the hosted form.
func (c *Controller) Form() Form {
	f := c.form
	f.Errors = make(map[string]string, len(c.form.Errors))
	for k, v := range c.form.Errors {
		f.Errors[k] = v
	}
	return f
}

// Open shows the dialog with the form. Opening an open dialog does nothing.
func (c *Controller) Open() {
	if c.state != Closed {
		return
	}
	c.visual = Visual{
		DialogHidden:  false,
		FormHidden:    false,
		SuccessHidden: true,
		ScrollLocked:  true,
		Focus:         FirstField,
	}
	c.transition(FormOpen, "open")
}

// SubmitSuccess swaps the form for the success view inside the open dialog.
func (c *Controller) SubmitSuccess() error {
	if c.state != FormOpen {
		return fmt.Errorf("%w: submit success from %s", ErrInvalidTransition, c.state)
	}
	c.visual.FormHidden = true
	c.visual.SuccessHidden = false
	c.visual.Focus = ""
	c.form.Errors = map[string]string{}
	c.form.Notice = ""
	c.transition(SuccessOpen, "submit_success")
	return nil
}

// Cancel closes the dialog, resets the form and hides the success view so
// the next Open starts from an empty form. Cancelling a closed dialog does
// nothing.
func (c *Controller) Cancel(reason CancelReason) {
	if c.state == Closed {
		return
	}
	c.reset()
	c.transition(Closed, string(reason))
}

// SetValues records what the visitor typed, so a re-render keeps it.
func (c *Controller) SetValues(in model.RegistrationInput) error {
	if c.state != FormOpen {
		return fmt.Errorf("%w: form is not open", ErrInvalidTransition)
	}
	c.form.Values = in
	return nil
}

// SetErrors replaces the inline field errors and the blocking notice.
func (c *Controller) SetErrors(fieldErrors map[string]string, notice string) error {
	if c.state != FormOpen {
		return fmt.Errorf("%w: form is not open", ErrInvalidTransition)
	}
	c.form.Errors = make(map[string]string, len(fieldErrors))
	for k, v := range fieldErrors {
		if v != "" {
			c.form.Errors[k] = v
		}
	}
	c.form.Notice = notice
	// Refocus the first field after a failed submit.
	c.visual.Focus = FirstField
	return nil
}

// ConsumeFocus returns the pending focus target and clears it, so focus is
// moved once per open rather than on every render.
func (c *Controller) ConsumeFocus() string {
	f := c.visual.Focus
	c.visual.Focus = ""
	return f
}

func (c *Controller) reset() {
	c.visual = Visual{
		DialogHidden:  true,
		FormHidden:    false,
		SuccessHidden: true,
		ScrollLocked:  false,
	}
	c.form = Form{Errors: map[string]string{}}
}

func (c *Controller) transition(to State, trigger string) {
	from := c.state
	c.state = to
	if c.OnTransition != nil {
		c.OnTransition(Transition{From: from, To: to, Trigger: trigger})
	}
}
