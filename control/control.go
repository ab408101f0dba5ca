// Package control implements the input controls that read and write a
// goform.Form: text and choice inputs, a one-time-code input, error
// fields, the submit button and label/legend/fieldset wrappers.
//
// Every constructor takes the form explicitly and fails with
// goform.ErrNoForm when it is nil. Controls keep no state of their own; the
// form's store is the only source of truth and Render snapshots it into a
// view for a Renderer.
package control

import (
	"errors"

	goform "github.com/reoring/goform"
)

var (
	// ErrMissingFor is returned for a Label control without a target field.
	ErrMissingFor = errors.New("control: label requires htmlFor")
	// ErrUnknownVariant is returned for a FormControl variant outside the enum.
	ErrUnknownVariant = errors.New("control: unknown variant")
	// ErrInvalidLength is returned for an OTP input shorter than one slot.
	ErrInvalidLength = errors.New("control: otp length must be positive")
)

// Renderer draws control views. Implementations live outside this package
// (see render/term).
type Renderer interface {
	TextInput(TextView) error
	ChoiceInput(ChoiceView) error
	OTPInput(OTPView) error
	ErrorField(ErrorView) error
	SubmitButton(ButtonView) error
	Label(ControlView) error
	Legend(ControlView) error
	Fieldset(ControlView) error
}

// Control is anything that can render itself.
type Control interface {
	Render(Renderer) error
}

// TextView is the render snapshot of a TextInput.
type TextView struct {
	Name        string
	Type        string
	Placeholder string
	Value       string
	Error       string
}

// ChoiceView is the render snapshot of a ChoiceInput.
type ChoiceView struct {
	Name    string
	Type    ChoiceType
	Label   string
	Checked bool
	Error   string
}

// OTPView is the render snapshot of an OTPInput.
type OTPView struct {
	Name     string
	Slots    []Slot
	Complete bool
	Error    string
}

// ErrorView is the render snapshot of an ErrorField.
type ErrorView struct {
	Name    string
	Message string
}

// ButtonView is the render snapshot of a SubmitButton.
type ButtonView struct {
	Label    string
	Loading  bool
	Disabled bool
}

// ControlView is the render snapshot of a FormControl.
type ControlView struct {
	Variant Variant
	Text    string
	HTMLFor string
	Error   string
}

func errorOf(f *goform.Form, name string) string {
	msg, _ := f.Error(name)
	return msg
}

// RenderAll renders controls in order and stops at the first error.
func RenderAll(r Renderer, controls ...Control) error {
	for _, c := range controls {
		if c == nil {
			continue
		}
		if err := c.Render(r); err != nil {
			return err
		}
	}
	return nil
}
