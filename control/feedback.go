package control

import (
	"context"

	goform "github.com/reoring/goform"
)

// ErrorField shows the current message of one field.
type ErrorField struct {
	form *goform.Form
	name string
}

func NewErrorField(f *goform.Form, name string) (*ErrorField, error) {
	if f == nil {
		return nil, goform.ErrNoForm
	}
	if name == "" {
		return nil, goform.ErrEmptyFieldName
	}
	return &ErrorField{form: f, name: name}, nil
}

// Message returns the field's error or "".
func (e *ErrorField) Message() string { return errorOf(e.form, e.name) }

func (e *ErrorField) Render(r Renderer) error {
	return r.ErrorField(ErrorView{Name: e.name, Message: e.Message()})
}

// ButtonOptions configures a SubmitButton.
type ButtonOptions struct {
	// UseLoading shows the form's debounced loading flag on the button.
	UseLoading bool
}

// SubmitButton triggers the form's submission.
type SubmitButton struct {
	form  *goform.Form
	label string
	opts  ButtonOptions
}

func NewSubmitButton(f *goform.Form, label string, opts ButtonOptions) (*SubmitButton, error) {
	if f == nil {
		return nil, goform.ErrNoForm
	}
	return &SubmitButton{form: f, label: label, opts: opts}, nil
}

// Press submits the form.
func (b *SubmitButton) Press(ctx context.Context) (goform.Outcome, error) {
	return b.form.Submit(ctx)
}

// Loading reports the debounced loading flag when UseLoading is set.
func (b *SubmitButton) Loading() bool {
	return b.opts.UseLoading && b.form.Loading().On()
}

// Disabled is true while a submission is in flight.
func (b *SubmitButton) Disabled() bool { return b.form.IsSubmitting() }

func (b *SubmitButton) Render(r Renderer) error {
	return r.SubmitButton(ButtonView{Label: b.label, Loading: b.Loading(), Disabled: b.Disabled()})
}
