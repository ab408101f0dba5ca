package control

import (
	goform "github.com/reoring/goform"
)

// TextOptions configures a TextInput.
type TextOptions struct {
	// Type is the input type hint ("text", "email", "password", "tel", ...).
	// Empty means "text".
	Type        string
	Placeholder string
	// Exclude keeps the field out of the submitted values.
	Exclude bool
}

// TextInput is a single-line text control.
type TextInput struct {
	form    *goform.Form
	binding *goform.Binding
	opts    TextOptions
}

// NewTextInput registers name on f.
func NewTextInput(f *goform.Form, name string, opts TextOptions) (*TextInput, error) {
	if f == nil {
		return nil, goform.ErrNoForm
	}
	b, err := f.Register(name, goform.RegisterOpt{Exclude: opts.Exclude})
	if err != nil {
		return nil, err
	}
	if opts.Type == "" {
		opts.Type = "text"
	}
	return &TextInput{form: f, binding: b, opts: opts}, nil
}

// Name returns the bound field name.
func (t *TextInput) Name() string { return t.binding.Name() }

// Input feeds raw user text through the field's mask and stores the result.
func (t *TextInput) Input(raw string) (goform.Value, error) {
	return t.binding.Change(goform.TextChange(raw))
}

// Value returns the stored text ("" while absent).
func (t *TextInput) Value() string { return t.binding.Value().String() }

// Error returns the field's current message.
func (t *TextInput) Error() string { return errorOf(t.form, t.Name()) }

func (t *TextInput) View() TextView {
	return TextView{
		Name:        t.Name(),
		Type:        t.opts.Type,
		Placeholder: t.opts.Placeholder,
		Value:       t.Value(),
		Error:       t.Error(),
	}
}

func (t *TextInput) Render(r Renderer) error { return r.TextInput(t.View()) }
