package control

import (
	goform "github.com/reoring/goform"
)

// ChoiceType selects how a choice renders.
type ChoiceType int

const (
	Checkbox ChoiceType = iota
	Radio
)

func (t ChoiceType) String() string {
	if t == Radio {
		return "radio"
	}
	return "checkbox"
}

// ChoiceOptions configures a ChoiceInput.
type ChoiceOptions struct {
	Type    ChoiceType
	Label   string
	Exclude bool
}

// ChoiceInput is a boolean control. Both checkbox and radio store a Bool.
type ChoiceInput struct {
	form    *goform.Form
	binding *goform.Binding
	opts    ChoiceOptions
}

// NewChoiceInput registers name on f.
func NewChoiceInput(f *goform.Form, name string, opts ChoiceOptions) (*ChoiceInput, error) {
	if f == nil {
		return nil, goform.ErrNoForm
	}
	b, err := f.Register(name, goform.RegisterOpt{Exclude: opts.Exclude})
	if err != nil {
		return nil, err
	}
	return &ChoiceInput{form: f, binding: b, opts: opts}, nil
}

func (c *ChoiceInput) Name() string { return c.binding.Name() }

// SetChecked stores checked through the field's mask.
func (c *ChoiceInput) SetChecked(checked bool) (goform.Value, error) {
	return c.binding.Change(goform.ChoiceChange(checked))
}

// Toggle flips the current state. An absent value counts as unchecked.
func (c *ChoiceInput) Toggle() (goform.Value, error) {
	return c.SetChecked(!c.Checked())
}

// Checked reports the stored state.
func (c *ChoiceInput) Checked() bool {
	b, _ := c.binding.Value().Bool()
	return b
}

func (c *ChoiceInput) View() ChoiceView {
	return ChoiceView{
		Name:    c.Name(),
		Type:    c.opts.Type,
		Label:   c.opts.Label,
		Checked: c.Checked(),
		Error:   errorOf(c.form, c.Name()),
	}
}

func (c *ChoiceInput) Render(r Renderer) error { return r.ChoiceInput(c.View()) }
