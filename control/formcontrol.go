package control

import (
	goform "github.com/reoring/goform"
)

// Variant selects the wrapper element of a FormControl.
type Variant int

const (
	Label Variant = iota
	Legend
	Fieldset
)

func (v Variant) String() string {
	switch v {
	case Label:
		return "label"
	case Legend:
		return "legend"
	case Fieldset:
		return "fieldset"
	default:
		return "unknown"
	}
}

// FormControl labels or groups other controls. HTMLFor names the field the
// wrapper describes; its error is carried into the view.
type FormControl struct {
	form    *goform.Form
	variant Variant
	text    string
	htmlFor string
}

// NewFormControl validates the variant; a Label must name its field.
func NewFormControl(f *goform.Form, variant Variant, text, htmlFor string) (*FormControl, error) {
	if f == nil {
		return nil, goform.ErrNoForm
	}
	switch variant {
	case Label:
		if htmlFor == "" {
			return nil, ErrMissingFor
		}
	case Legend, Fieldset:
	default:
		return nil, ErrUnknownVariant
	}
	return &FormControl{form: f, variant: variant, text: text, htmlFor: htmlFor}, nil
}

func (c *FormControl) Variant() Variant { return c.variant }

func (c *FormControl) View() ControlView {
	v := ControlView{Variant: c.variant, Text: c.text, HTMLFor: c.htmlFor}
	if c.htmlFor != "" {
		v.Error = errorOf(c.form, c.htmlFor)
	}
	return v
}

func (c *FormControl) Render(r Renderer) error {
	v := c.View()
	switch c.variant {
	case Label:
		return r.Label(v)
	case Legend:
		return r.Legend(v)
	default:
		return r.Fieldset(v)
	}
}
