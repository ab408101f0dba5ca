package control

import (
	goform "github.com/reoring/goform"
)

// Slot is one character cell of an OTPInput.
type Slot struct {
	Index  int
	Char   string
	Active bool // the next cell to be typed into
}

// OTPInput is a one-time-code control: a hidden text field holding the whole
// code and a mirrored registration used to draw one slot per character.
type OTPInput struct {
	form   *goform.Form
	hidden *goform.Binding
	slots  *goform.Binding
	length int
}

// NewOTPInput registers name twice on f; both bindings share one value.
func NewOTPInput(f *goform.Form, name string, length int) (*OTPInput, error) {
	if f == nil {
		return nil, goform.ErrNoForm
	}
	if length <= 0 {
		return nil, ErrInvalidLength
	}
	hidden, err := f.Register(name)
	if err != nil {
		return nil, err
	}
	slots, err := f.Register(name)
	if err != nil {
		return nil, err
	}
	return &OTPInput{form: f, hidden: hidden, slots: slots, length: length}, nil
}

func (o *OTPInput) Name() string { return o.hidden.Name() }
func (o *OTPInput) Len() int     { return o.length }

// Input masks raw and keeps at most Len runes.
func (o *OTPInput) Input(raw string) (goform.Value, error) {
	return o.hidden.Change(goform.TextChange(raw), o.truncate)
}

func (o *OTPInput) truncate(v goform.Value) goform.Value {
	s, ok := v.Text()
	if !ok {
		return v
	}
	if r := []rune(s); len(r) > o.length {
		return goform.Text(string(r[:o.length]))
	}
	return v
}

// Value returns the code typed so far.
func (o *OTPInput) Value() string { return o.slots.Value().String() }

// Slots lays the current value out over Len cells.
func (o *OTPInput) Slots() []Slot {
	chars := []rune(o.Value())
	out := make([]Slot, o.length)
	for i := range out {
		out[i] = Slot{Index: i, Active: i == len(chars)}
		if i < len(chars) {
			out[i].Char = string(chars[i])
		}
	}
	return out
}

// Complete reports whether every slot is filled.
func (o *OTPInput) Complete() bool { return len([]rune(o.Value())) == o.length }

// OnChange runs fn with the slot layout after every write to the code.
func (o *OTPInput) OnChange(fn func([]Slot)) (cancel func()) {
	return o.slots.OnChange(func(goform.Value) { fn(o.Slots()) })
}

func (o *OTPInput) View() OTPView {
	return OTPView{
		Name:     o.Name(),
		Slots:    o.Slots(),
		Complete: o.Complete(),
		Error:    errorOf(o.form, o.Name()),
	}
}

func (o *OTPInput) Render(r Renderer) error { return r.OTPInput(o.View()) }
