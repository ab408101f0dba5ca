package formdef

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	goform "github.com/reoring/goform"
	"github.com/reoring/goform/control"
	"github.com/reoring/goform/delivery"
	"github.com/reoring/goform/i18n"
	"github.com/reoring/goform/mask"
	"github.com/reoring/goform/rules"
	"github.com/reoring/goform/sink"
)

// BuildEnv carries the collaborators a built form talks to. Every field is
// optional: without a Sink submissions are accepted and dropped, without an
// Issuer code fields are neither sent nor verified.
type BuildEnv struct {
	Sink         sink.Sink
	Issuer       *delivery.Issuer
	Translator   i18n.Translator
	Logger       *slog.Logger
	LoadingDelay time.Duration
	Next         func()
	OnChange     func(goform.ValueMap)
}

// Controls are the controls built for a definition, in field order.
type Controls struct {
	Labels map[string]*control.FormControl
	Inputs map[string]control.Control
	Errors map[string]*control.ErrorField
	Submit *control.SubmitButton
	order  []string
}

// Text returns the text input for name, if the field is one.
func (c *Controls) Text(name string) (*control.TextInput, bool) {
	t, ok := c.Inputs[name].(*control.TextInput)
	return t, ok
}

// Choice returns the choice input for name, if the field is one.
func (c *Controls) Choice(name string) (*control.ChoiceInput, bool) {
	t, ok := c.Inputs[name].(*control.ChoiceInput)
	return t, ok
}

// OTP returns the one-time-code input for name, if the field is one.
func (c *Controls) OTP(name string) (*control.OTPInput, bool) {
	t, ok := c.Inputs[name].(*control.OTPInput)
	return t, ok
}

// All lists every control in render order: per field its label, input and
// error, then the submit button.
func (c *Controls) All() []control.Control {
	var out []control.Control
	for _, n := range c.order {
		if l, ok := c.Labels[n]; ok {
			out = append(out, l)
		}
		out = append(out, c.Inputs[n], c.Errors[n])
	}
	return append(out, c.Submit)
}

// Input feeds raw text to a text or otp field, or "true"/"false" to a
// choice field.
func (c *Controls) Input(name, raw string) error {
	switch in := c.Inputs[name].(type) {
	case *control.TextInput:
		_, err := in.Input(raw)
		return err
	case *control.OTPInput:
		_, err := in.Input(raw)
		return err
	case *control.ChoiceInput:
		_, err := in.SetChecked(raw == "true" || raw == "on" || raw == "1")
		return err
	default:
		return unknown("field", name, c.order)
	}
}

// Build mounts a new form for d with its controls.
func (d Definition) Build(env BuildEnv) (*goform.Form, *Controls, error) {
	if err := d.Check(); err != nil {
		return nil, nil, err
	}
	masks, err := d.masks()
	if err != nil {
		return nil, nil, err
	}
	validator, err := d.validator(env.Translator)
	if err != nil {
		return nil, nil, err
	}
	f := goform.New(goform.Options{
		Name:         d.Form,
		Validator:    validator,
		Masks:        masks,
		OnSubmit:     d.handler(env),
		OnChange:     env.OnChange,
		Next:         env.Next,
		LoadingDelay: env.LoadingDelay,
		Logger:       env.Logger,
	})
	cs, err := d.controls(f)
	if err != nil {
		return nil, nil, err
	}
	return f, cs, nil
}

func (d Definition) masks() (goform.MaskSet, error) {
	set := goform.MaskSet{}
	for _, f := range d.Fields {
		if len(f.Mask) == 0 && !f.Number {
			continue
		}
		ts := make([]mask.Transform, 0, len(f.Mask))
		for _, s := range f.Mask {
			t, err := buildTransform(s)
			if err != nil {
				return nil, fmt.Errorf("formdef: %s.%s: %w", d.Form, f.Name, err)
			}
			ts = append(ts, t)
		}
		if f.Number {
			set[f.Name] = mask.Number(ts...)
		} else {
			set[f.Name] = mask.Text(ts...)
		}
	}
	return set, nil
}

func (d Definition) validator(tr i18n.Translator) (goform.Validator, error) {
	v := rules.New()
	if tr != nil {
		v.WithTranslator(tr)
	}
	for _, f := range d.Fields {
		rs := make([]rules.Rule, 0, len(f.Rules))
		for _, s := range f.Rules {
			r, err := buildRule(s)
			if err != nil {
				return nil, fmt.Errorf("formdef: %s.%s: %w", d.Form, f.Name, err)
			}
			rs = append(rs, r)
		}
		if len(rs) == 0 {
			continue
		}
		if f.When != nil {
			op, err := parseOp(f.When.Op)
			if err != nil {
				return nil, err
			}
			rs = []rules.Rule{rules.If(f.When.Field, op, f.When.Value).Then(rs...)}
		}
		v.Field(f.Name, rs...)
	}
	return v, nil
}

func (d Definition) controls(f *goform.Form) (*Controls, error) {
	cs := &Controls{
		Labels: map[string]*control.FormControl{},
		Inputs: map[string]control.Control{},
		Errors: map[string]*control.ErrorField{},
	}
	for _, fd := range d.Fields {
		var (
			in  control.Control
			err error
		)
		switch fd.Control {
		case ControlChoice:
			typ := control.Checkbox
			if lower(fd.Type) == "radio" {
				typ = control.Radio
			}
			in, err = control.NewChoiceInput(f, fd.Name, control.ChoiceOptions{Type: typ, Label: fd.Label, Exclude: fd.Exclude})
		case ControlOTP:
			in, err = control.NewOTPInput(f, fd.Name, fd.Length)
		default:
			in, err = control.NewTextInput(f, fd.Name, control.TextOptions{
				Type: fd.Type, Placeholder: fd.Placeholder, Exclude: fd.Exclude,
			})
		}
		if err != nil {
			return nil, fmt.Errorf("formdef: %s.%s: %w", d.Form, fd.Name, err)
		}
		if fd.Label != "" && fd.Control != ControlChoice {
			l, err := control.NewFormControl(f, control.Label, fd.Label, fd.Name)
			if err != nil {
				return nil, err
			}
			cs.Labels[fd.Name] = l
		}
		ef, err := control.NewErrorField(f, fd.Name)
		if err != nil {
			return nil, err
		}
		cs.Inputs[fd.Name] = in
		cs.Errors[fd.Name] = ef
		cs.order = append(cs.order, fd.Name)
	}
	label := d.Submit
	if label == "" {
		label = "Submit"
	}
	btn, err := control.NewSubmitButton(f, label, control.ButtonOptions{UseLoading: d.Loading})
	if err != nil {
		return nil, err
	}
	cs.Submit = btn
	return cs, nil
}

// handler chains code verification, storage and code delivery.
func (d Definition) handler(env BuildEnv) goform.SubmitHandler {
	var store goform.SubmitHandler
	if env.Sink != nil {
		msgs := map[string]string{}
		for _, u := range d.Unique {
			if m := d.message(u, goform.CodeConflict); m != "" {
				msgs[u] = m
			}
		}
		store = sink.Handler(env.Sink, d.Form, sink.HandlerOpt{Unique: d.Unique, Messages: msgs, Logger: env.Logger})
	}
	tr := env.Translator
	if tr == nil {
		tr = translatorFunc(i18n.T)
	}
	return func(ctx context.Context, values goform.ValueMap, setError goform.ErrorSetter) error {
		rejected := false
		set := func(field, msg string) {
			rejected = true
			setError(field, msg)
		}
		if vc := d.VerifyCode; vc != nil && env.Issuer != nil {
			err := env.Issuer.Verify(ctx, values[vc.Address].String(), values[vc.Field].String())
			switch {
			case err == nil:
			case errors.Is(err, delivery.ErrInvalidCode), errors.Is(err, delivery.ErrExpired), errors.Is(err, delivery.ErrNoCode):
				msg := d.message(vc.Field, goform.CodeInvalidCode)
				if msg == "" {
					msg = tr.Message(goform.CodeInvalidCode, nil)
				}
				set(vc.Field, msg)
				return nil
			default:
				return err
			}
		}
		if store != nil {
			if err := store(ctx, values, set); err != nil || rejected {
				return err
			}
		}
		if d.SendCodeTo != "" && env.Issuer != nil {
			if _, err := env.Issuer.Issue(ctx, values[d.SendCodeTo].String()); err != nil {
				return err
			}
		}
		return nil
	}
}

type translatorFunc func(code string, data map[string]string) string

func (f translatorFunc) Message(code string, data map[string]string) string { return f(code, data) }
