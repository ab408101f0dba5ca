package control_test

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	goform "github.com/reoring/goform"
	"github.com/reoring/goform/control"
	"github.com/reoring/goform/mask"
)

// recorder collects one line per rendered view.
type recorder struct{ lines []string }

func (r *recorder) add(s string) error { r.lines = append(r.lines, s); return nil }

func (r *recorder) TextInput(v control.TextView) error {
	return r.add("text " + v.Name + "=" + v.Value + " err=" + v.Error)
}
func (r *recorder) ChoiceInput(v control.ChoiceView) error {
	if v.Checked {
		return r.add("choice " + v.Name + " on")
	}
	return r.add("choice " + v.Name + " off")
}
func (r *recorder) OTPInput(v control.OTPView) error {
	var b strings.Builder
	for _, s := range v.Slots {
		switch {
		case s.Char != "":
			b.WriteString(s.Char)
		case s.Active:
			b.WriteString("|")
		default:
			b.WriteString("_")
		}
	}
	return r.add("otp " + b.String())
}
func (r *recorder) ErrorField(v control.ErrorView) error { return r.add("error " + v.Name + ": " + v.Message) }
func (r *recorder) SubmitButton(v control.ButtonView) error { return r.add("button " + v.Label) }
func (r *recorder) Label(v control.ControlView) error { return r.add("label " + v.HTMLFor) }
func (r *recorder) Legend(v control.ControlView) error { return r.add("legend " + v.Text) }
func (r *recorder) Fieldset(v control.ControlView) error { return r.add("fieldset " + v.Text) }

func TestConstructors_RequireForm(t *testing.T) {
	checks := []error{
		func() error { _, err := control.NewTextInput(nil, "a", control.TextOptions{}); return err }(),
		func() error { _, err := control.NewChoiceInput(nil, "a", control.ChoiceOptions{}); return err }(),
		func() error { _, err := control.NewOTPInput(nil, "a", 6); return err }(),
		func() error { _, err := control.NewErrorField(nil, "a"); return err }(),
		func() error { _, err := control.NewSubmitButton(nil, "go", control.ButtonOptions{}); return err }(),
		func() error { _, err := control.NewFormControl(nil, control.Legend, "x", ""); return err }(),
	}
	for i, err := range checks {
		if !errors.Is(err, goform.ErrNoForm) {
			t.Fatalf("constructor %d: err = %v, want ErrNoForm", i, err)
		}
	}
}

func TestTextInput_MaskedInput(t *testing.T) {
	f := goform.New(goform.Options{Masks: goform.MaskSet{"phone": mask.Text(mask.Digits)}})
	in, err := control.NewTextInput(f, "phone", control.TextOptions{Type: "tel"})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, err := in.Input("(11) 98765-4321"); err != nil {
		t.Fatalf("input: %v", err)
	}
	if in.Value() != "11987654321" {
		t.Fatalf("value = %q", in.Value())
	}
	if v := in.View(); v.Type != "tel" || v.Value != "11987654321" {
		t.Fatalf("view = %+v", v)
	}
}

func TestTextInput_ExcludedStillRenders(t *testing.T) {
	f := goform.New(goform.Options{})
	in, _ := control.NewTextInput(f, "repeatPassword", control.TextOptions{Type: "password", Exclude: true})
	_, _ = in.Input("x")
	if _, ok := f.Values()["repeatPassword"]; ok {
		t.Fatalf("excluded field submitted")
	}
	if in.Value() != "x" {
		t.Fatalf("value = %q", in.Value())
	}
}

func TestChoiceInput_Toggle(t *testing.T) {
	f := goform.New(goform.Options{})
	c, _ := control.NewChoiceInput(f, "remember", control.ChoiceOptions{Label: "Remember me"})
	if c.Checked() {
		t.Fatalf("absent must read as unchecked")
	}
	_, _ = c.Toggle()
	if !c.Checked() || !f.Values()["remember"].Equal(goform.Bool(true)) {
		t.Fatalf("toggle did not store true: %v", f.Values())
	}
	_, _ = c.SetChecked(false)
	if c.Checked() {
		t.Fatalf("still checked")
	}
}

func TestOTPInput_SlotsAndTruncation(t *testing.T) {
	f := goform.New(goform.Options{Masks: goform.MaskSet{"validationCode": mask.Text(mask.Digits)}})
	otp, err := control.NewOTPInput(f, "validationCode", 6)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	var layouts int
	otp.OnChange(func([]control.Slot) { layouts++ })

	_, _ = otp.Input("12a3")
	want := []control.Slot{
		{Index: 0, Char: "1"}, {Index: 1, Char: "2"}, {Index: 2, Char: "3"},
		{Index: 3, Active: true}, {Index: 4}, {Index: 5},
	}
	if got := otp.Slots(); !reflect.DeepEqual(got, want) {
		t.Fatalf("slots = %+v", got)
	}
	if otp.Complete() {
		t.Fatalf("complete too early")
	}

	_, _ = otp.Input("12345678")
	if otp.Value() != "123456" || !otp.Complete() {
		t.Fatalf("value = %q complete=%v", otp.Value(), otp.Complete())
	}
	for _, s := range otp.Slots() {
		if s.Active {
			t.Fatalf("no slot is active when full: %+v", s)
		}
	}
	if layouts != 2 {
		t.Fatalf("layout notifications = %d", layouts)
	}
	if got := f.Fields(); len(got) != 1 {
		t.Fatalf("fields = %v", got)
	}
	if _, err := control.NewOTPInput(f, "x", 0); !errors.Is(err, control.ErrInvalidLength) {
		t.Fatalf("err = %v", err)
	}
}

func TestFormControl_Variants(t *testing.T) {
	f := goform.New(goform.Options{})
	if _, err := control.NewFormControl(f, control.Label, "Email", ""); !errors.Is(err, control.ErrMissingFor) {
		t.Fatalf("err = %v", err)
	}
	if _, err := control.NewFormControl(f, control.Variant(9), "?", ""); !errors.Is(err, control.ErrUnknownVariant) {
		t.Fatalf("err = %v", err)
	}
	r := &recorder{}
	label, _ := control.NewFormControl(f, control.Label, "Email", "email")
	legend, _ := control.NewFormControl(f, control.Legend, "Account", "")
	set, _ := control.NewFormControl(f, control.Fieldset, "Contact", "")
	if err := control.RenderAll(r, label, legend, set); err != nil {
		t.Fatalf("render: %v", err)
	}
	want := []string{"label email", "legend Account", "fieldset Contact"}
	if !reflect.DeepEqual(r.lines, want) {
		t.Fatalf("lines = %v", r.lines)
	}
}

// A sign-in screen: submit with an empty email, see the error, fix it, succeed.
func TestScreen_SubmitFlow(t *testing.T) {
	var submitted goform.ValueMap
	f := goform.New(goform.Options{
		LoadingDelay: -1,
		Validator: goform.ValidatorFunc(func(_ context.Context, vals goform.ValueMap) error {
			if vals["email"].String() == "" {
				return goform.Issues{goform.IssueAt("email", goform.CodeRequired, "Email obrigatório", nil)}
			}
			return nil
		}),
		OnSubmit: func(_ context.Context, vals goform.ValueMap, _ goform.ErrorSetter) error {
			submitted = vals
			return nil
		},
	})
	email, _ := control.NewTextInput(f, "email", control.TextOptions{Type: "email"})
	emailErr, _ := control.NewErrorField(f, "email")
	remember, _ := control.NewChoiceInput(f, "remember", control.ChoiceOptions{})
	btn, _ := control.NewSubmitButton(f, "Entrar", control.ButtonOptions{UseLoading: true})

	if out, _ := btn.Press(context.Background()); out != goform.OutcomeInvalid {
		t.Fatalf("first press = %v", out)
	}
	r := &recorder{}
	if err := control.RenderAll(r, email, emailErr, remember, btn); err != nil {
		t.Fatalf("render: %v", err)
	}
	want := []string{
		"text email= err=Email obrigatório",
		"error email: Email obrigatório",
		"choice remember off",
		"button Entrar",
	}
	if !reflect.DeepEqual(r.lines, want) {
		t.Fatalf("lines = %q", r.lines)
	}

	_, _ = email.Input("a@b.com")
	if out, err := btn.Press(context.Background()); out != goform.OutcomeSucceeded || err != nil {
		t.Fatalf("second press = %v, %v", out, err)
	}
	if emailErr.Message() != "" {
		t.Fatalf("stale error %q", emailErr.Message())
	}
	if !btn.Loading() {
		t.Fatalf("loading flag should stay on after success")
	}
	wantVals := goform.ValueMap{"email": goform.Text("a@b.com"), "remember": goform.Absent()}
	if !reflect.DeepEqual(submitted, wantVals) {
		t.Fatalf("submitted = %v", submitted)
	}
}
