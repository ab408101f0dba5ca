package goform_test

import (
	"errors"
	"regexp"
	"testing"

	goform "github.com/reoring/goform"
)

func TestRegister_EmptyName(t *testing.T) {
	f := goform.New(goform.Options{})
	if _, err := f.Register(""); !errors.Is(err, goform.ErrEmptyFieldName) {
		t.Fatalf("expected ErrEmptyFieldName, got %v", err)
	}
}

func TestRegister_SeedsAbsent(t *testing.T) {
	f := goform.New(goform.Options{})
	b, err := f.Register("email")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if !b.Value().IsAbsent() {
		t.Fatalf("expected absent, got %v", b.Value())
	}
	v, ok := f.Values()["email"]
	if !ok || !v.IsAbsent() {
		t.Fatalf("expected absent ValueMap entry, got %v (present=%v)", v, ok)
	}
	if fl := f.Flags("email"); !fl.Has(goform.FieldRegistered | goform.FieldIncluded) {
		t.Fatalf("flags = %v", fl)
	}
}

// Mirrored inputs: two bindings for one name share the value.
func TestRegister_DuplicateNameSharesValue(t *testing.T) {
	f := goform.New(goform.Options{})
	hidden, _ := f.Register("code")
	slots, _ := f.Register("code")

	var observed []string
	slots.OnChange(func(v goform.Value) { observed = append(observed, v.String()) })

	if _, err := hidden.Change(goform.TextChange("12")); err != nil {
		t.Fatalf("change: %v", err)
	}
	if got := slots.Value().String(); got != "12" {
		t.Fatalf("mirror value = %q", got)
	}
	if len(observed) != 1 || observed[0] != "12" {
		t.Fatalf("observed = %v", observed)
	}
	if got := f.Fields(); len(got) != 1 {
		t.Fatalf("fields = %v, want one entry", got)
	}
}

func TestRegister_ExcludedFieldHasNoValueMapKey(t *testing.T) {
	f := goform.New(goform.Options{})
	pw, _ := f.Register("password")
	repeat, _ := f.Register("repeatPassword", goform.RegisterOpt{Exclude: true})
	pw.Set(goform.Text("x"))
	repeat.Set(goform.Text("x"))

	vals := f.Values()
	if _, ok := vals["repeatPassword"]; ok {
		t.Fatalf("excluded field leaked into ValueMap: %v", vals)
	}
	if got := repeat.Value().String(); got != "x" {
		t.Fatalf("excluded field value = %q; controls must still read it", got)
	}
}

func TestRegister_IncludeWinsOverExclude(t *testing.T) {
	f := goform.New(goform.Options{})
	_, _ = f.Register("a", goform.RegisterOpt{Exclude: true})
	_, _ = f.Register("a")
	if _, ok := f.Values()["a"]; !ok {
		t.Fatalf("field included by one registration must be in the ValueMap")
	}
}

func TestBinding_ChangeAppliesMask(t *testing.T) {
	nonDigit := regexp.MustCompile(`\D`)
	f := goform.New(goform.Options{Masks: goform.MaskSet{
		"validationCode": func(_ string, ev goform.ChangeEvent) goform.Value {
			return goform.Text(nonDigit.ReplaceAllString(ev.Value, ""))
		},
	}})
	b, _ := f.Register("validationCode")
	if _, err := b.Change(goform.TextChange("12a3")); err != nil {
		t.Fatalf("change: %v", err)
	}
	if got := b.Value().String(); got != "123" {
		t.Fatalf("stored %q, want 123", got)
	}
}

func TestBinding_FailingMaskKeepsPreviousValue(t *testing.T) {
	f := goform.New(goform.Options{Masks: goform.MaskSet{
		"age": func(_ string, ev goform.ChangeEvent) goform.Value {
			if ev.Value == "bad" {
				panic("cannot mask")
			}
			return goform.Text(ev.Value)
		},
	}})
	b, _ := f.Register("age")
	_, _ = b.Change(goform.TextChange("42"))

	_, err := b.Change(goform.TextChange("bad"))
	if !errors.Is(err, goform.ErrMaskFailed) {
		t.Fatalf("expected ErrMaskFailed, got %v", err)
	}
	var me *goform.MaskError
	if !errors.As(err, &me) || me.Field != "age" {
		t.Fatalf("expected *MaskError for age, got %#v", err)
	}
	if got := b.Value().String(); got != "42" {
		t.Fatalf("value = %q, want previous value 42", got)
	}
}

func TestForm_SubscribeReceivesCopies(t *testing.T) {
	f := goform.New(goform.Options{})
	b, _ := f.Register("name")
	f.Subscribe(func(m goform.ValueMap) { m["name"] = goform.Text("mutated") })
	b.Set(goform.Text("Chuck"))
	if got := b.Value().String(); got != "Chuck" {
		t.Fatalf("value = %q; subscribers must not write through their snapshot", got)
	}
	if fl := f.Flags("name"); !fl.Has(goform.FieldTouched) {
		t.Fatalf("flags = %v", fl)
	}
}
