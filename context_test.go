package goform_test

import (
	"context"
	"errors"
	"testing"

	goform "github.com/reoring/goform"
)

func TestFromContext(t *testing.T) {
	f := goform.New(goform.Options{Name: "login"})
	ctx := goform.WithForm(context.Background(), f)
	got, err := goform.FromContext(ctx)
	if err != nil || got != f {
		t.Fatalf("FromContext = %v, %v", got, err)
	}
}

func TestFromContext_Missing(t *testing.T) {
	if _, err := goform.FromContext(context.Background()); !errors.Is(err, goform.ErrNoForm) {
		t.Fatalf("expected ErrNoForm, got %v", err)
	}
}

func TestMustFromContext_PanicsOutsideForm(t *testing.T) {
	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, goform.ErrNoForm) {
			t.Fatalf("expected ErrNoForm panic, got %v", r)
		}
	}()
	goform.MustFromContext(context.Background())
}

func TestForm_OnChangeObserver(t *testing.T) {
	var last goform.ValueMap
	f := goform.New(goform.Options{OnChange: func(m goform.ValueMap) { last = m }})
	b, _ := f.Register("username")
	_, _ = b.Change(goform.TextChange("chuck"))
	if got := last["username"].String(); got != "chuck" {
		t.Fatalf("observer saw %q", got)
	}
	if f.ID() == "" || f.ID() == goform.New(goform.Options{}).ID() {
		t.Fatalf("each mount needs its own id")
	}
}
