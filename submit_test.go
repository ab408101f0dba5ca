package goform_test

import (
	"context"
	"errors"
	"reflect"
	"sync/atomic"
	"testing"

	goform "github.com/reoring/goform"
)

// requireNonEmpty rejects every listed field holding empty or absent text.
func requireNonEmpty(fields ...string) goform.Validator {
	return goform.ValidatorFunc(func(_ context.Context, vals goform.ValueMap) error {
		var iss goform.Issues
		for _, f := range fields {
			v, ok := vals[f]
			if !ok {
				continue
			}
			if s, _ := v.Text(); s == "" {
				iss = goform.AppendIssues(iss, goform.IssueAt(f, goform.CodeRequired, "required", nil))
			}
		}
		if len(iss) > 0 {
			return iss
		}
		return nil
	})
}

func recordStatuses(f *goform.Form) *[]goform.Status {
	var got []goform.Status
	f.OnStatus(func(s goform.Status) { got = append(got, s) })
	return &got
}

// Scenario A: client-side rejection never enters Submitting.
func TestSubmit_InvalidStaysIdle(t *testing.T) {
	var calls int
	f := goform.New(goform.Options{
		Validator: requireNonEmpty("email", "password"),
		OnSubmit: func(context.Context, goform.ValueMap, goform.ErrorSetter) error {
			calls++
			return nil
		},
	})
	statuses := recordStatuses(f)
	email, _ := f.Register("email")
	password, _ := f.Register("password")
	email.Set(goform.Text(""))
	password.Set(goform.Text(""))

	out, err := f.Submit(context.Background())
	if err != nil || out != goform.OutcomeInvalid {
		t.Fatalf("submit = %v, %v", out, err)
	}
	want := goform.ErrorMap{"email": "required", "password": "required"}
	if got := f.Errors(); !reflect.DeepEqual(got, want) {
		t.Fatalf("errors = %v, want %v", got, want)
	}
	if f.Status() != goform.Idle || len(*statuses) != 0 {
		t.Fatalf("status = %v, transitions = %v", f.Status(), *statuses)
	}
	if calls != 0 {
		t.Fatalf("handler invoked %d times", calls)
	}
}

// Scenario B: a valid form goes Idle -> Submitting -> Succeeded and hands the
// exact values to the handler once.
func TestSubmit_ValidSucceeds(t *testing.T) {
	var calls int
	var received goform.ValueMap
	var nextRan bool
	f := goform.New(goform.Options{
		Validator: requireNonEmpty("email", "password"),
		OnSubmit: func(_ context.Context, vals goform.ValueMap, _ goform.ErrorSetter) error {
			calls++
			received = vals
			return nil
		},
		Next: func() { nextRan = true },
	})
	statuses := recordStatuses(f)
	email, _ := f.Register("email")
	password, _ := f.Register("password")
	email.Set(goform.Text("a@b.com"))
	password.Set(goform.Text("x"))

	out, err := f.Submit(context.Background())
	if err != nil || out != goform.OutcomeSucceeded {
		t.Fatalf("submit = %v, %v", out, err)
	}
	if calls != 1 {
		t.Fatalf("handler calls = %d", calls)
	}
	want := goform.ValueMap{"email": goform.Text("a@b.com"), "password": goform.Text("x")}
	if !reflect.DeepEqual(received, want) {
		t.Fatalf("handler values = %v, want %v", received, want)
	}
	if w := []goform.Status{goform.Submitting, goform.Succeeded}; !reflect.DeepEqual(*statuses, w) {
		t.Fatalf("transitions = %v, want %v", *statuses, w)
	}
	if !f.IsSubmitSuccessful() || !nextRan {
		t.Fatalf("expected success and next step; status=%v next=%v", f.Status(), nextRan)
	}
}

// Scenario D: a domain rejection reported through the setter returns to Idle.
func TestSubmit_HandlerRejection(t *testing.T) {
	f := goform.New(goform.Options{
		OnSubmit: func(_ context.Context, _ goform.ValueMap, setError goform.ErrorSetter) error {
			setError("email", "already registered")
			return nil
		},
		Next: func() { t.Fatalf("next must not run after a rejection") },
	})
	statuses := recordStatuses(f)
	email, _ := f.Register("email")
	password, _ := f.Register("password")
	email.Set(goform.Text("a@b.com"))
	password.Set(goform.Text("x"))

	out, err := f.Submit(context.Background())
	if err != nil || out != goform.OutcomeRejected {
		t.Fatalf("submit = %v, %v", out, err)
	}
	if got := f.Errors(); !reflect.DeepEqual(got, goform.ErrorMap{"email": "already registered"}) {
		t.Fatalf("errors = %v", got)
	}
	if f.Status() != goform.Idle {
		t.Fatalf("status = %v, want idle", f.Status())
	}
	want := []goform.Status{goform.Submitting, goform.Failed, goform.Idle}
	if !reflect.DeepEqual(*statuses, want) {
		t.Fatalf("transitions = %v, want %v", *statuses, want)
	}
}

func TestSubmit_HandlerErrorIsFailure(t *testing.T) {
	boom := errors.New("network down")
	f := goform.New(goform.Options{
		OnSubmit: func(context.Context, goform.ValueMap, goform.ErrorSetter) error { return boom },
	})
	out, err := f.Submit(context.Background())
	if out != goform.OutcomeFailed || !errors.Is(err, boom) {
		t.Fatalf("submit = %v, %v", out, err)
	}
	if f.Status() != goform.Idle {
		t.Fatalf("status = %v", f.Status())
	}
	// the form can be submitted again after a failure
	if _, err := f.Submit(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("resubmit err = %v", err)
	}
}

func TestSubmit_VacuouslyValid(t *testing.T) {
	f := goform.New(goform.Options{})
	out, err := f.Submit(context.Background())
	if err != nil || out != goform.OutcomeSucceeded {
		t.Fatalf("submit = %v, %v", out, err)
	}
}

// Errors from a previous pass are cleared before the handler runs.
func TestSubmit_ErrorsClearedBeforeHandler(t *testing.T) {
	var errsAtHandler goform.ErrorMap
	var f *goform.Form
	f = goform.New(goform.Options{
		Validator: requireNonEmpty("email"),
		OnSubmit: func(context.Context, goform.ValueMap, goform.ErrorSetter) error {
			errsAtHandler = f.Errors()
			return nil
		},
	})
	email, _ := f.Register("email")
	if out, _ := f.Submit(context.Background()); out != goform.OutcomeInvalid {
		t.Fatalf("first submit = %v", out)
	}
	email.Set(goform.Text("a@b.com"))
	if out, _ := f.Submit(context.Background()); out != goform.OutcomeSucceeded {
		t.Fatalf("second submit = %v", out)
	}
	if errsAtHandler == nil || len(errsAtHandler) != 0 {
		t.Fatalf("errors visible to handler = %v, want empty", errsAtHandler)
	}
}

func TestSubmit_ReentrantIgnored(t *testing.T) {
	var calls int32
	var inner error
	var f *goform.Form
	f = goform.New(goform.Options{
		OnSubmit: func(ctx context.Context, _ goform.ValueMap, _ goform.ErrorSetter) error {
			atomic.AddInt32(&calls, 1)
			_, inner = f.Submit(ctx)
			return nil
		},
	})
	if out, err := f.Submit(context.Background()); out != goform.OutcomeSucceeded || err != nil {
		t.Fatalf("submit = %v, %v", out, err)
	}
	if !errors.Is(inner, goform.ErrSubmitInProgress) {
		t.Fatalf("re-entrant submit err = %v", inner)
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("handler calls = %d", n)
	}
}

func TestSubmit_ConcurrentSecondRequestIgnored(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	var calls int32
	f := goform.New(goform.Options{
		OnSubmit: func(context.Context, goform.ValueMap, goform.ErrorSetter) error {
			atomic.AddInt32(&calls, 1)
			close(entered)
			<-release
			return nil
		},
	})
	done := make(chan goform.Outcome)
	go func() {
		out, _ := f.Submit(context.Background())
		done <- out
	}()
	<-entered
	if !f.IsSubmitting() {
		t.Fatalf("status = %v, want submitting", f.Status())
	}
	out, err := f.Submit(context.Background())
	if out != goform.OutcomeIgnored || !errors.Is(err, goform.ErrSubmitInProgress) {
		t.Fatalf("second submit = %v, %v", out, err)
	}
	close(release)
	if out := <-done; out != goform.OutcomeSucceeded {
		t.Fatalf("first submit = %v", out)
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("handler calls = %d", n)
	}
}

func TestSubmit_AfterSuccessIgnored(t *testing.T) {
	f := goform.New(goform.Options{})
	_, _ = f.Submit(context.Background())
	out, err := f.Submit(context.Background())
	if out != goform.OutcomeIgnored || !errors.Is(err, goform.ErrAlreadySubmitted) {
		t.Fatalf("submit after success = %v, %v", out, err)
	}
}

func TestSubmit_SetterInertAfterHandlerReturns(t *testing.T) {
	var kept goform.ErrorSetter
	f := goform.New(goform.Options{
		OnSubmit: func(_ context.Context, _ goform.ValueMap, setError goform.ErrorSetter) error {
			kept = setError
			return nil
		},
	})
	email, _ := f.Register("email")
	email.Set(goform.Text("a@b.com"))
	if out, err := f.Submit(context.Background()); out != goform.OutcomeSucceeded || err != nil {
		t.Fatalf("submit = %v, %v", out, err)
	}
	kept("email", "late")
	if n := len(f.Errors()); n != 0 {
		t.Fatalf("errors after success = %v", f.Errors())
	}
	if f.Status() != goform.Succeeded {
		t.Fatalf("status = %v", f.Status())
	}
}

func TestSubmit_FirstMessageWinsPerField(t *testing.T) {
	f := goform.New(goform.Options{
		Validator: goform.ValidatorFunc(func(context.Context, goform.ValueMap) error {
			return goform.Issues{
				{Field: "password", Code: goform.CodeTooShort, Message: "too short"},
				{Field: "password", Code: goform.CodePattern, Message: "needs a digit"},
			}
		}),
	})
	_, _ = f.Submit(context.Background())
	if msg, _ := f.Error("password"); msg != "too short" {
		t.Fatalf("message = %q, want first one", msg)
	}
}

func TestSubmit_EvaluatorFailureBlamesNoField(t *testing.T) {
	boom := errors.New("schema unavailable")
	f := goform.New(goform.Options{
		Validator: goform.ValidatorFunc(func(context.Context, goform.ValueMap) error { return boom }),
	})
	out, err := f.Submit(context.Background())
	if out != goform.OutcomeFailed || !errors.Is(err, boom) {
		t.Fatalf("submit = %v, %v", out, err)
	}
	if n := len(f.Errors()); n != 0 {
		t.Fatalf("field errors = %d", n)
	}
}

// Fields never registered are absent from the ValueMap and must not fail.
func TestSubmit_UnregisteredFieldsNotRequired(t *testing.T) {
	f := goform.New(goform.Options{Validator: requireNonEmpty("email", "nickname")})
	email, _ := f.Register("email")
	email.Set(goform.Text("a@b.com"))
	if out, err := f.Submit(context.Background()); out != goform.OutcomeSucceeded || err != nil {
		t.Fatalf("submit = %v, %v (errors %v)", out, err, f.Errors())
	}
}
