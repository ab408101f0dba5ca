// Package goform provides:
//
// - A form state store that is the single source of truth for field values and field errors
// - A field registry handing each control a Binding scoped to its own field
// - A mask pipeline that normalizes raw change events before storage
// - A validation gate over an externally supplied Validator (see rules/ for a declarative one)
// - A submission controller sequencing validate -> submit handler -> status, plus a debounced loading flag
//
// Design policy:
// - Keep only the engine in the root package; controls live under control/, built-in masks under mask/,
//   rule sets under rules/, YAML form definitions under formdef/, and the CLI under cmd/goform.
// - Controls receive their *Form explicitly. Building one without a form fails with ErrNoForm.
// - Field-scoped problems never panic: they end up in the ErrorMap. Wiring mistakes fail loudly.
//
// Typical usage:
//
//	f := goform.New(goform.Options{
//		Validator: rules.New().Field("email", rules.Required(), rules.Email()),
//		OnSubmit: func(ctx context.Context, v goform.ValueMap, setError goform.ErrorSetter) error {
//			if taken(v["email"]) {
//				setError("email", "already registered")
//			}
//			return nil
//		},
//	})
//	email, _ := f.Register("email")
//	_, _ = email.Change(goform.TextChange("a@b.com"))
//	outcome, err := f.Submit(ctx)
package goform
