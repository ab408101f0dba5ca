package goform

import "context"

// formKey is the context key for the active form.
type formKey struct{}

// WithForm returns a child context carrying f, so call chains that build
// controls can find their form without passing it explicitly.
func WithForm(ctx context.Context, f *Form) context.Context {
	return context.WithValue(ctx, formKey{}, f)
}

// FromContext retrieves the active form. It returns ErrNoForm when ctx does
// not carry one.
func FromContext(ctx context.Context) (*Form, error) {
	f, _ := ctx.Value(formKey{}).(*Form)
	if f == nil {
		return nil, ErrNoForm
	}
	return f, nil
}

// MustFromContext is FromContext for wiring code; a missing form is a bug
// and panics.
func MustFromContext(ctx context.Context) *Form {
	f, err := FromContext(ctx)
	if err != nil {
		panic(err)
	}
	return f
}
