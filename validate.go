package goform

import "context"

// Validator is the external schema evaluator. It receives the full ValueMap,
// which may lack fields that were never registered, and returns nil when the
// values are acceptable or Issues naming the rejected fields.
type Validator interface {
	Validate(ctx context.Context, values ValueMap) error
}

// ValidatorFunc adapts a function to Validator.
type ValidatorFunc func(ctx context.Context, values ValueMap) error

func (f ValidatorFunc) Validate(ctx context.Context, values ValueMap) error { return f(ctx, values) }

// Result is the outcome of one validation pass.
type Result struct {
	OK     bool
	Errors ErrorMap // One message per rejected field; empty when OK.
	// Err is set when the evaluator failed with something other than Issues.
	// No field is blamed in that case.
	Err error
}

// Validate runs v against values. A nil validator accepts everything.
func Validate(ctx context.Context, v Validator, values ValueMap) Result {
	if v == nil {
		return Result{OK: true, Errors: ErrorMap{}}
	}
	err := v.Validate(ctx, values)
	if err == nil {
		return Result{OK: true, Errors: ErrorMap{}}
	}
	iss, ok := AsIssues(err)
	if !ok {
		return Result{Errors: ErrorMap{}, Err: err}
	}
	em := iss.ErrorMap()
	if len(em) == 0 && len(iss) == 0 {
		return Result{OK: true, Errors: em}
	}
	return Result{Errors: em}
}
