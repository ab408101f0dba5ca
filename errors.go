package goform

import (
	"errors"
	"fmt"
	"strings"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	CodeRequired      = "required"
	CodeInvalidType   = "invalid_type"
	CodeTooShort      = "too_short"
	CodeTooLong       = "too_long"
	CodeTooSmall      = "too_small"
	CodeTooBig        = "too_big"
	CodePattern       = "pattern"
	CodeInvalidFormat = "invalid_format"
	CodeInvalidEnum   = "invalid_enum"
	CodeMismatch      = "mismatch"
	CodeDuplicateKey  = "duplicate_key"
	// Domain rejections reported by the submit handler.
	CodeRejected    = "rejected"
	CodeConflict    = "conflict"
	CodeInvalidCode = "invalid_code"
	// Dependency temporary/unavailable errors
	CodeDependencyUnavailable = "dependency_unavailable"
)

var (
	// ErrEmptyFieldName is returned when a control registers without a name.
	ErrEmptyFieldName = errors.New("goform: empty field name")
	// ErrNoForm indicates a control was constructed or looked up outside a form.
	ErrNoForm = errors.New("goform: control used outside a form")
	// ErrSubmitInProgress is returned for a submit request issued while another one is in flight.
	ErrSubmitInProgress = errors.New("goform: submission already in progress")
	// ErrAlreadySubmitted is returned once the form has succeeded; a new Form is required.
	ErrAlreadySubmitted = errors.New("goform: form already submitted")
	// ErrMaskFailed is wrapped by MaskError.
	ErrMaskFailed = errors.New("goform: mask failed")
)

// Issue represents a single field-level validation entry.
type Issue struct {
	Field   string // Field name; empty for form-level issues.
	Code    string // One of the codes listed above.
	Message string
	// Params carries structured parameters (e.g., {"min":8}) for i18n.
	Params map[string]any
	// Rule optionally records the rule name that produced this issue.
	Rule string
}

// Issues is a collection of validation errors that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. required at email
		fmt.Fprintf(b, "%s at %s", it.Code, it.Field)
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// ErrorMap collapses the issues to one message per field. The first issue
// for a field wins; form-level issues (empty Field) are skipped.
func (iss Issues) ErrorMap() ErrorMap {
	out := make(ErrorMap, len(iss))
	for _, it := range iss {
		if it.Field == "" {
			continue
		}
		if _, dup := out[it.Field]; dup {
			continue
		}
		msg := it.Message
		if msg == "" {
			msg = it.Code
		}
		out[it.Field] = msg
	}
	return out
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// IssueAt creates an Issue for the given field with provided code, message and params map.
func IssueAt(field, code, msg string, params map[string]any) Issue {
	return Issue{Field: field, Code: code, Message: msg, Params: params}
}

// MaskError reports a mask that panicked while transforming a change event.
// The change is discarded and the stored value is left untouched.
type MaskError struct {
	Field string
	Panic any
}

func (e *MaskError) Error() string {
	return fmt.Sprintf("goform: mask for %q failed: %v", e.Field, e.Panic)
}

func (e *MaskError) Unwrap() error { return ErrMaskFailed }
