package goform

import (
	"sort"
	"strconv"
)

// Kind tags the variant held by a Value.
type Kind int

const (
	KindAbsent Kind = iota // Field has never received an event.
	KindText
	KindBool
	KindNumber
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	default:
		return "absent"
	}
}

// Value is the current value of one field. The zero Value is Absent.
type Value struct {
	kind Kind
	text string
	b    bool
	num  float64
}

// Absent returns the value of a field that never received an event.
func Absent() Value { return Value{} }

// Text returns a text value.
func Text(s string) Value { return Value{kind: KindText, text: s} }

// Bool returns a boolean value (choice controls).
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Number returns a numeric value.
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }

func (v Value) Kind() Kind     { return v.kind }
func (v Value) IsAbsent() bool { return v.kind == KindAbsent }

// Text returns the payload and whether the value is text.
func (v Value) Text() (string, bool) { return v.text, v.kind == KindText }

func (v Value) Bool() (bool, bool) { return v.b, v.kind == KindBool }

func (v Value) Number() (float64, bool) { return v.num, v.kind == KindNumber }

// String renders the value for display. Absent renders as "".
func (v Value) String() string {
	switch v.kind {
	case KindText:
		return v.text
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	default:
		return ""
	}
}

// Equal reports whether both values have the same kind and payload.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindText:
		return v.text == o.text
	case KindBool:
		return v.b == o.b
	case KindNumber:
		return v.num == o.num
	default:
		return true
	}
}

// Interface returns the payload as string, bool, float64, or nil for Absent.
func (v Value) Interface() any {
	switch v.kind {
	case KindText:
		return v.text
	case KindBool:
		return v.b
	case KindNumber:
		return v.num
	default:
		return nil
	}
}

// ValueMap is the submittable state of a form, keyed by field name.
type ValueMap map[string]Value

// Clone returns a shallow copy; Values are immutable so this is a full copy.
func (m ValueMap) Clone() ValueMap {
	out := make(ValueMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Names returns the keys in lexical order.
func (m ValueMap) Names() []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// ErrorMap maps field names to their single current error message.
type ErrorMap map[string]string

func (m ErrorMap) Clone() ErrorMap {
	out := make(ErrorMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Status is the submission lifecycle state.
type Status int

const (
	Idle Status = iota
	Submitting
	Succeeded
	Failed
)

func (s Status) String() string {
	switch s {
	case Submitting:
		return "submitting"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "idle"
	}
}

// ControlKind selects how an unmasked change event maps to a Value.
type ControlKind int

const (
	ControlText   ControlKind = iota // Raw text becomes a Text value.
	ControlChoice                    // Checked state becomes a Bool value.
)

// ChangeEvent is the raw input change raised by a control.
type ChangeEvent struct {
	Control ControlKind
	Value   string
	Checked bool
}

// TextChange builds a change event for text-like controls.
func TextChange(raw string) ChangeEvent { return ChangeEvent{Control: ControlText, Value: raw} }

// ChoiceChange builds a change event for checkbox/radio controls.
func ChoiceChange(checked bool) ChangeEvent {
	return ChangeEvent{Control: ControlChoice, Checked: checked}
}
