package goform

// Mask transforms a raw change event into the value stored for a field. A
// mask must be pure: the same event always yields the same value.
type Mask func(field string, ev ChangeEvent) Value

// MaskSet maps field names to their mask. Fields without an entry use the
// identity transform.
type MaskSet map[string]Mask

// ApplyMask runs the mask registered for field, or the identity transform
// when none is. A panicking mask is reported as *MaskError.
func ApplyMask(masks MaskSet, field string, ev ChangeEvent) (v Value, err error) {
	m := masks[field]
	if m == nil {
		return identity(ev), nil
	}
	defer func() {
		if r := recover(); r != nil {
			v = Value{}
			err = &MaskError{Field: field, Panic: r}
		}
	}()
	return m(field, ev), nil
}

func identity(ev ChangeEvent) Value {
	if ev.Control == ControlChoice {
		return Bool(ev.Checked)
	}
	return Text(ev.Value)
}
