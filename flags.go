package goform

import "strings"

// FieldFlag is the per-field bit set tracked by the store.
type FieldFlag uint8

const (
	FieldRegistered FieldFlag = 1 << iota // A control registered the field.
	FieldTouched                          // The field received at least one write.
	FieldIncluded                         // At least one registration contributes the field to the ValueMap.
)

// Has reports whether all bits in f2 are set.
func (f FieldFlag) Has(f2 FieldFlag) bool { return f&f2 == f2 }

func (f FieldFlag) String() string {
	if f == 0 {
		return "none"
	}
	var parts []string
	if f&FieldRegistered != 0 {
		parts = append(parts, "registered")
	}
	if f&FieldTouched != 0 {
		parts = append(parts, "touched")
	}
	if f&FieldIncluded != 0 {
		parts = append(parts, "included")
	}
	return strings.Join(parts, "|")
}

// included decides ValueMap membership: fields written without registration
// count as included, registered fields only when some registration opted in.
func (f FieldFlag) included() bool {
	if f&FieldRegistered == 0 {
		return true
	}
	return f&FieldIncluded != 0
}
