// Package mask provides ready-made goform masks built from string transforms.
//
//	masks := goform.MaskSet{
//		"validationCode": mask.Text(mask.Digits, mask.MaxLength(6)),
//		"document":       mask.Text(mask.Keep(`[0-9A-Za-z]`), mask.Upper),
//	}
package mask

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	goform "github.com/reoring/goform"
)

// Transform rewrites raw text. Transforms must be pure.
type Transform func(string) string

// Identity stores the event as the identity transform would: text as Text,
// choice state as Bool.
func Identity(_ string, ev goform.ChangeEvent) goform.Value {
	if ev.Control == goform.ControlChoice {
		return goform.Bool(ev.Checked)
	}
	return goform.Text(ev.Value)
}

// Text applies the transforms in order and stores the result as Text. Choice
// events pass through unchanged.
func Text(ts ...Transform) goform.Mask {
	return func(field string, ev goform.ChangeEvent) goform.Value {
		if ev.Control == goform.ControlChoice {
			return Identity(field, ev)
		}
		return goform.Text(apply(ev.Value, ts))
	}
}

// Number applies the transforms and parses the result as a number. An empty,
// unparsable or non-finite result stores Absent.
func Number(ts ...Transform) goform.Mask {
	return func(field string, ev goform.ChangeEvent) goform.Value {
		if ev.Control == goform.ControlChoice {
			return Identity(field, ev)
		}
		s := apply(ev.Value, ts)
		if s == "" {
			return goform.Absent()
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return goform.Absent()
		}
		return goform.Number(f)
	}
}

func apply(s string, ts []Transform) string {
	for _, t := range ts {
		if t != nil {
			s = t(s)
		}
	}
	return s
}

// Digits drops every non-digit rune.
func Digits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}

// Decimal keeps digits and the first decimal point.
func Decimal(s string) string {
	seenDot := false
	return strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9':
			return r
		case r == '.' && !seenDot:
			seenDot = true
			return r
		}
		return -1
	}, s)
}

// Remove deletes every match of pattern. It panics on an invalid pattern.
func Remove(pattern string) Transform {
	re := regexp.MustCompile(pattern)
	return func(s string) string { return re.ReplaceAllString(s, "") }
}

// Keep retains only runes matching the single-rune pattern (e.g. `[0-9a-f]`).
// It panics on an invalid pattern.
func Keep(pattern string) Transform {
	re := regexp.MustCompile(`^(?:` + pattern + `)$`)
	return func(s string) string {
		return strings.Map(func(r rune) rune {
			if re.MatchString(string(r)) {
				return r
			}
			return -1
		}, s)
	}
}

// MaxLength truncates to n runes. n <= 0 disables truncation.
func MaxLength(n int) Transform {
	return func(s string) string {
		if n <= 0 {
			return s
		}
		r := []rune(s)
		if len(r) <= n {
			return s
		}
		return string(r[:n])
	}
}

func Upper(s string) string     { return strings.ToUpper(s) }
func Lower(s string) string     { return strings.ToLower(s) }
func TrimSpace(s string) string { return strings.TrimSpace(s) }

// CollapseSpace replaces runs of whitespace with one space.
func CollapseSpace(s string) string {
	var b strings.Builder
	space := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !space {
				b.WriteRune(' ')
			}
			space = true
			continue
		}
		space = false
		b.WriteRune(r)
	}
	return b.String()
}
