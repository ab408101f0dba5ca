package rules

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	goform "github.com/reoring/goform"
	"github.com/reoring/goform/i18n"
)

// Ctx is what a Rule sees: the field under test and the whole ValueMap.
type Ctx struct {
	Context context.Context
	Field   string
	Values  goform.ValueMap
	// Translator renders default messages; nil uses i18n.T.
	Translator i18n.Translator
}

// Issue builds an Issue for the current field with a translated default message.
func (c Ctx) Issue(code string, kv ...any) goform.Issue {
	params := map[string]any{}
	data := map[string]string{"field": c.Field}
	for i := 0; i+1 < len(kv); i += 2 {
		k := fmt.Sprint(kv[i])
		params[k] = kv[i+1]
		data[k] = fmt.Sprint(kv[i+1])
	}
	if len(params) == 0 {
		params = nil
	}
	var msg string
	if c.Translator != nil {
		msg = c.Translator.Message(code, data)
	} else {
		msg = i18n.T(code, data)
	}
	return goform.IssueAt(c.Field, code, msg, params)
}

// Rule checks one field value and returns its Issues, if any.
type Rule func(Ctx, goform.Value) []goform.Issue

// Msg returns a copy of r whose Issues carry msg instead of the default message.
func (r Rule) Msg(msg string) Rule {
	return func(c Ctx, v goform.Value) []goform.Issue {
		iss := r(c, v)
		for i := range iss {
			iss[i].Message = msg
		}
		return iss
	}
}

// Named records name in Issue.Rule.
func (r Rule) Named(name string) Rule {
	return func(c Ctx, v goform.Value) []goform.Issue {
		iss := r(c, v)
		for i := range iss {
			iss[i].Rule = name
		}
		return iss
	}
}

// Refinement is a cross-field check over the whole ValueMap.
type Refinement func(ctx context.Context, values goform.ValueMap) []goform.Issue

type fieldRules struct {
	name  string
	rules []Rule
}

// Validator is a declarative goform.Validator. Fields are checked in
// declaration order; refinements run after all field rules.
type Validator struct {
	fields   []fieldRules
	refines  []Refinement
	failFast bool
	tr       i18n.Translator
}

// New returns an empty Validator. Each field stops at its first failing rule.
func New() *Validator { return &Validator{failFast: true} }

// Field appends rules for name. Calling Field twice for a name adds to it.
func (v *Validator) Field(name string, rules ...Rule) *Validator {
	for i := range v.fields {
		if v.fields[i].name == name {
			v.fields[i].rules = append(v.fields[i].rules, rules...)
			return v
		}
	}
	v.fields = append(v.fields, fieldRules{name: name, rules: rules})
	return v
}

// Refine adds a cross-field check.
func (v *Validator) Refine(fn Refinement) *Validator {
	if fn != nil {
		v.refines = append(v.refines, fn)
	}
	return v
}

// CollectAll keeps evaluating a field's rules after the first failure.
func (v *Validator) CollectAll() *Validator {
	v.failFast = false
	return v
}

// WithTranslator renders default messages with tr instead of the global one.
func (v *Validator) WithTranslator(tr i18n.Translator) *Validator {
	v.tr = tr
	return v
}

// Fields lists field names in declaration order.
func (v *Validator) Fields() []string {
	out := make([]string, len(v.fields))
	for i, f := range v.fields {
		out[i] = f.name
	}
	return out
}

// Validate implements goform.Validator. Fields missing from values were never
// registered and are skipped.
func (v *Validator) Validate(ctx context.Context, values goform.ValueMap) error {
	var all goform.Issues
	for _, f := range v.fields {
		val, ok := values[f.name]
		if !ok {
			continue
		}
		c := Ctx{Context: ctx, Field: f.name, Values: values, Translator: v.tr}
		for _, r := range f.rules {
			if r == nil {
				continue
			}
			iss := r(c, val)
			if len(iss) == 0 {
				continue
			}
			all = goform.AppendIssues(all, iss...)
			if v.failFast {
				break
			}
		}
	}
	for _, fn := range v.refines {
		if ctx != nil && ctx.Err() != nil {
			return ctx.Err()
		}
		all = goform.AppendIssues(all, fn(ctx, values)...)
	}
	if len(all) > 0 {
		return all
	}
	return nil
}

var _ goform.Validator = (*Validator)(nil)

// ---------- built-in rules ----------

func empty(v goform.Value) bool {
	if v.IsAbsent() {
		return true
	}
	s, ok := v.Text()
	return ok && s == ""
}

// text returns the text of v; non-text values are reported by the caller.
func text(v goform.Value) (string, bool) { return v.Text() }

// Required rejects absent values and empty text.
func Required() Rule {
	return func(c Ctx, v goform.Value) []goform.Issue {
		if empty(v) {
			return []goform.Issue{c.Issue(goform.CodeRequired)}
		}
		return nil
	}
}

// Checked requires a choice control to be on.
func Checked() Rule {
	return func(c Ctx, v goform.Value) []goform.Issue {
		if b, ok := v.Bool(); ok && b {
			return nil
		}
		return []goform.Issue{c.Issue(goform.CodeRequired)}
	}
}

// stringRule runs check on non-empty text; empty values are left to Required.
func stringRule(check func(Ctx, string) []goform.Issue) Rule {
	return func(c Ctx, v goform.Value) []goform.Issue {
		if empty(v) {
			return nil
		}
		s, ok := text(v)
		if !ok {
			return []goform.Issue{c.Issue(goform.CodeInvalidType, "expected", "text")}
		}
		return check(c, s)
	}
}

// MinLength requires at least n runes.
func MinLength(n int) Rule {
	return stringRule(func(c Ctx, s string) []goform.Issue {
		if utf8.RuneCountInString(s) < n {
			return []goform.Issue{c.Issue(goform.CodeTooShort, "min", n)}
		}
		return nil
	})
}

// MaxLength allows at most n runes.
func MaxLength(n int) Rule {
	return stringRule(func(c Ctx, s string) []goform.Issue {
		if utf8.RuneCountInString(s) > n {
			return []goform.Issue{c.Issue(goform.CodeTooLong, "max", n)}
		}
		return nil
	})
}

// Length requires exactly n runes.
func Length(n int) Rule {
	return stringRule(func(c Ctx, s string) []goform.Issue {
		switch l := utf8.RuneCountInString(s); {
		case l < n:
			return []goform.Issue{c.Issue(goform.CodeTooShort, "min", n)}
		case l > n:
			return []goform.Issue{c.Issue(goform.CodeTooLong, "max", n)}
		}
		return nil
	})
}

// Pattern requires the whole text to match expr. It panics on an invalid expression.
func Pattern(expr string) Rule {
	re := regexp.MustCompile(`^(?:` + expr + `)$`)
	return stringRule(func(c Ctx, s string) []goform.Issue {
		if !re.MatchString(s) {
			return []goform.Issue{c.Issue(goform.CodePattern, "pattern", expr)}
		}
		return nil
	})
}

var emailRE = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Email performs a shallow address check.
func Email() Rule {
	return stringRule(func(c Ctx, s string) []goform.Issue {
		if !emailRE.MatchString(s) {
			return []goform.Issue{c.Issue(goform.CodeInvalidFormat, "format", "email")}
		}
		return nil
	})
}

// Digits requires the text to consist of ASCII digits only.
func Digits() Rule {
	return stringRule(func(c Ctx, s string) []goform.Issue {
		for _, r := range s {
			if r < '0' || r > '9' {
				return []goform.Issue{c.Issue(goform.CodeInvalidFormat, "format", "digits")}
			}
		}
		return nil
	})
}

// OneOf requires the text to be one of opts.
func OneOf(opts ...string) Rule {
	return stringRule(func(c Ctx, s string) []goform.Issue {
		for _, o := range opts {
			if s == o {
				return nil
			}
		}
		return []goform.Issue{c.Issue(goform.CodeInvalidEnum, "options", strings.Join(opts, ", "))}
	})
}

// Equals requires the value to equal the value of field other. If other is
// not in the ValueMap the rule passes.
func Equals(other string) Rule {
	return func(c Ctx, v goform.Value) []goform.Issue {
		ov, ok := c.Values[other]
		if !ok || v.Equal(ov) {
			return nil
		}
		return []goform.Issue{c.Issue(goform.CodeMismatch, "other", other)}
	}
}

func number(v goform.Value) (float64, bool) {
	f, ok := v.Number()
	if !ok {
		s, isText := v.Text()
		if !isText {
			return 0, false
		}
		var err error
		if f, err = strconv.ParseFloat(strings.TrimSpace(s), 64); err != nil {
			return 0, false
		}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func numberRule(check func(Ctx, float64) []goform.Issue) Rule {
	return func(c Ctx, v goform.Value) []goform.Issue {
		if empty(v) {
			return nil
		}
		f, ok := number(v)
		if !ok {
			return []goform.Issue{c.Issue(goform.CodeInvalidType, "expected", "number")}
		}
		return check(c, f)
	}
}

// Min requires a numeric value (Number or numeric text) >= n.
func Min(n float64) Rule {
	return numberRule(func(c Ctx, f float64) []goform.Issue {
		if f < n {
			return []goform.Issue{c.Issue(goform.CodeTooSmall, "min", strconv.FormatFloat(n, 'f', -1, 64))}
		}
		return nil
	})
}

// Max requires a numeric value <= n.
func Max(n float64) Rule {
	return numberRule(func(c Ctx, f float64) []goform.Issue {
		if f > n {
			return []goform.Issue{c.Issue(goform.CodeTooBig, "max", strconv.FormatFloat(n, 'f', -1, 64))}
		}
		return nil
	})
}

// Func adapts a plain predicate. ok == false yields an Issue with code and msg.
func Func(code, msg string, ok func(goform.Value) bool) Rule {
	return func(c Ctx, v goform.Value) []goform.Issue {
		if ok(v) {
			return nil
		}
		return []goform.Issue{goform.IssueAt(c.Field, code, msg, nil)}
	}
}

// And runs every rule and concatenates their Issues.
func And(rules ...Rule) Rule {
	return func(c Ctx, v goform.Value) []goform.Issue {
		var out []goform.Issue
		for _, r := range rules {
			if r == nil {
				continue
			}
			out = append(out, r(c, v)...)
		}
		return out
	}
}

// Or succeeds if any rule returns no Issues. When all fail it returns the
// branch with the fewest Issues.
func Or(rules ...Rule) Rule {
	return func(c Ctx, v goform.Value) []goform.Issue {
		var best []goform.Issue
		bestSet := false
		for _, r := range rules {
			if r == nil {
				continue
			}
			iss := r(c, v)
			if len(iss) == 0 {
				return nil
			}
			if !bestSet || len(iss) < len(best) {
				best = iss
				bestSet = true
			}
		}
		return best
	}
}
