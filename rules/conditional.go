package rules

import (
	goform "github.com/reoring/goform"
)

// Op defines simple comparison operators for If(...).Then(...)
type Op int

const (
	Eq Op = iota
	Ne
	Lt
	Le
	Gt
	Ge
)

// Conditional composes conditional execution of rules.
type Conditional struct {
	field string
	op    Op
	want  goform.Value
	all   []Conditional // composite AND
	any   []Conditional // composite OR
}

// If builds a conditional that compares the value of field against want.
// want may be a goform.Value, string, bool, any integer or float kind, or nil
// for Absent.
func If(field string, op Op, want any) Conditional {
	return Conditional{field: field, op: op, want: valueOf(want)}
}

// IfAll builds a conditional that requires all conditions to hold.
func IfAll(conds ...Conditional) Conditional { return Conditional{all: conds} }

// IfAny builds a conditional that requires any condition to hold.
func IfAny(conds ...Conditional) Conditional { return Conditional{any: conds} }

// And combines the receiver with additional conditions using logical AND.
func (c Conditional) And(others ...Conditional) Conditional {
	return IfAll(append([]Conditional{c}, others...)...)
}

// Or combines the receiver with additional conditions using logical OR.
func (c Conditional) Or(others ...Conditional) Conditional {
	return IfAny(append([]Conditional{c}, others...)...)
}

// Holds evaluates the condition against values.
func (c Conditional) Holds(values goform.ValueMap) bool {
	if len(c.all) > 0 {
		for _, it := range c.all {
			if !it.Holds(values) {
				return false
			}
		}
		return true
	}
	if len(c.any) > 0 {
		for _, it := range c.any {
			if it.Holds(values) {
				return true
			}
		}
		return false
	}
	cur, ok := values[c.field]
	if !ok {
		// an unregistered field compares as Absent
		cur = goform.Absent()
	}
	return compare(cur, c.op, c.want)
}

// Then attaches rules to run when the condition is satisfied.
func (c Conditional) Then(rules ...Rule) Rule {
	return func(ctx Ctx, v goform.Value) []goform.Issue {
		if !c.Holds(ctx.Values) {
			return nil
		}
		for _, r := range rules {
			if r == nil {
				continue
			}
			if iss := r(ctx, v); len(iss) > 0 {
				return iss
			}
		}
		return nil
	}
}

func compare(cur goform.Value, op Op, want goform.Value) bool {
	switch op {
	case Eq:
		return cur.Equal(want)
	case Ne:
		return !cur.Equal(want)
	case Lt, Le, Gt, Ge:
		a, ok1 := number(cur)
		b, ok2 := number(want)
		if !ok1 || !ok2 {
			return false
		}
		switch op {
		case Lt:
			return a < b
		case Le:
			return a <= b
		case Gt:
			return a > b
		case Ge:
			return a >= b
		}
	}
	return false
}

func valueOf(x any) goform.Value {
	switch t := x.(type) {
	case nil:
		return goform.Absent()
	case goform.Value:
		return t
	case string:
		return goform.Text(t)
	case bool:
		return goform.Bool(t)
	case int:
		return goform.Number(float64(t))
	case int8:
		return goform.Number(float64(t))
	case int16:
		return goform.Number(float64(t))
	case int32:
		return goform.Number(float64(t))
	case int64:
		return goform.Number(float64(t))
	case uint:
		return goform.Number(float64(t))
	case uint8:
		return goform.Number(float64(t))
	case uint16:
		return goform.Number(float64(t))
	case uint32:
		return goform.Number(float64(t))
	case uint64:
		return goform.Number(float64(t))
	case float32:
		return goform.Number(float64(t))
	case float64:
		return goform.Number(t)
	default:
		return goform.Absent()
	}
}
