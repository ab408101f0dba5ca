package formdef

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/reoring/goform/mask"
	"github.com/reoring/goform/rules"
)

var transforms = map[string]func(StepSpec) (mask.Transform, error){
	"digits":         plainTransform(mask.Digits),
	"decimal":        plainTransform(mask.Decimal),
	"upper":          plainTransform(mask.Upper),
	"lower":          plainTransform(mask.Lower),
	"trim":           plainTransform(mask.TrimSpace),
	"collapse_space": plainTransform(mask.CollapseSpace),
	"max_length": func(s StepSpec) (mask.Transform, error) {
		n, err := intArg(s)
		if err != nil {
			return nil, err
		}
		return mask.MaxLength(n), nil
	},
	"keep": func(s StepSpec) (mask.Transform, error) {
		p, err := patternArg(s)
		if err != nil {
			return nil, err
		}
		return mask.Keep(p), nil
	},
	"remove": func(s StepSpec) (mask.Transform, error) {
		p, err := patternArg(s)
		if err != nil {
			return nil, err
		}
		return mask.Remove(p), nil
	},
}

var ruleBuilders = map[string]func(StepSpec) (rules.Rule, error){
	"required": plainRule(rules.Required),
	"email":    plainRule(rules.Email),
	"digits":   plainRule(rules.Digits),
	"checked":  plainRule(rules.Checked),
	"min_length": func(s StepSpec) (rules.Rule, error) {
		n, err := intArg(s)
		return rules.MinLength(n), err
	},
	"max_length": func(s StepSpec) (rules.Rule, error) {
		n, err := intArg(s)
		return rules.MaxLength(n), err
	},
	"length": func(s StepSpec) (rules.Rule, error) {
		n, err := intArg(s)
		return rules.Length(n), err
	},
	"min": func(s StepSpec) (rules.Rule, error) {
		f, err := floatArg(s)
		return rules.Min(f), err
	},
	"max": func(s StepSpec) (rules.Rule, error) {
		f, err := floatArg(s)
		return rules.Max(f), err
	},
	"pattern": func(s StepSpec) (rules.Rule, error) {
		p, err := patternArg(s)
		if err != nil {
			return nil, err
		}
		return rules.Pattern(p), nil
	},
	"equals": func(s StepSpec) (rules.Rule, error) {
		other, ok := s.Arg.(string)
		if !ok || other == "" {
			return nil, fmt.Errorf("line %d: equals needs a field name", s.Line)
		}
		return rules.Equals(other), nil
	},
	"one_of": func(s StepSpec) (rules.Rule, error) {
		list, ok := s.Arg.([]any)
		if !ok || len(list) == 0 {
			return nil, fmt.Errorf("line %d: one_of needs a list", s.Line)
		}
		opts := make([]string, len(list))
		for i, o := range list {
			opts[i] = fmt.Sprint(o)
		}
		return rules.OneOf(opts...), nil
	},
}

func plainTransform(t mask.Transform) func(StepSpec) (mask.Transform, error) {
	return func(StepSpec) (mask.Transform, error) { return t, nil }
}

func plainRule(mk func() rules.Rule) func(StepSpec) (rules.Rule, error) {
	return func(StepSpec) (rules.Rule, error) { return mk(), nil }
}

func keys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func buildTransform(s StepSpec) (mask.Transform, error) {
	b, ok := transforms[s.Name]
	if !ok {
		return nil, unknown("mask", s.Name, keys(transforms))
	}
	return b(s)
}

func buildRule(s StepSpec) (rules.Rule, error) {
	b, ok := ruleBuilders[s.Name]
	if !ok {
		return nil, unknown("rule", s.Name, keys(ruleBuilders))
	}
	r, err := b(s)
	if err != nil {
		return nil, err
	}
	r = r.Named(s.Name)
	if s.Message != "" {
		r = r.Msg(s.Message)
	}
	return r, nil
}

func intArg(s StepSpec) (int, error) {
	switch v := s.Arg.(type) {
	case int:
		if v > 0 {
			return v, nil
		}
	case float64:
		if v > 0 && v == float64(int(v)) {
			return int(v), nil
		}
	}
	return 0, fmt.Errorf("line %d: %s needs a positive integer", s.Line, s.Name)
}

func floatArg(s StepSpec) (float64, error) {
	switch v := s.Arg.(type) {
	case int:
		return float64(v), nil
	case float64:
		return v, nil
	}
	return 0, fmt.Errorf("line %d: %s needs a number", s.Line, s.Name)
}

func patternArg(s StepSpec) (string, error) {
	p, ok := s.Arg.(string)
	if !ok || p == "" {
		return "", fmt.Errorf("line %d: %s needs a pattern", s.Line, s.Name)
	}
	if _, err := regexp.Compile(p); err != nil {
		return "", fmt.Errorf("line %d: %s: %w", s.Line, s.Name, err)
	}
	return p, nil
}

var ops = map[string]rules.Op{
	"eq": rules.Eq, "ne": rules.Ne, "lt": rules.Lt, "le": rules.Le, "gt": rules.Gt, "ge": rules.Ge,
}

func parseOp(op string) (rules.Op, error) {
	if op == "" {
		return rules.Eq, nil
	}
	o, ok := ops[lower(op)]
	if !ok {
		return 0, unknown("op", op, keys(ops))
	}
	return o, nil
}
