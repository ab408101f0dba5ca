// Package formdef loads declarative form definitions from YAML and builds
// goform forms and controls from them.
//
//	form: login
//	submit: Entrar
//	fields:
//	  - name: email
//	    label: Email
//	    type: email
//	    rules: [required, email]
//	  - name: remember
//	    control: choice
//	    label: Lembrar de mim
//
// A stream may hold several documents, one per form.
package formdef

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Control kinds accepted in Field.Control.
const (
	ControlText   = "text"
	ControlChoice = "choice"
	ControlOTP    = "otp"
)

// Definition describes one form.
type Definition struct {
	Form   string  `yaml:"form"`
	Submit string  `yaml:"submit,omitempty"`
	Fields []Field `yaml:"fields"`
	// Loading shows the debounced loading flag on the submit button.
	Loading bool `yaml:"loading,omitempty"`
	// Unique lists fields whose values must not repeat across submissions.
	Unique []string `yaml:"unique,omitempty"`
	// Messages overrides rejection messages, keyed "<field>.<code>" (e.g. "email.conflict").
	Messages map[string]string `yaml:"messages,omitempty"`
	// SendCodeTo names the field holding the address a confirmation code is
	// sent to after a successful submit.
	SendCodeTo string `yaml:"send_code_to,omitempty"`
	// VerifyCode checks a previously sent code before the submission is stored.
	VerifyCode *VerifyCode `yaml:"verify_code,omitempty"`
}

// VerifyCode names the code field and the field holding the address it was sent to.
type VerifyCode struct {
	Field   string `yaml:"field"`
	Address string `yaml:"address"`
}

// Field describes one control.
type Field struct {
	Name        string `yaml:"name"`
	Control     string `yaml:"control,omitempty"` // text (default), choice, otp
	Type        string `yaml:"type,omitempty"`    // text input type or "radio"
	Label       string `yaml:"label,omitempty"`
	Placeholder string `yaml:"placeholder,omitempty"`
	Exclude     bool   `yaml:"exclude,omitempty"`
	Length      int    `yaml:"length,omitempty"` // otp slots
	// Number stores the masked text as a Number.
	Number bool       `yaml:"number,omitempty"`
	Mask   []StepSpec `yaml:"mask,omitempty"`
	Rules  []StepSpec `yaml:"rules,omitempty"`
	// When guards every rule of the field.
	When *When `yaml:"when,omitempty"`
}

// When is a field condition: op is one of eq, ne, lt, le, gt, ge.
type When struct {
	Field string `yaml:"field"`
	Op    string `yaml:"op"`
	Value any    `yaml:"value"`
}

// StepSpec is one mask transform or rule: either a bare name ("digits") or a
// single-key mapping carrying an argument ({max_length: 6}). Rules may add a
// "message" key next to the name.
type StepSpec struct {
	Name    string
	Arg     any
	Message string
	Line    int
}

func (s *StepSpec) UnmarshalYAML(n *yaml.Node) error {
	s.Line = n.Line
	switch n.Kind {
	case yaml.ScalarNode:
		s.Name = n.Value
		return nil
	case yaml.MappingNode:
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, v := n.Content[i].Value, n.Content[i+1]
			if k == "message" {
				s.Message = v.Value
				continue
			}
			if s.Name != "" {
				return fmt.Errorf("formdef: line %d: step has two names (%s, %s)", n.Line, s.Name, k)
			}
			s.Name = k
			if err := v.Decode(&s.Arg); err != nil {
				return fmt.Errorf("formdef: line %d: %s: %w", n.Line, k, err)
			}
		}
		if s.Name == "" {
			return fmt.Errorf("formdef: line %d: step without a name", n.Line)
		}
		return nil
	default:
		return fmt.Errorf("formdef: line %d: expected a name or a mapping", n.Line)
	}
}

// Load reads every YAML document in r.
func Load(r io.Reader) ([]Definition, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var defs []Definition
	seen := map[string]bool{}
	for {
		var d Definition
		if err := dec.Decode(&d); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("formdef: %w", err)
		}
		if d.Form == "" && len(d.Fields) == 0 {
			continue // empty document
		}
		if err := d.Check(); err != nil {
			return nil, err
		}
		if seen[d.Form] {
			return nil, fmt.Errorf("formdef: form %q defined twice", d.Form)
		}
		seen[d.Form] = true
		defs = append(defs, d)
	}
	return defs, nil
}

// LoadFile reads definitions from path.
func LoadFile(path string) ([]Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Load(bytes.NewReader(data))
}

// Find returns the definition named form.
func Find(defs []Definition, form string) (Definition, error) {
	names := make([]string, len(defs))
	for i, d := range defs {
		if d.Form == form {
			return d, nil
		}
		names[i] = d.Form
	}
	return Definition{}, unknown("form", form, names)
}

// FieldNames lists field names in declaration order.
func (d Definition) FieldNames() []string {
	out := make([]string, len(d.Fields))
	for i, f := range d.Fields {
		out[i] = f.Name
	}
	return out
}

func (d Definition) field(name string) (Field, bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Check validates names and references without building anything.
func (d Definition) Check() error {
	if d.Form == "" {
		return errors.New("formdef: document without a form name")
	}
	var errs []error
	names := d.FieldNames()
	seen := map[string]bool{}
	for _, f := range d.Fields {
		if f.Name == "" {
			errs = append(errs, fmt.Errorf("formdef: %s: field without a name", d.Form))
			continue
		}
		if seen[f.Name] {
			errs = append(errs, fmt.Errorf("formdef: %s: field %q defined twice", d.Form, f.Name))
		}
		seen[f.Name] = true
		if c := f.Control; c != "" && c != ControlText && c != ControlChoice && c != ControlOTP {
			errs = append(errs, fmt.Errorf("formdef: %s.%s: %w", d.Form, f.Name,
				unknown("control", c, []string{ControlText, ControlChoice, ControlOTP})))
		}
		if f.Control == ControlOTP && f.Length <= 0 {
			errs = append(errs, fmt.Errorf("formdef: %s.%s: otp needs a positive length", d.Form, f.Name))
		}
		for _, m := range f.Mask {
			if _, err := buildTransform(m); err != nil {
				errs = append(errs, fmt.Errorf("formdef: %s.%s: %w", d.Form, f.Name, err))
			}
		}
		for _, r := range f.Rules {
			if _, err := buildRule(r); err != nil {
				errs = append(errs, fmt.Errorf("formdef: %s.%s: %w", d.Form, f.Name, err))
			}
		}
		if f.When != nil {
			if _, err := parseOp(f.When.Op); err != nil {
				errs = append(errs, fmt.Errorf("formdef: %s.%s: %w", d.Form, f.Name, err))
			}
			if _, ok := d.field(f.When.Field); !ok {
				errs = append(errs, fmt.Errorf("formdef: %s.%s when: %w", d.Form, f.Name, unknown("field", f.When.Field, names)))
			}
		}
	}
	refs := append([]string(nil), d.Unique...)
	if d.SendCodeTo != "" {
		refs = append(refs, d.SendCodeTo)
	}
	if d.VerifyCode != nil {
		refs = append(refs, d.VerifyCode.Field, d.VerifyCode.Address)
	}
	for _, r := range refs {
		if _, ok := d.field(r); !ok {
			errs = append(errs, fmt.Errorf("formdef: %s: %w", d.Form, unknown("field", r, names)))
		}
	}
	return errors.Join(errs...)
}

// UnknownNameError reports a name that is not defined, with the closest
// known name when one is near enough.
type UnknownNameError struct {
	Kind       string
	Name       string
	Suggestion string
}

func (e *UnknownNameError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("unknown %s %q (did you mean %q?)", e.Kind, e.Name, e.Suggestion)
	}
	return fmt.Sprintf("unknown %s %q", e.Kind, e.Name)
}

func unknown(kind, name string, known []string) error {
	return &UnknownNameError{Kind: kind, Name: name, Suggestion: Suggest(name, known)}
}

// message returns the override for field/code, or "".
func (d Definition) message(field, code string) string {
	return d.Messages[field+"."+code]
}

func lower(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
