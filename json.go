package goform

import (
	"bytes"
	"fmt"
	"io"

	json "github.com/goccy/go-json"
)

// MarshalJSON encodes Absent as null, text as a string, booleans and numbers natively.
func (v Value) MarshalJSON() ([]byte, error) { return json.Marshal(v.Interface()) }

// UnmarshalJSON accepts null, strings, booleans and numbers.
func (v *Value) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	got, err := valueFromAny(raw)
	if err != nil {
		return err
	}
	*v = got
	return nil
}

// MarshalValues encodes a ValueMap as a JSON object with sorted keys.
func MarshalValues(m ValueMap) ([]byte, error) {
	if m == nil {
		m = ValueMap{}
	}
	return json.Marshal(map[string]Value(m))
}

// UnmarshalValues decodes a flat JSON object into a ValueMap. Nested objects
// and arrays are reported as invalid_type issues and repeated keys as
// duplicate_key issues.
func UnmarshalValues(data []byte) (ValueMap, error) {
	if iss, err := duplicateKeys(data); err != nil {
		return nil, fmt.Errorf("decode values: %w", err)
	} else if len(iss) > 0 {
		return nil, iss
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode values: %w", err)
	}
	out := make(ValueMap, len(raw))
	var iss Issues
	for k, rv := range raw {
		v, err := valueFromAny(rv)
		if err != nil {
			iss = AppendIssues(iss, IssueAt(k, CodeInvalidType, err.Error(), nil))
			continue
		}
		out[k] = v
	}
	if len(iss) > 0 {
		return nil, iss
	}
	return out, nil
}

func valueFromAny(raw any) (Value, error) {
	switch t := raw.(type) {
	case nil:
		return Absent(), nil
	case string:
		return Text(t), nil
	case bool:
		return Bool(t), nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return Value{}, fmt.Errorf("number %q: %w", t.String(), err)
		}
		return Number(f), nil
	case float64:
		return Number(t), nil
	default:
		return Value{}, fmt.Errorf("unsupported value of type %T", raw)
	}
}

// duplicateKeys reports keys repeated in the top-level object. Nested
// containers are skipped.
func duplicateKeys(data []byte) (Issues, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var (
		iss    Issues
		seen   = map[string]bool{}
		depth  int
		object bool
		isKey  bool
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return iss, nil
		}
		if err != nil {
			return nil, err
		}
		switch v := tok.(type) {
		case json.Delim:
			switch v {
			case '{', '[':
				depth++
				if depth == 1 {
					object = v == '{'
					isKey = object
				}
			case '}', ']':
				depth--
				if depth == 1 {
					isKey = object
				}
			}
			continue
		case string:
			if depth == 1 && isKey {
				if seen[v] {
					iss = AppendIssues(iss, IssueAt(v, CodeDuplicateKey, "key "+v+" duplicated", nil))
				}
				seen[v] = true
				isKey = false
				continue
			}
		}
		if depth == 1 {
			isKey = object
		}
	}
}
