package block

import (
	"fmt"
	"strconv"
)

// ParamType is the value shape a parameter accepts.
type ParamType int

const (
	ParamText ParamType = iota
	ParamNumber
	ParamSelect
)

// ParamSpec describes one editable parameter of a block kind.
type ParamSpec struct {
	Key     string
	Type    ParamType
	Options []string
}

// ErrInvalidParam reports a parameter value rejected by a kind's schema.
type ErrInvalidParam struct {
	Kind  string
	Key   string
	Value any
	Why   string
}

func (e *ErrInvalidParam) Error() string {
	return fmt.Sprintf("block kind %s: parameter %q=%v: %s", e.Kind, e.Key, e.Value, e.Why)
}

// NormalizeParams validates raw parameters against the kind's schema and
// merges in defaults for keys the caller omitted. Keys outside the schema
// are rejected so a stored graph never carries junk the compiler would
// silently ignore. Numeric values arriving as strings (a JSON editor
// artifact) are coerced.
func (k Kind) NormalizeParams(raw map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(k.DefaultParams))
	for key, v := range k.DefaultParams {
		out[key] = v
	}
	for key, v := range raw {
		spec, ok := k.paramSpec(key)
		if !ok {
			return nil, &ErrInvalidParam{Kind: k.Name, Key: key, Value: v, Why: "not a parameter of this kind"}
		}
		norm, err := spec.normalize(k.Name, v)
		if err != nil {
			return nil, err
		}
		out[key] = norm
	}
	return out, nil
}

func (k Kind) paramSpec(key string) (ParamSpec, bool) {
	for _, s := range k.ParamSpecs {
		if s.Key == key {
			return s, true
		}
	}
	return ParamSpec{}, false
}

func (s ParamSpec) normalize(kind string, v any) (any, error) {
	switch s.Type {
	case ParamNumber:
		switch n := v.(type) {
		case float64:
			return n, nil
		case int:
			return float64(n), nil
		case string:
			f, err := strconv.ParseFloat(n, 64)
			if err != nil {
				return nil, &ErrInvalidParam{Kind: kind, Key: s.Key, Value: v, Why: "expected a number"}
			}
			return f, nil
		default:
			return nil, &ErrInvalidParam{Kind: kind, Key: s.Key, Value: v, Why: "expected a number"}
		}
	case ParamSelect:
		str, ok := v.(string)
		if !ok {
			return nil, &ErrInvalidParam{Kind: kind, Key: s.Key, Value: v, Why: "expected a string option"}
		}
		for _, opt := range s.Options {
			if str == opt {
				return str, nil
			}
		}
		return nil, &ErrInvalidParam{Kind: kind, Key: s.Key, Value: v, Why: fmt.Sprintf("must be one of %v", s.Options)}
	default:
		str, ok := v.(string)
		if !ok {
			return nil, &ErrInvalidParam{Kind: kind, Key: s.Key, Value: v, Why: "expected a string"}
		}
		return str, nil
	}
}

// StringParam reads a string parameter, falling back to def when absent.
func StringParam(params map[string]any, key, def string) string {
	if v, ok := params[key]; ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return def
}

// NumberParam reads a numeric parameter, falling back to def when absent or
// not a number.
func NumberParam(params map[string]any, key string, def float64) float64 {
	switch n := params[key].(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case string:
		if f, err := strconv.ParseFloat(n, 64); err == nil {
			return f
		}
	}
	return def
}
