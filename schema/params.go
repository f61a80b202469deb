package schema

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
)

// Type enumerates the scalar types a transform parameter may take.
// All parameter values travel as strings; the type governs how the string is
// checked and canonicalized.
type Type string

const (
	// TypeString accepts any string value.
	TypeString Type = "string"

	// TypeInt accepts base-10 integers.
	TypeInt Type = "int"

	// TypeNumber accepts decimal numbers.
	TypeNumber Type = "number"

	// TypeBool accepts "true" or "false".
	TypeBool Type = "bool"
)

// Field describes a single transform parameter.
type Field struct {
	// Type is the scalar type of the parameter.
	Type Type `json:"type" yaml:"type"`

	// Description documents the parameter for catalog consumers.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// Enum restricts the value to a fixed set (after type checking).
	Enum []string `json:"enum,omitempty" yaml:"enum,omitempty"`

	// Default is the documented default filled in when the parameter is
	// omitted. An empty default on a required field means the parameter
	// must be supplied.
	Default string `json:"default,omitempty" yaml:"default,omitempty"`

	// Pattern is an optional regular expression string values must match.
	Pattern string `json:"pattern,omitempty" yaml:"pattern,omitempty"`

	// Required marks parameters that have no default and must be supplied.
	Required bool `json:"required,omitempty" yaml:"required,omitempty"`
}

// Params is the parameter schema of a transform: field name → field spec.
// A nil Params means the transform takes no parameters.
type Params map[string]Field

// Fluent builders in the style of the rest of the savorlab catalog code.

// String creates a string field.
func String() Field {
	return Field{Type: TypeString}
}

// StringWithDesc creates a string field with a description.
func StringWithDesc(desc string) Field {
	return Field{Type: TypeString, Description: desc}
}

// Int creates an integer field.
func Int() Field {
	return Field{Type: TypeInt}
}

// Number creates a decimal number field.
func Number() Field {
	return Field{Type: TypeNumber}
}

// Bool creates a boolean field.
func Bool() Field {
	return Field{Type: TypeBool}
}

// Enum creates a string field restricted to the given values.
func Enum(values ...string) Field {
	return Field{Type: TypeString, Enum: values}
}

// WithDefault returns a copy of the field with the given default value.
func (f Field) WithDefault(def string) Field {
	f.Default = def
	return f
}

// WithDesc returns a copy of the field with the given description.
func (f Field) WithDesc(desc string) Field {
	f.Description = desc
	return f
}

// WithPattern returns a copy of the field with the given pattern.
func (f Field) WithPattern(pattern string) Field {
	f.Pattern = pattern
	return f
}

// AsRequired returns a copy of the field marked required.
func (f Field) AsRequired() Field {
	f.Required = true
	return f
}

// Validate checks the schema itself for internal consistency: known types,
// compilable patterns, and defaults that satisfy their own field spec. It is
// intended to run at transform registration time so malformed schemas are
// rejected before any composition sees them.
func (p Params) Validate() error {
	for _, name := range p.sortedNames() {
		f := p[name]
		switch f.Type {
		case TypeString, TypeInt, TypeNumber, TypeBool:
		default:
			return fmt.Errorf("param %s: unknown type %q", name, f.Type)
		}

		if f.Pattern != "" {
			if f.Type != TypeString {
				return fmt.Errorf("param %s: pattern is only valid on string fields", name)
			}
			if _, err := regexp.Compile(f.Pattern); err != nil {
				return fmt.Errorf("param %s: invalid pattern: %w", name, err)
			}
		}

		if len(f.Enum) > 0 && f.Type != TypeString {
			return fmt.Errorf("param %s: enum is only valid on string fields", name)
		}

		if f.Required && f.Default != "" {
			return fmt.Errorf("param %s: required fields may not declare a default", name)
		}

		if f.Default != "" {
			if err := f.check(name, f.Default); err != nil {
				return fmt.Errorf("param %s: default does not satisfy field: %w", name, err)
			}
		}
	}
	return nil
}

// Apply validates raw parameter values against the schema and fills defaults,
// producing the canonical parameter mapping.
//
// Unknown keys are errors; missing keys take their documented defaults.
// All violations are collected, not just the first. The returned map is
// always non-nil, even on error, and contains the canonical form of every
// parameter that passed (defaults included).
func (p Params) Apply(raw map[string]string) (map[string]string, []error) {
	canonical := make(map[string]string, len(p))
	var errs []error

	// Unknown keys first, in deterministic order.
	unknown := make([]string, 0)
	for k := range raw {
		if _, ok := p[k]; !ok {
			unknown = append(unknown, k)
		}
	}
	sort.Strings(unknown)
	for _, k := range unknown {
		errs = append(errs, fmt.Errorf("unknown parameter %s", k))
	}

	for _, name := range p.sortedNames() {
		f := p[name]
		v, supplied := raw[name]
		if !supplied {
			if f.Required {
				errs = append(errs, fmt.Errorf("missing required parameter %s", name))
				continue
			}
			if f.Default == "" {
				continue
			}
			v = f.Default
		}

		if err := f.check(name, v); err != nil {
			errs = append(errs, err)
			continue
		}
		canonical[name] = f.canonicalize(v)
	}

	return canonical, errs
}

// check validates a single value against the field spec.
func (f Field) check(name, v string) error {
	switch f.Type {
	case TypeInt:
		if _, err := strconv.ParseInt(v, 10, 64); err != nil {
			return fmt.Errorf("parameter %s: %q is not an integer", name, v)
		}
	case TypeNumber:
		if _, err := strconv.ParseFloat(v, 64); err != nil {
			return fmt.Errorf("parameter %s: %q is not a number", name, v)
		}
	case TypeBool:
		if v != "true" && v != "false" {
			return fmt.Errorf("parameter %s: %q is not a boolean", name, v)
		}
	}

	if len(f.Enum) > 0 {
		found := false
		for _, allowed := range f.Enum {
			if v == allowed {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("parameter %s: %q is not one of the allowed values %v", name, v, f.Enum)
		}
	}

	if f.Pattern != "" {
		matched, err := regexp.MatchString(f.Pattern, v)
		if err != nil {
			return fmt.Errorf("parameter %s: invalid pattern: %w", name, err)
		}
		if !matched {
			return fmt.Errorf("parameter %s: %q does not match pattern %s", name, v, f.Pattern)
		}
	}

	return nil
}

// canonicalize renders a validated value in fixed scalar formatting so the
// same logical value always serializes identically (leading zeros and
// trailing decimal zeros are stripped from numbers).
func (f Field) canonicalize(v string) string {
	switch f.Type {
	case TypeInt:
		n, _ := strconv.ParseInt(v, 10, 64)
		return strconv.FormatInt(n, 10)
	case TypeNumber:
		n, _ := strconv.ParseFloat(v, 64)
		return strconv.FormatFloat(n, 'g', -1, 64)
	default:
		return v
	}
}

// sortedNames returns the field names in deterministic order.
func (p Params) sortedNames() []string {
	names := make([]string, 0, len(p))
	for name := range p {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
