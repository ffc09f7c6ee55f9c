package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Kind is the JSON type a Shape accepts.
type Kind int

const (
	KindAny Kind = iota
	KindString
	KindBool
	KindInteger
	KindObject
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindBool:
		return "boolean"
	case KindInteger:
		return "integer"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	default:
		return "any"
	}
}

// UnknownKeys decides what happens to object keys a Shape does not declare.
type UnknownKeys int

const (
	// Strip drops undeclared keys from the normalized value.
	Strip UnknownKeys = iota
	// Reject reports each undeclared key as a violation.
	Reject
)

// FormatDateTime requires an RFC 3339 timestamp string.
const FormatDateTime = "date-time"

// Rule checks relationships between fields of an already-normalized object.
type Rule func(obj map[string]any, at Path) []Violation

// Field is one declared key of an object Shape.
type Field struct {
	Name     string
	Shape    *Shape
	Required bool
	// Default is substituted when an optional field is absent.
	Default any
}

// Shape is a declarative description of an acceptable JSON value.
type Shape struct {
	Name      string
	Kind      Kind
	Nullable  bool
	Enum      []string
	MinLength int
	MaxBytes  int
	Format    string
	Fields    []Field
	Unknown   UnknownKeys
	Rules     []Rule
	Elem      *Shape
}

// Violation is one reason a value was rejected.
type Violation struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// ErrInvalid is matched by every *ValidationError.
var ErrInvalid = errors.New("schema: invalid value")

// ValidationError carries the ordered violations for a rejected value.
type ValidationError struct {
	Shape      string
	Violations []Violation
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		if v.Path == "" {
			parts = append(parts, v.Reason)
			continue
		}
		parts = append(parts, v.Path+": "+v.Reason)
	}
	return fmt.Sprintf("%s invalid: %s", e.Shape, strings.Join(parts, "; "))
}

func (e *ValidationError) Is(target error) bool { return target == ErrInvalid }

// Path is a dotted field path with [i] for array positions.
type Path string

func (p Path) Key(name string) Path {
	if p == "" {
		return Path(name)
	}
	return p + "." + Path(name)
}

func (p Path) Index(i int) Path {
	return p + Path("["+strconv.Itoa(i)+"]")
}

// Nullable returns a copy of s that also accepts null.
func Nullable(s *Shape) *Shape {
	out := *s
	out.Nullable = true
	return &out
}

// ArrayOf returns an array Shape of elem.
func ArrayOf(name string, elem *Shape) *Shape {
	return &Shape{Name: name, Kind: KindArray, Elem: elem}
}

// Check validates value and returns the normalized value with defaults applied
// and stripped keys removed. The violation list is empty when value is accepted.
func (s *Shape) Check(value any) (any, []Violation) {
	var out []Violation
	norm := s.check(value, "", &out)
	return norm, out
}

// Validate is Check with the violations folded into a *ValidationError.
func (s *Shape) Validate(value any) (any, error) {
	norm, violations := s.Check(value)
	if len(violations) > 0 {
		return nil, &ValidationError{Shape: s.Name, Violations: violations}
	}
	return norm, nil
}

func (s *Shape) check(value any, at Path, out *[]Violation) any {
	if value == nil {
		if s.Nullable || s.Kind == KindAny {
			return nil
		}
		*out = append(*out, Violation{Path: string(at), Reason: "expected " + s.Kind.String() + ", got null"})
		return nil
	}
	switch s.Kind {
	case KindAny:
		return value
	case KindString:
		return s.checkString(value, at, out)
	case KindBool:
		b, ok := value.(bool)
		if !ok {
			*out = append(*out, mismatch(s.Kind, value, at))
			return nil
		}
		return b
	case KindInteger:
		n, ok := asInteger(value)
		if !ok {
			*out = append(*out, mismatch(s.Kind, value, at))
			return nil
		}
		return n
	case KindArray:
		items, ok := value.([]any)
		if !ok {
			*out = append(*out, mismatch(s.Kind, value, at))
			return nil
		}
		norm := make([]any, len(items))
		for i, item := range items {
			norm[i] = s.Elem.check(item, at.Index(i), out)
		}
		return norm
	case KindObject:
		return s.checkObject(value, at, out)
	}
	return nil
}

func (s *Shape) checkString(value any, at Path, out *[]Violation) any {
	str, ok := value.(string)
	if !ok {
		*out = append(*out, mismatch(s.Kind, value, at))
		return nil
	}
	if s.MinLength > 0 && len([]rune(strings.TrimSpace(str))) < s.MinLength {
		*out = append(*out, Violation{Path: string(at), Reason: fmt.Sprintf("must be at least %d characters", s.MinLength)})
	}
	if s.MaxBytes > 0 && len(str) > s.MaxBytes {
		*out = append(*out, Violation{Path: string(at), Reason: fmt.Sprintf("must be at most %d bytes", s.MaxBytes)})
	}
	if len(s.Enum) > 0 && !contains(s.Enum, str) {
		*out = append(*out, Violation{Path: string(at), Reason: "must be one of " + strings.Join(s.Enum, ", ")})
	}
	if s.Format == FormatDateTime {
		if _, err := time.Parse(time.RFC3339Nano, str); err != nil {
			*out = append(*out, Violation{Path: string(at), Reason: "must be an RFC 3339 timestamp"})
		}
	}
	return str
}

func (s *Shape) checkObject(value any, at Path, out *[]Violation) any {
	obj, ok := value.(map[string]any)
	if !ok {
		*out = append(*out, mismatch(s.Kind, value, at))
		return nil
	}
	norm := make(map[string]any, len(s.Fields))
	declared := make(map[string]struct{}, len(s.Fields))
	for _, f := range s.Fields {
		declared[f.Name] = struct{}{}
		raw, present := obj[f.Name]
		if !present {
			if f.Required {
				*out = append(*out, Violation{Path: string(at.Key(f.Name)), Reason: "required"})
			} else if f.Default != nil {
				norm[f.Name] = cloneDefault(f.Default)
			}
			continue
		}
		norm[f.Name] = f.Shape.check(raw, at.Key(f.Name), out)
	}

	var unknown []string
	for key := range obj {
		if _, ok := declared[key]; !ok {
			unknown = append(unknown, key)
		}
	}
	if s.Unknown == Reject && len(unknown) > 0 {
		sort.Strings(unknown)
		for _, key := range unknown {
			*out = append(*out, Violation{Path: string(at.Key(key)), Reason: "unknown field"})
		}
	}

	for _, rule := range s.Rules {
		*out = append(*out, rule(norm, at)...)
	}
	return norm
}

func mismatch(want Kind, got any, at Path) Violation {
	return Violation{Path: string(at), Reason: "expected " + want.String() + ", got " + typeName(got)}
}

func typeName(v any) string {
	switch v.(type) {
	case string:
		return "string"
	case bool:
		return "boolean"
	case json.Number, float64, int, int64:
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}

func asInteger(v any) (int64, bool) {
	switch n := v.(type) {
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	case float64:
		i := int64(n)
		return i, float64(i) == n
	case int:
		return int64(n), true
	case int64:
		return n, true
	}
	return 0, false
}

func cloneDefault(v any) any {
	if items, ok := v.([]any); ok {
		return append([]any{}, items...)
	}
	return v
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

// Parse decodes JSON keeping numbers exact.
func Parse(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, errors.New("unexpected data after JSON value")
	}
	return v, nil
}

// Decode parses data, validates it against s and converts the normalized value into T.
func Decode[T any](s *Shape, data []byte) (T, error) {
	var zero T
	raw, err := Parse(data)
	if err != nil {
		return zero, &ValidationError{Shape: s.Name, Violations: []Violation{{Reason: "malformed JSON: " + err.Error()}}}
	}
	return Convert[T](s, raw)
}

// Convert validates an already-parsed value against s and converts it into T.
func Convert[T any](s *Shape, raw any) (T, error) {
	var zero T
	norm, err := s.Validate(raw)
	if err != nil {
		return zero, err
	}
	buf, err := json.Marshal(norm)
	if err != nil {
		return zero, fmt.Errorf("schema: re-encode %s: %w", s.Name, err)
	}
	var typed T
	if err := json.Unmarshal(buf, &typed); err != nil {
		return zero, fmt.Errorf("schema: convert %s: %w", s.Name, err)
	}
	return typed, nil
}

// Encode marshals v and refuses to return bytes that s would reject.
func Encode(s *Shape, v any) ([]byte, error) {
	buf, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("schema: encode %s: %w", s.Name, err)
	}
	raw, err := Parse(buf)
	if err != nil {
		return nil, fmt.Errorf("schema: encode %s: %w", s.Name, err)
	}
	if _, err := s.Validate(raw); err != nil {
		return nil, err
	}
	return buf, nil
}
