package filter

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Operand is one side of a clause comparison. Use type assertions or type
// switches to access the concrete operand.
type Operand interface {
	// operandMarker is a marker method to prevent external implementation.
	operandMarker()
}

// Segment is one step of a target path: an object key or an array index.
type Segment struct {
	key     string
	index   int
	isIndex bool
}

// Key builds a key segment.
func Key(k string) Segment { return Segment{key: k} }

// Index builds an array index segment.
func Index(i int) Segment { return Segment{index: i, isIndex: true} }

// IsIndex reports whether the segment addresses an array element.
func (s Segment) IsIndex() bool { return s.isIndex }

// String renders the segment as it appears in a path: the key verbatim, or
// the index in decimal.
func (s Segment) String() string {
	if s.isIndex {
		return strconv.Itoa(s.index)
	}
	return s.key
}

// Target references a document field by its ordered path.
type Target struct {
	Segments []Segment
}

func (Target) operandMarker() {}

// NewTarget builds a target from path segments.
func NewTarget(segments ...Segment) Target {
	return Target{Segments: segments}
}

// Field returns the first path segment in string form. The field names the
// target for governance checks and for field discovery; deeper segments
// refine the reference without changing which field it counts as.
func (t Target) Field() string {
	if len(t.Segments) == 0 {
		return ""
	}
	return t.Segments[0].String()
}

// Pointer renders the path in pointer form, e.g. "/foo/0/bar".
func (t Target) Pointer() string {
	var sb strings.Builder
	for _, s := range t.Segments {
		sb.WriteByte('/')
		sb.WriteString(s.String())
	}
	return sb.String()
}

// ParseTarget parses a pointer-form path such as "/foo/0/bar". The pointer
// must start with '/' and have no empty segments. Segments consisting solely
// of ASCII digits become array indices; everything else becomes a key.
func ParseTarget(pointer string) (Target, error) {
	if pointer == "" || pointer[0] != '/' {
		return Target{}, fmt.Errorf("filter: target pointer must start with '/': %q", pointer)
	}
	parts := strings.Split(pointer[1:], "/")
	segments := make([]Segment, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			return Target{}, fmt.Errorf("filter: target pointer has empty segment: %q", pointer)
		}
		if isDigits(part) {
			n, err := strconv.Atoi(part)
			if err != nil {
				return Target{}, fmt.Errorf("filter: target pointer segment %q: %w", part, err)
			}
			segments = append(segments, Index(n))
			continue
		}
		segments = append(segments, Key(part))
	}
	return Target{Segments: segments}, nil
}

// MustParseTarget is ParseTarget for statically known pointers. It panics if
// the pointer does not parse.
func MustParseTarget(pointer string) Target {
	t, err := ParseTarget(pointer)
	if err != nil {
		panic(err)
	}
	return t
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return len(s) > 0
}

// Literal is a scalar operand: a string, a float64 number, a boolean, or the
// nil sentinel. The zero Literal is the nil sentinel.
type Literal struct {
	value any
}

func (Literal) operandMarker() {}

// String builds a string literal.
func String(s string) Literal { return Literal{value: s} }

// Number builds a numeric literal. All numbers are float64.
func Number(n float64) Literal { return Literal{value: n} }

// Bool builds a boolean literal.
func Bool(b bool) Literal { return Literal{value: b} }

// Nil returns the nil sentinel literal. Comparisons against it express field
// presence and absence rather than value equality.
func Nil() Literal { return Literal{} }

// LiteralOf converts a raw decoded scalar into a Literal. Integer and float
// values of any width normalize to float64; nil, string and bool pass
// through. Other types are rejected.
func LiteralOf(v any) (Literal, error) {
	lit, err := literalOf(v)
	if err != nil {
		return Literal{}, fmt.Errorf("filter: %w", err)
	}
	return lit, nil
}

func literalOf(v any) (Literal, error) {
	switch n := v.(type) {
	case nil:
		return Nil(), nil
	case string:
		return String(n), nil
	case bool:
		return Bool(n), nil
	case float64:
		return Number(n), nil
	case float32:
		return Number(float64(n)), nil
	case int:
		return Number(float64(n)), nil
	case int8:
		return Number(float64(n)), nil
	case int16:
		return Number(float64(n)), nil
	case int32:
		return Number(float64(n)), nil
	case int64:
		return Number(float64(n)), nil
	case uint:
		return Number(float64(n)), nil
	case uint8:
		return Number(float64(n)), nil
	case uint16:
		return Number(float64(n)), nil
	case uint32:
		return Number(float64(n)), nil
	case uint64:
		return Number(float64(n)), nil
	default:
		return Literal{}, fmt.Errorf("unsupported literal type %T", v)
	}
}

// Value returns the underlying scalar: a string, float64, bool, or nil for
// the nil sentinel.
func (l Literal) Value() any { return l.value }

// IsNil reports whether the literal is the nil sentinel.
func (l Literal) IsNil() bool { return l.value == nil }

// Range is an inclusive lower/upper literal pair carried by between and
// nbetween clauses.
type Range struct {
	Lower Literal
	Upper Literal
}

func (Range) operandMarker() {}

// NewRange builds an inclusive range.
func NewRange(lower, upper Literal) Range {
	return Range{Lower: lower, Upper: upper}
}

// Pattern is a wildcard match expression carried by like and nlike clauses.
// The wildcard grammar has two metacharacters: '*' matches any run of
// characters including none, and '_' matches exactly one character. All
// other characters match themselves.
type Pattern struct {
	wildcard string
}

func (Pattern) operandMarker() {}

// NewPattern builds a pattern from its wildcard form.
func NewPattern(wildcard string) Pattern { return Pattern{wildcard: wildcard} }

// Wildcard returns the original wildcard string.
func (p Pattern) Wildcard() string { return p.wildcard }

// RegexString renders the pattern as an anchored regular expression:
// '*' becomes `.*`, '_' becomes `.{1}`, every other character passes through
// verbatim, and the result is wrapped in ^...$.
func (p Pattern) RegexString() string {
	var sb strings.Builder
	sb.Grow(len(p.wildcard) + 2)
	sb.WriteByte('^')
	for _, r := range p.wildcard {
		switch r {
		case '*':
			sb.WriteString(".*")
		case '_':
			sb.WriteString(".{1}")
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('$')
	return sb.String()
}

// Regex compiles the rendered expression.
func (p Pattern) Regex() (*regexp.Regexp, error) {
	re, err := regexp.Compile(p.RegexString())
	if err != nil {
		return nil, fmt.Errorf("filter: pattern %q: %w", p.wildcard, err)
	}
	return re, nil
}

// List is an ordered sequence of literals carried by in and nin clauses.
// Order and duplicates are preserved.
type List struct {
	Values []Literal
}

func (List) operandMarker() {}

// NewList builds a list of literals.
func NewList(values ...Literal) List { return List{Values: values} }

// errNilOperand reports a clause side left unset by a hand-built tree. The
// wire encoders wrap it with statement context.
var errNilOperand = errors.New("clause operand is nil")
