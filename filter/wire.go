package filter

import (
	"errors"
	"fmt"
	"math"

	"github.com/hugr-lab/esfilter/internal/compact"
)

// EncodeBinary serializes a filter tree to the compact binary wire form: the
// tagged wire structure encoded as MessagePack and compressed with zstd.
// The payload is typically a fraction of the JSON form and suits opaque
// filter handoffs between services.
func EncodeBinary(f *Filter) ([]byte, error) {
	if f == nil {
		return nil, errors.New("filter: cannot encode a nil filter")
	}
	m, err := filterWire(f)
	if err != nil {
		return nil, err
	}
	data, err := compact.Encode(m)
	if err != nil {
		return nil, fmt.Errorf("filter: %w", err)
	}
	return data, nil
}

// DecodeBinary deserializes the payload produced by EncodeBinary, applying
// the same validation as Parse.
func DecodeBinary(data []byte) (*Filter, error) {
	m, err := compact.DecodeMap(data)
	if err != nil {
		return nil, fmt.Errorf("filter: %w", err)
	}
	f, err := filterFromWire(m)
	if err != nil {
		return nil, fmt.Errorf("filter: %w", err)
	}
	return f, nil
}

// filterFromWire rebuilds a tree from the decoded tagged map structure. The
// structure mirrors the JSON wire form, so the validation here mirrors
// parseFilter and friends over already-decoded values.
func filterFromWire(m map[string]any) (*Filter, error) {
	f := &Filter{}
	raw, ok := m["statements"]
	if !ok || raw == nil {
		return f, nil
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("statements must be an array, got %T", raw)
	}

	f.Statements = make([]Statement, 0, len(list))
	for i, item := range list {
		stmt, err := statementFromWire(item)
		if err != nil {
			return nil, fmt.Errorf("statement %d: %w", i, err)
		}
		f.Statements = append(f.Statements, stmt)
	}
	return f, nil
}

func statementFromWire(v any) (Statement, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return Statement{}, fmt.Errorf("statement must be a map, got %T", v)
	}

	conjRaw, err := wireString(m, "conjunction")
	if err != nil {
		return Statement{}, err
	}
	conj, err := parseConjunction(conjRaw)
	if err != nil {
		return Statement{}, err
	}

	clauseRaw, hasClause := m["clause"]
	filterRaw, hasFilter := m["filter"]
	switch {
	case hasClause && hasFilter:
		return Statement{}, errors.New("statement has both a clause and a filter")
	case hasClause:
		clause, err := clauseFromWire(clauseRaw)
		if err != nil {
			return Statement{}, err
		}
		return Statement{Conjunction: conj, Value: clause}, nil
	case hasFilter:
		nested, ok := filterRaw.(map[string]any)
		if !ok {
			return Statement{}, fmt.Errorf("nested filter must be a map, got %T", filterRaw)
		}
		sub, err := filterFromWire(nested)
		if err != nil {
			return Statement{}, err
		}
		return Statement{Conjunction: conj, Value: sub}, nil
	default:
		return Statement{}, errors.New("statement has neither a clause nor a filter")
	}
}

func clauseFromWire(v any) (Clause, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return Clause{}, fmt.Errorf("clause must be a map, got %T", v)
	}

	opRaw, err := wireString(m, "op")
	if err != nil {
		return Clause{}, err
	}
	op := Operator(opRaw)
	if !op.Valid() {
		return Clause{}, fmt.Errorf("unknown operator %q", opRaw)
	}

	subjectRaw, ok := m["subject"]
	if !ok {
		return Clause{}, errors.New("clause is missing a subject")
	}
	subject, err := operandFromWire(subjectRaw)
	if err != nil {
		return Clause{}, fmt.Errorf("invalid subject: %w", err)
	}

	objectRaw, ok := m["object"]
	if !ok {
		return Clause{}, errors.New("clause is missing an object")
	}
	object, err := operandFromWire(objectRaw)
	if err != nil {
		return Clause{}, fmt.Errorf("invalid object: %w", err)
	}

	return NewClause(subject, op, object), nil
}

func operandFromWire(v any) (Operand, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("operand must be a map, got %T", v)
	}

	// A key holding nil still counts as present, matching the JSON decoder's
	// treatment of {"literal":null}.
	tags := 0
	for _, key := range []string{"target", "literal", "range", "pattern", "list"} {
		if _, ok := m[key]; ok {
			tags++
		}
	}
	if tags != 1 {
		return nil, errors.New("operand must have exactly one of target, literal, range, pattern or list")
	}

	if raw, ok := m["target"]; ok {
		return targetFromWire(raw)
	}
	if raw, ok := m["literal"]; ok {
		return literalFromWire(raw)
	}
	if raw, ok := m["range"]; ok {
		return rangeFromWire(raw)
	}
	if raw, ok := m["pattern"]; ok {
		return patternFromWire(raw)
	}
	return listFromWire(m["list"])
}

func targetFromWire(v any) (Target, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return Target{}, fmt.Errorf("target must be a map, got %T", v)
	}
	pathRaw, ok := m["path"]
	if !ok {
		return Target{}, errors.New("target path is empty")
	}
	list, ok := pathRaw.([]any)
	if !ok {
		return Target{}, fmt.Errorf("target path must be an array, got %T", pathRaw)
	}
	if len(list) == 0 {
		return Target{}, errors.New("target path is empty")
	}

	segments := make([]Segment, 0, len(list))
	for i, item := range list {
		seg, err := segmentFromWire(item)
		if err != nil {
			return Target{}, fmt.Errorf("path segment %d: %w", i, err)
		}
		segments = append(segments, seg)
	}
	return NewTarget(segments...), nil
}

func segmentFromWire(v any) (Segment, error) {
	if s, ok := v.(string); ok {
		if s == "" {
			return Segment{}, errors.New("segment key is empty")
		}
		return Key(s), nil
	}
	if i, ok := wireIndex(v); ok {
		if i < 0 {
			return Segment{}, fmt.Errorf("segment index %d is negative", i)
		}
		return Index(i), nil
	}
	return Segment{}, fmt.Errorf("segment must be a string key or an integer index, got %T", v)
}

// wireIndex normalizes the integer widths MessagePack decoding produces.
func wireIndex(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int8:
		return int(n), true
	case int16:
		return int(n), true
	case int32:
		return int(n), true
	case int64:
		if n < math.MinInt || n > math.MaxInt {
			return 0, false
		}
		return int(n), true
	case uint8:
		return int(n), true
	case uint16:
		return int(n), true
	case uint32:
		return int(n), true
	case uint:
		if uint64(n) > math.MaxInt {
			return 0, false
		}
		return int(n), true
	case uint64:
		if n > math.MaxInt {
			return 0, false
		}
		return int(n), true
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int(n), true
	}
	return 0, false
}

func literalFromWire(v any) (Literal, error) {
	lit, err := literalOf(v)
	if err != nil {
		return Literal{}, fmt.Errorf("literal must be a string, number, boolean or null, got %T", v)
	}
	return lit, nil
}

func rangeFromWire(v any) (Range, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return Range{}, fmt.Errorf("range must be a map, got %T", v)
	}
	lowerRaw, okLower := m["lower"]
	upperRaw, okUpper := m["upper"]
	if !okLower || !okUpper {
		return Range{}, errors.New("range requires both lower and upper")
	}

	lower, err := literalFromWire(lowerRaw)
	if err != nil {
		return Range{}, fmt.Errorf("invalid lower bound: %w", err)
	}
	upper, err := literalFromWire(upperRaw)
	if err != nil {
		return Range{}, fmt.Errorf("invalid upper bound: %w", err)
	}
	return NewRange(lower, upper), nil
}

func patternFromWire(v any) (Pattern, error) {
	s, ok := v.(string)
	if !ok {
		return Pattern{}, fmt.Errorf("pattern must be a string, got %T", v)
	}
	return NewPattern(s), nil
}

func listFromWire(v any) (List, error) {
	raw, ok := v.([]any)
	if !ok {
		return List{}, fmt.Errorf("list must be an array, got %T", v)
	}

	values := make([]Literal, 0, len(raw))
	for i, item := range raw {
		lit, err := literalFromWire(item)
		if err != nil {
			return List{}, fmt.Errorf("list value %d: %w", i, err)
		}
		values = append(values, lit)
	}
	return NewList(values...), nil
}

func wireString(m map[string]any, key string) (string, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%s must be a string, got %T", key, v)
	}
	return s, nil
}
