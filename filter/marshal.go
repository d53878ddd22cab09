package filter

import (
	"encoding/json"
	"fmt"
)

// MarshalJSON implements json.Marshaler, producing the wire form consumed by
// Parse. Marshaling fails if a statement value or clause operand was left
// nil by a hand-built tree.
func (f Filter) MarshalJSON() ([]byte, error) {
	m, err := filterWire(&f)
	if err != nil {
		return nil, err
	}
	return json.Marshal(m)
}

// filterWire lowers a tree to the tagged map structure shared by the JSON
// and binary wire forms.
func filterWire(f *Filter) (map[string]any, error) {
	statements := make([]any, 0, len(f.Statements))
	for i, stmt := range f.Statements {
		m, err := statementWire(stmt)
		if err != nil {
			return nil, fmt.Errorf("filter: statement %d: %w", i, err)
		}
		statements = append(statements, m)
	}
	return map[string]any{"statements": statements}, nil
}

func statementWire(stmt Statement) (map[string]any, error) {
	conj := stmt.Conjunction
	if conj == "" {
		conj = ConjunctionAnd
	}
	if !conj.Valid() {
		return nil, fmt.Errorf("unknown conjunction %q", conj)
	}

	m := map[string]any{"conjunction": string(conj)}
	switch v := stmt.Value.(type) {
	case Clause:
		clause, err := clauseWire(v)
		if err != nil {
			return nil, err
		}
		m["clause"] = clause
	case *Filter:
		nested, err := filterWire(v)
		if err != nil {
			return nil, err
		}
		m["filter"] = nested
	case nil:
		return nil, fmt.Errorf("statement value is nil")
	default:
		return nil, fmt.Errorf("unsupported condition type %T", stmt.Value)
	}
	return m, nil
}

func clauseWire(c Clause) (map[string]any, error) {
	if !c.Op.Valid() {
		return nil, fmt.Errorf("unknown operator %q", c.Op)
	}
	subject, err := operandWire(c.Subject)
	if err != nil {
		return nil, fmt.Errorf("subject: %w", err)
	}
	object, err := operandWire(c.Object)
	if err != nil {
		return nil, fmt.Errorf("object: %w", err)
	}
	return map[string]any{
		"subject": subject,
		"op":      string(c.Op),
		"object":  object,
	}, nil
}

func operandWire(o Operand) (map[string]any, error) {
	switch v := o.(type) {
	case Target:
		path := make([]any, 0, len(v.Segments))
		for _, seg := range v.Segments {
			if seg.isIndex {
				path = append(path, seg.index)
			} else {
				path = append(path, seg.key)
			}
		}
		return map[string]any{"target": map[string]any{"path": path}}, nil
	case Literal:
		return map[string]any{"literal": v.value}, nil
	case Range:
		return map[string]any{"range": map[string]any{
			"lower": v.Lower.value,
			"upper": v.Upper.value,
		}}, nil
	case Pattern:
		return map[string]any{"pattern": v.wildcard}, nil
	case List:
		values := make([]any, 0, len(v.Values))
		for _, lit := range v.Values {
			values = append(values, lit.value)
		}
		return map[string]any{"list": values}, nil
	case nil:
		return nil, errNilOperand
	default:
		return nil, fmt.Errorf("unsupported operand type %T", o)
	}
}
