package esfilter

import (
	"fmt"
	"strings"

	"github.com/hugr-lab/esfilter/filter"
	"github.com/hugr-lab/esfilter/query"
)

// compileClause lowers one comparison clause to a query fragment. Dispatch
// runs in priority order:
//
//  1. Both sides are targets: a script fragment comparing the two document
//     fields.
//  2. Neither side is a target: a script fragment comparing the two values
//     as parameters.
//  3. One side is a target: a native fragment chosen per operator, with the
//     clause normalized first so the target is the subject.
func (r *conversion) compileClause(c filter.Clause) (query.Fragment, error) {
	if !c.Op.Valid() {
		return nil, newConvertError("unknown operator %q", c.Op)
	}

	subject, object, op := c.Subject, c.Object, c.Op
	if _, ok := subject.(filter.Target); !ok {
		if _, ok := object.(filter.Target); ok {
			// Normalize literal-op-target to target-op-literal. Swapping
			// sides reverses the ordering comparisons; the symmetric
			// operators keep their meaning.
			subject, object = object, subject
			op = invert(op)
		}
	}

	subjectTarget, subjectIsTarget := subject.(filter.Target)
	objectTarget, objectIsTarget := object.(filter.Target)
	switch {
	case subjectIsTarget && objectIsTarget:
		return r.compileTargetPair(subjectTarget, op, objectTarget)
	case !subjectIsTarget:
		return r.compileValuePair(subject, op, object)
	default:
		return r.compileComparison(subjectTarget, op, object)
	}
}

// invert flips the ordering operators for an operand swap. All other
// operators are symmetric or never reach a swap.
func invert(op filter.Operator) filter.Operator {
	switch op {
	case filter.OpGt:
		return filter.OpLt
	case filter.OpGte:
		return filter.OpLte
	case filter.OpLt:
		return filter.OpGt
	case filter.OpLte:
		return filter.OpGte
	}
	return op
}

// symbol maps a comparison operator to its script form. Operators without a
// script form return false.
func symbol(op filter.Operator) (string, bool) {
	switch op {
	case filter.OpEq:
		return "==", true
	case filter.OpNeq:
		return "!=", true
	case filter.OpGt:
		return ">", true
	case filter.OpGte:
		return ">=", true
	case filter.OpLt:
		return "<", true
	case filter.OpLte:
		return "<=", true
	}
	return "", false
}

// compileTargetPair emits a script comparing two document fields.
func (r *conversion) compileTargetPair(subject filter.Target, op filter.Operator, object filter.Target) (query.Fragment, error) {
	sym, ok := symbol(op)
	if !ok {
		return nil, newConvertError("operator %q cannot compare two targets", op)
	}

	left, err := r.resolve(subject)
	if err != nil {
		return nil, err
	}
	right, err := r.resolve(object)
	if err != nil {
		return nil, err
	}

	// Canonical keys never contain quotes, so they embed directly.
	source := fmt.Sprintf("doc['%s'].value %s doc['%s'].value", left, sym, right)
	return query.NewScript(source, nil), nil
}

// compileValuePair emits a parameterized script comparing two literals.
func (r *conversion) compileValuePair(subject filter.Operand, op filter.Operator, object filter.Operand) (query.Fragment, error) {
	sym, ok := symbol(op)
	if !ok {
		return nil, newConvertError("operator %q cannot compare two literals", op)
	}

	subjectLit, ok := subject.(filter.Literal)
	if !ok {
		return nil, newConvertError("%s comparison requires a literal subject, got %s", op, operandKind(subject))
	}
	objectLit, ok := object.(filter.Literal)
	if !ok {
		return nil, newConvertError("%s comparison requires a literal object, got %s", op, operandKind(object))
	}

	source := "params.subject " + sym + " params.object"
	params := map[string]any{
		"subject": subjectLit.Value(),
		"object":  objectLit.Value(),
	}
	return query.NewScript(source, params), nil
}

// compileComparison emits the native fragment for a target-subject clause.
func (r *conversion) compileComparison(subject filter.Target, op filter.Operator, object filter.Operand) (query.Fragment, error) {
	key, err := r.resolve(subject)
	if err != nil {
		return nil, err
	}

	switch op {
	case filter.OpEq:
		lit, err := literalObject(op, object)
		if err != nil {
			return nil, err
		}
		if lit.IsNil() {
			// Equal to nothing: the field must be absent.
			return query.NewMustNot(query.NewExists(key)), nil
		}
		return query.NewTerm(key, lit.Value()), nil

	case filter.OpNeq:
		lit, err := literalObject(op, object)
		if err != nil {
			return nil, err
		}
		if lit.IsNil() {
			return query.NewExists(key), nil
		}
		return query.NewMustNot(query.NewTerm(key, lit.Value())), nil

	case filter.OpGt, filter.OpGte:
		lit, err := literalObject(op, object)
		if err != nil {
			return nil, err
		}
		if lit.IsNil() {
			// Anything present exceeds nothing.
			return query.NewExists(key), nil
		}
		bounds := &query.Bounds{}
		if op == filter.OpGt {
			bounds.Gt = lit.Value()
		} else {
			bounds.Gte = lit.Value()
		}
		return query.NewRange(key, bounds), nil

	case filter.OpLt, filter.OpLte:
		lit, err := literalObject(op, object)
		if err != nil {
			return nil, err
		}
		if lit.IsNil() {
			// Nothing is below nothing: only an absent field qualifies.
			return query.NewMustNot(query.NewExists(key)), nil
		}
		bounds := &query.Bounds{}
		if op == filter.OpLt {
			bounds.Lt = lit.Value()
		} else {
			bounds.Lte = lit.Value()
		}
		return query.NewRange(key, bounds), nil

	case filter.OpLike, filter.OpNotLike:
		pattern, ok := object.(filter.Pattern)
		if !ok {
			return nil, newConvertError("%s clause requires a pattern object, got %s", op, operandKind(object))
		}
		frag := query.NewRegexp(key, trimAnchors(pattern.RegexString()))
		if op == filter.OpNotLike {
			return query.NewMustNot(frag), nil
		}
		return frag, nil

	case filter.OpBetween, filter.OpNotBetween:
		rng, ok := object.(filter.Range)
		if !ok {
			return nil, newConvertError("%s clause requires a range object, got %s", op, operandKind(object))
		}
		frag := query.NewRange(key, &query.Bounds{
			Gte: rng.Lower.Value(),
			Lte: rng.Upper.Value(),
		})
		if op == filter.OpNotBetween {
			return query.NewMustNot(frag), nil
		}
		return frag, nil

	case filter.OpIn, filter.OpNotIn:
		list, ok := object.(filter.List)
		if !ok {
			return nil, newConvertError("%s clause requires a list object, got %s", op, operandKind(object))
		}
		values := make([]any, 0, len(list.Values))
		for _, lit := range list.Values {
			values = append(values, lit.Value())
		}
		frag := query.NewTerms(key, values)
		if op == filter.OpNotIn {
			return query.NewMustNot(frag), nil
		}
		return frag, nil
	}

	return nil, newConvertError("unknown operator %q", op)
}

// literalObject enforces that the object of a plain comparison is a literal.
func literalObject(op filter.Operator, o filter.Operand) (filter.Literal, error) {
	lit, ok := o.(filter.Literal)
	if !ok {
		return filter.Literal{}, newConvertError("%s clause requires a literal object, got %s", op, operandKind(o))
	}
	return lit, nil
}

// trimAnchors strips one leading ^ and one trailing $: regexp fragments are
// implicitly anchored by the engine.
func trimAnchors(expression string) string {
	expression = strings.TrimPrefix(expression, "^")
	return strings.TrimSuffix(expression, "$")
}

// operandKind names an operand's kind for error messages.
func operandKind(o filter.Operand) string {
	switch o.(type) {
	case filter.Target:
		return "a target"
	case filter.Literal:
		return "a literal"
	case filter.Range:
		return "a range"
	case filter.Pattern:
		return "a pattern"
	case filter.List:
		return "a list"
	case nil:
		return "nothing"
	default:
		return fmt.Sprintf("%T", o)
	}
}
