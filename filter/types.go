package filter

// Conjunction joins a statement to the statement preceding it. The first
// statement of a filter carries a conjunction too, but it has nothing to
// join to and is ignored by consumers.
type Conjunction string

const (
	ConjunctionAnd Conjunction = "and"
	ConjunctionOr  Conjunction = "or"
)

// Valid reports whether c is one of the two conjunctions.
func (c Conjunction) Valid() bool {
	return c == ConjunctionAnd || c == ConjunctionOr
}

// Operator identifies the comparison a clause performs.
type Operator string

const (
	// Comparison operators
	OpEq  Operator = "eq"
	OpNeq Operator = "neq"
	OpGt  Operator = "gt"
	OpGte Operator = "gte"
	OpLt  Operator = "lt"
	OpLte Operator = "lte"

	// Pattern matching
	OpLike    Operator = "like"
	OpNotLike Operator = "nlike"

	// Range membership
	OpBetween    Operator = "between"
	OpNotBetween Operator = "nbetween"

	// Set membership
	OpIn    Operator = "in"
	OpNotIn Operator = "nin"
)

// Valid reports whether o is one of the twelve clause operators.
func (o Operator) Valid() bool {
	switch o {
	case OpEq, OpNeq, OpGt, OpGte, OpLt, OpLte,
		OpLike, OpNotLike, OpBetween, OpNotBetween, OpIn, OpNotIn:
		return true
	}
	return false
}

// Condition is the value a statement asserts: either a single comparison
// Clause or a nested *Filter group. Use type assertions or type switches to
// access the concrete condition.
type Condition interface {
	// conditionMarker is a marker method to prevent external implementation.
	conditionMarker()
}

// Clause is an atomic comparison between a subject operand and an object
// operand.
type Clause struct {
	Subject Operand
	Op      Operator
	Object  Operand
}

func (Clause) conditionMarker() {}

// Statement is one member of a filter: a condition plus the conjunction
// joining it to the previous statement.
type Statement struct {
	Conjunction Conjunction
	Value       Condition
}

// Filter is an ordered sequence of statements. AND binds tighter than OR, so
//
//	a AND b OR c AND d
//
// groups as (a AND b) OR (c AND d). Nested *Filter conditions override that
// grouping explicitly.
type Filter struct {
	Statements []Statement
}

func (*Filter) conditionMarker() {}

// Where starts a filter with its first condition.
func Where(cond Condition) *Filter {
	f := &Filter{}
	return f.And(cond)
}

// And appends a condition joined with AND and returns f for chaining.
func (f *Filter) And(cond Condition) *Filter {
	f.Statements = append(f.Statements, Statement{Conjunction: ConjunctionAnd, Value: cond})
	return f
}

// Or appends a condition joined with OR and returns f for chaining.
func (f *Filter) Or(cond Condition) *Filter {
	f.Statements = append(f.Statements, Statement{Conjunction: ConjunctionOr, Value: cond})
	return f
}

// NewClause builds a clause from raw parts. The typed constructors (Eq, Gt,
// Like, ...) are preferred; NewClause exists for decoders and generated
// trees.
func NewClause(subject Operand, op Operator, object Operand) Clause {
	return Clause{Subject: subject, Op: op, Object: object}
}

// Eq compares subject and object for equality.
func Eq(subject, object Operand) Clause { return NewClause(subject, OpEq, object) }

// Neq compares subject and object for inequality.
func Neq(subject, object Operand) Clause { return NewClause(subject, OpNeq, object) }

// Gt asserts subject is greater than object.
func Gt(subject, object Operand) Clause { return NewClause(subject, OpGt, object) }

// Gte asserts subject is greater than or equal to object.
func Gte(subject, object Operand) Clause { return NewClause(subject, OpGte, object) }

// Lt asserts subject is less than object.
func Lt(subject, object Operand) Clause { return NewClause(subject, OpLt, object) }

// Lte asserts subject is less than or equal to object.
func Lte(subject, object Operand) Clause { return NewClause(subject, OpLte, object) }

// Like asserts subject matches the wildcard pattern.
func Like(subject Operand, pattern Pattern) Clause { return NewClause(subject, OpLike, pattern) }

// NotLike asserts subject does not match the wildcard pattern.
func NotLike(subject Operand, pattern Pattern) Clause {
	return NewClause(subject, OpNotLike, pattern)
}

// Between asserts subject falls inside the inclusive range.
func Between(subject Operand, r Range) Clause { return NewClause(subject, OpBetween, r) }

// NotBetween asserts subject falls outside the inclusive range.
func NotBetween(subject Operand, r Range) Clause { return NewClause(subject, OpNotBetween, r) }

// In asserts subject equals one of the listed values.
func In(subject Operand, list List) Clause { return NewClause(subject, OpIn, list) }

// NotIn asserts subject equals none of the listed values.
func NotIn(subject Operand, list List) Clause { return NewClause(subject, OpNotIn, list) }
