package esfilter

import (
	"fmt"

	"github.com/hugr-lab/esfilter/filter"
)

// ConvertError indicates a filter that is structurally unconvertible: an
// empty or nil tree, an unknown operator, a clause whose operand shapes do
// not fit its operator, or a script-form comparison with an operator that
// has no native comparison symbol.
type ConvertError struct {
	reason string
}

func (e *ConvertError) Error() string {
	return "esfilter: cannot convert filter: " + e.reason
}

func newConvertError(format string, args ...any) *ConvertError {
	return &ConvertError{reason: fmt.Sprintf(format, args...)}
}

// InvalidTargetError indicates a target whose path cannot form a query
// document key.
type InvalidTargetError struct {
	// Path is the offending target's path.
	Path []filter.Segment
}

func (e *InvalidTargetError) Error() string {
	return fmt.Sprintf("esfilter: invalid target %q", filter.NewTarget(e.Path...).Pointer())
}

// DeniedFieldError indicates a filter referencing a field on the policy
// deny list.
type DeniedFieldError struct {
	// Field is the denied field.
	Field string
}

func (e *DeniedFieldError) Error() string {
	return fmt.Sprintf("esfilter: field %q is denied by policy", e.Field)
}

// NonallowedFieldError indicates a filter referencing a field outside the
// policy allow list.
type NonallowedFieldError struct {
	// Field is the non-allowed field.
	Field string
}

func (e *NonallowedFieldError) Error() string {
	return fmt.Sprintf("esfilter: field %q is not on the policy allow list", e.Field)
}

// RequiredFieldError indicates a filter that never references a field the
// policy requires.
type RequiredFieldError struct {
	// Field is the missing required field.
	Field string
}

func (e *RequiredFieldError) Error() string {
	return fmt.Sprintf("esfilter: filter does not reference required field %q", e.Field)
}
