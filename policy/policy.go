// Package policy defines field governance for filter conversion: which
// document fields a filter may reference, and which it must.
package policy

import (
	"fmt"
	"strings"
)

// ConfigError indicates an invalid policy configuration.
type ConfigError struct {
	reason string
}

func (e *ConfigError) Error() string {
	return "policy: " + e.reason
}

// Settings configures a Policy. Field entries may be bare field names
// ("foo") or pointer-form paths ("/foo/bar"); either way the entry governs
// the field named by the first path segment.
type Settings struct {
	// Allow lists the only fields a filter may reference.
	// OPTIONAL: empty means every field not denied is allowed.
	// Mutually exclusive with Deny.
	Allow []string

	// Deny lists fields a filter must not reference.
	// OPTIONAL: mutually exclusive with Allow.
	Deny []string

	// Require lists fields every converted filter must reference at least
	// once. Order is preserved.
	// OPTIONAL: may be combined with either Allow or Deny.
	Require []string
}

// Policy is a compiled field governance policy. It is immutable and safe
// for concurrent use; build one per field schema and reuse it across
// conversions.
type Policy struct {
	allow   map[string]struct{}
	deny    map[string]struct{}
	require []string
}

var unrestricted = &Policy{}

// Unrestricted returns the shared policy that permits every field and
// requires none.
func Unrestricted() *Policy {
	return unrestricted
}

// New validates settings and compiles them into a Policy.
//
// Error conditions:
//   - Allow and Deny both non-empty
//   - An entry that names no field, such as "" or "/"
func New(s Settings) (*Policy, error) {
	if len(s.Allow) > 0 && len(s.Deny) > 0 {
		return nil, &ConfigError{reason: "allow and deny lists are mutually exclusive"}
	}

	p := &Policy{}
	var err error
	if p.allow, err = fieldSet(s.Allow); err != nil {
		return nil, err
	}
	if p.deny, err = fieldSet(s.Deny); err != nil {
		return nil, err
	}
	if p.require, err = fieldList(s.Require); err != nil {
		return nil, err
	}
	return p, nil
}

// IsPermitted reports whether a filter may reference the field. A field is
// permitted unless it is denied, or an allow list is active and omits it.
func (p *Policy) IsPermitted(field string) bool {
	if p.Denies(field) {
		return false
	}
	if len(p.allow) > 0 {
		_, ok := p.allow[field]
		return ok
	}
	return true
}

// Denies reports whether the field is on the deny list. A false result does
// not imply the field is permitted; an active allow list may still omit it.
func (p *Policy) Denies(field string) bool {
	_, ok := p.deny[field]
	return ok
}

// RequiredFields returns the required fields in their configured order. The
// returned slice is a copy; callers may modify it.
func (p *Policy) RequiredFields() []string {
	if len(p.require) == 0 {
		return nil
	}
	fields := make([]string, len(p.require))
	copy(fields, p.require)
	return fields
}

// fieldOf normalizes a settings entry to the field it governs: the leading
// "/" and everything past the first path segment are dropped.
func fieldOf(entry string) (string, error) {
	field := strings.TrimPrefix(entry, "/")
	if i := strings.IndexByte(field, '/'); i >= 0 {
		field = field[:i]
	}
	if field == "" {
		return "", &ConfigError{reason: fmt.Sprintf("entry %q names no field", entry)}
	}
	return field, nil
}

func fieldSet(entries []string) (map[string]struct{}, error) {
	if len(entries) == 0 {
		return nil, nil
	}
	set := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		field, err := fieldOf(entry)
		if err != nil {
			return nil, err
		}
		set[field] = struct{}{}
	}
	return set, nil
}

// fieldList normalizes entries preserving order, dropping duplicates.
func fieldList(entries []string) ([]string, error) {
	if len(entries) == 0 {
		return nil, nil
	}
	seen := make(map[string]struct{}, len(entries))
	fields := make([]string, 0, len(entries))
	for _, entry := range entries {
		field, err := fieldOf(entry)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[field]; ok {
			continue
		}
		seen[field] = struct{}{}
		fields = append(fields, field)
	}
	return fields, nil
}
