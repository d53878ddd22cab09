package esfilter

import (
	"strings"

	"github.com/hugr-lab/esfilter/filter"
)

// illegalKeyChars are the characters that cannot appear in a query document
// key. The double hyphen is rejected separately.
const illegalKeyChars = "\"{};,[]:()'*>#~@&%?`"

// resolve turns a target into the key emitted in query fragments. The steps
// run in order:
//
//  1. Policy check on the target's field, before any path work.
//  2. Segment validation and canonicalization to a dotted key.
//  3. Field registration for the result's discovered-field list.
//  4. Field mapping, which rewrites the emitted key only.
func (r *conversion) resolve(t filter.Target) (string, error) {
	if len(t.Segments) == 0 {
		return "", &InvalidTargetError{Path: t.Segments}
	}

	field := t.Field()
	switch {
	case r.conv.policy.Denies(field):
		return "", &DeniedFieldError{Field: field}
	case !r.conv.policy.IsPermitted(field):
		return "", &NonallowedFieldError{Field: field}
	}

	key, err := canonicalKey(t)
	if err != nil {
		return "", err
	}

	if !r.seen[field] {
		r.seen[field] = true
		r.fields = append(r.fields, field)
	}

	if mapped, ok := r.conv.mapping[key]; ok {
		return mapped, nil
	}
	return key, nil
}

// canonicalKey joins the target's segments with dots, rejecting segments
// that cannot form a document key.
func canonicalKey(t filter.Target) (string, error) {
	var sb strings.Builder
	for i, seg := range t.Segments {
		s := seg.String()
		if !validKeySegment(s) {
			return "", &InvalidTargetError{Path: t.Segments}
		}
		if i > 0 {
			sb.WriteByte('.')
		}
		sb.WriteString(s)
	}
	return sb.String(), nil
}

func validKeySegment(s string) bool {
	if s == "" {
		return false
	}
	if strings.ContainsAny(s, illegalKeyChars) {
		return false
	}
	return !strings.Contains(s, "--")
}
