package esfilter

import (
	"log/slog"

	"github.com/hugr-lab/esfilter/policy"
)

// Options contains configuration for a Converter.
type Options struct {
	// Policy governs which fields a filter may and must reference.
	// OPTIONAL: If nil, every field is permitted and none is required.
	Policy *policy.Policy

	// FieldMapping rewrites canonical field keys in the emitted query
	// document. Keys are canonical dotted paths (e.g. "foo.bar"); values
	// replace them verbatim in term, terms, range, regexp, exists and
	// script fragments. Policy checks and discovered fields always use the
	// unmapped names.
	// OPTIONAL: If nil, canonical keys are emitted unchanged.
	FieldMapping map[string]string

	// Logger for conversion tracing at Debug level.
	// OPTIONAL: Uses slog.Default() if nil.
	Logger *slog.Logger
}
