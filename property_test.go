package esfilter

import (
	"bytes"
	"encoding/json"
	"testing"

	"pgregory.net/rapid"

	"github.com/hugr-lab/esfilter/filter"
)

var comparisonOps = []filter.Operator{
	filter.OpEq, filter.OpNeq,
	filter.OpGt, filter.OpGte,
	filter.OpLt, filter.OpLte,
}

// drawLiteral draws one of the four literal kinds. Numbers stay in a finite
// range so every draw survives JSON encoding.
func drawLiteral(t *rapid.T, label string) filter.Literal {
	switch rapid.IntRange(0, 3).Draw(t, label+"Kind") {
	case 0:
		return filter.String(rapid.StringMatching(`[a-z]{1,8}`).Draw(t, label+"String"))
	case 1:
		return filter.Number(rapid.Float64Range(-1e6, 1e6).Draw(t, label+"Number"))
	case 2:
		return filter.Bool(rapid.Bool().Draw(t, label+"Bool"))
	default:
		return filter.Nil()
	}
}

// drawTarget draws a target of one to three segments whose keys are always
// valid document keys.
func drawTarget(t *rapid.T, label string) filter.Target {
	key := rapid.StringMatching(`[a-z][a-z0-9_]{0,7}`)
	segments := []filter.Segment{filter.Key(key.Draw(t, label+"Field"))}
	extra := rapid.IntRange(0, 2).Draw(t, label+"Depth")
	for i := 0; i < extra; i++ {
		if rapid.Bool().Draw(t, label+"IsIndex") {
			segments = append(segments, filter.Index(rapid.IntRange(0, 99).Draw(t, label+"Index")))
		} else {
			segments = append(segments, filter.Key(key.Draw(t, label+"Key")))
		}
	}
	return filter.NewTarget(segments...)
}

// drawClause draws a convertible clause covering every operand shape the
// compiler dispatches on.
func drawClause(t *rapid.T, label string) filter.Clause {
	switch rapid.IntRange(0, 5).Draw(t, label+"Shape") {
	case 0:
		op := rapid.SampledFrom(comparisonOps).Draw(t, label+"Op")
		return filter.NewClause(drawTarget(t, label), op, drawLiteral(t, label+"Object"))
	case 1:
		pattern := filter.NewPattern(rapid.StringMatching(`[a-z*_]{0,8}`).Draw(t, label+"Pattern"))
		if rapid.Bool().Draw(t, label+"Negated") {
			return filter.NotLike(drawTarget(t, label), pattern)
		}
		return filter.Like(drawTarget(t, label), pattern)
	case 2:
		r := filter.NewRange(drawLiteral(t, label+"Lower"), drawLiteral(t, label+"Upper"))
		if rapid.Bool().Draw(t, label+"Negated") {
			return filter.NotBetween(drawTarget(t, label), r)
		}
		return filter.Between(drawTarget(t, label), r)
	case 3:
		count := rapid.IntRange(0, 3).Draw(t, label+"ListLen")
		values := make([]filter.Literal, 0, count)
		for i := 0; i < count; i++ {
			values = append(values, drawLiteral(t, label+"ListValue"))
		}
		list := filter.NewList(values...)
		if rapid.Bool().Draw(t, label+"Negated") {
			return filter.NotIn(drawTarget(t, label), list)
		}
		return filter.In(drawTarget(t, label), list)
	case 4:
		op := rapid.SampledFrom(comparisonOps).Draw(t, label+"Op")
		return filter.NewClause(drawTarget(t, label+"Subject"), op, drawTarget(t, label+"Object"))
	default:
		op := rapid.SampledFrom(comparisonOps).Draw(t, label+"Op")
		return filter.NewClause(drawLiteral(t, label+"Subject"), op, drawLiteral(t, label+"Object"))
	}
}

// drawFilter draws a non-empty statement sequence, nesting sub-filters up to
// the given depth.
func drawFilter(t *rapid.T, label string, depth int) *filter.Filter {
	f := &filter.Filter{}
	count := rapid.IntRange(1, 4).Draw(t, label+"Statements")
	for i := 0; i < count; i++ {
		var cond filter.Condition
		if depth > 0 && rapid.Bool().Draw(t, label+"Nested") {
			cond = drawFilter(t, label+"Sub", depth-1)
		} else {
			cond = drawClause(t, label+"Clause")
		}
		if rapid.Bool().Draw(t, label+"Or") {
			f.Or(cond)
		} else {
			f.And(cond)
		}
	}
	return f
}

// convertedJSON compiles a tree and serializes the result. Serialized results
// are canonical, so equal bytes mean equal queries.
func convertedJSON(t rapid.TB, f *filter.Filter) []byte {
	t.Helper()
	result, err := Convert(f)
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	data, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("failed to marshal result: %v", err)
	}
	return data
}

// TestConvertRandomTrees checks that every generated tree converts and
// reports each referenced field exactly once.
func TestConvertRandomTrees(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		f := drawFilter(t, "f", 2)

		result, err := Convert(f)
		if err != nil {
			t.Fatalf("Convert failed: %v", err)
		}
		if result.Fields == nil {
			t.Fatal("expected a non-nil field list")
		}
		seen := make(map[string]bool, len(result.Fields))
		for _, field := range result.Fields {
			if seen[field] {
				t.Fatalf("field %q reported twice", field)
			}
			seen[field] = true
		}
		if _, err := json.Marshal(result); err != nil {
			t.Fatalf("result does not serialize: %v", err)
		}
	})
}

// TestJSONRoundTripConverts checks that a tree survives the JSON wire form
// with its compiled query unchanged.
func TestJSONRoundTripConverts(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		f := drawFilter(t, "f", 2)

		data, err := json.Marshal(f)
		if err != nil {
			t.Fatalf("Marshal failed: %v", err)
		}
		back, err := filter.Parse(data)
		if err != nil {
			t.Fatalf("Parse failed: %v", err)
		}

		if got, want := convertedJSON(t, back), convertedJSON(t, f); !bytes.Equal(got, want) {
			t.Fatalf("round-tripped tree compiled differently:\n got %s\nwant %s", got, want)
		}
	})
}

// TestBinaryRoundTripConverts checks that a tree survives the binary wire
// form with its compiled query unchanged.
func TestBinaryRoundTripConverts(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		f := drawFilter(t, "f", 2)

		data, err := filter.EncodeBinary(f)
		if err != nil {
			t.Fatalf("EncodeBinary failed: %v", err)
		}
		back, err := filter.DecodeBinary(data)
		if err != nil {
			t.Fatalf("DecodeBinary failed: %v", err)
		}

		if got, want := convertedJSON(t, back), convertedJSON(t, f); !bytes.Equal(got, want) {
			t.Fatalf("round-tripped tree compiled differently:\n got %s\nwant %s", got, want)
		}
	})
}

// TestGroupingShape checks the grouping law: a run of and-joined statements
// becomes one must group, every or boundary opens a new group, and multiple
// groups sit under a single should. A one-statement tree is the degenerate
// case: one must group holding one fragment.
func TestGroupingShape(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		count := rapid.IntRange(1, 6).Draw(t, "statements")

		f := filter.Where(filter.Eq(drawTarget(t, "first"), filter.Number(0)))
		groups := 1
		for i := 1; i < count; i++ {
			c := filter.Eq(drawTarget(t, "clause"), filter.Number(float64(i)))
			if rapid.Bool().Draw(t, "or") {
				f.Or(c)
				groups++
			} else {
				f.And(c)
			}
		}

		result, err := Convert(f)
		if err != nil {
			t.Fatalf("Convert failed: %v", err)
		}
		data, err := json.Marshal(result.Value)
		if err != nil {
			t.Fatalf("failed to marshal document: %v", err)
		}

		var doc struct {
			Filter struct {
				Bool map[string]json.RawMessage `json:"bool"`
			} `json:"filter"`
		}
		if err := json.Unmarshal(data, &doc); err != nil {
			t.Fatalf("failed to decode document: %v", err)
		}
		must, hasMust := doc.Filter.Bool["must"]
		should, hasShould := doc.Filter.Bool["should"]

		if groups == 1 {
			if !hasMust || hasShould {
				t.Fatalf("expected a single must group, got %s", data)
			}
			var fragments []json.RawMessage
			if err := json.Unmarshal(must, &fragments); err != nil {
				t.Fatalf("failed to decode must list: %v", err)
			}
			if len(fragments) != count {
				t.Fatalf("expected %d fragments, got %d", count, len(fragments))
			}
			return
		}

		if hasMust || !hasShould {
			t.Fatalf("expected %d should groups, got %s", groups, data)
		}
		var wrapped []struct {
			Bool struct {
				Must []json.RawMessage `json:"must"`
			} `json:"bool"`
		}
		if err := json.Unmarshal(should, &wrapped); err != nil {
			t.Fatalf("failed to decode should list: %v", err)
		}
		if len(wrapped) != groups {
			t.Fatalf("expected %d groups, got %d", groups, len(wrapped))
		}
		total := 0
		for _, group := range wrapped {
			if len(group.Bool.Must) == 0 {
				t.Fatal("a should group must hold at least one fragment")
			}
			total += len(group.Bool.Must)
		}
		if total != count {
			t.Fatalf("expected %d fragments across groups, got %d", count, total)
		}
	})
}

// TestFieldDiscoveryOrder checks that discovered fields come back in
// first-occurrence order, one entry per field.
func TestFieldDiscoveryOrder(t *testing.T) {
	pool := []string{"alpha", "beta", "gamma", "delta"}

	rapid.Check(t, func(t *rapid.T) {
		count := rapid.IntRange(1, 8).Draw(t, "clauses")

		var f *filter.Filter
		var want []string
		seen := make(map[string]bool, len(pool))
		for i := 0; i < count; i++ {
			name := rapid.SampledFrom(pool).Draw(t, "field")
			if !seen[name] {
				seen[name] = true
				want = append(want, name)
			}
			c := filter.Eq(filter.NewTarget(filter.Key(name)), filter.Bool(true))
			if f == nil {
				f = filter.Where(c)
			} else {
				f.And(c)
			}
		}

		result, err := Convert(f)
		if err != nil {
			t.Fatalf("Convert failed: %v", err)
		}
		if len(result.Fields) != len(want) {
			t.Fatalf("expected fields %v, got %v", want, result.Fields)
		}
		for i := range want {
			if result.Fields[i] != want[i] {
				t.Fatalf("expected fields %v, got %v", want, result.Fields)
			}
		}
	})
}

// TestSwappedComparisonEquivalence checks that a comparison written with the
// literal on the left compiles to the same query as its mirrored form.
func TestSwappedComparisonEquivalence(t *testing.T) {
	mirrored := map[filter.Operator]filter.Operator{
		filter.OpEq:  filter.OpEq,
		filter.OpNeq: filter.OpNeq,
		filter.OpGt:  filter.OpLt,
		filter.OpGte: filter.OpLte,
		filter.OpLt:  filter.OpGt,
		filter.OpLte: filter.OpGte,
	}

	rapid.Check(t, func(t *rapid.T) {
		op := rapid.SampledFrom(comparisonOps).Draw(t, "op")
		target := drawTarget(t, "target")
		lit := drawLiteral(t, "literal")

		swapped := filter.Where(filter.NewClause(lit, op, target))
		direct := filter.Where(filter.NewClause(target, mirrored[op], lit))
		if got, want := convertedJSON(t, swapped), convertedJSON(t, direct); !bytes.Equal(got, want) {
			t.Fatalf("swapped clause compiled differently:\n got %s\nwant %s", got, want)
		}
	})
}
