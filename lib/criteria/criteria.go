// Package criteria classifies the per-field criteria values accepted by
// the query builder: a plain value meaning document containment, a map of
// numeric comparators, or a map of temporal comparators.
package criteria

import (
	"reflect"
	"strings"
)

// Comparator is the canonical form of a range operator token.
type Comparator string

const (
	Gt  Comparator = "gt"
	Gte Comparator = "gte"
	Lt  Comparator = "lt"
	Lte Comparator = "lte"

	Before Comparator = "before"
	After  Comparator = "after"
)

// numericAliases maps every accepted spelling of a numeric comparator to
// its canonical form. Adding a spelling is a one-line edit here.
var numericAliases = map[string]Comparator{
	"gt":           Gt,
	">":            Gt,
	"greater_than": Gt,

	"gte":                      Gte,
	">=":                       Gte,
	"greater_than_or_equal_to": Gte,

	"lt":        Lt,
	"<":         Lt,
	"less_than": Lt,

	"lte":                   Lte,
	"<=":                    Lte,
	"less_than_or_equal_to": Lte,
}

var temporalAliases = map[string]Comparator{
	"before": Before,
	"after":  After,
}

func normalize(token string) string {
	return strings.ToLower(strings.TrimSpace(token))
}

// NumericComparator resolves one token against the numeric alias table.
func NumericComparator(token string) (Comparator, bool) {
	c, ok := numericAliases[normalize(token)]
	return c, ok
}

// TemporalComparator resolves one token against the temporal alias table.
func TemporalComparator(token string) (Comparator, bool) {
	c, ok := temporalAliases[normalize(token)]
	return c, ok
}

// Criterion is one classified field criterion. Exactly three variants
// exist; the interface is closed to this package.
type Criterion interface{ isCriterion() }

// Equality matches documents that contain the field with exactly this
// value.
type Equality struct{ Value any }

// NumericRange bounds a numeric document field. Keys are canonical.
type NumericRange struct{ Bounds map[Comparator]any }

// TemporalRange bounds a timestamp document field. Keys are canonical.
type TemporalRange struct{ Bounds map[Comparator]any }

func (Equality) isCriterion()      {}
func (NumericRange) isCriterion()  {}
func (TemporalRange) isCriterion() {}

// Classify decides which shape of criterion was supplied. It is total:
// every value, nil included, maps to exactly one variant and no input
// panics.
//
// A non-empty map whose keys all name numeric comparators classifies as
// NumericRange; all temporal comparators, TemporalRange. Anything else,
// including empty maps and maps mixing unrelated keys, degrades to an
// Equality test against the literal value. The degradation is deliberate
// and load-bearing: a map with a misspelled operator key is matched as a
// document value, not rejected.
func Classify(v any) Criterion {
	m, ok := stringKeyedMap(v)
	if !ok || len(m) == 0 {
		return Equality{Value: v}
	}

	if bounds, ok := resolveAll(m, numericAliases); ok {
		return NumericRange{Bounds: bounds}
	}
	if bounds, ok := resolveAll(m, temporalAliases); ok {
		return TemporalRange{Bounds: bounds}
	}

	return Equality{Value: v}
}

func resolveAll(m map[string]any, aliases map[string]Comparator) (map[Comparator]any, bool) {
	bounds := make(map[Comparator]any, len(m))
	for token, bound := range m {
		c, ok := aliases[normalize(token)]
		if !ok {
			return nil, false
		}
		bounds[c] = bound
	}
	return bounds, true
}

// stringKeyedMap coerces any map with string-kinded keys into a
// map[string]any, so callers may pass map[string]int and the like.
func stringKeyedMap(v any) (map[string]any, bool) {
	if m, ok := v.(map[string]any); ok {
		return m, true
	}

	rv := reflect.ValueOf(v)
	if !rv.IsValid() || rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}

	m := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		m[iter.Key().String()] = iter.Value().Interface()
	}
	return m, true
}
