// Package jsonbq builds parameterized SQL predicates over JSONB document
// columns: containment for plain values, numeric and temporal range
// comparisons for operator maps. Every operation takes an immutable
// query handle and returns a new handle with the predicate AND-ed on.
package jsonbq

import (
	"sort"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/jsonbq/jsonbq/lib/criteria"
)

// Contains restricts h to rows whose document column contains every
// field/value pair in fields, as one combined containment test. An empty
// map is the identity.
func Contains(h Handle, col ColumnRef, fields map[string]any) (Handle, error) {
	if len(fields) == 0 {
		return h, nil
	}

	frag, err := compileContains(col, fields, h.BoundArgs())
	if err != nil {
		return h, err
	}

	return h.Where(frag.SQL, frag.Args...), nil
}

// ComparisonWhere restricts h by one comparison on one document field.
// The operator token is resolved against the numeric alias table first
// and the temporal table second; a token in neither family returns an
// InvalidOperatorError and h unrestricted.
func ComparisonWhere(h Handle, col ColumnRef, field, operator string, bound any) (Handle, error) {
	var crit criteria.Criterion
	if c, ok := criteria.NumericComparator(operator); ok {
		crit = criteria.NumericRange{Bounds: map[criteria.Comparator]any{c: bound}}
	} else if c, ok := criteria.TemporalComparator(operator); ok {
		crit = criteria.TemporalRange{Bounds: map[criteria.Comparator]any{c: bound}}
	} else {
		return h, &InvalidOperatorError{Token: operator}
	}

	frag, err := Compile(col, field, crit, h.BoundArgs())
	if err != nil {
		return h, err
	}

	return h.Where(frag.SQL, frag.Args...), nil
}

// NumberWhere restricts h by a numeric comparison on one document field.
// The operator accepts any alias spelling (">", "gte", "less_than", ...);
// tokens outside the numeric family, temporal ones included, return an
// InvalidOperatorError.
func NumberWhere(h Handle, col ColumnRef, field, operator string, bound any) (Handle, error) {
	c, ok := criteria.NumericComparator(operator)
	if !ok {
		return h, &InvalidOperatorError{Token: operator}
	}

	crit := criteria.NumericRange{Bounds: map[criteria.Comparator]any{c: bound}}

	frag, err := Compile(col, field, crit, h.BoundArgs())
	if err != nil {
		return h, err
	}

	return h.Where(frag.SQL, frag.Args...), nil
}

// TimeWhere restricts h by a temporal comparison ("before" or "after")
// on one document field. Numeric tokens return an InvalidOperatorError.
func TimeWhere(h Handle, col ColumnRef, field, operator string, bound time.Time) (Handle, error) {
	c, ok := criteria.TemporalComparator(operator)
	if !ok {
		return h, &InvalidOperatorError{Token: operator}
	}

	crit := criteria.TemporalRange{Bounds: map[criteria.Comparator]any{c: bound}}

	frag, err := Compile(col, field, crit, h.BoundArgs())
	if err != nil {
		return h, err
	}

	return h.Where(frag.SQL, frag.Args...), nil
}

// Where is the general entry point. Each field's criterion is classified;
// all plain-equality fields collapse into a single containment test, each
// range field compiles to its own fragment, and every fragment is AND-ed
// onto h in deterministic order. An empty map is the identity. On any
// error the original handle is returned with no predicate attached.
func Where(h Handle, col ColumnRef, fields map[string]any) (Handle, error) {
	if len(fields) == 0 {
		return h, nil
	}

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	equalities := make(map[string]any)
	type rangeField struct {
		name string
		crit criteria.Criterion
	}
	var ranges []rangeField

	for _, name := range names {
		switch c := criteria.Classify(fields[name]).(type) {
		case criteria.Equality:
			equalities[name] = c.Value
		default:
			ranges = append(ranges, rangeField{name: name, crit: c})
		}
	}

	var frags []Compiled
	var errs error
	offset := h.BoundArgs()

	if len(equalities) > 0 {
		frag, err := compileContains(col, equalities, offset)
		if err != nil {
			errs = multierror.Append(errs, err)
		} else {
			offset += len(frag.Args)
			frags = append(frags, frag)
		}
	}

	for _, rf := range ranges {
		frag, err := Compile(col, rf.name, rf.crit, offset)
		if err != nil {
			errs = multierror.Append(errs, err)
			continue
		}
		offset += len(frag.Args)
		frags = append(frags, frag)
	}

	if errs != nil {
		return h, errs
	}

	out := h
	for _, frag := range frags {
		out = out.Where(frag.SQL, frag.Args...)
	}
	return out, nil
}
