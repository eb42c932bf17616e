package jsonbq

import (
	"fmt"
	"strings"

	canonicaljson "github.com/gibson042/canonicaljson-go"
	"github.com/lib/pq"

	"github.com/jsonbq/jsonbq/lib/criteria"
	"github.com/jsonbq/jsonbq/lib/sqlbind"
)

// ColumnRef names one document-typed column on a specific table. The
// table must be the one the column's collection declares, not whatever
// table happens to lead the query; once a query joins a second table
// carrying a column of the same name, only a table-qualified reference
// stays unambiguous.
type ColumnRef struct {
	Table  string
	Column string
}

// Qualified renders the reference as "table"."column".
func (c ColumnRef) Qualified() string {
	return pq.QuoteIdentifier(c.Table) + "." + pq.QuoteIdentifier(c.Column)
}

// Compiled is one SQL boolean expression plus the values it binds.
// Fragments are built fresh per compile call and consumed immediately.
type Compiled struct {
	SQL  string
	Args []any
}

var comparatorSQL = map[criteria.Comparator]string{
	criteria.Gt:     ">",
	criteria.Gte:    ">=",
	criteria.Lt:     "<",
	criteria.Lte:    "<=",
	criteria.Before: "<",
	criteria.After:  ">",
}

// compileOrder fixes the emission order of comparators so a given
// criteria map always compiles to the same SQL text.
var compileOrder = []criteria.Comparator{
	criteria.Gt, criteria.Gte, criteria.Lt, criteria.Lte,
	criteria.Before, criteria.After,
}

// Compile emits the predicate fragment for a single classified field
// criterion. Placeholder numbering starts at offset+1.
func Compile(col ColumnRef, field string, crit criteria.Criterion, offset int) (Compiled, error) {
	switch c := crit.(type) {
	case criteria.Equality:
		return compileContains(col, map[string]any{field: c.Value}, offset)
	case criteria.NumericRange:
		return compileRange(col, field, c.Bounds, "numeric", offset)
	case criteria.TemporalRange:
		return compileRange(col, field, c.Bounds, "timestamptz", offset)
	default:
		// The criterion interface is closed; a fourth variant means the
		// classifier contract was broken.
		panic(fmt.Sprintf("unhandled criterion variant %T", crit))
	}
}

// compileContains emits one containment test asserting the document
// column contains every field/value pair in fields. The whole object is
// serialized canonically and carried as a single bound parameter; no
// caller-supplied byte ever appears in the SQL text.
func compileContains(col ColumnRef, fields map[string]any, offset int) (Compiled, error) {
	doc, err := canonicaljson.Marshal(fields)
	if err != nil {
		return Compiled{}, fmt.Errorf("serializing containment value: %w", err)
	}

	b := sqlbind.New(offset)
	expr := fmt.Sprintf("%s @> %s::jsonb", col.Qualified(), b.Bind(string(doc)))

	return Compiled{SQL: expr, Args: b.Args()}, nil
}

// compileRange emits one comparison per bound, AND-joined. The document
// field is extracted as text and cast before comparing; both the field
// name and every bound travel as parameters. The explicit ::text on the
// field placeholder keeps the ->> operator resolution unambiguous.
func compileRange(col ColumnRef, field string, bounds map[criteria.Comparator]any, cast string, offset int) (Compiled, error) {
	b := sqlbind.New(offset)
	extracted := fmt.Sprintf("(%s ->> %s::text)::%s", col.Qualified(), b.Bind(field), cast)

	var exprs []string
	for _, c := range compileOrder {
		bound, ok := bounds[c]
		if !ok {
			continue
		}
		exprs = append(exprs, fmt.Sprintf("%s %s %s", extracted, comparatorSQL[c], b.Bind(bound)))
	}

	expr := strings.Join(exprs, " AND ")
	if len(exprs) > 1 {
		expr = "(" + expr + ")"
	}

	return Compiled{SQL: expr, Args: b.Args()}, nil
}
