package docstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/jsonbq/jsonbq/lib/jsonbq"
	"github.com/jsonbq/jsonbq/lib/logging"
)

// Record is one collection row with its decoded document.
type Record struct {
	ID   uuid.UUID
	Data map[string]any
}

// Query is an immutable select over one collection. Every restriction
// returns a new Query; a handle once handed out is never modified.
type Query struct {
	store *Store
	base  Collection

	joinClauses  []string
	whereClauses []string
	args         []any
}

// Query starts an unrestricted query over a registered collection.
func (s *Store) Query(collection string) (*Query, error) {
	c, ok := s.registry.lookup(collection)
	if !ok {
		return nil, fmt.Errorf("unknown collection %q", collection)
	}
	return &Query{store: s, base: c}, nil
}

func (q *Query) clone() *Query {
	out := &Query{store: q.store, base: q.base}
	out.joinClauses = append(out.joinClauses, q.joinClauses...)
	out.whereClauses = append(out.whereClauses, q.whereClauses...)
	out.args = append(out.args, q.args...)
	return out
}

// Where implements jsonbq.Handle. The expression's placeholders must be
// numbered from BoundArgs()+1.
func (q *Query) Where(expr string, args ...any) jsonbq.Handle {
	out := q.clone()
	out.whereClauses = append(out.whereClauses, expr)
	out.args = append(out.args, args...)
	return out
}

// BoundArgs implements jsonbq.Handle.
func (q *Query) BoundArgs() int {
	return len(q.args)
}

// Join returns a query additionally inner-joined to another registered
// collection on base.fromKey = other.toKey.
func (q *Query) Join(other Collection, fromKey, toKey string) *Query {
	out := q.clone()
	out.joinClauses = append(out.joinClauses, fmt.Sprintf(
		"INNER JOIN %s ON (%s.%s = %s.%s)",
		pq.QuoteIdentifier(other.Table),
		pq.QuoteIdentifier(q.base.Table), pq.QuoteIdentifier(fromKey),
		pq.QuoteIdentifier(other.Table), pq.QuoteIdentifier(toKey),
	))
	return out
}

func (q *Query) buildQuery(selectClause string) string {
	query := `SELECT ` + selectClause
	query += "\nFROM " + pq.QuoteIdentifier(q.base.Table)

	for _, joinClause := range q.joinClauses {
		query += "\n" + joinClause
	}

	query += "\nWHERE TRUE"

	for _, whereClause := range q.whereClauses {
		query += "\nAND   (" + whereClause + ")"
	}

	return query
}

// All materializes the query's rows.
func (q *Query) All(ctx context.Context) ([]Record, error) {
	base := pq.QuoteIdentifier(q.base.Table)
	stmt := q.buildQuery(fmt.Sprintf("DISTINCT %s.id, %s.%s", base, base, pq.QuoteIdentifier(q.base.DataColumn)))
	stmt += "\nORDER BY " + base + ".id ASC"

	logging.FromContext(ctx).Debug("executing query",
		zap.String("collection", q.base.Name),
		zap.String("sql", stmt),
		zap.Int("num_args", len(q.args)),
	)

	rows, err := q.store.db.QueryContext(ctx, stmt, q.args...)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", q.base.Name, err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var id uuid.UUID
		var raw []byte

		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("scanning %s row: %w", q.base.Name, err)
		}

		record := Record{ID: id}
		if err := json.Unmarshal(raw, &record.Data); err != nil {
			return nil, fmt.Errorf("decoding %s document: %w", q.base.Name, err)
		}

		records = append(records, record)
	}

	return records, rows.Err()
}

// Count materializes only the number of matching rows.
func (q *Query) Count(ctx context.Context) (int, error) {
	stmt := q.buildQuery(fmt.Sprintf("COUNT(DISTINCT %s.id)", pq.QuoteIdentifier(q.base.Table)))

	logging.FromContext(ctx).Debug("executing count",
		zap.String("collection", q.base.Name),
		zap.String("sql", stmt),
		zap.Int("num_args", len(q.args)),
	)

	var n int
	if err := q.store.db.QueryRowContext(ctx, stmt, q.args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting %s: %w", q.base.Name, err)
	}

	return n, nil
}
