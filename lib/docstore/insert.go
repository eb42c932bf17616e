package docstore

import (
	"context"
	"fmt"
	"sort"
	"strings"

	canonicaljson "github.com/gibson042/canonicaljson-go"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/jsonbq/jsonbq/lib/sqlbind"
)

type insertOptions struct {
	columns map[string]any
}

// InsertOption adjusts a single insert.
type InsertOption func(*insertOptions)

// WithColumn sets an extra relational column on the inserted row, such
// as a join key.
func WithColumn(name string, value any) InsertOption {
	return func(opts *insertOptions) {
		if opts.columns == nil {
			opts.columns = make(map[string]any)
		}
		opts.columns[name] = value
	}
}

// Insert stores one document in a collection and returns its id.
func (s *Store) Insert(ctx context.Context, collection string, doc map[string]any, opts ...InsertOption) (uuid.UUID, error) {
	c, ok := s.registry.lookup(collection)
	if !ok {
		return uuid.Nil, fmt.Errorf("unknown collection %q", collection)
	}

	serialized, err := canonicaljson.Marshal(doc)
	if err != nil {
		return uuid.Nil, fmt.Errorf("serializing document: %w", err)
	}

	options := insertOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	id := uuid.New()

	b := sqlbind.New(0)
	columns := []string{pq.QuoteIdentifier("id"), pq.QuoteIdentifier(c.DataColumn)}
	values := []string{b.Bind(id), b.Bind(string(serialized)) + "::jsonb"}

	extra := make([]string, 0, len(options.columns))
	for name := range options.columns {
		extra = append(extra, name)
	}
	sort.Strings(extra)

	for _, name := range extra {
		columns = append(columns, pq.QuoteIdentifier(name))
		values = append(values, b.Bind(options.columns[name]))
	}

	stmt := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		pq.QuoteIdentifier(c.Table),
		strings.Join(columns, ", "),
		strings.Join(values, ", "),
	)

	if _, err := s.db.ExecContext(ctx, stmt, b.Args()...); err != nil {
		return uuid.Nil, fmt.Errorf("inserting into %s: %w", collection, err)
	}

	return id, nil
}
