package integrationtest

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"

	"github.com/jsonbq/jsonbq/lib/docstore"
	"github.com/jsonbq/jsonbq/lib/jsonbq"
)

var testRegistry = docstore.Registry{
	Collections: []docstore.Collection{
		{Name: "products", Table: "products", DataColumn: "data"},
		{Name: "producers", Table: "producers", DataColumn: "data"},
	},
}

// openTestStore connects to the Postgres instance named by the usual
// libpq environment variables, or skips the test when none is set. The
// sample tables are emptied before each test.
func openTestStore(t *testing.T) (context.Context, *docstore.Store) {
	t.Helper()

	if os.Getenv("PGHOST") == "" && os.Getenv("PGDATABASE") == "" {
		t.Skip("no test database; set PGHOST/PGUSER/PGDATABASE/PGPASSWORD to run")
	}

	ctx := context.Background()

	cfg, err := docstore.ConfigFromEnv(ctx)
	if err != nil {
		t.Fatal(err)
	}

	store, err := docstore.Open(ctx, cfg, testRegistry)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })

	for _, collection := range []string{"products", "producers"} {
		if err := store.Clear(ctx, collection); err != nil {
			t.Fatal(err)
		}
	}

	return ctx, store
}

func mustInsert(ctx context.Context, t *testing.T, store *docstore.Store, collection string, doc map[string]any, opts ...docstore.InsertOption) uuid.UUID {
	t.Helper()

	id, err := store.Insert(ctx, collection, doc, opts...)
	if err != nil {
		t.Fatal(err)
	}
	return id
}

func productsQuery(t *testing.T, store *docstore.Store) (*docstore.Query, jsonbq.ColumnRef) {
	t.Helper()

	q, err := store.Query("products")
	if err != nil {
		t.Fatal(err)
	}

	c, ok := store.Collection("products")
	if !ok {
		t.Fatal("products collection not registered")
	}

	return q, c.DataRef()
}

func allRecords(ctx context.Context, t *testing.T, h jsonbq.Handle) []docstore.Record {
	t.Helper()

	records, err := h.(*docstore.Query).All(ctx)
	if err != nil {
		t.Fatal(err)
	}
	return records
}

func recordIDs(records []docstore.Record) map[uuid.UUID]bool {
	ids := make(map[uuid.UUID]bool, len(records))
	for _, r := range records {
		ids[r.ID] = true
	}
	return ids
}

func expectExactly(ctx context.Context, t *testing.T, h jsonbq.Handle, want ...uuid.UUID) {
	t.Helper()

	records := allRecords(ctx, t, h)
	got := recordIDs(records)

	if len(records) != len(want) {
		t.Fatalf("got %d rows, want %d", len(records), len(want))
	}
	for _, id := range want {
		if !got[id] {
			t.Errorf("row %s missing from result set", id)
		}
	}
}
