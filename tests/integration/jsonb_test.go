package integrationtest

import (
	"testing"
	"time"

	"github.com/jsonbq/jsonbq/lib/docstore"
	"github.com/jsonbq/jsonbq/lib/jsonbq"
)

func TestContainsInjectionSafety(t *testing.T) {
	ctx, store := openTestStore(t)

	hostile := `'; DROP TABLE products; -- "double" $1 ?`
	hostileID := mustInsert(ctx, t, store, "products", map[string]any{"title": hostile})
	mustInsert(ctx, t, store, "products", map[string]any{"title": "innocent"})

	q, col := productsQuery(t, store)

	h, err := jsonbq.Contains(q, col, map[string]any{"title": hostile})
	if err != nil {
		t.Fatal(err)
	}
	expectExactly(ctx, t, h, hostileID)

	// A partial string must not match; containment is byte-for-byte
	// equality on the field value.
	h, err = jsonbq.Contains(q, col, map[string]any{"title": "inno"})
	if err != nil {
		t.Fatal(err)
	}
	expectExactly(ctx, t, h)

	// The table is intact and unrelated rows survived.
	n, err := q.Count(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("product count = %d, want 2", n)
	}
}

func TestNumberWhereConcreteScenario(t *testing.T) {
	ctx, store := openTestStore(t)

	mustInsert(ctx, t, store, "products", map[string]any{"rank": 0})
	rank4 := mustInsert(ctx, t, store, "products", map[string]any{"rank": 4})
	rank5 := mustInsert(ctx, t, store, "products", map[string]any{"rank": 5})

	q, col := productsQuery(t, store)

	h, err := jsonbq.NumberWhere(q, col, "rank", "gte", 4)
	if err != nil {
		t.Fatal(err)
	}
	expectExactly(ctx, t, h, rank4, rank5)
}

func TestOperatorAliasEquivalence(t *testing.T) {
	ctx, store := openTestStore(t)

	mustInsert(ctx, t, store, "products", map[string]any{"rank": 2})
	rank4 := mustInsert(ctx, t, store, "products", map[string]any{"rank": 4})
	rank5 := mustInsert(ctx, t, store, "products", map[string]any{"rank": 5})

	q, col := productsQuery(t, store)

	for _, alias := range []string{">", "gt", "greater_than", "GT"} {
		h, err := jsonbq.NumberWhere(q, col, "rank", alias, 3)
		if err != nil {
			t.Fatalf("alias %q: %v", alias, err)
		}
		expectExactly(ctx, t, h, rank4, rank5)
	}
}

func TestRangeComposition(t *testing.T) {
	ctx, store := openTestStore(t)

	mustInsert(ctx, t, store, "products", map[string]any{"rank": 1})
	between := mustInsert(ctx, t, store, "products", map[string]any{"rank": 5})
	mustInsert(ctx, t, store, "products", map[string]any{"rank": 9})

	q, col := productsQuery(t, store)

	// Strict bounds, so the interval is open on both ends.
	h, err := jsonbq.Where(q, col, map[string]any{
		"rank": map[string]any{"gt": 1, "lt": 9},
	})
	if err != nil {
		t.Fatal(err)
	}
	expectExactly(ctx, t, h, between)
}

func TestTemporalComposition(t *testing.T) {
	ctx, store := openTestStore(t)

	now := time.Now().UTC()
	past := now.Add(-2 * time.Hour)
	future := now.Add(2 * time.Hour)

	pastID := mustInsert(ctx, t, store, "products", map[string]any{
		"made_at": past.Format(time.RFC3339Nano),
	})
	futureID := mustInsert(ctx, t, store, "products", map[string]any{
		"made_at": future.Format(time.RFC3339Nano),
	})

	q, col := productsQuery(t, store)

	h, err := jsonbq.TimeWhere(q, col, "made_at", "before", now)
	if err != nil {
		t.Fatal(err)
	}
	expectExactly(ctx, t, h, pastID)

	h, err = jsonbq.TimeWhere(q, col, "made_at", "after", now)
	if err != nil {
		t.Fatal(err)
	}
	expectExactly(ctx, t, h, futureID)

	h, err = jsonbq.Where(q, col, map[string]any{
		"made_at": map[string]any{"after": past.Add(-time.Minute), "before": now},
	})
	if err != nil {
		t.Fatal(err)
	}
	expectExactly(ctx, t, h, pastID)
}

func TestWhereMixedCriteriaOneCall(t *testing.T) {
	ctx, store := openTestStore(t)

	now := time.Now().UTC()

	match := mustInsert(ctx, t, store, "products", map[string]any{
		"title":   "sprocket",
		"rank":    5,
		"made_at": now.Add(-time.Hour).Format(time.RFC3339Nano),
	})
	mustInsert(ctx, t, store, "products", map[string]any{
		"title":   "sprocket",
		"rank":    50,
		"made_at": now.Add(-time.Hour).Format(time.RFC3339Nano),
	})
	mustInsert(ctx, t, store, "products", map[string]any{
		"title":   "widget",
		"rank":    5,
		"made_at": now.Add(-time.Hour).Format(time.RFC3339Nano),
	})

	q, col := productsQuery(t, store)

	h, err := jsonbq.Where(q, col, map[string]any{
		"title":   "sprocket",
		"rank":    map[string]any{"gte": 4, "lt": 10},
		"made_at": map[string]any{"before": now},
	})
	if err != nil {
		t.Fatal(err)
	}
	expectExactly(ctx, t, h, match)
}

func TestWhereEmptyCriteriaIdentity(t *testing.T) {
	ctx, store := openTestStore(t)

	a := mustInsert(ctx, t, store, "products", map[string]any{"title": "a"})
	b := mustInsert(ctx, t, store, "products", map[string]any{"title": "b"})

	q, col := productsQuery(t, store)

	h, err := jsonbq.Where(q, col, map[string]any{})
	if err != nil {
		t.Fatal(err)
	}
	expectExactly(ctx, t, h, a, b)
}

func TestInvalidOperatorAttachesNothing(t *testing.T) {
	ctx, store := openTestStore(t)

	mustInsert(ctx, t, store, "products", map[string]any{"rank": 1})
	mustInsert(ctx, t, store, "products", map[string]any{"rank": 2})

	q, col := productsQuery(t, store)

	h, err := jsonbq.NumberWhere(q, col, "rank", "around", 1)
	if !jsonbq.IsInvalidOperator(err) {
		t.Fatalf("expected InvalidOperatorError, got %v", err)
	}

	// The returned handle carries no partial predicate.
	n, err := h.(*docstore.Query).Count(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("count = %d, want 2", n)
	}
}

func TestDisambiguationUnderJoin(t *testing.T) {
	ctx, store := openTestStore(t)

	zeusProducer := mustInsert(ctx, t, store, "producers", map[string]any{"name": "zeus"})
	otherProducer := mustInsert(ctx, t, store, "producers", map[string]any{"name": "other"})

	chair := mustInsert(ctx, t, store, "products", map[string]any{"name": "chair"},
		docstore.WithColumn("producer_id", zeusProducer))
	zeusProduct := mustInsert(ctx, t, store, "products", map[string]any{"name": "zeus"},
		docstore.WithColumn("producer_id", otherProducer))

	producers, ok := store.Collection("producers")
	if !ok {
		t.Fatal("producers collection not registered")
	}

	q, productsCol := productsQuery(t, store)
	joined := q.Join(producers, "producer_id", "id")

	// Filtering on the producers document column must not be satisfied
	// by a matching value in the products column of the same name.
	h, err := jsonbq.Contains(joined, producers.DataRef(), map[string]any{"name": "zeus"})
	if err != nil {
		t.Fatal(err)
	}
	expectExactly(ctx, t, h, chair)

	// And the reverse: the products column only sees product documents.
	h, err = jsonbq.Contains(joined, productsCol, map[string]any{"name": "zeus"})
	if err != nil {
		t.Fatal(err)
	}
	expectExactly(ctx, t, h, zeusProduct)
}
