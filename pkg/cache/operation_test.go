package cache

import (
	"context"
	"errors"
	"testing"
)

func TestOperation_LookupMissThenHit(t *testing.T) {
	ctx := context.Background()
	op := NewOperation("sync-42")

	if _, ok, err := op.Lookup(ctx, KindProjects); ok || err != nil {
		t.Fatalf("Lookup on fresh operation = ok %v, err %v; want miss", ok, err)
	}

	if err := op.Append(ctx, KindProjects, []Record{{"key": "P1"}, {"key": "P2"}}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if err := op.Append(ctx, KindProjects, []Record{{"key": "P3"}}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	records, ok, err := op.Lookup(ctx, KindProjects)
	if err != nil || !ok {
		t.Fatalf("Lookup = ok %v, err %v; want hit", ok, err)
	}

	want := []string{"P1", "P2", "P3"}
	if len(records) != len(want) {
		t.Fatalf("got %d records, want %d", len(records), len(want))
	}
	for i, key := range want {
		if records[i]["key"] != key {
			t.Errorf("records[%d] = %v, want %s", i, records[i]["key"], key)
		}
	}
}

func TestOperation_EmptyEntryExists(t *testing.T) {
	ctx := context.Background()
	op := NewOperation("sync-42")

	if err := op.Append(ctx, KindSprints, nil); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	records, ok, err := op.Lookup(ctx, KindSprints)
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if !ok {
		t.Error("empty entry should still exist")
	}
	if len(records) != 0 {
		t.Errorf("got %d records, want 0", len(records))
	}
}

func TestOperation_KindsAreIndependent(t *testing.T) {
	ctx := context.Background()
	op := NewOperation("sync-42")

	if err := op.Append(ctx, KindIssues, []Record{{"key": "I-1"}}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	for _, kind := range []Kind{KindBoards, KindProjects, KindSprints} {
		if _, ok, _ := op.Lookup(ctx, kind); ok {
			t.Errorf("Lookup(%s) should miss", kind)
		}
	}
}

func TestOperation_ScopesAreIndependent(t *testing.T) {
	ctx := context.Background()
	first := NewOperation("run-1")
	second := NewOperation("run-2")

	if err := first.Append(ctx, KindBoards, []Record{{"id": 1}}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	if _, ok, _ := second.Lookup(ctx, KindBoards); ok {
		t.Error("a new operation must not see another operation's entries")
	}
}

func TestOperation_LookupReturnsCopy(t *testing.T) {
	ctx := context.Background()
	op := NewOperation("sync-42")
	_ = op.Append(ctx, KindBoards, []Record{{"id": 1}})

	records, _, _ := op.Lookup(ctx, KindBoards)
	records[0] = Record{"id": 999}
	_ = append(records, Record{"id": 2})

	again, _, _ := op.Lookup(ctx, KindBoards)
	if len(again) != 1 || again[0]["id"] != 1 {
		t.Errorf("cached entry was modified through a returned slice: %v", again)
	}
}

type failingStore struct{ err error }

func (s failingStore) Load(context.Context, Key) ([]Record, bool, error) { return nil, false, s.err }
func (s failingStore) Append(context.Context, Key, []Record) error      { return s.err }

func TestOperation_StoreErrors(t *testing.T) {
	ctx := context.Background()
	storeErr := errors.New("store down")
	op := NewOperationWithStore("sync-42", failingStore{err: storeErr})

	if _, _, err := op.Lookup(ctx, KindIssues); !errors.Is(err, storeErr) {
		t.Errorf("Lookup error = %v, want wrapped store error", err)
	}
	if err := op.Append(ctx, KindIssues, nil); !errors.Is(err, storeErr) {
		t.Errorf("Append error = %v, want wrapped store error", err)
	}
}

func TestNewOperationWithStore_Panic(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("NewOperationWithStore should panic with nil store")
		}
	}()
	NewOperationWithStore("sync-42", nil)
}

func TestOperation_ID(t *testing.T) {
	if got := NewOperation("sync-42").ID(); got != "sync-42" {
		t.Errorf("ID() = %q, want sync-42", got)
	}
}
