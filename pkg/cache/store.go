package cache

import "context"

// Store holds cache entries. An entry exists from its first Append on, even
// if that Append carried no records.
type Store interface {
	// Load returns the accumulated records for key and whether the entry exists.
	Load(ctx context.Context, key Key) ([]Record, bool, error)

	// Append adds records to the entry for key, creating it if needed.
	Append(ctx context.Context, key Key, records []Record) error
}

// MemoryStore is the default in-process Store. It belongs to a single
// operation and is not safe for concurrent use.
type MemoryStore struct {
	entries map[string][]Record
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string][]Record)}
}

// Load implements Store.
func (s *MemoryStore) Load(_ context.Context, key Key) ([]Record, bool, error) {
	records, ok := s.entries[key.String()]
	if !ok {
		return nil, false, nil
	}
	out := make([]Record, len(records))
	copy(out, records)
	return out, true, nil
}

// Append implements Store.
func (s *MemoryStore) Append(_ context.Context, key Key, records []Record) error {
	k := key.String()
	entry, ok := s.entries[k]
	if !ok {
		entry = make([]Record, 0, len(records))
	}
	s.entries[k] = append(entry, records...)
	return nil
}
