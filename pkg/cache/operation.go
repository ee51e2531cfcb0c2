package cache

import (
	"context"
	"fmt"

	"github.com/Sternrassler/jira-agile-client/pkg/logging"
	"github.com/rs/zerolog"
)

// Operation is the cache scope of one logical unit of work, such as one
// synchronization pass over a board. The orchestration layer creates it and
// passes it into every accessor call made within that unit of work. Once an
// entry for a kind exists, accessors return it instead of fetching again.
type Operation struct {
	id     string
	store  Store
	logger zerolog.Logger
}

// NewOperation creates an operation scope backed by a private MemoryStore.
func NewOperation(id string) *Operation {
	return NewOperationWithStore(id, NewMemoryStore())
}

// NewOperationWithStore creates an operation scope backed by store.
func NewOperationWithStore(id string, store Store) *Operation {
	if store == nil {
		panic("cache store cannot be nil")
	}
	return &Operation{
		id:     id,
		store:  store,
		logger: logging.NewLogger("operation-cache").With().Str("operation", id).Logger(),
	}
}

// ID returns the operation identifier.
func (o *Operation) ID() string {
	return o.id
}

// Lookup returns the records cached for kind and whether an entry exists.
func (o *Operation) Lookup(ctx context.Context, kind Kind) ([]Record, bool, error) {
	records, ok, err := o.store.Load(ctx, o.key(kind))
	if err != nil {
		return nil, false, fmt.Errorf("load %s: %w", kind, err)
	}

	if !ok {
		CacheMisses.WithLabelValues(string(kind)).Inc()
		o.logger.Debug().Str("kind", string(kind)).Msg("Cache miss")
		return nil, false, nil
	}

	CacheHits.WithLabelValues(string(kind)).Inc()
	o.logger.Debug().
		Str("kind", string(kind)).
		Int("records", len(records)).
		Msg("Cache hit")
	return records, true, nil
}

// Append adds one batch of records to the entry for kind.
func (o *Operation) Append(ctx context.Context, kind Kind, records []Record) error {
	if err := o.store.Append(ctx, o.key(kind), records); err != nil {
		return fmt.Errorf("append %s: %w", kind, err)
	}
	CacheRecords.WithLabelValues(string(kind)).Add(float64(len(records)))
	return nil
}

func (o *Operation) key(kind Kind) Key {
	return Key{OperationID: o.id, Kind: kind}
}
