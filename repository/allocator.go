package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"go.uber.org/zap"

	"github.com/jacentio/justine/store"
)

// IDAllocator derives the next sequential id within a scope (a customer name).
//
// DynamoDB has no auto-increment, so the allocator reads the highest id in the
// scope through a secondary index sorted by id and adds one. The read and the
// following write are not atomic; see Config.StrictIDAllocation.
type IDAllocator struct {
	client      store.Client
	table       store.Table
	entity      Entity
	strict      bool
	maxAttempts int
	logger      *zap.Logger
}

// NewIDAllocator creates an allocator for the ids of table.
func NewIDAllocator(client store.Client, table store.Table, entity Entity, cfg Config, logger *zap.Logger) *IDAllocator {
	cfg.validate()
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IDAllocator{
		client:      client,
		table:       table,
		entity:      entity,
		strict:      cfg.StrictIDAllocation,
		maxAttempts: cfg.MaxAllocationAttempts,
		logger:      logger,
	}
}

// NextID returns the latest id in scope plus one, or 1 when the scope is empty.
func (a *IDAllocator) NextID(ctx context.Context, indexName, scope string) (int, error) {
	idx, ok := a.table.Index(indexName)
	if !ok {
		return 0, &Error{Entity: a.entity, Op: "NextID", Scope: scope,
			Err: fmt.Errorf("%w: %w: %s", ErrStoreOperation, store.ErrUnknownIndex, indexName)}
	}

	items, err := a.client.QueryByIndex(ctx, a.table, store.IndexQuery{
		IndexName:  indexName,
		Attribute:  idx.PartitionKey,
		Value:      scope,
		Descending: true,
		Limit:      1,
	})
	if err != nil {
		return 0, &Error{Entity: a.entity, Op: "NextID", Scope: scope,
			Err: storeCause(err)}
	}
	if len(items) == 0 {
		return 1, nil
	}

	var latest int
	if err := attributevalue.Unmarshal(items[0][a.table.PartitionKey], &latest); err != nil {
		return 0, &Error{Entity: a.entity, Op: "NextID", Scope: scope,
			Err: fmt.Errorf("%w: decode latest id: %w", ErrStoreOperation, err)}
	}
	return latest + 1, nil
}

// Insert allocates an id in scope, builds the item for it and writes it.
// In strict mode the write is conditional and a taken id triggers a new
// allocation, up to the configured number of attempts.
func (a *IDAllocator) Insert(ctx context.Context, indexName, scope string, build func(id int) (store.Item, error)) (int, error) {
	attempts := 1
	if a.strict {
		attempts = a.maxAttempts
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		id, err := a.NextID(ctx, indexName, scope)
		if err != nil {
			return 0, err
		}
		item, err := build(id)
		if err != nil {
			return 0, &Error{Entity: a.entity, Op: "Add", ID: id, Scope: scope,
				Err: storeCause(err)}
		}

		if !a.strict {
			if err := a.client.Put(ctx, a.table, item); err != nil {
				return 0, &Error{Entity: a.entity, Op: "Add", ID: id, Scope: scope,
					Err: storeCause(err)}
			}
			return id, nil
		}

		err = a.client.PutIfAbsent(ctx, a.table, item)
		if err == nil {
			return id, nil
		}
		if !errors.Is(err, store.ErrAlreadyExists) {
			return 0, &Error{Entity: a.entity, Op: "Add", ID: id, Scope: scope,
				Err: storeCause(err)}
		}
		a.logger.Warn("id taken by a concurrent writer, reallocating",
			zap.String("entity", string(a.entity)),
			zap.String("customer", scope),
			zap.Int("id", id),
			zap.Int("attempt", attempt),
		)
	}

	return 0, &Error{Entity: a.entity, Op: "Add", Scope: scope, Err: ErrIDConflict}
}
