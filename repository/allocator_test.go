package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jacentio/justine/model"
	"github.com/jacentio/justine/store"
	"github.com/jacentio/justine/store/memstore"
)

func newAllocator(s store.Client, cfg Config) *IDAllocator {
	return NewIDAllocator(s, BasketsTable(cfg), EntityBasket, cfg, nil)
}

func TestNextID_EmptyScope(t *testing.T) {
	s := memstore.New()
	a := newAllocator(s, DefaultConfig())

	id, err := a.NextID(context.Background(), "CustomerName-index", "Nobody")
	require.NoError(t, err)
	assert.Equal(t, 1, id)
}

func TestNextID_LatestPlusOne(t *testing.T) {
	s := memstore.New()
	for _, id := range []int{1, 7, 3} {
		seedBasket(t, s, model.Basket{ID: id, CustomerName: "Justine"})
	}
	seedBasket(t, s, model.Basket{ID: 40, CustomerName: "Joe"})

	a := newAllocator(s, DefaultConfig())
	id, err := a.NextID(context.Background(), "CustomerName-index", "Justine")
	require.NoError(t, err)
	assert.Equal(t, 8, id)
}

func TestNextID_UnknownIndex(t *testing.T) {
	a := newAllocator(memstore.New(), DefaultConfig())

	_, err := a.NextID(context.Background(), "Missing-index", "Justine")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStoreOperation)
	assert.ErrorIs(t, err, store.ErrUnknownIndex)
}

func TestNextID_StoreFailure(t *testing.T) {
	s := memstore.New()
	cause := errors.New("throttled")
	s.FailWith(memstore.OpQueryByIndex, cause)
	a := newAllocator(s, DefaultConfig())

	_, err := a.NextID(context.Background(), "CustomerName-index", "Justine")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStoreOperation)
	assert.ErrorIs(t, err, cause)

	var repoErr *Error
	require.True(t, errors.As(err, &repoErr))
	assert.Equal(t, EntityBasket, repoErr.Entity)
	assert.Equal(t, "NextID", repoErr.Op)
	assert.Equal(t, "Justine", repoErr.Scope)
}

func TestInsert_LenientOverwritesTakenID(t *testing.T) {
	s := memstore.New()
	cfg := DefaultConfig()
	a := newAllocator(s, cfg)
	table := BasketsTable(cfg)

	// Both writers observe the same latest id before either writes.
	first, err := a.NextID(context.Background(), cfg.CustomerIndex, "Justine")
	require.NoError(t, err)
	second, err := a.NextID(context.Background(), cfg.CustomerIndex, "Justine")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	for _, name := range []string{"first", "second"} {
		_, err := a.Insert(context.Background(), cfg.CustomerIndex, "Justine", func(id int) (store.Item, error) {
			return marshalBasket(model.Basket{ID: first, CustomerName: "Justine", Products: []model.Product{lineItem(1, name, "1", 1)}})
		})
		require.NoError(t, err)
	}
	assert.Equal(t, 1, s.Len(table.Name))
}

// racingClient makes the first conditional put lose to a concurrent writer.
type racingClient struct {
	*memstore.Store
	raced bool
}

func (c *racingClient) PutIfAbsent(ctx context.Context, table store.Table, item store.Item) error {
	if !c.raced {
		c.raced = true
		if err := c.Store.Put(ctx, table, item); err != nil {
			return err
		}
	}
	return c.Store.PutIfAbsent(ctx, table, item)
}

func TestInsert_StrictReallocatesOnConflict(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StrictIDAllocation = true
	client := &racingClient{Store: memstore.New()}
	a := newAllocator(client, cfg)

	id, err := a.Insert(context.Background(), cfg.CustomerIndex, "Justine", func(id int) (store.Item, error) {
		return marshalBasket(model.Basket{ID: id, CustomerName: "Justine"})
	})
	require.NoError(t, err)
	assert.Equal(t, 2, id)
	assert.Equal(t, 2, client.Len(cfg.BasketsTable))
}

// conflictClient reports every conditional put as a conflict.
type conflictClient struct {
	*memstore.Store
	attempts int
}

func (c *conflictClient) PutIfAbsent(context.Context, store.Table, store.Item) error {
	c.attempts++
	return store.ErrAlreadyExists
}

func TestInsert_StrictGivesUp(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StrictIDAllocation = true
	cfg.MaxAllocationAttempts = 4
	client := &conflictClient{Store: memstore.New()}
	a := newAllocator(client, cfg)

	_, err := a.Insert(context.Background(), cfg.CustomerIndex, "Justine", func(id int) (store.Item, error) {
		return marshalBasket(model.Basket{ID: id, CustomerName: "Justine"})
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIDConflict)
	assert.Equal(t, 4, client.attempts)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name     string
		in       Config
		attempts int
	}{
		{"zero value gets defaults", Config{}, 3},
		{"attempts clamped high", Config{MaxAllocationAttempts: 50}, 10},
		{"attempts kept", Config{MaxAllocationAttempts: 5}, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.in
			cfg.validate()
			assert.Equal(t, "Products", cfg.ProductsTable)
			assert.Equal(t, "Baskets", cfg.BasketsTable)
			assert.Equal(t, "Orders", cfg.OrdersTable)
			assert.Equal(t, "CustomerName-index", cfg.CustomerIndex)
			assert.Equal(t, tt.attempts, cfg.MaxAllocationAttempts)
		})
	}
}
