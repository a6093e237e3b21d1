package repository

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jacentio/justine/model"
	"github.com/jacentio/justine/store/memstore"
)

var fixedNow = time.Date(2026, 10, 18, 12, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func ptr[T any](v T) *T { return &v }

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func lineItem(id int, name, p string, qty int) model.Product {
	return model.Product{
		ID:          id,
		Name:        name,
		Description: ptr("Description" + name),
		Price:       price(p),
		ImageURL:    ptr("url" + name),
		Quantity:    qty,
	}
}

// seedBasket writes a basket straight to the store, bypassing id allocation.
func seedBasket(t *testing.T, s *memstore.Store, b model.Basket) {
	t.Helper()
	item, err := marshalBasket(b)
	require.NoError(t, err)
	require.NoError(t, s.Put(context.Background(), BasketsTable(DefaultConfig()), item))
}

// seedOrder writes an order straight to the store, bypassing id allocation.
func seedOrder(t *testing.T, s *memstore.Store, o model.Order) {
	t.Helper()
	item, err := marshalOrder(o)
	require.NoError(t, err)
	require.NoError(t, s.Put(context.Background(), OrdersTable(DefaultConfig()), item))
}

func assertProductEqual(t *testing.T, want, got model.Product) {
	t.Helper()
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.Name, got.Name)
	assert.Equal(t, want.Description, got.Description)
	assert.True(t, want.Price.Equal(got.Price), "price: expected %s, got %s", want.Price, got.Price)
	assert.Equal(t, want.ImageURL, got.ImageURL)
	assert.Equal(t, want.Quantity, got.Quantity)
	assertTimePtrEqual(t, want.CreatedAt, got.CreatedAt)
	assertTimePtrEqual(t, want.UpdatedAt, got.UpdatedAt)
}

func assertTimePtrEqual(t *testing.T, want, got *time.Time) {
	t.Helper()
	if want == nil {
		assert.Nil(t, got)
		return
	}
	require.NotNil(t, got)
	assert.True(t, want.Equal(*got), "expected %s, got %s", want, got)
}

func basketWith(products ...model.Product) model.Basket {
	return model.Basket{ID: 1, CustomerName: "Joe", Products: products}
}
