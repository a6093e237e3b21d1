package repository

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/jacentio/justine/model"
	"github.com/jacentio/justine/store"
)

// BasketRepository manages Basket aggregates and their embedded line items.
//
// Baskets are stored with their product snapshots only. The total is derived
// by model.Basket.TotalPrice from whatever line items were read, so it can never
// disagree with them.
type BasketRepository struct {
	client    store.Client
	table     store.Table
	index     string
	allocator *IDAllocator
	logger    *zap.Logger
	now       func() time.Time
}

// NewBasketRepository creates a BasketRepository.
func NewBasketRepository(client store.Client, cfg Config, opts ...Option) *BasketRepository {
	cfg.validate()
	o := newOptions(opts)
	table := BasketsTable(cfg)
	return &BasketRepository{
		client:    client,
		table:     table,
		index:     cfg.CustomerIndex,
		allocator: NewIDAllocator(client, table, EntityBasket, cfg, o.logger),
		logger:    o.logger,
		now:       o.now,
	}
}

// NextID returns the id the next basket for customer would get.
func (r *BasketRepository) NextID(ctx context.Context, customer string) (int, error) {
	return r.allocator.NextID(ctx, r.index, customer)
}

// GetByID returns the basket, or nil when no basket has that id.
func (r *BasketRepository) GetByID(ctx context.Context, id int) (*model.Basket, error) {
	item, err := r.client.GetByKey(ctx, r.table, idKey(attrBasketID, id))
	if err != nil {
		return nil, storeFailure(EntityBasket, "GetByID", id, err)
	}
	if item == nil {
		return nil, nil
	}
	b, err := unmarshalBasket(item)
	if err != nil {
		return nil, storeFailure(EntityBasket, "GetByID", id, err)
	}
	return b, nil
}

// GetAll scans the baskets table. An empty table yields an empty slice.
func (r *BasketRepository) GetAll(ctx context.Context) ([]model.Basket, error) {
	items, err := r.client.ScanAll(ctx, r.table)
	if err != nil {
		return nil, storeFailure(EntityBasket, "GetAll", 0, err)
	}
	return r.unmarshalAll("GetAll", items)
}

// GetByCustomer returns every basket of customer via the customer index.
func (r *BasketRepository) GetByCustomer(ctx context.Context, customer string) ([]model.Basket, error) {
	items, err := r.client.QueryByIndex(ctx, r.table, store.IndexQuery{
		IndexName: r.index,
		Attribute: attrCustomerName,
		Value:     customer,
	})
	if err != nil {
		return nil, &Error{Entity: EntityBasket, Op: "GetByCustomer", Scope: customer,
			Err: storeCause(err)}
	}
	return r.unmarshalAll("GetByCustomer", items)
}

// Add allocates the next basket id for the customer, stamps the timestamps and
// writes the basket with its line items as given. The stored basket is returned.
func (r *BasketRepository) Add(ctx context.Context, basket model.Basket) (*model.Basket, error) {
	now := r.now()
	id, err := r.allocator.Insert(ctx, r.index, basket.CustomerName, func(id int) (store.Item, error) {
		basket.ID = id
		basket.CreatedAt = &now
		basket.UpdatedAt = &now
		return marshalBasket(basket)
	})
	if err != nil {
		return nil, err
	}

	r.logger.Debug("basket added",
		zap.Int("id", id),
		zap.String("customer", basket.CustomerName),
		zap.Int("lineItems", len(basket.Products)),
		zap.String("total", basket.TotalPrice().String()),
	)

	stored, err := r.client.GetByKey(ctx, r.table, store.PK{
		attrBasketID:     numberAttr(id),
		attrCustomerName: stringAttr(basket.CustomerName),
	})
	if err != nil {
		return nil, storeFailure(EntityBasket, "Add", id, err)
	}
	if stored == nil {
		return nil, notFound(EntityBasket, "Add", id)
	}
	b, err := unmarshalBasket(stored)
	if err != nil {
		return nil, storeFailure(EntityBasket, "Add", id, err)
	}
	return b, nil
}

// Update replaces the customer's basket with basket and returns the basket as
// it was before the update. Returns nil when the customer has no basket with
// the id; baskets of other customers sharing the id are never touched.
func (r *BasketRepository) Update(ctx context.Context, basket model.Basket) (*model.Basket, error) {
	current, err := r.client.GetByKey(ctx, r.table, customerKey(r.table, basket.ID, basket.CustomerName))
	if err != nil {
		return nil, storeFailure(EntityBasket, "Update", basket.ID, err)
	}
	if current == nil {
		return nil, nil
	}
	previous, err := unmarshalBasket(current)
	if err != nil {
		return nil, storeFailure(EntityBasket, "Update", basket.ID, err)
	}

	item, err := marshalBasket(basket)
	if err != nil {
		return nil, storeFailure(EntityBasket, "Update", basket.ID, err)
	}
	if err := r.client.Put(ctx, r.table, item); err != nil {
		return nil, storeFailure(EntityBasket, "Update", basket.ID, err)
	}

	r.logger.Debug("basket updated",
		zap.Int("id", basket.ID),
		zap.String("customer", basket.CustomerName),
	)
	return previous, nil
}

// Delete removes the basket. Returns ErrNotFound when no basket has the id.
func (r *BasketRepository) Delete(ctx context.Context, id int) (bool, error) {
	current, err := r.client.GetByKey(ctx, r.table, idKey(attrBasketID, id))
	if err != nil {
		return false, storeFailure(EntityBasket, "Delete", id, err)
	}
	if current == nil {
		return false, notFound(EntityBasket, "Delete", id)
	}
	if err := r.client.Delete(ctx, r.table, current); err != nil {
		return false, storeFailure(EntityBasket, "Delete", id, err)
	}

	r.logger.Debug("basket deleted", zap.Int("id", id))
	return true, nil
}

func (r *BasketRepository) unmarshalAll(op string, items []store.Item) ([]model.Basket, error) {
	baskets := make([]model.Basket, 0, len(items))
	for _, item := range items {
		b, err := unmarshalBasket(item)
		if err != nil {
			return nil, storeFailure(EntityBasket, op, 0, err)
		}
		baskets = append(baskets, *b)
	}
	return baskets, nil
}
