package repository

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/jacentio/justine/model"
	"github.com/jacentio/justine/store"
)

// OrderRepository manages Order records. An order holds its basket id by
// value; the basket is not checked for existence.
type OrderRepository struct {
	client    store.Client
	table     store.Table
	index     string
	allocator *IDAllocator
	logger    *zap.Logger
	now       func() time.Time
}

// NewOrderRepository creates an OrderRepository.
func NewOrderRepository(client store.Client, cfg Config, opts ...Option) *OrderRepository {
	cfg.validate()
	o := newOptions(opts)
	table := OrdersTable(cfg)
	return &OrderRepository{
		client:    client,
		table:     table,
		index:     cfg.CustomerIndex,
		allocator: NewIDAllocator(client, table, EntityOrder, cfg, o.logger),
		logger:    o.logger,
		now:       o.now,
	}
}

// NextID returns the id the next order for customer would get.
func (r *OrderRepository) NextID(ctx context.Context, customer string) (int, error) {
	return r.allocator.NextID(ctx, r.index, customer)
}

// GetByID returns the order, or nil when no order has that id.
func (r *OrderRepository) GetByID(ctx context.Context, id int) (*model.Order, error) {
	item, err := r.client.GetByKey(ctx, r.table, idKey(attrOrderID, id))
	if err != nil {
		return nil, storeFailure(EntityOrder, "GetByID", id, err)
	}
	if item == nil {
		return nil, nil
	}
	o, err := unmarshalOrder(item)
	if err != nil {
		return nil, storeFailure(EntityOrder, "GetByID", id, err)
	}
	return o, nil
}

// GetAll scans the orders table. An empty table yields an empty slice.
func (r *OrderRepository) GetAll(ctx context.Context) ([]model.Order, error) {
	items, err := r.client.ScanAll(ctx, r.table)
	if err != nil {
		return nil, storeFailure(EntityOrder, "GetAll", 0, err)
	}
	return r.unmarshalAll("GetAll", items)
}

// GetByCustomer returns every order of customer via the customer index.
func (r *OrderRepository) GetByCustomer(ctx context.Context, customer string) ([]model.Order, error) {
	items, err := r.client.QueryByIndex(ctx, r.table, store.IndexQuery{
		IndexName: r.index,
		Attribute: attrCustomerName,
		Value:     customer,
	})
	if err != nil {
		return nil, &Error{Entity: EntityOrder, Op: "GetByCustomer", Scope: customer,
			Err: storeCause(err)}
	}
	return r.unmarshalAll("GetByCustomer", items)
}

// Add allocates the next order id for the customer, sets the order date to now
// and writes the order. The stored order is returned.
func (r *OrderRepository) Add(ctx context.Context, order model.Order) (*model.Order, error) {
	order.OrderDate = r.now()
	id, err := r.allocator.Insert(ctx, r.index, order.CustomerName, func(id int) (store.Item, error) {
		order.ID = id
		return marshalOrder(order)
	})
	if err != nil {
		return nil, err
	}

	r.logger.Debug("order added",
		zap.Int("id", id),
		zap.String("customer", order.CustomerName),
		zap.Int("basketId", order.BasketID),
	)

	stored, err := r.client.GetByKey(ctx, r.table, store.PK{
		attrOrderID:      numberAttr(id),
		attrCustomerName: stringAttr(order.CustomerName),
	})
	if err != nil {
		return nil, storeFailure(EntityOrder, "Add", id, err)
	}
	if stored == nil {
		return nil, notFound(EntityOrder, "Add", id)
	}
	o, err := unmarshalOrder(stored)
	if err != nil {
		return nil, storeFailure(EntityOrder, "Add", id, err)
	}
	return o, nil
}

// Update replaces the stored order with order and returns the order as it was
// before the update. The order date is kept from the stored record. Returns
// nil when the customer has no order with the id.
func (r *OrderRepository) Update(ctx context.Context, order model.Order) (*model.Order, error) {
	current, err := r.client.GetByKey(ctx, r.table, customerKey(r.table, order.ID, order.CustomerName))
	if err != nil {
		return nil, storeFailure(EntityOrder, "Update", order.ID, err)
	}
	if current == nil {
		return nil, nil
	}
	previous, err := unmarshalOrder(current)
	if err != nil {
		return nil, storeFailure(EntityOrder, "Update", order.ID, err)
	}

	order.OrderDate = previous.OrderDate
	item, err := marshalOrder(order)
	if err != nil {
		return nil, storeFailure(EntityOrder, "Update", order.ID, err)
	}
	if err := r.client.Put(ctx, r.table, item); err != nil {
		return nil, storeFailure(EntityOrder, "Update", order.ID, err)
	}

	r.logger.Debug("order updated",
		zap.Int("id", order.ID),
		zap.Int("basketId", order.BasketID),
	)
	return previous, nil
}

// Delete removes the order. Returns ErrNotFound when no order has the id.
func (r *OrderRepository) Delete(ctx context.Context, id int) (bool, error) {
	current, err := r.client.GetByKey(ctx, r.table, idKey(attrOrderID, id))
	if err != nil {
		return false, storeFailure(EntityOrder, "Delete", id, err)
	}
	if current == nil {
		return false, notFound(EntityOrder, "Delete", id)
	}
	if err := r.client.Delete(ctx, r.table, current); err != nil {
		return false, storeFailure(EntityOrder, "Delete", id, err)
	}

	r.logger.Debug("order deleted", zap.Int("id", id))
	return true, nil
}

func (r *OrderRepository) unmarshalAll(op string, items []store.Item) ([]model.Order, error) {
	orders := make([]model.Order, 0, len(items))
	for _, item := range items {
		o, err := unmarshalOrder(item)
		if err != nil {
			return nil, storeFailure(EntityOrder, op, 0, err)
		}
		orders = append(orders, *o)
	}
	return orders, nil
}
