package repository

import (
	"context"

	"go.uber.org/zap"

	"github.com/jacentio/justine/model"
	"github.com/jacentio/justine/store"
)

// ProductRepository manages standalone Product records.
type ProductRepository struct {
	client store.Client
	table  store.Table
	logger *zap.Logger
}

// NewProductRepository creates a ProductRepository.
func NewProductRepository(client store.Client, cfg Config, opts ...Option) *ProductRepository {
	o := newOptions(opts)
	return &ProductRepository{
		client: client,
		table:  ProductsTable(cfg),
		logger: o.logger,
	}
}

// GetByID returns the product, or nil when no product has that id.
func (r *ProductRepository) GetByID(ctx context.Context, id int) (*model.Product, error) {
	item, err := r.client.GetByKey(ctx, r.table, idKey(attrProductID, id))
	if err != nil {
		return nil, storeFailure(EntityProduct, "GetByID", id, err)
	}
	if item == nil {
		return nil, nil
	}
	p, err := unmarshalProduct(item)
	if err != nil {
		return nil, storeFailure(EntityProduct, "GetByID", id, err)
	}
	return p, nil
}

// GetAll scans the products table. An empty table yields an empty slice.
func (r *ProductRepository) GetAll(ctx context.Context) ([]model.Product, error) {
	items, err := r.client.ScanAll(ctx, r.table)
	if err != nil {
		return nil, storeFailure(EntityProduct, "GetAll", 0, err)
	}
	products := make([]model.Product, 0, len(items))
	for _, item := range items {
		p, err := unmarshalProduct(item)
		if err != nil {
			return nil, storeFailure(EntityProduct, "GetAll", 0, err)
		}
		products = append(products, *p)
	}
	return products, nil
}

// Add writes the product as given and returns the stored record.
// The caller supplies the id; an existing product with the same id is
// replaced, also when its name differs.
func (r *ProductRepository) Add(ctx context.Context, product model.Product) (*model.Product, error) {
	item, err := marshalProduct(product)
	if err != nil {
		return nil, storeFailure(EntityProduct, "Add", product.ID, err)
	}
	current, err := r.client.GetByKey(ctx, r.table, idKey(attrProductID, product.ID))
	if err != nil {
		return nil, storeFailure(EntityProduct, "Add", product.ID, err)
	}
	if current == nil {
		err = r.client.Put(ctx, r.table, item)
	} else {
		err = replace(ctx, r.client, r.table, current, item)
	}
	if err != nil {
		return nil, storeFailure(EntityProduct, "Add", product.ID, err)
	}

	r.logger.Debug("product added",
		zap.Int("id", product.ID),
		zap.String("name", product.Name),
	)

	stored, err := readBack(ctx, r.client, r.table, item)
	if err != nil {
		return nil, storeFailure(EntityProduct, "Add", product.ID, err)
	}
	if stored == nil {
		return nil, notFound(EntityProduct, "Add", product.ID)
	}
	p, err := unmarshalProduct(stored)
	if err != nil {
		return nil, storeFailure(EntityProduct, "Add", product.ID, err)
	}
	return p, nil
}

// Update replaces the stored product with product and returns the record as
// it was before the update. Returns nil when no product has the id; nothing
// is written in that case.
func (r *ProductRepository) Update(ctx context.Context, product model.Product) (*model.Product, error) {
	current, err := r.client.GetByKey(ctx, r.table, idKey(attrProductID, product.ID))
	if err != nil {
		return nil, storeFailure(EntityProduct, "Update", product.ID, err)
	}
	if current == nil {
		return nil, nil
	}
	previous, err := unmarshalProduct(current)
	if err != nil {
		return nil, storeFailure(EntityProduct, "Update", product.ID, err)
	}

	item, err := marshalProduct(product)
	if err != nil {
		return nil, storeFailure(EntityProduct, "Update", product.ID, err)
	}
	if err := replace(ctx, r.client, r.table, current, item); err != nil {
		return nil, storeFailure(EntityProduct, "Update", product.ID, err)
	}

	r.logger.Debug("product updated", zap.Int("id", product.ID))
	return previous, nil
}

// Delete removes the product. Returns ErrNotFound when no product has the id.
func (r *ProductRepository) Delete(ctx context.Context, id int) (bool, error) {
	current, err := r.client.GetByKey(ctx, r.table, idKey(attrProductID, id))
	if err != nil {
		return false, storeFailure(EntityProduct, "Delete", id, err)
	}
	if current == nil {
		return false, notFound(EntityProduct, "Delete", id)
	}
	if err := r.client.Delete(ctx, r.table, current); err != nil {
		return false, storeFailure(EntityProduct, "Delete", id, err)
	}

	r.logger.Debug("product deleted", zap.Int("id", id))
	return true, nil
}
