package repository

import (
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/jacentio/justine/store"
)

// Attribute names of the persisted items.
const (
	attrProductID    = "Id"
	attrName         = "Name"
	attrBasketID     = "BasketId"
	attrOrderID      = "OrderId"
	attrCustomerName = "CustomerName"
)

// ProductsTable describes the products table: Id (N) partition, Name (S) sort.
func ProductsTable(cfg Config) store.Table {
	cfg.validate()
	return store.Table{
		Name:             cfg.ProductsTable,
		PartitionKey:     attrProductID,
		PartitionKeyType: types.ScalarAttributeTypeN,
		SortKey:          attrName,
		SortKeyType:      types.ScalarAttributeTypeS,
	}
}

// BasketsTable describes the baskets table and its customer index.
func BasketsTable(cfg Config) store.Table {
	cfg.validate()
	return customerScopedTable(cfg.BasketsTable, attrBasketID, cfg.CustomerIndex)
}

// OrdersTable describes the orders table and its customer index.
func OrdersTable(cfg Config) store.Table {
	cfg.validate()
	return customerScopedTable(cfg.OrdersTable, attrOrderID, cfg.CustomerIndex)
}

// Tables returns every table the repositories use, for provisioning.
func Tables(cfg Config) []store.Table {
	return []store.Table{ProductsTable(cfg), BasketsTable(cfg), OrdersTable(cfg)}
}

// customerScopedTable has an id partition key, CustomerName sort key and a GSI
// on CustomerName sorted by id so the latest id in a scope is one query away.
func customerScopedTable(name, idAttr, indexName string) store.Table {
	return store.Table{
		Name:             name,
		PartitionKey:     idAttr,
		PartitionKeyType: types.ScalarAttributeTypeN,
		SortKey:          attrCustomerName,
		SortKeyType:      types.ScalarAttributeTypeS,
		Indexes: []store.Index{{
			Name:             indexName,
			PartitionKey:     attrCustomerName,
			PartitionKeyType: types.ScalarAttributeTypeS,
			SortKey:          idAttr,
			SortKeyType:      types.ScalarAttributeTypeN,
		}},
	}
}

// idKey is the partition-only key used for lookups by id.
func idKey(attr string, id int) store.PK {
	return store.PK{attr: numberAttr(id)}
}
